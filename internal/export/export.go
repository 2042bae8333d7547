// Package export writes decoded acquisitions to the data directory and reads
// them back.
//
// A dataset named <base> is made of <base>_channel.csv, <base>_leak.csv and
// <base>_meta.csv next to the raw capture of each chunk. Writers to the same
// directory are serialized with an advisory lock so chunked runs and the
// watcher can merge into one dataset safely.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/codec"
	"github.com/samiBendou/sca-automation/internal/dataset"
	"github.com/samiBendou/sca-automation/internal/parser"
	"github.com/samiBendou/sca-automation/internal/request"
)

// LockName is the lock file created in the output directory.
const LockName = ".sca.lock"

const lockRetryDelay = 50 * time.Millisecond

// Table file suffixes.
const (
	ChannelSuffix = "_channel.csv"
	LeakSuffix    = "_leak.csv"
	MetaSuffix    = "_meta.csv"
)

// ErrLocked reports that another writer held the directory lock until ctx expired.
var ErrLocked = errors.New("output directory is locked")

// Options controls how a job is written.
type Options struct {
	// Append adds rows to existing tables and merges meta iterations.
	// Chunks after the first always append.
	Append bool
	// Compress stores the raw capture as zstd.
	Compress bool
}

// Job is one decoded chunk ready to be saved.
type Job struct {
	Request request.Request
	Chunk   int
	Result  *parser.Result
	// Raw is the capture the result was decoded from. Nil skips archiving.
	Raw []byte
	// CaptureName overrides the archive name derived from Request and Chunk.
	CaptureName string
}

// Paths locates the files of one dataset.
type Paths struct {
	Capture string
	Channel string
	Leak    string
	Meta    string
}

// PathsFor returns the table paths of base in dir.
func PathsFor(dir, base string) Paths {
	return Paths{
		Channel: filepath.Join(dir, base+ChannelSuffix),
		Leak:    filepath.Join(dir, base+LeakSuffix),
		Meta:    filepath.Join(dir, base+MetaSuffix),
	}
}

// Saved describes what Save wrote.
type Saved struct {
	Paths
	Base   string
	Digest capture.Digest
	// Stored is the meta row now on disk, including merged iterations.
	Stored dataset.Meta
}

// Save writes the capture and the three tables of job into dir while holding
// the directory lock.
func Save(ctx context.Context, dir string, job Job, opts Options) (Saved, error) {
	if job.Result == nil {
		return Saved{}, errors.New("export: nil result")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create output directory: %w", err)
	}

	unlock, err := lockDir(ctx, dir)
	if err != nil {
		return Saved{}, err
	}
	defer unlock()

	base := job.Request.Base()
	saved := Saved{Paths: PathsFor(dir, base), Base: base}
	appendRows := opts.Append || job.Chunk > 0

	if job.Raw != nil {
		name := job.CaptureName
		if name == "" {
			name = job.Request.CaptureName(job.Chunk)
		}
		path, digest, err := capture.Write(filepath.Join(dir, name), job.Raw, opts.Compress)
		if err != nil {
			return saved, err
		}
		saved.Capture = path
		saved.Digest = digest
	}

	tables := []struct {
		path  string
		write func(path string) error
	}{
		{saved.Channel, func(path string) error {
			return codec.WriteChannel(path, &job.Result.Channel, appendRows)
		}},
		{saved.Leak, func(path string) error {
			return codec.WriteLeak(path, &job.Result.Leak, appendRows)
		}},
		{saved.Meta, func(path string) (err error) {
			saved.Stored, err = codec.WriteMeta(path, job.Result.Meta, appendRows)
			return err
		}},
	}

	// Every table is written to a staged copy first. The dataset on disk only
	// changes once all three succeeded.
	staged := make([]string, 0, len(tables))
	defer func() {
		for _, path := range staged {
			_ = os.Remove(path)
		}
	}()
	for _, table := range tables {
		tmp, err := stage(table.path, appendRows)
		if err != nil {
			return saved, err
		}
		staged = append(staged, tmp)
		if err := table.write(tmp); err != nil {
			return saved, err
		}
	}
	for i, table := range tables {
		if err := os.Rename(staged[i], table.path); err != nil {
			return saved, fmt.Errorf("commit %s: %w", table.path, err)
		}
	}
	return saved, nil
}

// StagedSuffix marks a table copy being written by Save.
const StagedSuffix = ".staged"

// stage returns the staging path of table. When rows are appended the
// current table is copied there first.
func stage(table string, appendRows bool) (string, error) {
	tmp := table + StagedSuffix
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stage %s: %w", table, err)
	}
	if !appendRows {
		return tmp, nil
	}
	src, err := os.Open(table)
	if errors.Is(err, fs.ErrNotExist) {
		return tmp, nil
	}
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", table, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", table, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", table, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", table, err)
	}
	return tmp, nil
}

func lockDir(ctx context.Context, dir string) (func(), error) {
	lock := flock.New(filepath.Join(dir, LockName))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return func() { _ = lock.Unlock() }, nil
}

// Dataset is a dataset read back from disk.
type Dataset struct {
	Meta    dataset.Meta
	Channel *dataset.Channel
	Leak    *dataset.Leak
}

// Len returns the number of records.
func (d *Dataset) Len() int { return d.Leak.Len() }

// Load reads the tables of base in dir. Missing tables load as empty.
func Load(dir, base string, opts codec.ReadOptions) (*Dataset, error) {
	paths := PathsFor(dir, base)
	meta, err := codec.ReadMeta(paths.Meta)
	if err != nil {
		return nil, err
	}
	channel, err := codec.ReadChannel(paths.Channel, opts)
	if err != nil {
		return nil, err
	}
	leak, err := codec.ReadLeak(paths.Leak, opts)
	if err != nil {
		return nil, err
	}
	return &Dataset{Meta: meta, Channel: channel, Leak: leak}, nil
}
