package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/codec"
	"github.com/samiBendou/sca-automation/internal/dataset"
	"github.com/samiBendou/sca-automation/internal/export"
	"github.com/samiBendou/sca-automation/internal/parser"
	"github.com/samiBendou/sca-automation/internal/request"
	ts "github.com/samiBendou/sca-automation/internal/testsupport"
)

func benchRequest(chunks int) request.Request {
	return request.Request{
		Name:       "bench",
		Iterations: 2,
		Mode:       dataset.ModeHardware,
		Direction:  dataset.DirectionEncrypt,
		Chunks:     chunks,
	}
}

func decodedJob(t *testing.T, req request.Request, chunk int) export.Job {
	t.Helper()
	raw := ts.TwoRecordLog()
	res, warnings := parser.Decode(raw, parser.Options{Direction: req.Direction})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	return export.Job{Request: req, Chunk: chunk, Result: res, Raw: raw}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	job := decodedJob(t, benchRequest(0), 0)

	saved, err := export.Save(context.Background(), dir, job, export.Options{Compress: true})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Base != "bench_hw_enc_2" {
		t.Fatalf("unexpected base %q", saved.Base)
	}
	if saved.Capture != filepath.Join(dir, "bench_hw_enc_2.log.zst") {
		t.Fatalf("unexpected capture path %q", saved.Capture)
	}
	if saved.Digest != capture.Sum(job.Raw) {
		t.Fatal("digest must cover the raw capture")
	}
	for _, path := range []string{saved.Channel, saved.Leak, saved.Paths.Meta} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}

	loaded, err := export.Load(dir, saved.Base, codec.ReadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(job.Result.Meta, loaded.Meta); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&job.Result.Channel, loaded.Channel); diff != "" {
		t.Fatalf("channel mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&job.Result.Leak, loaded.Leak); diff != "" {
		t.Fatalf("leak mismatch (-want +got):\n%s", diff)
	}

	raw, err := capture.Read(saved.Capture)
	if err != nil {
		t.Fatalf("capture.Read: %v", err)
	}
	if string(raw) != string(job.Raw) {
		t.Fatal("archived capture differs from the raw log")
	}
}

func TestSaveChunksMerge(t *testing.T) {
	dir := t.TempDir()
	req := benchRequest(3)

	var last export.Saved
	for chunk := 0; chunk < req.Chunks; chunk++ {
		saved, err := export.Save(context.Background(), dir, decodedJob(t, req, chunk), export.Options{})
		if err != nil {
			t.Fatalf("Save chunk %d: %v", chunk, err)
		}
		if saved.Capture != filepath.Join(dir, req.CaptureName(chunk)) {
			t.Fatalf("chunk %d capture path %q", chunk, saved.Capture)
		}
		last = saved
	}
	if last.Stored.Iterations != 6 {
		t.Fatalf("stored iterations = %d, want 6", last.Stored.Iterations)
	}

	loaded, err := export.Load(dir, req.Base(), codec.ReadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 6 || loaded.Channel.Len() != 6 || loaded.Meta.Iterations != 6 {
		t.Fatalf("unexpected merged dataset: records=%d channel=%d iterations=%d",
			loaded.Len(), loaded.Channel.Len(), loaded.Meta.Iterations)
	}

	window, err := export.Load(dir, req.Base(), codec.ReadOptions{Start: 2, Count: 2})
	if err != nil {
		t.Fatalf("Load window: %v", err)
	}
	if window.Len() != 2 || window.Channel.Len() != 2 {
		t.Fatalf("window has %d traces and %d records", window.Len(), window.Channel.Len())
	}
}

func TestSaveFailureLeavesTablesUntouched(t *testing.T) {
	dir := t.TempDir()
	req := benchRequest(2)
	first, err := export.Save(context.Background(), dir, decodedJob(t, req, 0), export.Options{})
	if err != nil {
		t.Fatalf("Save chunk 0: %v", err)
	}
	tables := []string{first.Channel, first.Leak, first.Meta}
	before := make(map[string]string, len(tables))
	for _, path := range tables {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		before[path] = string(data)
	}

	job := decodedJob(t, req, 1)
	job.Result.Leak.Samples[0] = 99
	if _, err := export.Save(context.Background(), dir, job, export.Options{}); !errors.Is(err, dataset.ErrInconsistent) {
		t.Fatalf("Save = %v, want ErrInconsistent", err)
	}

	for _, path := range tables {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if diff := cmp.Diff(before[path], string(data)); diff != "" {
			t.Fatalf("%s changed by failed save (-want +got):\n%s", filepath.Base(path), diff)
		}
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, "*"+export.StagedSuffix))
	if err != nil || len(leftovers) != 0 {
		t.Fatalf("staged files left behind: %v (%v)", leftovers, err)
	}
}

func TestSaveWithoutRawSkipsCapture(t *testing.T) {
	dir := t.TempDir()
	job := decodedJob(t, benchRequest(0), 0)
	job.Raw = nil

	saved, err := export.Save(context.Background(), dir, job, export.Options{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Capture != "" || saved.Digest != (capture.Digest{}) {
		t.Fatalf("unexpected capture %q", saved.Capture)
	}
}

func TestSaveWaitsForLock(t *testing.T) {
	dir := t.TempDir()
	held := flock.New(filepath.Join(dir, export.LockName))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %t, %v", ok, err)
	}
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = export.Save(ctx, dir, decodedJob(t, benchRequest(0), 0), export.Options{})
	if !errors.Is(err, export.ErrLocked) {
		t.Fatalf("Save err = %v, want ErrLocked", err)
	}
}

func TestLoadMissingDataset(t *testing.T) {
	loaded, err := export.Load(t.TempDir(), "absent", codec.ReadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 0 || loaded.Meta != (dataset.Meta{}) {
		t.Fatalf("expected empty dataset, got %+v", loaded)
	}
}
