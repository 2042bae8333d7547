// Package request describes an acquisition run and derives the names and
// device command that identify it.
package request

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/dataset"
)

// CommandName is the firmware command that starts an acquisition.
const CommandName = "sca"

// prefixReplacer keeps dataset prefixes filesystem-safe.
var prefixReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	" ", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// Request wraps the parameters that name a dataset and drive the device.
type Request struct {
	// Name is the serial port for serial sources or the capture prefix for
	// file sources.
	Name       string
	Iterations int
	Source     string
	Mode       dataset.Mode
	Direction  dataset.Direction
	Verbose    bool
	// Chunks is the number of acquisitions of Iterations traces. Zero means
	// a single unchunked acquisition.
	Chunks int
}

// FromConfig builds a request from the [acquisition] section.
func FromConfig(cfg *config.Config) Request {
	a := cfg.Acquisition
	return Request{
		Name:       a.Name,
		Iterations: a.Iterations,
		Source:     a.Source,
		Mode:       dataset.Mode(a.Mode),
		Direction:  dataset.Direction(a.Direction),
		Verbose:    a.Verbose,
		Chunks:     a.Chunks,
	}
}

// ChunkCount returns the number of acquisitions to run, at least one.
func (r Request) ChunkCount() int {
	if r.Chunks <= 0 {
		return 1
	}
	return r.Chunks
}

// Total is the number of traces requested over every chunk.
func (r Request) Total() int {
	return r.Iterations * r.ChunkCount()
}

// Filename returns <prefix>_<mode>_<direction>_<total><suffix>. An empty
// prefix uses the last path element of Name.
func (r Request) Filename(prefix, suffix string) string {
	if prefix == "" {
		prefix = filepath.Base(filepath.Clean(r.Name))
	}
	prefix = prefixReplacer.Replace(strings.TrimSpace(prefix))
	return fmt.Sprintf("%s_%s_%s_%d%s", prefix, r.Mode, r.Direction, r.Total(), suffix)
}

// Base is the file name shared by every table of the dataset.
func (r Request) Base() string {
	return r.Filename("", "")
}

// CaptureName names the raw log of one 0-based chunk. Unchunked requests
// use <base>.log, chunked ones <base>_<chunk+1>.log.
func (r Request) CaptureName(chunk int) string {
	if r.Chunks <= 0 {
		return r.Filename("", ".log")
	}
	return r.Filename("", fmt.Sprintf("_%d.log", chunk+1))
}

// Command returns the firmware command line for one chunk.
func (r Request) Command(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -t %d", name, r.Iterations)
	if r.Verbose {
		b.WriteString(" -v")
	}
	if r.Mode == dataset.ModeHardware {
		b.WriteString(" -h")
	}
	if r.Direction == dataset.DirectionDecrypt {
		b.WriteString(" -i")
	}
	return b.String()
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s %s/%s iterations=%d chunks=%d verbose=%t",
		r.Source, r.Name, r.Mode, r.Direction, r.Iterations, r.Chunks, r.Verbose)
}
