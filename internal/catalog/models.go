package catalog

import (
	"time"

	"github.com/samiBendou/sca-automation/internal/dataset"
)

// Status is the outcome of one ingested chunk.
type Status string

const (
	// StatusComplete means every requested trace was decoded without warnings.
	StatusComplete Status = "complete"
	// StatusPartial means traces were dropped or warnings were raised.
	StatusPartial Status = "partial"
	// StatusFailed means the chunk could not be decoded or saved.
	StatusFailed Status = "failed"
)

// Run is one ingested acquisition chunk.
type Run struct {
	ID        string
	Name      string
	Base      string
	Source    string
	Mode      dataset.Mode
	Direction dataset.Direction
	// Chunk is 0-based.
	Chunk int
	// Requested is the trace count asked of the device, zero when unknown.
	Requested int
	Parsed    int
	Warnings  int
	Status    Status
	// Digest is the hex blake3 digest of the raw capture, empty when none was archived.
	Digest       string
	CapturePath  string
	ErrorMessage string
	CreatedAt    time.Time
}

// Classify derives the status from the counters and error message.
func (r *Run) Classify() Status {
	switch {
	case r.ErrorMessage != "":
		return StatusFailed
	case r.Warnings > 0 || r.Parsed < r.Requested:
		return StatusPartial
	default:
		return StatusComplete
	}
}

// Summary aggregates the catalog for status output.
type Summary struct {
	Runs     int
	Traces   int
	Datasets int
	ByStatus map[Status]int
	Last     *time.Time
}
