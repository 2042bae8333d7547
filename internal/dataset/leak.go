package dataset

import (
	"errors"
	"fmt"
)

// ErrInconsistent reports parallel sequences that lost their lockstep.
var ErrInconsistent = errors.New("inconsistent dataset")

// Leak holds the side-channel leakage traces of an acquisition.
type Leak struct {
	// Samples is the declared sample count of each trace.
	Samples []int
	Traces  [][]int
}

// Len returns the number of traces.
func (l *Leak) Len() int { return len(l.Traces) }

// Append adds a trace and records its sample count.
func (l *Leak) Append(trace []int) {
	l.Traces = append(l.Traces, trace)
	l.Samples = append(l.Samples, len(trace))
}

// Pop removes the last trace and its sample count.
func (l *Leak) Pop() {
	l.Traces = dropLast(l.Traces)
	l.Samples = dropLast(l.Samples)
}

// Clear removes every trace.
func (l *Leak) Clear() {
	l.Traces = l.Traces[:0]
	l.Samples = l.Samples[:0]
}

// Concat appends the traces of other.
func (l *Leak) Concat(other *Leak) {
	if other == nil {
		return
	}
	l.Traces = append(l.Traces, other.Traces...)
	l.Samples = append(l.Samples, other.Samples...)
}

// Validate checks that every trace matches its declared sample count.
func (l *Leak) Validate() error {
	if len(l.Samples) != len(l.Traces) {
		return fmt.Errorf("%w: samples=%d traces=%d", ErrInconsistent, len(l.Samples), len(l.Traces))
	}
	for i, trace := range l.Traces {
		if len(trace) != l.Samples[i] {
			return fmt.Errorf("%w: trace %d has %d samples, declared %d",
				ErrInconsistent, i, len(trace), l.Samples[i])
		}
	}
	return nil
}
