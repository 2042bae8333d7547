package keywords_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samiBendou/sca-automation/internal/keywords"
)

func collect(s *keywords.Sequencer, n int) []keywords.Keyword {
	out := make([]keywords.Keyword, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.Advance())
	}
	return out
}

func TestSequencerOrdering(t *testing.T) {
	tests := []struct {
		name    string
		inverse bool
		verbose bool
		want    []keywords.Keyword
	}{
		{
			name: "encrypt compressed",
			want: []keywords.Keyword{
				keywords.Sensors, keywords.Target, keywords.Mode, keywords.Direction, keywords.Key,
				keywords.Plain, keywords.Cipher, keywords.Samples, keywords.Code,
				keywords.Plain, keywords.Cipher, keywords.Samples, keywords.Code,
			},
		},
		{
			name:    "decrypt verbose",
			inverse: true,
			verbose: true,
			want: []keywords.Keyword{
				keywords.Sensors, keywords.Target, keywords.Mode, keywords.Direction, keywords.Key,
				keywords.Cipher, keywords.Plain, keywords.Samples, keywords.Weights,
				keywords.Cipher, keywords.Plain, keywords.Samples, keywords.Weights,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := keywords.NewSequencer(tc.inverse, tc.verbose)
			got := collect(s, len(tc.want))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("keyword order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSequencerPeekDoesNotMove(t *testing.T) {
	s := keywords.NewSequencer(false, false)
	if got := s.Peek(); got != keywords.Sensors {
		t.Fatalf("Peek = %q, want sensors", got)
	}
	if got := s.Peek(); got != keywords.Sensors {
		t.Fatalf("second Peek = %q, want sensors", got)
	}
	if got := s.Advance(); got != keywords.Sensors {
		t.Fatalf("Advance = %q, want sensors", got)
	}
	if got := s.Peek(); got != keywords.Target {
		t.Fatalf("Peek after Advance = %q, want target", got)
	}
}

func TestSequencerEntersDataPhaseOnce(t *testing.T) {
	s := keywords.NewSequencer(false, false)
	collect(s, len(keywords.Metawords()))
	if s.Phase() != keywords.PhaseData {
		t.Fatalf("expected data phase, got %s", s.Phase())
	}
	collect(s, 12)
	if s.Phase() != keywords.PhaseData {
		t.Fatalf("advancing must never return to meta phase, got %s", s.Phase())
	}
}

func TestSequencerReset(t *testing.T) {
	s := keywords.NewSequencer(false, false)
	collect(s, len(keywords.Metawords())+2)
	if got := s.Peek(); got != keywords.Samples {
		t.Fatalf("Peek = %q, want samples", got)
	}

	s.Reset(true)
	if s.Phase() != keywords.PhaseData || s.Peek() != keywords.Plain {
		t.Fatalf("Reset(true) = %s/%q, want data/plains", s.Phase(), s.Peek())
	}

	s.Reset(false)
	if s.Phase() != keywords.PhaseMeta || s.Peek() != keywords.Sensors {
		t.Fatalf("Reset(false) = %s/%q, want meta/sensors", s.Phase(), s.Peek())
	}
}
