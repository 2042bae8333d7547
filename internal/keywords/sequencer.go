package keywords

// Phase identifies which part of the keyword sequence is expected.
type Phase int

const (
	// PhaseMeta expects the run meta-data keywords.
	PhaseMeta Phase = iota
	// PhaseData expects the per-trace keyword cycle.
	PhaseData
)

func (p Phase) String() string {
	switch p {
	case PhaseMeta:
		return "meta"
	case PhaseData:
		return "data"
	default:
		return "unknown"
	}
}

// Sequencer enumerates the keyword expected next in the log.
//
// The meta phase is consumed once; after its last keyword the sequencer
// enters the data phase and cycles through the data keywords forever.
// Reset is the only way to get back to the meta phase.
type Sequencer struct {
	phase     Phase
	idx       int
	metawords []Keyword
	datawords []Keyword
}

// NewSequencer returns a sequencer positioned at the first meta keyword.
// inverse selects the decryption ordering (cipher before plain) and verbose
// selects raw weights instead of compressed codes.
func NewSequencer(inverse, verbose bool) *Sequencer {
	return &Sequencer{
		phase:     PhaseMeta,
		metawords: Metawords(),
		datawords: Datawords(inverse, verbose),
	}
}

// Peek returns the expected keyword without moving.
func (s *Sequencer) Peek() Keyword {
	if s.phase == PhaseData {
		return s.datawords[s.idx]
	}
	return s.metawords[s.idx]
}

// Advance returns the expected keyword and moves to the next one.
func (s *Sequencer) Advance() Keyword {
	current := s.Peek()
	switch s.phase {
	case PhaseData:
		s.idx = (s.idx + 1) % len(s.datawords)
	default:
		s.idx++
		if s.idx == len(s.metawords) {
			s.phase = PhaseData
			s.idx = 0
		}
	}
	return current
}

// Reset rewinds to the first data keyword when preserveMeta is set, or to
// the first meta keyword otherwise.
func (s *Sequencer) Reset(preserveMeta bool) {
	s.idx = 0
	if preserveMeta {
		s.phase = PhaseData
		return
	}
	s.phase = PhaseMeta
}

// Phase reports the current phase.
func (s *Sequencer) Phase() Phase { return s.phase }

// Index reports the position inside the current phase.
func (s *Sequencer) Index() int { return s.idx }
