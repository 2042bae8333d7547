package parser

import (
	"bytes"
	"errors"
	"math/big"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/samiBendou/sca-automation/internal/dataset"
	"github.com/samiBendou/sca-automation/internal/keywords"
)

// State is the decoder state after a line has been consumed.
type State int

const (
	StateAwaitingMeta State = iota
	StateAwaitingData
	StateResyncing
)

func (s State) String() string {
	switch s {
	case StateAwaitingMeta:
		return "awaiting_meta"
	case StateAwaitingData:
		return "awaiting_data"
	case StateResyncing:
		return "resyncing"
	default:
		return "unknown"
	}
}

// Options parameterizes a decode pass.
type Options struct {
	Direction dataset.Direction
	// Verbose selects raw weight lines instead of compressed code lines.
	Verbose bool
	// Bias is subtracted from Sensors*Target to obtain the hamming offset.
	Bias int
}

// Result holds the entities recovered from a log.
type Result struct {
	Meta    dataset.Meta
	Channel dataset.Channel
	Leak    dataset.Leak
	// State is the decoder state once every line was consumed. StateResyncing
	// means the log ended in the middle of a discarded record.
	State State
	Lines int
}

// Len returns the number of decoded records.
func (r *Result) Len() int { return r.Leak.Len() }

type decoder struct {
	opts      Options
	seq       *keywords.Sequencer
	res       *Result
	resyncing bool
}

// Decode parses an acquisition log. Decode errors never abort the pass: each
// one is returned as a Warning and the decoder resynchronizes on the next
// start-of-trace tag.
func Decode(data []byte, opts Options) (*Result, []Warning) {
	d := &decoder{
		opts: opts,
		seq:  keywords.NewSequencer(opts.Direction.Inverse(), opts.Verbose),
		res:  &Result{},
	}
	return d.res, d.run(data)
}

func (d *decoder) run(data []byte) []Warning {
	var warnings []Warning
	lines := bytes.Split(data, keywords.LineTerminator)
	d.res.Lines = len(lines)

	for idx, line := range lines {
		if d.resyncing {
			d.resyncing = !bytes.Equal(line, keywords.StartTraceTag)
			continue
		}
		if err := d.parseLine(line); err != nil {
			warnings = append(warnings, Warning{
				Kind:   kindOf(err),
				Record: d.res.Leak.Len(),
				Line:   idx,
				Raw:    bytes.Clone(line),
				Err:    err,
			})
			d.seq.Reset(d.seq.Phase() == keywords.PhaseData)
			d.resyncing = true
			d.trim()
		}
	}

	d.res.Channel.BroadcastKey(d.res.Channel.Len())
	d.res.Meta.Iterations += d.res.Leak.Len()
	d.res.State = d.state()
	return warnings
}

func (d *decoder) state() State {
	switch {
	case d.resyncing:
		return StateResyncing
	case d.seq.Phase() == keywords.PhaseData:
		return StateAwaitingData
	default:
		return StateAwaitingMeta
	}
}

func kindOf(err error) Kind {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Kind
	}
	return KindMalformedLine
}

func isSentinel(line []byte) bool {
	return bytes.Equal(line, keywords.StartTraceTag) || bytes.Equal(line, keywords.EndAcqTag)
}

func (d *decoder) parseLine(line []byte) error {
	if isSentinel(line) {
		return nil
	}
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil
	}

	sep := bytes.IndexByte(trimmed, keywords.Delimiter)
	if sep < 0 {
		return malformed(nil, "missing %q delimiter", keywords.Delimiter)
	}
	name := bytes.TrimSpace(trimmed[:sep])
	if !isASCII(name) {
		return malformed(nil, "keyword is not ascii")
	}
	keyword := keywords.Keyword(name)
	value := bytes.TrimSpace(trimmed[sep+1:])

	if expected := d.seq.Peek(); keyword != expected {
		return unexpected("expected %s keyword not %s", expected, keyword)
	}
	if err := d.store(keyword, line, value); err != nil {
		return err
	}
	d.seq.Advance()
	return nil
}

func (d *decoder) store(keyword keywords.Keyword, line, value []byte) error {
	meta := &d.res.Meta
	channel := &d.res.Channel
	leak := &d.res.Leak

	switch keyword {
	case keywords.Mode, keywords.Direction:
		if !isASCII(value) {
			return malformed(nil, "%s value is not ascii", keyword)
		}
		if keyword == keywords.Mode {
			meta.Mode = dataset.Mode(value)
		} else {
			meta.Direction = dataset.Direction(value)
		}
	case keywords.Sensors, keywords.Target:
		n, err := parseInt(keyword, value)
		if err != nil {
			return err
		}
		if keyword == keywords.Sensors {
			meta.Sensors = n
		} else {
			meta.Target = n
			meta.ComputeOffset(d.opts.Bias)
		}
	case keywords.Key, keywords.Plain, keywords.Cipher:
		block, err := parseBlock(keyword, value)
		if err != nil {
			return err
		}
		switch keyword {
		case keywords.Key:
			channel.Keys = append(channel.Keys, block)
		case keywords.Plain:
			channel.Plains = append(channel.Plains, block)
		default:
			channel.Ciphers = append(channel.Ciphers, block)
		}
	case keywords.Samples:
		n, err := parseInt(keyword, value)
		if err != nil {
			return err
		}
		leak.Samples = append(leak.Samples, n)
	case keywords.Code:
		if !bytes.HasPrefix(line, []byte(keywords.CodePrefix)) {
			return malformed(nil, "code line must start with %q", keywords.CodePrefix)
		}
		codes := line[len(keywords.CodePrefix):]
		trace := make([]int, len(codes))
		for i, c := range codes {
			trace[i] = DecodeHamming(c, meta.Offset)
		}
		leak.Traces = append(leak.Traces, trace)
		return d.checkTrace()
	case keywords.Weights:
		trace, err := parseWeights(value)
		if err != nil {
			return err
		}
		leak.Traces = append(leak.Traces, trace)
		return d.checkTrace()
	default:
		return unexpected("keyword %s is not part of the log sequence", keyword)
	}
	return nil
}

func (d *decoder) checkTrace() error {
	leak := &d.res.Leak
	got := len(leak.Traces[len(leak.Traces)-1])
	if len(leak.Samples) == 0 {
		return mismatch(got, 0)
	}
	if want := leak.Samples[len(leak.Samples)-1]; got != want {
		return mismatch(got, want)
	}
	return nil
}

// trim restores equal lengths across the record sequences after an error.
// A single run key is broadcast over every record, so it never leads or lags
// and is left out; per-record keys take part like the other sequences.
func (d *decoder) trim() {
	channel := &d.res.Channel
	leak := &d.res.Leak
	withKeys := len(channel.Keys) != 1

	lens := []int{len(channel.Plains), len(channel.Ciphers), len(leak.Samples), len(leak.Traces)}
	if withKeys {
		lens = append(lens, len(channel.Keys))
	}
	lo, hi := lens[0], lens[0]
	for _, n := range lens[1:] {
		lo = min(lo, n)
		hi = max(hi, n)
	}

	if lo == hi {
		if lo == 0 {
			return
		}
		channel.Plains = channel.Plains[:lo-1]
		channel.Ciphers = channel.Ciphers[:lo-1]
		leak.Samples = leak.Samples[:lo-1]
		leak.Traces = leak.Traces[:lo-1]
		if withKeys {
			channel.Keys = channel.Keys[:lo-1]
		}
		d.res.Meta.Iterations--
		return
	}

	channel.Plains = truncate(channel.Plains, lo)
	channel.Ciphers = truncate(channel.Ciphers, lo)
	leak.Samples = truncate(leak.Samples, lo)
	leak.Traces = truncate(leak.Traces, lo)
	if withKeys {
		channel.Keys = truncate(channel.Keys, lo)
	}
}

func truncate[T any](values []T, n int) []T {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func parseInt(keyword keywords.Keyword, value []byte) (int, error) {
	n, err := strconv.Atoi(string(value))
	if err != nil {
		return 0, malformed(err, "%s value", keyword)
	}
	return n, nil
}

// parseBlock normalizes a hexadecimal block to a fixed-width lowercase string.
// An optional 0x prefix and underscores between digits are accepted.
func parseBlock(keyword keywords.Keyword, value []byte) (string, error) {
	compact := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	if !bytes.HasPrefix(bytes.ToLower(compact), []byte("0x")) {
		compact = append([]byte("0x"), compact...)
	}
	n, ok := new(big.Int).SetString(string(compact), 0)
	if !ok || n.Sign() < 0 {
		return "", malformed(nil, "%s value %q is not hexadecimal", keyword, value)
	}
	if n.BitLen() > dataset.BlockHexWidth*4 {
		return "", malformed(nil, "%s value exceeds 128 bits", keyword)
	}
	return leftPad(n.Text(16), dataset.BlockHexWidth), nil
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return string(bytes.Repeat([]byte{'0'}, width-len(s))) + s
}

func parseWeights(value []byte) ([]int, error) {
	if len(value) == 0 {
		return []int{}, nil
	}
	fields := bytes.Split(value, []byte{','})
	trace := make([]int, len(fields))
	for i, field := range fields {
		n, err := strconv.Atoi(string(bytes.TrimSpace(field)))
		if err != nil {
			return nil, malformed(err, "weights value %d", i)
		}
		trace[i] = n
	}
	return trace, nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
