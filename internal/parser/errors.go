package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

var (
	// ErrUnexpectedKeyword reports a keyword that does not match the sequence.
	ErrUnexpectedKeyword = errors.New("unexpected keyword")
	// ErrMalformedLine reports a line without delimiter or a value that cannot be coerced.
	ErrMalformedLine = errors.New("malformed line")
	// ErrLengthMismatch reports a trace whose length differs from its sample count.
	ErrLengthMismatch = errors.New("trace length mismatch")
)

// Kind classifies a decode error.
type Kind int

const (
	KindUnexpectedKeyword Kind = iota + 1
	KindMalformedLine
	KindLengthMismatch
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedKeyword:
		return "unexpected_keyword"
	case KindMalformedLine:
		return "malformed_line"
	case KindLengthMismatch:
		return "length_mismatch"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnexpectedKeyword:
		return ErrUnexpectedKeyword
	case KindMalformedLine:
		return ErrMalformedLine
	case KindLengthMismatch:
		return ErrLengthMismatch
	default:
		return nil
	}
}

// DecodeError is raised while decoding a single line. errors.Is matches it
// against the sentinel of its Kind.
type DecodeError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *DecodeError) Unwrap() error { return e.Err }

func unexpected(format string, args ...any) error {
	return &DecodeError{Kind: KindUnexpectedKeyword, Detail: fmt.Sprintf(format, args...)}
}

func malformed(err error, format string, args ...any) error {
	return &DecodeError{Kind: KindMalformedLine, Detail: fmt.Sprintf(format, args...), Err: err}
}

func mismatch(got, want int) error {
	return &DecodeError{Kind: KindLengthMismatch, Detail: fmt.Sprintf("%d != %d", got, want)}
}

// Warning describes a recovered decode error. The record that was being
// decoded is discarded and decoding resumes at the next trace.
type Warning struct {
	Kind Kind
	// Record is the number of traces decoded when the error occurred.
	Record int
	// Line is the zero-based index of the offending line.
	Line int
	Raw  []byte
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("parsing error: %v (iteration %d, line %d: %s)", w.Err, w.Record, w.Line, strconv.Quote(string(w.Raw)))
}

// LogValue renders the warning as a structured group.
func (w Warning) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", w.Kind.String()),
		slog.Int("record", w.Record),
		slog.Int("line", w.Line),
		slog.String("raw", strconv.Quote(string(w.Raw))),
		slog.Any("error", w.Err),
	)
}
