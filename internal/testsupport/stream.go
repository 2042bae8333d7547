package testsupport

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/samiBendou/sca-automation/internal/keywords"
)

// Stream builds acquisition logs line by line for decoder tests.
type Stream struct {
	buf bytes.Buffer
}

// NewStream returns an empty log builder.
func NewStream() *Stream { return &Stream{} }

// Line appends a "keyword: value" line.
func (s *Stream) Line(keyword keywords.Keyword, value string) *Stream {
	s.buf.WriteString(keyword.String())
	s.buf.WriteByte(keywords.Delimiter)
	s.buf.WriteByte(' ')
	s.buf.WriteString(value)
	s.buf.Write(keywords.LineTerminator)
	return s
}

// Raw appends an arbitrary line.
func (s *Stream) Raw(line []byte) *Stream {
	s.buf.Write(line)
	s.buf.Write(keywords.LineTerminator)
	return s
}

// Start appends a start-of-trace tag.
func (s *Stream) Start() *Stream { return s.Raw(keywords.StartTraceTag) }

// End appends an end-of-acquisition tag.
func (s *Stream) End() *Stream { return s.Raw(keywords.EndAcqTag) }

// Meta appends the meta-data block in firmware order.
func (s *Stream) Meta(sensors, target int, mode, direction, key string) *Stream {
	return s.Line(keywords.Sensors, strconv.Itoa(sensors)).
		Line(keywords.Target, strconv.Itoa(target)).
		Line(keywords.Mode, mode).
		Line(keywords.Direction, direction).
		Line(keywords.Key, key)
}

// Code appends a compressed sample line carrying the raw codes.
func (s *Stream) Code(codes []byte) *Stream {
	s.buf.WriteString(keywords.CodePrefix)
	s.buf.Write(codes)
	s.buf.Write(keywords.LineTerminator)
	return s
}

// Weights appends a verbose sample line.
func (s *Stream) Weights(values []int) *Stream {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return s.Line(keywords.Weights, strings.Join(parts, ","))
}

// Record appends a complete compressed trace in encryption order.
func (s *Stream) Record(plain, cipher string, codes []byte) *Stream {
	return s.Start().
		Line(keywords.Plain, plain).
		Line(keywords.Cipher, cipher).
		Line(keywords.Samples, strconv.Itoa(len(codes))).
		Code(codes)
}

// Bytes returns the log built so far.
func (s *Stream) Bytes() []byte { return bytes.Clone(s.buf.Bytes()) }

// Sample blocks in the spaced format printed by the firmware.
const (
	KeyBlock     = "2b 7e 15 16 28 ae d2 a6 ab f7 15 88 09 cf 4f 3c"
	PlainBlock0  = "32 43 f6 a8 88 5a 30 8d 31 31 98 a2 e0 37 07 34"
	CipherBlock0 = "39 25 84 1d 02 dc 09 fb dc 11 85 97 19 6a 0b 32"
	PlainBlock1  = "00 11 22 33 44 55 66 77 88 99 aa bb cc dd ee ff"
	CipherBlock1 = "69 c4 e0 d8 6a 7b 04 30 d8 cd b7 80 70 b4 c5 5a"
)

// Compact removes the spaces of a firmware block.
func Compact(block string) string {
	return strings.ReplaceAll(block, " ", "")
}

// TwoRecordLog returns a complete encryption log of two compressed traces of
// four samples each, with sensors=4 and target=9.
func TwoRecordLog() []byte {
	return NewStream().
		Meta(4, 9, "hw", "enc", KeyBlock).
		Record(PlainBlock0, CipherBlock0, []byte{'A', 'B', 'C', 'D'}).
		Record(PlainBlock1, CipherBlock1, []byte{0x00, 0x01, 0x7f, 0xff}).
		End().
		Bytes()
}
