package keywords

// Keyword names a field of the acquisition log.
type Keyword string

const (
	Mode       Keyword = "mode"
	Direction  Keyword = "direction"
	Sensors    Keyword = "sensors"
	Target     Keyword = "target"
	Key        Keyword = "keys"
	Plain      Keyword = "plains"
	Cipher     Keyword = "ciphers"
	Samples    Keyword = "samples"
	Code       Keyword = "code"
	Weights    Keyword = "weights"
	Offset     Keyword = "offset"
	Iterations Keyword = "iterations"
)

// Delimiter separates a keyword from its value on a data line.
const Delimiter = ':'

// Line terminator and sentinel lines of the binary log. These are shared
// read-only values; callers must not modify the returned slices.
var (
	LineTerminator = []byte("\r\n")
	StartTraceTag  = []byte{0xfe, 0xfe, 0xfe, 0xfe}
	EndAcqTag      = []byte{0xff, 0xff, 0xff, 0xff}
)

// CodePrefix is the literal prefix of a compressed sample line. The raw
// sample codes start right after it.
const CodePrefix = string(Code) + ": "

// String returns the keyword text.
func (k Keyword) String() string { return string(k) }

var metawords = [...]Keyword{Sensors, Target, Mode, Direction, Key}

// Metawords returns the keywords emitted once at the start of an acquisition.
func Metawords() []Keyword {
	out := make([]Keyword, len(metawords))
	copy(out, metawords[:])
	return out
}

// Datawords returns the keywords emitted for every trace, in order.
func Datawords(inverse, verbose bool) []Keyword {
	words := make([]Keyword, 0, 4)
	if inverse {
		words = append(words, Cipher, Plain)
	} else {
		words = append(words, Plain, Cipher)
	}
	if verbose {
		return append(words, Samples, Weights)
	}
	return append(words, Samples, Code)
}
