package parser

// DecodeHamming maps a transmitted sample code to its leakage value. The
// firmware sends each sample shifted by the run offset so it fits in a byte.
func DecodeHamming(code byte, offset int) int {
	return int(code) + offset
}
