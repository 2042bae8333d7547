package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/dataset"
)

// ErrCaptureName reports a capture whose file name does not follow
// <name>_<mode>_<direction>_<total>[_<chunk>].log.
var ErrCaptureName = errors.New("unrecognized capture name")

// ParseCaptureName recovers the request and 0-based chunk of a capture file
// written by CaptureName. The request is unchunked with Iterations set to the
// dataset total so that Base matches the dataset the capture belongs to.
func ParseCaptureName(name string) (Request, int, error) {
	base := capture.Base(name)
	parts := strings.Split(base, "_")

	if req, ok := parseParts(parts); ok {
		return req, 0, nil
	}
	if len(parts) > 1 {
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err == nil && n > 0 {
			if req, ok := parseParts(parts[:len(parts)-1]); ok {
				return req, n - 1, nil
			}
		}
	}
	return Request{}, 0, fmt.Errorf("%w: %s", ErrCaptureName, name)
}

func parseParts(parts []string) (Request, bool) {
	if len(parts) < 4 {
		return Request{}, false
	}
	n := len(parts)
	mode := dataset.Mode(parts[n-3])
	direction := dataset.Direction(parts[n-2])
	total, err := strconv.Atoi(parts[n-1])
	if err != nil || total <= 0 {
		return Request{}, false
	}
	if mode != dataset.ModeHardware && mode != dataset.ModeSoftware {
		return Request{}, false
	}
	if direction != dataset.DirectionEncrypt && direction != dataset.DirectionDecrypt {
		return Request{}, false
	}
	return Request{
		Name:       strings.Join(parts[:n-3], "_"),
		Iterations: total,
		Mode:       mode,
		Direction:  direction,
	}, true
}
