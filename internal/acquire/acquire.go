package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/keywords"
)

// tailWindow is the number of trailing bytes searched for the end sentinel.
const tailWindow = 8

const (
	readBufferSize = 4096
	idlePoll       = 5 * time.Millisecond
)

// ErrIncomplete reports a stream that ended before the end-of-acquisition sentinel.
var ErrIncomplete = errors.New("acquisition ended before end sentinel")

// ReadFile loads a previously captured log. A missing path is retried with
// the compressed suffix.
func ReadFile(path string) ([]byte, error) {
	located, err := capture.Locate(path)
	if err != nil {
		return nil, err
	}
	return capture.Read(located)
}

// Acquire sends command, terminated by a newline, and reads rw until the
// end-of-acquisition sentinel shows up in the trailing bytes. Reads that
// return no data are retried until ctx is done. Data received so far is returned
// with any error.
func Acquire(ctx context.Context, rw io.ReadWriter, command string) ([]byte, error) {
	if _, err := io.WriteString(rw, command+"\n"); err != nil {
		return nil, fmt.Errorf("send command: %w", err)
	}

	var out []byte
	buf := make([]byte, readBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		n, err := rw.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			if ended(out) {
				return out, nil
			}
		}
		if errors.Is(err, io.EOF) {
			return out, ErrIncomplete
		}
		if err != nil {
			return out, fmt.Errorf("read acquisition: %w", err)
		}
		if n == 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(idlePoll):
			}
		}
	}
}

func ended(data []byte) bool {
	tail := data
	if len(tail) > tailWindow {
		tail = tail[len(tail)-tailWindow:]
	}
	return bytes.Contains(tail, keywords.EndAcqTag)
}
