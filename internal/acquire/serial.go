package acquire

import (
	"context"
	"fmt"
	"time"
)

// Serial acquires traces from a device connected to a serial port.
type Serial struct {
	Device   string
	BaudRate int
	// Timeout bounds a whole acquisition. Zero disables it.
	Timeout time.Duration
	// PollInterval is how long a read waits for data before returning empty.
	PollInterval time.Duration
}

// Acquire opens the port, sends command and reads until the end sentinel.
func (s Serial) Acquire(ctx context.Context, command string) ([]byte, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	port, err := OpenPort(s.Device, s.BaudRate, s.PollInterval)
	if err != nil {
		return nil, err
	}
	defer port.Close()

	if err := port.Flush(); err != nil {
		return nil, fmt.Errorf("flush %s: %w", s.Device, err)
	}
	return Acquire(ctx, port, command)
}
