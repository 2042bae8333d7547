package acquire

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// defaultPoll is used when no poll interval is configured.
const defaultPoll = 100 * time.Millisecond

// Port is a raw 8N1 serial line. Reads return 0, nil after the poll interval
// when no byte arrived.
type Port struct {
	serial.Port
	name string
}

// OpenPort opens device at the given baud rate.
func OpenPort(device string, baudRate int, poll time.Duration) (*Port, error) {
	if baudRate <= 0 {
		return nil, fmt.Errorf("baud rate %d is not supported", baudRate)
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if poll <= 0 {
		poll = defaultPoll
	}
	if err := p.SetReadTimeout(poll); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("configure %s: %w", device, err)
	}
	return &Port{Port: p, name: device}, nil
}

// Flush discards data pending in both directions.
func (p *Port) Flush() error {
	if err := p.ResetInputBuffer(); err != nil {
		return err
	}
	return p.ResetOutputBuffer()
}

func (p *Port) String() string { return p.name }
