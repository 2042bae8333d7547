package acquire_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samiBendou/sca-automation/internal/acquire"
	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/dataset"
	"github.com/samiBendou/sca-automation/internal/logging"
	"github.com/samiBendou/sca-automation/internal/request"
)

// fakeDevice replays reads in order and returns empty reads once drained.
type fakeDevice struct {
	written bytes.Buffer
	reads   [][]byte
	eof     bool
}

func (d *fakeDevice) Write(p []byte) (int, error) { return d.written.Write(p) }

func (d *fakeDevice) Read(p []byte) (int, error) {
	if len(d.reads) == 0 {
		if d.eof {
			return 0, io.EOF
		}
		return 0, nil
	}
	next := d.reads[0]
	d.reads = d.reads[1:]
	return copy(p, next), nil
}

var endLine = []byte{0xff, 0xff, 0xff, 0xff, '\r', '\n'}

func TestAcquireReadsUntilEndSentinel(t *testing.T) {
	dev := &fakeDevice{reads: [][]byte{
		[]byte("sensors: 4\r\n"),
		{},
		[]byte("target: 9\r\n\xff\xff"),
		[]byte("\xff\xff\r\n"),
		[]byte("never read"),
	}}

	got, err := acquire.Acquire(context.Background(), dev, "sca -t 1 -h")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if dev.written.String() != "sca -t 1 -h\n" {
		t.Fatalf("command written = %q", dev.written.String())
	}
	want := append([]byte("sensors: 4\r\ntarget: 9\r\n"), endLine...)
	if !bytes.Equal(got, want) {
		t.Fatalf("Acquire = %q, want %q", got, want)
	}
}

func TestAcquireIgnoresSentinelOutsideTail(t *testing.T) {
	payload := append(append([]byte{}, endLine...), []byte("code: abcdefgh\r\n")...)
	dev := &fakeDevice{reads: [][]byte{payload}, eof: true}

	got, err := acquire.Acquire(context.Background(), dev, "sca")
	if !errors.Is(err, acquire.ErrIncomplete) {
		t.Fatalf("Acquire err = %v, want ErrIncomplete", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("partial data lost: %q", got)
	}
}

func TestAcquireStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := acquire.Acquire(ctx, &fakeDevice{}, "sca")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire err = %v, want deadline exceeded", err)
	}
}

func TestReadFileFindsCompressedCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	data := append([]byte("mode: hw\r\n"), endLine...)
	if _, _, err := capture.Write(path, data, true); err != nil {
		t.Fatalf("capture.Write: %v", err)
	}
	got, err := acquire.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("ReadFile = %q", got)
	}
}

func TestRunnerVisitsChunksInOrder(t *testing.T) {
	dir := t.TempDir()
	req := request.Request{
		Name:       "bench",
		Iterations: 4,
		Source:     config.SourceFile,
		Mode:       dataset.ModeHardware,
		Direction:  dataset.DirectionEncrypt,
		Chunks:     3,
	}
	for chunk := 0; chunk < req.Chunks; chunk++ {
		payload := []byte{byte('a' + chunk)}
		if _, _, err := capture.Write(filepath.Join(dir, req.CaptureName(chunk)), payload, chunk == 1); err != nil {
			t.Fatalf("write chunk %d: %v", chunk, err)
		}
	}

	runner := acquire.Runner{Source: acquire.FileSource{Dir: dir}, Logger: logging.Discard()}
	var seen []string
	err := runner.Run(context.Background(), req, func(ctx context.Context, chunk int, raw []byte) error {
		index, ok := logging.ChunkFromContext(ctx)
		if !ok || index != chunk+1 {
			t.Errorf("chunk %d: context index %d (%t)", chunk, index, ok)
		}
		seen = append(seen, string(raw))
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Fatalf("unexpected chunks %v", seen)
	}
}

func TestRunnerStopsAtFirstError(t *testing.T) {
	req := request.Request{Name: "missing", Iterations: 1, Mode: dataset.ModeHardware, Direction: dataset.DirectionEncrypt}
	runner := acquire.Runner{Source: acquire.FileSource{Dir: t.TempDir()}}

	called := false
	err := runner.Run(context.Background(), req, func(context.Context, int, []byte) error {
		called = true
		return nil
	})
	if !errors.Is(err, capture.ErrNotFound) {
		t.Fatalf("Run err = %v, want ErrNotFound", err)
	}
	if called {
		t.Fatal("handler must not run when the source fails")
	}

	sentinel := errors.New("stop")
	dir := t.TempDir()
	if _, _, err := capture.Write(filepath.Join(dir, req.CaptureName(0)), []byte("x"), false); err != nil {
		t.Fatal(err)
	}
	runner.Source = acquire.FileSource{Dir: dir}
	err = runner.Run(context.Background(), req, func(context.Context, int, []byte) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("Run err = %v, want handler error", err)
	}
}

func TestNewSource(t *testing.T) {
	cfg := config.Default()
	src, err := acquire.NewSource(&cfg)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	if _, ok := src.(acquire.FileSource); !ok {
		t.Fatalf("expected FileSource, got %T", src)
	}

	cfg.Acquisition.Source = config.SourceSerial
	src, err = acquire.NewSource(&cfg)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	serial, ok := src.(acquire.SerialSource)
	if !ok || serial.Serial.BaudRate != 921600 || serial.Serial.Timeout != cfg.Timeout() {
		t.Fatalf("unexpected serial source %+v", src)
	}

	cfg.Acquisition.Source = "usb"
	if _, err := acquire.NewSource(&cfg); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestSerialAcquireReportsMissingDevice(t *testing.T) {
	device := filepath.Join(t.TempDir(), "ttyUSB9")
	s := acquire.Serial{Device: device, BaudRate: 921600, PollInterval: 10 * time.Millisecond}

	_, err := s.Acquire(context.Background(), "sca -t 2")
	if err == nil || !strings.Contains(err.Error(), device) {
		t.Fatalf("Acquire = %v, want an open error naming %s", err, device)
	}
}

func TestOpenPortRejectsInvalidBaudRate(t *testing.T) {
	if _, err := acquire.OpenPort(filepath.Join(t.TempDir(), "tty"), 0, time.Millisecond); err == nil {
		t.Fatal("expected error for a zero baud rate")
	}
}
