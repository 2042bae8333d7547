package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/logging"
	"github.com/samiBendou/sca-automation/internal/request"
)

// Source yields the raw log of one chunk of a request.
type Source interface {
	Read(ctx context.Context, req request.Request, chunk int) ([]byte, error)
}

// FileSource reads captures previously stored in Dir.
type FileSource struct {
	Dir string
}

func (f FileSource) Read(_ context.Context, req request.Request, chunk int) ([]byte, error) {
	return ReadFile(filepath.Join(f.Dir, req.CaptureName(chunk)))
}

// SerialSource runs each chunk on the device.
type SerialSource struct {
	Serial Serial
}

func (s SerialSource) Read(ctx context.Context, req request.Request, _ int) ([]byte, error) {
	return s.Serial.Acquire(ctx, req.Command(request.CommandName))
}

// NewSource returns the source selected by acquisition.source.
func NewSource(cfg *config.Config) (Source, error) {
	switch cfg.Acquisition.Source {
	case config.SourceFile:
		return FileSource{Dir: cfg.Paths.CaptureDir}, nil
	case config.SourceSerial:
		return SerialSource{Serial: Serial{
			Device:       cfg.Acquisition.Device,
			BaudRate:     cfg.Acquisition.BaudRate,
			Timeout:      cfg.Timeout(),
			PollInterval: cfg.PollInterval(),
		}}, nil
	default:
		return nil, fmt.Errorf("unknown acquisition source %q", cfg.Acquisition.Source)
	}
}

// Handler processes the raw log of one 0-based chunk.
type Handler func(ctx context.Context, chunk int, raw []byte) error

// Runner acquires every chunk of a request in order.
type Runner struct {
	Source Source
	Logger *slog.Logger
}

// Run reads each chunk from the source and hands it to handle. The chunk
// index is attached to ctx for chunked requests. Run stops at the first error.
func (r *Runner) Run(ctx context.Context, req request.Request, handle Handler) error {
	logger := logging.ForComponent(r.Logger, "acquire")
	for chunk := 0; chunk < req.ChunkCount(); chunk++ {
		chunkCtx := ctx
		if req.Chunks > 0 {
			chunkCtx = logging.WithChunk(ctx, chunk+1)
		}
		log := logging.WithContext(chunkCtx, logger)

		log.Info("acquisition started",
			logging.String("source", req.Source),
			logging.Int("requested", (chunk+1)*req.Iterations),
			logging.Int("total", req.Total()),
		)
		start := time.Now()
		raw, err := r.Source.Read(chunkCtx, req, chunk)
		if err != nil {
			return fmt.Errorf("acquire chunk %d/%d: %w", chunk+1, req.ChunkCount(), err)
		}
		log.Info("acquisition finished",
			logging.Int("bytes", len(raw)),
			logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		)

		if err := handle(chunkCtx, chunk, raw); err != nil {
			return fmt.Errorf("process chunk %d/%d: %w", chunk+1, req.ChunkCount(), err)
		}
	}
	return nil
}
