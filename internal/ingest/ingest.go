// Package ingest turns a raw acquisition log into a saved dataset chunk.
//
// Ingest decodes the log, logs every recovered decode error, merges the
// entities into the data directory through export and records the outcome in
// the catalog. The acquire command and the capture watcher share it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/samiBendou/sca-automation/internal/acquire"
	"github.com/samiBendou/sca-automation/internal/capture"
	"github.com/samiBendou/sca-automation/internal/catalog"
	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/export"
	"github.com/samiBendou/sca-automation/internal/logging"
	"github.com/samiBendou/sca-automation/internal/parser"
	"github.com/samiBendou/sca-automation/internal/request"
)

var (
	// ErrNoTraces reports a log from which no trace could be decoded.
	ErrNoTraces = errors.New("no trace decoded")
	// ErrAlreadyIngested reports a capture whose digest is already in the catalog.
	ErrAlreadyIngested = errors.New("capture already ingested")
)

// Ingester decodes and stores acquisition chunks.
type Ingester struct {
	// Dir receives the dataset tables and archived captures.
	Dir     string
	Options export.Options
	Bias    int
	// Catalog is optional; nil skips run bookkeeping.
	Catalog *catalog.Store
	Logger  *slog.Logger
}

// New returns an ingester writing to the data directory of cfg.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Ingester {
	return &Ingester{
		Dir: cfg.Paths.DataDir,
		Options: export.Options{
			Append:   cfg.Storage.Append,
			Compress: cfg.Storage.CompressCaptures,
		},
		Bias:    cfg.Decoder.HammingBias,
		Catalog: store,
		Logger:  logging.ForComponent(logger, "ingest"),
	}
}

// Outcome is what one Ingest call produced.
type Outcome struct {
	Result   *parser.Result
	Warnings []parser.Warning
	Saved    export.Saved
	// Run is nil when no catalog is configured.
	Run *catalog.Run
}

// Ingest decodes raw as chunk of req and saves it. Decode warnings are
// logged and counted but only a log without any trace, or a failing write,
// returns an error. The run is recorded in either case.
func (i *Ingester) Ingest(ctx context.Context, req request.Request, chunk int, raw []byte) (*Outcome, error) {
	return i.ingest(ctx, req, chunk, raw, "", req.Iterations)
}

// IngestCapture ingests the capture file at path. The dataset and chunk are
// recovered from the file name and the capture is archived under the same
// name. Captures already in the catalog return ErrAlreadyIngested.
func (i *Ingester) IngestCapture(ctx context.Context, path string) (*Outcome, error) {
	req, chunk, err := request.ParseCaptureName(path)
	if err != nil {
		return nil, err
	}
	req.Source = config.SourceFile

	raw, err := capture.Read(path)
	if err != nil {
		return nil, err
	}
	seen, err := i.Seen(ctx, raw)
	if err != nil {
		return nil, err
	}
	if seen != nil {
		return &Outcome{Run: seen}, fmt.Errorf("%w: %s as run %s", ErrAlreadyIngested, filepath.Base(path), seen.ID)
	}
	// The per-chunk trace count is not part of a chunked capture name.
	requested := 0
	if capture.Base(path) == req.Base() {
		requested = req.Iterations
	}
	return i.ingest(ctx, req, chunk, raw, capture.Base(path)+".log", requested)
}

func (i *Ingester) ingest(ctx context.Context, req request.Request, chunk int, raw []byte, captureName string, requested int) (*Outcome, error) {
	log := logging.WithContext(ctx, i.Logger)

	res, warnings := parser.Decode(raw, parser.Options{
		Direction: req.Direction,
		Verbose:   req.Verbose,
		Bias:      i.Bias,
	})
	for _, w := range warnings {
		logging.Warn(log, "decode_warning", "decoding resumed at the next trace", "record discarded",
			slog.Any("warning", w),
		)
	}
	if res.Meta.Mode != "" && (res.Meta.Mode != req.Mode || res.Meta.Direction != req.Direction) {
		logging.Warn(log, "meta_mismatch", "check the firmware command flags", "device meta differs from request",
			logging.String("requested", fmt.Sprintf("%s/%s", req.Mode, req.Direction)),
			logging.String("device", fmt.Sprintf("%s/%s", res.Meta.Mode, res.Meta.Direction)),
		)
	}

	outcome := &Outcome{Result: res, Warnings: warnings}
	run := catalog.Run{
		Name:      req.Name,
		Base:      req.Base(),
		Source:    req.Source,
		Mode:      req.Mode,
		Direction: req.Direction,
		Chunk:     chunk,
		Requested: requested,
		Parsed:    res.Len(),
		Warnings:  len(warnings),
	}
	if raw != nil {
		run.Digest = capture.Sum(raw).String()
	}

	var err error
	if res.Len() == 0 {
		err = fmt.Errorf("%w in %d lines (state %s)", ErrNoTraces, res.Lines, res.State)
	} else {
		outcome.Saved, err = export.Save(ctx, i.Dir, export.Job{
			Request:     req,
			Chunk:       chunk,
			Result:      res,
			Raw:         raw,
			CaptureName: captureName,
		}, i.Options)
		run.CapturePath = outcome.Saved.Capture
	}
	if err != nil {
		run.ErrorMessage = err.Error()
	}

	if i.Catalog != nil {
		stored, recErr := i.Catalog.Record(ctx, run)
		if recErr != nil {
			log.Error("catalog record failed", logging.Error(recErr))
		} else {
			outcome.Run = stored
			log = log.With(logging.String(logging.FieldRunID, stored.ID))
		}
	}

	if err != nil {
		log.Error("chunk not saved", logging.String("base", run.Base), logging.Error(err))
		return outcome, err
	}
	log.Info("chunk saved",
		logging.String("base", run.Base),
		logging.Int("parsed", run.Parsed),
		logging.Int("requested", run.Requested),
		logging.Int("warnings", run.Warnings),
		logging.Int("iterations", outcome.Saved.Stored.Iterations),
		logging.String("state", res.State.String()),
	)
	return outcome, nil
}

// Seen returns the successful run that already ingested raw, if any.
func (i *Ingester) Seen(ctx context.Context, raw []byte) (*catalog.Run, error) {
	if i.Catalog == nil {
		return nil, nil
	}
	return i.Catalog.FindByDigest(ctx, capture.Sum(raw).String())
}

// Handler adapts Ingest to the acquisition runner.
func (i *Ingester) Handler(req request.Request) acquire.Handler {
	return func(ctx context.Context, chunk int, raw []byte) error {
		_, err := i.Ingest(ctx, req, chunk, raw)
		return err
	}
}
