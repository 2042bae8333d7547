package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one acquisition run in the catalog.
	FieldRunID = "run_id"
	// FieldChunk is the 1-based chunk index of a chunked acquisition.
	FieldChunk = "chunk"
	// FieldLine is the 0-based line index in the decoded stream.
	FieldLine = "line"
	// FieldRecord is the number of records decoded so far.
	FieldRecord = "record"
	FieldPath   = "path"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
)

type contextKey int

const (
	runIDKey contextKey = iota
	chunkKey
)

// WithRunID stores the run identifier on ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithChunk stores the 1-based chunk index on ctx.
func WithChunk(ctx context.Context, chunk int) context.Context {
	return context.WithValue(ctx, chunkKey, chunk)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// ChunkFromContext returns the chunk index stored by WithChunk.
func ChunkFromContext(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	chunk, ok := ctx.Value(chunkKey).(int)
	return chunk, ok
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if chunk, ok := ChunkFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldChunk, chunk))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}
