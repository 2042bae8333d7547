package logging

import (
	"context"
	"log/slog"
	"time"
)

const defaultHint = "see the session log around this line"

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

// Error keys err under "error". A nil error is still written.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForComponent tags logger with the component name. A nil logger discards.
func ForComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With(String(FieldComponent, component))
}

// Warn logs msg at warn level with event_type and error_hint set. An empty
// hint is replaced by a generic one.
func Warn(logger *slog.Logger, eventType, hint, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	if hint == "" {
		hint = defaultHint
	}
	attrs = append(attrs, String(FieldEventType, eventType), String(FieldErrorHint, hint))
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}
