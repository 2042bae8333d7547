package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/logging"
)

func TestNewFromConfigWritesSessionFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "error"

	logger, sessionPath, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if filepath.Dir(sessionPath) != cfg.Paths.LogDir {
		t.Fatalf("unexpected session path %q", sessionPath)
	}
	if matched, _ := filepath.Match(logging.SessionPattern, filepath.Base(sessionPath)); !matched {
		t.Fatalf("session file %q does not match %q", sessionPath, logging.SessionPattern)
	}

	logger.Error("decode failed", logging.String(logging.FieldComponent, "parser"))

	content, err := os.ReadFile(sessionPath)
	if err != nil {
		t.Fatalf("read session log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("session log is not JSON: %v (%q)", err, content)
	}
	if entry["msg"] != "decode failed" || entry["level"] != "error" || entry["component"] != "parser" {
		t.Fatalf("unexpected entry %v", entry)
	}
	ts, ok := entry["ts"].(string)
	if !ok || !strings.HasSuffix(ts, "Z") || len(ts) != len("2006-01-02T15:04:05.000Z") {
		t.Fatalf("expected UTC millisecond ts in %v", entry)
	}
}

func TestConsoleLoggerFormatsSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithChunk(logging.WithRunID(context.Background(), "0123456789abcdef"), 2)
	log := logging.WithContext(ctx, logging.ForComponent(logger, "acquire"))
	log.Info("chunk decoded", logging.Int(logging.FieldRecord, 12), logging.String("note", "two words"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"INFO [acquire] run 01234567 · chunk 2 chunk decoded", "record=12", `note="two words"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logging.Warn(logger, "decode_warning", "", "shown")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden") {
		t.Fatalf("info line written at warn level: %q", content)
	}
	if !strings.Contains(string(content), `"event_type":"decode_warning"`) {
		t.Fatalf("expected event type in %q", content)
	}
	if !strings.Contains(string(content), `"error_hint":"see the session log around this line"`) {
		t.Fatalf("expected default hint in %q", content)
	}
}

func TestTeeHandler(t *testing.T) {
	var a, b bytes.Buffer
	info := slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo})
	errorsOnly := slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError})

	if h := logging.TeeHandler(nil, info, nil); h != info {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
	if logging.TeeHandler(nil) != slog.DiscardHandler {
		t.Fatal("expected a discarding handler without handlers")
	}

	logger := slog.New(logging.TeeHandler(info, errorsOnly)).With("k", "v")
	logger.Info("first")
	logger.Error("second")

	if !strings.Contains(a.String(), "first") || !strings.Contains(a.String(), "second") {
		t.Fatalf("info handler missed records: %q", a.String())
	}
	if strings.Contains(b.String(), "first") || !strings.Contains(b.String(), "k=v") {
		t.Fatalf("error handler got %q", b.String())
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "sca-20200101T000000.log")
	current := filepath.Join(dir, "sca-20200102T000000.log")
	fresh := filepath.Join(dir, "sca-20990101T000000.log")
	other := filepath.Join(dir, "catalog.db")
	for _, path := range []string{old, current, fresh, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{old, current, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}

	if n := logging.CleanupOldLogs(logging.Discard(), 0, dir, logging.SessionPattern); n != 0 {
		t.Fatalf("retention 0 removed %d files", n)
	}
	if n := logging.CleanupOldLogs(logging.Discard(), 5, dir, logging.SessionPattern, current); n != 1 {
		t.Fatalf("removed %d files, want 1", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed, stat err %v", old, err)
	}
	for _, path := range []string{current, fresh, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}
