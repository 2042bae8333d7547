package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/samiBendou/sca-automation/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It applies any provided options after the defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.CaptureDir = filepath.Join(base, "captures")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Acquisition.Name = "bench"
	cfg.Acquisition.Iterations = 2
	cfg.Logging.RetentionDays = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithChunks sets the chunk count of the acquisition.
func WithChunks(n int) ConfigOption {
	return func(c *config.Config) { c.Acquisition.Chunks = n }
}

// WithAppend enables appending to existing tables.
func WithAppend() ConfigOption {
	return func(c *config.Config) { c.Storage.Append = true }
}

// WithoutCompression stores raw captures verbatim.
func WithoutCompression() ConfigOption {
	return func(c *config.Config) { c.Storage.CompressCaptures = false }
}
