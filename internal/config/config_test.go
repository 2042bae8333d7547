package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/samiBendou/sca-automation/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SCA_DEVICE", "")
	t.Setenv("SCA_DATA_DIR", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "sca", "data")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Acquisition.Source != config.SourceFile {
		t.Fatalf("unexpected source: %q", cfg.Acquisition.Source)
	}
	if cfg.Acquisition.BaudRate != 921600 {
		t.Fatalf("unexpected baud rate: %d", cfg.Acquisition.BaudRate)
	}
	if cfg.Acquisition.Device != "/dev/ttyUSB1" {
		t.Fatalf("unexpected device: %q", cfg.Acquisition.Device)
	}
	if cfg.Decoder.HammingBias != 0 {
		t.Fatalf("unexpected hamming bias: %d", cfg.Decoder.HammingBias)
	}
	if cfg.Timeout() != 120*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Timeout())
	}
	if cfg.CatalogPath() != filepath.Join(cfg.Paths.LogDir, "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", cfg.CatalogPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.CaptureDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sca.toml")
	t.Setenv("SCA_DEVICE", "")

	type payload struct {
		Acquisition struct {
			Name       string `toml:"name"`
			Source     string `toml:"source"`
			Iterations int    `toml:"iterations"`
			Direction  string `toml:"direction"`
			Device     string `toml:"device"`
		} `toml:"acquisition"`
		Decoder struct {
			HammingBias int `toml:"hamming_bias"`
		} `toml:"decoder"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Acquisition.Name = "/dev/ttyACM0"
	custom.Acquisition.Source = " Serial "
	custom.Acquisition.Iterations = 1024
	custom.Acquisition.Direction = "DEC"
	custom.Acquisition.Device = "/dev/ttyACM0"
	custom.Decoder.HammingBias = 'P'
	custom.Logging.Format = "xml"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Acquisition.Source != config.SourceSerial {
		t.Fatalf("expected normalized source, got %q", cfg.Acquisition.Source)
	}
	if cfg.Acquisition.Direction != "dec" {
		t.Fatalf("expected normalized direction, got %q", cfg.Acquisition.Direction)
	}
	if cfg.Acquisition.Iterations != 1024 {
		t.Fatalf("expected 1024 iterations, got %d", cfg.Acquisition.Iterations)
	}
	if cfg.Decoder.HammingBias != 80 {
		t.Fatalf("expected hamming bias 80, got %d", cfg.Decoder.HammingBias)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected unknown format to fall back to console, got %q", cfg.Logging.Format)
	}
	if cfg.Acquisition.BaudRate != config.Default().Acquisition.BaudRate {
		t.Fatalf("expected default baud rate, got %d", cfg.Acquisition.BaudRate)
	}
}

func TestEnvVarOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("SCA_DEVICE", "/dev/ttyS3")
	t.Setenv("SCA_DATA_DIR", dataDir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Acquisition.Device != "/dev/ttyS3" {
		t.Errorf("expected device from env, got %q", cfg.Acquisition.Device)
	}
	if cfg.Paths.DataDir != dataDir {
		t.Errorf("expected data dir from env, got %q", cfg.Paths.DataDir)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sca.toml")
	if err := os.WriteFile(configPath, []byte("[acquisition\nname = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "hamming_bias") {
		t.Fatalf("sample config missing decoder section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "sca") {
		t.Fatalf("expected data dir to contain sca, got %q", cfg.Paths.DataDir)
	}
	if cfg.Acquisition.BaudRate != 921600 {
		t.Fatalf("unexpected sample baud rate: %d", cfg.Acquisition.BaudRate)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"empty name":       func(c *config.Config) { c.Acquisition.Name = "" },
		"unknown source":   func(c *config.Config) { c.Acquisition.Source = "usb" },
		"zero iterations":  func(c *config.Config) { c.Acquisition.Iterations = 0 },
		"unknown mode":     func(c *config.Config) { c.Acquisition.Mode = "fpga" },
		"unknown dir":      func(c *config.Config) { c.Acquisition.Direction = "both" },
		"odd baud rate":    func(c *config.Config) { c.Acquisition.BaudRate = 12345 },
		"unknown loglevel": func(c *config.Config) { c.Logging.Level = "trace" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
