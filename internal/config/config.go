package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Acquisition sources.
const (
	SourceFile   = "file"
	SourceSerial = "serial"
)

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	CaptureDir string `toml:"capture_dir"`
	LogDir     string `toml:"log_dir"`
}

// Acquisition describes the run requested from the device.
type Acquisition struct {
	Name           string `toml:"name"`
	Source         string `toml:"source"`
	Iterations     int    `toml:"iterations"`
	Chunks         int    `toml:"chunks"`
	Mode           string `toml:"mode"`
	Direction      string `toml:"direction"`
	Verbose        bool   `toml:"verbose"`
	Device         string `toml:"device"`
	BaudRate       int    `toml:"baud_rate"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
}

// Decoder contains stream decoding parameters.
type Decoder struct {
	// HammingBias is subtracted from sensors*target when computing the
	// sample offset. Firmware that encodes samples as printable characters
	// needs 80 ('P').
	HammingBias int `toml:"hamming_bias"`
}

// Storage controls how captures and tables are written.
type Storage struct {
	CompressCaptures bool `toml:"compress_captures"`
	Append           bool `toml:"append"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for the sca tool.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Acquisition Acquisition `toml:"acquisition"`
	Decoder     Decoder     `toml:"decoder"`
	Storage     Storage     `toml:"storage"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sca.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, capture and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.CaptureDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogPath returns the location of the acquisition catalog database.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.LogDir, catalogFileName)
}

// Timeout returns the serial acquisition timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Acquisition.TimeoutSeconds) * time.Second
}

// PollInterval returns the delay between two serial reads.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Acquisition.PollIntervalMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
