package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAcquisition()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SCA_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.CaptureDir) == "" {
		c.Paths.CaptureDir = defaultCaptureDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.CaptureDir, err = expandPath(c.Paths.CaptureDir); err != nil {
		return fmt.Errorf("paths.capture_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAcquisition() {
	a := &c.Acquisition
	a.Name = strings.TrimSpace(a.Name)
	a.Source = strings.ToLower(strings.TrimSpace(a.Source))
	if a.Source == "" {
		a.Source = SourceFile
	}
	a.Mode = strings.ToLower(strings.TrimSpace(a.Mode))
	if a.Mode == "" {
		a.Mode = defaultMode
	}
	a.Direction = strings.ToLower(strings.TrimSpace(a.Direction))
	if a.Direction == "" {
		a.Direction = defaultDirection
	}
	if value, ok := os.LookupEnv("SCA_DEVICE"); ok && strings.TrimSpace(value) != "" {
		a.Device = strings.TrimSpace(value)
	}
	a.Device = strings.TrimSpace(a.Device)
	if a.Device == "" {
		a.Device = defaultDevice
	}
	if a.Chunks < 0 {
		a.Chunks = 0
	}
	if a.BaudRate <= 0 {
		a.BaudRate = defaultBaudRate
	}
	if a.TimeoutSeconds <= 0 {
		a.TimeoutSeconds = defaultTimeoutSeconds
	}
	if a.PollIntervalMS <= 0 {
		a.PollIntervalMS = defaultPollIntervalMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
