package config

import (
	"errors"
	"fmt"
	"slices"
)

var supportedBaudRates = []int{9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAcquisition(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAcquisition() error {
	a := c.Acquisition
	if a.Name == "" {
		return errors.New("acquisition.name must be set")
	}
	switch a.Source {
	case SourceFile, SourceSerial:
	default:
		return fmt.Errorf("acquisition.source must be %q or %q, got %q", SourceFile, SourceSerial, a.Source)
	}
	if a.Iterations <= 0 {
		return errors.New("acquisition.iterations must be positive")
	}
	switch a.Mode {
	case "hw", "sw":
	default:
		return fmt.Errorf("acquisition.mode must be hw or sw, got %q", a.Mode)
	}
	switch a.Direction {
	case "enc", "dec":
	default:
		return fmt.Errorf("acquisition.direction must be enc or dec, got %q", a.Direction)
	}
	if !slices.Contains(supportedBaudRates, a.BaudRate) {
		return fmt.Errorf("acquisition.baud_rate %d is not supported", a.BaudRate)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognised", c.Logging.Level)
	}
}
