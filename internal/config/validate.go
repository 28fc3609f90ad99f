package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranslator(); err != nil {
		return err
	}
	if err := c.validateConverter(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DICOMDir) == "" {
		return errors.New("paths.dicom_dir must be set")
	}
	if strings.TrimSpace(c.Paths.BIDSDir) == "" {
		return errors.New("paths.bids_dir must be set")
	}
	if c.Paths.DICOMDir == c.Paths.BIDSDir {
		return errors.New("paths.bids_dir must differ from paths.dicom_dir")
	}
	return nil
}

func (c *Config) validateTranslator() error {
	if filepath.Base(c.Translator.Filename) != c.Translator.Filename {
		return fmt.Errorf("translator.filename must be a bare filename, got %q", c.Translator.Filename)
	}
	return nil
}

func (c *Config) validateConverter() error {
	if c.Converter.Binary == "" {
		return errors.New("converter.binary must be set")
	}
	if c.Converter.TimeoutSeconds <= 0 {
		return errors.New("converter.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
