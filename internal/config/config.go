package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DICOMDir string `toml:"dicom_dir"`
	BIDSDir  string `toml:"bids_dir"`
	LogDir   string `toml:"log_dir"`
}

// Translator contains configuration for the protocol translator file.
type Translator struct {
	Filename string `toml:"filename"`
}

// Converter contains configuration for the external DICOM converter.
type Converter struct {
	Binary           string `toml:"binary"`
	FilenameTemplate string `toml:"filename_template"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bidsprep.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Translator Translator `toml:"translator"`
	Converter  Converter  `toml:"converter"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bidsprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bidsprep.toml")
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

// TranslatorPath returns the protocol translator location under the DICOM
// input root.
func (c *Config) TranslatorPath() string {
	return filepath.Join(c.Paths.DICOMDir, c.Translator.Filename)
}

// ManifestPath returns the participants manifest location under the BIDS
// output root.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.BIDSDir, "participants.tsv")
}

// EnsureDirectories creates the log directory. The BIDS output root is left
// alone: its existence drives pass selection.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DICOMDir, err = expandPath(c.Paths.DICOMDir); err != nil {
		return fmt.Errorf("paths.dicom_dir: %w", err)
	}
	if c.Paths.BIDSDir, err = expandPath(c.Paths.BIDSDir); err != nil {
		return fmt.Errorf("paths.bids_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Translator.Filename = strings.TrimSpace(c.Translator.Filename)
	if c.Translator.Filename == "" {
		c.Translator.Filename = defaultTranslatorFilename
	}

	c.Converter.Binary = strings.TrimSpace(c.Converter.Binary)
	if c.Converter.Binary == "" {
		c.Converter.Binary = defaultConverterBinary
	}
	c.Converter.FilenameTemplate = strings.TrimSpace(c.Converter.FilenameTemplate)
	if c.Converter.FilenameTemplate == "" {
		c.Converter.FilenameTemplate = defaultFilenameTemplate
	}
	if c.Converter.TimeoutSeconds <= 0 {
		c.Converter.TimeoutSeconds = defaultConverterTimeout
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
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
