package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"bidsprep/internal/config"
	"bidsprep/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run logger: stderr plus a log file under the
// configured log directory. The "auto" format follows whether stderr is a
// terminal, not the combined writer.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	format := cfg.Logging.Format
	if format == "auto" {
		format = "json"
		if isTerminal(os.Stderr) {
			format = "console"
		}
	}

	writer := io.Writer(os.Stderr)
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		file, err := logging.OpenLogFile(cfg.Paths.LogDir, "bidsprep.log")
		if err != nil {
			return nil, err
		}
		writer = io.MultiWriter(os.Stderr, file)
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: format,
		Writer: writer,
	})
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
