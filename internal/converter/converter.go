package converter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"bidsprep/internal/logging"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps converter CLI interactions.
type Client struct {
	binary   string
	template string
	timeout  time.Duration
	logger   *slog.Logger
	exec     Executor
}

// New constructs a converter client.
func New(binary, template string, timeoutSeconds int, logger *slog.Logger, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("converter binary required")
	}
	client := &Client{
		binary:   binary,
		template: template,
		timeout:  time.Duration(timeoutSeconds) * time.Second,
		logger:   logging.NewComponentLogger(logger, "converter"),
		exec:     commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Convert runs the converter over one session directory, placing output files
// named by the template into outDir. The converter's stream output is relayed
// at debug level and a non-zero exit surfaces as an error.
func (c *Client) Convert(ctx context.Context, sessionDir, outDir string) error {
	if sessionDir == "" {
		return errors.New("session directory required")
	}
	if outDir == "" {
		return errors.New("output directory required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create conversion directory: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"-b", "y", "-f", c.template, "-o", outDir, sessionDir}
	c.logger.Debug("invoking converter",
		logging.String("binary", c.binary),
		logging.String("args", strings.Join(args, " ")))

	err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		c.logger.Debug("converter output", logging.String("line", line))
	})
	if err != nil {
		return fmt.Errorf("convert session %s: %w", sessionDir, err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() { scanErr = err })
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("command aborted: %w", ctxErr)
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return scanErr
}
