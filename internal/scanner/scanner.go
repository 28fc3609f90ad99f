package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bidsprep/internal/dicomhdr"
	"bidsprep/internal/logging"
	"bidsprep/internal/series"
)

// Stats counts per-file outcomes of one scan. NotDICOM files are expected
// clutter; Corrupt and IOFailures are surfaced so the operator can tell a
// messy export from a broken one.
type Stats struct {
	FilesSeen  int
	Parsed     int
	NotDICOM   int
	Corrupt    int
	IOFailures int
}

// Inventory is the result of one scan pass.
type Inventory struct {
	Keys  *series.Set
	Stats Stats
}

// Scanner traverses the two-level subject/session tree.
type Scanner struct {
	root   string
	reader dicomhdr.Reader
	logger *slog.Logger
	trace  io.Writer
	ignore map[string]struct{}
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithTrace directs the human-readable nested progress trace to w. The trace
// is diagnostic output only, not part of the data contract.
func WithTrace(w io.Writer) Option {
	return func(s *Scanner) {
		if w != nil {
			s.trace = w
		}
	}
}

// WithIgnoredFiles names root-level files that are part of the tool's own
// state (the protocol translator, most notably) and must not be flagged as
// layout deviations.
func WithIgnoredFiles(names ...string) Option {
	return func(s *Scanner) {
		for _, name := range names {
			s.ignore[name] = struct{}{}
		}
	}
}

// New constructs a Scanner over root.
func New(root string, reader dicomhdr.Reader, logger *slog.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		root:   root,
		reader: reader,
		logger: logging.NewComponentLogger(logger, "scanner"),
		trace:  io.Discard,
		ignore: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks every subject/session directory under the root and returns the
// distinct series keys encountered, in first-seen order.
func (s *Scanner) Scan(ctx context.Context) (*Inventory, error) {
	inv := &Inventory{Keys: series.NewSet()}

	s.tracef(0, filepath.Base(s.root))

	subjects, strays, err := splitEntries(s.root)
	if err != nil {
		return nil, fmt.Errorf("read input root %s: %w", s.root, err)
	}
	s.flagStrays(s.root, strays)

	for _, subject := range subjects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		subjectDir := filepath.Join(s.root, subject)
		s.tracef(1, subject)

		sessions, strays, err := splitEntries(subjectDir)
		if err != nil {
			return nil, fmt.Errorf("read subject %s: %w", subjectDir, err)
		}
		s.flagStrays(subjectDir, strays)

		for _, session := range sessions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			sessionDir := filepath.Join(subjectDir, session)
			s.tracef(2, session)
			if err := s.scanSession(ctx, sessionDir, inv); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("scan complete",
		logging.Int("distinct_series", inv.Keys.Len()),
		logging.Int("files_seen", inv.Stats.FilesSeen),
		logging.Int("parsed", inv.Stats.Parsed),
		logging.Int("not_dicom", inv.Stats.NotDICOM),
		logging.Int("corrupt", inv.Stats.Corrupt),
		logging.Int("io_failures", inv.Stats.IOFailures))
	return inv, nil
}

// ScanSession inventories a single session directory.
func (s *Scanner) ScanSession(ctx context.Context, sessionDir string) (*Inventory, error) {
	inv := &Inventory{Keys: series.NewSet()}
	if err := s.scanSession(ctx, sessionDir, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Scanner) scanSession(ctx context.Context, sessionDir string, inv *Inventory) error {
	return filepath.WalkDir(sessionDir, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			inv.Stats.IOFailures++
			s.logger.Warn("unreadable entry during scan", logging.String(logging.FieldPath, path), logging.Error(err))
			return nil
		}
		depth := traceDepth(sessionDir, path) + 2
		if entry.IsDir() {
			if path != sessionDir {
				s.tracef(depth, entry.Name())
			}
			return nil
		}

		s.tracef(depth+1, entry.Name())
		inv.Stats.FilesSeen++

		header, readErr := s.reader.ReadFile(path)
		switch {
		case readErr == nil:
			inv.Stats.Parsed++
			key := series.KeyFromHeader(header)
			if inv.Keys.Add(key) {
				s.logger.Debug("discovered series", logging.String(logging.FieldSeriesKey, key.String()))
			}
		case errors.Is(readErr, dicomhdr.ErrNotDICOM):
			inv.Stats.NotDICOM++
		case errors.Is(readErr, dicomhdr.ErrCorrupt):
			inv.Stats.Corrupt++
			s.logger.Warn("corrupt DICOM file skipped", logging.String(logging.FieldPath, path), logging.Error(readErr))
		default:
			inv.Stats.IOFailures++
			s.logger.Warn("read failure skipped", logging.String(logging.FieldPath, path), logging.Error(readErr))
		}
		return nil
	})
}

func (s *Scanner) flagStrays(dir string, strays []string) {
	for _, name := range strays {
		if _, ok := s.ignore[name]; ok {
			continue
		}
		s.logger.Warn("file outside subject/session layout skipped",
			logging.String(logging.FieldPath, filepath.Join(dir, name)))
	}
}

func (s *Scanner) tracef(depth int, name string) {
	if s.trace == io.Discard {
		return
	}
	fmt.Fprintf(s.trace, "%s %s\n", strings.Repeat("---", depth+1), name)
}

func traceDepth(base, path string) int {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator))
}

// ListSubjects returns the subject directory names under root, sorted.
func ListSubjects(root string) ([]string, error) {
	dirs, _, err := splitEntries(root)
	return dirs, err
}

// ListSessions returns the session directory names under a subject, sorted.
func ListSessions(subjectDir string) ([]string, error) {
	dirs, _, err := splitEntries(subjectDir)
	return dirs, err
}

// splitEntries partitions a directory into subdirectory names and stray file
// names. os.ReadDir sorts, which keeps traversal order independent of
// OS-level enumeration order.
func splitEntries(dir string) (dirs []string, files []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		// Translator, lock, and other dot/meta files at the root are not
		// subjects.
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}
	return dirs, files, nil
}
