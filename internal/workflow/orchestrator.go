package workflow

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

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bidsprep/internal/config"
	"bidsprep/internal/converter"
	"bidsprep/internal/deps"
	"bidsprep/internal/dicomhdr"
	"bidsprep/internal/logging"
	"bidsprep/internal/manifest"
	"bidsprep/internal/scanner"
	"bidsprep/internal/translator"
)

const lockFilename = ".bidsprep.lock"

// ErrLocked reports a concurrent invocation holding the run lock.
var ErrLocked = errors.New("another bidsprep run holds the lock")

// Converter performs one blocking session conversion.
type Converter interface {
	Convert(ctx context.Context, sessionDir, outDir string) error
}

// Orchestrator owns pass selection and is the only component allowed to
// trigger translator creation.
type Orchestrator struct {
	cfg       *config.Config
	logger    *slog.Logger
	reader    dicomhdr.Reader
	conv      Converter
	trace     io.Writer
	checkDeps bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReader injects a header reader (tests).
func WithReader(r dicomhdr.Reader) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reader = r
		}
	}
}

// WithConverter injects a session converter (tests).
func WithConverter(c Converter) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.conv = c
		}
	}
}

// WithTrace directs the inventory pass progress trace to w.
func WithTrace(w io.Writer) Option {
	return func(o *Orchestrator) {
		if w != nil {
			o.trace = w
		}
	}
}

// New constructs an Orchestrator with production dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("orchestrator requires config")
	}
	o := &Orchestrator{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		reader: dicomhdr.NewFileReader(),
		trace:  io.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.conv == nil {
		client, err := converter.New(cfg.Converter.Binary, cfg.Converter.FilenameTemplate, cfg.Converter.TimeoutSeconds, logger)
		if err != nil {
			return nil, err
		}
		o.conv = client
		// Injected converters skip the PATH lookup; the real one must exist
		// before any session is touched.
		o.checkDeps = true
	}
	return o, nil
}

// Run executes one invocation of the state machine. A nil return means
// normal completion, including the bootstrap early exit of the inventory
// pass.
func (o *Orchestrator) Run(ctx context.Context) error {
	root := o.cfg.Paths.DICOMDir
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("DICOM input root %s is not a directory", root)
	}

	lock := flock.New(filepath.Join(root, lockFilename))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	defer lock.Unlock()

	logger := o.logger.With(logging.String(logging.FieldRunID, uuid.NewString()[:8]))

	translatorPath := o.cfg.TranslatorPath()
	dict, err := translator.Load(translatorPath)
	if err != nil {
		// The file is user-authored; an unreadable mapping cannot be
		// defaulted without misrouting scans.
		return err
	}
	translatorExists := fileExists(translatorPath)
	outputExists := dirExists(o.cfg.Paths.BIDSDir)

	state := DecideState(translatorExists, !dict.IsEmpty(), outputExists)
	logger.Info("pass selected",
		logging.String("state", state.String()),
		logging.Bool("translator_exists", translatorExists),
		logging.Int("translator_entries", dict.Len()),
		logging.Bool("output_root_exists", outputExists))

	if state == StateUninitialized {
		return o.runInventoryPass(ctx, logger, translatorPath)
	}
	return o.runTranslationPass(ctx, logger, dict)
}

// runInventoryPass is Pass 1: discover series, bootstrap the translator
// template, and stop for the operator edit.
func (o *Orchestrator) runInventoryPass(ctx context.Context, logger *slog.Logger, translatorPath string) error {
	logger.Info("inventory pass: scanning DICOM folders")

	sc := scanner.New(o.cfg.Paths.DICOMDir, o.reader, logger,
		scanner.WithTrace(o.trace),
		scanner.WithIgnoredFiles(o.cfg.Translator.Filename, lockFilename))
	inv, err := sc.Scan(ctx)
	if err != nil {
		return err
	}

	created, err := translator.Bootstrap(translatorPath, inv.Keys.Keys())
	if err != nil {
		return err
	}
	if !created {
		logger.Warn("protocol translator already exists, skipping creation",
			logging.String(logging.FieldPath, translatorPath))
		return nil
	}

	logger.Info("new protocol translator created",
		logging.String(logging.FieldPath, translatorPath),
		logging.Int("series", inv.Keys.Len()))
	logger.Info(`replace "EXCLUDE" values with an image description (for example "MP-RAGE T1w 3D structural") and rerun`)
	return nil
}

// runTranslationPass is Pass 2: convert each session and append manifest
// rows. Manifest rows are written only after a session's conversions succeed,
// so an interrupted run leaves whole sessions absent rather than truncated.
func (o *Orchestrator) runTranslationPass(ctx context.Context, logger *slog.Logger, dict *translator.Dictionary) error {
	logger.Info("translation pass: organizing output into BIDS directories")

	if o.checkDeps {
		if missing := deps.FirstMissing(deps.CheckBinaries(deps.For(o.cfg))); missing != nil {
			return fmt.Errorf("required tool %s unavailable: %s", missing.Name, missing.Detail)
		}
	}

	subjects, err := scanner.ListSubjects(o.cfg.Paths.DICOMDir)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}

	writer := manifest.NewWriter(o.cfg.ManifestPath())
	sc := scanner.New(o.cfg.Paths.DICOMDir, o.reader, logger,
		scanner.WithIgnoredFiles(o.cfg.Translator.Filename, lockFilename))

	for _, subject := range subjects {
		if err := ctx.Err(); err != nil {
			return err
		}
		subjectLogger := logger.With(logging.String(logging.FieldSubject, subject))
		subjectLogger.Info("processing subject")

		sessions, err := scanner.ListSessions(filepath.Join(o.cfg.Paths.DICOMDir, subject))
		if err != nil {
			return fmt.Errorf("list sessions for %s: %w", subject, err)
		}
		for _, session := range sessions {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := o.processSession(ctx, subjectLogger, sc, dict, writer, subject, session); err != nil {
				return err
			}
		}
	}

	logger.Info("translation pass complete", logging.String("manifest", writer.Path()))
	return nil
}

func (o *Orchestrator) processSession(ctx context.Context, logger *slog.Logger, sc *scanner.Scanner, dict *translator.Dictionary, writer *manifest.Writer, subject, session string) error {
	logger = logger.With(logging.String(logging.FieldSession, session))
	logger.Info("processing session")

	sessionDir := filepath.Join(o.cfg.Paths.DICOMDir, subject, session)
	sessionOutDir := filepath.Join(o.cfg.Paths.BIDSDir, "sub-"+subject, "ses-"+session)
	convDir := filepath.Join(sessionOutDir, "conv")

	info, err := dicomhdr.ReadSessionInfo(sessionDir, o.reader)
	if err != nil {
		if errors.Is(err, dicomhdr.ErrNoReadableHeader) {
			logger.Error("no DICOM header information found; confirm images in this folder are uncompressed",
				logging.String(logging.FieldPath, sessionDir))
		}
		return err
	}

	inv, err := sc.ScanSession(ctx, sessionDir)
	if err != nil {
		return err
	}

	// Resolve every label before converting anything. An unknown key means
	// new data arrived after the translator was finalized; abort with the
	// offending key named. Rows appended for prior sessions stand.
	labels := make(map[string]string, inv.Keys.Len())
	keep := 0
	for _, key := range inv.Keys.Keys() {
		label, err := dict.Lookup(key)
		if err != nil {
			return fmt.Errorf("session %s/%s: %w", subject, session, err)
		}
		labels[key.String()] = label
		if !translator.Excluded(label) {
			keep++
		}
	}

	// The canonical session path exists even when every series is excluded.
	if err := os.MkdirAll(sessionOutDir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	if keep > 0 {
		if err := o.conv.Convert(ctx, sessionDir, convDir); err != nil {
			return err
		}
		if err := o.organize(logger, convDir, sessionOutDir, labels); err != nil {
			return err
		}
	} else {
		logger.Info("all series excluded, skipping conversion")
	}

	if err := writer.Append(manifest.Row{SubjectID: subject, Sex: info.Sex, AgeYears: info.AgeYears}); err != nil {
		return err
	}
	logger.Info("session complete", logging.Int("series_converted", keep),
		logging.Int("series_excluded", inv.Keys.Len()-keep))
	return nil
}

// organize routes converter outputs by their template-derived stem: excluded
// series are removed, labeled series renamed into the session directory.
// Stems with no translator entry are left in the conversion directory and
// flagged.
func (o *Orchestrator) organize(logger *slog.Logger, convDir, sessionOutDir string, labels map[string]string) error {
	entries, err := os.ReadDir(convDir)
	if err != nil {
		return fmt.Errorf("read conversion directory: %w", err)
	}

	leftover := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem, ext := splitStem(entry.Name())
		src := filepath.Join(convDir, entry.Name())

		label, ok := labels[stem]
		if !ok {
			leftover = true
			logger.Warn("converter output with no translator entry",
				logging.String(logging.FieldPath, src))
			continue
		}
		if translator.Excluded(label) {
			if err := os.Remove(src); err != nil {
				return fmt.Errorf("remove excluded output: %w", err)
			}
			continue
		}
		dst := filepath.Join(sessionOutDir, label+ext)
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("place converted output: %w", err)
		}
	}

	if !leftover {
		if err := os.Remove(convDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("conversion directory not removed", logging.Error(err))
		}
	}
	return nil
}

// converterSuffixes are the file suffixes the converter emits. Only these
// are peeled off an output name; series keys may themselves contain dots
// (protocol names like t2_tse_3.0mm), so a bare Ext loop would eat into
// the key.
var converterSuffixes = map[string]bool{
	".nii":  true,
	".gz":   true,
	".json": true,
	".bval": true,
	".bvec": true,
}

// splitStem separates a converter output name into its template stem and
// extension, treating compound suffixes like .nii.gz as one extension.
func splitStem(name string) (stem, ext string) {
	stem = name
	for {
		e := filepath.Ext(stem)
		if !converterSuffixes[e] {
			break
		}
		stem = strings.TrimSuffix(stem, e)
		ext = e + ext
	}
	return stem, ext
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
