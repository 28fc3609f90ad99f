// Package manifest appends participant rows to the BIDS participants.tsv
// file. The manifest is append-only: rows for completed sessions are never
// rewritten, so an interrupted run leaves prior rows intact.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const header = "participant_id\tsex\tage\n"

// Row is one participants manifest entry.
type Row struct {
	SubjectID string
	Sex       string
	AgeYears  int
}

// Writer appends rows to a participants manifest file.
type Writer struct {
	path string
}

// NewWriter constructs a Writer for the manifest at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the manifest location.
func (w *Writer) Path() string {
	return w.path
}

// Append adds one row, creating the file with its header on first use.
func (w *Writer) Append(row Row) error {
	if row.SubjectID == "" {
		return errors.New("subject ID required")
	}
	if row.Sex == "" {
		row.Sex = "Unknown"
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	writeHeader := false
	if _, err := os.Stat(w.path); errors.Is(err, fs.ErrNotExist) {
		writeHeader = true
	} else if err != nil {
		return fmt.Errorf("stat manifest: %w", err)
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}

	if writeHeader {
		if _, err := file.WriteString(header); err != nil {
			file.Close()
			return fmt.Errorf("write manifest header: %w", err)
		}
	}
	if _, err := fmt.Fprintf(file, "sub-%s\t%s\t%d\n", row.SubjectID, row.Sex, row.AgeYears); err != nil {
		file.Close()
		return fmt.Errorf("append manifest row: %w", err)
	}
	return file.Close()
}
