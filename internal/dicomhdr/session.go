package dicomhdr

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// ErrNoReadableHeader marks a session directory in which no file yields a
// parseable DICOM header. This is fatal for a run: the session seeds identity
// metadata, and fabricating a row for it would hide a corrupted or
// wrongly-organized input tree.
var ErrNoReadableHeader = errors.New("no readable DICOM header in session")

// ReadSessionInfo walks a session directory until one file parses, returning
// its header. Unparseable files are skipped; an empty or fully unreadable
// session returns ErrNoReadableHeader.
func ReadSessionInfo(dir string, reader Reader) (Header, error) {
	var header Header
	found := false

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if found || entry.IsDir() {
			return nil
		}
		h, readErr := reader.ReadFile(path)
		if readErr != nil {
			return nil
		}
		header = h
		found = true
		return fs.SkipAll
	})
	if err != nil {
		return Header{}, fmt.Errorf("walk session %s: %w", dir, err)
	}
	if !found {
		return Header{}, fmt.Errorf("%w: %s", ErrNoReadableHeader, dir)
	}
	return header, nil
}
