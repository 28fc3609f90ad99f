// Package testsupport provides shared fakes and fixture builders for tests.
package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"bidsprep/internal/dicomhdr"
)

// FakeReader is a dicomhdr.Reader for tests. It treats ".dcm" files as DICOM
// whose header fields are JSON-encoded in the file body, other extensions as
// non-DICOM, and unparseable ".dcm" bodies as corrupt. This keeps fixtures
// readable without shipping binary DICOM blobs.
type FakeReader struct{}

// ReadFile implements dicomhdr.Reader.
func (FakeReader) ReadFile(path string) (dicomhdr.Header, error) {
	if filepath.Ext(path) != ".dcm" {
		return dicomhdr.Header{}, fmt.Errorf("%w: %s", dicomhdr.ErrNotDICOM, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return dicomhdr.Header{}, fmt.Errorf("read %s: %w", path, err)
	}
	var header dicomhdr.Header
	if err := json.Unmarshal(data, &header); err != nil {
		return dicomhdr.Header{}, fmt.Errorf("%w: %s", dicomhdr.ErrCorrupt, path)
	}
	if header.Sex == "" {
		header.Sex = "Unknown"
	}
	return header, nil
}

// WriteSeriesFile writes a FakeReader-compatible DICOM stand-in.
func WriteSeriesFile(t *testing.T, path string, header dicomhdr.Header) {
	t.Helper()
	data, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}

// WriteRawFile writes arbitrary bytes into the fixture tree.
func WriteRawFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}

// MakeSession creates <root>/<subject>/<session> and returns its path.
func MakeSession(t *testing.T, root, subject, session string) string {
	t.Helper()
	dir := filepath.Join(root, subject, session)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create session %s: %v", dir, err)
	}
	return dir
}
