package dicomhdr

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadFileRejectsNonDICOM(t *testing.T) {
	dir := t.TempDir()

	cases := map[string][]byte{
		"short.txt":   []byte("hello"),
		"nomagic.dat": bytes.Repeat([]byte{0}, 200),
	}

	reader := NewFileReader()
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		_, err := reader.ReadFile(path)
		if !errors.Is(err, ErrNotDICOM) {
			t.Errorf("%s: expected ErrNotDICOM, got %v", name, err)
		}
	}
}

func TestReadFileClassifiesCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.dcm")

	// A valid preamble and magic followed by garbage instead of meta elements.
	content := append(bytes.Repeat([]byte{0}, 128), []byte("DICM")...)
	content = append(content, []byte("definitely not a dataset")...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewFileReader().ReadFile(path)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := NewFileReader().ReadFile(filepath.Join(t.TempDir(), "absent.dcm"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrNotDICOM) || errors.Is(err, ErrCorrupt) {
		t.Errorf("missing file misclassified: %v", err)
	}
}

func TestParseAge(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"031Y", 31},
		{"5Y", 5},
		{"024M", 2},
		{"104W", 2},
		{"730D", 2},
		{"31", 31},
		{"", 0},
		{"unknown", 0},
		{"-3Y", 0},
	}
	for _, tc := range cases {
		if got := ParseAge(tc.in); got != tc.want {
			t.Errorf("ParseAge(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
