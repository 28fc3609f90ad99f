package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bids", "participants.tsv")
	w := NewWriter(path)

	if err := w.Append(Row{SubjectID: "A01", Sex: "F", AgeYears: 31}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d: %q", len(lines), string(data))
	}
	if lines[0] != "participant_id\tsex\tage" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "sub-A01\tF\t31" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.tsv")
	w := NewWriter(path)

	if err := w.Append(Row{SubjectID: "A01", Sex: "F", AgeYears: 31}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := w.Append(Row{SubjectID: "B02", Sex: "M", AgeYears: 44}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	want := "participant_id\tsex\tage\nsub-A01\tF\t31\nsub-B02\tM\t44\n"
	if string(data) != want {
		t.Errorf("manifest = %q, want %q", string(data), want)
	}
}

func TestAppendDefaultsMissingSex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.tsv")
	w := NewWriter(path)

	if err := w.Append(Row{SubjectID: "C03"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(data), "sub-C03\tUnknown\t0") {
		t.Errorf("defaults not applied: %q", string(data))
	}
}

func TestAppendRequiresSubject(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "participants.tsv"))
	if err := w.Append(Row{}); err == nil {
		t.Fatal("expected error for empty subject ID")
	}
}
