package translator

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"bidsprep/internal/series"
)

func sampleKeys() []series.Key {
	return []series.Key{
		{SequenceName: "tfl3d1_16ns", Protocol: "T1_MPRAGE", ImageType: "ORIGINAL-PRIMARY-M-ND", Number: 2},
		{SequenceName: "epfid2d1_64", Protocol: "BOLD_rest", ImageType: "ORIGINAL-PRIMARY-M-ND-MOSAIC", Number: 5},
	}
}

func TestLoadAbsentIsEmpty(t *testing.T) {
	dict, err := Load(filepath.Join(t.TempDir(), "Protocol_Translator.json"))
	if err != nil {
		t.Fatalf("Load of absent file must not fail: %v", err)
	}
	if !dict.IsEmpty() {
		t.Fatalf("expected empty dictionary, got %d entries", dict.Len())
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Protocol_Translator.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse failure to be fatal")
	}
}

func TestBootstrapWritesAllExcluded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Protocol_Translator.json")
	keys := sampleKeys()

	created, err := Bootstrap(path, keys)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for fresh path")
	}

	dict, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dict.Len() != len(keys) {
		t.Fatalf("entry count = %d, want %d", dict.Len(), len(keys))
	}
	for _, key := range keys {
		label, err := dict.Lookup(key)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", key, err)
		}
		if !Excluded(label) {
			t.Errorf("Lookup(%s) = %q, want %q", key, label, Exclude)
		}
	}
}

func TestBootstrapRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Protocol_Translator.json")
	if _, err := Bootstrap(path, sampleKeys()); err != nil {
		t.Fatalf("first Bootstrap failed: %v", err)
	}

	// Simulate a user edit, then bootstrap again with a different key set.
	edited := []byte(`{"tfl3d1_16ns--T1_MPRAGE--ORIGINAL-PRIMARY-M-ND--2":"MP-RAGE T1w 3D structural"}`)
	if err := os.WriteFile(path, edited, 0o644); err != nil {
		t.Fatalf("edit: %v", err)
	}

	created, err := Bootstrap(path, sampleKeys()[:1])
	if err != nil {
		t.Fatalf("second Bootstrap failed: %v", err)
	}
	if created {
		t.Fatal("expected created=false when file exists")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(after) != string(edited) {
		t.Error("bootstrap touched an existing file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Protocol_Translator.json")

	dict := New()
	dict.entries["a--b--c--1"] = "T1w"
	dict.entries["d--e--f--2"] = Exclude

	if err := dict.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Entries(), dict.Entries()) {
		t.Errorf("round-trip mismatch: %v vs %v", loaded.Entries(), dict.Entries())
	}
}

func TestSaveIsHandEditable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Protocol_Translator.json")
	if _, err := Bootstrap(path, sampleKeys()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "\n    \"") {
		t.Errorf("expected indented entries, got:\n%s", content)
	}
	// Stable ordering: the encoder sorts map keys, so two bootstraps of the
	// same key set are byte-identical.
	second := filepath.Join(t.TempDir(), "Protocol_Translator.json")
	if _, err := Bootstrap(second, sampleKeys()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	raw2, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if content != string(raw2) {
		t.Error("bootstrap output is not deterministic")
	}
}

func TestLookupUnknownKey(t *testing.T) {
	dict := New()
	_, err := dict.Lookup(series.Key{Protocol: "late_addition", Number: 9})
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "late_addition") {
		t.Errorf("diagnostic does not name the key: %v", err)
	}
}
