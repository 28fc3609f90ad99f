package translator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bidsprep/internal/series"
)

// Exclude is the sentinel label marking a series to be skipped entirely
// during translation.
const Exclude = "EXCLUDE"

// ErrUnknownKey marks a series encountered during translation that has no
// translator entry. This happens when new DICOM data is added after the
// translator was finalized; it must surface rather than default, since a
// silent default would misroute unrecognized scans.
var ErrUnknownKey = errors.New("series key not in protocol translator")

// Dictionary maps a series key string form to its output label.
type Dictionary struct {
	entries map[string]string
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{entries: make(map[string]string)}
}

// Load reads the translator file. An absent file is the normal first-run case
// and yields an empty dictionary; an unreadable or unparseable file is fatal
// because the user-authored mapping cannot be safely guessed.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("read protocol translator %s: %w", path, err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse protocol translator %s: %w", path, err)
	}
	return &Dictionary{entries: entries}, nil
}

// Bootstrap writes a translator template mapping every discovered key to the
// Exclude sentinel. When the file already exists it is left untouched and
// created reports false; bootstrap never destroys user edits.
func Bootstrap(path string, keys []series.Key) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat protocol translator %s: %w", path, err)
	}

	dict := New()
	for _, key := range keys {
		dict.entries[key.String()] = Exclude
	}
	if err := dict.Save(path); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes the dictionary with stable key ordering and human-readable
// indentation so a non-technical user can hand-edit it. The write is atomic.
func (d *Dictionary) Save(path string) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(d.entries); err != nil {
		return fmt.Errorf("marshal protocol translator: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create translator directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Lookup returns the label mapped to the key.
func (d *Dictionary) Lookup(key series.Key) (string, error) {
	label, ok := d.entries[key.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return label, nil
}

// Excluded reports whether a label is the skip sentinel.
func Excluded(label string) bool {
	return label == Exclude
}

// IsEmpty reports whether the dictionary has no entries.
func (d *Dictionary) IsEmpty() bool {
	return len(d.entries) == 0
}

// Len reports the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Entries returns a copy of the underlying mapping.
func (d *Dictionary) Entries() map[string]string {
	out := make(map[string]string, len(d.entries))
	for k, v := range d.entries {
		out[k] = v
	}
	return out
}
