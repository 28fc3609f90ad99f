package series

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"bidsprep/internal/dicomhdr"
)

// Key identifies one scan series. Two acquisitions with identical attributes
// but different series numbers are distinct keys; the translator may still
// route them to the same output label.
type Key struct {
	SequenceName string
	Protocol     string
	ImageType    string
	Number       int
}

// KeyFromHeader derives the canonical series identity from one representative
// header. Deterministic, no side effects.
func KeyFromHeader(h dicomhdr.Header) Key {
	return Key{
		SequenceName: Clean(h.SequenceName),
		Protocol:     Clean(h.Protocol),
		ImageType:    Clean(h.ImageType),
		Number:       h.SeriesNumber,
	}
}

// String renders the translator entry form: the four attributes joined with
// "--", matching the field order of the converter filename template.
func (k Key) String() string {
	return strings.Join([]string{
		orUnknown(k.SequenceName),
		orUnknown(k.Protocol),
		orUnknown(k.ImageType),
		strconv.Itoa(k.Number),
	}, "--")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// asciiFold strips combining marks so accented scanner console text folds to
// plain ASCII letters.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Clean folds a raw DICOM string into a filesystem-safe token: diacritics
// removed, whitespace and path separators collapsed to underscores,
// non-graphic runes dropped.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			b.WriteByte('_')
		case unicode.IsGraphic(r):
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}
