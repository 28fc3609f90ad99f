package dicomhdr

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gradienthealth/dicom"
	"github.com/gradienthealth/dicom/dicomtag"
)

var (
	// ErrNotDICOM marks files without a DICOM preamble. Skip silently.
	ErrNotDICOM = errors.New("not a DICOM file")
	// ErrCorrupt marks files with a DICOM preamble that fail to parse.
	ErrCorrupt = errors.New("corrupt DICOM file")
)

// Header holds the representative fields read from one DICOM file.
// Anonymization tools routinely clear PatientSex and PatientAge, so their
// zero values ("Unknown", 0) are legitimate, not an error.
type Header struct {
	SequenceName string
	Protocol     string
	ImageType    string
	SeriesNumber int
	Sex          string
	AgeYears     int
}

// Reader parses a single DICOM file into a Header.
type Reader interface {
	ReadFile(path string) (Header, error)
}

// FileReader is the production Reader built on the gradienthealth parser.
type FileReader struct{}

// NewFileReader constructs a FileReader.
func NewFileReader() *FileReader {
	return &FileReader{}
}

// preamble is the fixed 128-byte offset of the "DICM" magic in Part 10 files.
const preambleSize = 128

var dicmMagic = []byte("DICM")

// ReadFile parses one DICOM file, dropping pixel data.
func (r *FileReader) ReadFile(path string) (Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	magic := make([]byte, preambleSize+len(dicmMagic))
	if _, err := file.ReadAt(magic, 0); err != nil {
		return Header{}, fmt.Errorf("%w: %s", ErrNotDICOM, path)
	}
	if string(magic[preambleSize:]) != string(dicmMagic) {
		return Header{}, fmt.Errorf("%w: %s", ErrNotDICOM, path)
	}

	info, err := file.Stat()
	if err != nil {
		return Header{}, fmt.Errorf("stat %s: %w", path, err)
	}

	parser, err := dicom.NewParser(file, info.Size(), nil)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	ds, err := parser.Parse(dicom.ParseOptions{DropPixelData: true})
	if err != nil || ds == nil {
		return Header{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	header := Header{
		SequenceName: elementString(ds, dicomtag.SequenceName),
		Protocol:     elementString(ds, dicomtag.ProtocolName),
		ImageType:    elementStrings(ds, dicomtag.ImageType, "-"),
		SeriesNumber: elementInt(ds, dicomtag.SeriesNumber),
		Sex:          elementString(ds, dicomtag.PatientSex),
		AgeYears:     ParseAge(elementString(ds, dicomtag.PatientAge)),
	}
	if header.Protocol == "" {
		header.Protocol = elementString(ds, dicomtag.SeriesDescription)
	}
	if header.Sex == "" {
		header.Sex = "Unknown"
	}
	return header, nil
}

// ParseAge converts a DICOM Age String (e.g. "031Y", "006M") to whole years.
// Anything unparseable yields 0.
func ParseAge(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	unit := byte('Y')
	last := value[len(value)-1]
	if last < '0' || last > '9' {
		unit = last
		value = value[:len(value)-1]
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}

	switch unit {
	case 'Y', 'y':
		return n
	case 'M', 'm':
		return n / 12
	case 'W', 'w':
		return n / 52
	case 'D', 'd':
		return n / 365
	default:
		return 0
	}
}

func elementString(ds *dicom.DataSet, tag dicomtag.Tag) string {
	elem, err := ds.FindElementByTag(tag)
	if err != nil || elem == nil || len(elem.Value) == 0 {
		return ""
	}
	if s, ok := elem.Value[0].(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(elem.Value[0]))
}

func elementStrings(ds *dicom.DataSet, tag dicomtag.Tag, sep string) string {
	elem, err := ds.FindElementByTag(tag)
	if err != nil || elem == nil || len(elem.Value) == 0 {
		return ""
	}
	parts := make([]string, 0, len(elem.Value))
	for _, v := range elem.Value {
		var s string
		if str, ok := v.(string); ok {
			s = strings.TrimSpace(str)
		} else {
			s = strings.TrimSpace(fmt.Sprint(v))
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func elementInt(ds *dicom.DataSet, tag dicomtag.Tag) int {
	raw := elementString(ds, tag)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
