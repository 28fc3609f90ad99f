// Package dicomhdr reads the handful of DICOM header fields bidsprep needs.
//
// It deliberately parses no pixel data. Read failures are classified into
// three kinds so callers can keep scanning without hiding real problems:
// files that are not DICOM at all (ErrNotDICOM), files with a DICOM preamble
// that fail to parse (ErrCorrupt), and plain I/O errors.
package dicomhdr
