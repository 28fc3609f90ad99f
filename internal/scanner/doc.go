// Package scanner walks the subject/session/series hierarchy under the DICOM
// input root and produces a deduplicated, first-seen-ordered inventory of
// series identities.
//
// The scan's goal is maximal series discovery, not validation: non-DICOM
// files, corrupt files, and I/O failures are skipped and counted, never
// aborting the traversal. Layout deviations (files directly under the root or
// under a subject) are flagged and skipped.
package scanner
