// Package converter invokes the external DICOM-to-NIfTI converter (dcm2niix
// by default) as an opaque collaborator: one blocking call per session, given
// the session directory, an output directory, and a filename template.
package converter
