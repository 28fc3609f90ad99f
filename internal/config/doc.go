// Package config loads, normalizes, and validates bidsprep configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs: the DICOM input root, the BIDS output root, the protocol
// translator filename, and the external converter invocation, so that no
// component has to reach for ambient paths.
//
// Note that the BIDS output root is deliberately not created here. Whether it
// already exists is one of the two predicates that select which pass the
// workflow runs.
package config
