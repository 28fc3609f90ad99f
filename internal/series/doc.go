// Package series defines the canonical identity of one scan series and an
// ordered deduplicating collection of those identities.
//
// A Key is derived purely from header fields; the same physical series always
// yields the same Key across runs. Its string form doubles as the protocol
// translator entry and mirrors the fields encoded in the converter's output
// filename template.
package series
