// Package translator owns the protocol translator file: the user-curated JSON
// mapping from series identity to output label.
//
// Lifecycle: absent on first run, bootstrapped from the scan inventory with
// every entry set to the EXCLUDE sentinel, hand-edited by the operator, then
// loaded and consumed on every later run. The on-disk file is authoritative
// once it exists and is never overwritten by the tool.
package translator
