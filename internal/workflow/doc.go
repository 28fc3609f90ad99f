// Package workflow drives the two-pass prepare/convert state machine.
//
// The state is computed once at startup from two predicates: does the
// protocol translator exist and parse to a non-empty mapping, and does the
// BIDS output root already exist. Both must hold to run the translation pass;
// otherwise the inventory pass runs, bootstraps a translator template, and
// stops so the operator can edit it. The pause between passes is intentional.
package workflow
