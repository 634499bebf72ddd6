// Package ledger records the filter's per-node state as attributes on
// the document tree: which candidates were processed, which owner units
// already carry a placeholder, which picker tiles have their clicks
// blocked, and what inline display value a hidden element had before
// hiding.
//
// Keeping the state on the nodes themselves, rather than in a side
// table, ties its lifetime to the tree: markers vanish with their
// nodes, survive re-serialization within a run, and ClearAll can
// restore a document to its pre-filter shape by walking it once.
//
// The owner marker enforces the placement invariant: an owner unit
// carries at most one placeholder, and later candidates under a claimed
// owner are hidden individually instead of producing a second panel.
package ledger
