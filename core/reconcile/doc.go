// Package reconcile implements the sorted two-way merge diff between the
// source index and the derived catalog.
//
// Both sides are consumed through monotonic cursors (core/cursor). The
// reconciler compares the current key of each side and emits one decision per
// step:
//
//   - source key smaller or catalog exhausted: the catalog is missing an
//     entry, announce a create through the ActionSink
//   - catalog key smaller or source exhausted: the catalog holds an orphan,
//     count and report it (removal is policy-gated and never auto-applied)
//   - equal keys: match, both sides advance
//
// Comparison is lexicographic on the key only; entry contents are out of
// scope. The run is terminal once both cursors report the sentinel.
//
// # Checkpointing
//
// The reconciler mutates a checkpoint.State after every decision and saves it
// on a fixed-count cadence plus unconditionally at the terminal state. A
// failed sink call aborts the run before the cursors advance, so the
// discrepancy is replayed on resume; downstream consumers must treat
// re-creation of an existing entry as a no-op.
package reconcile
