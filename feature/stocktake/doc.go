// Package stocktake implements the stocktake reconciliation feature.
//
// A stocktake walks the canonical file index (path ordered) and the derived
// asset catalog (URI ordered) side by side and reports where they diverge:
// indexed files the catalog is missing are announced for creation, catalog
// entries without a file are counted as orphans.
//
// # Components
//
//   - Runner: drives one resumable full run against both indexes, saving
//     progress through a checkpoint store.
//   - Coordinator: fans a run out over hash slices of a frozen source
//     snapshot.
//   - Chunker: splits one slice into immutable chunk inputs and submits a
//     worker job per chunk.
//   - Worker: processes one persisted chunk against its catalog range and
//     writes a counters report.
package stocktake
