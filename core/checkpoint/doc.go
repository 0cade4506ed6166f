// Package checkpoint persists reconciliation run progress.
//
// It separates the pure State value, mutated by the reconciler after every
// decision, from the Store that persists it. The store is backed by the
// stocktake MySQL database through GORM.
//
// # Resumability
//
// A persisted state is resumable while at least one of its cursor keys has
// not reached the sentinel. Load returns the most recent run only when it is
// resumable: a completed latest run supersedes any older unfinished state.
//
// # Usage
//
//	store := checkpoint.NewGormStore(db)
//	st, err := store.Load(ctx)
//	if st == nil {
//	    last, _ := store.LastRunID(ctx)
//	    st = checkpoint.NewRun(last)
//	}
package checkpoint
