package stocktake

import (
	"context"
	"fmt"

	"stac-stocktake/core/checkpoint"
	"stac-stocktake/core/cursor"
	"stac-stocktake/core/reconcile"

	"go.uber.org/zap"
)

// Runner drives one resumable stocktake run over the full source and catalog
// indexes.
type Runner struct {
	Source  cursor.Pager
	Catalog cursor.Pager
	Sink    reconcile.ActionSink
	Store   checkpoint.Store

	Cursor    cursor.Config
	SaveEvery int64
	Log       *zap.Logger
}

// Run resumes the latest unfinished run or starts a fresh one, then drives
// the merge to completion. The returned state carries the final counters.
func (r *Runner) Run(ctx context.Context) (*checkpoint.State, error) {
	st, err := r.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	if st == nil {
		last, err := r.Store.LastRunID(ctx)
		if err != nil {
			return nil, fmt.Errorf("allocate run id: %w", err)
		}
		st = checkpoint.NewRun(last)
		// Register the run before any work so a crash before the
		// first checkpoint still leaves a row to resume.
		if err := r.Store.Save(ctx, st); err != nil {
			return nil, fmt.Errorf("register run %d: %w", st.RunID, err)
		}
		r.Log.Info("starting stocktake run", zap.Int64("run_id", st.RunID))
	} else {
		r.Log.Info("resuming stocktake run",
			zap.Int64("run_id", st.RunID),
			zap.String("source_key", st.SourceKey),
			zap.String("catalog_key", st.CatalogKey),
			zap.Int64("processed", st.Processed),
		)
	}

	src := cursor.New(r.Source, st.SourceKey, r.Cursor)
	cat := cursor.New(r.Catalog, st.CatalogKey, r.Cursor)
	rec := reconcile.New(src, cat, r.Sink, st, r.Store, reconcile.Config{SaveEvery: r.SaveEvery}, r.Log)
	if err := rec.Run(ctx); err != nil {
		return st, err
	}
	return st, nil
}
