package stocktake

import (
	"context"
	"fmt"

	"stac-stocktake/core/checkpoint"
	"stac-stocktake/core/chunkstore"
	"stac-stocktake/core/cursor"
	"stac-stocktake/core/reconcile"

	"go.uber.org/zap"
)

// Worker processes one persisted chunk input against its catalog range. It
// keeps counters in memory only; a failed chunk is simply resubmitted and
// replays from its immutable input.
type Worker struct {
	Store   chunkstore.Store
	Catalog cursor.Pager
	Sink    reconcile.ActionSink

	// KeyPageSize is the page size the persisted key list is replayed
	// with.
	KeyPageSize int

	Cursor    cursor.Config
	SaveEvery int64
	Log       *zap.Logger
}

// Run replays the chunk's key list through the merge and writes the counters
// report next to the input.
func (w *Worker) Run(ctx context.Context, sliceID, chunkID int) (*checkpoint.State, error) {
	keys, err := w.Store.ReadInput(ctx, sliceID, chunkID)
	if err != nil {
		return nil, fmt.Errorf("read input for chunk %d/%d: %w", sliceID, chunkID, err)
	}
	w.Log.Info("processing chunk",
		zap.Int("slice", sliceID),
		zap.Int("chunk", chunkID),
		zap.Int("keys", len(keys)),
	)

	src := cursor.New(cursor.NewKeyListPager(keys, w.KeyPageSize), "", w.Cursor)
	cat := cursor.New(w.Catalog, "", w.Cursor)
	st := checkpoint.NewRun(0)
	rec := reconcile.New(src, cat, w.Sink, st, nil, reconcile.Config{
		SaveEvery:     w.SaveEvery,
		SourceBounded: true,
	}, w.Log)
	if err := rec.Run(ctx); err != nil {
		return st, fmt.Errorf("chunk %d/%d: %w", sliceID, chunkID, err)
	}

	report := fmt.Sprintf("slice=%d chunk=%d processed=%d created=%d deleted=%d matched=%d\n",
		sliceID, chunkID, st.Processed, st.Created, st.Deleted, st.Matched)
	if err := w.Store.WriteOutput(ctx, sliceID, chunkID, []byte(report)); err != nil {
		return st, fmt.Errorf("write report for chunk %d/%d: %w", sliceID, chunkID, err)
	}
	return st, nil
}
