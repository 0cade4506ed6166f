package stocktake

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Coordinator fans a stocktake out over hash slices of one frozen source
// snapshot, so every slice sees the same index state no matter when its
// worker runs.
type Coordinator struct {
	// Slices is the total slice count; StartSlice..EndSlice is the
	// inclusive range this invocation dispatches. EndSlice -1 means the
	// last slice.
	Slices     int
	StartSlice int
	EndSlice   int

	// OpenSnapshot freezes the source index and returns the snapshot id.
	OpenSnapshot func(ctx context.Context) (string, error)
	// CloseSnapshot releases the snapshot. Optional.
	CloseSnapshot func(ctx context.Context, id string) error
	// RunSlice processes one slice of the snapshot.
	RunSlice func(ctx context.Context, snapshotID string, sliceID, sliceCount int) error

	Log *zap.Logger
}

// Run opens the snapshot and dispatches every slice in the configured range
// in order.
func (c *Coordinator) Run(ctx context.Context) error {
	slices := c.Slices
	if slices <= 0 {
		slices = 1
	}
	start := c.StartSlice
	if start < 0 {
		start = 0
	}
	end := c.EndSlice
	if end < 0 || end >= slices {
		end = slices - 1
	}
	if start > end {
		return fmt.Errorf("slice range %d..%d is empty", start, end)
	}

	snapshot, err := c.OpenSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("open source snapshot: %w", err)
	}
	if c.CloseSnapshot != nil {
		defer func() {
			if err := c.CloseSnapshot(context.WithoutCancel(ctx), snapshot); err != nil {
				c.Log.Warn("close source snapshot", zap.Error(err))
			}
		}()
	}
	c.Log.Info("source snapshot opened",
		zap.Int("slices", slices),
		zap.Int("start_slice", start),
		zap.Int("end_slice", end),
	)

	for id := start; id <= end; id++ {
		if err := c.RunSlice(ctx, snapshot, id, slices); err != nil {
			return fmt.Errorf("slice %d: %w", id, err)
		}
	}
	return nil
}
