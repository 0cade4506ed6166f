package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stac-stocktake/core/config"
	"stac-stocktake/core/scheduler"
	"stac-stocktake/core/search"
	"stac-stocktake/feature/stocktake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchStartSlice int
	batchEndSlice   int
)

// batchCmd dispatches a slice range of a distributed stocktake.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Chunk a range of slices and submit their workers",
	Long: `Opens a point-in-time snapshot of the file index, splits each slice in
the configured range into immutable chunk inputs, and submits one scheduler
job per chunk. Workers run the merge independently via the chunk command.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg := mustSetup()
		defer logg.Sync()

		// Flags win over the configured range.
		start, end := cfg.Stocktake.StartSlice, cfg.Stocktake.EndSlice
		if cmd.Flags().Changed("start-slice") {
			start = batchStartSlice
		}
		if cmd.Flags().Changed("end-slice") {
			end = batchEndSlice
		}
		dispatchSlices(cfg, logg, start, end)
	},
}

// allCmd dispatches every slice.
var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Chunk every slice and submit their workers",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg := mustSetup()
		defer logg.Sync()
		dispatchSlices(cfg, logg, 0, -1)
	},
}

// dispatchSlices runs the coordinator over [start, end]. end -1 means the
// last slice.
func dispatchSlices(cfg *config.Config, logg *zap.Logger, start, end int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	es, err := search.NewClient(cfg.Search)
	if err != nil {
		logg.Fatal("Failed to create search client", zap.Error(err))
	}

	chunkStore, err := newChunkStore(cfg)
	if err != nil {
		logg.Fatal("Failed to create chunk store", zap.Error(err))
	}
	submitter := scheduler.NewSlurm(cfg.Scheduler, logg)

	coord := &stocktake.Coordinator{
		Slices:     cfg.Stocktake.Slices,
		StartSlice: start,
		EndSlice:   end,
		OpenSnapshot: func(ctx context.Context) (string, error) {
			return search.OpenPIT(ctx, es, cfg.Search.SourceIndex, cfg.Search.PITKeepAlive)
		},
		CloseSnapshot: func(ctx context.Context, id string) error {
			return search.ClosePIT(ctx, es, id)
		},
		RunSlice: func(ctx context.Context, snapshot string, id, count int) error {
			chunker := &stocktake.Chunker{
				Source:          search.NewSourcePager(es, cfg.Search).WithPIT(snapshot).WithSlice(id, count),
				Store:           chunkStore,
				Submitter:       submitter,
				BatchesPerChunk: cfg.Stocktake.BatchesPerChunk,
				LogRoot:         cfg.Chunk.DataRoot,
				Cursor:          cfg.Cursor,
				Log:             logg,
			}
			_, err := chunker.Run(ctx, id)
			return err
		},
		Log: logg,
	}

	if err := coord.Run(ctx); err != nil {
		logg.Fatal("Slice dispatch failed", zap.Error(err))
	}
	logg.Info("All slices dispatched")
}

func init() {
	batchCmd.Flags().IntVar(&batchStartSlice, "start-slice", 0, "first slice to dispatch")
	batchCmd.Flags().IntVar(&batchEndSlice, "end-slice", -1, "last slice to dispatch, -1 for the last")
	RootCmd.AddCommand(batchCmd)
	RootCmd.AddCommand(allCmd)
}
