package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stac-stocktake/core/search"
	"stac-stocktake/feature/stocktake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	chunkSlice        int
	chunkID           int
	chunkCatalogAfter string
	chunkFirst        bool
)

// chunkCmd is the worker entry point the scheduler invokes for one chunk.
var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Process one dispatched chunk",
	Long: `Replays the persisted key list of one chunk against its catalog range
and writes a counters report next to the input. Invoked by the scheduler; a
failed chunk is resubmitted and replays from the same immutable input.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg := mustSetup()
		defer logg.Sync()

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

		sink, closeSink, err := newSink(cfg, es, logg)
		if err != nil {
			logg.Fatal("Failed to build create sink", zap.Error(err))
		}
		defer closeSink()

		worker := &stocktake.Worker{
			Store:       chunkStore,
			Catalog:     search.NewCatalogPager(es, cfg.Search).From(chunkCatalogAfter, chunkFirst),
			Sink:        sink,
			KeyPageSize: cfg.Stocktake.KeyPageSize,
			Cursor:      cfg.Cursor,
			SaveEvery:   cfg.Stocktake.SaveEvery,
			Log:         logg,
		}

		st, err := worker.Run(ctx, chunkSlice, chunkID)
		if err != nil {
			logg.Fatal("Chunk failed", zap.Error(err))
		}
		logg.Info("Chunk complete",
			zap.Int("slice", chunkSlice),
			zap.Int("chunk", chunkID),
			zap.Int64("processed", st.Processed),
			zap.Int64("created", st.Created),
			zap.Int64("deleted", st.Deleted),
			zap.Int64("matched", st.Matched),
		)
	},
}

func init() {
	chunkCmd.Flags().IntVar(&chunkSlice, "slice", 0, "slice the chunk belongs to")
	chunkCmd.Flags().IntVar(&chunkID, "chunk", 0, "chunk id within the slice")
	chunkCmd.Flags().StringVar(&chunkCatalogAfter, "catalog-after", "", "catalog key the worker resumes from")
	chunkCmd.Flags().BoolVar(&chunkFirst, "first", false, "treat the resume key as inclusive (first chunk)")
	_ = chunkCmd.MarkFlagRequired("catalog-after")
	RootCmd.AddCommand(chunkCmd)
}
