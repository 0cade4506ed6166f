package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stac-stocktake/core/checkpoint"
	"stac-stocktake/core/database"
	"stac-stocktake/core/search"
	"stac-stocktake/feature/stocktake"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runCmd executes a full stocktake in this process.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full stocktake in this process",
	Long: `Walks the file index and the asset catalog side by side from start to
finish, announcing missing catalog entries and counting orphans. Progress is
checkpointed; an interrupted run resumes where it left off.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg := mustSetup()
		defer logg.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Checkpoint database connection failed", zap.Error(err))
		}
		store := checkpoint.NewGormStore(db)
		if err := store.Migrate(ctx); err != nil {
			logg.Fatal("Checkpoint migration failed", zap.Error(err))
		}

		es, err := search.NewClient(cfg.Search)
		if err != nil {
			logg.Fatal("Failed to create search client", zap.Error(err))
		}

		sink, closeSink, err := newSink(cfg, es, logg)
		if err != nil {
			logg.Fatal("Failed to build create sink", zap.Error(err))
		}
		defer closeSink()

		runner := &stocktake.Runner{
			Source:    search.NewSourcePager(es, cfg.Search),
			Catalog:   search.NewCatalogPager(es, cfg.Search),
			Sink:      sink,
			Store:     store,
			Cursor:    cfg.Cursor,
			SaveEvery: cfg.Stocktake.SaveEvery,
			Log:       logg,
		}

		st, err := runner.Run(ctx)
		if err != nil {
			logg.Fatal("Stocktake failed", zap.Error(err))
		}
		logg.Info("Stocktake complete",
			zap.Int64("run_id", st.RunID),
			zap.Int64("processed", st.Processed),
			zap.Int64("created", st.Created),
			zap.Int64("deleted", st.Deleted),
			zap.Int64("matched", st.Matched),
		)
	},
}

func init() {
	RootCmd.AddCommand(runCmd)
}
