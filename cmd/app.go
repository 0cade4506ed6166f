package cmd

import (
	"fmt"
	"log"

	"stac-stocktake/core/chunkstore"
	"stac-stocktake/core/config"
	"stac-stocktake/core/logger"
	"stac-stocktake/core/queue"
	"stac-stocktake/core/reconcile"
	"stac-stocktake/core/search"
	"stac-stocktake/core/storage"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// mustSetup loads configuration and builds the logger, exiting on failure.
// Every command starts here.
func mustSetup() (*config.Config, *zap.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logg)
	return cfg, logg
}

// newSink builds the configured create sink. The returned closer flushes the
// queue producer; for the direct sink it is a no-op.
func newSink(cfg *config.Config, es *elasticsearch.Client, logg *zap.Logger) (reconcile.ActionSink, func(), error) {
	switch cfg.Stocktake.Sink {
	case "queue":
		p := queue.NewProducer(cfg.Queue, logg)
		return p, func() {
			if err := p.Close(); err != nil {
				logg.Warn("Closing queue producer failed", zap.Error(err))
			}
		}, nil
	case "direct":
		return reconcile.NewMaterializerSink(search.NewAssetWriter(es, cfg.Search)), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown stocktake sink %q", cfg.Stocktake.Sink)
	}
}

// newChunkStore builds the chunk input/output store, creating a storage
// client only when the s3 backend asks for one.
func newChunkStore(cfg *config.Config) (chunkstore.Store, error) {
	var client storage.Client
	if cfg.Chunk.Backend == "s3" {
		c, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		client = c
	}
	return chunkstore.New(cfg.Chunk, client, cfg.Storage.Bucket)
}
