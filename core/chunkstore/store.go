package chunkstore

import (
	"context"
	"fmt"

	"stac-stocktake/core/storage"
)

// Store persists immutable chunk inputs and worker outputs.
type Store interface {
	// WriteInput persists the ordered key list for one chunk. Chunk
	// inputs are write-once; writing an existing chunk is an error.
	WriteInput(ctx context.Context, sliceID, chunkID int, keys []string) error
	// ReadInput returns the ordered key list persisted for one chunk.
	ReadInput(ctx context.Context, sliceID, chunkID int) ([]string, error)
	// WriteOutput persists the worker's final report for one chunk.
	WriteOutput(ctx context.Context, sliceID, chunkID int, report []byte) error
}

// Config holds configuration for the chunk store.
type Config struct {
	// Backend selects the store implementation: "fs" or "s3".
	Backend string `mapstructure:"backend" default:"fs"`
	// DataRoot is the root directory for the fs backend and the local
	// scheduler log directory in either backend.
	DataRoot string `mapstructure:"data_root" default:"./data"`
	// Prefix is the object key prefix for the s3 backend.
	Prefix string `mapstructure:"prefix" default:"stocktake"`
}

// New builds the configured store. The storage client may be nil for the fs
// backend.
func New(cfg Config, client storage.Client, bucket string) (Store, error) {
	switch cfg.Backend {
	case "", "fs":
		return NewFSStore(cfg.DataRoot), nil
	case "s3":
		if client == nil {
			return nil, fmt.Errorf("chunk store backend %q requires a storage client", cfg.Backend)
		}
		return NewObjectStore(client, bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown chunk store backend %q", cfg.Backend)
	}
}
