package stocktake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"stac-stocktake/core/chunkstore"
	"stac-stocktake/core/cursor"
	"stac-stocktake/core/scheduler"

	"go.uber.org/zap"
)

// Chunker splits one slice of the source index into immutable chunk inputs
// and submits a worker job per chunk. Each chunk carries the catalog resume
// key its worker starts from, so the catalog is covered without any worker
// coordinating with another.
type Chunker struct {
	Source    cursor.Pager
	Store     chunkstore.Store
	Submitter scheduler.Submitter

	// BatchesPerChunk is how many source pages are folded into one chunk.
	BatchesPerChunk int
	// LogRoot is the local directory scheduler logs are written under.
	LogRoot string

	Cursor cursor.Config
	Log    *zap.Logger
}

// Run pages the slice to exhaustion and returns the number of chunks
// dispatched.
func (c *Chunker) Run(ctx context.Context, sliceID int) (int, error) {
	batchLimit := c.BatchesPerChunk
	if batchLimit <= 0 {
		batchLimit = 1
	}

	var (
		keys      []string
		after     string
		batches   int
		chunkID   int
		resumeKey string
	)
	for {
		page, err := cursor.FetchPage(ctx, c.Source, after, c.Cursor)
		if err != nil {
			return chunkID, fmt.Errorf("page slice %d after %q: %w", sliceID, after, err)
		}

		exhausted := len(page.Keys) == 0
		if !exhausted {
			if chunkID == 0 && len(keys) == 0 {
				// The first chunk's catalog range starts at its
				// own first source key, inclusively. Later
				// chunks resume after the previous chunk's last
				// key.
				resumeKey = page.Keys[0]
			}
			keys = append(keys, page.Keys...)
			after = page.Keys[len(page.Keys)-1]
			batches++
		}

		if len(keys) > 0 && (batches >= batchLimit || exhausted) {
			if err := c.dispatch(ctx, sliceID, chunkID, keys, resumeKey); err != nil {
				return chunkID, err
			}
			resumeKey = keys[len(keys)-1]
			keys = nil
			batches = 0
			chunkID++
		}

		if exhausted {
			c.Log.Info("slice chunked", zap.Int("slice", sliceID), zap.Int("chunks", chunkID))
			return chunkID, nil
		}
	}
}

func (c *Chunker) dispatch(ctx context.Context, sliceID, chunkID int, keys []string, resumeKey string) error {
	// The input must be durable before the job exists: submission is
	// fire and forget and the worker may start at any time.
	if err := c.Store.WriteInput(ctx, sliceID, chunkID, keys); err != nil {
		return fmt.Errorf("write input for chunk %d/%d: %w", sliceID, chunkID, err)
	}

	logDir := filepath.Join(c.LogRoot, strconv.Itoa(sliceID), strconv.Itoa(chunkID), "output")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log dir %s: %w", logDir, err)
	}

	job := scheduler.Job{
		SliceID:          sliceID,
		ChunkID:          chunkID,
		CatalogResumeKey: resumeKey,
		FirstChunk:       chunkID == 0,
		LogDir:           logDir,
	}
	if err := c.Submitter.Submit(ctx, job); err != nil {
		return fmt.Errorf("submit chunk %d/%d: %w", sliceID, chunkID, err)
	}

	c.Log.Info("chunk dispatched",
		zap.Int("slice", sliceID),
		zap.Int("chunk", chunkID),
		zap.Int("keys", len(keys)),
		zap.String("catalog_after", resumeKey),
	)
	return nil
}
