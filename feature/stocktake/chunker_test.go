package stocktake

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"stac-stocktake/core/chunkstore"
	"stac-stocktake/core/cursor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChunker_SplitsSliceIntoChunks(t *testing.T) {
	root := t.TempDir()
	store := chunkstore.NewFSStore(root)
	sub := &captureSubmitter{}
	c := &Chunker{
		Source:          cursor.NewKeyListPager([]string{"/a", "/b", "/c", "/d", "/e"}, 2),
		Store:           store,
		Submitter:       sub,
		BatchesPerChunk: 2,
		LogRoot:         root,
		Log:             zap.NewNop(),
	}

	chunks, err := c.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, chunks)

	// Chunk inputs are the page batches folded together, in order.
	first, err := store.ReadInput(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b", "/c", "/d"}, first)
	second, err := store.ReadInput(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/e"}, second)

	require.Len(t, sub.jobs, 2)

	// The first chunk starts the catalog at its own first key,
	// inclusively; the next resumes after the previous chunk's last key.
	assert.Equal(t, 3, sub.jobs[0].SliceID)
	assert.Equal(t, 0, sub.jobs[0].ChunkID)
	assert.Equal(t, "/a", sub.jobs[0].CatalogResumeKey)
	assert.True(t, sub.jobs[0].FirstChunk)

	assert.Equal(t, 1, sub.jobs[1].ChunkID)
	assert.Equal(t, "/d", sub.jobs[1].CatalogResumeKey)
	assert.False(t, sub.jobs[1].FirstChunk)

	for _, job := range sub.jobs {
		want := filepath.Join(root, "3", strconv.Itoa(job.ChunkID), "output")
		assert.Equal(t, want, job.LogDir)
		assert.DirExists(t, job.LogDir)
	}
}

func TestChunker_EmptySlice(t *testing.T) {
	sub := &captureSubmitter{}
	c := &Chunker{
		Source:          cursor.NewKeyListPager(nil, 2),
		Store:           chunkstore.NewFSStore(t.TempDir()),
		Submitter:       sub,
		BatchesPerChunk: 2,
		LogRoot:         t.TempDir(),
		Log:             zap.NewNop(),
	}

	chunks, err := c.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, chunks)
	assert.Empty(t, sub.jobs)
}

func TestChunker_SubmitFailureStops(t *testing.T) {
	sub := &captureSubmitter{err: assert.AnError}
	c := &Chunker{
		Source:          cursor.NewKeyListPager([]string{"/a", "/b", "/c"}, 2),
		Store:           chunkstore.NewFSStore(t.TempDir()),
		Submitter:       sub,
		BatchesPerChunk: 1,
		LogRoot:         t.TempDir(),
		Log:             zap.NewNop(),
	}

	_, err := c.Run(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit chunk 0/0")
}

func TestChunker_InputIsWriteOnce(t *testing.T) {
	root := t.TempDir()
	store := chunkstore.NewFSStore(root)
	require.NoError(t, store.WriteInput(context.Background(), 0, 0, []string{"/old"}))

	c := &Chunker{
		Source:          cursor.NewKeyListPager([]string{"/a"}, 2),
		Store:           store,
		Submitter:       &captureSubmitter{},
		BatchesPerChunk: 1,
		LogRoot:         root,
		Log:             zap.NewNop(),
	}

	_, err := c.Run(context.Background(), 0)
	require.Error(t, err)
	// The stale input survives untouched.
	keys, readErr := store.ReadInput(context.Background(), 0, 0)
	require.NoError(t, readErr)
	assert.Equal(t, []string{"/old"}, keys)
}
