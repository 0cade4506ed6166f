package chunkstore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"stac-stocktake/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFSStore_RoundTrip(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	keys := []string{"/badc/a.nc", "/badc/b.nc", "/badc/c.nc"}
	require.NoError(t, store.WriteInput(ctx, 2, 0, keys))

	got, err := store.ReadInput(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, keys, got)
}

func TestFSStore_InputIsWriteOnce(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.WriteInput(ctx, 0, 0, []string{"/a"}))
	err := store.WriteInput(ctx, 0, 0, []string{"/b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// The original input is untouched.
	got, err := store.ReadInput(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, got)
}

func TestFSStore_ChunksAreIndependent(t *testing.T) {
	store := NewFSStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.WriteInput(ctx, 0, 0, []string{"/a"}))
	require.NoError(t, store.WriteInput(ctx, 0, 1, []string{"/b"}))
	require.NoError(t, store.WriteInput(ctx, 1, 0, []string{"/c"}))

	got, err := store.ReadInput(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"/b"}, got)
}

func TestFSStore_WriteOutput(t *testing.T) {
	store := NewFSStore(t.TempDir())
	require.NoError(t, store.WriteOutput(context.Background(), 0, 3, []byte("total=10 new=2\n")))
}

func TestFSStore_ReadMissingInput(t *testing.T) {
	store := NewFSStore(t.TempDir())
	_, err := store.ReadInput(context.Background(), 9, 9)
	assert.Error(t, err)
}

func TestObjectStore_RoundTrip(t *testing.T) {
	client := new(mocks.Client)
	ctx := context.Background()

	// No existing input, then a successful upload.
	client.On("StatObject", mock.Anything, "stocktake", "chunks/1/0/input", mock.Anything).
		Return(minio.ObjectInfo{}, assert.AnError)
	client.On("PutObject", mock.Anything, "stocktake", "chunks/1/0/input", mock.Anything, int64(6), mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("GetObject", mock.Anything, "stocktake", "chunks/1/0/input", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte("/a\n/b\n"))), nil)

	store := NewObjectStore(client, "stocktake", "chunks")
	require.NoError(t, store.WriteInput(ctx, 1, 0, []string{"/a", "/b"}))

	keys, err := store.ReadInput(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, keys)
	client.AssertExpectations(t)
}

func TestObjectStore_InputIsWriteOnce(t *testing.T) {
	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "stocktake", "chunks/0/0/input", mock.Anything).
		Return(minio.ObjectInfo{Key: "chunks/0/0/input"}, nil)

	store := NewObjectStore(client, "stocktake", "chunks")
	err := store.WriteInput(context.Background(), 0, 0, []string{"/a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestNew_BackendSelection(t *testing.T) {
	fs, err := New(Config{Backend: "fs", DataRoot: t.TempDir()}, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &FSStore{}, fs)

	obj, err := New(Config{Backend: "s3", Prefix: "chunks"}, new(mocks.Client), "stocktake")
	require.NoError(t, err)
	assert.IsType(t, &ObjectStore{}, obj)

	_, err = New(Config{Backend: "s3"}, nil, "")
	assert.Error(t, err)

	_, err = New(Config{Backend: "tape"}, nil, "")
	assert.Error(t, err)
}
