package chunkstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"stac-stocktake/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectStore keeps chunk data in object storage, for worker nodes without a
// shared filesystem.
type ObjectStore struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectStore builds a store under the given bucket and key prefix.
func NewObjectStore(client storage.Client, bucket, prefix string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *ObjectStore) objectName(sliceID, chunkID int, name string) string {
	return fmt.Sprintf("%s/%d/%d/%s", s.prefix, sliceID, chunkID, name)
}

// WriteInput implements Store.
func (s *ObjectStore) WriteInput(ctx context.Context, sliceID, chunkID int, keys []string) error {
	name := s.objectName(sliceID, chunkID, "input")

	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err == nil {
		return fmt.Errorf("chunk input %s already exists", name)
	}

	data := encodeKeys(keys)
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("write chunk input %s: %w", name, err)
	}
	return nil
}

// ReadInput implements Store.
func (s *ObjectStore) ReadInput(ctx context.Context, sliceID, chunkID int) ([]string, error) {
	name := s.objectName(sliceID, chunkID, "input")

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("read chunk input %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read chunk input %s: %w", name, err)
	}
	return decodeKeys(data), nil
}

// WriteOutput implements Store.
func (s *ObjectStore) WriteOutput(ctx context.Context, sliceID, chunkID int, report []byte) error {
	name := s.objectName(sliceID, chunkID, "output/report")
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(report), int64(len(report)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("write chunk output %s: %w", name, err)
	}
	return nil
}
