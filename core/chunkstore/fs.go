package chunkstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FSStore keeps chunk data on a (shared) filesystem.
type FSStore struct {
	root string
}

// NewFSStore builds a store rooted at the given directory.
func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

// ChunkDir returns the directory for one chunk.
func (s *FSStore) ChunkDir(sliceID, chunkID int) string {
	return filepath.Join(s.root, strconv.Itoa(sliceID), strconv.Itoa(chunkID))
}

// WriteInput implements Store.
func (s *FSStore) WriteInput(_ context.Context, sliceID, chunkID int, keys []string) error {
	path := filepath.Join(s.ChunkDir(sliceID, chunkID), "input")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("chunk input %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chunk directory: %w", err)
	}

	if err := os.WriteFile(path, encodeKeys(keys), 0o644); err != nil {
		return fmt.Errorf("write chunk input %s: %w", path, err)
	}
	return nil
}

// ReadInput implements Store.
func (s *FSStore) ReadInput(_ context.Context, sliceID, chunkID int) ([]string, error) {
	path := filepath.Join(s.ChunkDir(sliceID, chunkID), "input")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunk input %s: %w", path, err)
	}
	return decodeKeys(data), nil
}

// WriteOutput implements Store.
func (s *FSStore) WriteOutput(_ context.Context, sliceID, chunkID int, report []byte) error {
	dir := filepath.Join(s.ChunkDir(sliceID, chunkID), "output")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunk output directory: %w", err)
	}
	path := filepath.Join(dir, "report")
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return fmt.Errorf("write chunk output %s: %w", path, err)
	}
	return nil
}

// encodeKeys serializes one key per line with a trailing newline as the end
// marker.
func encodeKeys(keys []string) []byte {
	if len(keys) == 0 {
		return nil
	}
	return []byte(strings.Join(keys, "\n") + "\n")
}

func decodeKeys(data []byte) []string {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	keys := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			keys = append(keys, line)
		}
	}
	return keys
}
