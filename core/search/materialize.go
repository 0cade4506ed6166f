package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// AssetWriter creates minimal catalog entries directly in the STAC index. It
// is the synchronous in-line alternative to announcing creates on the queue.
type AssetWriter struct {
	es    *elasticsearch.Client
	index string
}

// NewAssetWriter builds a writer for the configured catalog index.
func NewAssetWriter(es *elasticsearch.Client, cfg Config) *AssetWriter {
	return &AssetWriter{es: es, index: cfg.CatalogIndex}
}

// Process indexes a catalog entry for the given source path. The document id
// is derived from the path, so a replayed create overwrites the same entry
// instead of duplicating it.
func (w *AssetWriter) Process(ctx context.Context, path string) error {
	doc := map[string]any{
		"properties": map[string]any{"uri": path},
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode catalog entry for %q: %w", path, err)
	}

	sum := sha256.Sum256([]byte(path))
	req := esapi.IndexRequest{
		Index:      w.index,
		DocumentID: hex.EncodeToString(sum[:]),
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, w.es)
	if err != nil {
		return fmt.Errorf("index catalog entry for %q: %w", path, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index catalog entry for %q failed with status %s: %s", path, res.Status(), string(detail))
	}
	return nil
}
