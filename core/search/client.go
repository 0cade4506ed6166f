package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewClient creates an Elasticsearch client from the configuration.
func NewClient(cfg Config) (*elasticsearch.Client, error) {
	addresses := strings.Split(cfg.Addresses, ",")
	for i := range addresses {
		addresses[i] = strings.TrimSpace(addresses[i])
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return es, nil
}

type hit struct {
	Source json.RawMessage `json:"_source"`
	Sort   []any           `json:"sort"`
}

// searchHits executes one search and returns the raw hits. An empty index
// leaves the request index-less, which is required for PIT-scoped searches.
func searchHits(ctx context.Context, es *elasticsearch.Client, index string, body map[string]any) ([]hit, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	req := esapi.SearchRequest{Body: &buf}
	if index != "" {
		req.Index = []string{index}
	}

	res, err := req.Do(ctx, es)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed with status %s: %s", res.Status(), string(detail))
	}

	var response struct {
		Hits struct {
			Hits []hit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return response.Hits.Hits, nil
}
