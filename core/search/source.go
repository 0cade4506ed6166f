package search

import (
	"context"
	"encoding/json"
	"fmt"

	"stac-stocktake/core/cursor"

	"github.com/elastic/go-elasticsearch/v8"
)

// SourcePager pages sorted file paths out of the FBI index. Only live file
// records take part in the stocktake: directories and records carrying a
// removal marker are filtered out.
type SourcePager struct {
	es       *elasticsearch.Client
	index    string
	pageSize int

	pit        string
	sliceID    int
	sliceCount int
}

// NewSourcePager builds a pager over the configured source index.
func NewSourcePager(es *elasticsearch.Client, cfg Config) *SourcePager {
	return &SourcePager{
		es:       es,
		index:    cfg.SourceIndex,
		pageSize: cfg.PageSize,
	}
}

// WithPIT scopes every query to a point-in-time snapshot token.
func (p *SourcePager) WithPIT(id string) *SourcePager {
	p.pit = id
	return p
}

// WithSlice scopes every query to one hash slice of the index. The source
// guarantees that the union of all count slices covers the index exactly
// once.
func (p *SourcePager) WithSlice(id, count int) *SourcePager {
	p.sliceID = id
	p.sliceCount = count
	return p
}

// Fetch implements cursor.Pager.
func (p *SourcePager) Fetch(ctx context.Context, after string) (cursor.Page, error) {
	body := map[string]any{
		"size":    p.pageSize,
		"sort":    []any{map[string]any{"path.keyword": "asc"}},
		"_source": []string{"path"},
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"type": "file"}},
				},
				"must_not": []any{
					map[string]any{"exists": map[string]any{"field": "removed"}},
				},
			},
		},
	}
	if after != "" {
		body["search_after"] = []any{after}
	}
	if p.pit != "" {
		body["pit"] = map[string]any{"id": p.pit}
	}
	if p.sliceCount > 1 {
		body["slice"] = map[string]any{"id": p.sliceID, "max": p.sliceCount}
	}

	// PIT-scoped searches carry the index inside the token.
	index := p.index
	if p.pit != "" {
		index = ""
	}

	hits, err := searchHits(ctx, p.es, index, body)
	if err != nil {
		return cursor.Page{}, err
	}

	keys := make([]string, 0, len(hits))
	for _, h := range hits {
		var src struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(h.Source, &src); err != nil {
			return cursor.Page{}, fmt.Errorf("parse source record: %w", err)
		}
		keys = append(keys, src.Path)
	}

	return cursor.Page{
		Keys:  keys,
		Final: len(hits) < p.pageSize,
	}, nil
}
