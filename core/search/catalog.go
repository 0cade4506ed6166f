package search

import (
	"context"
	"encoding/json"
	"fmt"

	"stac-stocktake/core/cursor"

	"github.com/elastic/go-elasticsearch/v8"
)

// CatalogPager pages sorted asset URIs out of the STAC index.
type CatalogPager struct {
	es       *elasticsearch.Client
	index    string
	pageSize int

	start     string
	inclusive bool
	started   bool
}

// NewCatalogPager builds a pager over the configured catalog index.
func NewCatalogPager(es *elasticsearch.Client, cfg Config) *CatalogPager {
	return &CatalogPager{
		es:       es,
		index:    cfg.CatalogIndex,
		pageSize: cfg.PageSize,
	}
}

// From sets the chunk resume boundary for the first query. On the first chunk
// of a slice the boundary key itself is included (the previous chunk never
// confirmed it); on later chunks the boundary is exclusive to avoid
// double-counting the hand-off key.
func (p *CatalogPager) From(start string, inclusive bool) *CatalogPager {
	p.start = start
	p.inclusive = inclusive
	return p
}

// Fetch implements cursor.Pager.
func (p *CatalogPager) Fetch(ctx context.Context, after string) (cursor.Page, error) {
	body := map[string]any{
		"size":    p.pageSize,
		"sort":    []any{map[string]any{"properties.uri.keyword": "asc"}},
		"_source": []string{"properties.uri"},
	}

	switch {
	case !p.started && p.start != "":
		op := "gt"
		if p.inclusive {
			op = "gte"
		}
		body["query"] = map[string]any{
			"range": map[string]any{
				"properties.uri.keyword": map[string]any{op: p.start},
			},
		}
	case after != "":
		body["search_after"] = []any{after}
	}

	hits, err := searchHits(ctx, p.es, p.index, body)
	if err != nil {
		return cursor.Page{}, err
	}

	keys := make([]string, 0, len(hits))
	for _, h := range hits {
		var src struct {
			Properties struct {
				URI string `json:"uri"`
			} `json:"properties"`
		}
		if err := json.Unmarshal(h.Source, &src); err != nil {
			return cursor.Page{}, fmt.Errorf("parse catalog record: %w", err)
		}
		keys = append(keys, src.Properties.URI)
	}

	if len(keys) > 0 {
		p.started = true
	}

	return cursor.Page{
		Keys:  keys,
		Final: len(hits) < p.pageSize,
	}, nil
}
