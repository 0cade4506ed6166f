package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeTransport replays canned Elasticsearch responses and records every
// request body the client sends.
type fakeTransport struct {
	requests  []capturedRequest
	responses []string
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	captured := capturedRequest{Method: req.Method, Path: req.URL.Path}
	if req.Body != nil {
		_ = json.NewDecoder(req.Body).Decode(&captured.Body)
	}
	f.requests = append(f.requests, captured)

	body := "{}"
	if len(f.responses) > 0 {
		body = f.responses[0]
		f.responses = f.responses[1:]
	}

	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

func newFakeES(t *testing.T, ft *fakeTransport) *elasticsearch.Client {
	t.Helper()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch.test"},
		Transport: ft,
	})
	require.NoError(t, err)
	return es
}

func sourceResponse(paths ...string) string {
	hits := make([]map[string]any, 0, len(paths))
	for _, p := range paths {
		hits = append(hits, map[string]any{
			"_source": map[string]any{"path": p},
			"sort":    []any{p},
		})
	}
	body, _ := json.Marshal(map[string]any{"hits": map[string]any{"hits": hits}})
	return string(body)
}

func catalogResponse(uris ...string) string {
	hits := make([]map[string]any, 0, len(uris))
	for _, u := range uris {
		hits = append(hits, map[string]any{
			"_source": map[string]any{"properties": map[string]any{"uri": u}},
			"sort":    []any{u},
		})
	}
	body, _ := json.Marshal(map[string]any{"hits": map[string]any{"hits": hits}})
	return string(body)
}

func TestSourcePager_Fetch(t *testing.T) {
	ft := &fakeTransport{responses: []string{sourceResponse("/badc/a.nc", "/badc/b.nc")}}
	pager := NewSourcePager(newFakeES(t, ft), Config{SourceIndex: "fbi", PageSize: 10})

	page, err := pager.Fetch(context.Background(), "/badc")
	require.NoError(t, err)
	assert.Equal(t, []string{"/badc/a.nc", "/badc/b.nc"}, page.Keys)
	assert.True(t, page.Final, "short page confirms end of stream")

	require.Len(t, ft.requests, 1)
	req := ft.requests[0]
	assert.Contains(t, req.Path, "/fbi/_search")
	assert.Equal(t, []any{"/badc"}, req.Body["search_after"])
	assert.NotContains(t, req.Body, "slice")
	assert.NotContains(t, req.Body, "pit")
}

func TestSourcePager_SlicedWithPIT(t *testing.T) {
	ft := &fakeTransport{responses: []string{sourceResponse("/a")}}
	pager := NewSourcePager(newFakeES(t, ft), Config{SourceIndex: "fbi", PageSize: 1}).
		WithPIT("pit-token").
		WithSlice(3, 10)

	page, err := pager.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, page.Final, "full page leaves the stream open")

	req := ft.requests[0]
	// A PIT search carries the index inside the token.
	assert.Equal(t, "/_search", req.Path)
	assert.Equal(t, map[string]any{"id": "pit-token"}, req.Body["pit"])
	assert.Equal(t, map[string]any{"id": float64(3), "max": float64(10)}, req.Body["slice"])
	assert.NotContains(t, req.Body, "search_after")
}

func TestSourcePager_FiltersLiveFiles(t *testing.T) {
	ft := &fakeTransport{responses: []string{sourceResponse()}}
	pager := NewSourcePager(newFakeES(t, ft), Config{SourceIndex: "fbi", PageSize: 10})

	_, err := pager.Fetch(context.Background(), "")
	require.NoError(t, err)

	query := ft.requests[0].Body["query"].(map[string]any)["bool"].(map[string]any)
	filters := query["filter"].([]any)
	assert.Contains(t, filters, map[string]any{"term": map[string]any{"type": "file"}})
	mustNot := query["must_not"].([]any)
	assert.Contains(t, mustNot, map[string]any{"exists": map[string]any{"field": "removed"}})
}

func TestCatalogPager_InclusiveFirstChunk(t *testing.T) {
	ft := &fakeTransport{responses: []string{
		catalogResponse("/badc/a.nc", "/badc/b.nc"),
		catalogResponse("/badc/c.nc"),
	}}
	pager := NewCatalogPager(newFakeES(t, ft), Config{CatalogIndex: "stac-assets", PageSize: 2}).
		From("/badc/a.nc", true)

	page, err := pager.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/badc/a.nc", "/badc/b.nc"}, page.Keys)

	// First query includes the boundary key itself.
	rangeQuery := ft.requests[0].Body["query"].(map[string]any)["range"].(map[string]any)
	bounds := rangeQuery["properties.uri.keyword"].(map[string]any)
	assert.Equal(t, "/badc/a.nc", bounds["gte"])

	// Subsequent queries fall back to resume-after.
	_, err = pager.Fetch(context.Background(), "/badc/b.nc")
	require.NoError(t, err)
	assert.Equal(t, []any{"/badc/b.nc"}, ft.requests[1].Body["search_after"])
	assert.NotContains(t, ft.requests[1].Body, "query")
}

func TestCatalogPager_ExclusiveLaterChunk(t *testing.T) {
	ft := &fakeTransport{responses: []string{catalogResponse("/b")}}
	pager := NewCatalogPager(newFakeES(t, ft), Config{CatalogIndex: "stac-assets", PageSize: 10}).
		From("/a", false)

	_, err := pager.Fetch(context.Background(), "")
	require.NoError(t, err)

	rangeQuery := ft.requests[0].Body["query"].(map[string]any)["range"].(map[string]any)
	bounds := rangeQuery["properties.uri.keyword"].(map[string]any)
	assert.Equal(t, "/a", bounds["gt"])
	assert.NotContains(t, bounds, "gte")
}

func TestOpenPIT(t *testing.T) {
	ft := &fakeTransport{responses: []string{`{"id": "pit-abc"}`}}
	id, err := OpenPIT(context.Background(), newFakeES(t, ft), "fbi", "5m")
	require.NoError(t, err)
	assert.Equal(t, "pit-abc", id)
	assert.Contains(t, ft.requests[0].Path, "/fbi/_pit")
}

func TestAssetWriter_Process(t *testing.T) {
	ft := &fakeTransport{responses: []string{`{"result": "created"}`}}
	writer := NewAssetWriter(newFakeES(t, ft), Config{CatalogIndex: "stac-assets"})

	require.NoError(t, writer.Process(context.Background(), "/badc/a.nc"))

	req := ft.requests[0]
	assert.Contains(t, req.Path, "/stac-assets/_doc/")
	props := req.Body["properties"].(map[string]any)
	assert.Equal(t, "/badc/a.nc", props["uri"])

	// Deterministic document id: a replayed create hits the same entry.
	ft.responses = []string{`{"result": "updated"}`}
	require.NoError(t, writer.Process(context.Background(), "/badc/a.nc"))
	assert.Equal(t, req.Path, ft.requests[1].Path)
}
