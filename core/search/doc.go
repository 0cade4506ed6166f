// Package search provides the Elasticsearch-backed cursor providers for both
// sides of the stocktake.
//
// The source index (FBI) is keyed by filesystem path; the catalog index
// (STAC) is keyed by asset URI. Both pagers implement cursor.Pager using
// sorted search-after queries: pages are bounded by the last confirmed key,
// never a numeric offset, so pagination stays stable while the index mutates
// ahead of the boundary.
//
// The source pager additionally supports hash-slice scoping and point-in-time
// snapshot tokens for distributed runs, so every slice of a long run observes
// one consistent view of the index.
//
// AssetWriter is the in-line materializer variant of the action sink: it
// indexes a minimal catalog entry for a source path, with a deterministic
// document id so at-least-once replays are harmless upserts.
package search
