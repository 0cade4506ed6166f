package cursor

import (
	"context"
	"sort"
)

// KeyListPager serves pages from a fixed, already sorted key list. Chunk
// workers use it to iterate the persisted chunk input without re-querying the
// source.
type KeyListPager struct {
	keys     []string
	pageSize int
}

// NewKeyListPager returns a pager over the given ascending key list. A
// non-positive page size serves the whole list as a single page.
func NewKeyListPager(keys []string, pageSize int) *KeyListPager {
	if pageSize <= 0 {
		pageSize = len(keys)
	}
	return &KeyListPager{keys: keys, pageSize: pageSize}
}

// Fetch returns the next window of keys strictly after the boundary.
func (p *KeyListPager) Fetch(_ context.Context, after string) (Page, error) {
	start := sort.SearchStrings(p.keys, after)
	// SearchStrings finds the first key >= after; the contract is strictly
	// greater.
	if start < len(p.keys) && p.keys[start] == after {
		start++
	}

	end := start + p.pageSize
	if end > len(p.keys) {
		end = len(p.keys)
	}

	return Page{
		Keys:  p.keys[start:end],
		Final: end == len(p.keys),
	}, nil
}
