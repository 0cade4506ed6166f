// Package cursor provides ordered, paginated iteration over external sorted
// key streams.
//
// It wraps a paginated source behind a single "current key / advance" view so
// that consumers (the merge reconciler) never deal with page boundaries,
// refetches, or exhaustion detection.
//
// # Resume-after pagination
//
// Pages are requested with the last confirmed key as the boundary, never a
// numeric offset. This keeps pagination stable while the underlying index
// mutates ahead of the boundary, and makes a cursor trivially resumable from
// a persisted key.
//
// # Exhaustion
//
// A page with zero keys is not proof that the stream has ended: the source may
// have answered a narrower window than the full remaining range. The cursor
// re-queries with the same boundary (bounded, not recursive) until the source
// explicitly confirms a final page. Once exhausted, the current key is pinned
// to the Sentinel and never changes again.
//
// # Usage
//
//	cur := cursor.New(pager, "", cursor.Config{})
//	for {
//	    if err := cur.Advance(ctx); err != nil {
//	        return err
//	    }
//	    if cur.Current() == cursor.Sentinel {
//	        break
//	    }
//	    use(cur.Current())
//	}
package cursor
