package cursor

import (
	"context"
	"fmt"
	"time"
)

// Sentinel is the key that marks cursor exhaustion. It sorts after every real
// key: both FBI paths and STAC asset URIs start with "/" (0x2F), which orders
// before "~" (0x7E).
const Sentinel = "~"

// Page is one sorted window of keys returned by a Pager.
type Page struct {
	// Keys are the keys of this window, ascending, all strictly greater
	// than the requested boundary.
	Keys []string

	// Final reports that the source confirmed this was the correctly
	// windowed last page of the stream. An empty page with Final=false is
	// ambiguous and must be re-queried with the same boundary.
	Final bool
}

// Pager fetches the next sorted window of keys strictly after a boundary key.
// An empty boundary means the lower bound of the key space.
type Pager interface {
	Fetch(ctx context.Context, after string) (Page, error)
}

// Config bounds the retry behaviour of a cursor.
type Config struct {
	// MaxEmptyPages is the number of consecutive ambiguous empty pages
	// tolerated before the cursor gives up.
	MaxEmptyPages int `mapstructure:"max_empty_pages" default:"8"`
	// MaxFetchRetries is the number of retries for a failed page fetch.
	MaxFetchRetries int `mapstructure:"max_fetch_retries" default:"3"`
	// RetryBackoffMS is the delay between fetch retries in milliseconds.
	RetryBackoffMS int `mapstructure:"retry_backoff_ms" default:"500"`
}

func (c Config) withDefaults() Config {
	if c.MaxEmptyPages <= 0 {
		c.MaxEmptyPages = 8
	}
	if c.MaxFetchRetries <= 0 {
		c.MaxFetchRetries = 3
	}
	if c.RetryBackoffMS <= 0 {
		c.RetryBackoffMS = 500
	}
	return c
}

// PagedCursor exposes one sorted paginated source as a monotonic key stream.
// It is not safe for concurrent use; strict key order forbids out-of-order
// prefetching anyway.
type PagedCursor struct {
	pager     Pager
	cfg       Config
	current   string
	buf       []string
	idx       int
	final     bool
	exhausted bool
}

// New returns a cursor positioned after the given boundary key. Current is
// meaningful only after the first Advance; the first Advance yields the first
// key strictly greater than the boundary.
func New(pager Pager, after string, cfg Config) *PagedCursor {
	return &PagedCursor{
		pager:   pager,
		cfg:     cfg.withDefaults(),
		current: after,
	}
}

// Current returns the key the cursor is positioned on. Once the cursor is
// exhausted this is always the Sentinel.
func (c *PagedCursor) Current() string {
	return c.current
}

// Exhausted reports whether the underlying stream has confirmed its end.
func (c *PagedCursor) Exhausted() bool {
	return c.exhausted
}

// Advance moves the cursor to the next key. On return, Current is either
// strictly greater than before or equal to the Sentinel. Advancing an
// exhausted cursor is a no-op.
func (c *PagedCursor) Advance(ctx context.Context) error {
	if c.exhausted {
		return nil
	}

	for {
		if c.idx < len(c.buf) {
			key := c.buf[c.idx]
			c.idx++
			if key <= c.current {
				return fmt.Errorf("cursor order violated: %q does not follow %q", key, c.current)
			}
			c.current = key
			return nil
		}

		// Buffer drained. If the last page was final there is nothing
		// left to ask for.
		if c.final {
			c.exhaust()
			return nil
		}

		page, err := FetchPage(ctx, c.pager, c.current, c.cfg)
		if err != nil {
			return err
		}
		if len(page.Keys) == 0 {
			// FetchPage only returns an empty page once the source
			// confirmed the end of the stream.
			c.exhaust()
			return nil
		}
		c.buf = page.Keys
		c.idx = 0
		c.final = page.Final
	}
}

func (c *PagedCursor) exhaust() {
	c.exhausted = true
	c.current = Sentinel
	c.buf = nil
	c.idx = 0
}

// FetchPage fetches one page after the given boundary, retrying transient
// fetch failures and ambiguous empty pages within the configured bounds. The
// returned page is empty only when the source confirmed end of stream.
func FetchPage(ctx context.Context, pager Pager, after string, cfg Config) (Page, error) {
	cfg = cfg.withDefaults()

	empties := 0
	for {
		page, err := fetchWithRetry(ctx, pager, after, cfg)
		if err != nil {
			return Page{}, err
		}
		if len(page.Keys) > 0 || page.Final {
			return page, nil
		}

		// Empty but not confirmed final: the source answered a window
		// that happened to contain nothing. Ask again with the same
		// boundary, bounded to avoid spinning on a pathological source.
		empties++
		if empties > cfg.MaxEmptyPages {
			return Page{}, fmt.Errorf("source returned %d consecutive empty pages after %q without confirming end of stream", empties, after)
		}
	}
}

func fetchWithRetry(ctx context.Context, pager Pager, after string, cfg Config) (Page, error) {
	backoff := time.Duration(cfg.RetryBackoffMS) * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxFetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Page{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		page, err := pager.Fetch(ctx, after)
		if err == nil {
			return page, nil
		}
		lastErr = err
	}
	return Page{}, fmt.Errorf("page fetch after %q failed: %w", after, lastErr)
}
