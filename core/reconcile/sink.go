package reconcile

import "context"

// ActionSink receives create decisions. Exactly one implementation is
// configured per run: the queue producer (core/queue) or a synchronous
// materializer wrapped by MaterializerSink.
type ActionSink interface {
	// AnnounceCreate requests creation of the catalog entry for the given
	// source key. Delivery is at-least-once across crashes and retries;
	// implementations must treat re-creation of an existing entry as a
	// safe no-op.
	AnnounceCreate(ctx context.Context, key string) error
}

// Materializer creates a catalog entry from a source path in-line.
type Materializer interface {
	Process(ctx context.Context, path string) error
}

// MaterializerSink adapts a Materializer to the ActionSink contract.
type MaterializerSink struct {
	m Materializer
}

// NewMaterializerSink wraps the given materializer.
func NewMaterializerSink(m Materializer) *MaterializerSink {
	return &MaterializerSink{m: m}
}

// AnnounceCreate implements ActionSink.
func (s *MaterializerSink) AnnounceCreate(ctx context.Context, key string) error {
	return s.m.Process(ctx, key)
}
