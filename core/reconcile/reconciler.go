package reconcile

import (
	"context"
	"fmt"

	"stac-stocktake/core/checkpoint"
	"stac-stocktake/core/cursor"

	"go.uber.org/zap"
)

// DecisionKind classifies one merge step.
type DecisionKind string

const (
	// DecisionCreate marks a source entry missing from the catalog.
	DecisionCreate DecisionKind = "create"
	// DecisionDelete marks a catalog entry missing from the source.
	DecisionDelete DecisionKind = "delete"
	// DecisionMatch marks a key present on both sides.
	DecisionMatch DecisionKind = "match"
)

// Decision is one emitted merge step.
type Decision struct {
	Kind DecisionKind
	Key  string
}

// Saver persists run state. checkpoint.Store satisfies it; chunk workers run
// without one.
type Saver interface {
	Save(ctx context.Context, s *checkpoint.State) error
}

// Config tunes a Reconciler.
type Config struct {
	// SaveEvery is the checkpoint cadence in processed decisions.
	SaveEvery int64
	// OnDecision, when set, observes every decision in emission order.
	OnDecision func(Decision)
	// SourceBounded ends the run once the source side is exhausted.
	// Chunk workers set it: trailing catalog keys past the chunk's last
	// source key belong to the next chunk's range.
	SourceBounded bool
}

// Reconciler drives the merge join between the source and catalog cursors.
type Reconciler struct {
	source  *cursor.PagedCursor
	catalog *cursor.PagedCursor
	sink    ActionSink
	state   *checkpoint.State
	saver   Saver
	cfg     Config
	log     *zap.Logger
}

// New builds a reconciler. saver may be nil for runs that keep counters only
// (distributed chunk workers).
func New(source, catalog *cursor.PagedCursor, sink ActionSink, state *checkpoint.State, saver Saver, cfg Config, log *zap.Logger) *Reconciler {
	if cfg.SaveEvery <= 0 {
		cfg.SaveEvery = 1000
	}
	return &Reconciler{
		source:  source,
		catalog: catalog,
		sink:    sink,
		state:   state,
		saver:   saver,
		cfg:     cfg,
		log:     log,
	}
}

// Run executes the merge until both cursors are exhausted or an error aborts
// the run. On a sink or checkpoint failure the persisted state still points
// at the last confirmed position, so a restart resumes without loss.
func (r *Reconciler) Run(ctx context.Context) error {
	// Position both cursors on their first unprocessed keys.
	if err := r.source.Advance(ctx); err != nil {
		return fmt.Errorf("position source cursor: %w", err)
	}
	if err := r.catalog.Advance(ctx); err != nil {
		return fmt.Errorf("position catalog cursor: %w", err)
	}

	for {
		a := r.source.Current()
		b := r.catalog.Current()

		if a == cursor.Sentinel && (b == cursor.Sentinel || r.cfg.SourceBounded) {
			r.state.SourceKey = cursor.Sentinel
			if b == cursor.Sentinel {
				r.state.CatalogKey = cursor.Sentinel
			}
			if err := r.save(ctx); err != nil {
				return err
			}
			r.log.Info("reconciliation finished",
				zap.Int64("run_id", r.state.RunID),
				zap.Int64("processed", r.state.Processed),
				zap.Int64("created", r.state.Created),
				zap.Int64("deleted", r.state.Deleted),
				zap.Int64("matched", r.state.Matched),
			)
			return nil
		}

		switch {
		case b == cursor.Sentinel || b > a:
			// The catalog has no entry for this source path. The
			// sink must succeed before the cursor advances, or the
			// discrepancy would be silently lost.
			if err := r.sink.AnnounceCreate(ctx, a); err != nil {
				return fmt.Errorf("announce create for %q: %w", a, err)
			}
			r.observe(Decision{Kind: DecisionCreate, Key: a})
			r.state.Created++
			r.state.SourceKey = a
			if err := r.source.Advance(ctx); err != nil {
				return err
			}

		case a == cursor.Sentinel || b < a:
			// Orphaned catalog entry. Removal is deliberately not
			// applied here; the orphan is counted and logged for
			// operators to act on.
			r.log.Debug("catalog entry has no source counterpart", zap.String("uri", b))
			r.observe(Decision{Kind: DecisionDelete, Key: b})
			r.state.Deleted++
			r.state.CatalogKey = b
			if err := r.catalog.Advance(ctx); err != nil {
				return err
			}

		default:
			r.observe(Decision{Kind: DecisionMatch, Key: a})
			r.state.Matched++
			r.state.SourceKey = a
			r.state.CatalogKey = b
			if err := r.source.Advance(ctx); err != nil {
				return err
			}
			if err := r.catalog.Advance(ctx); err != nil {
				return err
			}
		}

		r.state.Processed++
		if r.state.Processed%r.cfg.SaveEvery == 0 {
			r.log.Info("reconciliation progress",
				zap.Int64("processed", r.state.Processed),
				zap.String("source_key", r.state.SourceKey),
				zap.String("catalog_key", r.state.CatalogKey),
			)
			if err := r.save(ctx); err != nil {
				return err
			}
		}
	}
}

// State returns the run state the reconciler mutates.
func (r *Reconciler) State() *checkpoint.State {
	return r.state
}

func (r *Reconciler) observe(d Decision) {
	if r.cfg.OnDecision != nil {
		r.cfg.OnDecision(d)
	}
}

func (r *Reconciler) save(ctx context.Context) error {
	if r.saver == nil {
		return nil
	}
	if err := r.saver.Save(ctx, r.state); err != nil {
		// An un-persisted run must not be reported as progressed.
		return fmt.Errorf("checkpoint at source=%q catalog=%q: %w",
			r.state.SourceKey, r.state.CatalogKey, err)
	}
	return nil
}
