package checkpoint

import (
	"fmt"
	"time"

	"stac-stocktake/core/cursor"
)

// State is the durable progress of one reconciliation run. SourceKey and
// CatalogKey hold the last confirmed (processed) key on each side; resumed
// cursors are positioned strictly after them.
type State struct {
	// RunID identifies the run. It strictly increases across runs.
	RunID int64 `gorm:"column:run_id;primaryKey;autoIncrement:false" json:"run_id"`

	// SourceKey is the last source path confirmed by a decision.
	SourceKey string `gorm:"column:source_key;size:2048" json:"source_key"`

	// CatalogKey is the last catalog URI confirmed by a decision.
	CatalogKey string `gorm:"column:catalog_key;size:2048" json:"catalog_key"`

	// Processed counts decisions of any kind.
	Processed int64 `gorm:"column:processed" json:"processed"`

	// Created counts source entries missing from the catalog.
	Created int64 `gorm:"column:created" json:"created"`

	// Deleted counts catalog entries missing from the source.
	Deleted int64 `gorm:"column:deleted" json:"deleted"`

	// Matched counts keys present on both sides.
	Matched int64 `gorm:"column:matched" json:"matched"`

	StartedAt   time.Time `gorm:"column:started_at" json:"started_at"`
	LastSavedAt time.Time `gorm:"column:last_saved_at" json:"last_saved_at"`
}

// TableName sets the checkpoint table name.
func (State) TableName() string {
	return "stocktake_runs"
}

// NewRun allocates a fresh state following the given run id (zero when no run
// ever existed). Cursor keys start at the empty string, the lower bound of
// the key space.
func NewRun(lastRunID int64) *State {
	return &State{
		RunID:     lastRunID + 1,
		StartedAt: time.Now().UTC(),
	}
}

// Resumable reports whether the run terminated before both cursors were
// exhausted.
func (s *State) Resumable() bool {
	return !(s.SourceKey == cursor.Sentinel && s.CatalogKey == cursor.Sentinel)
}

// Validate rejects persisted states that cannot have been produced by a
// well-behaved run. Such a state indicates data loss in the checkpoint
// backing and must reach the operator instead of being silently reset.
func (s *State) Validate() error {
	if s.RunID < 1 {
		return fmt.Errorf("invalid run id %d", s.RunID)
	}
	if s.SourceKey > cursor.Sentinel || s.CatalogKey > cursor.Sentinel {
		return fmt.Errorf("run %d: cursor key sorts past the sentinel", s.RunID)
	}
	if s.Processed != s.Created+s.Deleted+s.Matched {
		return fmt.Errorf("run %d: processed=%d does not equal created+deleted+matched=%d",
			s.RunID, s.Processed, s.Created+s.Deleted+s.Matched)
	}
	return nil
}
