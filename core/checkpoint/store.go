package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists and restores run progress.
type Store interface {
	// Load returns the most recent resumable state, or nil when no state
	// exists or the most recent run fully completed.
	Load(ctx context.Context) (*State, error)
	// Latest returns the most recent state regardless of resumability, or
	// nil when no run was ever recorded.
	Latest(ctx context.Context) (*State, error)
	// LastRunID returns the highest run id ever recorded, zero when none.
	LastRunID(ctx context.Context) (int64, error)
	// Save persists the state atomically. A concurrent Load never sees a
	// partially written state.
	Save(ctx context.Context, s *State) error
}

// GormStore is the MySQL-backed checkpoint store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps the given database connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the checkpoint table if it does not exist.
func (g *GormStore) Migrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&State{}); err != nil {
		return fmt.Errorf("migrate checkpoint table: %w", err)
	}
	return nil
}

// Load implements Store.
func (g *GormStore) Load(ctx context.Context) (*State, error) {
	s, err := g.Latest(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	if !s.Resumable() {
		// The latest run completed; do not resurrect older runs.
		return nil, nil
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to resume from malformed state: %w", err)
	}
	return s, nil
}

// Latest implements Store.
func (g *GormStore) Latest(ctx context.Context) (*State, error) {
	var s State
	err := g.db.WithContext(ctx).Order("run_id DESC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return &s, nil
}

// LastRunID implements Store.
func (g *GormStore) LastRunID(ctx context.Context) (int64, error) {
	var id int64
	err := g.db.WithContext(ctx).
		Model(&State{}).
		Select("COALESCE(MAX(run_id), 0)").
		Scan(&id).Error
	if err != nil {
		return 0, fmt.Errorf("query last run id: %w", err)
	}
	return id, nil
}

// Save implements Store. The upsert is a single statement, so readers see
// either the previous or the new state, never a mix.
func (g *GormStore) Save(ctx context.Context, s *State) error {
	s.LastSavedAt = time.Now().UTC()
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}},
			UpdateAll: true,
		}).
		Create(s).Error
	if err != nil {
		return fmt.Errorf("save checkpoint for run %d: %w", s.RunID, err)
	}
	return nil
}
