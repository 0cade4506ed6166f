package stocktake

import (
	"context"
	"sync"

	"stac-stocktake/core/checkpoint"
	"stac-stocktake/core/scheduler"
)

// captureSink records announced creates.
type captureSink struct {
	mu      sync.Mutex
	created []string
	err     error
}

func (s *captureSink) AnnounceCreate(_ context.Context, key string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, key)
	return nil
}

// memStore is an in-memory checkpoint.Store mirroring the persistence
// contract: Load surfaces the latest run only while it is resumable.
type memStore struct {
	states []checkpoint.State
}

func (m *memStore) Latest(_ context.Context) (*checkpoint.State, error) {
	var latest *checkpoint.State
	for i := range m.states {
		if latest == nil || m.states[i].RunID > latest.RunID {
			latest = &m.states[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *memStore) Load(ctx context.Context) (*checkpoint.State, error) {
	latest, err := m.Latest(ctx)
	if err != nil || latest == nil || !latest.Resumable() {
		return nil, err
	}
	return latest, nil
}

func (m *memStore) LastRunID(ctx context.Context) (int64, error) {
	latest, err := m.Latest(ctx)
	if err != nil || latest == nil {
		return 0, err
	}
	return latest.RunID, nil
}

func (m *memStore) Save(_ context.Context, s *checkpoint.State) error {
	for i := range m.states {
		if m.states[i].RunID == s.RunID {
			m.states[i] = *s
			return nil
		}
	}
	m.states = append(m.states, *s)
	return nil
}

// captureSubmitter records submitted jobs.
type captureSubmitter struct {
	jobs []scheduler.Job
	err  error
}

func (s *captureSubmitter) Submit(_ context.Context, job scheduler.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}
