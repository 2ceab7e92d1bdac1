package repository

import (
	"context"
	"sort"
	"sync"

	"dotmini-mcx/domain/history"
)

// MemoryRunRepository keeps runs in process memory.
// It is used when MongoDB is disabled or unreachable.
type MemoryRunRepository struct {
	runs map[string]*history.Run
	mu   sync.RWMutex
}

// NewMemoryRunRepository creates an empty in-memory repository.
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{runs: make(map[string]*history.Run)}
}

func (r *MemoryRunRepository) FindByID(ctx context.Context, id string) (*history.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	return run.Clone(), nil
}

func (r *MemoryRunRepository) FindRecent(ctx context.Context, limit int) ([]*history.Run, error) {
	r.mu.RLock()
	runs := make([]*history.Run, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (r *MemoryRunRepository) Insert(ctx context.Context, run *history.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run.Clone()
	return nil
}

func (r *MemoryRunRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return history.ErrRunNotFound
	}
	delete(r.runs, id)
	return nil
}

var _ history.Repository = (*MemoryRunRepository)(nil)
