package history

import (
	"context"
	"errors"
	"sort"
)

// DefaultListLimit bounds ListRecent when no positive limit is given.
const DefaultListLimit = 50

// Common errors for history operations.
var (
	ErrRunNotFound = errors.New("run not found")
	ErrMissingID   = errors.New("run has no ID")
)

// Service provides access to run history.
type Service struct {
	repo Repository
}

// NewService creates a new history service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores a finished run.
func (s *Service) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return ErrMissingID
	}
	return s.repo.Insert(ctx, run)
}

// Get retrieves a run by ID.
func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// ListRecent returns the newest runs first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	runs, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Delete removes a run.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
