package history

import "context"

// Repository defines persistence for finished runs.
type Repository interface {
	// FindByID retrieves a run by ID.
	// Returns nil if not found.
	FindByID(ctx context.Context, id string) (*Run, error)

	// FindRecent returns up to limit runs, newest first.
	FindRecent(ctx context.Context, limit int) ([]*Run, error)

	// Insert stores a new run.
	Insert(ctx context.Context, run *Run) error

	// Delete removes a run by ID.
	Delete(ctx context.Context, id string) error
}
