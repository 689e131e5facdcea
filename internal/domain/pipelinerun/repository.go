package pipelinerun

import "context"

// Repository persists pipeline run records.
type Repository interface {
	Create(ctx context.Context, run Run) error
	Update(ctx context.Context, run Run) error
	GetByID(ctx context.Context, runID string) (Run, bool, error)
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}
