package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/quantfoot/pipeline/internal/domain/pipelinerun"
)

type PipelineRunRepository struct {
	mu   sync.RWMutex
	runs map[string]pipelinerun.Run
}

func NewPipelineRunRepository() *PipelineRunRepository {
	return &PipelineRunRepository{runs: make(map[string]pipelinerun.Run)}
}

func (r *PipelineRunRepository) Create(_ context.Context, run pipelinerun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.RunID]; exists {
		return fmt.Errorf("pipeline run %s already exists", run.RunID)
	}
	r.runs[run.RunID] = cloneRun(run)
	return nil
}

func (r *PipelineRunRepository) Update(_ context.Context, run pipelinerun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.RunID]; !exists {
		return fmt.Errorf("update pipeline run run_id=%s: no such run", run.RunID)
	}
	r.runs[run.RunID] = cloneRun(run)
	return nil
}

func (r *PipelineRunRepository) GetByID(_ context.Context, runID string) (pipelinerun.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[runID]
	if !ok {
		return pipelinerun.Run{}, false, nil
	}
	return cloneRun(run), true, nil
}

func (r *PipelineRunRepository) ListRecent(_ context.Context, limit int) ([]pipelinerun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pipelinerun.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, cloneRun(run))
	}
	slices.SortFunc(out, func(a, b pipelinerun.Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(b.RunID, a.RunID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneRun(run pipelinerun.Run) pipelinerun.Run {
	run.RowsLoaded = maps.Clone(run.RowsLoaded)
	run.MergeResult = slices.Clone(run.MergeResult)
	if run.FinishedAt != nil {
		at := *run.FinishedAt
		run.FinishedAt = &at
	}
	return run
}
