package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/quantfoot/pipeline/internal/platform/logging"
)

// Executor runs the statements that materialize one model atomically.
type Executor interface {
	Exec(ctx context.Context, statements []string) error
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

type ModelResult struct {
	Name            string          `json:"name"`
	Relation        string          `json:"relation"`
	Materialization Materialization `json:"materialization"`
	Level           int             `json:"level"`
	Status          string          `json:"status"`
	DurationMs      int64           `json:"duration_ms"`
	Error           string          `json:"error,omitempty"`
}

type RunResult struct {
	Levels  int           `json:"levels"`
	Models  []ModelResult `json:"models"`
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Skipped int           `json:"skipped"`
}

type Runner struct {
	project *Project
	exec    Executor
	workers int
	logger  *logging.Logger
}

func NewRunner(project *Project, exec Executor, workers int, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		project: project,
		exec:    exec,
		workers: workers,
		logger:  logger,
	}
}

// Run builds the selected models level by level. Models within a level run
// concurrently; a model whose upstream failed or was skipped is skipped.
func (r *Runner) Run(ctx context.Context, selectors []string) (RunResult, error) {
	names, err := r.project.Select(selectors)
	if err != nil {
		return RunResult{}, err
	}
	levels, err := r.project.Levels(names)
	if err != nil {
		return RunResult{}, err
	}

	pool, err := ants.NewPool(r.workers)
	if err != nil {
		return RunResult{}, fmt.Errorf("create transform worker pool: %w", err)
	}
	defer pool.Release()

	result := RunResult{Levels: len(levels)}
	broken := make(map[string]struct{})
	var errs []error

	for depth, level := range levels {
		rows := make([]ModelResult, len(level))
		var wg sync.WaitGroup

		for i, model := range level {
			rows[i] = ModelResult{
				Name:            model.Name,
				Relation:        model.Relation(),
				Materialization: model.Materialization,
				Level:           depth,
			}
			if upstream := brokenUpstream(model, broken); upstream != "" {
				rows[i].Status = StatusSkipped
				rows[i].Error = fmt.Sprintf("upstream model %s did not build", upstream)
				continue
			}
			if err := ctx.Err(); err != nil {
				rows[i].Status = StatusSkipped
				rows[i].Error = err.Error()
				continue
			}

			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				rows[i] = r.runModel(ctx, model, rows[i])
			}); err != nil {
				wg.Done()
				rows[i].Status = StatusFailed
				rows[i].Error = fmt.Sprintf("submit model to worker pool: %v", err)
			}
		}
		wg.Wait()

		for _, row := range rows {
			switch row.Status {
			case StatusSuccess:
				result.Success++
			case StatusFailed:
				result.Failed++
				broken[row.Name] = struct{}{}
				errs = append(errs, fmt.Errorf("model %s: %s", row.Name, row.Error))
			default:
				result.Skipped++
				broken[row.Name] = struct{}{}
			}
			result.Models = append(result.Models, row)
		}
	}

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		r.logger.WarnContext(ctx, "transform finished with failures",
			"success", result.Success,
			"failed", result.Failed,
			"skipped", result.Skipped,
		)
		return result, fmt.Errorf("transform failed: %w", errors.Join(errs...))
	}

	r.logger.InfoContext(ctx, "transform finished", "models", result.Success, "levels", result.Levels)
	return result, nil
}

func (r *Runner) runModel(ctx context.Context, model *Model, row ModelResult) ModelResult {
	started := time.Now()
	err := r.exec.Exec(ctx, model.Statements())
	row.DurationMs = time.Since(started).Milliseconds()
	if err != nil {
		row.Status = StatusFailed
		row.Error = err.Error()
		r.logger.ErrorContext(ctx, "model build failed", "model", model.Name, "error", err)
		return row
	}

	row.Status = StatusSuccess
	r.logger.InfoContext(ctx, "model built",
		"model", model.Name,
		"relation", model.Relation(),
		"materialization", model.Materialization,
		"duration_ms", row.DurationMs,
	)
	return row
}

func brokenUpstream(model *Model, broken map[string]struct{}) string {
	for _, dep := range model.Deps {
		if _, ok := broken[dep]; ok {
			return dep
		}
	}
	return ""
}
