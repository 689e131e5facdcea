package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quantfoot/pipeline/internal/domain/pipelinerun"
	qb "github.com/quantfoot/pipeline/internal/platform/querybuilder"
)

type PipelineRunRepository struct {
	db *sqlx.DB
}

func NewPipelineRunRepository(db *sqlx.DB) *PipelineRunRepository {
	return &PipelineRunRepository{db: db}
}

func (r *PipelineRunRepository) Create(ctx context.Context, run pipelinerun.Run) error {
	model, err := newPipelineRunModel(run)
	if err != nil {
		return err
	}

	builder, err := qb.InsertModels(pipelineRunsTable, []pipelineRunModel{model})
	if err != nil {
		return fmt.Errorf("build insert pipeline run query: %w", err)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert pipeline run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert pipeline run run_id=%s: %w", run.RunID, classifyError(err))
	}
	return nil
}

func (r *PipelineRunRepository) Update(ctx context.Context, run pipelinerun.Run) error {
	model, err := newPipelineRunModel(run)
	if err != nil {
		return err
	}

	query, args, err := qb.Update(pipelineRunsTable).
		Set("status", model.Status).
		Set("finished_at", model.FinishedAt).
		Set("rows_loaded", model.RowsLoaded).
		Set("merge_result", model.MergeResult).
		Set("error", model.Error).
		Where(qb.Eq("run_id", model.RunID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update pipeline run query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update pipeline run run_id=%s: %w", run.RunID, classifyError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update pipeline run run_id=%s: no such run", run.RunID)
	}
	return nil
}

func (r *PipelineRunRepository) GetByID(ctx context.Context, runID string) (pipelinerun.Run, bool, error) {
	query, args, err := qb.Select(pipelineRunColumns...).
		From(pipelineRunsTable).
		Where(qb.Eq("run_id", runID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return pipelinerun.Run{}, false, fmt.Errorf("build select pipeline run query: %w", err)
	}

	var row pipelineRunModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pipelinerun.Run{}, false, nil
		}
		return pipelinerun.Run{}, false, fmt.Errorf("select pipeline run run_id=%s: %w", runID, err)
	}

	run, err := row.toDomain()
	if err != nil {
		return pipelinerun.Run{}, false, err
	}
	return run, true, nil
}

func (r *PipelineRunRepository) ListRecent(ctx context.Context, limit int) ([]pipelinerun.Run, error) {
	query, args, err := qb.Select(pipelineRunColumns...).
		From(pipelineRunsTable).
		OrderBy("started_at DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pipeline runs query: %w", err)
	}

	var rows []pipelineRunModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}

	out := make([]pipelinerun.Run, 0, len(rows))
	for _, row := range rows {
		run, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}
