package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/quantfoot/pipeline/internal/domain/pipelinerun"
)

const pipelineRunsTable = "raw.pipeline_runs"

var pipelineRunColumns = []string{
	"run_id", "trigger", "status", "started_at", "finished_at", "rows_loaded", "merge_result", "error",
}

type pipelineRunModel struct {
	RunID       string         `db:"run_id"`
	Trigger     string         `db:"trigger"`
	Status      string         `db:"status"`
	StartedAt   time.Time      `db:"started_at"`
	FinishedAt  *time.Time     `db:"finished_at"`
	RowsLoaded  string         `db:"rows_loaded"`
	MergeResult sql.NullString `db:"merge_result"`
	Error       sql.NullString `db:"error"`
}

func newPipelineRunModel(run pipelinerun.Run) (pipelineRunModel, error) {
	rows := "{}"
	if len(run.RowsLoaded) > 0 {
		raw, err := sonic.Marshal(run.RowsLoaded)
		if err != nil {
			return pipelineRunModel{}, fmt.Errorf("marshal rows_loaded: %w", err)
		}
		rows = string(raw)
	}

	return pipelineRunModel{
		RunID:       run.RunID,
		Trigger:     string(run.Trigger),
		Status:      string(run.Status),
		StartedAt:   run.StartedAt.UTC(),
		FinishedAt:  run.FinishedAt,
		RowsLoaded:  rows,
		MergeResult: sql.NullString{String: string(run.MergeResult), Valid: len(run.MergeResult) > 0},
		Error:       sql.NullString{String: run.Error, Valid: run.Error != ""},
	}, nil
}

func (m pipelineRunModel) toDomain() (pipelinerun.Run, error) {
	run := pipelinerun.Run{
		RunID:      m.RunID,
		Trigger:    pipelinerun.Trigger(m.Trigger),
		Status:     pipelinerun.Status(m.Status),
		StartedAt:  m.StartedAt.UTC(),
		FinishedAt: m.FinishedAt,
		Error:      nullStringValue(m.Error),
	}
	if m.MergeResult.Valid {
		run.MergeResult = []byte(m.MergeResult.String)
	}
	if m.RowsLoaded != "" {
		if err := sonic.UnmarshalString(m.RowsLoaded, &run.RowsLoaded); err != nil {
			return pipelinerun.Run{}, fmt.Errorf("decode rows_loaded run_id=%s: %w", m.RunID, err)
		}
	}
	return run, nil
}
