package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/quantfoot/pipeline/internal/domain/pipelinerun"
	idgen "github.com/quantfoot/pipeline/internal/platform/id"
	"github.com/quantfoot/pipeline/internal/platform/logging"
	"github.com/quantfoot/pipeline/internal/transform"
)

// UnitFactory builds the extraction units for the named resources; no names
// means every resource.
type UnitFactory func(resources []string) ([]ExtractUnit, error)

type TransformRunner interface {
	Run(ctx context.Context, selectors []string) (transform.RunResult, error)
}

type Merger interface {
	Merge(ctx context.Context) (MergeResult, error)
}

type PipelineConfig struct {
	MergeEnabled bool
}

type PipelineInput struct {
	Trigger       pipelinerun.Trigger
	Resources     []string
	Models        []string
	SkipExtract   bool
	SkipTransform bool
	SkipMerge     bool
}

type PipelineResult struct {
	RunID     string               `json:"run_id"`
	Status    pipelinerun.Status   `json:"status"`
	Load      *LoadResult          `json:"load,omitempty"`
	Transform *transform.RunResult `json:"transform,omitempty"`
	Merge     *MergeResult         `json:"merge,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type PipelineService struct {
	units       UnitFactory
	loader      *LoadService
	transformer TransformRunner
	merger      Merger
	runs        pipelinerun.Repository
	ids         idgen.Generator
	cfg         PipelineConfig
	logger      *logging.Logger
	now         func() time.Time

	afterTransform func(ctx context.Context) error
}

func NewPipelineService(
	units UnitFactory,
	loader *LoadService,
	transformer TransformRunner,
	merger Merger,
	runs pipelinerun.Repository,
	ids idgen.Generator,
	cfg PipelineConfig,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}

	return &PipelineService{
		units:       units,
		loader:      loader,
		transformer: transformer,
		merger:      merger,
		runs:        runs,
		ids:         ids,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// OnTransformSuccess registers a hook that runs after a transform stage in
// which every selected model built. Hook errors are logged and do not fail
// the run.
func (s *PipelineService) OnTransformSuccess(hook func(ctx context.Context) error) {
	s.afterTransform = hook
}

// Run executes extract/load, transform and merge in that order and records
// the outcome in the run table. A failing stage stops the stages after it.
// The run record is finished even when ctx is cancelled.
func (s *PipelineService) Run(ctx context.Context, input PipelineInput) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	if input.Trigger == "" {
		input.Trigger = pipelinerun.TriggerCLI
	}
	if input.SkipExtract && input.SkipTransform && (input.SkipMerge || !s.cfg.MergeEnabled) {
		return PipelineResult{}, fmt.Errorf("%w: every pipeline stage is skipped", ErrInvalidInput)
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return PipelineResult{}, fmt.Errorf("generate run id: %w", err)
	}
	run := pipelinerun.Run{
		RunID:      runID,
		Trigger:    input.Trigger,
		Status:     pipelinerun.StatusRunning,
		StartedAt:  s.now().UTC(),
		RowsLoaded: map[string]int{},
	}
	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			return PipelineResult{}, fmt.Errorf("create pipeline run: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "pipeline run started",
		"run_id", runID,
		"trigger", input.Trigger,
		"resources", strings.Join(input.Resources, ","),
		"models", strings.Join(input.Models, ","),
	)

	result := PipelineResult{RunID: runID}
	stageErr := s.runStages(ctx, input, &run, &result)

	run = run.Finish(s.now(), stageErr)
	result.Status = run.Status
	result.Error = run.Error

	if s.runs != nil {
		if err := s.runs.Update(context.WithoutCancel(ctx), run); err != nil {
			s.logger.ErrorContext(ctx, "record pipeline run outcome failed", "run_id", runID, "error", err)
			stageErr = errors.Join(stageErr, fmt.Errorf("update pipeline run: %w", err))
		}
	}

	if stageErr != nil {
		s.logger.ErrorContext(ctx, "pipeline run failed", "run_id", runID, "error", stageErr)
		return result, fmt.Errorf("pipeline run %s: %w", runID, stageErr)
	}

	s.logger.InfoContext(ctx, "pipeline run succeeded",
		"run_id", runID,
		"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	)
	return result, nil
}

func (s *PipelineService) runStages(ctx context.Context, input PipelineInput, run *pipelinerun.Run, result *PipelineResult) error {
	if !input.SkipExtract {
		load, err := s.extractAndLoad(ctx, input.Resources)
		if load != nil {
			result.Load = load
			run.RowsLoaded = load.RowsLoaded()
		}
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
	}

	if !input.SkipTransform {
		if s.transformer == nil {
			return fmt.Errorf("%w: transform runner is not configured", ErrDependencyUnavailable)
		}
		res, err := s.transformer.Run(ctx, input.Models)
		result.Transform = &res
		if err != nil {
			return fmt.Errorf("transform: %w", err)
		}
		if s.afterTransform != nil {
			if err := s.afterTransform(ctx); err != nil {
				s.logger.WarnContext(ctx, "post-transform hook failed", "run_id", run.RunID, "error", err)
			}
		}
	}

	if input.SkipMerge || !s.cfg.MergeEnabled {
		return nil
	}
	if s.merger == nil {
		return fmt.Errorf("%w: instrument merge is not configured", ErrDependencyUnavailable)
	}
	merged, err := s.merger.Merge(ctx)
	result.Merge = &merged
	if raw, encErr := sonic.Marshal(merged); encErr == nil {
		run.MergeResult = raw
	}
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

func (s *PipelineService) extractAndLoad(ctx context.Context, resources []string) (*LoadResult, error) {
	if s.units == nil || s.loader == nil {
		return nil, fmt.Errorf("%w: extraction is not configured", ErrDependencyUnavailable)
	}
	units, err := s.units(resources)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	load, err := s.loader.Load(ctx, units)
	return &load, err
}

func (s *PipelineService) GetRun(ctx context.Context, runID string) (pipelinerun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.GetRun")
	defer span.End()

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return pipelinerun.Run{}, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}
	if s.runs == nil {
		return pipelinerun.Run{}, fmt.Errorf("%w: run repository is not configured", ErrDependencyUnavailable)
	}

	run, ok, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return pipelinerun.Run{}, fmt.Errorf("get pipeline run: %w", err)
	}
	if !ok {
		return pipelinerun.Run{}, fmt.Errorf("%w: pipeline run=%s", ErrNotFound, runID)
	}
	return run, nil
}

func (s *PipelineService) ListRuns(ctx context.Context, limit int) ([]pipelinerun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.ListRuns")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if s.runs == nil {
		return nil, fmt.Errorf("%w: run repository is not configured", ErrDependencyUnavailable)
	}

	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	return runs, nil
}
