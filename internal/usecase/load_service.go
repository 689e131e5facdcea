package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/quantfoot/pipeline/internal/domain/rawdata"
	idgen "github.com/quantfoot/pipeline/internal/platform/id"
	"github.com/quantfoot/pipeline/internal/platform/logging"
)

// ExtractUnit produces the records of one raw resource.
type ExtractUnit interface {
	Resource() rawdata.Resource
	Extract(ctx context.Context) iter.Seq2[rawdata.Record, error]
}

type ResourceLoad struct {
	Resource   string            `json:"resource"`
	Stats      rawdata.LoadStats `json:"stats"`
	DurationMs int64             `json:"duration_ms"`
	Error      string            `json:"error,omitempty"`
}

type LoadResult struct {
	LoadID    string         `json:"load_id"`
	Resources []ResourceLoad `json:"resources"`
	Failed    int            `json:"failed"`
}

// RowsLoaded maps each successfully loaded resource to the rows it received.
func (r LoadResult) RowsLoaded() map[string]int {
	out := make(map[string]int, len(r.Resources))
	for _, res := range r.Resources {
		if res.Error != "" {
			continue
		}
		out[res.Resource] = res.Stats.Received
	}
	return out
}

type LoadService struct {
	repo    rawdata.Repository
	ids     idgen.Generator
	workers int
	logger  *logging.Logger
}

func NewLoadService(repo rawdata.Repository, ids idgen.Generator, workers int, logger *logging.Logger) *LoadService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	if workers < 1 {
		workers = 1
	}

	return &LoadService{
		repo:    repo,
		ids:     ids,
		workers: workers,
		logger:  logger,
	}
}

// Load runs every unit on a bounded pool and writes its records into the
// unit's raw table. Units are independent: one failing unit does not stop
// the others, but the returned error reports every failure.
func (s *LoadService) Load(ctx context.Context, units []ExtractUnit) (LoadResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoadService.Load")
	defer span.End()

	if len(units) == 0 {
		return LoadResult{}, fmt.Errorf("%w: no extraction units selected", ErrInvalidInput)
	}

	loadID, err := s.ids.NewID()
	if err != nil {
		return LoadResult{}, fmt.Errorf("generate load id: %w", err)
	}

	results := make([]ResourceLoad, len(units))
	errs := make([]error, len(units))

	p := pool.New().WithMaxGoroutines(min(s.workers, len(units)))
	for i, unit := range units {
		p.Go(func() {
			results[i], errs[i] = s.loadUnit(ctx, unit, loadID)
		})
	}
	p.Wait()

	out := LoadResult{LoadID: loadID, Resources: results}
	for _, err := range errs {
		if err != nil {
			out.Failed++
		}
	}

	if out.Failed > 0 {
		s.logger.WarnContext(ctx, "raw load finished with failures",
			"load_id", loadID,
			"failed", out.Failed,
			"total", len(units),
		)
		return out, fmt.Errorf("%d of %d resources failed: %w", out.Failed, len(units), errors.Join(errs...))
	}

	s.logger.InfoContext(ctx, "raw load finished", "load_id", loadID, "resources", len(units))
	return out, nil
}

func (s *LoadService) loadUnit(ctx context.Context, unit ExtractUnit, loadID string) (ResourceLoad, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoadService.loadUnit")
	defer span.End()

	resource := unit.Resource()
	started := time.Now()
	stats, err := s.repo.Load(ctx, resource, loadID, unit.Extract(ctx))
	row := ResourceLoad{
		Resource:   resource.Name,
		Stats:      stats,
		DurationMs: time.Since(started).Milliseconds(),
	}
	if err != nil {
		row.Error = err.Error()
		s.logger.ErrorContext(ctx, "load resource failed",
			"resource", resource.Name,
			"load_id", loadID,
			"error", err,
		)
		return row, fmt.Errorf("load %s: %w", resource.Name, err)
	}

	s.logger.InfoContext(ctx, "resource loaded",
		"resource", resource.Name,
		"disposition", resource.Disposition,
		"received", stats.Received,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
		"deleted", stats.Deleted,
		"duration_ms", row.DurationMs,
	)
	return row, nil
}
