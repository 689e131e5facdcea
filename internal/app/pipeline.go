package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/quantfoot/pipeline/external/apifootball"
	"github.com/quantfoot/pipeline/internal/config"
	"github.com/quantfoot/pipeline/internal/extract"
	"github.com/quantfoot/pipeline/internal/infrastructure/repository/postgres"
	idgen "github.com/quantfoot/pipeline/internal/platform/id"
	"github.com/quantfoot/pipeline/internal/platform/logging"
	"github.com/quantfoot/pipeline/internal/platform/resilience"
	"github.com/quantfoot/pipeline/internal/transform"
	"github.com/quantfoot/pipeline/internal/usecase"
)

// NewAPIFootballClient builds the source client from config.
func NewAPIFootballClient(cfg config.Config, logger *logging.Logger) *apifootball.Client {
	return apifootball.NewClient(apifootball.ClientConfig{
		BaseURL:    cfg.APIFootballBaseURL,
		Host:       cfg.APIFootballHost,
		Key:        cfg.APIFootballKey,
		Timeout:    cfg.APIFootballTimeout,
		MaxRetries: cfg.APIFootballMaxRetries,
		RetryDelay: cfg.APIFootballRetryDelay,
		Logger:     logger.Named("apifootball"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APIFootballCircuitEnabled,
			FailureThreshold: cfg.APIFootballCircuitFailures,
			OpenTimeout:      cfg.APIFootballCircuitOpenTime,
			HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenRq,
		},
	})
}

// NewUnitFactory resolves resource names into extraction units.
func NewUnitFactory(client extract.Getter, cfg config.Config) usecase.UnitFactory {
	opts := extract.Options{Season: cfg.Season, TeamIDs: cfg.TeamIDs}
	return func(resources []string) ([]usecase.ExtractUnit, error) {
		all, err := extract.Units(client, opts)
		if err != nil {
			return nil, err
		}
		selected, err := extract.Select(all, resources)
		if err != nil {
			return nil, err
		}
		out := make([]usecase.ExtractUnit, 0, len(selected))
		for _, u := range selected {
			out = append(out, u)
		}
		return out, nil
	}
}

// NewPipelineService wires extract, load, transform and merge against db.
func NewPipelineService(cfg config.Config, db *sqlx.DB, logger *logging.Logger) (*usecase.PipelineService, error) {
	if cfg.APIFootballKey == "" {
		logger.Warn("API_FOOTBALL_KEY is empty; extraction requests will be rejected upstream")
	}

	project, err := transform.DefaultProject()
	if err != nil {
		return nil, fmt.Errorf("load transform project: %w", err)
	}

	ids := idgen.NewUUIDGenerator()
	units := NewUnitFactory(NewAPIFootballClient(cfg, logger), cfg)
	loader := usecase.NewLoadService(postgres.NewRawDataRepository(db, cfg.PipelineBatchSize), ids, cfg.PipelineWorkers, logger.Named("load"))
	runner := transform.NewRunner(project, postgres.NewTransformExecutor(db), cfg.PipelineWorkers, logger.Named("transform"))
	merger := usecase.NewInstrumentMergeService(postgres.NewRefDataStore(db), usecase.InstrumentMergeConfig{
		InstrumentType: cfg.MergeInstrumentType,
		StrictSources:  cfg.MergeStrictSources,
	}, logger.Named("merge"))

	return usecase.NewPipelineService(
		units,
		loader,
		runner,
		merger,
		postgres.NewPipelineRunRepository(db),
		ids,
		usecase.PipelineConfig{MergeEnabled: cfg.MergeEnabled},
		logger.Named("pipeline"),
	), nil
}
