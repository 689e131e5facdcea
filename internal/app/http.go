package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quantfoot/pipeline/internal/config"
	"github.com/quantfoot/pipeline/internal/domain/fixture"
	"github.com/quantfoot/pipeline/internal/domain/player"
	"github.com/quantfoot/pipeline/internal/domain/team"
	"github.com/quantfoot/pipeline/internal/infrastructure/repository/memory"
	"github.com/quantfoot/pipeline/internal/infrastructure/repository/postgres"
	"github.com/quantfoot/pipeline/internal/interfaces/httpapi"
	"github.com/quantfoot/pipeline/internal/platform/logging"
	"github.com/quantfoot/pipeline/internal/usecase"
)

// NewHTTPServer builds the read API. Without DB_URL it serves seed data and
// the pipeline routes answer 503. The returned cleanup releases the pool
// and the cache client.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	loader, closeCache, err := NewCacheLoader(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := []func() error{closeCache}
	closeAll := func() error {
		var errs []error
		for i := len(cleanup) - 1; i >= 0; i-- {
			errs = append(errs, cleanup[i]())
		}
		return errors.Join(errs...)
	}

	var (
		fixtureRepo fixture.Repository
		teamRepo    team.Repository
		playerRepo  player.Repository
		pipeline    *usecase.PipelineService
	)
	if cfg.DBURL == "" {
		logger.Warn("DB_URL is empty; serving seed data")
		fixtureRepo = memory.NewFixtureRepository(memory.SeedFixtures(time.Now()))
		teamRepo = memory.NewTeamRepository(memory.SeedTeams())
		playerRepo = memory.NewPlayerRepository(memory.SeedPlayers())
	} else {
		db, err := OpenDB(ctx, cfg, logger)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		cleanup = append(cleanup, db.Close)

		fixtureRepo = postgres.NewFixtureRepository(db)
		teamRepo = postgres.NewTeamRepository(db)
		playerRepo = postgres.NewPlayerRepository(db)
		pipeline, err = NewPipelineService(cfg, db, logger)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		if loader != nil {
			pipeline.OnTransformSuccess(loader.Invalidate)
		}
	}

	handler := httpapi.NewHandler(
		usecase.NewFixtureService(fixtureRepo, loader),
		usecase.NewTeamService(teamRepo, playerRepo, loader),
		usecase.NewPlayerService(playerRepo, loader),
		pipeline,
		logger.Named("httpapi"),
	)
	router := httpapi.NewRouter(handler, logger.Named("http"), cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return server, closeAll, nil
}
