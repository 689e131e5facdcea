// Command quantfoot runs the football data pipeline.
//
// Usage:
//
//	quantfoot run
//	quantfoot extract --resource raw_fixtures --resource raw_players
//	quantfoot transform --select marts
//	quantfoot merge
//	quantfoot models --select +fixtures
//	quantfoot schedule
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quantfoot/pipeline/internal/app"
	"github.com/quantfoot/pipeline/internal/config"
	"github.com/quantfoot/pipeline/internal/observability"
	"github.com/quantfoot/pipeline/internal/platform/logging"
	"github.com/quantfoot/pipeline/internal/usecase"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quantfoot",
		Short:        "Extract, load, transform and merge API-Football data",
		SilenceUsage: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(transformCmd())
	root.AddCommand(mergeCmd())
	root.AddCommand(modelsCmd())
	root.AddCommand(scheduleCmd())
	return root
}

type runtimeDeps struct {
	cfg      config.Config
	logger   *logging.Logger
	pipeline *usecase.PipelineService
}

// withPipeline loads config, starts tracing and opens the database before
// handing a ready pipeline to fn. ctx is cancelled on SIGINT or SIGTERM.
func withPipeline(fn func(ctx context.Context, deps runtimeDeps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr).Named("quantfoot")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	db, err := app.OpenDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	pipeline, err := app.NewPipelineService(cfg, db, logger)
	if err != nil {
		return err
	}

	// The read API shares the cache only through redis.
	if cfg.RedisURL != "" {
		loader, closeCache, err := app.NewCacheLoader(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = closeCache() }()
		if loader != nil {
			pipeline.OnTransformSuccess(loader.Invalidate)
		}
	}

	return fn(ctx, runtimeDeps{cfg: cfg, logger: logger, pipeline: pipeline})
}

func printJSON(out io.Writer, v any) error {
	enc := sonic.ConfigStd.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes the run result even when the run failed so the
// recorded run id reaches the operator.
func printResult(out io.Writer, result usecase.PipelineResult, runErr error) error {
	if result.RunID != "" {
		if err := printJSON(out, result); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}
