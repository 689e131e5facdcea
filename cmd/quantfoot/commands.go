package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/quantfoot/pipeline/internal/domain/pipelinerun"
	"github.com/quantfoot/pipeline/internal/transform"
	"github.com/quantfoot/pipeline/internal/usecase"
)

func runCmd() *cobra.Command {
	var (
		resources []string
		models    []string
		skipMerge bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run extract/load, transform and merge",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, deps runtimeDeps) error {
				result, err := deps.pipeline.Run(ctx, usecase.PipelineInput{
					Trigger:   pipelinerun.TriggerCLI,
					Resources: resources,
					Models:    models,
					SkipMerge: skipMerge,
				})
				return printResult(cmd.OutOrStdout(), result, err)
			})
		},
	}
	cmd.Flags().StringSliceVar(&resources, "resource", nil, "Raw resources to extract (default all)")
	cmd.Flags().StringSliceVar(&models, "select", nil, "Transform selectors: name, +name, name+, staging or marts (default all)")
	cmd.Flags().BoolVar(&skipMerge, "skip-merge", false, "Skip the instrument merge")
	return cmd
}

func extractCmd() *cobra.Command {
	var resources []string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract resources from API-Football into the raw schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, deps runtimeDeps) error {
				result, err := deps.pipeline.Run(ctx, usecase.PipelineInput{
					Trigger:       pipelinerun.TriggerCLI,
					Resources:     resources,
					SkipTransform: true,
					SkipMerge:     true,
				})
				return printResult(cmd.OutOrStdout(), result, err)
			})
		},
	}
	cmd.Flags().StringSliceVar(&resources, "resource", nil, "Raw resources to extract (default all)")
	return cmd
}

func transformCmd() *cobra.Command {
	var models []string
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Build staging views and mart tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, deps runtimeDeps) error {
				result, err := deps.pipeline.Run(ctx, usecase.PipelineInput{
					Trigger:     pipelinerun.TriggerCLI,
					Models:      models,
					SkipExtract: true,
					SkipMerge:   true,
				})
				return printResult(cmd.OutOrStdout(), result, err)
			})
		},
	}
	cmd.Flags().StringSliceVar(&models, "select", nil, "Transform selectors (default all)")
	return cmd
}

func mergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge staged securities into the instrument reference tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, deps runtimeDeps) error {
				if !deps.cfg.MergeEnabled {
					return fmt.Errorf("merge is disabled: set MERGE_ENABLED=true")
				}
				result, err := deps.pipeline.Run(ctx, usecase.PipelineInput{
					Trigger:       pipelinerun.TriggerCLI,
					SkipExtract:   true,
					SkipTransform: true,
				})
				return printResult(cmd.OutOrStdout(), result, err)
			})
		},
	}
}

func modelsCmd() *cobra.Command {
	var selectors []string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List transform models in build order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := transform.DefaultProject()
			if err != nil {
				return err
			}
			infos, err := project.Describe(selectors)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), infos)
		},
	}
	cmd.Flags().StringSliceVar(&selectors, "select", nil, "Transform selectors (default all)")
	return cmd
}

func scheduleCmd() *cobra.Command {
	var spec string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full pipeline on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(func(ctx context.Context, deps runtimeDeps) error {
				if spec == "" {
					spec = deps.cfg.PipelineCron
				}

				c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
				_, err := c.AddFunc(spec, func() {
					result, err := deps.pipeline.Run(ctx, usecase.PipelineInput{Trigger: pipelinerun.TriggerSchedule})
					if err != nil {
						deps.logger.Error("scheduled pipeline run failed", "run_id", result.RunID, "error", err)
						return
					}
					deps.logger.Info("scheduled pipeline run finished", "run_id", result.RunID, "status", result.Status)
				})
				if err != nil {
					return fmt.Errorf("parse schedule %q: %w", spec, err)
				}

				c.Start()
				deps.logger.Info("pipeline scheduler started", "cron", spec)
				<-ctx.Done()

				stopped := c.Stop()
				select {
				case <-stopped.Done():
				case <-time.After(30 * time.Second):
					deps.logger.Warn("scheduler stop timed out waiting for a running pipeline")
				}
				deps.logger.Info("pipeline scheduler stopped")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "Cron expression (default PIPELINE_CRON)")
	return cmd
}
