package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"pkaprep/internal/config"
	"pkaprep/internal/history"
	"pkaprep/internal/launcher"
	"pkaprep/internal/logging"
	"pkaprep/internal/pipeline"
	"pkaprep/internal/preflight"
	"pkaprep/internal/runlock"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var stages []string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the enabled pipeline stages",
		Long: `Run the enabled pipeline stages one after another.

Each stage program is started with --input and --output paths derived from
dataset.data_path and dataset.version. The run stops at the first stage that
fails and pkaprep exits with that stage's exit status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return ctx.configErr
			}
			plan, err := pipeline.BuildPlan(cfg, stages)
			if err != nil {
				return err
			}
			if dryRun {
				return launcher.DryRun(cmd.OutOrStdout(), plan)
			}

			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return executePlan(cmd, cfg, plan, logger)
		},
	}

	cmd.Flags().StringArrayVarP(&stages, "stage", "s", nil, "Run only this stage (repeatable); stages still run in pipeline order")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands without running them")
	return cmd
}

func executePlan(cmd *cobra.Command, cfg *config.Config, plan pipeline.Plan, logger *slog.Logger) error {
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	reportPreflight(runCtx, logger, cfg, plan)

	if cfg.Workflow.SingleInstance {
		lock, err := runlock.Acquire(cfg.LockPath())
		if err != nil {
			if errors.Is(err, runlock.ErrLocked) {
				logging.ErrorWithContext(logger, "run lock held", "run_locked",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "wait for the other run or set workflow.single_instance = false"),
				)
			}
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("release run lock failed", logging.Error(err))
			}
		}()
	}

	opts := []launcher.Option{
		launcher.WithLogger(logger),
		launcher.WithStageTimeout(time.Duration(cfg.Workflow.StageTimeoutSeconds) * time.Second),
		launcher.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}
	if store := openHistory(runCtx, cfg, logger); store != nil {
		defer store.Close()
		opts = append(opts, launcher.WithRecorder(store))
	}

	result, err := launcher.New(opts...).Run(runCtx, plan)
	if err != nil {
		return err
	}
	logger.Debug("run summary",
		logging.String(logging.FieldRunID, result.RunID),
		logging.Int("stage_count", len(result.Steps)),
	)
	return nil
}

// reportPreflight logs failed checks. Failures never stop the run: the stage
// program reports the problem itself and its exit status is what pkaprep
// returns.
func reportPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config, plan pipeline.Plan) {
	for _, result := range preflight.RunAll(ctx, cfg, plan) {
		if result.Passed || result.Optional {
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "the stage will likely fail"),
			logging.String(logging.FieldErrorHint, "run pkaprep check for the full report"),
		)
	}
}

// openHistory opens the ledger. Under the run lock it also closes out
// invocations a crashed run left behind. The ledger is advisory, so failures
// only warn.
func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable; run will not be recorded", "history_open_failed",
			logging.Error(err),
			logging.String("path", cfg.HistoryPath()),
		)
		return nil
	}
	if !cfg.Workflow.SingleInstance {
		return store
	}
	if n, err := store.MarkAbandoned(ctx); err != nil {
		logger.Warn("mark abandoned invocations failed", logging.Error(err))
	} else if n > 0 {
		logger.Info(fmt.Sprintf("marked %d abandoned invocation(s) as interrupted", n),
			logging.Int64("count", n),
		)
	}
	return store
}
