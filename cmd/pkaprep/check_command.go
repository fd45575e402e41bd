package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pkaprep/internal/pipeline"
	"pkaprep/internal/preflight"
)

var errChecksFailed = errors.New("preflight checks failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var stages []string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check directories, programs, and inputs needed by the planned stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return ctx.configErr
			}
			plan, err := pipeline.BuildPlan(cfg, stages)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			results := preflight.RunAll(cmd.Context(), cfg, plan)

			lines := renderSectionHeader("Configuration", colorize)
			configDetail := ctx.configPath
			if !ctx.configExists {
				configDetail += " (not found; defaults in use)"
			}
			lines = append(lines,
				renderStatusLine("Config", statusInfo, configDetail, colorize),
				renderStatusLine("Dataset version", statusInfo, plan.Version, colorize),
				renderStatusLine("Planned stages", statusInfo, strings.Join(plan.Stages(), ", "), colorize),
				"",
			)
			lines = append(lines, renderSectionHeader("Preflight", colorize)...)
			for _, result := range results {
				lines = append(lines, renderStatusLine(result.Name, preflightKind(result), result.Detail, colorize))
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			if preflight.Failed(results) {
				return errChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&stages, "stage", "s", nil, "Check only this stage (repeatable)")
	return cmd
}
