package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pkaprep/internal/launcher"
	"pkaprep/internal/pipeline"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var stages []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the stages and the commands a run would execute",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return ctx.configErr
			}
			resolved, err := pipeline.Resolve(cfg)
			if err != nil {
				return err
			}
			plan, err := pipeline.BuildPlan(cfg, stages)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, plan)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dataset version: %s\n", plan.Version)
			fmt.Fprintf(out, "Data path:       %s\n", plan.DataPath)
			fmt.Fprintln(out, renderPlanTable(resolved, plan))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&stages, "stage", "s", nil, "Plan only this stage (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the planned invocations as JSON")
	return cmd
}

func renderPlanTable(stages []pipeline.Stage, plan pipeline.Plan) string {
	planned := plan.Stages()
	commands := make(map[string]string, len(plan.Invocations))
	for _, inv := range plan.Invocations {
		commands[inv.Stage] = launcher.ShellJoin(inv.Argv())
	}

	rows := make([][]string, 0, len(stages))
	for i, stage := range stages {
		input := "-"
		if stage.HasInput() {
			input = pipeline.RenderName(stage.Input, plan.Version)
		}
		command := commands[stage.Name]
		if command == "" {
			command = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			stageTitle(stage.Name),
			yesNo(stage.Enabled),
			yesNo(slices.Contains(planned, stage.Name)),
			input,
			pipeline.RenderName(stage.Output, plan.Version),
			command,
		})
	}
	headers := []string{"#", "Stage", "Enabled", "Planned", "Input", "Output", "Command"}
	return renderTable(headers, rows, []columnAlignment{alignRight})
}

// stageTitle turns "convert-sdf-to-mae" into "Convert Sdf To Mae".
func stageTitle(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}
