package preflight

import (
	"context"

	"pkaprep/internal/config"
	"pkaprep/internal/pipeline"
)

// Result reports the outcome of a single preflight check. Optional checks are
// informational and never make Failed report true.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every check that applies to the plan.
func RunAll(ctx context.Context, cfg *config.Config, plan pipeline.Plan) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Dataset.DataPath, true))
	results = append(results, CheckStateDirectory(cfg.Paths.StateDir))

	if len(plan.Invocations) > 0 {
		first := plan.Invocations[0]
		if first.InputPath != "" {
			results = append(results, CheckFile("Input for "+first.Stage, first.InputPath))
		}
	}

	results = append(results, CheckStageBinaries(plan)...)
	results = append(results, CheckStageScripts(plan)...)

	if cfg.Workflow.SingleInstance {
		results = append(results, CheckRunLock(cfg.LockPath()))
	}
	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg.HistoryPath()))
	}

	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
