package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"pkaprep/internal/config"
	"pkaprep/internal/services"
)

// Invocation is one fully resolved program launch.
type Invocation struct {
	Stage      string   `json:"stage"`
	Binary     string   `json:"binary"`
	Args       []string `json:"args"`
	InputPath  string   `json:"input_path,omitempty"`
	OutputPath string   `json:"output_path"`
}

// Argv returns the binary followed by its arguments.
func (i Invocation) Argv() []string {
	argv := make([]string, 0, len(i.Args)+1)
	argv = append(argv, i.Binary)
	return append(argv, i.Args...)
}

// Plan is the ordered list of invocations for one run.
type Plan struct {
	Version     string       `json:"version"`
	DataPath    string       `json:"data_path"`
	Invocations []Invocation `json:"invocations"`
}

// Stages returns the names of the planned stages in order.
func (p Plan) Stages() []string {
	names := make([]string, len(p.Invocations))
	for i, inv := range p.Invocations {
		names[i] = inv.Stage
	}
	return names
}

// Render builds the invocation for the stage against a data directory and
// version: program[1:] followed by --input (when the stage has one) and
// --output.
func (s Stage) Render(dataPath, version string) Invocation {
	inv := Invocation{
		Stage:      s.Name,
		OutputPath: Join(dataPath, RenderName(s.Output, version)),
	}
	if len(s.Program) > 0 {
		inv.Binary = s.Program[0]
		inv.Args = append(inv.Args, s.Program[1:]...)
	}
	if s.HasInput() {
		inv.InputPath = Join(dataPath, RenderName(s.Input, version))
		inv.Args = append(inv.Args, "--input", inv.InputPath)
	}
	inv.Args = append(inv.Args, "--output", inv.OutputPath)
	return inv
}

// Resolve applies the configured overrides to the catalogue. It fails when the
// configuration names a stage the catalogue does not know.
func Resolve(cfg *config.Config) ([]Stage, error) {
	stages := Catalogue()
	known := Names()
	for _, name := range cfg.StageNames() {
		if !slices.Contains(known, name) {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "resolve stages",
				fmt.Sprintf("unknown stage %q in [stages] (known: %s)", name, strings.Join(known, ", ")), nil)
		}
	}
	for i := range stages {
		stage := &stages[i]
		stage.Program = []string{cfg.Python.Interpreter, cfg.Paths.ScriptsDir + "/" + stage.Script}
		override, ok := cfg.Override(stage.Name)
		if !ok {
			continue
		}
		if override.Enabled != nil {
			stage.Enabled = *override.Enabled
		}
		if len(override.Program) > 0 {
			stage.Program = append([]string(nil), override.Program...)
		}
		if override.Input != "" {
			stage.Input = override.Input
		}
		if override.Output != "" {
			stage.Output = override.Output
		}
	}
	return stages, nil
}

// BuildPlan returns the invocations to run. With no names it selects the
// enabled stages; otherwise exactly the named stages, in catalogue order
// regardless of how they were listed.
func BuildPlan(cfg *config.Config, only []string) (Plan, error) {
	if cfg == nil {
		return Plan{}, services.Wrap(services.ErrConfiguration, "pipeline", "build plan", "configuration unavailable", nil)
	}
	stages, err := Resolve(cfg)
	if err != nil {
		return Plan{}, err
	}

	selected := make(map[string]bool, len(only))
	for _, raw := range only {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, ok := Lookup(name); !ok {
			return Plan{}, services.Wrap(services.ErrConfiguration, "pipeline", "build plan",
				fmt.Sprintf("unknown stage %q (known: %s)", raw, strings.Join(Names(), ", ")), nil)
		}
		selected[name] = true
	}

	plan := Plan{Version: cfg.Dataset.Version, DataPath: cfg.Dataset.DataPath}
	for _, stage := range stages {
		include := stage.Enabled
		if len(selected) > 0 {
			include = selected[stage.Name]
		}
		if !include {
			continue
		}
		plan.Invocations = append(plan.Invocations, stage.Render(cfg.Dataset.DataPath, cfg.Dataset.Version))
	}
	if len(plan.Invocations) == 0 {
		return Plan{}, services.Wrap(services.ErrConfiguration, "pipeline", "build plan",
			"no stages selected; enable one under [stages.<name>] or pass --stage", nil)
	}
	return plan, nil
}
