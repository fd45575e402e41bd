package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"pkaprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The data directory exists; the state directory is left for the code under
// test to create.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Dataset.DataPath = filepath.Join(base, "data")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.ScriptsDir = filepath.Join(base, "scripts")
	cfgVal.Logging.Level = "debug"

	if err := os.MkdirAll(cfgVal.Dataset.DataPath, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithVersion overrides the dataset version on the test config.
func WithVersion(version string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.Version = version
	}
}

// WithStages enables exactly the named stages.
func WithStages(enabled ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SetStageEnabled("preprocess", false)
		for _, name := range enabled {
			b.cfg.SetStageEnabled(name, true)
		}
	}
}

// WithProgram replaces the program of a stage.
func WithProgram(stage string, program ...string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Stages == nil {
			b.cfg.Stages = make(map[string]config.StageOverride)
		}
		override := b.cfg.Stages[stage]
		override.Program = program
		b.cfg.Stages[stage] = override
	}
}

// WithHistoryDisabled turns off the run ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// StubProgram is a shell script that accepts the stage argument convention
// and writes a marker into the path following --output.
const StubProgram = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --output) out="$2"; shift ;;
  esac
  shift
done
if [ -n "$out" ]; then
  echo "stub" > "$out"
fi
exit 0
`

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the configured Python
// interpreter is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Python.Interpreter}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteExecutable(b.t, filepath.Join(binDir, name), StubProgram)
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
