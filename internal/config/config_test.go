package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"pkaprep/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("PKAPREP_DATASET_VERSION", "")
	t.Setenv("PKAPREP_DATA_PATH", "")
	t.Setenv("PKAPREP_PYTHON", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfig(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "pkaprep", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Dataset.Version != "1" {
		t.Fatalf("unexpected version: %q", cfg.Dataset.Version)
	}
	if cfg.Dataset.DataPath != "/data/shared/projects/pkasolver-data" {
		t.Fatalf("unexpected data path: %q", cfg.Dataset.DataPath)
	}
	if cfg.Paths.StateDir != filepath.Join(home, ".local", "state", "pkaprep") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.ScriptsDir != "scripts" {
		t.Fatalf("expected relative scripts dir, got %q", cfg.Paths.ScriptsDir)
	}
	if cfg.Python.Interpreter != "python" {
		t.Fatalf("unexpected interpreter: %q", cfg.Python.Interpreter)
	}
	if !cfg.Workflow.SingleInstance {
		t.Fatal("expected single instance guard enabled by default")
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "pkaprep.toml")

	type payload struct {
		Dataset struct {
			Version  string `toml:"version"`
			DataPath string `toml:"data_path"`
		} `toml:"dataset"`
		Stages map[string]map[string]any `toml:"stages"`
	}
	custom := payload{}
	custom.Dataset.Version = "7"
	custom.Dataset.DataPath = "/srv/pka"
	custom.Stages = map[string]map[string]any{
		"Split": {"enabled": true, "program": []string{" ./split.sh ", ""}},
	}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Dataset.Version != "7" || cfg.Dataset.DataPath != "/srv/pka" {
		t.Fatalf("unexpected dataset: %+v", cfg.Dataset)
	}
	override, ok := cfg.Override("split")
	if !ok {
		t.Fatalf("expected lower-cased split override, got %v", cfg.StageNames())
	}
	if override.Enabled == nil || !*override.Enabled {
		t.Fatal("expected split override to be enabled")
	}
	if len(override.Program) != 1 || override.Program[0] != "./split.sh" {
		t.Fatalf("expected trimmed program, got %q", override.Program)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "pkaprep.toml")
	content := "[dataset]\nversion = \"2\"\ndata_path = \"/from/file\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PKAPREP_DATASET_VERSION", "3")
	t.Setenv("PKAPREP_DATA_PATH", "/from/env")
	t.Setenv("PKAPREP_PYTHON", "python3.11")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Dataset.Version != "3" {
		t.Fatalf("expected env version, got %q", cfg.Dataset.Version)
	}
	if cfg.Dataset.DataPath != "/from/env" {
		t.Fatalf("expected env data path, got %q", cfg.Dataset.DataPath)
	}
	if cfg.Python.Interpreter != "python3.11" {
		t.Fatalf("expected env interpreter, got %q", cfg.Python.Interpreter)
	}
}

func TestDotEnvFileIsLoaded(t *testing.T) {
	isolateEnv(t)
	os.Unsetenv("PKAPREP_DATA_PATH")
	if err := os.WriteFile(".env", []byte("PKAPREP_DATA_PATH=/from/dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("PKAPREP_DATA_PATH") })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Dataset.DataPath != "/from/dotenv" {
		t.Fatalf("expected data path from .env, got %q", cfg.Dataset.DataPath)
	}
}

func TestDataPathKeepsUserSpelling(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PKAPREP_DATA_PATH", "relative/data dir")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Dataset.DataPath != "relative/data dir" {
		t.Fatalf("expected data path to stay relative, got %q", cfg.Dataset.DataPath)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown key", content: "[dataset]\nflavour = \"x\"\n", want: "parse config"},
		{name: "unknown log level", content: "[logging]\nlevel = \"verbose\"\n", want: "logging.level"},
		{name: "unknown log format", content: "[logging]\nformat = \"xml\"\n", want: "logging.format"},
		{name: "absolute output", content: "[stages.split]\noutput = \"/tmp/out.sdf\"\n", want: "stages.split.output"},
		{name: "absolute input", content: "[stages.split]\ninput = \"/tmp/in.sdf\"\n", want: "stages.split.input"},
		{name: "negative timeout", content: "[workflow]\nstage_timeout_seconds = -5\n", want: "stage_timeout_seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isolateEnv(t)
			path := filepath.Join(t.TempDir(), "pkaprep.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigLoads(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Dataset.Version != config.Default().Dataset.Version {
		t.Fatalf("sample version drifted from defaults: %q", cfg.Dataset.Version)
	}
}

func TestEncodeIncludesOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.SetStageEnabled("split", true)
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	text := string(data)
	for _, fragment := range []string{"[dataset]", "data_path", "[stages.split]", "enabled = true"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in encoded config:\n%s", fragment, text)
		}
	}
}

func TestApplyOverridesWinOverEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PKAPREP_DATASET_VERSION", "3")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	err = cfg.Apply(config.Overrides{DatasetVersion: " 9 ", DataPath: "/flag/data", LogFormat: "JSON"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Dataset.Version != "9" || cfg.Dataset.DataPath != "/flag/data" {
		t.Fatalf("unexpected dataset after overrides: %+v", cfg.Dataset)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestApplyOverridesValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Apply(config.Overrides{LogLevel: "verbose"}); err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected unknown log level to be rejected, got %v", err)
	}
	cfg = config.Default()
	if err := cfg.Apply(config.Overrides{LogFormat: "xml"}); err == nil {
		t.Fatal("expected unknown log format to be rejected")
	}
}

func TestVersionIsUsedVerbatim(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PKAPREP_DATASET_VERSION", "2024/rc1")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Dataset.Version != "2024/rc1" {
		t.Fatalf("expected version kept verbatim, got %q", cfg.Dataset.Version)
	}
}
