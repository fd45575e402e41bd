package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Dataset holds the two values every derived file path is built from.
type Dataset struct {
	// Version namespaces generated filenames (04_split_mols_v<version>.sdf).
	Version string `toml:"version"`
	// DataPath is the directory prefix for every stage input and output.
	DataPath string `toml:"data_path"`
}

// Paths contains launcher-owned directories.
type Paths struct {
	StateDir   string `toml:"state_dir"`
	ScriptsDir string `toml:"scripts_dir"`
}

// Python selects the interpreter used for the default stage programs.
type Python struct {
	Interpreter string `toml:"interpreter"`
}

// StageOverride replaces parts of a catalogue stage. Zero values keep the
// catalogue default.
type StageOverride struct {
	Enabled *bool    `toml:"enabled,omitempty"`
	Program []string `toml:"program,omitempty"`
	Input   string   `toml:"input,omitempty"`
	Output  string   `toml:"output,omitempty"`
}

// Workflow contains run behaviour settings.
type Workflow struct {
	SingleInstance      bool `toml:"single_instance"`
	StageTimeoutSeconds int  `toml:"stage_timeout_seconds"`
}

// History controls the SQLite run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File mirrors log output into <state_dir>/logs/pkaprep-<timestamp>.log.
	File bool `toml:"file"`
	// RetentionDays prunes mirrored log files older than this; 0 keeps all.
	RetentionDays int `toml:"retention_days"`
}

// Config encapsulates all configuration values for pkaprep.
//
// Configuration sections:
//   - Dataset: version tag and data directory
//   - Paths: state directory (history, lock, logs) and scripts directory
//   - Python: interpreter for the default stage programs
//   - Stages: per-stage overrides keyed by stage name
//   - Workflow: single-instance guard and per-stage timeout
//   - History: run ledger toggle
//   - Logging: log format, level, and file mirroring
type Config struct {
	Dataset  Dataset                  `toml:"dataset"`
	Paths    Paths                    `toml:"paths"`
	Python   Python                   `toml:"python"`
	Stages   map[string]StageOverride `toml:"stages"`
	Workflow Workflow                 `toml:"workflow"`
	History  History                  `toml:"history"`
	Logging  Logging                  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pkaprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, "", false, err
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win over the file.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pkaprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the launcher state directory. The data directory
// is never created here; producing it is the upstream stages' job.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if c.Logging.File {
		dirs = append(dirs, c.LogDir())
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the run ledger database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "pkaprep.lock")
}

// LogDir returns the directory that receives mirrored log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.Paths.StateDir, "logs")
}

// StageNames returns the names of all configured stage overrides, sorted.
func (c *Config) StageNames() []string {
	names := make([]string, 0, len(c.Stages))
	for name := range c.Stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Override returns the override for the named stage, if any.
func (c *Config) Override(name string) (StageOverride, bool) {
	if c == nil || c.Stages == nil {
		return StageOverride{}, false
	}
	o, ok := c.Stages[name]
	return o, ok
}

// SetStageEnabled records an enabled override for the named stage.
func (c *Config) SetStageEnabled(name string, enabled bool) {
	if c.Stages == nil {
		c.Stages = make(map[string]StageOverride)
	}
	o := c.Stages[name]
	o.Enabled = &enabled
	c.Stages[name] = o
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	expanded, err := expandHome(pathValue)
	if err != nil {
		return "", err
	}
	cleaned := filepath.Clean(expanded)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// expandHome replaces a leading tilde and otherwise leaves the value untouched.
func expandHome(pathValue string) (string, error) {
	if !strings.HasPrefix(pathValue, "~") {
		return pathValue, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if pathValue == "~" {
		return home, nil
	}
	if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
		return filepath.Join(home, pathValue[2:]), nil
	}
	return pathValue, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "pkaprep")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/state/pkaprep"
	}
	return filepath.Join(home, ".local", "state", "pkaprep")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
