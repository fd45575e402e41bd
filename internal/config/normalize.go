package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeDataset()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePython()
	c.normalizeStages()
	c.normalizeLogging()
	return nil
}

// normalizeDataset applies environment overrides. The data path is only
// trimmed and tilde-expanded: derived file paths are plain concatenations of
// whatever the user supplied.
func (c *Config) normalizeDataset() {
	if value, ok := os.LookupEnv(envDatasetVersion); ok && strings.TrimSpace(value) != "" {
		c.Dataset.Version = value
	}
	if value, ok := os.LookupEnv(envDataPath); ok && strings.TrimSpace(value) != "" {
		c.Dataset.DataPath = value
	}
	c.Dataset.Version = strings.TrimSpace(c.Dataset.Version)
	c.Dataset.DataPath = strings.TrimSpace(c.Dataset.DataPath)
	if expanded, err := expandHome(c.Dataset.DataPath); err == nil {
		c.Dataset.DataPath = expanded
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.ScriptsDir = strings.TrimSpace(c.Paths.ScriptsDir)
	if c.Paths.ScriptsDir == "" {
		c.Paths.ScriptsDir = defaultScriptsDir
	}
	if c.Paths.ScriptsDir, err = expandHome(c.Paths.ScriptsDir); err != nil {
		return fmt.Errorf("paths.scripts_dir: %w", err)
	}
	c.Paths.ScriptsDir = strings.TrimRight(c.Paths.ScriptsDir, "/")
	if c.Paths.ScriptsDir == "" {
		c.Paths.ScriptsDir = "/"
	}
	return nil
}

func (c *Config) normalizePython() {
	if value, ok := os.LookupEnv(envPython); ok && strings.TrimSpace(value) != "" {
		c.Python.Interpreter = value
	}
	c.Python.Interpreter = strings.TrimSpace(c.Python.Interpreter)
	if c.Python.Interpreter == "" {
		c.Python.Interpreter = defaultInterpreter
	}
}

func (c *Config) normalizeStages() {
	if len(c.Stages) == 0 {
		return
	}
	normalized := make(map[string]StageOverride, len(c.Stages))
	for name, override := range c.Stages {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		program := make([]string, 0, len(override.Program))
		for _, arg := range override.Program {
			if trimmed := strings.TrimSpace(arg); trimmed != "" {
				program = append(program, trimmed)
			}
		}
		if len(program) == 0 {
			program = nil
		}
		override.Program = program
		override.Input = strings.TrimSpace(override.Input)
		override.Output = strings.TrimSpace(override.Output)
		normalized[key] = override
	}
	c.Stages = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
