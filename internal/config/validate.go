package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStages(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	if c.Dataset.Version == "" {
		return fmt.Errorf("dataset.version must be set (or export %s)", envDatasetVersion)
	}
	if c.Dataset.DataPath == "" {
		return fmt.Errorf("dataset.data_path must be set (or export %s)", envDataPath)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateStages() error {
	for _, name := range c.StageNames() {
		override := c.Stages[name]
		if strings.HasPrefix(override.Input, "/") {
			return fmt.Errorf("stages.%s.input must be a file name relative to dataset.data_path, got %q", name, override.Input)
		}
		if strings.HasPrefix(override.Output, "/") {
			return fmt.Errorf("stages.%s.output must be a file name relative to dataset.data_path, got %q", name, override.Output)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.StageTimeoutSeconds < 0 {
		return errors.New("workflow.stage_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
