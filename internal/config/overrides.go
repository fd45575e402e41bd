package config

import (
	"fmt"
	"strings"
)

// Overrides carries command-line values. They win over the environment and
// the file; empty fields leave the loaded value alone.
type Overrides struct {
	DatasetVersion string
	DataPath       string
	LogLevel       string
	LogFormat      string
}

// Empty reports whether no override is set.
func (o Overrides) Empty() bool {
	return strings.TrimSpace(o.DatasetVersion) == "" &&
		strings.TrimSpace(o.DataPath) == "" &&
		strings.TrimSpace(o.LogLevel) == "" &&
		strings.TrimSpace(o.LogFormat) == ""
}

// Apply copies the overrides into the config and validates the result.
func (c *Config) Apply(o Overrides) error {
	if o.Empty() {
		return nil
	}
	if value := strings.TrimSpace(o.DatasetVersion); value != "" {
		c.Dataset.Version = value
	}
	if value := strings.TrimSpace(o.DataPath); value != "" {
		expanded, err := expandHome(value)
		if err != nil {
			return fmt.Errorf("--data-path: %w", err)
		}
		c.Dataset.DataPath = expanded
	}
	if value := strings.TrimSpace(o.LogLevel); value != "" {
		c.Logging.Level = value
	}
	if value := strings.TrimSpace(o.LogFormat); value != "" {
		c.Logging.Format = value
	}
	c.normalizeLogging()
	return c.Validate()
}
