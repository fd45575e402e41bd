package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"pkaprep/internal/config"
	"pkaprep/internal/logging"
)

const skipConfigAnnotation = "skipConfigLoad"

type commandContext struct {
	configFlag string
	overrides  config.Overrides

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func (c *commandContext) ensureConfig() error {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if err := cfg.Apply(c.overrides); err != nil {
			c.configErr = fmt.Errorf("apply flags: %w", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = fmt.Errorf("ensure directories: %w", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.configErr
}

func (c *commandContext) configValue() *config.Config {
	if err := c.ensureConfig(); err != nil {
		return nil
	}
	return c.config
}

// newLogger builds the process logger. Log records go to w (stderr) so the
// stage programs keep stdout to themselves.
func (c *commandContext) newLogger(w io.Writer) (*slog.Logger, error) {
	cfg := c.configValue()
	if cfg == nil {
		return nil, c.configErr
	}
	logger, err := logging.NewFromConfig(cfg, w)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations != nil && current.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
