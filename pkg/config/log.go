package config

import (
	"fmt"
	"slices"
	"strings"
)

type LogConfig struct {
	Level string `koanf:"level"`
}

// Validate normalizes the level to lower case and defaults it to info.
func (c *LogConfig) Validate() error {
	if c.Level == "" {
		c.Level = "info"
		return nil
	}
	c.Level = strings.ToLower(c.Level)
	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Level) {
		return fmt.Errorf("unknown log level %q, must be one of %v", c.Level, levels)
	}
	return nil
}
