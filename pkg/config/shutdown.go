package config

import (
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Validate defaults the timeout so an unset value never disables draining.
func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		c.Timeout = defaultShutdownTimeout
	}
	return nil
}
