package config

import (
	"fmt"
	"time"
)

// Defaults applied to unset HTTP server timeouts.
const (
	defaultReadTimeout       = 5 * time.Second
	defaultWriteTimeout      = 10 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultReadHeaderTimeout = 2 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
)

type HTTPConfig struct {
	Port           int `koanf:"port"`
	MaxHeaderBytes int `koanf:"maxHeaderBytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readHeader"`
	} `koanf:"timeout"`
}

// Validate checks the port and fills unset timeouts with defaults.
func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("http server port out of range: %d", c.Port)
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	if c.Timeout.Read <= 0 {
		c.Timeout.Read = defaultReadTimeout
	}
	if c.Timeout.Write <= 0 {
		c.Timeout.Write = defaultWriteTimeout
	}
	if c.Timeout.Idle <= 0 {
		c.Timeout.Idle = defaultIdleTimeout
	}
	if c.Timeout.ReadHeader <= 0 {
		c.Timeout.ReadHeader = defaultReadHeaderTimeout
	}
	return nil
}
