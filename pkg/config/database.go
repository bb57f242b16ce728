package config

import (
	"fmt"
	"net/url"
	"time"
)

const defaultConnectTimeout = 5 * time.Second

type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// Validate requires a parseable postgres DSN and defaults the connect timeout.
func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("database URL is not parseable: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("database URL scheme must be postgres, got %q", u.Scheme)
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultConnectTimeout
	}
	return nil
}
