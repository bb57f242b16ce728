package config

import (
	"fmt"
	"time"
)

// MediaConfig holds the credentials and limits for the external media store.
// Credentials are expected to arrive via environment variables, never yaml.
type MediaConfig struct {
	CloudName     string        `koanf:"cloudName"`
	APIKey        string        `koanf:"apiKey"`
	APISecret     string        `koanf:"apiSecret"`
	UploadTimeout time.Duration `koanf:"uploadTimeout"`
	MaxUploadSize int64         `koanf:"maxUploadSize"`
}

func (c *MediaConfig) Validate() error {
	if c.CloudName == "" {
		return fmt.Errorf("media cloud name is not configured")
	}
	if c.APIKey == "" {
		return fmt.Errorf("media API key is not configured")
	}
	if c.APISecret == "" {
		return fmt.Errorf("media API secret is not configured")
	}
	if c.UploadTimeout <= 0 {
		return fmt.Errorf("invalid media upload timeout: %v", c.UploadTimeout)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("invalid media max upload size: %d", c.MaxUploadSize)
	}
	return nil
}
