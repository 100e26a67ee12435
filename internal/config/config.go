package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MinAPIKeyLength is the minimum plausible length of a Plane API key.
// Real keys are longer; anything shorter is a copy/paste mistake.
const MinAPIKeyLength = 32

// Config represents the full planesync configuration
type Config struct {
	Plane PlaneConfig `mapstructure:"plane"`
	Retry RetryConfig `mapstructure:"retry"`
	Log   LogConfig   `mapstructure:"log"`
}

// PlaneConfig contains connection settings for the Plane API
type PlaneConfig struct {
	APIKey        string `mapstructure:"api_key"`
	APIKeySecret  string `mapstructure:"api_key_secret"` // Secret Manager path, used when api_key is unset
	WorkspaceSlug string `mapstructure:"workspace_slug"`
	ProjectID     string `mapstructure:"project_id"`
	Host          string `mapstructure:"host"`
}

// RetryConfig contains the client retry policy
type RetryConfig struct {
	MaxRetries int    `mapstructure:"max_retries"`
	Delay      string `mapstructure:"delay"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Structured bool `mapstructure:"structured"` // emit Cloud-Logging-compatible JSON
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := &Config{}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Plane.Host == "" {
		cfg.Plane.Host = "https://api.plane.so"
	}

	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 3
	}

	if cfg.Retry.Delay == "" {
		cfg.Retry.Delay = "5s"
	}
}

// Validate validates the configuration shape
func (c *Config) Validate() error {
	if c.Retry.MaxRetries < 1 {
		return fmt.Errorf("retry max_retries must be at least 1")
	}

	if c.Retry.Delay != "" {
		if _, err := time.ParseDuration(c.Retry.Delay); err != nil {
			return fmt.Errorf("invalid retry delay: %w", err)
		}
	}

	return nil
}

// ValidateForAPI performs the additional validation required before any
// API operation. The API key itself is checked here only when it was
// provided directly; a configured secret path is resolved later.
func (c *Config) ValidateForAPI() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Plane.APIKey == "" && c.Plane.APIKeySecret == "" {
		return fmt.Errorf("plane API key is required (set PLANE_API_KEY or plane.api_key_secret)")
	}

	if c.Plane.APIKey != "" && len(c.Plane.APIKey) < MinAPIKeyLength {
		return fmt.Errorf("plane API key looks invalid (shorter than %d characters)", MinAPIKeyLength)
	}

	if c.Plane.WorkspaceSlug == "" {
		return fmt.Errorf("plane workspace slug is required (set PLANE_WORKSPACE_SLUG)")
	}

	if c.Plane.ProjectID == "" {
		return fmt.Errorf("plane project ID is required (set PLANE_PROJECT_ID)")
	}

	return nil
}

// RetryDelay returns the parsed retry delay. Call Validate first.
func (c *Config) RetryDelay() time.Duration {
	d, err := time.ParseDuration(c.Retry.Delay)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
