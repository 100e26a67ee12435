package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Plane: PlaneConfig{
			APIKey:        strings.Repeat("k", 40),
			WorkspaceSlug: "acme",
			ProjectID:     "proj-1",
			Host:          "https://api.plane.so",
		},
		Retry: RetryConfig{MaxRetries: 3, Delay: "5s"},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Plane.Host != "https://api.plane.so" {
		t.Errorf("host default = %q", cfg.Plane.Host)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("max_retries default = %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.Delay != "5s" {
		t.Errorf("delay default = %q", cfg.Retry.Delay)
	}
}

func TestConfig_ValidateForAPI(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing API key and secret path",
			mutate:  func(c *Config) { c.Plane.APIKey = "" },
			wantErr: "API key is required",
		},
		{
			name:    "short API key",
			mutate:  func(c *Config) { c.Plane.APIKey = "too-short" },
			wantErr: "looks invalid",
		},
		{
			name:    "missing workspace slug",
			mutate:  func(c *Config) { c.Plane.WorkspaceSlug = "" },
			wantErr: "workspace slug is required",
		},
		{
			name:    "missing project ID",
			mutate:  func(c *Config) { c.Plane.ProjectID = "" },
			wantErr: "project ID is required",
		},
		{
			name:    "invalid retry delay",
			mutate:  func(c *Config) { c.Retry.Delay = "soon" },
			wantErr: "invalid retry delay",
		},
		{
			name: "secret path stands in for API key",
			mutate: func(c *Config) {
				c.Plane.APIKey = ""
				c.Plane.APIKeySecret = "projects/p/secrets/plane-api-key"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.ValidateForAPI()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_RetryDelay(t *testing.T) {
	cfg := validConfig()
	cfg.Retry.Delay = "2s"
	if got := cfg.RetryDelay(); got != 2*time.Second {
		t.Errorf("RetryDelay() = %v, want 2s", got)
	}

	cfg.Retry.Delay = "garbage"
	if got := cfg.RetryDelay(); got != 5*time.Second {
		t.Errorf("RetryDelay() fallback = %v, want 5s", got)
	}
}
