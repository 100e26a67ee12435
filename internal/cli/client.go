package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/andywolf/planesync/internal/cloud/gcp"
	"github.com/andywolf/planesync/internal/config"
	"github.com/andywolf/planesync/internal/controller"
	"github.com/andywolf/planesync/internal/plane"
)

// newController loads the configuration, resolves the API key, validates
// the connection and returns a ready controller. Every command that talks
// to the API goes through here.
func newController(ctx context.Context) (*controller.Controller, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateForAPI(); err != nil {
		return nil, err
	}

	apiKey := cfg.Plane.APIKey
	if apiKey == "" {
		apiKey, err = fetchAPIKey(ctx, cfg.Plane.APIKeySecret)
		if err != nil {
			return nil, err
		}
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	client, err := plane.New(ctx, plane.Config{
		APIKey:        apiKey,
		WorkspaceSlug: cfg.Plane.WorkspaceSlug,
		ProjectID:     cfg.Plane.ProjectID,
		Host:          cfg.Plane.Host,
		MaxRetries:    cfg.Retry.MaxRetries,
		RetryDelay:    cfg.RetryDelay(),
	}, plane.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	opts := []controller.Option{controller.WithLogger(logger)}
	if cfg.Log.Structured {
		opts = append(opts, controller.WithCloudLogger(gcp.NewLogger(cfg.Plane.ProjectID)))
	}
	return controller.New(client, opts...), nil
}

// fetchAPIKey resolves the API key from Secret Manager when it was not
// provided directly.
func fetchAPIKey(ctx context.Context, secretPath string) (string, error) {
	sm, err := gcp.NewSecretManagerClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer func() { _ = sm.Close() }()

	key, err := sm.FetchSecret(ctx, secretPath)
	if err != nil {
		return "", fmt.Errorf("failed to fetch API key from %s: %w", secretPath, err)
	}
	return key, nil
}
