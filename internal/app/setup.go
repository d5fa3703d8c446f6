// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package app

import (
	"context"
	"fmt"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/logging"
)

// Setup loads configuration from the environment (see internal/config),
// initializes the global logger from it and builds the App.
func Setup(ctx context.Context, opts ...Option) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(cfg.Logging.ToLogging())
	logger := logging.WithComponent("setup")
	logger.Info().
		Str("log_level", cfg.Logging.Level).
		Str("tmdb", cfg.Catalog.TMDB.BaseURL).
		Bool("trailers", cfg.Catalog.YouTube.APIKey != "").
		Msg("Configuration loaded")

	a, err := New(ctx, cfg, logging.Logger(), opts...)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build recommendation pipeline")
		return nil, err
	}
	return a, nil
}
