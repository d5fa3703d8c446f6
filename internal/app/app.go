// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package app builds the recommendation pipeline from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/cache"
	"github.com/tomtom215/reelpick/internal/catalog"
	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/present"
	"github.com/tomtom215/reelpick/internal/profile"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// App owns the long-lived pieces of the pipeline: catalog clients, shared
// caches and the taste profile backend.
type App struct {
	Recommender   *recommend.Recommender
	MetadataCache cache.Store[*recommend.SecondaryRecord]
	TrailerCache  cache.Store[recommend.TrailerRef]

	breakers map[string]breakerReporter
	closers  []func(context.Context) error
	logger   zerolog.Logger
}

// breakerReporter is implemented by the catalog clients.
type breakerReporter interface {
	BreakerState() string
}

// Health is a point-in-time view of upstream breakers and shared caches.
type Health struct {
	// Breakers maps catalog name to closed, half-open or open.
	Breakers map[string]string      `json:"breakers"`
	Caches   map[string]cache.Stats `json:"caches"`
}

type options struct {
	profile recommend.TasteProfile
}

// Option customizes New.
type Option func(*options)

// WithProfile replaces the configured taste profile backend.
func WithProfile(p recommend.TasteProfile) Option {
	return func(o *options) { o.profile = p }
}

// New wires catalogs, caches and the profile backend into a Recommender.
// cfg must already be validated; config.Load does that.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		breakers: make(map[string]breakerReporter, 3),
		logger:   logger.With().Str("component", "app").Logger(),
	}

	policy, err := cache.ParsePolicy(cfg.Cache.Policy)
	if err != nil {
		return nil, err
	}
	a.MetadataCache = cache.New[*recommend.SecondaryRecord](cache.Config{
		Name:     "metadata",
		Policy:   policy,
		Capacity: cfg.Cache.MetadataCapacity,
		TTL:      cfg.Cache.TTL,
	})
	a.TrailerCache = cache.New[recommend.TrailerRef](cache.Config{
		Name:     "trailer",
		Policy:   policy,
		Capacity: cfg.Cache.TrailerCapacity,
		TTL:      cfg.Cache.TTL,
	})

	var videos recommend.VideoCatalog = catalog.NoVideos{}
	if cfg.Catalog.YouTube.APIKey != "" {
		youtube := catalog.NewYouTube(&cfg.Catalog.YouTube, &cfg.Breaker, logger)
		a.breakers["youtube"] = youtube
		videos = youtube
	} else {
		a.logger.Info().Msg("No YouTube API key configured, trailers will link to search results")
	}

	taste := o.profile
	if taste == nil {
		taste, err = a.newProfile(ctx, &cfg.Profile, logger)
		if err != nil {
			return nil, err
		}
	}

	tmdb := catalog.NewTMDB(&cfg.Catalog.TMDB, &cfg.Breaker, logger)
	omdb := catalog.NewOMDb(&cfg.Catalog.OMDb, &cfg.Breaker, logger)
	a.breakers["tmdb"] = tmdb
	a.breakers["omdb"] = omdb

	a.Recommender, err = recommend.NewRecommender(recommend.Dependencies{
		Movies:        tmdb,
		Metadata:      omdb,
		Videos:        videos,
		Profile:       taste,
		MetadataCache: a.MetadataCache,
		TrailerCache:  a.TrailerCache,
	}, &cfg.Recommend, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.logger.Info().
		Str("cache_policy", string(policy)).
		Str("profile_backend", cfg.Profile.Backend).
		Msg("Recommendation pipeline ready")
	return a, nil
}

func (a *App) newProfile(ctx context.Context, cfg *config.ProfileConfig, logger zerolog.Logger) (recommend.TasteProfile, error) {
	switch cfg.Backend {
	case config.ProfileBackendNeo4j:
		store, err := profile.NewNeo4j(ctx, &cfg.Neo4j, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open taste profile: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case config.ProfileBackendStatic, "":
		return profile.NewStatic(), nil
	default:
		return nil, fmt.Errorf("unknown profile backend %q", cfg.Backend)
	}
}

// NewSession returns a per-user handle that supersedes in-flight requests.
func (a *App) NewSession() *recommend.Session {
	return recommend.NewSession(a.Recommender)
}

// Recommend runs one request and renders the result for display.
func (a *App) Recommend(ctx context.Context, req recommend.Request) (present.Page, error) {
	result, err := a.Recommender.Recommend(ctx, req)
	if err != nil {
		return present.Page{}, err
	}
	return present.NewPage(result), nil
}

// CacheStats reports the shared cache counters keyed by cache name.
func (a *App) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"metadata": a.MetadataCache.Stats(),
		"trailer":  a.TrailerCache.Stats(),
	}
}

// Health reports breaker states for the configured catalogs and cache counters.
// A catalog that is not configured (YouTube without a key) is absent.
func (a *App) Health() Health {
	h := Health{
		Breakers: make(map[string]string, len(a.breakers)),
		Caches:   a.CacheStats(),
	}
	for name, b := range a.breakers {
		h.Breakers[name] = b.BreakerState()
	}
	return h
}

// Close releases backend connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
