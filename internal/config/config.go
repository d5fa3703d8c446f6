// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"time"

	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file, an optional .env file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Dotenv: optional .env file (or DOTENV_PATH), never overriding real env vars
//  4. Environment Variables: override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	logging.Init(cfg.Logging.ToLogging())
//	a, err := app.New(ctx, cfg, logging.Logger())
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Catalog   CatalogConfig    `koanf:"catalog"`
	Breaker   BreakerConfig    `koanf:"breaker"`
	Cache     CacheConfig      `koanf:"cache"`
	Recommend recommend.Config `koanf:"recommend"`
	Profile   ProfileConfig    `koanf:"profile"`
	Logging   LoggingConfig    `koanf:"logging"`
}

// CatalogConfig groups the three upstream catalogs.
type CatalogConfig struct {
	// TMDB is the primary movie catalog (discovery, search, related titles).
	TMDB CatalogClientConfig `koanf:"tmdb"`

	// OMDb is the secondary metadata catalog (plot, external ratings).
	OMDb CatalogClientConfig `koanf:"omdb"`

	// YouTube is the video catalog used for trailers. Without an API key
	// trailers fall back to search links.
	YouTube CatalogClientConfig `koanf:"youtube"`
}

// CatalogClientConfig configures one upstream HTTP catalog.
type CatalogClientConfig struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// APIKey authenticates requests.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single HTTP attempt.
	// Default: 10s.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimit is the client-side request rate in requests per second.
	// Zero disables client-side limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`

	// Burst is the number of requests allowed above RateLimit at once.
	Burst int `koanf:"burst" validate:"gte=0"`

	// MaxRetries is how often an HTTP 429 response is retried.
	// Default: 3.
	MaxRetries int `koanf:"max_retries" validate:"gte=0,lte=10"`

	// RetryBaseDelay is the first backoff delay; it doubles per retry unless
	// the upstream sends Retry-After.
	// Default: 1s.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gte=0"`
}

// BreakerConfig configures the per-catalog circuit breakers.
type BreakerConfig struct {
	// MaxRequests is how many trial requests are let through while half-open.
	// Default: 3.
	MaxRequests uint32 `koanf:"max_requests" validate:"gte=1"`

	// Interval resets the failure counts while closed.
	// Default: 1m.
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	// Timeout is how long the breaker stays open before probing.
	// Default: 2m.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests is the sample size before the failure ratio is considered.
	// Default: 10.
	MinRequests uint32 `koanf:"min_requests" validate:"gte=1"`

	// FailureRatio opens the breaker once reached.
	// Default: 0.6.
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// CacheConfig configures the enrichment caches.
type CacheConfig struct {
	// Policy is "lru", "lfu" or "unbounded".
	// Default: lru.
	Policy string `koanf:"policy" validate:"oneof=lru lfu unbounded"`

	// MetadataCapacity bounds the secondary metadata cache under lru and lfu.
	// Default: 1024.
	MetadataCapacity int `koanf:"metadata_capacity" validate:"gte=1"`

	// TrailerCapacity bounds the trailer cache under lru.
	// Default: 1024.
	TrailerCapacity int `koanf:"trailer_capacity" validate:"gte=1"`

	// TTL expires entries. Zero keeps entries until evicted.
	TTL time.Duration `koanf:"ttl" validate:"gte=0"`
}

// Profile backends.
const (
	ProfileBackendStatic = "static"
	ProfileBackendNeo4j  = "neo4j"
)

// ProfileConfig selects where watch histories come from.
type ProfileConfig struct {
	// Backend is "static" (no history) or "neo4j".
	// Default: static.
	Backend string `koanf:"backend" validate:"oneof=static neo4j"`

	Neo4j Neo4jConfig `koanf:"neo4j"`
}

// Neo4jConfig configures the Neo4j taste profile backend.
type Neo4jConfig struct {
	URI      string `koanf:"uri"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// Database is the target database, "neo4j" on AuraDB.
	// Default: neo4j.
	Database string `koanf:"database"`

	// QueryTimeout bounds a history lookup.
	// Default: 5s.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gte=0"`

	// MaxHistory caps how many watched titles are loaded per user.
	// Default: 500.
	MaxHistory int `koanf:"max_history" validate:"gte=1"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	// Default: info.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	// Default: json.
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller adds file:line to every event.
	Caller bool `koanf:"caller"`
}

// ToLogging converts the settings for logging.Init.
func (c LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}
