// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/reelpick/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelpick/config.yaml",
	"/etc/reelpick/config.yml",
}

const (
	// ConfigPathEnvVar overrides the config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DotenvPathEnvVar overrides the .env file path.
	DotenvPathEnvVar = "DOTENV_PATH"

	defaultDotenvPath = ".env"
)

// defaultConfig returns a Config with every default applied.
// These defaults are applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			TMDB: CatalogClientConfig{
				BaseURL:        "https://api.themoviedb.org/3",
				Timeout:        10 * time.Second,
				RateLimit:      20,
				Burst:          10,
				MaxRetries:     3,
				RetryBaseDelay: time.Second,
			},
			OMDb: CatalogClientConfig{
				BaseURL:        "https://www.omdbapi.com",
				Timeout:        10 * time.Second,
				RateLimit:      5,
				Burst:          5,
				MaxRetries:     3,
				RetryBaseDelay: time.Second,
			},
			YouTube: CatalogClientConfig{
				BaseURL:        "https://www.googleapis.com/youtube/v3",
				Timeout:        10 * time.Second,
				RateLimit:      2,
				Burst:          4,
				MaxRetries:     2,
				RetryBaseDelay: time.Second,
			},
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Cache: CacheConfig{
			Policy:           "lru",
			MetadataCapacity: 1024,
			TrailerCapacity:  1024,
		},
		Recommend: *recommend.DefaultConfig(),
		Profile: ProfileConfig{
			Backend: ProfileBackendStatic,
			Neo4j: Neo4jConfig{
				URI:          "neo4j://localhost:7687",
				Username:     "neo4j",
				Database:     "neo4j",
				QueryTimeout: 5 * time.Second,
				MaxHistory:   500,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load is LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML config file (if exists)
//  3. Dotenv: optional .env file, loaded into the process environment
//  4. Environment Variables: override any mapped setting
//
// Precedence is ENV > .env > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: .env never overrides variables that are already set
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	// Layer 4: Load environment variables (highest priority)
	// TMDB_API_KEY -> catalog.tmdb.api_key
	// NEO4J_URI -> profile.neo4j.uri
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadDotenv loads DOTENV_PATH (or ./.env) when present. A missing file is not an error.
func loadDotenv() error {
	path := os.Getenv(DotenvPathEnvVar)
	if path == "" {
		path = defaultDotenvPath
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load dotenv file %s: %w", path, err)
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Catalogs
	"tmdb_api_key":        "catalog.tmdb.api_key",
	"tmdb_base_url":       "catalog.tmdb.base_url",
	"tmdb_timeout":        "catalog.tmdb.timeout",
	"tmdb_rate_limit":     "catalog.tmdb.rate_limit",
	"tmdb_burst":          "catalog.tmdb.burst",
	"tmdb_max_retries":    "catalog.tmdb.max_retries",
	"omdb_api_key":        "catalog.omdb.api_key",
	"omdb_base_url":       "catalog.omdb.base_url",
	"omdb_timeout":        "catalog.omdb.timeout",
	"omdb_rate_limit":     "catalog.omdb.rate_limit",
	"omdb_burst":          "catalog.omdb.burst",
	"omdb_max_retries":    "catalog.omdb.max_retries",
	"youtube_api_key":     "catalog.youtube.api_key",
	"youtube_base_url":    "catalog.youtube.base_url",
	"youtube_timeout":     "catalog.youtube.timeout",
	"youtube_rate_limit":  "catalog.youtube.rate_limit",
	"youtube_burst":       "catalog.youtube.burst",
	"youtube_max_retries": "catalog.youtube.max_retries",

	// Circuit breaker
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Caches
	"cache_policy":            "cache.policy",
	"cache_metadata_capacity": "cache.metadata_capacity",
	"cache_trailer_capacity":  "cache.trailer_capacity",
	"cache_ttl":               "cache.ttl",

	// Recommendation pipeline
	"recommend_max_favorites":       "recommend.limits.max_favorites",
	"recommend_search_result_limit": "recommend.limits.search_result_limit",
	"recommend_discovery_pages":     "recommend.limits.discovery_pages",
	"recommend_min_vote_count":      "recommend.limits.min_vote_count",
	"recommend_default_max_count":   "recommend.limits.default_max_count",
	"recommend_max_count":           "recommend.limits.max_count",
	"recommend_max_concurrency":     "recommend.limits.max_concurrency",
	"recommend_diversity_penalty":   "recommend.weights.diversity_penalty",
	"recommend_tie_break":           "recommend.weights.tie_break",
	"recommend_favorite_title":      "recommend.weights.favorite_title",
	"recommend_genre_overlap":       "recommend.weights.genre_overlap",
	"recommend_recency_half_life":   "recommend.weights.recency_half_life_years",
	"recommend_balance_threshold":   "recommend.weights.balance_penalty_threshold",

	// Taste profile
	"profile_backend":     "profile.backend",
	"neo4j_uri":           "profile.neo4j.uri",
	"neo4j_username":      "profile.neo4j.username",
	"neo4j_password":      "profile.neo4j.password",
	"neo4j_database":      "profile.neo4j.database",
	"neo4j_query_timeout": "profile.neo4j.query_timeout",
	"neo4j_max_history":   "profile.neo4j.max_history",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never pollute the configuration.
//
// Examples:
//   - TMDB_API_KEY -> catalog.tmdb.api_key
//   - CACHE_POLICY -> cache.policy
//   - NEO4J_URI -> profile.neo4j.uri
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
