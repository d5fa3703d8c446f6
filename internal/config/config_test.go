// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Catalog.TMDB.APIKey = "tmdb"
	cfg.Catalog.OMDb.APIKey = "omdb"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults with keys",
			mutate: func(*Config) {},
		},
		{
			name:    "missing tmdb key",
			mutate:  func(c *Config) { c.Catalog.TMDB.APIKey = "" },
			wantErr: "TMDB_API_KEY",
		},
		{
			name:    "missing omdb key",
			mutate:  func(c *Config) { c.Catalog.OMDb.APIKey = "" },
			wantErr: "OMDB_API_KEY",
		},
		{
			name:   "youtube key optional",
			mutate: func(c *Config) { c.Catalog.YouTube.APIKey = "" },
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.Catalog.OMDb.BaseURL = "" },
			wantErr: "catalog.omdb.base_url is required",
		},
		{
			name:    "non http base url",
			mutate:  func(c *Config) { c.Catalog.YouTube.BaseURL = "ftp://videos.example.com" },
			wantErr: "catalog.youtube.base_url must use http or https",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.Catalog.TMDB.RateLimit = 5
				c.Catalog.TMDB.Burst = 0
			},
			wantErr: "catalog.tmdb.burst",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Catalog.TMDB.Timeout = 0 },
			wantErr: "catalog.tmdb.timeout",
		},
		{
			name:    "failure ratio above one",
			mutate:  func(c *Config) { c.Breaker.FailureRatio = 1.5 },
			wantErr: "breaker.failure_ratio",
		},
		{
			name:    "unknown cache policy",
			mutate:  func(c *Config) { c.Cache.Policy = "arc" },
			wantErr: "cache.policy must be one of",
		},
		{
			name:    "invalid recommend limits",
			mutate:  func(c *Config) { c.Recommend.Limits.MaxConcurrency = 0 },
			wantErr: "limits.max_concurrency",
		},
		{
			name:    "unknown profile backend",
			mutate:  func(c *Config) { c.Profile.Backend = "postgres" },
			wantErr: "profile.backend",
		},
		{
			name:    "neo4j without password",
			mutate:  func(c *Config) { c.Profile.Backend = ProfileBackendNeo4j },
			wantErr: "NEO4J_PASSWORD",
		},
		{
			name: "neo4j complete",
			mutate: func(c *Config) {
				c.Profile.Backend = ProfileBackendNeo4j
				c.Profile.Neo4j.Password = "secret"
			},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateHTTPURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://api.themoviedb.org/3", false},
		{"http://localhost:8080", false},
		{"localhost:8080", true},
		{"https://", true},
		{"::", true},
	}
	for _, tt := range tests {
		if err := validateHTTPURL(tt.url, "test.url"); (err != nil) != tt.wantErr {
			t.Errorf("validateHTTPURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestLoggingConfig_ToLogging(t *testing.T) {
	t.Parallel()

	got := LoggingConfig{Level: "debug", Format: "console", Caller: true}.ToLogging()
	if got.Level != "debug" || got.Format != "console" || !got.Caller {
		t.Errorf("ToLogging() = %+v", got)
	}
	if !got.Timestamp {
		t.Error("ToLogging() should keep timestamps on")
	}
}
