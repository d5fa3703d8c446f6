// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/validation"
)

// Validate checks the configuration. Struct tags are checked first, then the
// cross-field rules that tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	validators := []func() error{
		c.validateCatalogs,
		c.Recommend.Validate,
		c.validateProfile,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCatalogs() error {
	if c.Catalog.TMDB.APIKey == "" {
		return errors.New("TMDB_API_KEY is required")
	}
	if c.Catalog.OMDb.APIKey == "" {
		return errors.New("OMDB_API_KEY is required")
	}

	for name, cc := range map[string]*CatalogClientConfig{
		"catalog.tmdb":    &c.Catalog.TMDB,
		"catalog.omdb":    &c.Catalog.OMDb,
		"catalog.youtube": &c.Catalog.YouTube,
	} {
		if err := validateHTTPURL(cc.BaseURL, name+".base_url"); err != nil {
			return err
		}
		if cc.RateLimit > 0 && cc.Burst < 1 {
			return fmt.Errorf("%s.burst must be at least 1 when rate_limit is set, got %d", name, cc.Burst)
		}
	}
	return nil
}

func (c *Config) validateProfile() error {
	if c.Profile.Backend != ProfileBackendNeo4j {
		return nil
	}
	n := c.Profile.Neo4j
	if n.URI == "" {
		return errors.New("NEO4J_URI is required when profile.backend is neo4j")
	}
	if n.Username == "" || n.Password == "" {
		return errors.New("NEO4J_USERNAME and NEO4J_PASSWORD are required when profile.backend is neo4j")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// validateHTTPURL checks that rawURL is an absolute http(s) URL.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}
	return nil
}
