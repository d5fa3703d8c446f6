// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"fmt"
)

// Config contains all tunables of the recommendation pipeline.
type Config struct {
	// Weights holds the hand-tuned scoring constants.
	Weights Weights `koanf:"weights" json:"weights"`

	// Limits contains operational limits.
	Limits Limits `koanf:"limits" json:"limits"`
}

// Weights holds every scoring constant. The defaults are hand-tuned; change
// them only with an eye on recommendation quality.
type Weights struct {
	// Source weights multiply a movie's base score per sub-query that returned it.

	// Discover is the weight of the broad discovery query.
	// Default: 1.0.
	Discover float64 `koanf:"discover" json:"discover"`

	// FavoriteMatch is the weight of a favorite-title search hit.
	// Default: 1.4.
	FavoriteMatch float64 `koanf:"favorite_match" json:"favorite_match"`

	// Recommendations is the weight of "recommendations for" the top favorite hit.
	// Default: 1.25.
	Recommendations float64 `koanf:"recommendations" json:"recommendations"`

	// Similar is the weight of "similar to" the top favorite hit.
	// Default: 1.1.
	Similar float64 `koanf:"similar" json:"similar"`

	// Trending is the weight of the cold-start trending query.
	// Default: 0.9.
	Trending float64 `koanf:"trending" json:"trending"`

	// Base score factors.

	// Rating multiplies the vote average. Default: 0.9.
	Rating float64 `koanf:"rating" json:"rating"`

	// Popularity multiplies the popularity metric. Default: 0.03.
	Popularity float64 `koanf:"popularity" json:"popularity"`

	// GenreOverlap is added per selected genre the movie carries. Default: 4.2.
	GenreOverlap float64 `koanf:"genre_overlap" json:"genre_overlap"`

	// VoteCount multiplies log10(1+votes). Default: 1.5.
	VoteCount float64 `koanf:"vote_count" json:"vote_count"`

	// RecencyMax is the recency boost of a brand new release. Default: 2.
	RecencyMax float64 `koanf:"recency_max" json:"recency_max"`

	// RecencyHalfLifeYears is the age at which the recency boost halves. Default: 8.
	RecencyHalfLifeYears float64 `koanf:"recency_half_life_years" json:"recency_half_life_years"`

	// Personalization.

	// FavoriteTitle is added on an exact favorite title match. Default: 3.5.
	FavoriteTitle float64 `koanf:"favorite_title" json:"favorite_title"`

	// WatchedGenre multiplies sqrt(count) per watched genre. Default: 1.1.
	WatchedGenre float64 `koanf:"watched_genre" json:"watched_genre"`

	// BroadMix is added per genre when no genres were selected. Default: 0.3.
	BroadMix float64 `koanf:"broad_mix" json:"broad_mix"`

	// RatingFitCeiling bounds max(0, ceiling - |avg - rating|). Default: 2.5.
	RatingFitCeiling float64 `koanf:"rating_fit_ceiling" json:"rating_fit_ceiling"`

	// Quality.

	// Quality multiplies the vote average once more at selection. Default: 0.6.
	Quality float64 `koanf:"quality" json:"quality"`

	// HighRatingThreshold tags "well loved" titles. Default: 7.5.
	HighRatingThreshold float64 `koanf:"high_rating_threshold" json:"high_rating_threshold"`

	// SolidRatingThreshold tags "solid" titles below HighRatingThreshold. Default: 6.8.
	SolidRatingThreshold float64 `koanf:"solid_rating_threshold" json:"solid_rating_threshold"`

	// ManyVotesThreshold tags titles with broad community backing. Default: 500.
	ManyVotesThreshold int `koanf:"many_votes_threshold" json:"many_votes_threshold"`

	// FreshReleaseYears tags titles released this many years ago or less. Default: 3.
	FreshReleaseYears int `koanf:"fresh_release_years" json:"fresh_release_years"`

	// Selection.

	// TieBreak scales the pseudo-random tie-break in [0, 1). Default: 0.4.
	TieBreak float64 `koanf:"tie_break" json:"tie_break"`

	// DiversityPenalty is subtracted per prior pick sharing a genre. Default: 0.9.
	DiversityPenalty float64 `koanf:"diversity_penalty" json:"diversity_penalty"`

	// BalancePenaltyThreshold is the largest penalty that still earns a
	// "balances the mix" reason. Default: 0.
	BalancePenaltyThreshold float64 `koanf:"balance_penalty_threshold" json:"balance_penalty_threshold"`
}

// Limits contains operational limits.
type Limits struct {
	// MaxFavorites caps how many favorite titles fan out to the catalog.
	// Default: 6.
	MaxFavorites int `koanf:"max_favorites" json:"max_favorites"`

	// SearchResultLimit caps how many search hits per favorite are tagged.
	// Default: 5.
	SearchResultLimit int `koanf:"search_result_limit" json:"search_result_limit"`

	// DiscoveryPages is the page span a seed can pick the discovery page from.
	// Default: 3.
	DiscoveryPages int `koanf:"discovery_pages" json:"discovery_pages"`

	// MinVoteCount is the vote floor of the discovery query.
	// Default: 150.
	MinVoteCount int `koanf:"min_vote_count" json:"min_vote_count"`

	// DefaultMaxCount is used when a request does not set MaxCount.
	// Default: 12.
	DefaultMaxCount int `koanf:"default_max_count" json:"default_max_count"`

	// MaxCount is the largest shortlist a request may ask for.
	// Default: 40.
	MaxCount int `koanf:"max_count" json:"max_count"`

	// MaxConcurrency bounds in-flight enrichment lookups per stage.
	// Default: 8.
	MaxConcurrency int `koanf:"max_concurrency" json:"max_concurrency"`
}

// DefaultWeights returns the hand-tuned scoring constants.
func DefaultWeights() Weights {
	return Weights{
		Discover:                1.0,
		FavoriteMatch:           1.4,
		Recommendations:         1.25,
		Similar:                 1.1,
		Trending:                0.9,
		Rating:                  0.9,
		Popularity:              0.03,
		GenreOverlap:            4.2,
		VoteCount:               1.5,
		RecencyMax:              2,
		RecencyHalfLifeYears:    8,
		FavoriteTitle:           3.5,
		WatchedGenre:            1.1,
		BroadMix:                0.3,
		RatingFitCeiling:        2.5,
		Quality:                 0.6,
		HighRatingThreshold:     7.5,
		SolidRatingThreshold:    6.8,
		ManyVotesThreshold:      500,
		FreshReleaseYears:       3,
		TieBreak:                0.4,
		DiversityPenalty:        0.9,
		BalancePenaltyThreshold: 0,
	}
}

// DefaultLimits returns the default operational limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFavorites:      6,
		SearchResultLimit: 5,
		DiscoveryPages:    3,
		MinVoteCount:      150,
		DefaultMaxCount:   12,
		MaxCount:          40,
		MaxConcurrency:    8,
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultWeights(),
		Limits:  DefaultLimits(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	return c.Limits.Validate()
}

// Validate checks that every weight is usable.
//
//nolint:gocritic // hugeParam: value receiver is intentional for immutable semantics
func (w Weights) Validate() error {
	nonNegative := map[string]float64{
		"weights.discover":                  w.Discover,
		"weights.favorite_match":            w.FavoriteMatch,
		"weights.recommendations":           w.Recommendations,
		"weights.similar":                   w.Similar,
		"weights.trending":                  w.Trending,
		"weights.rating":                    w.Rating,
		"weights.popularity":                w.Popularity,
		"weights.genre_overlap":             w.GenreOverlap,
		"weights.vote_count":                w.VoteCount,
		"weights.recency_max":               w.RecencyMax,
		"weights.favorite_title":            w.FavoriteTitle,
		"weights.watched_genre":             w.WatchedGenre,
		"weights.broad_mix":                 w.BroadMix,
		"weights.rating_fit_ceiling":        w.RatingFitCeiling,
		"weights.quality":                   w.Quality,
		"weights.tie_break":                 w.TieBreak,
		"weights.diversity_penalty":         w.DiversityPenalty,
		"weights.balance_penalty_threshold": w.BalancePenaltyThreshold,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, v)
		}
	}

	if w.RecencyHalfLifeYears <= 0 {
		return fmt.Errorf("weights.recency_half_life_years must be positive, got %f", w.RecencyHalfLifeYears)
	}
	if w.HighRatingThreshold < 0 || w.HighRatingThreshold > 10 {
		return fmt.Errorf("weights.high_rating_threshold must be in [0, 10], got %f", w.HighRatingThreshold)
	}
	if w.SolidRatingThreshold > w.HighRatingThreshold {
		return fmt.Errorf("weights.solid_rating_threshold must be <= weights.high_rating_threshold, got %f > %f",
			w.SolidRatingThreshold, w.HighRatingThreshold)
	}
	if w.ManyVotesThreshold < 0 {
		return fmt.Errorf("weights.many_votes_threshold must be non-negative, got %d", w.ManyVotesThreshold)
	}
	if w.FreshReleaseYears < 0 {
		return fmt.Errorf("weights.fresh_release_years must be non-negative, got %d", w.FreshReleaseYears)
	}

	return nil
}

// Validate checks the limits for errors.
func (l *Limits) Validate() error {
	if l.MaxFavorites < 1 {
		return fmt.Errorf("limits.max_favorites must be positive, got %d", l.MaxFavorites)
	}
	if l.SearchResultLimit < 1 {
		return fmt.Errorf("limits.search_result_limit must be positive, got %d", l.SearchResultLimit)
	}
	if l.DiscoveryPages < 1 {
		return fmt.Errorf("limits.discovery_pages must be positive, got %d", l.DiscoveryPages)
	}
	if l.MinVoteCount < 0 {
		return fmt.Errorf("limits.min_vote_count must be non-negative, got %d", l.MinVoteCount)
	}
	if l.DefaultMaxCount < 1 {
		return fmt.Errorf("limits.default_max_count must be positive, got %d", l.DefaultMaxCount)
	}
	if l.MaxCount < l.DefaultMaxCount {
		return fmt.Errorf("limits.max_count must be >= limits.default_max_count, got %d < %d", l.MaxCount, l.DefaultMaxCount)
	}
	if l.MaxConcurrency < 1 {
		return fmt.Errorf("limits.max_concurrency must be positive, got %d", l.MaxConcurrency)
	}
	return nil
}
