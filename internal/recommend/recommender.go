// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/cache"
	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/metrics"
	"github.com/tomtom215/reelpick/internal/validation"
)

// Request is one recommendation request.
type Request struct {
	// UserID selects the watch history. Empty means an anonymous user.
	UserID string `koanf:"user_id" json:"user_id"`

	// SelectedGenres are catalog genre ids the user asked for.
	SelectedGenres []string `koanf:"selected_genres" json:"selected_genres" validate:"max=20,dive,max=32"`

	// FavoriteTitles are free-text titles. Extra titles beyond the configured
	// limit are ignored.
	FavoriteTitles []string `koanf:"favorite_titles" json:"favorite_titles" validate:"max=50,dive,max=200"`

	// Seed makes the tie-break reproducible. Nil means a fresh random ordering.
	Seed *float64 `koanf:"seed" json:"seed,omitempty"`

	// MaxCount is the shortlist size. Zero uses the configured default.
	MaxCount int `koanf:"max_count" json:"max_count" validate:"gte=0"`
}

// Result is the outcome of a recommendation request.
type Result struct {
	RequestID       string                   `json:"request_id"`
	Recommendations []EnrichedRecommendation `json:"recommendations"`

	// Seed is the seed that was used, so a client can replay the ordering.
	Seed *float64 `json:"seed,omitempty"`

	// Stage sizes, for diagnostics.
	Candidates int `json:"candidates"`
	Ranked     int `json:"ranked"`
	Enriched   int `json:"enriched"`
}

// Empty reports whether no recommendation survived. Callers should suggest
// different preferences rather than treat this as an error.
func (r *Result) Empty() bool {
	return len(r.Recommendations) == 0
}

// Dependencies are the external collaborators of a Recommender.
type Dependencies struct {
	Movies   MovieCatalog
	Metadata MetadataCatalog
	Videos   VideoCatalog

	// Profile may be nil, in which case every user has an empty history.
	Profile TasteProfile

	// Caches shared across requests. Nil uses private LRU stores.
	MetadataCache cache.Store[*SecondaryRecord]
	TrailerCache  cache.Store[TrailerRef]
}

// Recommender runs the full pipeline: profile, discover, select, enrich.
type Recommender struct {
	aggregator *Aggregator
	scorer     *Scorer
	enricher   *Enricher
	profile    TasteProfile
	limits     Limits
	logger     zerolog.Logger
}

// NewRecommender validates cfg and wires the pipeline stages. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // hugeParam: dependencies, config and logger are passed once at construction
func NewRecommender(deps Dependencies, cfg *Config, logger zerolog.Logger) (*Recommender, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if deps.Movies == nil || deps.Metadata == nil || deps.Videos == nil {
		return nil, errors.New("movie, metadata and video catalogs are required")
	}

	return &Recommender{
		aggregator: NewAggregator(deps.Movies, *cfg, logger),
		scorer:     NewScorer(cfg.Weights),
		enricher: NewEnricher(EnricherOptions{
			Metadata:       deps.Metadata,
			Videos:         deps.Videos,
			MetadataCache:  deps.MetadataCache,
			TrailerCache:   deps.TrailerCache,
			MaxConcurrency: cfg.Limits.MaxConcurrency,
		}, logger),
		profile: deps.Profile,
		limits:  cfg.Limits,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend runs every stage for req.
//
// An empty result is not an error. The only errors are ErrInvalidRequest and
// cancellation (ErrCancelled).
//
//nolint:gocritic // hugeParam: Request is read-only
func (r *Recommender) Recommend(ctx context.Context, req Request) (*Result, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	maxCount := req.MaxCount
	if maxCount == 0 {
		maxCount = r.limits.DefaultMaxCount
	}
	if maxCount > r.limits.MaxCount {
		maxCount = r.limits.MaxCount
	}

	if logging.RequestIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRequestID(ctx)
	}
	requestID := logging.RequestIDFromContext(ctx)
	if req.UserID != "" {
		ctx = logging.ContextWithUserID(ctx, req.UserID)
	}
	ctx = logging.ContextWithLogger(ctx, r.logger)
	logger := *logging.Ctx(ctx)

	res, err := r.run(ctx, logger, req, maxCount)
	switch {
	case err != nil && IsCancellation(err):
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeCancelled).Inc()
		logger.Debug().Msg("recommendation cancelled")
		return nil, err
	case err != nil:
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	case res.Empty():
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeEmpty).Inc()
	default:
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}

	res.RequestID = requestID
	logger.Info().
		Str("selector", r.scorer.selector.Name()).
		Int("candidates", res.Candidates).
		Int("ranked", res.Ranked).
		Int("recommendations", len(res.Recommendations)).
		Msg("recommendations ready")

	return res, nil
}

//nolint:gocritic // hugeParam: logger and Request are read-only
func (r *Recommender) run(ctx context.Context, logger zerolog.Logger, req Request, maxCount int) (*Result, error) {
	start := time.Now()
	watched, err := r.watched(ctx, logger, req.UserID)
	if err != nil {
		return nil, err
	}
	metrics.RecordStage("profile", time.Since(start), len(watched))

	sc := ScoringContext{
		SelectedGenres: normalizeGenres(req.SelectedGenres),
		FavoriteTitles: NormalizeFavorites(req.FavoriteTitles, r.limits.MaxFavorites),
		Seed:           req.Seed,
		WatchedMovies:  watched,
	}

	start = time.Now()
	candidates, err := r.aggregator.DiscoverCandidates(ctx, sc)
	if err != nil {
		return nil, err
	}
	metrics.RecordStage("discover", time.Since(start), len(candidates))

	start = time.Now()
	ranked := r.scorer.SelectTopCandidates(candidates, sc, sc.WatchedMovies, maxCount)
	metrics.RecordStage("select", time.Since(start), len(ranked))
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	start = time.Now()
	items, err := r.enricher.EnrichWithMetadata(ctx, ranked)
	if err != nil {
		return nil, err
	}
	metrics.RecordStage("metadata", time.Since(start), len(items))

	start = time.Now()
	recs, err := r.enricher.EnrichWithTrailer(ctx, items)
	if err != nil {
		return nil, err
	}
	metrics.RecordStage("trailer", time.Since(start), len(recs))

	return &Result{
		Recommendations: recs,
		Seed:            req.Seed,
		Candidates:      len(candidates),
		Ranked:          len(ranked),
		Enriched:        len(items),
	}, nil
}

// watched loads the watch history. Profile failures degrade to an empty history.
//
//nolint:gocritic // hugeParam: logger is read-only
func (r *Recommender) watched(ctx context.Context, logger zerolog.Logger, userID string) ([]WatchedEntry, error) {
	if r.profile == nil || userID == "" {
		return nil, nil
	}

	watched, err := r.profile.WatchedMovies(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx.Err())
		}
		logger.Warn().Err(err).Msg("taste profile unavailable, continuing without watch history")
		return nil, nil
	}
	return watched, nil
}

// NewSeed returns a fresh seed for a "shuffle" request.
func NewSeed() *float64 {
	s := rand.Float64()
	return &s
}
