// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelpick/internal/cache"
)

const (
	youtubeEmbedBase  = "https://www.youtube.com/embed/"
	youtubeWatchBase  = "https://www.youtube.com/watch?v="
	youtubeSearchBase = "https://www.youtube.com/results?search_query="
)

// EnricherOptions wires the enrichment stage.
type EnricherOptions struct {
	Metadata MetadataCatalog
	Videos   VideoCatalog

	// MetadataCache is keyed by "title|year". A cached nil is a remembered not-found.
	MetadataCache cache.Store[*SecondaryRecord]

	// TrailerCache is keyed by the exact trailer search query.
	TrailerCache cache.Store[TrailerRef]

	// MaxConcurrency bounds in-flight lookups per stage. Default: 8.
	MaxConcurrency int
}

// Enricher attaches secondary metadata and trailers to a ranked shortlist.
type Enricher struct {
	metadata       MetadataCatalog
	videos         VideoCatalog
	metadataCache  cache.Store[*SecondaryRecord]
	trailerCache   cache.Store[TrailerRef]
	maxConcurrency int
	logger         zerolog.Logger
}

// NewEnricher creates an enricher. Nil caches fall back to private LRU stores.
//
//nolint:gocritic // hugeParam: options and logger are passed once at construction
func NewEnricher(opts EnricherOptions, logger zerolog.Logger) *Enricher {
	if opts.MetadataCache == nil {
		opts.MetadataCache = cache.NewLRU[*SecondaryRecord](cache.Config{})
	}
	if opts.TrailerCache == nil {
		opts.TrailerCache = cache.NewLRU[TrailerRef](cache.Config{})
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultLimits().MaxConcurrency
	}
	return &Enricher{
		metadata:       opts.Metadata,
		videos:         opts.Videos,
		metadataCache:  opts.MetadataCache,
		trailerCache:   opts.TrailerCache,
		maxConcurrency: opts.MaxConcurrency,
		logger:         logger.With().Str("component", "enricher").Logger(),
	}
}

// EnrichWithMetadata looks up every candidate concurrently and keeps, in
// input order, only those the metadata catalog recognizes.
// Lookup errors drop the affected item; cancellation fails the stage.
func (e *Enricher) EnrichWithMetadata(ctx context.Context, ranked []RankedCandidate) ([]EnrichedItem, error) {
	records := make([]*SecondaryRecord, len(ranked))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for i := range ranked {
		g.Go(func() error {
			rec, err := e.lookupMetadata(gctx, &ranked[i].Movie)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	items := make([]EnrichedItem, 0, len(ranked))
	for i, rec := range records {
		if rec == nil {
			continue
		}
		items = append(items, EnrichedItem{Candidate: ranked[i], Metadata: rec})
	}

	if dropped := len(ranked) - len(items); dropped > 0 {
		e.logger.Debug().Int("dropped", dropped).Int("kept", len(items)).Msg("titles without metadata dropped")
	}

	return items, nil
}

// EnrichWithTrailer attaches a trailer reference to every item. A missing
// trailer never drops an item; the reference then only carries a search URL.
func (e *Enricher) EnrichWithTrailer(ctx context.Context, items []EnrichedItem) ([]EnrichedRecommendation, error) {
	trailers := make([]TrailerRef, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for i := range items {
		g.Go(func() error {
			ref, err := e.lookupTrailer(gctx, &items[i].Candidate.Movie)
			if err != nil {
				return err
			}
			trailers[i] = ref
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	out := make([]EnrichedRecommendation, len(items))
	for i := range items {
		out[i] = EnrichedRecommendation{
			Candidate: items[i].Candidate,
			Metadata:  items[i].Metadata,
			Trailer:   trailers[i],
			Reasons:   append([]Reason(nil), items[i].Candidate.Reasons...),
		}
	}
	return out, nil
}

func (e *Enricher) lookupMetadata(ctx context.Context, m *Movie) (*SecondaryRecord, error) {
	key := MetadataKey(m.Title, m.Year())
	if rec, ok := e.metadataCache.Get(key); ok {
		return rec, nil
	}

	rec, err := e.metadata.LookupSecondaryMetadata(ctx, m.Title, m.Year())
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx.Err())
		}
		e.logger.Warn().
			Err(err).
			Str("title", m.Title).
			Int("year", m.Year()).
			Msg("metadata lookup failed, dropping title")
		return nil, nil
	}

	e.metadataCache.Set(key, rec)
	return rec, nil
}

func (e *Enricher) lookupTrailer(ctx context.Context, m *Movie) (TrailerRef, error) {
	query := TrailerQuery(m.Title, m.Year())
	if ref, ok := e.trailerCache.Get(query); ok {
		return ref, nil
	}

	videoID, err := e.videos.SearchVideo(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return TrailerRef{}, cancelled(ctx.Err())
		}
		e.logger.Warn().
			Err(err).
			Str("query", query).
			Msg("trailer search failed, using search link")
		return NewTrailerRef(query, ""), nil
	}

	ref := NewTrailerRef(query, videoID)
	e.trailerCache.Set(query, ref)
	return ref, nil
}

// MetadataKey is the natural cache key of a metadata lookup.
func MetadataKey(title string, year int) string {
	y := ""
	if year > 0 {
		y = strconv.Itoa(year)
	}
	return NormalizeTitle(title) + "|" + y
}

// TrailerQuery builds the video search phrase for a title.
func TrailerQuery(title string, year int) string {
	parts := []string{strings.TrimSpace(title)}
	if year > 0 {
		parts = append(parts, strconv.Itoa(year))
	}
	parts = append(parts, "official trailer")
	return strings.Join(parts, " ")
}

// NewTrailerRef builds a reference for query. An empty videoID yields the
// search-link-only fallback.
func NewTrailerRef(query, videoID string) TrailerRef {
	ref := TrailerRef{SearchURL: youtubeSearchBase + url.QueryEscape(query)}
	if videoID != "" {
		ref.VideoID = videoID
		ref.EmbedURL = youtubeEmbedBase + url.PathEscape(videoID)
		ref.WatchURL = youtubeWatchBase + url.QueryEscape(videoID)
	}
	return ref
}
