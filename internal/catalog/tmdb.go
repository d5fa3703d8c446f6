// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// TMDB route templates.
const (
	tmdbDiscoverPath        = "/discover/movie"
	tmdbTrendingPath        = "/trending/movie/week"
	tmdbSearchPath          = "/search/movie"
	tmdbRecommendationsPath = "/movie/%d/recommendations"
	tmdbSimilarPath         = "/movie/%d/similar"
)

// tmdbGenreSeparator joins genre ids in with_genres. "|" means any of the genres.
const tmdbGenreSeparator = "|"

// TMDB is the primary movie catalog.
type TMDB struct {
	http     *httpClient
	apiKey   string
	language string
}

var _ recommend.MovieCatalog = (*TMDB)(nil)

// NewTMDB creates a TMDB client.
func NewTMDB(cfg *config.CatalogClientConfig, breakerCfg *config.BreakerConfig, logger zerolog.Logger) *TMDB {
	return &TMDB{
		http:     newHTTPClient("tmdb", cfg, breakerCfg, logger),
		apiKey:   cfg.APIKey,
		language: "en-US",
	}
}

type tmdbPage struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type tmdbMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
}

func (m *tmdbMovie) toMovie() recommend.Movie {
	genres := make([]string, 0, len(m.GenreIDs))
	for _, id := range m.GenreIDs {
		genres = append(genres, strconv.Itoa(id))
	}
	return recommend.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Genres:      genres,
		Rating:      m.VoteAverage,
		Popularity:  m.Popularity,
		VoteCount:   m.VoteCount,
		ReleaseDate: m.ReleaseDate,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
	}
}

// SearchOrDiscover answers every recommend.Query kind.
// A search with blank text and related-title lookups for an id TMDB does
// not know both return an empty list rather than an error.
func (t *TMDB) SearchOrDiscover(ctx context.Context, q recommend.Query) ([]recommend.Movie, error) {
	params := url.Values{}
	params.Set("api_key", t.apiKey)
	params.Set("language", t.language)
	params.Set("page", strconv.Itoa(max(q.Page, 1)))

	var path string
	switch q.Kind {
	case recommend.QueryDiscover:
		path = tmdbDiscoverPath
		params.Set("sort_by", "popularity.desc")
		params.Set("include_adult", "false")
		if len(q.Genres) > 0 {
			params.Set("with_genres", strings.Join(q.Genres, tmdbGenreSeparator))
		}
		if q.MinVoteCount > 0 {
			params.Set("vote_count.gte", strconv.Itoa(q.MinVoteCount))
		}
	case recommend.QueryTrending:
		path = tmdbTrendingPath
	case recommend.QuerySearch:
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, nil
		}
		path = tmdbSearchPath
		params.Set("query", text)
		params.Set("include_adult", "false")
	case recommend.QueryRecommendations, recommend.QuerySimilar:
		if q.MovieID <= 0 {
			return nil, fmt.Errorf("tmdb %s: invalid movie id %d", q.Kind, q.MovieID)
		}
		template := tmdbRecommendationsPath
		if q.Kind == recommend.QuerySimilar {
			template = tmdbSimilarPath
		}
		path = fmt.Sprintf(template, q.MovieID)
	default:
		return nil, fmt.Errorf("tmdb: unsupported query kind %s", q.Kind)
	}

	var page tmdbPage
	if err := t.http.getJSON(ctx, q.Kind.String(), path, params, &page); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tmdb %s: %w", q.Kind, err)
	}

	movies := make([]recommend.Movie, 0, len(page.Results))
	for i := range page.Results {
		if page.Results[i].ID <= 0 {
			continue
		}
		movies = append(movies, page.Results[i].toMovie())
	}
	return movies, nil
}

// BreakerState reports the TMDB circuit breaker state.
func (t *TMDB) BreakerState() string {
	return t.http.breaker.State()
}
