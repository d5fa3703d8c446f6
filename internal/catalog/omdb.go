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

// omdbNotAvailable is OMDb's placeholder for a missing field.
const omdbNotAvailable = "N/A"

// OMDb is the secondary metadata catalog.
type OMDb struct {
	http   *httpClient
	apiKey string
}

var _ recommend.MetadataCatalog = (*OMDb)(nil)

// NewOMDb creates an OMDb client.
func NewOMDb(cfg *config.CatalogClientConfig, breakerCfg *config.BreakerConfig, logger zerolog.Logger) *OMDb {
	return &OMDb{
		http:   newHTTPClient("omdb", cfg, breakerCfg, logger),
		apiKey: cfg.APIKey,
	}
}

// omdbResponse mirrors OMDb's title lookup. Failures come back with
// HTTP 200, Response "False" and a message in Error.
type omdbResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Awards     string `json:"Awards"`
	Poster     string `json:"Poster"`
	Metascore  string `json:"Metascore"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
	IMDbID     string `json:"imdbID"`
	Ratings    []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
}

func (r *omdbResponse) toRecord() *recommend.SecondaryRecord {
	rec := &recommend.SecondaryRecord{
		Title:      r.Title,
		Year:       r.Year,
		Rated:      naToEmpty(r.Rated),
		Released:   naToEmpty(r.Released),
		Runtime:    naToEmpty(r.Runtime),
		Genre:      naToEmpty(r.Genre),
		Director:   naToEmpty(r.Director),
		Writer:     naToEmpty(r.Writer),
		Actors:     naToEmpty(r.Actors),
		Plot:       naToEmpty(r.Plot),
		Language:   naToEmpty(r.Language),
		Country:    naToEmpty(r.Country),
		Awards:     naToEmpty(r.Awards),
		Poster:     naToEmpty(r.Poster),
		Metascore:  naToEmpty(r.Metascore),
		IMDbRating: naToEmpty(r.IMDbRating),
		IMDbVotes:  naToEmpty(r.IMDbVotes),
		IMDbID:     r.IMDbID,
	}
	for _, rating := range r.Ratings {
		rec.Ratings = append(rec.Ratings, recommend.ExternalRating{Source: rating.Source, Value: rating.Value})
	}
	return rec
}

func naToEmpty(s string) string {
	if s == omdbNotAvailable {
		return ""
	}
	return s
}

// LookupSecondaryMetadata looks a title up by exact name and, when known, year.
// A title OMDb does not know yields (nil, nil).
func (o *OMDb) LookupSecondaryMetadata(ctx context.Context, title string, year int) (*recommend.SecondaryRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", o.apiKey)
	params.Set("t", title)
	params.Set("type", "movie")
	params.Set("plot", "short")
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}

	var resp omdbResponse
	if err := o.http.getJSON(ctx, "lookup", "/", params, &resp); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("omdb lookup: %w", err)
	}

	if !strings.EqualFold(resp.Response, "True") {
		if isOMDbNotFound(resp.Error) {
			return nil, nil
		}
		if resp.Error == "" {
			return nil, fmt.Errorf("omdb lookup: unexpected response %q", resp.Response)
		}
		return nil, fmt.Errorf("omdb lookup: %s", resp.Error)
	}
	return resp.toRecord(), nil
}

// isOMDbNotFound matches the messages OMDb uses for a miss.
func isOMDbNotFound(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "not found") || strings.Contains(m, "incorrect imdb id")
}

// BreakerState reports the OMDb circuit breaker state.
func (o *OMDb) BreakerState() string {
	return o.http.breaker.State()
}
