// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"strings"
	"time"
)

const releaseDateLayout = "2006-01-02"

// Movie is a title as returned by the movie catalog.
type Movie struct {
	// ID is the catalog's stable identifier.
	ID int `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Genres holds catalog genre ids as strings (e.g. "28" for Action).
	Genres []string `json:"genres"`

	// Rating is the catalog vote average on a 0-10 scale.
	Rating float64 `json:"rating"`

	// Popularity is the catalog's unbounded popularity metric.
	Popularity float64 `json:"popularity"`

	// VoteCount is the number of votes behind Rating.
	VoteCount int `json:"vote_count"`

	// ReleaseDate is YYYY-MM-DD when known.
	ReleaseDate string `json:"release_date,omitempty"`

	Overview   string `json:"overview,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
}

// ReleaseTime parses ReleaseDate. Bare years ("1999") are accepted.
//
//nolint:gocritic // hugeParam: value receiver keeps Movie immutable
func (m Movie) ReleaseTime() (time.Time, bool) {
	s := strings.TrimSpace(m.ReleaseDate)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(releaseDateLayout, s); err == nil {
		return t, true
	}
	if len(s) >= 4 {
		if t, err := time.Parse("2006", s[:4]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Year returns the release year, or 0 when unknown.
//
//nolint:gocritic // hugeParam: value receiver keeps Movie immutable
func (m Movie) Year() int {
	t, ok := m.ReleaseTime()
	if !ok {
		return 0
	}
	return t.Year()
}

// Candidate is a movie with the score and reasons accumulated by the aggregator.
type Candidate struct {
	Movie   Movie    `json:"movie"`
	Score   float64  `json:"score"`
	Reasons []Reason `json:"reasons"`
}

// WatchedEntry is one title from a user's watch history.
type WatchedEntry struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`

	// Rating is the user's own rating, nil when they did not rate it.
	Rating *float64 `json:"rating,omitempty"`
}

// ScoringContext carries the caller's stated preferences for one request.
// It is not modified by any stage.
type ScoringContext struct {
	SelectedGenres []string       `json:"selected_genres"`
	FavoriteTitles []string       `json:"favorite_titles"`
	Seed           *float64       `json:"seed,omitempty"`
	WatchedMovies  []WatchedEntry `json:"watched_movies"`
}

// RankedCandidate is a selected candidate with its final adjusted score.
type RankedCandidate struct {
	Movie Movie `json:"movie"`

	// Score is the final score after personalization and the diversity penalty.
	Score float64 `json:"score"`

	// Penalty is the genre penalty that was subtracted at selection time.
	Penalty float64 `json:"penalty"`

	Reasons []Reason `json:"reasons"`

	// AlreadyWatched is always false: watched titles are filtered before ranking.
	AlreadyWatched bool `json:"already_watched"`
}

// ExternalRating is a rating from a third-party source carried by the metadata catalog.
type ExternalRating struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// SecondaryRecord is the metadata catalog's record for a title.
type SecondaryRecord struct {
	Title      string           `json:"title"`
	Year       string           `json:"year"`
	Rated      string           `json:"rated,omitempty"`
	Released   string           `json:"released,omitempty"`
	Runtime    string           `json:"runtime,omitempty"`
	Genre      string           `json:"genre,omitempty"`
	Director   string           `json:"director,omitempty"`
	Writer     string           `json:"writer,omitempty"`
	Actors     string           `json:"actors,omitempty"`
	Plot       string           `json:"plot,omitempty"`
	Language   string           `json:"language,omitempty"`
	Country    string           `json:"country,omitempty"`
	Awards     string           `json:"awards,omitempty"`
	Poster     string           `json:"poster,omitempty"`
	Ratings    []ExternalRating `json:"ratings,omitempty"`
	Metascore  string           `json:"metascore,omitempty"`
	IMDbRating string           `json:"imdb_rating,omitempty"`
	IMDbVotes  string           `json:"imdb_votes,omitempty"`
	IMDbID     string           `json:"imdb_id,omitempty"`
}

// TrailerRef points at a trailer. VideoID, EmbedURL and WatchURL are empty
// when no playable video was found; SearchURL is always set.
type TrailerRef struct {
	VideoID   string `json:"video_id,omitempty"`
	EmbedURL  string `json:"embed_url,omitempty"`
	WatchURL  string `json:"watch_url,omitempty"`
	SearchURL string `json:"search_url"`
}

// HasVideo reports whether a playable video was found.
func (t TrailerRef) HasVideo() bool {
	return t.VideoID != ""
}

// EnrichedItem is a ranked candidate that the metadata catalog recognized.
type EnrichedItem struct {
	Candidate RankedCandidate  `json:"candidate"`
	Metadata  *SecondaryRecord `json:"metadata"`
}

// EnrichedRecommendation is the final pipeline output. Metadata is never nil.
type EnrichedRecommendation struct {
	Candidate RankedCandidate  `json:"candidate"`
	Metadata  *SecondaryRecord `json:"metadata"`
	Trailer   TrailerRef       `json:"trailer"`
	Reasons   []Reason         `json:"reasons"`
}
