// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package present

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tomtom215/reelpick/internal/recommend"
)

// PosterBaseURL prefixes TMDB poster paths.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

// MaxCardReasons is how many reason lines a card shows.
const MaxCardReasons = 3

var printer = message.NewPrinter(language.English)

// Card is the display model for one recommendation.
type Card struct {
	ID         int                  `json:"id"`
	Title      string               `json:"title"`
	Year       int                  `json:"year,omitempty"`
	Genres     []string             `json:"genres"`
	Rating     float64              `json:"rating"`
	Votes      string               `json:"votes,omitempty"`
	Score      float64              `json:"score"`
	Plot       string               `json:"plot,omitempty"`
	PosterURL  string               `json:"poster_url,omitempty"`
	Director   string               `json:"director,omitempty"`
	Runtime    string               `json:"runtime,omitempty"`
	IMDbRating string               `json:"imdb_rating,omitempty"`
	Trailer    recommend.TrailerRef `json:"trailer"`
	Reasons    []string             `json:"reasons"`
}

// Page is the display model for a whole result.
type Page struct {
	RequestID string   `json:"request_id"`
	Seed      *float64 `json:"seed,omitempty"`
	Cards     []Card   `json:"cards"`

	// Message is set when there is nothing to show.
	Message string `json:"message,omitempty"`
}

// EmptyMessage is shown when no recommendation survived the pipeline.
const EmptyMessage = "No matches this time. Try picking other genres or adding a few favorite titles."

// NewCard builds the display model for rec. Secondary metadata wins over
// catalog fields when both are present.
//
//nolint:gocritic // hugeParam: value keeps call sites simple
func NewCard(rec recommend.EnrichedRecommendation) Card {
	m := rec.Candidate.Movie
	card := Card{
		ID:      m.ID,
		Title:   m.Title,
		Year:    m.Year(),
		Genres:  GenreNames(m.Genres),
		Rating:  m.Rating,
		Score:   rec.Candidate.Score,
		Plot:    m.Overview,
		Trailer: rec.Trailer,
		Reasons: ReasonTexts(rec.Reasons, MaxCardReasons),
	}
	if m.VoteCount > 0 {
		card.Votes = VoteLine(m.VoteCount)
	}
	if m.PosterPath != "" {
		card.PosterURL = PosterBaseURL + m.PosterPath
	}

	if md := rec.Metadata; md != nil {
		if md.Plot != "" {
			card.Plot = md.Plot
		}
		if card.PosterURL == "" && strings.HasPrefix(md.Poster, "http") {
			card.PosterURL = md.Poster
		}
		card.Director = md.Director
		card.Runtime = md.Runtime
		card.IMDbRating = md.IMDbRating
	}
	return card
}

// VoteLine renders a vote count with grouped digits, e.g. "25,000 votes".
func VoteLine(votes int) string {
	if votes == 1 {
		return "1 vote"
	}
	return printer.Sprintf("%d votes", votes)
}

// NewPage builds the display model for a result.
func NewPage(result *recommend.Result) Page {
	page := Page{
		RequestID: result.RequestID,
		Seed:      result.Seed,
		Cards:     make([]Card, 0, len(result.Recommendations)),
	}
	for i := range result.Recommendations {
		page.Cards = append(page.Cards, NewCard(result.Recommendations[i]))
	}
	if result.Empty() {
		page.Message = EmptyMessage
	}
	return page
}
