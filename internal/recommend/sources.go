// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import "context"

// QueryKind selects the movie catalog route.
type QueryKind int

const (
	// QueryDiscover lists popular titles, optionally filtered by genre.
	QueryDiscover QueryKind = iota
	// QueryTrending lists this week's trending titles.
	QueryTrending
	// QuerySearch searches titles by Text.
	QuerySearch
	// QueryRecommendations lists titles the catalog recommends for MovieID.
	QueryRecommendations
	// QuerySimilar lists titles similar to MovieID.
	QuerySimilar
)

// String returns the query kind name used in logs and metrics.
func (k QueryKind) String() string {
	switch k {
	case QueryDiscover:
		return "discover"
	case QueryTrending:
		return "trending"
	case QuerySearch:
		return "search"
	case QueryRecommendations:
		return "recommendations"
	case QuerySimilar:
		return "similar"
	default:
		return "unknown"
	}
}

// Query is the parameter bag for MovieCatalog.SearchOrDiscover.
type Query struct {
	Kind QueryKind

	// Genres filters discovery. Empty means all genres.
	Genres []string

	// Text is the search phrase for QuerySearch.
	Text string

	// MovieID anchors QueryRecommendations and QuerySimilar.
	MovieID int

	// Page is 1-based. Zero means the first page.
	Page int

	// MinVoteCount is the vote floor for QueryDiscover.
	MinVoteCount int
}

// MovieCatalog answers every movie listing query with a uniform result shape.
type MovieCatalog interface {
	SearchOrDiscover(ctx context.Context, q Query) ([]Movie, error)
}

// MetadataCatalog looks up secondary metadata by title and year.
// A nil record with a nil error means the catalog has no match.
// Year 0 means unknown.
type MetadataCatalog interface {
	LookupSecondaryMetadata(ctx context.Context, title string, year int) (*SecondaryRecord, error)
}

// VideoCatalog finds the best matching video for a free-text query.
// An empty id with a nil error means no playable video was found.
type VideoCatalog interface {
	SearchVideo(ctx context.Context, query string) (string, error)
}

// TasteProfile supplies a user's watch history.
type TasteProfile interface {
	WatchedMovies(ctx context.Context, userID string) ([]WatchedEntry, error)
}
