// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package present

// tmdbGenres is TMDB's movie genre list (/genre/movie/list). The ids have
// been stable for years, so they are kept here instead of fetched per request.
var tmdbGenres = map[string]string{
	"28":    "Action",
	"12":    "Adventure",
	"16":    "Animation",
	"35":    "Comedy",
	"80":    "Crime",
	"99":    "Documentary",
	"18":    "Drama",
	"10751": "Family",
	"14":    "Fantasy",
	"36":    "History",
	"27":    "Horror",
	"10402": "Music",
	"9648":  "Mystery",
	"10749": "Romance",
	"878":   "Science Fiction",
	"10770": "TV Movie",
	"53":    "Thriller",
	"10752": "War",
	"37":    "Western",
}

// GenreName returns the display name for a genre id, or the id itself when unknown.
func GenreName(id string) string {
	if name, ok := tmdbGenres[id]; ok {
		return name
	}
	return id
}

// GenreNames maps ids to display names, keeping order.
func GenreNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, GenreName(id))
	}
	return names
}
