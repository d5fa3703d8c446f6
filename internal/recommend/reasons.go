// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"fmt"
	"slices"
)

// ReasonKind identifies why a candidate was surfaced or boosted.
type ReasonKind uint8

// Reason kinds. Source kinds are attached by the aggregator, the rest by the scorer.
const (
	ReasonUnknown ReasonKind = iota

	// Aggregator sources.
	ReasonPopularInGenres
	ReasonPopularWorldwide
	ReasonTrending
	ReasonFavoriteMatch   // Subject: favorite title
	ReasonFansAlsoEnjoyed // Subject: favorite title
	ReasonSimilarTo       // Subject: favorite title
	ReasonGenreOverlap    // Subject: genre id

	// Personalization.
	ReasonFavoriteTitle
	ReasonWatchedGenre // Subject: genre id, Value: watch count
	ReasonBroadMix
	ReasonRatingFit // Value: boost applied

	// Quality.
	ReasonHighRating   // Value: rating
	ReasonSolidRating  // Value: rating
	ReasonManyVotes    // Value: vote count
	ReasonFreshRelease // Value: release year

	// Selection.
	ReasonBalancesMix
)

var reasonKindNames = map[ReasonKind]string{
	ReasonUnknown:          "unknown",
	ReasonPopularInGenres:  "popular_in_genres",
	ReasonPopularWorldwide: "popular_worldwide",
	ReasonTrending:         "trending",
	ReasonFavoriteMatch:    "favorite_match",
	ReasonFansAlsoEnjoyed:  "fans_also_enjoyed",
	ReasonSimilarTo:        "similar_to",
	ReasonGenreOverlap:     "genre_overlap",
	ReasonFavoriteTitle:    "favorite_title",
	ReasonWatchedGenre:     "watched_genre",
	ReasonBroadMix:         "broad_mix",
	ReasonRatingFit:        "rating_fit",
	ReasonHighRating:       "high_rating",
	ReasonSolidRating:      "solid_rating",
	ReasonManyVotes:        "many_votes",
	ReasonFreshRelease:     "fresh_release",
	ReasonBalancesMix:      "balances_mix",
}

// String returns the stable snake_case name of the kind.
func (k ReasonKind) String() string {
	if name, ok := reasonKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("reason(%d)", uint8(k))
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k ReasonKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *ReasonKind) UnmarshalText(text []byte) error {
	for kind, name := range reasonKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown reason kind %q", text)
}

// Reason is a tagged justification. Rendering to display copy is left to the caller.
type Reason struct {
	Kind    ReasonKind `json:"kind"`
	Subject string     `json:"subject,omitempty"`
	Value   float64    `json:"value,omitempty"`
}

// appendReasons adds each reason not already present, preserving first-seen order.
func appendReasons(dst []Reason, reasons ...Reason) []Reason {
	for _, r := range reasons {
		if !slices.Contains(dst, r) {
			dst = append(dst, r)
		}
	}
	return dst
}

// HasReason reports whether reasons contains one of the given kind.
func HasReason(reasons []Reason, kind ReasonKind) bool {
	return slices.ContainsFunc(reasons, func(r Reason) bool { return r.Kind == kind })
}
