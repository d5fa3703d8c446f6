// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package present

import (
	"fmt"

	"github.com/tomtom215/reelpick/internal/recommend"
)

// ReasonText renders one reason as display copy. Unknown kinds render as "".
func ReasonText(r recommend.Reason) string {
	switch r.Kind {
	case recommend.ReasonPopularInGenres:
		return "Popular in your chosen genres"
	case recommend.ReasonPopularWorldwide:
		return "Popular worldwide this week"
	case recommend.ReasonTrending:
		return "Trending this week"
	case recommend.ReasonFavoriteMatch:
		return fmt.Sprintf(`Because "%s" is in your favorites`, r.Subject)
	case recommend.ReasonFansAlsoEnjoyed:
		return fmt.Sprintf(`Fans of "%s" also enjoyed`, r.Subject)
	case recommend.ReasonSimilarTo:
		return fmt.Sprintf(`Similar picks to "%s"`, r.Subject)
	case recommend.ReasonGenreOverlap:
		return fmt.Sprintf("Matches your pick: %s", GenreName(r.Subject))
	case recommend.ReasonFavoriteTitle:
		return "One of your favorite titles"
	case recommend.ReasonWatchedGenre:
		return fmt.Sprintf("You often watch %s", GenreName(r.Subject))
	case recommend.ReasonBroadMix:
		return "Fits a broad mix of genres"
	case recommend.ReasonRatingFit:
		return "Close to how you rate movies"
	case recommend.ReasonHighRating:
		return fmt.Sprintf("Well loved by viewers (%.1f/10)", r.Value)
	case recommend.ReasonSolidRating:
		return fmt.Sprintf("Solid viewer scores (%.1f/10)", r.Value)
	case recommend.ReasonManyVotes:
		return "Backed by lots of community votes"
	case recommend.ReasonFreshRelease:
		return fmt.Sprintf("Fresh release from %d", int(r.Value))
	case recommend.ReasonBalancesMix:
		return "Balances the mix"
	default:
		return ""
	}
}

// ReasonTexts renders up to limit distinct, non-empty lines. limit <= 0 means all.
func ReasonTexts(reasons []recommend.Reason, limit int) []string {
	seen := make(map[string]struct{}, len(reasons))
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		text := ReasonText(r)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
