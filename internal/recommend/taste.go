// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

// GenreWeights counts how many watched titles carry each genre.
func GenreWeights(watched []WatchedEntry) map[string]float64 {
	weights := make(map[string]float64)
	for i := range watched {
		seen := make(map[string]struct{}, len(watched[i].Genres))
		for _, g := range watched[i].Genres {
			if g == "" {
				continue
			}
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			weights[g]++
		}
	}
	return weights
}

// AveragePreferredRating is the mean of the user's own ratings.
// The bool is false when no watched title was rated.
func AveragePreferredRating(watched []WatchedEntry) (float64, bool) {
	var sum float64
	var n int
	for i := range watched {
		if watched[i].Rating == nil {
			continue
		}
		sum += *watched[i].Rating
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
