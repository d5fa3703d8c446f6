// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package reranking implements greedy diversity selection over scored items.
//
// The selector knows nothing about movies beyond an id, a score and a genre
// list, so the scoring stage can hand it any item shape without an import
// cycle.
package reranking

import (
	"slices"
)

// maxSelectSize bounds slice allocations; k is also bounded by len(items).
const maxSelectSize = 10000

// Item is one selectable entry.
type Item struct {
	ID     int
	Score  float64
	Genres []string
}

// Pick is one selection, in pick order.
type Pick struct {
	// Index is the position of the item in the input slice.
	Index int

	// Score is the item's score minus Penalty.
	Score float64

	// Penalty is what was subtracted for genres already picked.
	Penalty float64

	// Prior is how many picks were made before this one.
	Prior int
}

// GenrePenalty selects items greedily, charging each candidate a fixed
// penalty for every earlier pick it shares a genre with:
//
//	adjusted(i) = score(i) - penalty * sum(timesChosen[g] for g in genres(i))
//
// On each round the highest adjusted score wins; ties go to the lower id.
type GenrePenalty struct {
	penalty float64
}

// NewGenrePenalty creates a selector. Negative penalties are clamped to zero.
func NewGenrePenalty(penalty float64) *GenrePenalty {
	if penalty < 0 {
		penalty = 0
	}
	return &GenrePenalty{penalty: penalty}
}

// Name returns the selector identifier.
func (s *GenrePenalty) Name() string {
	return "genre_penalty"
}

// Select picks up to k items. k <= 0 or k > len(items) selects every item.
func (s *GenrePenalty) Select(items []Item, k int) []Pick {
	if len(items) == 0 {
		return nil
	}
	if k <= 0 || k > len(items) {
		k = len(items)
	}
	if k > maxSelectSize {
		k = maxSelectSize
	}

	genreSets := make([][]string, len(items))
	for i := range items {
		genreSets[i] = distinct(items[i].Genres)
	}

	chosen := make(map[string]int)
	taken := make([]bool, len(items))
	picks := make([]Pick, 0, k)

	for len(picks) < k {
		bestIdx := -1
		var bestScore, bestPenalty float64

		for i := range items {
			if taken[i] {
				continue
			}

			penalty := 0.0
			for _, g := range genreSets[i] {
				penalty += float64(chosen[g]) * s.penalty
			}
			adjusted := items[i].Score - penalty

			if bestIdx < 0 || adjusted > bestScore ||
				(adjusted == bestScore && items[i].ID < items[bestIdx].ID) {
				bestIdx = i
				bestScore = adjusted
				bestPenalty = penalty
			}
		}

		if bestIdx < 0 {
			break
		}

		picks = append(picks, Pick{
			Index:   bestIdx,
			Score:   bestScore,
			Penalty: bestPenalty,
			Prior:   len(picks),
		})
		taken[bestIdx] = true
		for _, g := range genreSets[bestIdx] {
			chosen[g]++
		}
	}

	return picks
}

// distinct returns genres without duplicates or blanks, in first-seen order.
func distinct(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g != "" && !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}
