// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/tomtom215/reelpick/internal/recommend/reranking"
)

// Scorer ranks aggregated candidates for one user.
type Scorer struct {
	weights  Weights
	selector *reranking.GenrePenalty
	now      func() time.Time
	random   func() float64
}

// NewScorer creates a scorer using w.
//
//nolint:gocritic // hugeParam: Weights is passed once at construction
func NewScorer(w Weights) *Scorer {
	return &Scorer{
		weights:  w,
		selector: reranking.NewGenrePenalty(w.DiversityPenalty),
		now:      time.Now,
		random:   rand.Float64,
	}
}

// SelectTopCandidates personalizes, filters and diversifies candidates and
// returns at most maxCount of them sorted by adjusted score descending.
// maxCount <= 0 keeps every eligible candidate.
//
// With sc.Seed set the output is fully deterministic for the same inputs.
//
//nolint:gocritic // hugeParam: ScoringContext is read-only
func (s *Scorer) SelectTopCandidates(candidates []Candidate, sc ScoringContext, watched []WatchedEntry, maxCount int) []RankedCandidate {
	genreWeights := GenreWeights(watched)
	avgRating, hasAvg := AveragePreferredRating(watched)
	exclude := newWatchedSet(watched)

	favorites := make(map[string]struct{}, len(sc.FavoriteTitles))
	for _, t := range sc.FavoriteTitles {
		favorites[NormalizeTitle(t)] = struct{}{}
	}

	var seed uint32
	if sc.Seed != nil {
		seed = DeriveSeed(*sc.Seed)
	}
	now := s.now()

	pool := make([]RankedCandidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if exclude.contains(c.Movie) {
			continue
		}

		score := c.Score
		reasons := append([]Reason(nil), c.Reasons...)

		boost, personal := s.personalize(c.Movie, sc, favorites, genreWeights, avgRating, hasAvg)
		score += boost
		reasons = appendReasons(reasons, personal...)

		boost, quality := s.quality(c.Movie, now)
		score += boost
		reasons = appendReasons(reasons, quality...)

		var u float64
		if sc.Seed != nil {
			u = TieBreak(c.Movie.ID, seed)
		} else {
			u = s.random()
		}
		score += u * s.weights.TieBreak

		pool = append(pool, RankedCandidate{Movie: c.Movie, Score: score, Reasons: reasons})
	}

	if len(pool) == 0 {
		return []RankedCandidate{}
	}

	items := make([]reranking.Item, len(pool))
	for i := range pool {
		items[i] = reranking.Item{ID: pool[i].Movie.ID, Score: pool[i].Score, Genres: pool[i].Movie.Genres}
	}

	picks := s.selector.Select(items, maxCount)
	ranked := make([]RankedCandidate, 0, len(picks))
	for _, p := range picks {
		rc := pool[p.Index]
		rc.Score = p.Score
		rc.Penalty = p.Penalty
		if p.Prior > 0 && p.Penalty <= s.weights.BalancePenaltyThreshold {
			rc.Reasons = appendReasons(rc.Reasons, Reason{Kind: ReasonBalancesMix})
		}
		ranked = append(ranked, rc)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Movie.ID < ranked[j].Movie.ID
	})

	return ranked
}

// personalize applies the favorite, watched-genre, broad-mix and rating-fit boosts.
//
//nolint:gocritic // hugeParam: Movie and ScoringContext are read-only
func (s *Scorer) personalize(m Movie, sc ScoringContext, favorites map[string]struct{}, genreWeights map[string]float64, avgRating float64, hasAvg bool) (float64, []Reason) {
	w := s.weights
	var boost float64
	var reasons []Reason

	if _, ok := favorites[NormalizeTitle(m.Title)]; ok {
		boost += w.FavoriteTitle
		reasons = append(reasons, Reason{Kind: ReasonFavoriteTitle})
	}

	for _, g := range m.Genres {
		if weight, ok := genreWeights[g]; ok && weight > 0 {
			boost += w.WatchedGenre * math.Sqrt(weight)
			reasons = append(reasons, Reason{Kind: ReasonWatchedGenre, Subject: g, Value: weight})
		}
	}

	if len(sc.SelectedGenres) == 0 {
		boost += w.BroadMix * float64(len(m.Genres))
		reasons = append(reasons, Reason{Kind: ReasonBroadMix})
	}

	if hasAvg {
		fit := w.RatingFitCeiling - math.Abs(avgRating-m.Rating)
		if fit > 0 {
			boost += fit
			reasons = append(reasons, Reason{Kind: ReasonRatingFit, Value: fit})
		}
	}

	return boost, reasons
}

// quality applies the rating boost and the quality reason thresholds.
//
//nolint:gocritic // hugeParam: Movie is read-only
func (s *Scorer) quality(m Movie, now time.Time) (float64, []Reason) {
	w := s.weights
	var reasons []Reason

	switch {
	case m.Rating >= w.HighRatingThreshold:
		reasons = append(reasons, Reason{Kind: ReasonHighRating, Value: m.Rating})
	case m.Rating >= w.SolidRatingThreshold:
		reasons = append(reasons, Reason{Kind: ReasonSolidRating, Value: m.Rating})
	}

	if m.VoteCount >= w.ManyVotesThreshold {
		reasons = append(reasons, Reason{Kind: ReasonManyVotes, Value: float64(m.VoteCount)})
	}

	if year := m.Year(); year > 0 && now.Year()-year <= w.FreshReleaseYears {
		reasons = append(reasons, Reason{Kind: ReasonFreshRelease, Value: float64(year)})
	}

	return m.Rating * w.Quality, reasons
}

// DeriveSeed folds a caller seed into 32 bits.
func DeriveSeed(seed float64) uint32 {
	bits := math.Float64bits(seed)
	return uint32(bits) ^ uint32(bits>>32)
}

// TieBreak maps (id, seed) to [0, 1) with a multiply-xor-shift integer mix.
// It is stateless and deterministic. It is not cryptographic and must not be
// used where unpredictability matters.
func TieBreak(id int, seed uint32) float64 {
	x := uint32(id) ^ seed
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return float64(x) / (1 << 32)
}

// watchedSet answers "has the user already seen this?" by id or normalized title.
type watchedSet struct {
	ids    map[int]struct{}
	titles map[string]struct{}
}

func newWatchedSet(watched []WatchedEntry) watchedSet {
	ws := watchedSet{
		ids:    make(map[int]struct{}, len(watched)),
		titles: make(map[string]struct{}, len(watched)),
	}
	for i := range watched {
		if watched[i].ID != 0 {
			ws.ids[watched[i].ID] = struct{}{}
		}
		if t := NormalizeTitle(watched[i].Title); t != "" {
			ws.titles[t] = struct{}{}
		}
	}
	return ws
}

//nolint:gocritic // hugeParam: Movie is read-only
func (ws watchedSet) contains(m Movie) bool {
	if _, ok := ws.ids[m.ID]; ok {
		return true
	}
	_, ok := ws.titles[NormalizeTitle(m.Title)]
	return ok
}
