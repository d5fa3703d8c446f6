// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelpick/internal/metrics"
)

// Fixed merge slots. Favorite i occupies three consecutive slots starting at
// slotFavoritesBase+3*i: search, recommendations, similar.
const (
	slotDiscover = iota
	slotTrending
	slotFavoritesBase
)

const slotsPerFavorite = 3

// sourceBatch is what one sub-query contributed.
type sourceBatch struct {
	movies  []Movie
	weight  float64
	reasons []Reason
}

// Aggregator gathers candidates from the movie catalog.
type Aggregator struct {
	catalog MovieCatalog
	weights Weights
	limits  Limits
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAggregator creates an aggregator backed by catalog.
//
//nolint:gocritic // hugeParam: Config and Logger are passed once at construction
func NewAggregator(catalog MovieCatalog, cfg Config, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		catalog: catalog,
		weights: cfg.Weights,
		limits:  cfg.Limits,
		logger:  logger.With().Str("component", "aggregator").Logger(),
		now:     time.Now,
	}
}

// DiscoverCandidates issues the discovery, favorite and trending sub-queries
// concurrently and merges their results by movie id.
//
// Sub-query failures are logged and skipped. If ctx is cancelled the whole
// aggregation stops and an error wrapping ErrCancelled is returned.
//
//nolint:gocritic // hugeParam: ScoringContext is read-only
func (a *Aggregator) DiscoverCandidates(ctx context.Context, sc ScoringContext) ([]Candidate, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	genres := normalizeGenres(sc.SelectedGenres)
	favorites := NormalizeFavorites(sc.FavoriteTitles, a.limits.MaxFavorites)

	slots := make([]*sourceBatch, slotFavoritesBase+slotsPerFavorite*len(favorites))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		batch, err := a.discover(gctx, genres, sc.Seed)
		slots[slotDiscover] = batch
		return err
	})

	if len(genres) == 0 && len(favorites) == 0 {
		g.Go(func() error {
			batch, err := a.trending(gctx)
			slots[slotTrending] = batch
			return err
		})
	}

	for i, title := range favorites {
		base := slotFavoritesBase + slotsPerFavorite*i
		g.Go(func() error {
			return a.favorite(gctx, title, slots[base:base+slotsPerFavorite])
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	candidates := a.merge(slots, genres)

	a.logger.Debug().
		Int("favorites", len(favorites)).
		Strs("genres", genres).
		Int("candidates", len(candidates)).
		Msg("candidates discovered")

	return candidates, nil
}

// discover runs the broad popularity query. The seed picks the page.
func (a *Aggregator) discover(ctx context.Context, genres []string, seed *float64) (*sourceBatch, error) {
	movies, err := a.query(ctx, "discover", Query{
		Kind:         QueryDiscover,
		Genres:       genres,
		Page:         DiscoveryPage(seed, a.limits.DiscoveryPages),
		MinVoteCount: a.limits.MinVoteCount,
	})
	if err != nil {
		return nil, err
	}

	reason := Reason{Kind: ReasonPopularWorldwide}
	if len(genres) > 0 {
		reason = Reason{Kind: ReasonPopularInGenres}
	}
	return &sourceBatch{movies: movies, weight: a.weights.Discover, reasons: []Reason{reason}}, nil
}

// trending is the cold-start fallback when the user told us nothing.
func (a *Aggregator) trending(ctx context.Context) (*sourceBatch, error) {
	movies, err := a.query(ctx, "trending", Query{Kind: QueryTrending})
	if err != nil {
		return nil, err
	}
	return &sourceBatch{movies: movies, weight: a.weights.Trending, reasons: []Reason{{Kind: ReasonTrending}}}, nil
}

// favorite searches one favorite title and follows up on its top hit.
// out has exactly slotsPerFavorite entries.
func (a *Aggregator) favorite(ctx context.Context, title string, out []*sourceBatch) error {
	hits, err := a.query(ctx, "search", Query{Kind: QuerySearch, Text: title})
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return nil
	}

	tagged := hits
	if len(tagged) > a.limits.SearchResultLimit {
		tagged = tagged[:a.limits.SearchResultLimit]
	}
	out[0] = &sourceBatch{
		movies:  tagged,
		weight:  a.weights.FavoriteMatch,
		reasons: []Reason{{Kind: ReasonFavoriteMatch, Subject: title}},
	}

	top := hits[0].ID
	follow, fctx := errgroup.WithContext(ctx)

	follow.Go(func() error {
		movies, err := a.query(fctx, "recommendations", Query{Kind: QueryRecommendations, MovieID: top})
		if err != nil {
			return err
		}
		out[1] = &sourceBatch{
			movies:  movies,
			weight:  a.weights.Recommendations,
			reasons: []Reason{{Kind: ReasonFansAlsoEnjoyed, Subject: title}},
		}
		return nil
	})

	follow.Go(func() error {
		movies, err := a.query(fctx, "similar", Query{Kind: QuerySimilar, MovieID: top})
		if err != nil {
			return err
		}
		out[2] = &sourceBatch{
			movies:  movies,
			weight:  a.weights.Similar,
			reasons: []Reason{{Kind: ReasonSimilarTo, Subject: title}},
		}
		return nil
	})

	return follow.Wait()
}

// query calls the catalog and absorbs every failure except cancellation.
func (a *Aggregator) query(ctx context.Context, source string, q Query) ([]Movie, error) {
	movies, err := a.catalog.SearchOrDiscover(ctx, q)
	if err == nil {
		return movies, nil
	}
	if ctx.Err() != nil {
		return nil, cancelled(ctx.Err())
	}

	metrics.SubQueryFailures.WithLabelValues(source).Inc()
	a.logger.Warn().
		Err(err).
		Str("source", source).
		Str("query", q.Text).
		Int("movie_id", q.MovieID).
		Msg("catalog sub-query failed, skipping")
	return nil, nil
}

// merge folds the slots into one candidate list. Slots are visited in index
// order so accumulation is identical no matter which sub-query finished first.
func (a *Aggregator) merge(slots []*sourceBatch, genres []string) []Candidate {
	pool := newCandidatePool()
	now := a.now()

	for _, batch := range slots {
		if batch == nil {
			continue
		}
		for i := range batch.movies {
			m := batch.movies[i]
			base, overlap := a.baseScore(m, genres, now)
			reasons := batch.reasons
			if len(overlap) > 0 {
				reasons = append(append([]Reason(nil), batch.reasons...), overlap...)
			}
			pool.add(m, base, batch.weight, reasons...)
		}
	}

	return pool.sorted()
}

// baseScore is the source-independent score of a movie, plus the genre overlap reasons.
//
//nolint:gocritic // hugeParam: Movie is read-only
func (a *Aggregator) baseScore(m Movie, genres []string, now time.Time) (float64, []Reason) {
	w := a.weights

	score := m.Rating*w.Rating +
		m.Popularity*w.Popularity +
		math.Log10(1+float64(max(m.VoteCount, 0)))*w.VoteCount +
		a.recency(m, now)

	var overlap []Reason
	if len(genres) > 0 {
		for _, g := range m.Genres {
			if slices.Contains(genres, g) {
				overlap = append(overlap, Reason{Kind: ReasonGenreOverlap, Subject: g})
			}
		}
		score += float64(len(overlap)) * w.GenreOverlap
	}

	return score, overlap
}

// recency decays hyperbolically from RecencyMax, reaching half at RecencyHalfLifeYears.
// Unknown release dates earn nothing; future dates count as brand new.
//
//nolint:gocritic // hugeParam: Movie is read-only
func (a *Aggregator) recency(m Movie, now time.Time) float64 {
	released, ok := m.ReleaseTime()
	if !ok {
		return 0
	}
	age := now.Sub(released).Hours() / (24 * 365.25)
	if age < 0 {
		age = 0
	}
	return a.weights.RecencyMax / (1 + age/a.weights.RecencyHalfLifeYears)
}

// candidatePool accumulates weighted scores and reasons by movie id.
type candidatePool struct {
	byID map[int]*Candidate
}

func newCandidatePool() *candidatePool {
	return &candidatePool{byID: make(map[int]*Candidate)}
}

// add merges one sighting of m. Movies without genre data cannot be scored
// or diversified and are dropped here.
//
//nolint:gocritic // hugeParam: Movie is copied into the pool once
func (p *candidatePool) add(m Movie, base, weight float64, reasons ...Reason) {
	if len(m.Genres) == 0 {
		return
	}

	c, ok := p.byID[m.ID]
	if !ok {
		c = &Candidate{Movie: m}
		p.byID[m.ID] = c
	}
	c.Score += base * weight
	c.Reasons = appendReasons(c.Reasons, reasons...)
}

// sorted returns the candidates by score descending, id ascending.
func (p *candidatePool) sorted() []Candidate {
	out := make([]Candidate, 0, len(p.byID))
	for _, c := range p.byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Movie.ID < out[j].Movie.ID
	})
	return out
}

// DiscoveryPage maps a seed to a 1-based discovery page within pages.
// Without a seed the first page is used.
func DiscoveryPage(seed *float64, pages int) int {
	if seed == nil || pages <= 1 {
		return 1
	}
	s := math.Abs(*seed)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 1
	}
	_, frac := math.Modf(s)
	page := 1 + int(frac*float64(pages))
	if page > pages {
		page = pages
	}
	return page
}

// NormalizeFavorites trims titles, drops blanks and case-insensitive
// duplicates, and keeps at most limit entries in input order.
func NormalizeFavorites(titles []string, limit int) []string {
	out := make([]string, 0, min(len(titles), max(limit, 0)))
	seen := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if len(out) >= limit {
			break
		}
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := NormalizeTitle(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// normalizeGenres trims genre ids and drops blanks and duplicates.
func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" || slices.Contains(out, g) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// NormalizeTitle lower-cases a title and collapses whitespace for comparison.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
