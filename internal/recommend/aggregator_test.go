// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestAggregator(catalog MovieCatalog) *Aggregator {
	a := NewAggregator(catalog, *DefaultConfig(), testLogger())
	a.now = func() time.Time { return fixedNow }
	return a
}

func findCandidate(t *testing.T, candidates []Candidate, id int) Candidate {
	t.Helper()
	for _, c := range candidates {
		if c.Movie.ID == id {
			return c
		}
	}
	t.Fatalf("candidate %d not found", id)
	return Candidate{}
}

// --- Test: candidatePool ---

func TestCandidatePool_AccumulatesWeightedScores(t *testing.T) {
	t.Parallel()

	pool := newCandidatePool()
	m := movie(42, "Heat", 8.0, "80")

	pool.add(m, 10, 1.0, Reason{Kind: ReasonPopularInGenres})
	pool.add(m, 8, 1.4, Reason{Kind: ReasonPopularInGenres}, Reason{Kind: ReasonFavoriteMatch, Subject: "Heat"})

	got := pool.sorted()
	if len(got) != 1 {
		t.Fatalf("sorted() returned %d candidates, want 1", len(got))
	}
	if math.Abs(got[0].Score-21.2) > 1e-9 {
		t.Errorf("Score = %f, want 21.2", got[0].Score)
	}

	want := []Reason{{Kind: ReasonPopularInGenres}, {Kind: ReasonFavoriteMatch, Subject: "Heat"}}
	if len(got[0].Reasons) != len(want) {
		t.Fatalf("Reasons = %v, want %v", got[0].Reasons, want)
	}
	for i := range want {
		if got[0].Reasons[i] != want[i] {
			t.Errorf("Reasons[%d] = %v, want %v", i, got[0].Reasons[i], want[i])
		}
	}
}

func TestCandidatePool_DropsMoviesWithoutGenres(t *testing.T) {
	t.Parallel()

	pool := newCandidatePool()
	pool.add(movie(1, "No Genres", 7), 10, 1)
	pool.add(movie(2, "Drama", 7, "18"), 10, 1)

	got := pool.sorted()
	if len(got) != 1 || got[0].Movie.ID != 2 {
		t.Errorf("sorted() = %+v, want only movie 2", got)
	}
}

func TestCandidatePool_SortOrder(t *testing.T) {
	t.Parallel()

	pool := newCandidatePool()
	pool.add(movie(3, "C", 5, "1"), 5, 1)
	pool.add(movie(1, "A", 5, "1"), 5, 1)
	pool.add(movie(2, "B", 5, "1"), 9, 1)

	got := pool.sorted()
	wantIDs := []int{2, 1, 3}
	for i, id := range wantIDs {
		if got[i].Movie.ID != id {
			t.Errorf("sorted()[%d].ID = %d, want %d", i, got[i].Movie.ID, id)
		}
	}
}

// --- Test: DiscoverCandidates ---

func TestDiscoverCandidates_MergesSources(t *testing.T) {
	t.Parallel()

	action := movie(1, "Speed", 7.2, "28")
	madMax := movie(76341, "Mad Max: Fury Road", 7.6, "28", "12")
	related := movie(3, "The Road Warrior", 7.4, "28")
	bare := Movie{ID: 4, Title: "Unlabeled", Rating: 9}

	catalog := &fakeCatalog{
		discover:        []Movie{action, bare},
		search:          map[string][]Movie{"Mad Max": {madMax}},
		recommendations: map[int][]Movie{76341: {related}},
		similar:         map[int][]Movie{76341: {action}},
	}
	a := newTestAggregator(catalog)

	got, err := a.DiscoverCandidates(context.Background(), ScoringContext{
		SelectedGenres: []string{"28"},
		FavoriteTitles: []string{"Mad Max"},
	})
	if err != nil {
		t.Fatalf("DiscoverCandidates() error = %v, want nil", err)
	}
	if len(got) != 3 {
		t.Fatalf("DiscoverCandidates() returned %d candidates, want 3", len(got))
	}

	for _, c := range got {
		if c.Movie.ID == bare.ID {
			t.Error("candidate without genres should be dropped")
		}
	}

	speed := findCandidate(t, got, action.ID)
	base, _ := a.baseScore(action, []string{"28"}, fixedNow)
	if want := base*1.0 + base*1.1; math.Abs(speed.Score-want) > 1e-9 {
		t.Errorf("Speed score = %f, want %f", speed.Score, want)
	}
	for _, kind := range []ReasonKind{ReasonPopularInGenres, ReasonGenreOverlap, ReasonSimilarTo} {
		if !HasReason(speed.Reasons, kind) {
			t.Errorf("Speed reasons %v missing %v", speed.Reasons, kind)
		}
	}

	fav := findCandidate(t, got, madMax.ID)
	if !HasReason(fav.Reasons, ReasonFavoriteMatch) {
		t.Errorf("Mad Max reasons %v missing favorite_match", fav.Reasons)
	}
	if fav.Reasons[0].Subject != "Mad Max" {
		t.Errorf("favorite reason subject = %q, want %q", fav.Reasons[0].Subject, "Mad Max")
	}

	roadWarrior := findCandidate(t, got, related.ID)
	if !HasReason(roadWarrior.Reasons, ReasonFansAlsoEnjoyed) {
		t.Errorf("Road Warrior reasons %v missing fans_also_enjoyed", roadWarrior.Reasons)
	}

	if n := catalog.kinds()[QueryTrending]; n != 0 {
		t.Errorf("trending queried %d times, want 0 when preferences are given", n)
	}
}

func TestDiscoverCandidates_ColdStartUsesTrending(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{
		discover: []Movie{movie(1, "Popular", 7, "18")},
		trending: []Movie{movie(2, "Trending", 7, "35")},
	}
	a := newTestAggregator(catalog)

	got, err := a.DiscoverCandidates(context.Background(), ScoringContext{})
	if err != nil {
		t.Fatalf("DiscoverCandidates() error = %v, want nil", err)
	}

	if !HasReason(findCandidate(t, got, 1).Reasons, ReasonPopularWorldwide) {
		t.Error("discovery result should be tagged popular_worldwide without genres")
	}
	if !HasReason(findCandidate(t, got, 2).Reasons, ReasonTrending) {
		t.Error("trending result should be tagged trending")
	}
	if n := catalog.kinds()[QueryTrending]; n != 1 {
		t.Errorf("trending queried %d times, want 1", n)
	}
}

func TestDiscoverCandidates_FavoritesCappedAndTagged(t *testing.T) {
	t.Parallel()

	hits := make([]Movie, 7)
	for i := range hits {
		hits[i] = movie(100+i, "Hit", 6, "18")
	}
	catalog := &fakeCatalog{search: map[string][]Movie{"A": hits}}
	a := newTestAggregator(catalog)

	favorites := []string{"A", " a ", "B", "C", "D", "E", "F", "G", "H"}
	got, err := a.DiscoverCandidates(context.Background(), ScoringContext{FavoriteTitles: favorites})
	if err != nil {
		t.Fatalf("DiscoverCandidates() error = %v, want nil", err)
	}

	if n := catalog.kinds()[QuerySearch]; n != 6 {
		t.Errorf("search issued %d times, want 6", n)
	}

	tagged := 0
	for _, c := range got {
		if HasReason(c.Reasons, ReasonFavoriteMatch) {
			tagged++
		}
	}
	if tagged != 5 {
		t.Errorf("tagged %d search hits, want 5", tagged)
	}
}

func TestDiscoverCandidates_SkipsFailedSubQueries(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{
		discover: []Movie{movie(1, "Still Here", 7, "18")},
		errs: map[QueryKind]error{
			QuerySearch: errUpstream,
		},
	}
	a := newTestAggregator(catalog)

	got, err := a.DiscoverCandidates(context.Background(), ScoringContext{FavoriteTitles: []string{"Broken"}})
	if err != nil {
		t.Fatalf("DiscoverCandidates() error = %v, want nil", err)
	}
	if len(got) != 1 || got[0].Movie.ID != 1 {
		t.Errorf("DiscoverCandidates() = %+v, want the discovery result only", got)
	}
	if n := catalog.kinds()[QueryRecommendations]; n != 0 {
		t.Errorf("follow-ups issued after failed search: %d", n)
	}
}

func TestDiscoverCandidates_AllSourcesFailing(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{errs: map[QueryKind]error{
		QueryDiscover: errUpstream,
		QueryTrending: errUpstream,
	}}
	a := newTestAggregator(catalog)

	got, err := a.DiscoverCandidates(context.Background(), ScoringContext{})
	if err != nil {
		t.Fatalf("DiscoverCandidates() error = %v, want nil", err)
	}
	if len(got) != 0 {
		t.Errorf("DiscoverCandidates() returned %d candidates, want 0", len(got))
	}
}

func TestDiscoverCandidates_Cancellation(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{block: true}
	a := newTestAggregator(catalog)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	got, err := a.DiscoverCandidates(ctx, ScoringContext{
		SelectedGenres: []string{"28"},
		FavoriteTitles: []string{"Mad Max", "Alien"},
	})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("DiscoverCandidates() error = %v, want ErrCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v should wrap context.Canceled", err)
	}
	if got != nil {
		t.Errorf("DiscoverCandidates() returned %d candidates alongside cancellation", len(got))
	}
}

func TestDiscoverCandidates_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	a := newTestAggregator(catalog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.DiscoverCandidates(ctx, ScoringContext{}); !IsCancellation(err) {
		t.Errorf("DiscoverCandidates() error = %v, want cancellation", err)
	}
	if catalog.calls != 0 {
		t.Errorf("catalog called %d times after cancellation", catalog.calls)
	}
}

func TestDiscoverCandidates_DeterministicAcrossCompletionOrder(t *testing.T) {
	t.Parallel()

	shared := movie(7, "Shared", 7.7, "28", "53")
	newCatalog := func(delays map[QueryKind]time.Duration) *fakeCatalog {
		return &fakeCatalog{
			discover:        []Movie{shared, movie(8, "Other", 6.1, "28")},
			search:          map[string][]Movie{"Heat": {movie(9, "Heat", 8.3, "80", "53"), shared}},
			recommendations: map[int][]Movie{9: {shared}},
			similar:         map[int][]Movie{9: {shared, movie(10, "Ronin", 6.9, "53")}},
			delays:          delays,
		}
	}
	sc := ScoringContext{SelectedGenres: []string{"53"}, FavoriteTitles: []string{"Heat"}}

	fastSearch, err := newTestAggregator(newCatalog(map[QueryKind]time.Duration{
		QueryDiscover: 15 * time.Millisecond,
	})).DiscoverCandidates(context.Background(), sc)
	if err != nil {
		t.Fatalf("DiscoverCandidates() error = %v", err)
	}
	slowSearch, err := newTestAggregator(newCatalog(map[QueryKind]time.Duration{
		QuerySearch:  10 * time.Millisecond,
		QuerySimilar: 5 * time.Millisecond,
	})).DiscoverCandidates(context.Background(), sc)
	if err != nil {
		t.Fatalf("DiscoverCandidates() error = %v", err)
	}

	if len(fastSearch) != len(slowSearch) {
		t.Fatalf("candidate counts differ: %d vs %d", len(fastSearch), len(slowSearch))
	}
	for i := range fastSearch {
		if fastSearch[i].Movie.ID != slowSearch[i].Movie.ID || fastSearch[i].Score != slowSearch[i].Score {
			t.Errorf("candidate %d differs: %d/%v vs %d/%v", i,
				fastSearch[i].Movie.ID, fastSearch[i].Score, slowSearch[i].Movie.ID, slowSearch[i].Score)
		}
	}
}

func TestDiscoverCandidates_SeedPicksDiscoveryPage(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	a := newTestAggregator(catalog)

	if _, err := a.DiscoverCandidates(context.Background(), ScoringContext{
		SelectedGenres: []string{"28"},
		Seed:           ptr(0.42),
	}); err != nil {
		t.Fatalf("DiscoverCandidates() error = %v", err)
	}

	for _, q := range catalog.queries {
		if q.Kind == QueryDiscover {
			if q.Page != 2 {
				t.Errorf("discover page = %d, want 2", q.Page)
			}
			if q.MinVoteCount != 150 {
				t.Errorf("discover min votes = %d, want 150", q.MinVoteCount)
			}
		}
	}
}

// --- Test: base score ---

func TestBaseScore(t *testing.T) {
	t.Parallel()

	a := newTestAggregator(&fakeCatalog{})

	m := Movie{ID: 1, Title: "X", Genres: []string{"28", "12"}, Rating: 8, Popularity: 100, VoteCount: 999, ReleaseDate: "2018-06-01"}
	got, overlap := a.baseScore(m, []string{"28"}, fixedNow)

	// 8*0.9 + 100*0.03 + 1*4.2 + log10(1000)*1.5 + 2/(1+8/8)
	want := 7.2 + 3 + 4.2 + 4.5 + 1
	if math.Abs(got-want) > 0.01 {
		t.Errorf("baseScore() = %f, want ~%f", got, want)
	}
	if len(overlap) != 1 || overlap[0] != (Reason{Kind: ReasonGenreOverlap, Subject: "28"}) {
		t.Errorf("overlap = %v, want genre_overlap(28)", overlap)
	}

	noGenres, overlap := a.baseScore(m, nil, fixedNow)
	if math.Abs(got-noGenres-4.2) > 1e-9 || len(overlap) != 0 {
		t.Errorf("overlap should only count with selected genres: %f vs %f", got, noGenres)
	}
}

func TestRecency(t *testing.T) {
	t.Parallel()

	a := newTestAggregator(&fakeCatalog{})

	tests := []struct {
		name string
		date string
		want float64
	}{
		{"unknown date", "", 0},
		{"unparseable date", "soon", 0},
		{"future release", "2027-01-01", 2},
		{"released today", "2026-06-01", 2},
		{"bare year", "2010", 2 / (1 + (16.41 / 8))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := a.recency(Movie{ReleaseDate: tt.date}, fixedNow)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("recency(%q) = %f, want %f", tt.date, got, tt.want)
			}
		})
	}
}

// --- Test: helpers ---

func TestDiscoveryPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		seed  *float64
		pages int
		want  int
	}{
		{"no seed", nil, 3, 1},
		{"single page", ptr(0.9), 1, 1},
		{"low fraction", ptr(0.1), 3, 1},
		{"middle fraction", ptr(0.42), 3, 2},
		{"high fraction", ptr(0.99), 3, 3},
		{"integer part ignored", ptr(17.5), 3, 2},
		{"negative seed", ptr(-0.8), 3, 3},
		{"nan", ptr(math.NaN()), 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DiscoveryPage(tt.seed, tt.pages); got != tt.want {
				t.Errorf("DiscoveryPage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeFavorites(t *testing.T) {
	t.Parallel()

	got := NormalizeFavorites([]string{"  Mad Max ", "", "mad  max", "Alien", "Heat"}, 2)
	want := []string{"Mad Max", "Alien"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeFavorites() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeFavorites()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	if got := NormalizeTitle("  The   Matrix\tReloaded "); got != "the matrix reloaded" {
		t.Errorf("NormalizeTitle() = %q", got)
	}
}
