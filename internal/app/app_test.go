// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/present"
	"github.com/tomtom215/reelpick/internal/profile"
	"github.com/tomtom215/reelpick/internal/recommend"
)

const tmdbListing = `{"page":1,"results":[
	{"id":1,"title":"Alpha","genre_ids":[28],"vote_average":7.9,"vote_count":4200,"popularity":60,"release_date":"2019-05-01"},
	{"id":2,"title":"Bravo","genre_ids":[28,12],"vote_average":7.1,"vote_count":1800,"popularity":45,"release_date":"2021-07-09"},
	{"id":3,"title":"Charlie","genre_ids":[28],"vote_average":6.5,"vote_count":900,"popularity":30,"release_date":"2015-02-20"}
]}`

// newUpstreams serves TMDB under /tmdb, OMDb under /omdb and YouTube under /yt.
// OMDb only knows Alpha and Bravo.
func newUpstreams(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tmdb/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tmdbListing)
	})
	mux.HandleFunc("/omdb/", func(w http.ResponseWriter, r *http.Request) {
		switch title := r.URL.Query().Get("t"); title {
		case "Alpha", "Bravo":
			fmt.Fprintf(w, `{"Response":"True","Title":%q,"Plot":"Plot of %s","Director":"Someone"}`, title, title)
		default:
			fmt.Fprint(w, `{"Response":"False","Error":"Movie not found!"}`)
		}
	})
	mux.HandleFunc("/yt/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":{"videoId":"yt-1"}}]}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(baseURL string) *config.Config {
	client := func(path, key string) config.CatalogClientConfig {
		return config.CatalogClientConfig{
			BaseURL:        baseURL + path,
			APIKey:         key,
			Timeout:        5 * time.Second,
			MaxRetries:     1,
			RetryBaseDelay: time.Millisecond,
		}
	}
	return &config.Config{
		Catalog: config.CatalogConfig{
			TMDB:    client("/tmdb", "tmdb-key"),
			OMDb:    client("/omdb", "omdb-key"),
			YouTube: client("/yt", "yt-key"),
		},
		Breaker: config.BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			MinRequests:  100,
			FailureRatio: 1,
		},
		Cache:     config.CacheConfig{Policy: "lru", MetadataCapacity: 16, TrailerCapacity: 16},
		Recommend: *recommend.DefaultConfig(),
		Profile:   config.ProfileConfig{Backend: config.ProfileBackendStatic},
		Logging:   config.LoggingConfig{Level: "info", Format: "json"},
	}
}

func cardTitles(page present.Page) []string {
	titles := make([]string, 0, len(page.Cards))
	for _, c := range page.Cards {
		titles = append(titles, c.Title)
	}
	slices.Sort(titles)
	return titles
}

func seed(v float64) *float64 { return &v }

func TestApp_EndToEnd(t *testing.T) {
	t.Parallel()

	server := newUpstreams(t)
	a, err := New(context.Background(), testConfig(server.URL), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close(context.Background())

	page, err := a.Recommend(context.Background(), recommend.Request{
		SelectedGenres: []string{"28"},
		FavoriteTitles: []string{"Alpha"},
		Seed:           seed(0.42),
		MaxCount:       5,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if got := cardTitles(page); !slices.Equal(got, []string{"Alpha", "Bravo"}) {
		t.Fatalf("cards = %v, want Alpha and Bravo (Charlie has no metadata)", got)
	}
	for _, card := range page.Cards {
		if card.Trailer.VideoID != "yt-1" || !strings.Contains(card.Trailer.EmbedURL, "yt-1") {
			t.Errorf("%s trailer = %+v, want yt-1", card.Title, card.Trailer)
		}
		if !strings.HasPrefix(card.Plot, "Plot of ") {
			t.Errorf("%s plot = %q, want the metadata plot", card.Title, card.Plot)
		}
		if len(card.Reasons) == 0 {
			t.Errorf("%s has no reasons", card.Title)
		}
	}
	if page.Message != "" {
		t.Errorf("Message = %q, want none", page.Message)
	}

	health := a.Health()
	for _, name := range []string{"tmdb", "omdb", "youtube"} {
		if got := health.Breakers[name]; got != "closed" {
			t.Errorf("breaker %s = %q, want closed", name, got)
		}
	}
	if health.Caches["metadata"].Size != 3 {
		t.Errorf("health metadata cache size = %d, want 3", health.Caches["metadata"].Size)
	}

	stats := a.CacheStats()
	if stats["metadata"].Size != 3 {
		t.Errorf("metadata cache size = %d, want 3 (misses are cached too)", stats["metadata"].Size)
	}
	if stats["trailer"].Size != 2 {
		t.Errorf("trailer cache size = %d, want 2", stats["trailer"].Size)
	}
}

func TestApp_WithoutYouTubeKey(t *testing.T) {
	t.Parallel()

	server := newUpstreams(t)
	cfg := testConfig(server.URL)
	cfg.Catalog.YouTube.APIKey = ""

	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	page, err := a.Recommend(context.Background(), recommend.Request{SelectedGenres: []string{"28"}, Seed: seed(0.1)})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(page.Cards) == 0 {
		t.Fatal("expected cards")
	}
	for _, card := range page.Cards {
		if card.Trailer.HasVideo() || card.Trailer.SearchURL == "" {
			t.Errorf("%s trailer = %+v, want a search link only", card.Title, card.Trailer)
		}
	}
	if _, ok := a.Health().Breakers["youtube"]; ok {
		t.Error("youtube breaker reported without a YouTube client")
	}
}

func TestApp_HealthReportsOpenBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	cfg.Breaker.MinRequests = 1
	cfg.Breaker.FailureRatio = 0.5

	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	page, err := a.Recommend(context.Background(), recommend.Request{SelectedGenres: []string{"28"}, Seed: seed(0.3)})
	if err != nil {
		t.Fatalf("Recommend() error = %v, want degraded empty page", err)
	}
	if page.Message != present.EmptyMessage {
		t.Errorf("Message = %q, want the empty message", page.Message)
	}
	if got := a.Health().Breakers["tmdb"]; got != "open" {
		t.Errorf("tmdb breaker = %q, want open after upstream failures", got)
	}
	if got := a.Health().Breakers["omdb"]; got != "closed" {
		t.Errorf("omdb breaker = %q, want closed (never called)", got)
	}
	if calls.Load() == 0 {
		t.Error("upstream was never called")
	}
}

func TestApp_WithProfile(t *testing.T) {
	t.Parallel()

	server := newUpstreams(t)
	history := profile.NewStatic()
	history.Add("u1", recommend.WatchedEntry{ID: 1, Title: "Alpha", Genres: []string{"28"}})

	a, err := New(context.Background(), testConfig(server.URL), zerolog.Nop(), WithProfile(history))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := a.NewSession().Recommend(context.Background(), recommend.Request{
		UserID:         "u1",
		SelectedGenres: []string{"28"},
		Seed:           seed(0.42),
	})
	if err != nil {
		t.Fatalf("Session.Recommend() error = %v", err)
	}
	for _, rec := range result.Recommendations {
		if rec.Candidate.Movie.ID == 1 {
			t.Error("watched movie Alpha was recommended")
		}
	}
	if len(result.Recommendations) != 1 {
		t.Errorf("len(Recommendations) = %d, want 1 (Bravo)", len(result.Recommendations))
	}
}

func TestApp_UnknownProfileBackend(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://127.0.0.1:1")
	cfg.Profile.Backend = "postgres"

	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("New() error = nil, want unknown backend error")
	}
}

func TestApp_InvalidCachePolicy(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://127.0.0.1:1")
	cfg.Cache.Policy = "arc"

	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("New() error = nil, want cache policy error")
	}
}
