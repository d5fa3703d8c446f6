// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// testLogger returns a no-op logger for tests.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

var errUpstream = errors.New("upstream returned 503")

// movie builds a test movie released on the given date.
func movie(id int, title string, rating float64, genres ...string) Movie {
	return Movie{
		ID:          id,
		Title:       title,
		Genres:      genres,
		Rating:      rating,
		Popularity:  10,
		VoteCount:   100,
		ReleaseDate: "2010-06-01",
	}
}

// fakeCatalog implements MovieCatalog for testing.
type fakeCatalog struct {
	mu sync.Mutex

	discover        []Movie
	trending        []Movie
	search          map[string][]Movie
	recommendations map[int][]Movie
	similar         map[int][]Movie

	// errs fails queries by kind.
	errs map[QueryKind]error

	// delays slows queries by kind, honoring ctx.
	delays map[QueryKind]time.Duration

	// block makes every query wait for ctx.
	block bool

	queries []Query
	calls   int32
}

func (f *fakeCatalog) SearchOrDiscover(ctx context.Context, q Query) ([]Movie, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d, ok := f.delays[q.Kind]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[q.Kind]; ok {
		return nil, err
	}

	switch q.Kind {
	case QueryDiscover:
		return f.discover, nil
	case QueryTrending:
		return f.trending, nil
	case QuerySearch:
		return f.search[q.Text], nil
	case QueryRecommendations:
		return f.recommendations[q.MovieID], nil
	case QuerySimilar:
		return f.similar[q.MovieID], nil
	default:
		return nil, fmt.Errorf("unexpected query kind %v", q.Kind)
	}
}

func (f *fakeCatalog) kinds() map[QueryKind]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[QueryKind]int)
	for _, q := range f.queries {
		out[q.Kind]++
	}
	return out
}

// fakeMetadata implements MetadataCatalog for testing.
type fakeMetadata struct {
	// missing titles return not-found.
	missing map[string]bool
	// failing titles return errUpstream.
	failing map[string]bool
	block   bool
	calls   int32
}

func (f *fakeMetadata) LookupSecondaryMetadata(ctx context.Context, title string, year int) (*SecondaryRecord, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.failing[title] {
		return nil, errUpstream
	}
	if f.missing[title] {
		return nil, nil
	}
	return &SecondaryRecord{Title: title, Year: fmt.Sprint(year), Plot: "plot of " + title}, nil
}

// fakeVideos implements VideoCatalog for testing.
type fakeVideos struct {
	// ids maps a query prefix (title) to a video id. Unknown titles have no video.
	ids     map[string]string
	failing bool
	block   bool
	calls   int32
}

func (f *fakeVideos) SearchVideo(ctx context.Context, query string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.failing {
		return "", errUpstream
	}
	for title, id := range f.ids {
		if strings.HasPrefix(query, title+" ") {
			return id, nil
		}
	}
	return "", nil
}

// fakeProfile implements TasteProfile for testing.
type fakeProfile struct {
	watched []WatchedEntry
	err     error
}

func (f *fakeProfile) WatchedMovies(ctx context.Context, userID string) ([]WatchedEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.watched, nil
}

func ptr[T any](v T) *T {
	return &v
}
