// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
)

func TestYouTube_SearchVideo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   string
		errors bool
	}{
		{
			name:   "first video",
			status: http.StatusOK,
			body:   `{"items":[{"id":{"kind":"youtube#video","videoId":"abc123"}},{"id":{"videoId":"later"}}]}`,
			want:   "abc123",
		},
		{
			name:   "skips items without a video id",
			status: http.StatusOK,
			body:   `{"items":[{"id":{"kind":"youtube#channel"}},{"id":{"videoId":"xyz"}}]}`,
			want:   "xyz",
		},
		{name: "no results", status: http.StatusOK, body: `{"items":[]}`},
		{name: "quota exceeded", status: http.StatusForbidden, body: `{"error":{"code":403}}`, errors: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			queries := make(chan url.Values, 1)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Errorf("path = %q, want /search", r.URL.Path)
				}
				queries <- r.URL.Query()
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := NewYouTube(testClientConfig(server.URL), testBreakerConfig(), zerolog.Nop())
			got, err := client.SearchVideo(context.Background(), "Heat 1995 official trailer")
			if (err != nil) != tt.errors {
				t.Fatalf("SearchVideo() error = %v, wantErr %v", err, tt.errors)
			}
			if got != tt.want {
				t.Errorf("SearchVideo() = %q, want %q", got, tt.want)
			}

			q := <-queries
			if q.Get("q") != "Heat 1995 official trailer" || q.Get("key") != "secret-key" {
				t.Errorf("query = %v", q)
			}
			if q.Get("type") != "video" || q.Get("maxResults") != "1" || q.Get("part") != "snippet" {
				t.Errorf("query = %v, want a single video search", q)
			}
		})
	}
}

func TestYouTube_BlankQuery(t *testing.T) {
	t.Parallel()

	client := NewYouTube(testClientConfig("http://127.0.0.1:1"), testBreakerConfig(), zerolog.Nop())
	if got, err := client.SearchVideo(context.Background(), " "); got != "" || err != nil {
		t.Errorf("SearchVideo() = (%q, %v), want empty", got, err)
	}
}

func TestNoVideos(t *testing.T) {
	t.Parallel()

	got, err := NoVideos{}.SearchVideo(context.Background(), "anything")
	if got != "" || err != nil {
		t.Errorf("SearchVideo() = (%q, %v), want empty", got, err)
	}
}
