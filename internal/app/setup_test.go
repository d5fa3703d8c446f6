// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/recommend"
)

func TestSetup_FromEnvironment(t *testing.T) {
	server := newUpstreams(t)
	dir := t.TempDir()

	t.Setenv(config.ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv(config.DotenvPathEnvVar, filepath.Join(dir, "missing.env"))
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("TMDB_BASE_URL", server.URL+"/tmdb")
	t.Setenv("OMDB_API_KEY", "omdb-key")
	t.Setenv("OMDB_BASE_URL", server.URL+"/omdb")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("YOUTUBE_BASE_URL", server.URL+"/yt")
	t.Setenv("CACHE_POLICY", "lfu")
	t.Setenv("LOG_LEVEL", "disabled")

	a, err := Setup(context.Background())
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer a.Close(context.Background())

	page, err := a.Recommend(context.Background(), recommend.Request{SelectedGenres: []string{"28"}, Seed: seed(0.42)})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(page.Cards) != 2 {
		t.Errorf("len(Cards) = %d, want 2", len(page.Cards))
	}
}

func TestSetup_MissingKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv(config.DotenvPathEnvVar, filepath.Join(dir, "missing.env"))
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("OMDB_API_KEY", "omdb-key")

	if _, err := Setup(context.Background()); err == nil {
		t.Error("Setup() error = nil, want configuration error")
	}
}
