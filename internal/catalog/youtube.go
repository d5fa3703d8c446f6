// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/recommend"
)

// YouTube finds trailers through the Data API v3 search endpoint.
type YouTube struct {
	http   *httpClient
	apiKey string
}

var _ recommend.VideoCatalog = (*YouTube)(nil)

// NewYouTube creates a YouTube client.
func NewYouTube(cfg *config.CatalogClientConfig, breakerCfg *config.BreakerConfig, logger zerolog.Logger) *YouTube {
	return &YouTube{
		http:   newHTTPClient("youtube", cfg, breakerCfg, logger),
		apiKey: cfg.APIKey,
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// SearchVideo returns the id of the best embeddable match for query, or ""
// when the search came back empty.
func (y *YouTube) SearchVideo(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("key", y.apiKey)
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("videoEmbeddable", "true")
	params.Set("maxResults", "1")
	params.Set("q", query)

	var resp youtubeSearchResponse
	if err := y.http.getJSON(ctx, "search", "/search", params, &resp); err != nil {
		return "", fmt.Errorf("youtube search: %w", err)
	}
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			return item.ID.VideoID, nil
		}
	}
	return "", nil
}

// BreakerState reports the YouTube circuit breaker state.
func (y *YouTube) BreakerState() string {
	return y.http.breaker.State()
}

// NoVideos is the VideoCatalog used when no YouTube key is configured.
// Every trailer then falls back to a search link.
type NoVideos struct{}

var _ recommend.VideoCatalog = NoVideos{}

// SearchVideo always reports no match.
func (NoVideos) SearchVideo(context.Context, string) (string, error) {
	return "", nil
}
