// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package catalog implements the HTTP clients for the upstream catalogs used by
the recommendation pipeline.

Clients:
  - TMDB: movie discovery, search, trending and related titles (recommend.MovieCatalog)
  - OMDb: secondary metadata such as plot and external ratings (recommend.MetadataCatalog)
  - YouTube: trailer search (recommend.VideoCatalog)
  - NoVideos: a VideoCatalog that never finds a video, used without a YouTube key

Resilience Mechanisms:
  - Rate Limiting: a client-side token bucket (golang.org/x/time/rate) per catalog
  - Retries: HTTP 429 responses are retried with exponential backoff, honoring Retry-After
  - Circuit Breaker: sony/gobreaker opens after a configurable failure ratio
  - Context: every call honors cancellation, including backoff and rate limit waits

A request abandoned by its caller never counts as a breaker failure, and a
404 from the upstream is a normal "not found" rather than an outage.

Every request records catalog_requests_total and
catalog_request_duration_seconds; see internal/metrics.
*/
package catalog
