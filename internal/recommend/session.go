// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/reelpick/internal/metrics"
)

// Session serializes recommendation requests for one user. Starting a new
// request cancels the one in flight, and a superseded request never
// replaces Latest.
type Session struct {
	recommender *Recommender

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
	latest     *Result
}

// NewSession creates a session backed by r.
func NewSession(r *Recommender) *Session {
	return &Session{recommender: r}
}

// Recommend cancels any in-flight request and runs req.
// If another call supersedes this one before it finishes, the error wraps
// ErrSuperseded and the partial result is discarded.
//
//nolint:gocritic // hugeParam: Request is read-only
func (s *Session) Recommend(ctx context.Context, req Request) (*Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.mu.Unlock()

	res, err := s.recommender.Recommend(runCtx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		metrics.RecommendRequests.WithLabelValues("superseded").Inc()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSuperseded, err)
		}
		return nil, ErrSuperseded
	}

	s.cancel = nil
	if err != nil {
		return nil, err
	}
	s.latest = res
	return res, nil
}

// Shuffle reruns req with a fresh seed.
//
//nolint:gocritic // hugeParam: Request is copied before the seed is replaced
func (s *Session) Shuffle(ctx context.Context, req Request) (*Result, error) {
	req.Seed = NewSeed()
	return s.Recommend(ctx, req)
}

// Latest returns the most recent result that was not superseded, or nil.
func (s *Session) Latest() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Cancel aborts the in-flight request, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
