// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package profile provides the watch history backends behind recommend.TasteProfile.
package profile

import (
	"context"
	"slices"
	"sync"

	"github.com/tomtom215/reelpick/internal/recommend"
)

// Static keeps watch histories in memory. The zero value is not usable; call NewStatic.
type Static struct {
	mu      sync.RWMutex
	entries map[string][]recommend.WatchedEntry
}

var _ recommend.TasteProfile = (*Static)(nil)

// NewStatic creates an empty in-memory profile store.
func NewStatic() *Static {
	return &Static{entries: make(map[string][]recommend.WatchedEntry)}
}

// Add appends entries to a user's history.
func (s *Static) Add(userID string, entries ...recommend.WatchedEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = append(s.entries[userID], entries...)
}

// WatchedMovies returns a copy of the user's history. Unknown users have none.
func (s *Static) WatchedMovies(ctx context.Context, userID string) ([]recommend.WatchedEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries[userID]), nil
}
