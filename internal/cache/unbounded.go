// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/reelpick/internal/metrics"
)

type unboundedEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Unbounded is a map-backed Store that never evicts for capacity.
// Entries only leave through Delete, Clear, or TTL expiry when a TTL is set.
type Unbounded[V any] struct {
	mu      sync.RWMutex
	name    string
	ttl     time.Duration
	entries map[string]unboundedEntry[V]

	hits   int64
	misses int64
}

// NewUnbounded creates an unbounded store.
func NewUnbounded[V any](cfg Config) *Unbounded[V] {
	return &Unbounded[V]{
		name:    cfg.Name,
		ttl:     cfg.TTL,
		entries: make(map[string]unboundedEntry[V]),
	}
}

// Get retrieves a value from the cache.
func (u *Unbounded[V]) Get(key string) (V, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var zero V
	entry, ok := u.entries[key]
	if ok && !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(u.entries, key)
		ok = false
	}
	if ok {
		u.hits++
	} else {
		u.misses++
	}
	if u.name != "" {
		metrics.RecordCacheLookup(u.name, ok)
	}
	if !ok {
		return zero, false
	}
	return entry.value, true
}

// Set stores a value in the cache.
func (u *Unbounded[V]) Set(key string, value V) {
	u.mu.Lock()
	defer u.mu.Unlock()

	entry := unboundedEntry[V]{value: value}
	if u.ttl > 0 {
		entry.expiresAt = time.Now().Add(u.ttl)
	}
	u.entries[key] = entry
	u.reportSize()
}

// Delete removes a value from the cache.
func (u *Unbounded[V]) Delete(key string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.entries, key)
	u.reportSize()
}

// Len returns the current number of entries.
func (u *Unbounded[V]) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.entries)
}

// Clear removes all entries from the cache.
func (u *Unbounded[V]) Clear() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.entries = make(map[string]unboundedEntry[V])
	u.reportSize()
}

// Stats returns cache statistics.
func (u *Unbounded[V]) Stats() Stats {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return Stats{Hits: u.hits, Misses: u.misses, Size: len(u.entries)}
}

func (u *Unbounded[V]) reportSize() {
	if u.name != "" {
		metrics.CacheSize.WithLabelValues(u.name).Set(float64(len(u.entries)))
	}
}

var _ Store[int] = (*Unbounded[int])(nil)
