// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package cache provides the process-wide lookup caches used by the
// enrichment stage. Stores are safe for concurrent use and generic over the
// cached value, so a not-found result can be cached as a nil pointer and told
// apart from a miss.
package cache

import (
	"fmt"
	"time"
)

// Store is a concurrency-safe key/value cache.
//
// Usage:
//
//	var s Store[*Record] = NewLRU[*Record](Config{Name: "metadata", Capacity: 512})
//	s.Set("the matrix|1999", rec)
//	if rec, ok := s.Get("the matrix|1999"); ok {
//	    // rec may be nil: a cached not-found
//	}
type Store[V any] interface {
	// Get retrieves a value. The bool reports whether the key was present.
	Get(key string) (V, bool)

	// Set stores a value, evicting according to the store's policy.
	Set(key string, value V)

	// Delete removes a value from the cache.
	Delete(key string)

	// Len returns the current number of entries.
	Len() int

	// Clear removes all entries from the cache.
	Clear()

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// HitRate returns the hit rate as a percentage (0 when nothing was looked up).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Policy selects the eviction behavior of a Store.
type Policy string

const (
	// PolicyLRU bounds the store and evicts the least recently used entry (default).
	PolicyLRU Policy = "lru"

	// PolicyLFU bounds the store and evicts the least frequently used entry.
	PolicyLFU Policy = "lfu"

	// PolicyUnbounded never evicts; entries live for the life of the process.
	PolicyUnbounded Policy = "unbounded"
)

// DefaultCapacity is used by PolicyLRU when Config.Capacity is not set.
const DefaultCapacity = 1024

// Config holds configuration for creating a cache.
type Config struct {
	// Name labels the cache in metrics ("metadata", "trailer").
	Name string

	// Policy specifies the eviction policy (lru, lfu or unbounded).
	Policy Policy

	// Capacity is the maximum number of entries (ignored by unbounded).
	// Default: 1024
	Capacity int

	// TTL expires entries lazily on read. Zero disables expiry.
	TTL time.Duration
}

// ParsePolicy converts a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyLRU:
		return PolicyLRU, nil
	case PolicyLFU:
		return PolicyLFU, nil
	case PolicyUnbounded:
		return PolicyUnbounded, nil
	default:
		return "", fmt.Errorf("unknown cache policy %q (want lru, lfu or unbounded)", s)
	}
}

// New creates a store based on the configuration.
//
//	metadata := cache.New[*recommend.SecondaryRecord](cache.Config{Name: "metadata", Policy: cache.PolicyLRU, Capacity: 512})
func New[V any](cfg Config) Store[V] {
	switch cfg.Policy {
	case PolicyLFU:
		return NewLFU[V](cfg)
	case PolicyUnbounded:
		return NewUnbounded[V](cfg)
	default:
		return NewLRU[V](cfg)
	}
}
