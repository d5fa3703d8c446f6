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

type lfuEntry[V any] struct {
	key       string
	value     V
	freq      int
	expiresAt time.Time
	prev      *lfuEntry[V]
	next      *lfuEntry[V]
}

// freqList is a doubly-linked list of entries with the same frequency.
type freqList[V any] struct {
	head *lfuEntry[V] // sentinel, head.next is the most recently used at this frequency
	tail *lfuEntry[V] // sentinel, tail.prev is the least recently used at this frequency
	size int
}

func newFreqList[V any]() *freqList[V] {
	fl := &freqList[V]{head: &lfuEntry[V]{}, tail: &lfuEntry[V]{}}
	fl.head.next = fl.tail
	fl.tail.prev = fl.head
	return fl
}

func (fl *freqList[V]) addToFront(entry *lfuEntry[V]) {
	entry.prev = fl.head
	entry.next = fl.head.next
	fl.head.next.prev = entry
	fl.head.next = entry
	fl.size++
}

func (fl *freqList[V]) remove(entry *lfuEntry[V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	entry.prev = nil
	entry.next = nil
	fl.size--
}

func (fl *freqList[V]) removeLast() *lfuEntry[V] {
	if fl.size == 0 {
		return nil
	}
	entry := fl.tail.prev
	fl.remove(entry)
	return entry
}

// LFU implements a thread-safe Least Frequently Used cache with optional TTL.
// Trending and popular titles come back on most requests, so frequency keeps
// them resident while one-off lookups age out. Ties at the lowest frequency
// evict the least recently used entry.
//
// Get, Set and eviction are O(1):
//   - items maps keys to entries
//   - freqs maps a frequency to the list of entries at that frequency
//   - minFreq tracks the lowest frequency present
type LFU[V any] struct {
	mu sync.Mutex

	name     string
	capacity int
	ttl      time.Duration

	items   map[string]*lfuEntry[V]
	freqs   map[int]*freqList[V]
	minFreq int

	hits      int64
	misses    int64
	evictions int64
}

// NewLFU creates a new LFU cache. A non-positive capacity uses DefaultCapacity.
func NewLFU[V any](cfg Config) *LFU[V] {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LFU[V]{
		name:     cfg.Name,
		capacity: capacity,
		ttl:      cfg.TTL,
		items:    make(map[string]*lfuEntry[V], capacity),
		freqs:    make(map[int]*freqList[V]),
	}
}

// Get retrieves an entry and increments its frequency.
// Expired entries are removed and reported as misses.
func (c *LFU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, exists := c.items[key]
	if !exists {
		c.recordLookup(false)
		return zero, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.reportSize()
		c.recordLookup(false)
		return zero, false
	}

	c.incrementFreq(entry)
	c.recordLookup(true)
	return entry.value, true
}

// Set adds or updates an entry. Updating counts as a use.
// A new entry on a full cache evicts the least frequently used one first.
func (c *LFU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	if entry, exists := c.items[key]; exists {
		entry.value = value
		entry.expiresAt = expiresAt
		c.incrementFreq(entry)
		return
	}

	if len(c.items) >= c.capacity {
		c.evict()
	}

	entry := &lfuEntry[V]{key: key, value: value, freq: 1, expiresAt: expiresAt}
	c.items[key] = entry
	c.listFor(1).addToFront(entry)
	c.minFreq = 1
	c.reportSize()
}

// Delete removes an entry from the cache.
func (c *LFU[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		c.removeEntry(entry)
		c.reportSize()
	}
}

// Len returns the current number of entries in the cache.
func (c *LFU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries from the cache.
func (c *LFU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lfuEntry[V], c.capacity)
	c.freqs = make(map[int]*freqList[V])
	c.minFreq = 0
	c.reportSize()
}

// Stats returns cache statistics.
func (c *LFU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
	}
}

// Frequency returns the use count of key, or 0 when absent.
func (c *LFU[V]) Frequency(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		return entry.freq
	}
	return 0
}

// Internal methods (must be called with lock held)

func (c *LFU[V]) listFor(freq int) *freqList[V] {
	fl := c.freqs[freq]
	if fl == nil {
		fl = newFreqList[V]()
		c.freqs[freq] = fl
	}
	return fl
}

// incrementFreq moves an entry to the next frequency level.
func (c *LFU[V]) incrementFreq(entry *lfuEntry[V]) {
	if fl, exists := c.freqs[entry.freq]; exists {
		fl.remove(entry)
		if fl.size == 0 {
			delete(c.freqs, entry.freq)
			if c.minFreq == entry.freq {
				c.minFreq++
			}
		}
	}
	entry.freq++
	c.listFor(entry.freq).addToFront(entry)
}

// evict removes the least frequently used entry.
func (c *LFU[V]) evict() {
	fl := c.freqs[c.minFreq]
	if fl == nil {
		c.minFreq = c.lowestFreq()
		if fl = c.freqs[c.minFreq]; fl == nil {
			return
		}
	}
	entry := fl.removeLast()
	if entry == nil {
		return
	}
	if fl.size == 0 {
		delete(c.freqs, c.minFreq)
	}
	delete(c.items, entry.key)
	c.evictions++
	if c.name != "" {
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
}

// removeEntry drops an entry outside of eviction. minFreq may go stale here;
// evict recomputes it when its list is gone.
func (c *LFU[V]) removeEntry(entry *lfuEntry[V]) {
	if fl, exists := c.freqs[entry.freq]; exists {
		fl.remove(entry)
		if fl.size == 0 {
			delete(c.freqs, entry.freq)
		}
	}
	delete(c.items, entry.key)
}

// lowestFreq scans the frequency lists. Only needed after Delete or expiry.
func (c *LFU[V]) lowestFreq() int {
	lowest := 0
	for freq := range c.freqs {
		if lowest == 0 || freq < lowest {
			lowest = freq
		}
	}
	return lowest
}

func (c *LFU[V]) recordLookup(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	if c.name != "" {
		metrics.RecordCacheLookup(c.name, hit)
	}
}

func (c *LFU[V]) reportSize() {
	if c.name != "" {
		metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.items)))
	}
}

var _ Store[int] = (*LFU[int])(nil)
