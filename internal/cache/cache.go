// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/scoutpersona/internal/metrics"
)

// Entry represents a cached item with expiration
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with TTL support. Expired
// entries are dropped on lookup and by Cleanup; there is no background
// goroutine.
type Cache struct {
	name    string
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time

	statsMu sync.Mutex
	stats   Stats
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the expiry clock.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache whose entries live for ttl. name labels the
// scoutpersona_cache_lookups_total series.
//
// Example:
//
//	c := cache.New("api", 30*time.Second)
//	c.Set("versions", versions)
//	if data, ok := c.Get("versions"); ok {
//	    versions = data.([]database.VersionInfo)
//	}
func New(name string, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		name:    name,
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stats.LastCleanup = c.now()
	return c
}

// Get returns the value stored under key. An expired entry is removed
// and reported as a miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.record(false, 0)
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Another goroutine may have refreshed the entry meanwhile.
		if current, ok := c.entries[key]; ok && !c.now().Before(current.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.record(false, 1)
		return nil, false
	}

	c.record(true, 0)
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: c.now().Add(ttl),
	}
	size := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = size
	c.statsMu.Unlock()
}

// Delete removes a specific cache entry by key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	size := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	if existed {
		c.stats.Evictions++
	}
	c.stats.TotalKeys = size
	c.statsMu.Unlock()
}

// Clear removes every entry. It is called after a pipeline run stores
// a new version.
func (c *Cache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.statsMu.Unlock()
}

// Cleanup removes expired entries and returns how many were dropped.
func (c *Cache) Cleanup() int {
	now := c.now()
	c.mu.Lock()
	evictions := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}
	size := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += int64(evictions)
	c.stats.TotalKeys = size
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
	return evictions
}

// GetStats returns a snapshot of the cache statistics.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *Cache) record(hit bool, evictions int64) {
	c.statsMu.Lock()
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	c.stats.Evictions += evictions
	c.statsMu.Unlock()

	metrics.RecordCacheLookup(c.name, hit)
}

// GenerateKey creates a cache key from the method name and parameters
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
