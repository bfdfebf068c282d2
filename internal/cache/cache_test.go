// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package cache

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	return New("test", ttl, WithClock(clock.Now)), clock
}

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(time.Minute)
	c.Set("key1", "value1")

	value, exists := c.Get("key1")
	if !exists || value != "value1" {
		t.Errorf("Get(key1) = %v, %v; want value1, true", value, exists)
	}
	if _, exists := c.Get("key2"); exists {
		t.Error("Get(key2) exists, want miss")
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 key", stats)
	}
	if got := c.HitRate(); got != 50 {
		t.Errorf("HitRate() = %v, want 50", got)
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(time.Minute)
	c.Set("short", 1)
	c.SetWithTTL("long", 2, time.Hour)

	clock.Advance(2 * time.Minute)

	if _, exists := c.Get("short"); exists {
		t.Error("short entry should have expired")
	}
	if v, exists := c.Get("long"); !exists || v != 2 {
		t.Errorf("Get(long) = %v, %v; want 2, true", v, exists)
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(time.Minute)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}

	c.Delete("key0")
	c.Delete("missing")
	if _, exists := c.Get("key0"); exists {
		t.Error("key0 should be deleted")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions after Delete = %d, want 1", got)
	}

	c.Clear()
	for _, key := range []string{"key1", "key2"} {
		if _, exists := c.Get(key); exists {
			t.Errorf("%s should be cleared", key)
		}
	}
	if stats := c.GetStats(); stats.TotalKeys != 0 || stats.Evictions != 3 {
		t.Errorf("stats after Clear = %+v, want 0 keys, 3 evictions", stats)
	}
}

func TestCacheCleanup(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.SetWithTTL("c", 3, time.Hour)

	clock.Advance(5 * time.Minute)

	if got := c.Cleanup(); got != 2 {
		t.Errorf("Cleanup() = %d, want 2", got)
	}
	stats := c.GetStats()
	if stats.TotalKeys != 1 || !stats.LastCleanup.Equal(clock.Now()) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d", j%10)
				c.Set(key, i)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if got := c.GetStats().TotalKeys; got != 10 {
		t.Errorf("TotalKeys = %d, want 10", got)
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a := GenerateKey("persona", []string{"all", "U1", "G1"})
	b := GenerateKey("persona", []string{"all", "U1", "G1"})
	c := GenerateKey("persona", []string{"all", "U1", "G2"})

	if a != b {
		t.Errorf("GenerateKey() not deterministic: %s != %s", a, b)
	}
	if a == c {
		t.Error("GenerateKey() collided for different params")
	}
	if !strings.HasPrefix(a, "persona:") {
		t.Errorf("GenerateKey() = %s, want persona: prefix", a)
	}
}
