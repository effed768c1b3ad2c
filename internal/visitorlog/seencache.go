package visitorlog

import (
	"sync"
	"time"
)

// SeenCache is a bounded, time-windowed record of recently seen visitor keys.
// It answers "have I logged this visitor within the window?" and expires
// entries both by TTL and by a hard size cap, so it cannot grow without
// bound under traffic from many distinct visitors.
type SeenCache struct {
	mu         sync.Mutex
	entries    map[string]time.Time
	window     time.Duration
	maxEntries int
	now        func() time.Time
}

// NewSeenCache creates a cache that remembers keys for window and holds at
// most maxEntries entries.
func NewSeenCache(window time.Duration, maxEntries int) *SeenCache {
	return &SeenCache{
		entries:    make(map[string]time.Time),
		window:     window,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Seen reports whether key was recorded within the window, and records it
// either way.
func (c *SeenCache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	last, ok := c.entries[key]
	seen := ok && now.Sub(last) < c.window

	c.entries[key] = now
	if len(c.entries) > c.maxEntries {
		c.sweep(now)
	}

	return seen
}

// sweep drops expired entries; if the cache is still over the cap after
// that, it drops the oldest entries. Caller must hold the lock.
func (c *SeenCache) sweep(now time.Time) {
	for k, last := range c.entries {
		if now.Sub(last) >= c.window {
			delete(c.entries, k)
		}
	}

	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		first := true
		for k, last := range c.entries {
			if first || last.Before(oldest) {
				oldestKey, oldest = k, last
				first = false
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Len returns the current number of entries.
func (c *SeenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
