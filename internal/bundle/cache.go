package bundle

import (
	"os"
	"strconv"
	"sync"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// Cache is a thread-safe LRU cache for parsed rule bundles, keyed by
// macroarea.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*cacheEntry
	order   []string // oldest first
}

type cacheEntry struct {
	bundle *rules.Bundle
}

// NewCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 20.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
	}
}

// NewCacheFromEnv creates a cache with size from BUNDLE_CACHE_SIZE env var.
func NewCacheFromEnv() *Cache {
	size := 20
	if v := os.Getenv("BUNDLE_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewCache(size)
}

// Get retrieves a bundle from the cache, or nil if not found.
func (c *Cache) Get(macroarea string) *rules.Bundle {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[macroarea]
	if !ok {
		return nil
	}

	// Move to end (most recently used)
	c.moveToEnd(macroarea)
	return entry.bundle
}

// Put adds a bundle to the cache, evicting the oldest if full.
func (c *Cache) Put(macroarea string, b *rules.Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[macroarea]; ok {
		c.entries[macroarea] = &cacheEntry{bundle: b}
		c.moveToEnd(macroarea)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[macroarea] = &cacheEntry{bundle: b}
	c.order = append(c.order, macroarea)
}

// Invalidate drops a macroarea from the cache, forcing the next Load to
// re-read the store.
func (c *Cache) Invalidate(macroarea string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[macroarea]; !ok {
		return
	}
	delete(c.entries, macroarea)
	for i, k := range c.order {
		if k == macroarea {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cache) moveToEnd(macroarea string) {
	for i, k := range c.order {
		if k == macroarea {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, macroarea)
			return
		}
	}
}
