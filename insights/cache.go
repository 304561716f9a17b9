package insights

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// BuildFunc produces a pipeline result for a source handle.
type BuildFunc func(source string) (*Result, error)

// Cache memoizes pipeline results per source handle with a fixed TTL set by
// the caller. Concurrent lookups for the same handle are coalesced so the
// expensive load-and-transform sequence runs at most once per key per cache
// lifetime; different handles proceed independently. Errors are never cached.
type Cache struct {
	build BuildFunc
	ttl   time.Duration
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result    *Result
	fetchedAt time.Time
}

func NewCache(ttl time.Duration, build BuildFunc) *Cache {
	return &Cache{build: build, ttl: ttl, entries: map[string]cacheEntry{}}
}

// Get returns the cached result for source, rebuilding when missing or expired.
func (c *Cache) Get(source string) (*Result, error) {
	if result, ok := c.fresh(source); ok {
		return result, nil
	}
	value, err, _ := c.group.Do(source, func() (any, error) {
		// A coalesced caller may arrive just after the winner stored its result.
		if result, ok := c.fresh(source); ok {
			return result, nil
		}
		result, err := c.build(source)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[source] = cacheEntry{result: result, fetchedAt: time.Now()}
		c.mu.Unlock()
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Result), nil
}

// Invalidate drops the cached result for source.
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	delete(c.entries, source)
	c.mu.Unlock()
}

func (c *Cache) fresh(source string) (*Result, bool) {
	c.mu.Lock()
	entry, ok := c.entries[source]
	c.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.result, true
	}
	return nil, false
}
