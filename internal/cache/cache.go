// Package cache provides the page memoization and invalidation boundary
// used by the storefront read path.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Invalidation targets named by the workflow operations.
const (
	PathHome     = "/"
	PathProducts = "/products"
)

// Invalidator is the port mutating operations use to drop cached renderings.
type Invalidator interface {
	Invalidate(paths ...string)
}

// PageCache memoizes rendered page payloads by path until invalidated.
// Concurrent misses for the same path are collapsed into one fetch.
type PageCache struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
}

func NewPageCache() *PageCache {
	return &PageCache{entries: make(map[string]any)}
}

// GetOrFetch returns the cached value for path, fetching and storing it on a
// miss. A fetch error is returned to every collapsed caller and nothing is
// cached.
func (c *PageCache) GetOrFetch(ctx context.Context, path string, fetch func(ctx context.Context) (any, error)) (any, error) {
	c.mu.RLock()
	value, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return value, nil
	}

	value, err, _ := c.group.Do(path, func() (any, error) {
		// Re-check under the flight: an earlier caller may have stored it.
		c.mu.RLock()
		value, ok := c.entries[path]
		c.mu.RUnlock()
		if ok {
			return value, nil
		}

		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[path] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Invalidate drops the cached values for the given paths.
func (c *PageCache) Invalidate(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, path := range paths {
		delete(c.entries, path)
	}
}
