// Package throttle is a small TTL memoize layer used by the pollers so that
// overlapping UI-driven refreshes within a window collapse onto one backend
// fetch.
package throttle

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache memoizes fetcher results per key with a TTL.
type Cache struct {
	store *gocache.Cache
	mu    sync.Mutex
}

// New creates a Cache. defaultTTL applies when Do is called with ttl <= 0.
func New(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Cache{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

// Do returns the cached value for key if it is still fresh, otherwise calls
// fetch and caches the result. Fetch errors are not cached, so the next call
// retries. Calls for the same key are serialized; a caller arriving while
// another fills the key gets the filled value without a second fetch.
func (c *Cache) Do(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.store.Get(key); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, v, ttl)
	return v, nil
}

// Invalidate drops the cached value for key, forcing the next Do to fetch.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(key)
}
