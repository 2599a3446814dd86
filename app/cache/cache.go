package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultTTL is how long a rendered listing stays cached.
const DefaultTTL = 20 * time.Second

// PageCache keeps listing pages for a fixed TTL. A non-positive TTL disables it.
//
// Every Clear starts a new generation. SetAt refuses values computed under an
// older generation, so a page built from data read before a write cannot land
// after that write cleared the cache.
type PageCache[V any] struct {
	store *ristretto.Cache[string, V]
	ttl   time.Duration

	mu  sync.Mutex
	gen uint64
}

// New creates a PageCache whose entries expire after ttl.
func New[V any](ttl time.Duration) (*PageCache[V], error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: 1e4,
		MaxCost:     1 << 10,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page cache: %w", err)
	}
	return &PageCache[V]{store: store, ttl: ttl}, nil
}

// TTL returns the configured lifetime of an entry.
func (c *PageCache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value for key.
func (c *PageCache[V]) Get(key string) (V, bool) {
	if c.ttl <= 0 {
		var zero V
		return zero, false
	}
	return c.store.Get(key)
}

// Set stores value under key and waits until it is visible to Get.
func (c *PageCache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.store.SetWithTTL(key, value, 1, c.ttl)
	c.store.Wait()
}

// Generation returns the current generation, to be passed to SetAt.
func (c *PageCache[V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetAt stores value like Set if no Clear happened since gen was read.
// It reports whether the value was stored.
func (c *PageCache[V]) SetAt(gen uint64, key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.Set(key, value)
	return c.ttl > 0
}

// Clear drops every entry and starts a new generation.
func (c *PageCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.store.Clear()
}

// Close stops the cache's background goroutines.
func (c *PageCache[V]) Close() {
	c.store.Close()
}
