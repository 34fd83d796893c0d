// Package cache implements a small in-memory TTL cache with a hard capacity
// bound. It is constructed explicitly and injected, never a package-level
// singleton, so hosts embedding several widget instances can keep them
// independent.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Entry pairs a cached value with its expiry.
type Entry[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache is a mutex-guarded TTL cache. When full, inserting a new key evicts
// the single oldest-inserted entry (insertion order, not access order).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[K]*list.Element
	order   *list.List // front = oldest inserted
	now     func() time.Time

	hits   int64
	misses int64
}

type keyed[K comparable, V any] struct {
	key K
	ent Entry[V]
}

// New creates a cache holding at most maxSize entries, each fresh for ttl.
func New[K comparable, V any](maxSize int, ttl time.Duration) *Cache[K, V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache[K, V]{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[K]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Get returns the cached value for k. An expired entry counts as a miss and
// is evicted on the spot.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	el, ok := c.entries[k]
	if !ok {
		c.misses++
		return zero, false
	}
	kv := el.Value.(keyed[K, V])
	if !c.now().Before(kv.ent.ExpiresAt) {
		c.order.Remove(el)
		delete(c.entries, k)
		c.misses++
		return zero, false
	}
	c.hits++
	return kv.ent.Data, true
}

// Put stores v under k. Re-inserting an existing key refreshes its value and
// expiry but keeps its original insertion position.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent := Entry[V]{Data: v, ExpiresAt: c.now().Add(c.ttl)}
	if el, ok := c.entries[k]; ok {
		el.Value = keyed[K, V]{key: k, ent: ent}
		return
	}
	if c.order.Len() >= c.maxSize {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(keyed[K, V]).key)
		}
	}
	c.entries[k] = c.order.PushBack(keyed[K, V]{key: k, ent: ent})
}

// Delete removes k if present.
func (c *Cache[K, V]) Delete(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[k]; ok {
		c.order.Remove(el)
		delete(c.entries, k)
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cumulative hit/miss counts for metrics scraping.
func (c *Cache[K, V]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// SetClock overrides the time source. Tests only.
func (c *Cache[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
