// Package cache provides an in-memory caching layer with TTL and LRU eviction.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is the behaviour shared by in-memory caches keyed by string.
type Cache[V any] interface {
	// Get returns the value and true if present and not expired.
	Get(key string) (V, bool)

	// Set stores a value with a TTL. A zero ttl never expires.
	Set(key string, value V, ttl time.Duration)

	Delete(key string)
	Clear()
	Size() int
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	element   *list.Element
}

// MemoryCache is an LRU cache with per-item TTL. Safe for concurrent use.
type MemoryCache[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry[V]
	lru      *list.List // front = most recently used
	now      func() time.Time
}

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// NewMemoryCache creates a cache holding at most capacity items.
//
// Example:
//
//	sites := cache.NewMemoryCache[[]domain.CandidateSite](32)
func NewMemoryCache[V any](capacity int) *MemoryCache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryCache[V]{
		capacity: capacity,
		items:    make(map[string]*entry[V]),
		lru:      list.New(),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (c *MemoryCache[V]) WithClock(now func() time.Time) *MemoryCache[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get retrieves a value and marks it as recently used.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.expired(e, c.now()) {
		c.deleteEntry(e)
		return zero, false
	}
	c.lru.MoveToFront(e.element)
	return e.value, true
}

// Set stores a value, evicting the least recently used item when full.
func (c *MemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if existing, ok := c.items[key]; ok {
		existing.value = value
		existing.expiresAt = expiresAt
		c.lru.MoveToFront(existing.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictLRU()
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	e.element = c.lru.PushFront(e)
	c.items[key] = e
}

// Delete removes a value.
func (c *MemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.deleteEntry(e)
	}
}

// Clear removes all values.
func (c *MemoryCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry[V])
	c.lru.Init()
}

// Size returns the number of stored items, expired ones included until purged.
func (c *MemoryCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of items.
func (c *MemoryCache[V]) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// CleanExpired removes all expired items and returns how many were dropped.
func (c *MemoryCache[V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, e := range c.items {
		if c.expired(e, now) {
			c.deleteEntry(e)
			removed++
		}
	}
	return removed
}

// StartCleanupWorker runs CleanExpired every interval until the returned
// stop function is called.
func (c *MemoryCache[V]) StartCleanupWorker(interval time.Duration) func() {
	stop := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CleanExpired()
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}

func (c *MemoryCache[V]) expired(e *entry[V], now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// evictLRU must be called with c.mu held.
func (c *MemoryCache[V]) evictLRU() {
	if back := c.lru.Back(); back != nil {
		c.deleteEntry(back.Value.(*entry[V]))
	}
}

// deleteEntry must be called with c.mu held.
func (c *MemoryCache[V]) deleteEntry(e *entry[V]) {
	delete(c.items, e.key)
	c.lru.Remove(e.element)
}
