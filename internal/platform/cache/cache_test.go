package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"pricescout/internal/testutil"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (m *manualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = m.t.Add(d)
}

func TestNewMemoryCache(t *testing.T) {
	t.Run("creates cache with specified capacity", func(t *testing.T) {
		c := NewMemoryCache[string](10)
		testutil.AssertEqual(t, c.Capacity(), 10, "capacity should match")
		testutil.AssertEqual(t, c.Size(), 0, "new cache should be empty")
	})

	t.Run("uses default capacity for invalid values", func(t *testing.T) {
		testutil.AssertEqual(t, NewMemoryCache[int](0).Capacity(), DefaultCapacity, "zero")
		testutil.AssertEqual(t, NewMemoryCache[int](-4).Capacity(), DefaultCapacity, "negative")
	})
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Run("stores and retrieves slices", func(t *testing.T) {
		c := NewMemoryCache[[]string](10)
		c.Set("US", []string{"amazon.com", "bestbuy.com"}, 0)

		got, found := c.Get("US")
		testutil.AssertTrue(t, found, "should find stored value")
		testutil.AssertLen(t, got, 2, "slice length")
		testutil.AssertEqual(t, got[1], "bestbuy.com", "second element")
	})

	t.Run("missing key returns zero value", func(t *testing.T) {
		c := NewMemoryCache[int](10)
		got, found := c.Get("missing")
		testutil.AssertFalse(t, found, "should not find missing key")
		testutil.AssertEqual(t, got, 0, "zero value")
	})

	t.Run("overwrites existing key", func(t *testing.T) {
		c := NewMemoryCache[string](10)
		c.Set("k", "v1", 0)
		c.Set("k", "v2", 0)

		got, _ := c.Get("k")
		testutil.AssertEqual(t, got, "v2", "updated value")
		testutil.AssertEqual(t, c.Size(), 1, "size")
	})
}

func TestMemoryCache_TTL(t *testing.T) {
	clock := &manualClock{t: time.Unix(1_700_000_000, 0)}
	c := NewMemoryCache[string](10).WithClock(clock.Now)

	c.Set("short", "a", time.Minute)
	c.Set("forever", "b", 0)

	_, found := c.Get("short")
	testutil.AssertTrue(t, found, "fresh item")

	clock.Advance(2 * time.Minute)

	_, found = c.Get("short")
	testutil.AssertFalse(t, found, "expired item")
	_, found = c.Get("forever")
	testutil.AssertTrue(t, found, "zero ttl never expires")
	testutil.AssertEqual(t, c.Size(), 1, "expired entry dropped on read")
}

func TestMemoryCache_CleanExpired(t *testing.T) {
	clock := &manualClock{t: time.Unix(1_700_000_000, 0)}
	c := NewMemoryCache[int](10).WithClock(clock.Now)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, time.Duration(i+1)*time.Second)
	}
	clock.Advance(3500 * time.Millisecond)

	testutil.AssertEqual(t, c.CleanExpired(), 3, "removed count")
	testutil.AssertEqual(t, c.Size(), 2, "remaining")
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache[int](2)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	_, _ = c.Get("a") // a becomes most recent
	c.Set("c", 3, 0)

	_, foundB := c.Get("b")
	_, foundA := c.Get("a")
	_, foundC := c.Get("c")
	testutil.AssertFalse(t, foundB, "least recently used evicted")
	testutil.AssertTrue(t, foundA, "recently read kept")
	testutil.AssertTrue(t, foundC, "new item kept")
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache[string](4)
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)

	c.Delete("a")
	c.Delete("missing")
	testutil.AssertEqual(t, c.Size(), 1, "after delete")

	c.Clear()
	testutil.AssertEqual(t, c.Size(), 0, "after clear")
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache[int](50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			c.Set(key, i, time.Minute)
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()
	testutil.AssertEqual(t, c.Size(), 10, "distinct keys")
}

func TestMemoryCache_StartCleanupWorker(t *testing.T) {
	c := NewMemoryCache[string](4)
	c.Set("k", "v", 10*time.Millisecond)

	stop := c.StartCleanupWorker(5 * time.Millisecond)
	defer stop()

	testutil.Eventually(t, time.Second, func() bool { return c.Size() == 0 }, "worker purges expired item")
	stop() // idempotent
}
