package cache_test

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/cache"
)

func TestLRU_Basic(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, string](2)
	c.Put("alice", "u-1")
	c.Put("bob", "u-2")

	v, ok := c.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "u-1", v)

	c.Put("alice", "u-10")
	v, _ = c.Get("alice")
	assert.Equal(t, "u-10", v)
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Remove("bob"))
	assert.False(t, c.Remove("bob"))
	assert.Equal(t, 1, c.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := cache.NewLRU[string, int](2, cache.WithEvictCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))

	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, evicted)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.ElementsMatch(t, []string{"b", "a", "c"}, evicted)
}

func TestLRU_TTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c := cache.NewLRU[string, string](10,
		cache.WithTTL[string, string](time.Minute),
		cache.WithClock[string, string](clock),
	)
	c.Put("alice", "u-1")

	now = now.Add(59 * time.Second)
	_, ok := c.Get("alice")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_GetMany(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, string](10)
	c.Put("alice", "u-1")
	c.Put("carol", "u-3")

	hits, misses := c.GetMany([]string{"alice", "bob", "carol", "dave"})
	assert.Equal(t, map[string]string{"alice": "u-1", "carol": "u-3"}, hits)
	assert.Equal(t, []string{"bob", "dave"}, misses)
}

func TestLRU_InvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRU[string, string](0) })
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](50)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 200 {
				key := strconv.Itoa((g * i) % 100)
				c.Put(key, i)
				_, _ = c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
