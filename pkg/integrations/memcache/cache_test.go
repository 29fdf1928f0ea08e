package memcache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := New[string, float64]()

	_, ok := c.Get("BTC")
	assert.False(t, ok)

	c.Set("BTC", 50000.0)
	val, ok := c.Get("BTC")
	require.True(t, ok)
	assert.Equal(t, 50000.0, val)

	c.Set("BTC", 51000.0)
	val, _ = c.Get("BTC")
	assert.Equal(t, 51000.0, val)

	c.Delete("BTC")
	_, ok = c.Get("BTC")
	assert.False(t, ok)
}

func TestCache_Snapshot(t *testing.T) {
	c := New[string, float64]()
	c.Set("BTC", 50000.0)
	c.Set("ETH", 3000.0)

	snap := c.Snapshot()
	require.Len(t, snap, 2)

	// mutating the snapshot must not leak back into the cache
	snap["BTC"] = 1.0
	val, _ := c.Get("BTC")
	assert.Equal(t, 50000.0, val)
}

func TestCache_KeysLenClear(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1)
	c.Set("b", 2)

	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set(n, n)
			c.Get(n)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}
