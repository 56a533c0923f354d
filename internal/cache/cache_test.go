package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut(t *testing.T) {
	t.Parallel()
	c := New(4, 4)

	_, ok := c.Get(Artifacts, "a")
	assert.False(t, ok)

	c.Put(Artifacts, "a", 1)
	v, ok := c.Get(Artifacts, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// overwrite keeps a single entry
	c.Put(Artifacts, "a", 2)
	v, ok = c.Get(Artifacts, "a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Stats()[Artifacts].Size)
}

func TestNamespacesAreIndependent(t *testing.T) {
	t.Parallel()
	c := New(4, 4)
	c.Put(Artifacts, "k", "artifact")
	c.Put(Modules, "k", "module")

	v, ok := c.Get(Artifacts, "k")
	require.True(t, ok)
	assert.Equal(t, "artifact", v)

	v, ok = c.Get(Modules, "k")
	require.True(t, ok)
	assert.Equal(t, "module", v)

	c.Clear(Artifacts)
	_, ok = c.Get(Artifacts, "k")
	assert.False(t, ok)
	_, ok = c.Get(Modules, "k")
	assert.True(t, ok)
}

func TestLRUEviction(t *testing.T) {
	t.Parallel()
	c := New(3, 3)
	c.Put(Artifacts, "a", 1)
	c.Put(Artifacts, "b", 2)
	c.Put(Artifacts, "c", 3)

	// capacity+1th distinct key evicts exactly the least recently touched
	c.Put(Artifacts, "d", 4)
	_, ok := c.Get(Artifacts, "a")
	assert.False(t, ok, "oldest entry evicted")
	for _, key := range []string{"b", "c", "d"} {
		_, ok := c.Get(Artifacts, key)
		assert.True(t, ok, key)
	}
	assert.Equal(t, 3, c.Stats()[Artifacts].Size)
}

func TestGetRefreshesRecency(t *testing.T) {
	t.Parallel()
	c := New(3, 3)
	c.Put(Artifacts, "a", 1)
	c.Put(Artifacts, "b", 2)
	c.Put(Artifacts, "c", 3)

	// touch a so b becomes the eviction candidate
	_, ok := c.Get(Artifacts, "a")
	require.True(t, ok)

	c.Put(Artifacts, "d", 4)
	_, ok = c.Get(Artifacts, "a")
	assert.True(t, ok, "refreshed entry survives")
	_, ok = c.Get(Artifacts, "b")
	assert.False(t, ok, "stale entry evicted instead")
}

func TestClearPreservesStats(t *testing.T) {
	t.Parallel()
	c := New(4, 4)
	c.Put(Modules, "m", "syms")
	c.Get(Modules, "m")
	c.Get(Modules, "missing")

	before := c.Stats()[Modules]
	assert.Equal(t, uint64(1), before.Hits)
	assert.Equal(t, uint64(1), before.Misses)

	c.Clear(Modules)
	after := c.Stats()[Modules]
	assert.Equal(t, before.Hits, after.Hits)
	assert.Equal(t, before.Misses, after.Misses)
	assert.Equal(t, 0, after.Size)
}

func TestClearAll(t *testing.T) {
	t.Parallel()
	c := New(4, 4)
	c.Put(Artifacts, "a", 1)
	c.Put(Modules, "m", 2)

	c.Clear(All)
	assert.Equal(t, 0, c.Stats()[Artifacts].Size)
	assert.Equal(t, 0, c.Stats()[Modules].Size)
}

func TestSetLimitsNotRetroactive(t *testing.T) {
	t.Parallel()
	c := New(4, 4)
	for i := 0; i < 4; i++ {
		c.Put(Artifacts, fmt.Sprintf("k%d", i), i)
	}

	c.SetLimits(2, 2)
	assert.Equal(t, 4, c.Stats()[Artifacts].Size, "shrink is not retroactive")

	// the next insertion evicts down by one, per normal eviction
	c.Put(Artifacts, "new", 99)
	assert.Equal(t, 4, c.Stats()[Artifacts].Size)
	assert.Equal(t, 2, c.Stats()[Artifacts].Max)
}

func TestUnknownNamespace(t *testing.T) {
	t.Parallel()
	c := New(4, 4)
	c.Put(Namespace("bogus"), "k", 1)
	_, ok := c.Get(Namespace("bogus"), "k")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	c := New(8, 8)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g+i)%16)
				c.Put(Artifacts, key, i)
				c.Get(Artifacts, key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Stats()[Artifacts].Size, 8)
}
