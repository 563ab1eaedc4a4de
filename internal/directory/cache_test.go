package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/hivedir/internal/metadata"
)

func TestSemaphoreCacheGetMiss(t *testing.T) {
	c := newSemaphoreCache()
	_, ok := c.get("nope")
	assert.False(t, ok)
}

func TestSemaphoreCachePutGet(t *testing.T) {
	c := newSemaphoreCache()
	want := []metadata.KeySemaphore{{NodeID: 1, Status: metadata.StatusWritable}}
	c.put("k", want)

	got, ok := c.get("k")
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSemaphoreCacheGetReturnsCopyNotAlias(t *testing.T) {
	c := newSemaphoreCache()
	stored := []metadata.KeySemaphore{{NodeID: 1, Status: metadata.StatusWritable}}
	c.put("k", stored)

	got, _ := c.get("k")
	got[0].Status = metadata.StatusReadOnly

	again, _ := c.get("k")
	assert.Equal(t, metadata.StatusWritable, again[0].Status, "mutating a returned slice must not affect cached state")
}

func TestSemaphoreCacheDelete(t *testing.T) {
	c := newSemaphoreCache()
	c.put("k", []metadata.KeySemaphore{{NodeID: 1}})
	c.delete("k")

	_, ok := c.get("k")
	assert.False(t, ok)
}

func TestSemaphoreCacheInvalidateAll(t *testing.T) {
	c := newSemaphoreCache()
	c.put("a", []metadata.KeySemaphore{{NodeID: 1}})
	c.put("b", []metadata.KeySemaphore{{NodeID: 2}})

	c.invalidateAll()

	assert.Equal(t, cacheStats{Keys: 0, Semaphores: 0}, c.statsSnapshot())
}

func TestSemaphoreCacheStatsSnapshot(t *testing.T) {
	c := newSemaphoreCache()
	c.put("a", []metadata.KeySemaphore{{NodeID: 1}, {NodeID: 2}})
	c.put("b", []metadata.KeySemaphore{{NodeID: 3}})

	stats := c.statsSnapshot()
	assert.Equal(t, 2, stats.Keys)
	assert.Equal(t, 3, stats.Semaphores)
}
