package directory

import (
	"sync"

	"github.com/dreamware/hivedir/internal/metadata"
)

// semaphoreCache is a read-through cache of key -> semaphore set, adapted
// from the teacher's internal/storage.MemoryStore: the same
// Get/Put/Delete/Stats shape, repurposed from caching arbitrary []byte
// values to caching []metadata.KeySemaphore. The cache belongs to its
// Directory, and the hive façade builds fresh Directories whenever
// ForceSynchronize reloads a changed revision.
//
// Like the teacher's MemoryStore, every accessor copies in and out to keep
// callers from mutating cached state out from under concurrent readers.
type semaphoreCache struct {
	mu   sync.RWMutex
	data map[string][]metadata.KeySemaphore
}

func newSemaphoreCache() *semaphoreCache {
	return &semaphoreCache{data: make(map[string][]metadata.KeySemaphore)}
}

func (c *semaphoreCache) get(key string) ([]metadata.KeySemaphore, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	if !ok {
		return nil, false
	}
	out := make([]metadata.KeySemaphore, len(v))
	copy(out, v)
	return out, true
}

func (c *semaphoreCache) put(key string, semaphores []metadata.KeySemaphore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]metadata.KeySemaphore, len(semaphores))
	copy(stored, semaphores)
	c.data[key] = stored
}

func (c *semaphoreCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// invalidateAll drops every cached entry. Called by
// Directory.DeletePrimaryIndexKey, whose cascade can remove rows behind any
// number of primary, resource, and secondary cache keys.
func (c *semaphoreCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]metadata.KeySemaphore)
}

// cacheStats reports the cache's current size, mirroring the teacher's
// StoreStats (Keys, Bytes) with Semaphores in place of Bytes: it counts
// semaphore entries, since there is no byte-sized value here.
type cacheStats struct {
	Keys       int
	Semaphores int
}

func (c *semaphoreCache) statsSnapshot() cacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := cacheStats{Keys: len(c.data)}
	for _, v := range c.data {
		s.Semaphores += len(v)
	}
	return s
}
