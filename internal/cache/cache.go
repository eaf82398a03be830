// Package cache implements the pipeline's bounded byte-size buffer cache
// (§4.3): a content-addressed get/put store keyed by a 32-byte digest,
// evicting least-recently-used entries until total weight fits the
// configured capacity.
//
// github.com/hashicorp/golang-lru/v2 gives ordering and O(1)
// get/put/RemoveOldest but is entry-count bounded, not byte bounded; this
// wraps it with an explicit running weight so the eviction loop enforces
// the byte budget the spec requires instead of a count limit.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
)

type entry struct {
	buf    *floatbuf.FloatBuffer
	weight int64
}

// Cache is a concurrency-safe, byte-budget-bounded store of FloatBuffers
// keyed by bufhash.Digest.
type Cache struct {
	mu       sync.Mutex
	capacity int64
	weight   int64
	lru      *lru.Cache[bufhash.Digest, entry]
}

// New builds a cache with the given byte capacity. golang-lru requires a
// nonzero entry-count bound too; it's set generously high since the real
// bound enforced here is the byte weight, not the entry count.
func New(capacityBytes int64) *Cache {
	c := &Cache{capacity: capacityBytes}
	inner, err := lru.New[bufhash.Digest, entry](1 << 20)
	if err != nil {
		panic("cache: " + err.Error())
	}
	c.lru = inner
	return c
}

// Get returns the buffer stored under key, if present, and marks it
// recently used.
func (c *Cache) Get(key bufhash.Digest) (*floatbuf.FloatBuffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return e.buf, true
}

// Put stores buf under key with the given byte weight, evicting the
// least-recently-used entries until total weight fits the configured
// capacity (including the new entry).
func (c *Cache) Put(key bufhash.Digest, buf *floatbuf.FloatBuffer, weight int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.lru.Peek(key); ok {
		c.weight -= old.weight
		c.lru.Remove(key)
	}

	c.lru.Add(key, entry{buf: buf, weight: weight})
	c.weight += weight

	for c.weight > c.capacity && c.lru.Len() > 0 {
		_, old, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.weight -= old.weight
	}
}

// Weight reports the cache's current total byte weight.
func (c *Cache) Weight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// BufferWeight estimates the byte weight of a FloatBuffer for cache
// accounting: 4 bytes per float32 sample.
func BufferWeight(buf *floatbuf.FloatBuffer) int64 {
	return int64(len(buf.Data)) * 4
}
