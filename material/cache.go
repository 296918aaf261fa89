package material

import (
	"slices"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/malioc/capability"
)

// DefaultCacheSize is the number of translations NagaSystem keeps.
const DefaultCacheSize = 64

type translationKey struct {
	source string
	target capability.TargetAPI
}

// translation is the material-independent result of cross-compiling one
// WGSL source for one target. Vertex factories are applied on top.
type translation struct {
	entries []entryPoint
	errs    []string
}

type entryPoint struct {
	name   string
	stage  gputypes.ShaderStage
	source string
}

type cachedTranslation struct {
	value translation
	atime int64
}

// translationCache is an LRU map with a soft limit. Once the limit is
// exceeded the least recently used quarter is dropped.
//
// translationCache is safe for concurrent use.
type translationCache struct {
	mu      sync.Mutex
	entries map[translationKey]*cachedTranslation
	limit   int
	clock   int64
	hits    uint64
	misses  uint64
}

func newTranslationCache(limit int) *translationCache {
	return &translationCache{
		entries: make(map[translationKey]*cachedTranslation),
		limit:   limit,
	}
}

func (c *translationCache) get(k translationKey) (translation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		c.misses++
		return translation{}, false
	}
	c.hits++
	c.clock++
	e.atime = c.clock
	return e.value, true
}

func (c *translationCache) put(k translationKey, v translation) {
	if c.limit <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clock++
	c.entries[k] = &cachedTranslation{value: v, atime: c.clock}
	if len(c.entries) > c.limit {
		c.evict()
	}
}

// evict drops the oldest entries down to three quarters of the limit.
// Caller must hold c.mu.
func (c *translationCache) evict() {
	keep := max(c.limit*3/4, 1)
	if len(c.entries) <= keep {
		return
	}

	type aged struct {
		key   translationKey
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.atime})
	}
	slices.SortFunc(all, func(a, b aged) int { return int(a.atime - b.atime) })
	for _, a := range all[:len(all)-keep] {
		delete(c.entries, a.key)
	}
}

// CacheStats reports translation cache usage.
type CacheStats struct {
	Len      int
	Capacity int
	Hits     uint64
	Misses   uint64
}

func (c *translationCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Len: len(c.entries), Capacity: c.limit, Hits: c.hits, Misses: c.misses}
}
