// Package resolution provides type caching for inference performance.
package resolution

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codescalpel/codescalpel/graph/callgraph/core"
)

// TypeCache provides LRU-based caching for inferred types, backed by
// hashicorp/golang-lru so capacity and eviction order are governed by a
// single well-tested implementation shared with the rest of the analysis
// cache rather than a hand-rolled container/list.
// Thread-safe for concurrent access during parallel file processing.
type TypeCache struct {
	cache *lru.Cache[string, *cacheEntry]
	mutex sync.RWMutex

	// Metrics
	hits   int64
	misses int64
}

// cacheEntry stores a cached type with metadata.
type cacheEntry struct {
	typ  core.Type
	file string // Source file for invalidation
}

// NewTypeCache creates a new TypeCache with the given capacity.
func NewTypeCache(capacity int) *TypeCache {
	if capacity <= 0 {
		capacity = 10000 // Default
	}
	c, _ := lru.New[string, *cacheEntry](capacity)
	return &TypeCache{cache: c}
}

// Get retrieves a type from the cache.
// Returns the type and true if found, nil and false otherwise.
func (tc *TypeCache) Get(key string) (core.Type, bool) {
	entry, found := tc.cache.Get(key)

	tc.mutex.Lock()
	if found {
		tc.hits++
	} else {
		tc.misses++
	}
	tc.mutex.Unlock()

	if !found {
		return nil, false
	}
	return entry.typ, true
}

// Put adds a type to the cache. Eviction of the least recently used entry
// past capacity is handled internally by the LRU.
func (tc *TypeCache) Put(key string, typ core.Type, file string) {
	tc.cache.Add(key, &cacheEntry{typ: typ, file: file})
}

// InvalidateFile removes all entries associated with a file.
// Used when a file is modified.
func (tc *TypeCache) InvalidateFile(file string) int {
	count := 0
	for _, key := range tc.cache.Keys() {
		entry, ok := tc.cache.Peek(key)
		if !ok || entry.file != file {
			continue
		}
		tc.cache.Remove(key)
		count++
	}
	return count
}

// Clear removes all entries from the cache.
func (tc *TypeCache) Clear() {
	tc.cache.Purge()
}

// Stats returns cache statistics.
func (tc *TypeCache) Stats() (hits, misses int64, size int) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	return tc.hits, tc.misses, tc.cache.Len()
}

// HitRate returns the cache hit rate as a percentage.
func (tc *TypeCache) HitRate() float64 {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	total := tc.hits + tc.misses
	if total == 0 {
		return 0.0
	}
	return float64(tc.hits) / float64(total) * 100.0
}

// MakeCacheKey creates a cache key for a variable at a location.
func MakeCacheKey(file string, line, col int, varName string) string {
	return file + ":" + varName + "@" + itoa(line) + ":" + itoa(col)
}

// Simple int to string (avoid fmt import for performance).
func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	neg := false
	if i < 0 {
		neg = true
		i = -i
	}

	buf := make([]byte, 20)
	pos := len(buf)

	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if neg {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}
