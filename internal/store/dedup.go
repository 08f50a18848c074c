// Package store provides in-memory deduplication of captured clip ranges
// using a Bloom filter fronting an exact set with LRU eviction.
package store

import (
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ClipKey derives the dedup key of one captured range. Identical item and
// integer start/end seconds mean an identical clip for dedup purposes.
func ClipKey(identifier string, startSeconds, endSeconds int) string {
	return fmt.Sprintf("%s@%d-%d", identifier, startSeconds, endSeconds)
}

// DedupStore tracks which clip ranges have already been persisted so a
// repeat capture of the same range can be flagged instead of written again.
// It is purely in-memory; the durable record lives in the clip catalog.
type DedupStore struct {
	keys                   map[string]struct{}
	bloom                  *bloom.BloomFilter
	lru                    *lru.Cache[string, struct{}]
	mutex                  sync.RWMutex
	maxKeys                int
	bloomFalsePositiveRate float64
}

// NewDedupStore creates a dedup store with the given capacity and Bloom
// false positive rate.
func NewDedupStore(maxKeys int, bloomFalsePositiveRate float64) *DedupStore {
	if maxKeys < 0 {
		panic("maxKeys must not be negative")
	}

	lruCache, _ := lru.New[string, struct{}](maxKeys)
	bloomFilter := bloom.NewWithEstimates(uint(maxKeys), bloomFalsePositiveRate)

	return &DedupStore{
		keys:                   make(map[string]struct{}),
		bloom:                  bloomFilter,
		lru:                    lruCache,
		maxKeys:                maxKeys,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}
}

// Has checks whether a clip key is present. The Bloom filter rejects the
// common miss without touching the exact set.
func (ds *DedupStore) Has(key string) bool {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()

	if !ds.bloom.TestString(key) {
		return false
	}

	_, exists := ds.keys[key]
	return exists
}

// Add records a clip key.
func (ds *DedupStore) Add(key string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	if _, exists := ds.keys[key]; exists {
		return
	}

	ds.keys[key] = struct{}{}
	ds.bloom.AddString(key)
	ds.lru.Add(key, struct{}{})

	if len(ds.keys) > ds.maxKeys {
		ds.evictOldest()
	}
}

// Remove forgets a clip key.
func (ds *DedupStore) Remove(key string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	if _, exists := ds.keys[key]; !exists {
		return
	}

	delete(ds.keys, key)
	ds.lru.Remove(key)
	// The Bloom filter does not support removal; the resulting false
	// positives still fall through to the exact set.
}

// Load clears the store and seeds it with keys from the durable catalog.
func (ds *DedupStore) Load(keys []string) {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	ds.clear()

	for _, key := range keys {
		if key != "" {
			ds.keys[key] = struct{}{}
			ds.bloom.AddString(key)
			ds.lru.Add(key, struct{}{})
		}
	}

	for len(ds.keys) > ds.maxKeys {
		ds.evictOldest()
	}
}

// Size returns the number of keys currently stored.
func (ds *DedupStore) Size() int {
	ds.mutex.RLock()
	defer ds.mutex.RUnlock()
	return len(ds.keys)
}

// Clear removes all keys from the store.
func (ds *DedupStore) Clear() {
	ds.mutex.Lock()
	defer ds.mutex.Unlock()
	ds.clear()
}

func (ds *DedupStore) clear() {
	// maxKeys was validated at construction and never changes.
	ds.keys = make(map[string]struct{})
	ds.bloom = bloom.NewWithEstimates(uint(ds.maxKeys), ds.bloomFalsePositiveRate)
	ds.lru.Purge()
}

func (ds *DedupStore) evictOldest() {
	if ds.lru.Len() == 0 {
		return
	}

	oldestKey, _, ok := ds.lru.GetOldest()
	if !ok {
		return
	}

	delete(ds.keys, oldestKey)
	ds.lru.Remove(oldestKey)
}
