// Package colorcache provides a bounded, cost-aware LRU store for memoizing
// per-line analysis decisions. Entries leave the cache only through eviction;
// a stored decision for a given key is never rewritten.
package colorcache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	// DefaultCapacity bounds the number of cached decisions.
	DefaultCapacity = 100
	// DefaultCostBudget bounds the summed entry cost in bytes.
	DefaultCostBudget = 50 << 20
)

type entry[V any] struct {
	value V
	cost  int64
}

// Cache is a capacity- and cost-bounded LRU map. It is safe for concurrent
// use; lookups from parallel per-line analysis serialize on a single writer
// barrier because every hit refreshes recency.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	lru        *simplelru.LRU[K, entry[V]]
	costBudget int64
	cost       int64

	hits   uint64
	misses uint64
}

// New creates a cache with the given entry capacity and cost budget in bytes.
// Non-positive arguments fall back to the defaults.
func New[K comparable, V any](capacity int, costBudget int64) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if costBudget <= 0 {
		costBudget = DefaultCostBudget
	}
	c := &Cache[K, V]{costBudget: costBudget}
	l, err := simplelru.NewLRU(capacity, func(_ K, e entry[V]) {
		c.cost -= e.cost
	})
	if err != nil {
		// simplelru only errors on non-positive size, excluded above.
		panic(err)
	}
	c.lru = l
	return c
}

// Get returns the cached value for key, if present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Put stores value under key with the given cost. Existing entries are left
// untouched: decisions are deterministic per key, so the first write wins.
// Entries whose cost alone exceeds the budget are not stored.
func (c *Cache[K, V]) Put(key K, value V, cost int64) {
	if cost < 0 {
		cost = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cost > c.costBudget {
		return
	}
	if _, ok := c.lru.Peek(key); ok {
		return
	}
	c.lru.Add(key, entry[V]{value: value, cost: cost})
	c.cost += cost
	for c.cost > c.costBudget && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Cost returns the summed cost of cached entries in bytes.
func (c *Cache[K, V]) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

// Stats returns hit and miss counts since creation.
func (c *Cache[K, V]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Purge drops all entries.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.cost = 0
}
