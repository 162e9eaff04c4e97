// Package lru provides a small bounded least-recently-used cache used by the
// pattern compiler and the decision caches.
package lru

import "container/list"

// Cache is a fixed-capacity LRU cache. It is not safe for concurrent use;
// callers hold their own lock (the owning components already serialize access).
type Cache[K comparable, V any] struct {
	capacity  int
	ll        *list.List
	items     map[K]*list.Element
	evictions uint64
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a cache that holds at most capacity entries.
// A capacity of 0 or less disables caching entirely: Put becomes a no-op.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[K]*list.Element),
	}
}

// Get returns the value stored under key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key, evicting the least recently used entry when
// the cache is full. Storing an existing key refreshes its value and recency.
func (c *Cache[K, V]) Put(key K, value V) {
	if c.capacity <= 0 {
		return
	}
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*entry[K, V]).value = value
		return
	}
	if c.ll.Len() >= c.capacity {
		c.evictOldest()
	}
	c.items[key] = c.ll.PushFront(&entry[K, V]{key: key, value: value})
}

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int {
	return c.ll.Len()
}

// Evictions returns the number of entries dropped due to capacity pressure.
func (c *Cache[K, V]) Evictions() uint64 {
	return c.evictions
}

// Purge removes all entries.
func (c *Cache[K, V]) Purge() {
	c.ll.Init()
	c.items = make(map[K]*list.Element)
}

func (c *Cache[K, V]) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
	c.evictions++
}
