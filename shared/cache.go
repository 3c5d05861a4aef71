package shared

import (
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// Cache is a bounded key/value store with strict FIFO eviction: when a new
// key arrives at capacity, the oldest tracked key is evicted. Reads do not
// refresh an entry's position.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]V
	order    *linkedlistqueue.Queue // keys, oldest first
}

// NewCache creates a cache holding at most capacity entries (minimum 1).
func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]V, capacity),
		order:    linkedlistqueue.New(),
	}
}

// Store inserts or replaces key. Replacing keeps the key's original place
// in the eviction order.
func (c *Cache[K, V]) Store(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; ok {
		c.items[key] = value
		return
	}
	if len(c.items) >= c.capacity {
		if oldest, ok := c.order.Dequeue(); ok {
			delete(c.items, oldest.(K))
			logger().Debugf("cache evicted %v (capacity %d)", oldest, c.capacity)
		}
	}
	c.order.Enqueue(key)
	c.items[key] = value
}

// Load returns the value cached under key.
func (c *Cache[K, V]) Load(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

// Contains reports whether key is cached.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.Load(key)
	return ok
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the configured capacity.
func (c *Cache[K, V]) Capacity() int { return c.capacity }
