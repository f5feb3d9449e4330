package memorycache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/moklgydocs/mokpermissions/pkg/cache"
)

// entry represents a cache entry with value and expiry metadata
type entry struct {
	key       string
	value     string
	expiresAt time.Time // Absolute expiry: set once, never extended
	idleAt    time.Time // Sliding expiry: pushed forward on every read
	size      int64     // Approximate memory size in bytes
}

func (e *entry) expired(now time.Time) bool {
	if now.After(e.expiresAt) {
		return true
	}
	return !e.idleAt.IsZero() && now.After(e.idleAt)
}

// Cache implements an LRU cache with absolute-TTL and sliding-inactivity
// expiry. An entry is gone once either window has elapsed.
type Cache struct {
	mu sync.Mutex

	// LRU tracking
	items     map[string]*list.Element // key -> list element
	evictList *list.List               // LRU list (front = most recent, back = least recent)

	// Configuration
	maxSize    int64 // Maximum total size in bytes
	ttl        time.Duration
	slidingTTL time.Duration

	// Current state
	currentSize int64

	// Metrics
	metrics *cacheMetrics
}

type cacheMetrics struct {
	hits        uint64
	misses      uint64
	keysAdded   uint64
	keysEvicted uint64
}

// Config holds configuration for the memory cache.
type Config struct {
	// MaxSizeBytes is the maximum total size of cached items in bytes.
	// When this limit is exceeded, least recently used items are evicted.
	MaxSizeBytes int64

	// DefaultTTL is the absolute time-to-live for cached items.
	DefaultTTL time.Duration

	// SlidingTTL is the inactivity window. An item unread for this long
	// expires even if its absolute TTL has not elapsed. Zero disables
	// sliding expiry.
	SlidingTTL time.Duration

	// EnableMetrics enables collection of cache metrics.
	EnableMetrics bool
}

// New creates a new memory cache with the given configuration.
func New(config *Config) (*Cache, error) {
	c := &Cache{
		items:      make(map[string]*list.Element),
		evictList:  list.New(),
		maxSize:    config.MaxSizeBytes,
		ttl:        config.DefaultTTL,
		slidingTTL: config.SlidingTTL,
	}

	if config.EnableMetrics {
		c.metrics = &cacheMetrics{}
	}

	return c, nil
}

// Get retrieves a value from cache. A hit refreshes the sliding window.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		if c.metrics != nil {
			c.metrics.misses++
		}
		return "", false
	}

	ent := elem.Value.(*entry)
	now := time.Now()

	if ent.expired(now) {
		c.removeElement(elem)
		if c.metrics != nil {
			c.metrics.misses++
		}
		return "", false
	}

	if c.slidingTTL > 0 {
		ent.idleAt = now.Add(c.slidingTTL)
	}
	c.evictList.MoveToFront(elem)

	if c.metrics != nil {
		c.metrics.hits++
	}

	return ent.value, true
}

// Set stores a value in cache with the specified absolute TTL.
func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.ttl
	}

	// Rough approximation: 100 bytes per entry + key and value length
	size := int64(100 + len(key) + len(value))

	now := time.Now()
	var idleAt time.Time
	if c.slidingTTL > 0 {
		idleAt = now.Add(c.slidingTTL)
	}

	// Check if key already exists
	if elem, exists := c.items[key]; exists {
		ent := elem.Value.(*entry)
		oldSize := ent.size
		ent.value = value
		ent.expiresAt = now.Add(ttl)
		ent.idleAt = idleAt
		ent.size = size
		c.currentSize += size - oldSize
		c.evictList.MoveToFront(elem)
		return nil
	}

	ent := &entry{
		key:       key,
		value:     value,
		expiresAt: now.Add(ttl),
		idleAt:    idleAt,
		size:      size,
	}

	elem := c.evictList.PushFront(ent)
	c.items[key] = elem
	c.currentSize += size

	if c.metrics != nil {
		c.metrics.keysAdded++
	}

	// Evict LRU items if over capacity
	for c.maxSize > 0 && c.currentSize > c.maxSize && c.evictList.Len() > 0 {
		oldest := c.evictList.Back()
		if oldest != nil {
			c.removeElement(oldest)
			if c.metrics != nil {
				c.metrics.keysEvicted++
			}
		}
	}

	return nil
}

// Delete removes a value from cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}

	return nil
}

// Clear removes all entries from cache.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	c.currentSize = 0

	return nil
}

// Close releases resources (no-op for memory cache).
func (c *Cache) Close() error {
	return nil
}

// Metrics returns cache statistics.
func (c *Cache) Metrics() *cache.Metrics {
	if c.metrics == nil {
		return &cache.Metrics{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return &cache.Metrics{
		Hits:        c.metrics.hits,
		Misses:      c.metrics.misses,
		KeysAdded:   c.metrics.keysAdded,
		KeysEvicted: c.metrics.keysEvicted,
	}
}

// removeElement removes an element from cache (must be called with lock held).
func (c *Cache) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	ent := elem.Value.(*entry)
	delete(c.items, ent.key)
	c.currentSize -= ent.size
}

// Len returns the current number of items in cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Size returns the current total size in bytes.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}
