package geo

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"rojgarsetu/core-service/internal/model"
)

// Cache is a bounded reverse-geocode cache keyed by rounded coordinates.
// It never calls the network; on a miss the caller queries the provider and
// stores the result with Put. A lost update only costs a later cache miss.
type Cache interface {
	Get(ctx context.Context, lat, lon float64) (*model.Address, bool, error)
	Put(ctx context.Context, lat, lon float64, addr model.Address) error
}

// CacheKey rounds coordinates to precision decimal places and formats them
// as a stable key. Physically close lookups collapsing onto one key is the
// intended spatial bucketing, not a bug. Two decimals ≈ 1.1 km cells.
func CacheKey(lat, lon float64, precision int) string {
	scale := math.Pow10(precision)
	return fmt.Sprintf("geocode:%.*f:%.*f",
		precision, math.Round(lat*scale)/scale,
		precision, math.Round(lon*scale)/scale)
}

// ─── In-memory cache ─────────────────────────────────────────────────────────

type memoryEntry struct {
	addr     model.Address
	storedAt time.Time
}

// MemoryCache is a mutex-guarded map with insertion-order (oldest-first)
// eviction at capacity and TTL expiry on read. The clock is injectable so
// TTL behaviour is testable without real time delays.
type MemoryCache struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	order     []string // insertion order, oldest first
	capacity  int
	ttl       time.Duration
	precision int
	now       func() time.Time
}

// NewMemoryCache returns a cache holding at most capacity entries, each
// fresh for ttl. A ttl of zero disables expiry.
func NewMemoryCache(capacity int, ttl time.Duration, precision int) *MemoryCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryCache{
		entries:   make(map[string]memoryEntry, capacity),
		capacity:  capacity,
		ttl:       ttl,
		precision: precision,
		now:       time.Now,
	}
}

// WithClock replaces the time source, so TTL expiry can be exercised in
// tests without sleeping.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

// Get returns the cached address for the bucketed coordinates, if present
// and unexpired. An expired entry is removed and reported as a miss — it is
// never served as fresh.
func (c *MemoryCache) Get(_ context.Context, lat, lon float64) (*model.Address, bool, error) {
	key := CacheKey(lat, lon, c.precision)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl {
		c.remove(key)
		return nil, false, nil
	}
	addr := e.addr
	return &addr, true, nil
}

// Put stores an address, evicting the oldest-inserted entry when the cache
// is full. Overwriting an existing key keeps its original insertion slot.
func (c *MemoryCache) Put(_ context.Context, lat, lon float64, addr model.Address) error {
	key := CacheKey(lat, lon, c.precision)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.capacity {
			c.remove(c.order[0])
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = memoryEntry{addr: addr, storedAt: c.now()}
	return nil
}

// Len reports the current entry count.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove deletes key from both the map and the order slice. Callers hold mu.
func (c *MemoryCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
