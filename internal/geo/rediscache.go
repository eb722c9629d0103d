package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rojgarsetu/core-service/internal/model"
)

// RedisCache is the durable Cache backend. Entries are JSON values stored
// with a TTL; redis owns expiry, so an expired entry is simply absent and a
// restart does not lose warm lookups. Capacity is left to redis maxmemory
// policy rather than tracked here.
type RedisCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	precision int
}

// NewRedisCache returns a redis-backed cache with the given entry TTL.
func NewRedisCache(rdb *redis.Client, ttl time.Duration, precision int) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, precision: precision}
}

// Get fetches and decodes the entry for the bucketed coordinates.
func (c *RedisCache) Get(ctx context.Context, lat, lon float64) (*model.Address, bool, error) {
	raw, err := c.rdb.Get(ctx, CacheKey(lat, lon, c.precision)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var addr model.Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		// Corrupt entry: treat as a miss so the caller refreshes it.
		return nil, false, nil
	}
	return &addr, true, nil
}

// Put stores the address with the configured TTL.
func (c *RedisCache) Put(ctx context.Context, lat, lon float64, addr model.Address) error {
	raw, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	if err := c.rdb.Set(ctx, CacheKey(lat, lon, c.precision), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
