// Package cache backs the Normalizer's process-wide cache
// with Redis when SCANNER_REDIS_ADDR is set, so multiple scanner instances
// behind a load balancer share one normalize cache instead of each keeping
// its own in-memory copy.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ttl mirrors the in-memory cache's effectively-unbounded lifetime with a
// finite bound a shared store needs to avoid growing forever.
const ttl = 24 * time.Hour

// RedisClient is a thin JSON get/set wrapper over go-redis, grounded on the
// pack's own Redis client shape (Set/Get/Close, JSON marshal on write).
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient dials addr and verifies connectivity with a PING.
func NewRedisClient(addr string) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisClient{client: rdb}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// GetJSON reports whether dest was populated from a cached value. A cache
// miss is not an error; a Redis outage is logged and treated as a miss so callers
// transparently fall through to recomputing the value — a cache failure
// degrades, it never fails the scan.
func (r *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("[CACHE] redis get failed, treating as miss: %v", err)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("[CACHE] redis value for %q unreadable, treating as miss: %v", key, err)
		return false
	}
	return true
}

// SetJSON stores v under key with the package TTL. Failures are logged and
// swallowed for the same reason GetJSON treats errors as misses.
func (r *RedisClient) SetJSON(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("[CACHE] marshal for %q failed: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("[CACHE] redis set for %q failed: %v", key, err)
	}
}
