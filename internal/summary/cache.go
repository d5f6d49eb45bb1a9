package summary

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// CacheKey is where the serialized summary document lives.
const CacheKey = "summary_json_str"

// ErrCacheMiss is returned by Get when no summary has been hydrated yet.
var ErrCacheMiss = errors.New("summary cache is empty")

// Cache stores the single serialized summary document. The document is
// kept pre-serialized so the hot read path never re-marshals.
type Cache interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, payload string) error
}

// MemoryCache is the in-process cache used when no Redis is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	payload string
	set     bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(ctx context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set {
		return "", ErrCacheMiss
	}
	return c.payload, nil
}

func (c *MemoryCache) Set(ctx context.Context, payload string) error {
	c.mu.Lock()
	c.payload = payload
	c.set = true
	c.mu.Unlock()
	return nil
}

// RedisCache shares the summary document across processes.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context) (string, error) {
	payload, err := c.client.Get(ctx, CacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return payload, nil
}

func (c *RedisCache) Set(ctx context.Context, payload string) error {
	// No TTL: the document is overwritten on every record-store write.
	return c.client.Set(ctx, CacheKey, payload, 0).Err()
}
