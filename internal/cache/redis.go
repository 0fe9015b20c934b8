package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

// redisKeyPrefix namespaces every key this cache writes so a shared
// Redis instance can host other tenants.
const redisKeyPrefix = "kreuzberg:cache:"

// RedisCache is the shared-backend alternative to DiskCache for
// multi-process deployments. It satisfies the same Cache interface so
// callers don't need to know which backend is active.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration

	mu         sync.Mutex
	processing map[string]time.Time
}

// NewRedisCache wraps an existing *redis.Client. ttl of zero means entries
// never expire on their own (eviction is still available via Clear).
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, processing: make(map[string]time.Time)}
}

func (c *RedisCache) Get(key string, sourcePath string) ([]byte, bool, error) {
	_ = sourcePath
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, nil
	}
	return data, true, nil
}

func (c *RedisCache) Set(key string, data []byte, sourcePath string) error {
	_ = sourcePath
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return kerr.NewCacheError("redis set", err)
	}
	return nil
}

func (c *RedisCache) IsProcessing(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	markedAt, ok := c.processing[key]
	if !ok {
		return false
	}
	if time.Since(markedAt) > defaultProcessingTimeout {
		delete(c.processing, key)
		return false
	}
	return true
}

func (c *RedisCache) MarkProcessing(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processing[key] = time.Now()
}

func (c *RedisCache) MarkComplete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.processing, key)
}

func (c *RedisCache) Clear() (int, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var removed int
	var freedBytes int64
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if n, err := c.client.StrLen(ctx, key).Result(); err == nil {
			freedBytes += n
		}
		if err := c.client.Del(ctx, key).Err(); err == nil {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, float64(freedBytes) / bytesPerMB, kerr.NewCacheError("redis scan", err)
	}

	return removed, float64(freedBytes) / bytesPerMB, nil
}

func (c *RedisCache) GetStats() (Stats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats := Stats{}
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	var totalBytes int64
	for iter.Next(ctx) {
		stats.TotalFiles++
		if n, err := c.client.StrLen(ctx, iter.Val()).Result(); err == nil {
			totalBytes += n
		}
	}
	if err := iter.Err(); err != nil {
		return stats, kerr.NewCacheError("redis scan", err)
	}
	stats.TotalSizeMB = float64(totalBytes) / bytesPerMB
	return stats, nil
}
