package cache_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/cache"
)

func newTestRedisCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisCache(client, time.Minute)
}

func TestRedisCacheSetThenGet(t *testing.T) {
	c := newTestRedisCache(t)

	require.NoError(t, c.Set("key1", []byte("hello"), ""))

	data, ok, err := c.Get("key1", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
}

func TestRedisCacheMiss(t *testing.T) {
	c := newTestRedisCache(t)

	_, ok, err := c.Get("absent", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheProcessingStateMachine(t *testing.T) {
	c := newTestRedisCache(t)

	assert.False(t, c.IsProcessing("key1"))
	c.MarkProcessing("key1")
	assert.True(t, c.IsProcessing("key1"))
	c.MarkComplete("key1")
	assert.False(t, c.IsProcessing("key1"))
}

func TestRedisCacheClear(t *testing.T) {
	c := newTestRedisCache(t)

	require.NoError(t, c.Set("key1", []byte("one"), ""))
	require.NoError(t, c.Set("key2", []byte("two"), ""))

	removed, _, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, _ := c.Get("key1", "")
	assert.False(t, ok)
}

func TestRedisCacheGetStats(t *testing.T) {
	c := newTestRedisCache(t)

	require.NoError(t, c.Set("key1", []byte("one"), ""))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
}
