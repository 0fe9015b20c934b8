package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/cache"
)

func TestDiskCacheSetThenGet(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewDiskCache(dir, 0, 0, 0)
	require.NoError(t, err)

	require.NoError(t, c.Set("key1", []byte("hello"), ""))

	data, ok, err := c.Get("key1", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
}

func TestDiskCacheGetMissing(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewDiskCache(dir, 0, 0, 0)
	require.NoError(t, err)

	_, ok, err := c.Get("absent", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskCacheGetExpiredByAge(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewDiskCache(dir, 0.0000001, 0, 0)
	require.NoError(t, err)

	require.NoError(t, c.Set("key1", []byte("hello"), ""))
	time.Sleep(50 * time.Millisecond)

	_, ok, err := c.Get("key1", "")
	require.NoError(t, err)
	assert.False(t, ok, "entry older than max_age_days should miss")
}

func TestDiskCacheGetStaleAgainstNewerSource(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewDiskCache(dir, 0, 0, 0)
	require.NoError(t, err)

	require.NoError(t, c.Set("key1", []byte("cached"), ""))

	srcPath := filepath.Join(dir, "source.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("source"), 0o644))
	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(srcPath, newer, newer))

	_, ok, err := c.Get("key1", srcPath)
	require.NoError(t, err)
	assert.False(t, ok, "source newer than cache entry should miss")
}

func TestDiskCacheProcessingStateMachine(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewDiskCache(dir, 0, 0, 0)
	require.NoError(t, err)

	assert.False(t, c.IsProcessing("key1"))

	c.MarkProcessing("key1")
	assert.True(t, c.IsProcessing("key1"))

	c.MarkComplete("key1")
	assert.False(t, c.IsProcessing("key1"))
}

func TestDiskCacheClear(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewDiskCache(dir, 0, 0, 0)
	require.NoError(t, err)

	require.NoError(t, c.Set("key1", []byte("one"), ""))
	require.NoError(t, c.Set("key2", []byte("two"), ""))

	removed, _, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, _ := c.Get("key1", "")
	assert.False(t, ok)
}

func TestDiskCacheGetStats(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewDiskCache(dir, 0, 0, 0)
	require.NoError(t, err)

	require.NoError(t, c.Set("key1", []byte("one"), ""))
	require.NoError(t, c.Set("key2", []byte("twotwo"), ""))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Greater(t, stats.TotalSizeMB, 0.0)
}
