// Package cache implements the content-addressed extraction cache: one
// file per entry on disk, keyed by a fingerprint, with atomic writes,
// age/size-bounded eviction, and an in-flight producer guard so
// concurrent requests for the same document don't extract it twice.
package cache

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

// defaultProcessingTimeout bounds how long a key may sit in Processing
// before Processing marks left behind by a crashed producer are treated
// as Idle again.
const defaultProcessingTimeout = 10 * time.Minute

// defaultTargetSizeRatio is the post-cleanup size target, expressed as a
// fraction of the configured maximum cache size.
const defaultTargetSizeRatio = 0.9

// Stats is served verbatim by the HTTP API's GET /cache/stats.
type Stats struct {
	TotalFiles        int     `json:"total_files"`
	TotalSizeMB       float64 `json:"total_size_mb"`
	AvailableSpaceMB  float64 `json:"available_space_mb"`
	OldestFileAgeDays float64 `json:"oldest_file_age_days"`
	NewestFileAgeDays float64 `json:"newest_file_age_days"`
}

// Cache is the interface both the disk-backed store and the Redis-backed
// store implement, so callers (the extraction core, the HTTP API) can
// swap backends without touching call sites.
type Cache interface {
	Get(key string, sourcePath string) ([]byte, bool, error)
	Set(key string, data []byte, sourcePath string) error
	IsProcessing(key string) bool
	MarkProcessing(key string)
	MarkComplete(key string)
	Clear() (removed int, mbFreed float64, err error)
	GetStats() (Stats, error)
}

// DiskCache is the default Cache implementation: one file per entry under
// Dir, named by its cache key.
type DiskCache struct {
	dir               string
	maxAgeDays        float64
	maxCacheSizeMB    float64
	minFreeSpaceMB    float64
	processingTimeout time.Duration

	mu         sync.Mutex
	processing map[string]time.Time
}

// NewDiskCache creates (if needed) dir and returns a cache rooted there.
// maxAgeDays/maxCacheSizeMB/minFreeSpaceMB feed SmartCleanupCache; zero
// values disable the corresponding check.
func NewDiskCache(dir string, maxAgeDays, maxCacheSizeMB, minFreeSpaceMB float64) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, kerr.NewIOError("create cache directory", err)
	}
	return &DiskCache{
		dir:               dir,
		maxAgeDays:        maxAgeDays,
		maxCacheSizeMB:    maxCacheSizeMB,
		minFreeSpaceMB:    minFreeSpaceMB,
		processingTimeout: defaultProcessingTimeout,
		processing:        make(map[string]time.Time),
	}, nil
}

// Dir returns the backing directory.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) entryPath(key string) string {
	return filepath.Join(c.dir, key)
}

// Get returns the cached bytes for key, iff the entry exists, has not
// expired under maxAgeDays, and (when sourcePath is given) the source file
// is not newer than the cache entry. IO errors degrade to a cache miss
// rather than propagating.
func (c *DiskCache) Get(key string, sourcePath string) ([]byte, bool, error) {
	path := c.entryPath(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, nil
	}

	if c.maxAgeDays > 0 {
		age := time.Since(info.ModTime())
		if age > time.Duration(c.maxAgeDays*float64(24*time.Hour)) {
			return nil, false, nil
		}
	}

	if sourcePath != "" {
		srcInfo, err := os.Stat(sourcePath)
		if err == nil && srcInfo.ModTime().After(info.ModTime()) {
			return nil, false, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, nil
	}

	touchAccessTime(path)
	return data, true, nil
}

// Set writes data for key atomically (temp file in the same directory,
// then rename) so a reader never observes a partially written entry.
func (c *DiskCache) Set(key string, data []byte, sourcePath string) error {
	_ = sourcePath

	path := c.entryPath(key)
	tmp, err := os.CreateTemp(c.dir, key+".tmp-*")
	if err != nil {
		return kerr.NewCacheError("create temp cache file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return kerr.NewCacheError("write cache entry", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return kerr.NewCacheError("close cache entry", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return kerr.NewCacheError("rename cache entry into place", err)
	}

	if c.maxCacheSizeMB > 0 || c.minFreeSpaceMB > 0 {
		go func() {
			_, _, _ = SmartCleanupCache(c.dir, c.maxAgeDays, c.maxCacheSizeMB, c.minFreeSpaceMB)
		}()
	}

	return nil
}

// IsProcessing reports whether key is currently marked Processing and that
// mark has not gone stale.
func (c *DiskCache) IsProcessing(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	markedAt, ok := c.processing[key]
	if !ok {
		return false
	}
	if time.Since(markedAt) > c.processingTimeout {
		delete(c.processing, key)
		return false
	}
	return true
}

// MarkProcessing transitions key from Idle to Processing.
func (c *DiskCache) MarkProcessing(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processing[key] = time.Now()
}

// MarkComplete transitions key from Processing back to Idle.
func (c *DiskCache) MarkComplete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.processing, key)
}

// Clear removes every entry and reports how many files and how many
// megabytes were freed.
func (c *DiskCache) Clear() (int, float64, error) {
	return ClearCacheDirectory(c.dir)
}

// GetStats reports on-disk cache size and age distribution.
func (c *DiskCache) GetStats() (Stats, error) {
	return GetCacheMetadata(c.dir)
}

func listEntries(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e)
		}
	}
	return out, nil
}
