package pptx

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// ImageCache bounds embedded-image bytes by both entry count and total
// size, evicting in LRU order. The underlying hashicorp/golang-lru/v2
// cache only bounds by entry count, so
// this wraps it with an eviction callback that tracks cumulative bytes
// and proactively evicts the oldest entry before any insert that would
// exceed the byte budget.
type ImageCache struct {
	cache    *lru.Cache[string, []byte]
	maxBytes int64
	curBytes int64
}

// NewImageCache builds a cache bounded by maxEntries and maxBytes; a
// non-positive maxEntries falls back to 1 so the underlying LRU never
// rejects construction.
func NewImageCache(maxEntries int, maxSizeMB int) (*ImageCache, error) {
	if maxEntries <= 0 {
		maxEntries = 1
	}

	ic := &ImageCache{maxBytes: int64(maxSizeMB) * 1024 * 1024}
	cache, err := lru.NewWithEvict(maxEntries, func(_ string, value []byte) {
		ic.curBytes -= int64(len(value))
	})
	if err != nil {
		return nil, err
	}
	ic.cache = cache
	return ic, nil
}

// Get returns the cached bytes for archivePath, if present.
func (ic *ImageCache) Get(archivePath string) ([]byte, bool) {
	return ic.cache.Get(archivePath)
}

// Put inserts data under archivePath, first evicting the oldest entries
// until the byte budget has room (or the cache is empty). A single entry
// larger than the entire byte budget is still stored; bounding by entry
// count takes precedence so one oversized image can't make the cache
// permanently empty.
func (ic *ImageCache) Put(archivePath string, data []byte) {
	if ic.maxBytes > 0 {
		for ic.curBytes+int64(len(data)) > ic.maxBytes && ic.cache.Len() > 0 {
			ic.cache.RemoveOldest()
		}
	}
	ic.cache.Add(archivePath, data)
	ic.curBytes += int64(len(data))
}

// Len reports the current entry count, exposed for tests.
func (ic *ImageCache) Len() int { return ic.cache.Len() }
