package cache

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

const bytesPerMB = 1024 * 1024

// CleanupCache removes entries older than maxAgeDays, then, while the
// directory's total size exceeds maxSizeMB, evicts entries in ascending
// access-time order until total size is at or below
// targetSizeRatio*maxSizeMB.
func CleanupCache(cacheDir string, maxAgeDays, maxSizeMB, targetSizeRatio float64) (int, float64, error) {
	entries, err := listEntries(cacheDir)
	if err != nil {
		return 0, 0, kerr.NewCacheError("list cache directory", err)
	}

	type entry struct {
		path   string
		size   int64
		access time.Time
	}

	var live []entry
	removed := 0
	var freedBytes int64

	for _, e := range entries {
		path := filepath.Join(cacheDir, e.Name())
		info, err := e.Info()
		if err != nil {
			continue
		}

		if maxAgeDays > 0 && time.Since(info.ModTime()) > time.Duration(maxAgeDays*float64(24*time.Hour)) {
			if err := os.Remove(path); err == nil {
				removed++
				freedBytes += info.Size()
			}
			continue
		}

		live = append(live, entry{path: path, size: info.Size(), access: accessTime(info)})
	}

	if maxSizeMB > 0 {
		var totalBytes int64
		for _, e := range live {
			totalBytes += e.size
		}

		if float64(totalBytes)/bytesPerMB > maxSizeMB {
			sort.Slice(live, func(i, j int) bool { return live[i].access.Before(live[j].access) })

			if targetSizeRatio <= 0 {
				targetSizeRatio = defaultTargetSizeRatio
			}
			targetBytes := int64(targetSizeRatio * maxSizeMB * bytesPerMB)

			i := 0
			for totalBytes > targetBytes && i < len(live) {
				e := live[i]
				if err := os.Remove(e.path); err == nil {
					removed++
					freedBytes += e.size
					totalBytes -= e.size
				}
				i++
			}
		}
	}

	return removed, float64(freedBytes) / bytesPerMB, nil
}

// SmartCleanupCache runs CleanupCache's age/size pass, then continues
// evicting in ascending access-time order while free disk space remains
// below minFreeSpaceMB.
func SmartCleanupCache(cacheDir string, maxAgeDays, maxSizeMB, minFreeSpaceMB float64) (int, float64, error) {
	removed, freedMB, err := CleanupCache(cacheDir, maxAgeDays, maxSizeMB, defaultTargetSizeRatio)
	if err != nil {
		return removed, freedMB, err
	}

	if minFreeSpaceMB <= 0 {
		return removed, freedMB, nil
	}

	availableMB, err := GetAvailableDiskSpace(cacheDir)
	if err != nil {
		return removed, freedMB, nil
	}
	if availableMB >= minFreeSpaceMB {
		return removed, freedMB, nil
	}

	entries, err := listEntries(cacheDir)
	if err != nil {
		return removed, freedMB, nil
	}

	type entry struct {
		path   string
		size   int64
		access time.Time
	}
	live := make([]entry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		live = append(live, entry{path: filepath.Join(cacheDir, e.Name()), size: info.Size(), access: accessTime(info)})
	}
	sort.Slice(live, func(i, j int) bool { return live[i].access.Before(live[j].access) })

	for _, e := range live {
		if availableMB >= minFreeSpaceMB {
			break
		}
		if err := os.Remove(e.path); err != nil {
			continue
		}
		removed++
		freedMB += float64(e.size) / bytesPerMB
		availableMB += float64(e.size) / bytesPerMB
	}

	return removed, freedMB, nil
}

// FilterOldCacheEntries returns the indices of cacheTimes older than
// maxAgeSeconds relative to currentTime.
func FilterOldCacheEntries(cacheTimes []float64, currentTime, maxAgeSeconds float64) []int {
	var out []int
	for i, t := range cacheTimes {
		if currentTime-t > maxAgeSeconds {
			out = append(out, i)
		}
	}
	return out
}

// SortCacheByAccessTime returns entry keys ordered ascending by access
// time (oldest first), the order eviction proceeds in.
func SortCacheByAccessTime(entries []KeyPart) []string {
	type kv struct {
		key  string
		time float64
	}
	pairs := make([]kv, 0, len(entries))
	for _, e := range entries {
		t, _ := e.Value.(float64)
		pairs = append(pairs, kv{key: e.Key, time: t})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].time < pairs[j].time })

	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.key
	}
	return out
}

// GetCacheMetadata reports size and age statistics for cacheDir.
func GetCacheMetadata(cacheDir string) (Stats, error) {
	entries, err := listEntries(cacheDir)
	if err != nil {
		return Stats{}, kerr.NewCacheError("list cache directory", err)
	}

	stats := Stats{}
	var totalBytes int64
	var oldest, newest time.Time

	for i, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		totalBytes += info.Size()
		if i == 0 || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
		if i == 0 || info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}

	stats.TotalFiles = len(entries)
	stats.TotalSizeMB = float64(totalBytes) / bytesPerMB
	if availableMB, err := GetAvailableDiskSpace(cacheDir); err == nil {
		stats.AvailableSpaceMB = availableMB
	}
	if len(entries) > 0 {
		stats.OldestFileAgeDays = time.Since(oldest).Hours() / 24
		stats.NewestFileAgeDays = time.Since(newest).Hours() / 24
	}

	return stats, nil
}

// ClearCacheDirectory removes every entry in cacheDir and reports how many
// files and how many megabytes were freed.
func ClearCacheDirectory(cacheDir string) (int, float64, error) {
	entries, err := listEntries(cacheDir)
	if err != nil {
		return 0, 0, kerr.NewCacheError("list cache directory", err)
	}

	removed := 0
	var freedBytes int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(cacheDir, e.Name())
		if err := os.Remove(path); err != nil {
			continue
		}
		removed++
		freedBytes += info.Size()
	}

	return removed, float64(freedBytes) / bytesPerMB, nil
}

// BatchCleanupCaches runs SmartCleanupCache across multiple cache
// directories, returning one (removed, freedMB) pair per directory in
// order.
func BatchCleanupCaches(cacheDirs []string, maxAgeDays, maxSizeMB, minFreeSpaceMB float64) ([][2]float64, error) {
	out := make([][2]float64, len(cacheDirs))
	for i, dir := range cacheDirs {
		removed, freedMB, err := SmartCleanupCache(dir, maxAgeDays, maxSizeMB, minFreeSpaceMB)
		if err != nil {
			return nil, err
		}
		out[i] = [2]float64{float64(removed), freedMB}
	}
	return out, nil
}
