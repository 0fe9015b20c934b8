package cache

// Key derivation and validation helpers shared by every cache backend.

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// KeyPart is one named value folded into a cache key by GenerateCacheKey.
type KeyPart struct {
	Key   string
	Value any
}

// FastHash is a non-cryptographic 64-bit hash suitable for key
// derivation.
func FastHash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// formatPart canonicalizes a value to its textual form: strings are
// literal, numbers decimal, bools "true"/"false", []byte "bytes:<len>",
// anything else "type-name:repr".
func formatPart(key string, value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%s=%s", key, v)
	case int:
		return fmt.Sprintf("%s=%s", key, strconv.Itoa(v))
	case int64:
		return fmt.Sprintf("%s=%s", key, strconv.FormatInt(v, 10))
	case float64:
		return fmt.Sprintf("%s=%s", key, strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		return fmt.Sprintf("%s=%t", key, v)
	case []byte:
		return fmt.Sprintf("%s=bytes:%d", key, len(v))
	default:
		return fmt.Sprintf("%s=%T:%v", key, v, v)
	}
}

// GenerateCacheKey sorts parts by key name lexicographically, canonicalizes
// each value, joins with "=" and "&", then hashes the result to a hex
// string. An empty parts list yields the literal key "empty".
func GenerateCacheKey(parts []KeyPart) string {
	if len(parts) == 0 {
		return "empty"
	}

	sorted := make([]KeyPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	formatted := make([]string, len(sorted))
	for i, p := range sorted {
		formatted[i] = formatPart(p.Key, p.Value)
	}

	joined := strings.Join(formatted, "&")
	return fmt.Sprintf("%016x", FastHash([]byte(joined)))
}

// BatchGenerateCacheKeys maps GenerateCacheKey over a batch of kwargs sets.
func BatchGenerateCacheKeys(batches [][]KeyPart) []string {
	out := make([]string, len(batches))
	for i, parts := range batches {
		out[i] = GenerateCacheKey(parts)
	}
	return out
}

// ValidateCacheKey reports whether key looks like a value GenerateCacheKey
// could have produced: either the literal "empty" sentinel, or a
// lowercase-hex string.
func ValidateCacheKey(key string) bool {
	if key == "" {
		return false
	}
	if key == "empty" {
		return true
	}
	for _, r := range key {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// IsCacheValid reports whether the file at cachePath exists and is younger
// than maxAgeDays.
func IsCacheValid(cachePath string, maxAgeDays float64) bool {
	info, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	if maxAgeDays <= 0 {
		return true
	}
	return time.Since(info.ModTime()) <= time.Duration(maxAgeDays*float64(24*time.Hour))
}
