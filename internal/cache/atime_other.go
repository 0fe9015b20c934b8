//go:build !linux

package cache

import (
	"os"
	"time"
)

// touchAccessTime is a no-op on platforms where we don't special-case the
// stat shape below; mtime-based age checks still work correctly.
func touchAccessTime(path string) {}

// accessTime falls back to mtime on non-Linux platforms.
func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
