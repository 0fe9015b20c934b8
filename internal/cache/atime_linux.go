//go:build linux

package cache

import (
	"os"
	"syscall"
	"time"
)

// touchAccessTime bumps the kernel-tracked atime on path to now, keeping
// mtime (the entry's creation marker) untouched.
func touchAccessTime(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	_ = os.Chtimes(path, time.Now(), info.ModTime())
}

// accessTime reads the kernel-tracked atime from path, falling back to
// mtime if the platform stat shape is unavailable (e.g. a filesystem
// mounted noatime).
func accessTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	}
	return info.ModTime()
}
