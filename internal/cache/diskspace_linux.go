//go:build linux

package cache

import (
	"syscall"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

// GetAvailableDiskSpace reports free space at path in megabytes.
func GetAvailableDiskSpace(path string) (float64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, kerr.NewIOError("statfs", err)
	}
	return float64(stat.Bavail*uint64(stat.Bsize)) / bytesPerMB, nil
}
