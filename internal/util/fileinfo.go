package util

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// FileInfo identifies one version of a file on disk. Two equal values mean
// the file was very likely not rewritten in between.
type FileInfo struct {
	ModTime int64  // modification time, Unix nanoseconds
	Size    int64  // size in bytes
	Inode   uint64 // inode number; changes when a file is replaced by rename
}

// Modified returns ModTime as a time.Time.
func (fi FileInfo) Modified() time.Time {
	return time.Unix(0, fi.ModTime)
}

// GetFileInfo retrieves size, nanosecond modification time and inode.
// Supported on Linux and macOS. The returned error wraps the os.Stat error.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	sysStat, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("failed to get file system information: %s", path)
	}

	return &FileInfo{
		ModTime: stat.ModTime().UnixNano(),
		Size:    stat.Size(),
		Inode:   uint64(sysStat.Ino),
	}, nil
}
