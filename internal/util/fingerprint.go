package util

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// fingerprintTail is how much of the end of a file FileFingerprint reads.
const fingerprintTail = 2048

// FileFingerprint returns a CRC32 of the last 2KB of a file. Files that are
// rewritten with a trailing timestamp change fingerprint on every write, even
// when size and modification second stay the same.
func FileFingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}

	readSize := int64(fingerprintTail)
	if stat.Size() < readSize {
		readSize = stat.Size()
	}

	data := make([]byte, readSize)
	if _, err := file.ReadAt(data, stat.Size()-readSize); err != nil && err != io.EOF {
		return "", fmt.Errorf("read tail of %s: %w", path, err)
	}
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data)), nil
}
