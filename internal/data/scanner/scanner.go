package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-timeplot/internal/util"
)

// DefaultExtensions are the row file formats the parser reads.
var DefaultExtensions = []string{".csv", ".jsonl"}

// FileScanner finds row files under a directory
type FileScanner struct {
	baseDir    string
	extensions []string
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(baseDir string, extensions ...string) *FileScanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make([]string, len(extensions))
	for i, ext := range extensions {
		exts[i] = strings.ToLower(ext)
	}
	return &FileScanner{
		baseDir:    baseDir,
		extensions: exts,
	}
}

// BaseDir returns the scanned directory.
func (s *FileScanner) BaseDir() string {
	return s.baseDir
}

// Matches reports whether path has one of the scanned extensions.
func (s *FileScanner) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan walks the directory and returns the matching files in lexical order.
// Unreadable entries are skipped.
func (s *FileScanner) Scan() ([]string, error) {
	return s.ScanSince(time.Time{})
}

// ScanSince is Scan restricted to files modified after since.
func (s *FileScanner) ScanSince(since time.Time) ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	util.LogDebug(fmt.Sprintf("Start scanning directory: %s", s.baseDir))

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
			return nil
		}

		if info.IsDir() {
			dirCount++
			return nil
		}

		totalCount++
		if !s.Matches(path) {
			return nil
		}
		if !since.IsZero() && !info.ModTime().After(since) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	sort.Strings(files)
	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d directories, %d files, found %d row files",
		time.Since(start), dirCount, totalCount, len(files)))

	return files, err
}
