package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/penwyp/go-timeplot/internal/util"
)

// MissReason tells why the in-memory copy of an interval was not used.
type MissReason int

const (
	MissReasonNone MissReason = iota
	MissReasonNotLoaded
	MissReasonNotFound
	MissReasonError
	MissReasonInode
	MissReasonSize
	MissReasonModTime
	MissReasonFingerprint
)

func (r MissReason) String() string {
	switch r {
	case MissReasonNone:
		return "none"
	case MissReasonNotLoaded:
		return "not loaded"
	case MissReasonNotFound:
		return "not found"
	case MissReasonError:
		return "error"
	case MissReasonInode:
		return "inode changed"
	case MissReasonSize:
		return "size changed"
	case MissReasonModTime:
		return "modtime changed"
	case MissReasonFingerprint:
		return "fingerprint changed"
	}
	return "unknown"
}

// fingerprintWindow limits fingerprint checks to recently modified files; an
// older file with unchanged inode, size and modtime is trusted.
const fingerprintWindow = 48 * time.Hour

// intervalFile is the on-disk layout of one interval. UpdatedAt comes last so
// that it is part of the fingerprinted tail.
type intervalFile struct {
	Interval  string         `json:"interval"`
	Records   []table.Record `json:"records"`
	UpdatedAt int64          `json:"updated_at"`
}

type loadedBucket struct {
	data        bucket
	info        util.FileInfo
	fingerprint string
}

// FileStore keeps one JSON file per interval under a base directory, with an
// in-memory copy that is reloaded whenever the file changes on disk.
type FileStore struct {
	baseDir   string
	d         *dispatcher
	intervals []string
	known     map[string]bool

	// memory is only touched on the dispatcher goroutine.
	memory map[string]*loadedBucket
}

// NewFileStore opens a store under baseDir, creating the directory if needed.
func NewFileStore(baseDir string, intervals []string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	s := &FileStore{
		baseDir:   baseDir,
		d:         newDispatcher(),
		intervals: normalizeIntervals(intervals),
		memory:    make(map[string]*loadedBucket),
	}
	s.known = make(map[string]bool, len(s.intervals))
	for _, iv := range s.intervals {
		s.known[iv] = true
	}
	return s, nil
}

func (s *FileStore) path(interval string) string {
	return filepath.Join(s.baseDir, interval+".json")
}

func (s *FileStore) UpsertRange(ctx context.Context, interval string, records []table.Record) <-chan error {
	return s.d.upsertAsync(ctx, func() error {
		if !s.known[interval] {
			return fmt.Errorf("%w: %q", ErrUnknownInterval, interval)
		}
		b, err := s.load(interval)
		if err != nil {
			return err
		}

		// Work on a copy so a failed write leaves memory as it was.
		next := make(bucket, len(b)+len(records))
		for ts, rec := range b {
			next[ts] = rec
		}
		for _, rec := range records {
			if ts, ok := rec.Time(); ok {
				if old, exists := next[ts]; exists {
					next[ts] = copyRecord(old)
				}
			}
		}
		if err := next.upsert(records); err != nil {
			return err
		}
		if err := s.write(interval, next); err != nil {
			return err
		}
		util.LogDebug(fmt.Sprintf("Upserted %d records into %s (%d total)", len(records), interval, len(next)))
		return nil
	})
}

func (s *FileStore) QueryRange(ctx context.Context, interval string, start, end int64) <-chan QueryResult {
	return s.d.queryAsync(ctx, func() ([]table.Record, error) {
		if !s.known[interval] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInterval, interval)
		}
		b, err := s.load(interval)
		if err != nil {
			return nil, err
		}
		return b.query(start, end), nil
	})
}

func (s *FileStore) Intervals() []string {
	return append([]string(nil), s.intervals...)
}

// load returns the interval's records, from memory when the file on disk is
// unchanged since it was last read or written.
func (s *FileStore) load(interval string) (bucket, error) {
	reason := s.validate(interval)
	if reason == MissReasonNone {
		return s.memory[interval].data, nil
	}
	if reason != MissReasonNotLoaded {
		util.LogDebug(fmt.Sprintf("Store memory for %s invalidated: %s", interval, reason))
	}
	delete(s.memory, interval)

	lb, err := s.readFile(interval)
	if err != nil {
		return nil, err
	}
	s.memory[interval] = lb
	return lb.data, nil
}

func (s *FileStore) validate(interval string) MissReason {
	lb, ok := s.memory[interval]
	if !ok {
		return MissReasonNotLoaded
	}

	path := s.path(interval)
	current, err := util.GetFileInfo(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Never written, or removed behind our back.
			if lb.info == (util.FileInfo{}) {
				return MissReasonNone
			}
			return MissReasonNotFound
		}
		return MissReasonError
	}

	if current.Inode != lb.info.Inode {
		return MissReasonInode
	}
	if current.Size != lb.info.Size {
		return MissReasonSize
	}
	if current.ModTime != lb.info.ModTime {
		return MissReasonModTime
	}

	if time.Since(current.Modified()) > fingerprintWindow {
		return MissReasonNone
	}
	fingerprint, err := util.FileFingerprint(path)
	if err != nil || fingerprint != lb.fingerprint {
		return MissReasonFingerprint
	}
	return MissReasonNone
}

func (s *FileStore) readFile(interval string) (*loadedBucket, error) {
	path := s.path(interval)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &loadedBucket{data: make(bucket)}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file intervalFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	b := make(bucket, len(file.Records))
	if err := b.upsert(file.Records); err != nil {
		return nil, fmt.Errorf("corrupt store file %s: %w", path, err)
	}

	lb := &loadedBucket{data: b}
	if info, err := util.GetFileInfo(path); err == nil {
		lb.info = *info
	}
	lb.fingerprint, _ = util.FileFingerprint(path)
	util.LogDebug(fmt.Sprintf("Loaded %d records for %s from %s", len(b), interval, path))
	return lb, nil
}

func (s *FileStore) write(interval string, b bucket) error {
	path := s.path(interval)
	data, err := sonic.Marshal(intervalFile{
		Interval:  interval,
		Records:   b.records(),
		UpdatedAt: time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", interval, err)
	}

	// Atomic write: write to temp file first, then rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}

	lb := &loadedBucket{data: b}
	if info, err := util.GetFileInfo(path); err == nil {
		lb.info = *info
	}
	lb.fingerprint, _ = util.FileFingerprint(path)
	s.memory[interval] = lb
	return nil
}

// Preload reads every interval file concurrently and installs the results in
// memory. Files that fail to load are logged and skipped.
func (s *FileStore) Preload(ctx context.Context) error {
	type result struct {
		interval string
		lb       *loadedBucket
		err      error
	}

	results := make(chan result, len(s.intervals))
	var wg sync.WaitGroup
	for _, iv := range s.intervals {
		wg.Add(1)
		go func(iv string) {
			defer wg.Done()
			if ctx.Err() != nil {
				results <- result{interval: iv, err: ctx.Err()}
				return
			}
			lb, err := s.readFile(iv)
			results <- result{interval: iv, lb: lb, err: err}
		}(iv)
	}
	wg.Wait()
	close(results)

	loaded := make(map[string]*loadedBucket)
	for r := range results {
		if r.err != nil {
			util.LogWarn(fmt.Sprintf("Failed to preload %s: %v", r.interval, r.err))
			continue
		}
		loaded[r.interval] = r.lb
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.d.syncOp(func() error {
		for iv, lb := range loaded {
			if _, ok := s.memory[iv]; !ok {
				s.memory[iv] = lb
			}
		}
		util.LogInfo(fmt.Sprintf("Store preload complete: %d of %d intervals in memory", len(loaded), len(s.intervals)))
		return nil
	})
}

// Stats returns the number of intervals held in memory and on disk.
func (s *FileStore) Stats() (memoryCount, fileCount int) {
	_ = s.d.syncOp(func() error {
		memoryCount = len(s.memory)
		for _, iv := range s.intervals {
			if _, err := os.Stat(s.path(iv)); err == nil {
				fileCount++
			}
		}
		return nil
	})
	return memoryCount, fileCount
}

// Clear removes the file of every interval this store owns, along with any
// leftover temporary file, and empties memory. Other files in the directory
// are left alone.
func (s *FileStore) Clear() error {
	return s.d.syncOp(func() error {
		s.memory = make(map[string]*loadedBucket)
		for _, iv := range s.intervals {
			path := s.path(iv)
			for _, p := range []string{path, path + ".tmp"} {
				if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to remove %s: %w", p, err)
				}
			}
		}
		return nil
	})
}

func (s *FileStore) Close() error {
	s.d.close()
	return nil
}
