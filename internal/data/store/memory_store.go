package store

import (
	"context"
	"fmt"

	"github.com/penwyp/go-timeplot/internal/core/table"
)

// MemoryStore keeps every interval in memory. It backs charts with caching
// disabled and tests.
type MemoryStore struct {
	d         *dispatcher
	intervals []string
	buckets   map[string]bucket
}

// NewMemoryStore creates an empty store for the given intervals.
func NewMemoryStore(intervals []string) *MemoryStore {
	s := &MemoryStore{
		d:         newDispatcher(),
		intervals: normalizeIntervals(intervals),
		buckets:   make(map[string]bucket),
	}
	for _, iv := range s.intervals {
		s.buckets[iv] = make(bucket)
	}
	return s
}

func (s *MemoryStore) UpsertRange(ctx context.Context, interval string, records []table.Record) <-chan error {
	return s.d.upsertAsync(ctx, func() error {
		b, ok := s.buckets[interval]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownInterval, interval)
		}
		return b.upsert(records)
	})
}

func (s *MemoryStore) QueryRange(ctx context.Context, interval string, start, end int64) <-chan QueryResult {
	return s.d.queryAsync(ctx, func() ([]table.Record, error) {
		b, ok := s.buckets[interval]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInterval, interval)
		}
		return b.query(start, end), nil
	})
}

func (s *MemoryStore) Intervals() []string {
	return append([]string(nil), s.intervals...)
}

func (s *MemoryStore) Clear() error {
	return s.d.syncOp(func() error {
		for iv := range s.buckets {
			s.buckets[iv] = make(bucket)
		}
		return nil
	})
}

func (s *MemoryStore) Close() error {
	s.d.close()
	return nil
}
