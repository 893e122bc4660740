// Package store persists table records per retention interval. Records are
// keyed by their Time value; writes are upserts and reads are inclusive time
// range queries. All operations complete asynchronously, in call order.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/table"
)

var (
	// ErrUnknownInterval reports a retention interval the store was not opened with.
	ErrUnknownInterval = errors.New("unknown retention interval")
	// ErrClosed reports an operation on a closed store.
	ErrClosed = errors.New("store closed")
)

// QueryResult is the completion of a range query.
type QueryResult struct {
	Records []table.Record
	Err     error
}

// Store is the persistence port of the chart.
type Store interface {
	// UpsertRange writes records into interval. For a Time already present,
	// the fields of the new record replace the stored ones; other stored
	// fields are kept.
	UpsertRange(ctx context.Context, interval string, records []table.Record) <-chan error
	// QueryRange returns the records with start <= Time <= end, ascending.
	QueryRange(ctx context.Context, interval string, start, end int64) <-chan QueryResult
	// Intervals returns the retention intervals the store was opened with.
	Intervals() []string
	// Clear removes every record of every interval.
	Clear() error
	Close() error
}

// bucket holds the records of one interval keyed by Time.
type bucket map[int64]table.Record

func (b bucket) upsert(records []table.Record) error {
	for i, rec := range records {
		if err := checkRecord(rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	for _, rec := range records {
		ts, _ := rec.Time()
		stored, ok := b[ts]
		if !ok {
			stored = make(table.Record, len(rec))
			b[ts] = stored
		}
		for k, v := range rec {
			stored[k] = v
		}
	}
	return nil
}

func (b bucket) query(start, end int64) []table.Record {
	out := make([]table.Record, 0)
	for ts, rec := range b {
		if ts < start || ts > end {
			continue
		}
		out = append(out, copyRecord(rec))
	}
	sortRecords(out)
	return out
}

func (b bucket) records() []table.Record {
	out := make([]table.Record, 0, len(b))
	for _, rec := range b {
		out = append(out, rec)
	}
	sortRecords(out)
	return out
}

func checkRecord(rec table.Record) error {
	tv, ok := rec[table.TimeColumn]
	if !ok || !tv.Valid {
		return fmt.Errorf("%w: missing %s", model.ErrInvalidTable, table.TimeColumn)
	}
	if math.IsInf(tv.Num, 0) || math.IsNaN(tv.Num) || tv.Num != math.Trunc(tv.Num) {
		return fmt.Errorf("%w: %s must be integral seconds, got %v", model.ErrInvalidTable, table.TimeColumn, tv.Num)
	}
	for k, v := range rec {
		if v.NonFinite() {
			return fmt.Errorf("%w: non-finite %v in %q", model.ErrInvalidTable, v.Num, k)
		}
	}
	return nil
}

func copyRecord(rec table.Record) table.Record {
	out := make(table.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func sortRecords(recs []table.Record) {
	sort.Slice(recs, func(i, j int) bool {
		ti, _ := recs[i].Time()
		tj, _ := recs[j].Time()
		return ti < tj
	})
}

// dispatcher runs submitted operations one at a time, in submission order,
// on a single worker goroutine.
type dispatcher struct {
	mu     sync.RWMutex
	closed bool
	ops    chan func()
	done   chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		ops:  make(chan func(), 64),
		done: make(chan struct{}),
	}
	go func() {
		defer close(d.done)
		for op := range d.ops {
			op()
		}
	}()
	return d
}

func (d *dispatcher) submit(op func()) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	d.ops <- op
	return true
}

// close stops accepting operations and waits for the queued ones to finish.
func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.ops)
	d.mu.Unlock()
	<-d.done
}

// upsertAsync queues fn and reports its result on the returned channel.
func (d *dispatcher) upsertAsync(ctx context.Context, fn func() error) <-chan error {
	ch := make(chan error, 1)
	ok := d.submit(func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- err
			return
		}
		ch <- fn()
	})
	if !ok {
		ch <- ErrClosed
		close(ch)
	}
	return ch
}

// queryAsync queues fn and reports its result on the returned channel.
func (d *dispatcher) queryAsync(ctx context.Context, fn func() ([]table.Record, error)) <-chan QueryResult {
	ch := make(chan QueryResult, 1)
	ok := d.submit(func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- QueryResult{Err: err}
			return
		}
		recs, err := fn()
		ch <- QueryResult{Records: recs, Err: err}
	})
	if !ok {
		ch <- QueryResult{Err: ErrClosed}
		close(ch)
	}
	return ch
}

// Await blocks until an upsert completes or ctx is done.
func Await(ctx context.Context, ch <-chan error) error {
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitQuery blocks until a query completes or ctx is done.
func AwaitQuery(ctx context.Context, ch <-chan QueryResult) ([]table.Record, error) {
	select {
	case res := <-ch:
		return res.Records, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// normalizeIntervals drops blanks and duplicates, keeping order. An empty
// list selects the default intervals.
func normalizeIntervals(intervals []string) []string {
	if len(intervals) == 0 {
		return model.DefaultIntervals()
	}
	seen := make(map[string]bool, len(intervals))
	out := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		if iv == "" || seen[iv] {
			continue
		}
		seen[iv] = true
		out = append(out, iv)
	}
	return out
}

// syncOp runs fn on the dispatcher and waits for it.
func (d *dispatcher) syncOp(fn func() error) error {
	return <-d.upsertAsync(context.Background(), fn)
}
