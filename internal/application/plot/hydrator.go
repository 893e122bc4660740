package plot

import (
	"context"
	"fmt"
	"sync"

	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/penwyp/go-timeplot/internal/data/store"
	"github.com/penwyp/go-timeplot/internal/util"
)

// HydrateResult is the outcome of one hydration request.
type HydrateResult struct {
	Generation uint64
	Start, End int64
	Table      *table.Table
	Err        error
}

// Hydrator loads stored rows for a time range. Requests are
// last-request-wins: a new request cancels the one in flight, and only the
// result of the newest generation is delivered.
type Hydrator struct {
	store    store.Store
	interval string

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	results chan HydrateResult
}

// NewHydrator queries interval of st.
func NewHydrator(st store.Store, interval string) *Hydrator {
	return &Hydrator{
		store:    st,
		interval: interval,
		results:  make(chan HydrateResult, 1),
	}
}

// Request starts loading [start, end] and returns the request's generation.
func (h *Hydrator) Request(ctx context.Context, start, end int64) uint64 {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.generation++
	gen := h.generation
	rctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		defer cancel()

		res := h.query(rctx, gen, start, end)
		if !h.Accept(res) {
			util.LogDebug(fmt.Sprintf("Dropping superseded hydration %d", gen))
			return
		}
		select {
		case h.results <- res:
		case <-rctx.Done():
		}
	}()
	return gen
}

func (h *Hydrator) query(ctx context.Context, gen uint64, start, end int64) HydrateResult {
	res := HydrateResult{Generation: gen, Start: start, End: end}
	records, err := store.AwaitQuery(ctx, h.store.QueryRange(ctx, h.interval, start, end))
	if err != nil {
		res.Err = err
		return res
	}
	res.Table, res.Err = table.FromRecords(records)
	return res
}

// Results delivers hydration results. A result may still be superseded by
// the time it is read; check it with Accept.
func (h *Hydrator) Results() <-chan HydrateResult {
	return h.results
}

// Current returns the newest generation.
func (h *Hydrator) Current() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generation
}

// Accept reports whether res belongs to the newest request.
func (h *Hydrator) Accept(res HydrateResult) bool {
	return res.Generation == h.Current()
}

// Hydrate runs one request synchronously.
func (h *Hydrator) Hydrate(ctx context.Context, start, end int64) (*table.Table, error) {
	h.mu.Lock()
	h.generation++
	gen := h.generation
	h.mu.Unlock()

	res := h.query(ctx, gen, start, end)
	return res.Table, res.Err
}

// Close cancels the request in flight and waits for it to finish.
func (h *Hydrator) Close() {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.mu.Unlock()
	h.wg.Wait()
}
