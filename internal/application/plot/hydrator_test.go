package plot

import (
	"context"
	"testing"
	"time"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/penwyp/go-timeplot/internal/data/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecords() []table.Record {
	return []table.Record{
		{"Time": model.Num(0), "Temp": model.Num(20)},
		{"Time": model.Num(600), "Temp": model.Num(21)},
		{"Time": model.Num(1200), "Temp": model.Num(22)},
	}
}

func receive(t *testing.T, h *Hydrator) HydrateResult {
	t.Helper()
	select {
	case res := <-h.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("no hydration result")
		return HydrateResult{}
	}
}

func TestHydratorRequest(t *testing.T) {
	st := store.NewMemoryStore(nil)
	require.NoError(t, store.Await(context.Background(), st.UpsertRange(context.Background(), model.Interval1Hour, seedRecords())))
	h := NewHydrator(st, model.Interval1Hour)
	defer h.Close()

	gen := h.Request(context.Background(), 0, 600)
	res := receive(t, h)
	require.NoError(t, res.Err)
	assert.Equal(t, gen, res.Generation)
	assert.True(t, h.Accept(res))
	assert.Equal(t, 2, res.Table.Len())
	assert.Equal(t, int64(0), res.Start)
	assert.Equal(t, int64(600), res.End)
}

func TestHydratorLastRequestWins(t *testing.T) {
	st := newGatedStore(seedRecords()...)
	h := NewHydrator(st, model.Interval1Hour)
	defer h.Close()

	first := h.Request(context.Background(), 0, 600)
	second := h.Request(context.Background(), 600, 1200)
	assert.Greater(t, second, first)
	assert.Equal(t, second, h.Current())

	close(st.gate)
	res := receive(t, h)
	assert.Equal(t, second, res.Generation)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Table.Len())

	select {
	case res := <-h.Results():
		t.Fatalf("superseded result delivered: %+v", res)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHydratorStaleResultIsRejected(t *testing.T) {
	h := NewHydrator(store.NewMemoryStore(nil), model.Interval1Hour)
	defer h.Close()

	h.Request(context.Background(), 0, 1)
	res := receive(t, h)
	h.Request(context.Background(), 0, 1)
	assert.False(t, h.Accept(res))
}

func TestHydratorUnknownInterval(t *testing.T) {
	h := NewHydrator(store.NewMemoryStore(nil), "5min")
	defer h.Close()

	h.Request(context.Background(), 0, 1)
	res := receive(t, h)
	assert.ErrorIs(t, res.Err, store.ErrUnknownInterval)

	_, err := h.Hydrate(context.Background(), 0, 1)
	assert.ErrorIs(t, err, store.ErrUnknownInterval)
}

func TestHydratorCloseCancelsRequestInFlight(t *testing.T) {
	h := NewHydrator(newGatedStore(), model.Interval1Hour)
	h.Request(context.Background(), 0, 1)

	done := make(chan struct{})
	go func() {
		h.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}
