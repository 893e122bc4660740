package plot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/penwyp/go-timeplot/internal/data/store"
	"github.com/penwyp/go-timeplot/internal/presentation/display"
	"github.com/penwyp/go-timeplot/internal/presentation/interaction"
	"github.com/penwyp/go-timeplot/internal/presentation/layout"
	"github.com/stretchr/testify/require"
)

// testConfig charts 0..6000s at 10s per pixel in a 100px wide viewport.
func testConfig(t *testing.T, caching bool) *Config {
	t.Helper()
	return &Config{
		DataDir:  t.TempDir(),
		CacheDir: t.TempDir(),
		Chart: chart.Config{
			Width:                  100,
			Height:                 100,
			TimeLength:             6000,
			SecondsPerPixel:        10,
			SecondsPerGridLine:     600,
			NumHorizontalGridLines: 3,
			AxisFontSizePx:         10,
			CachingEnabled:         caching,
		},
	}
}

func writeRows(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestModel(t *testing.T, cfg *Config) *chart.Model {
	t.Helper()
	require.NoError(t, cfg.Validate())
	m, err := chart.New(cfg.Chart, chart.WithAutoSeries())
	require.NoError(t, err)
	return m
}

func storedTimes(t *testing.T, st store.Store, interval string) []int64 {
	t.Helper()
	recs, err := store.AwaitQuery(context.Background(), st.QueryRange(context.Background(), interval, 0, 1<<40))
	require.NoError(t, err)
	times := make([]int64, 0, len(recs))
	for _, rec := range recs {
		ts, _ := rec.Time()
		times = append(times, ts)
	}
	return times
}

// failingStore rejects every write.
type failingStore struct {
	store.Store
}

var errDiskFull = errors.New("disk full")

func (failingStore) UpsertRange(ctx context.Context, interval string, records []table.Record) <-chan error {
	ch := make(chan error, 1)
	ch <- errDiskFull
	return ch
}

// gatedStore answers queries only when released, or fails them when their
// context is cancelled.
type gatedStore struct {
	store.Store
	gate chan struct{}
}

func newGatedStore(records ...table.Record) *gatedStore {
	st := store.NewMemoryStore(nil)
	_ = store.Await(context.Background(), st.UpsertRange(context.Background(), model.Interval1Hour, records))
	return &gatedStore{Store: st, gate: make(chan struct{})}
}

func (s *gatedStore) QueryRange(ctx context.Context, interval string, start, end int64) <-chan store.QueryResult {
	ch := make(chan store.QueryResult, 1)
	go func() {
		select {
		case <-s.gate:
			recs, err := store.AwaitQuery(ctx, s.Store.QueryRange(ctx, interval, start, end))
			ch <- store.QueryResult{Records: recs, Err: err}
		case <-ctx.Done():
			ch <- store.QueryResult{Err: ctx.Err()}
		}
	}()
	return ch
}

type fakeDisplay struct {
	mu      sync.Mutex
	frames  []display.Frame
	states  []model.InteractionState
	entered bool
	exited  bool
}

func (d *fakeDisplay) EnterAlternateScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entered = true
}

func (d *fakeDisplay) ExitAlternateScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exited = true
}

func (d *fakeDisplay) SetSizer(*layout.Sizer) {}

func (d *fakeDisplay) RenderWithState(frame display.Frame, state model.InteractionState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, frame)
	d.states = append(d.states, state)
}

func (d *fakeDisplay) last() (display.Frame, model.InteractionState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return display.Frame{}, model.InteractionState{}
	}
	return d.frames[len(d.frames)-1], d.states[len(d.states)-1]
}

type fakeKeyboard struct {
	events chan interaction.KeyEvent
}

func (k *fakeKeyboard) Events() <-chan interaction.KeyEvent { return k.events }
func (k *fakeKeyboard) Close() error                        { return nil }

type fakeWatcher struct {
	events chan model.FileEvent
	once   sync.Once
}

func (w *fakeWatcher) Events() <-chan model.FileEvent { return w.events }

func (w *fakeWatcher) Close() error {
	w.once.Do(func() { close(w.events) })
	return nil
}
