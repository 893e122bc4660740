// Package chart owns one chart: its table, series configuration, viewport and
// options. It turns that state into renderable geometry.
package chart

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/penwyp/go-timeplot/internal/core/viewport"
)

// Model is the chart state. Every mutation replaces the table, a series
// config or the config wholesale, so readers never observe a partial update.
// It is safe for concurrent use.
type Model struct {
	mu       sync.RWMutex
	cfg      Config
	table    *table.Table
	series   map[string]SeriesConfig
	order    []string
	template SeriesConfig
	auto     bool

	ctrl    *viewport.Controller
	version atomic.Uint64
}

// ModelOption configures a Model at construction.
type ModelOption func(*Model)

// WithTable seeds the model with an existing table.
func WithTable(t *table.Table) ModelOption {
	return func(m *Model) {
		if t != nil {
			m.table = t
		}
	}
}

// WithSeriesTemplate replaces the default template for new series.
func WithSeriesTemplate(s SeriesConfig) ModelOption {
	return func(m *Model) {
		s.ID = model.DefaultSeriesID
		m.template = s
	}
}

// WithAutoSeries adds a series for every value column that shows up in the
// table, coloured from SeriesPalette.
func WithAutoSeries() ModelOption {
	return func(m *Model) {
		m.auto = true
	}
}

// New creates a model. cfg is validated and defaults are filled in.
func New(cfg Config, opts ...ModelOption) (*Model, error) {
	cfg = cfg.clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		cfg:      cfg,
		table:    table.Empty(),
		series:   make(map[string]SeriesConfig),
		template: DefaultSeriesConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.ctrl = viewport.NewController(cfg.Viewport(0), cfg.InputSettings())
	m.ctrl.OnChange(func(model.Viewport) { m.version.Add(1) })
	m.syncAutoSeries()
	return m, nil
}

// Version increases on every change that affects geometry.
func (m *Model) Version() uint64 {
	return m.version.Load()
}

// Config returns a copy of the configuration.
func (m *Model) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.clone()
}

// Table returns the current table. Tables are immutable, so the pointer may be
// kept after later merges.
func (m *Model) Table() *table.Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table
}

// AddRows merges rows into the model's table.
func (m *Model) AddRows(columns []string, rows [][]model.Value) error {
	t, err := table.New(columns, rows)
	if err != nil {
		return fmt.Errorf("add rows: %w", err)
	}
	m.MergeTable(t)
	return nil
}

// MergeTable merges t into the model's table. t's values win on shared
// timestamps.
func (m *Model) MergeTable(t *table.Table) {
	if t == nil || (t.Len() == 0 && len(t.Columns()) <= 1) {
		return
	}
	m.mu.Lock()
	m.table = table.Merge(m.table, t)
	m.mu.Unlock()

	m.syncAutoSeries()
	m.version.Add(1)
}

// ReplaceTable swaps the whole table, for example after a reload from storage.
func (m *Model) ReplaceTable(t *table.Table) {
	if t == nil {
		t = table.Empty()
	}
	m.mu.Lock()
	m.table = t
	m.mu.Unlock()

	m.syncAutoSeries()
	m.version.Add(1)
}

func (m *Model) syncAutoSeries() {
	if !m.auto {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, col := range m.table.Columns() {
		if col == model.TimeColumn {
			continue
		}
		if _, ok := m.series[col]; ok {
			continue
		}
		s := m.template
		s.ID = col
		s.Name = col
		s.Color = SeriesColor(len(m.order))
		m.series[col] = s
		m.order = append(m.order, col)
	}
}

// AddSeries registers a series for the value column id, seeded from the
// template. Adding an existing series resets it to the template.
func (m *Model) AddSeries(id string) error {
	if err := checkSeriesID(id); err != nil {
		return err
	}
	m.mu.Lock()
	if _, ok := m.series[id]; !ok {
		m.order = append(m.order, id)
	}
	s := m.template
	s.ID = id
	m.series[id] = s
	m.mu.Unlock()

	m.version.Add(1)
	return nil
}

// Series returns the configured series in insertion order.
func (m *Model) Series() []SeriesConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SeriesConfig, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.series[id])
	}
	return out
}

// SetSeriesProperty replaces one property of a registered series.
func (m *Model) SetSeriesProperty(id, key string, value any) error {
	if err := checkSeriesID(id); err != nil {
		return err
	}
	m.mu.Lock()
	s, ok := m.series[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: unknown series %q", model.ErrInvalidSeriesID, id)
	}
	next, err := s.With(key, value)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.series[id] = next
	m.mu.Unlock()

	m.version.Add(1)
	return nil
}

// SeriesProperty returns one property of a registered series.
func (m *Model) SeriesProperty(id, key string) (any, error) {
	if err := checkSeriesID(id); err != nil {
		return nil, err
	}
	m.mu.RLock()
	s, ok := m.series[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown series %q", model.ErrInvalidSeriesID, id)
	}
	return s.Get(key)
}

// SetOption replaces one configuration option. The viewport is rebuilt from
// the new configuration, keeping the scroll offset where it stays valid.
func (m *Model) SetOption(key string, value any) error {
	m.mu.Lock()
	next := m.cfg.clone()
	if err := next.Set(key, value); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := next.Validate(); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("option %q: %w", key, err)
	}
	m.cfg = next
	m.mu.Unlock()

	m.ctrl.SetSettings(next.InputSettings())
	m.ctrl.SetState(next.Viewport(m.ctrl.State().XOffset))
	m.version.Add(1)
	return nil
}

// Option returns one configuration option.
func (m *Model) Option(key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Get(key)
}

// Viewport returns the current viewport.
func (m *Model) Viewport() model.Viewport {
	return m.ctrl.State()
}

// Pan scrolls the viewport by delta pixels.
func (m *Model) Pan(delta float64) bool {
	return m.ctrl.Pan(delta)
}

// Controller exposes the viewport controller for pointer, wheel and keyboard
// input.
func (m *Model) Controller() *viewport.Controller {
	return m.ctrl
}
