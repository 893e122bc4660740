package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/penwyp/go-timeplot/internal/core/coord"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/penwyp/go-timeplot/internal/core/ticks"
)

// Point is one polyline vertex. X is measured from the left edge of the time
// domain, not from the visible window; renderers shift by Viewport.XOffset.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SeriesGeometry is everything needed to draw one series.
type SeriesGeometry struct {
	SeriesConfig
	HasData  bool       `json:"has_data"`
	RangeMin float64    `json:"range_min"`
	RangeMax float64    `json:"range_max"`
	Points   []Point    `json:"points"`
	Axis     ticks.Axis `json:"axis"`
}

// Geometry is a renderable snapshot of the chart.
type Geometry struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	FontPx    float64          `json:"font_px"`
	Viewport  model.Viewport   `json:"viewport"`
	XMax      int              `json:"x_max"`
	TimeTicks []ticks.TimeTick `json:"time_ticks"`
	GridLines []int            `json:"grid_lines"`
	Series    []SeriesGeometry `json:"series"`
}

// Geometry computes the renderable geometry for the current state. Series
// without samples yet get an entry with HasData false.
func (m *Model) Geometry() (Geometry, error) {
	m.mu.RLock()
	cfg := m.cfg
	t := m.table
	series := make([]SeriesConfig, 0, len(m.order))
	for _, id := range m.order {
		series = append(series, m.series[id])
	}
	m.mu.RUnlock()

	v := m.ctrl.State()
	g := Geometry{
		Width:     cfg.Width,
		Height:    cfg.Height,
		FontPx:    cfg.AxisFontSizePx,
		Viewport:  v,
		XMax:      coord.XMax(v),
		GridLines: gridLines(cfg.Height, cfg.NumHorizontalGridLines),
		Series:    make([]SeriesGeometry, 0, len(series)),
	}

	if cfg.SecondsPerGridLine > 0 {
		tt, err := ticks.TimeTicks(v, cfg.SecondsPerGridLine)
		if err != nil {
			return Geometry{}, fmt.Errorf("time axis: %w", err)
		}
		g.TimeTicks = tt
	}

	visible := t.Slice(v.TimeOffset, v.TimeEnd())
	for _, s := range series {
		sg, err := seriesGeometry(s, t, visible, v, cfg)
		if err != nil {
			return Geometry{}, err
		}
		g.Series = append(g.Series, sg)
	}
	return g, nil
}

func seriesGeometry(s SeriesConfig, all, visible *table.Table, v model.Viewport, cfg Config) (SeriesGeometry, error) {
	sg := SeriesGeometry{SeriesConfig: s}

	colMin, colMax, err := all.MinMax(s.ID)
	switch {
	case errors.Is(err, model.ErrEmptyColumn), errors.Is(err, model.ErrOutOfRange):
		if s.RangeMode != model.RangeFixed {
			return sg, nil
		}
	case err != nil:
		return sg, fmt.Errorf("series %q: %w", s.ID, err)
	default:
		sg.HasData = true
	}

	min, max, err := s.Range(colMin, colMax)
	if err != nil {
		return sg, err
	}
	sg.RangeMin, sg.RangeMax = min, max

	height := float64(cfg.Height)
	axis, err := ticks.ValueAxis(min, max, height, cfg.AxisFontSizePx)
	if err != nil {
		return sg, fmt.Errorf("series %q: %w", s.ID, err)
	}
	sg.Axis = axis

	if !sg.HasData || !visible.HasColumn(s.ID) {
		return sg, nil
	}
	sg.Points = make([]Point, 0, visible.Len())
	for row := 0; row < visible.Len(); row++ {
		val, err := visible.ValueAt(row, s.ID)
		if err != nil {
			return sg, fmt.Errorf("series %q: %w", s.ID, err)
		}
		if !val.Valid {
			continue
		}
		y, err := coord.ValueToY(val.Num, min, max, height)
		if err != nil {
			return sg, fmt.Errorf("series %q: %w", s.ID, err)
		}
		sg.Points = append(sg.Points, Point{
			X: coord.SecondsToX(float64(visible.Time(row)), v),
			Y: int(math.Round(y)),
		})
	}
	return sg, nil
}

// gridLines spaces n horizontal lines evenly between the top and bottom edge.
func gridLines(height, n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := 1; i <= n; i++ {
		out[i-1] = int(math.Round(float64(height*i) / float64(n+1)))
	}
	return out
}
