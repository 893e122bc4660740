package chart

import (
	"math"
	"sync"
	"testing"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, opts ...ModelOption) *Model {
	t.Helper()
	m, err := New(Config{
		Width:                  100,
		Height:                 100,
		TimeOffset:             0,
		TimeLength:             600,
		SecondsPerPixel:        10,
		SecondsPerGridLine:     300,
		NumHorizontalGridLines: 3,
		AxisFontSizePx:         10,
	}, opts...)
	require.NoError(t, err)
	return m
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Width: -10})
	assert.ErrorIs(t, err, model.ErrInvalidOption)
}

func TestAddSeriesRejectsReservedIDs(t *testing.T) {
	m := newTestModel(t)
	for _, id := range []string{"", model.DefaultSeriesID, model.TimeColumn} {
		assert.ErrorIs(t, m.AddSeries(id), model.ErrInvalidSeriesID, id)
		assert.ErrorIs(t, m.SetSeriesProperty(id, PropColor, "#fff"), model.ErrInvalidSeriesID, id)
		_, err := m.SeriesProperty(id, PropColor)
		assert.ErrorIs(t, err, model.ErrInvalidSeriesID, id)
	}
}

func TestSeriesProperties(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.AddSeries("Temp"))

	got, err := m.SeriesProperty("Temp", PropType)
	require.NoError(t, err)
	assert.Equal(t, model.DisplayLine, got)
	got, err = m.SeriesProperty("Temp", PropName)
	require.NoError(t, err)
	assert.Equal(t, "?", got)
	got, err = m.SeriesProperty("Temp", PropUnit)
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	require.NoError(t, m.SetSeriesProperty("Temp", PropColor, "#ff0000"))
	require.NoError(t, m.SetSeriesProperty("Temp", PropType, model.DisplayBar))
	require.NoError(t, m.SetSeriesProperty("Temp", PropRangeMode, model.RangeFixed))
	require.NoError(t, m.SetSeriesProperty("Temp", PropMin, -10))
	require.NoError(t, m.SetSeriesProperty("Temp", PropMax, "40"))

	series := m.Series()
	require.Len(t, series, 1)
	assert.Equal(t, SeriesConfig{
		ID: "Temp", Type: model.DisplayBar, Color: "#ff0000", Name: "?", Unit: "1",
		RangeMode: model.RangeFixed, Min: -10, Max: 40,
	}, series[0])
}

func TestSeriesPropertyErrors(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.AddSeries("Temp"))

	assert.ErrorIs(t, m.SetSeriesProperty("Humidity", PropColor, "#fff"), model.ErrInvalidSeriesID)
	_, err := m.SeriesProperty("Humidity", PropColor)
	assert.ErrorIs(t, err, model.ErrInvalidSeriesID)

	assert.ErrorIs(t, m.SetSeriesProperty("Temp", "thickness", 2), model.ErrUnknownProperty)
	_, err = m.SeriesProperty("Temp", "thickness")
	assert.ErrorIs(t, err, model.ErrUnknownProperty)

	assert.ErrorIs(t, m.SetSeriesProperty("Temp", PropType, "pie"), model.ErrInvalidOption)
	assert.ErrorIs(t, m.SetSeriesProperty("Temp", PropColor, 7), model.ErrInvalidOption)
	assert.ErrorIs(t, m.SetSeriesProperty("Temp", PropMin, "low"), model.ErrInvalidOption)
}

func TestSeriesAreSeededFromACopyOfTheTemplate(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.AddSeries("A"))
	require.NoError(t, m.SetSeriesProperty("A", PropColor, "#123456"))
	require.NoError(t, m.AddSeries("B"))

	got, err := m.SeriesProperty("B", PropColor)
	require.NoError(t, err)
	assert.Equal(t, "#000000", got)
}

func TestReAddingSeriesResetsIt(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.AddSeries("A"))
	require.NoError(t, m.SetSeriesProperty("A", PropName, "Alpha"))
	require.NoError(t, m.AddSeries("A"))

	got, err := m.SeriesProperty("A", PropName)
	require.NoError(t, err)
	assert.Equal(t, "?", got)
	assert.Len(t, m.Series(), 1)
}

func TestWithSeriesTemplate(t *testing.T) {
	tpl := DefaultSeriesConfig()
	tpl.Unit = "°C"
	m := newTestModel(t, WithSeriesTemplate(tpl))
	require.NoError(t, m.AddSeries("Temp"))

	got, err := m.SeriesProperty("Temp", PropUnit)
	require.NoError(t, err)
	assert.Equal(t, "°C", got)
}

func TestAddRowsMergesTables(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.AddRows(
		[]string{"Time", "Temp"},
		[][]model.Value{{model.Num(100), model.Num(20)}, {model.Num(200), model.Num(21)}},
	))
	require.NoError(t, m.AddRows(
		[]string{"Time", "Humidity"},
		[][]model.Value{{model.Num(150), model.Num(55)}, {model.Num(200), model.Num(60)}},
	))

	tbl := m.Table()
	assert.Equal(t, []string{"Time", "Temp", "Humidity"}, tbl.Columns())
	require.Equal(t, 3, tbl.Len())
	v, err := tbl.ValueAt(1, "Temp")
	require.NoError(t, err)
	assert.Equal(t, model.Null, v)
	v, err = tbl.ValueAt(2, "Humidity")
	require.NoError(t, err)
	assert.Equal(t, model.Num(60), v)
}

func TestAddRowsInvalidLeavesTableUntouched(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.AddRows([]string{"Time", "A"}, [][]model.Value{{model.Num(1), model.Num(2)}}))
	before := m.Table()
	version := m.Version()

	err := m.AddRows([]string{"A"}, [][]model.Value{{model.Num(1)}})
	assert.ErrorIs(t, err, model.ErrInvalidTable)
	assert.Same(t, before, m.Table())
	assert.Equal(t, version, m.Version())
}

func TestAddRowsRejectsInfiniteSamples(t *testing.T) {
	m := newTestModel(t, WithAutoSeries())
	require.NoError(t, m.AddRows([]string{"Time", "Temp", "Hum"}, [][]model.Value{
		{model.Num(120), model.Num(20), model.Num(55)},
		{model.Num(180), model.Num(22), model.Num(60)},
	}))

	err := m.AddRows([]string{"Time", "Temp", "Hum"}, [][]model.Value{
		{model.Num(60), model.Num(math.Inf(1)), model.Num(50)},
	})
	assert.ErrorIs(t, err, model.ErrInvalidTable)

	g, err := m.Geometry()
	require.NoError(t, err)
	assert.Len(t, g.Series, 2)
}

func TestAutoSeries(t *testing.T) {
	m := newTestModel(t, WithAutoSeries())
	require.NoError(t, m.AddRows([]string{"Time", "B", "A"}, [][]model.Value{{model.Num(1), model.Num(2), model.Num(3)}}))

	series := m.Series()
	require.Len(t, series, 2)
	assert.Equal(t, "B", series[0].ID)
	assert.Equal(t, "B", series[0].Name)
	assert.Equal(t, SeriesPalette[0], series[0].Color)
	assert.Equal(t, SeriesPalette[1], series[1].Color)

	// Existing series keep their configuration on later merges.
	require.NoError(t, m.SetSeriesProperty("A", PropColor, "#000"))
	require.NoError(t, m.AddRows([]string{"Time", "A", "C"}, [][]model.Value{{model.Num(2), model.Num(1), model.Num(1)}}))
	series = m.Series()
	require.Len(t, series, 3)
	assert.Equal(t, "#000", series[1].Color)
	assert.Equal(t, "C", series[2].ID)
}

func TestReplaceTable(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.AddRows([]string{"Time", "A"}, [][]model.Value{{model.Num(1), model.Num(2)}}))
	m.ReplaceTable(nil)
	assert.Equal(t, 0, m.Table().Len())
	assert.Equal(t, []string{table.TimeColumn}, m.Table().Columns())
}

func TestSetOptionRebuildsViewport(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.SetOption(OptTimeLength, 3600)) // xMax = 360
	assert.True(t, m.Pan(200))
	assert.Equal(t, 200.0, m.Viewport().XOffset)

	require.NoError(t, m.SetOption(OptWidth, 300))
	assert.Equal(t, 300, m.Viewport().WidthPx)
	assert.Equal(t, 60.0, m.Viewport().XOffset)

	got, err := m.Option(OptWidth)
	require.NoError(t, err)
	assert.Equal(t, 300, got)

	require.NoError(t, m.SetOption(OptWheelMultiplier, 1))
	m.Controller().Wheel(-5, 0)
	assert.Equal(t, 55.0, m.Viewport().XOffset)
}

func TestSetOptionErrorsKeepConfig(t *testing.T) {
	m := newTestModel(t)
	assert.ErrorIs(t, m.SetOption("zoom", 2), model.ErrUnknownProperty)
	assert.ErrorIs(t, m.SetOption(OptWidth, -5), model.ErrInvalidOption)
	_, err := m.Option("zoom")
	assert.ErrorIs(t, err, model.ErrUnknownProperty)

	assert.Equal(t, 100, m.Config().Width)
	assert.Equal(t, 100, m.Viewport().WidthPx)
}

func TestVersionTracksChanges(t *testing.T) {
	m := newTestModel(t)
	require.NoError(t, m.SetOption(OptTimeLength, 3600))
	v0 := m.Version()

	m.Pan(0)
	assert.Equal(t, v0, m.Version())
	m.Pan(10)
	v1 := m.Version()
	assert.Greater(t, v1, v0)

	require.NoError(t, m.AddSeries("A"))
	assert.Greater(t, m.Version(), v1)
}

func TestConcurrentAccess(t *testing.T) {
	m := newTestModel(t, WithAutoSeries())
	require.NoError(t, m.SetOption(OptTimeLength, 3600))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.AddRows([]string{"Time", "A"}, [][]model.Value{{model.Num(float64(i*100 + j)), model.Num(float64(j))}})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Pan(float64(j%7 - 3))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := m.Geometry()
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 200, m.Table().Len())
}
