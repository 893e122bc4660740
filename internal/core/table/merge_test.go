package table

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, columns []string, rows ...[]model.Value) *Table {
	t.Helper()
	tbl, err := New(columns, rows)
	require.NoError(t, err)
	return tbl
}

func TestMergeDisjointColumns(t *testing.T) {
	a := mustTable(t, []string{"Time", "Temp"}, row(100, 20), row(200, 21))
	b := mustTable(t, []string{"Time", "Humidity"}, row(150, 55), row(200, 60))

	c := Merge(a, b)

	assert.Equal(t, []string{"Time", "Temp", "Humidity"}, c.Columns())
	require.Equal(t, 3, c.Len())

	expected := []Record{
		{"Time": model.Num(100), "Temp": model.Num(20), "Humidity": model.Null},
		{"Time": model.Num(150), "Temp": model.Null, "Humidity": model.Num(55)},
		{"Time": model.Num(200), "Temp": model.Num(21), "Humidity": model.Num(60)},
	}
	assert.Equal(t, expected, c.Records())
}

func TestMergeConflictTakesB(t *testing.T) {
	a := mustTable(t, []string{"Time", "Temp", "Wind"}, row(100, 20, 3))
	b := mustTable(t, []string{"Time", "Temp"}, row(100, 25))

	c := Merge(a, b)
	require.Equal(t, 1, c.Len())
	temp, _ := c.ValueAt(0, "Temp")
	wind, _ := c.ValueAt(0, "Wind")
	assert.Equal(t, model.Num(25), temp)
	assert.Equal(t, model.Num(3), wind)
}

func TestMergeNullInBOverrides(t *testing.T) {
	a := mustTable(t, []string{"Time", "Temp"}, row(100, 20))
	b := mustTable(t, []string{"Time", "Temp"}, []model.Value{model.Num(100), model.Null})

	temp, _ := Merge(a, b).ValueAt(0, "Temp")
	assert.False(t, temp.Valid)
}

func TestMergeIdentity(t *testing.T) {
	tbl := mustTable(t, []string{"Time", "Temp", "Humidity"}, row(100, 20, 50), row(200, 21, 51))

	for name, merged := range map[string]*Table{
		"right empty": Merge(tbl, Empty()),
		"left empty":  Merge(Empty(), tbl),
		"right nil":   Merge(tbl, nil),
		"left nil":    Merge(nil, tbl),
	} {
		t.Run(name, func(t *testing.T) {
			assert.ElementsMatch(t, tbl.Columns(), merged.Columns())
			assert.Equal(t, tbl.Records(), merged.Records())
		})
	}

	both := Merge(nil, nil)
	assert.Equal(t, 0, both.Len())
	assert.Equal(t, []string{"Time"}, both.Columns())
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := mustTable(t, []string{"Time", "Temp"}, row(100, 20))
	b := mustTable(t, []string{"Time", "Temp"}, row(100, 30))
	before := a.Records()

	_ = Merge(a, b)
	assert.Equal(t, before, a.Records())
	assert.Equal(t, []string{"Time", "Temp"}, a.Columns())
}

// randomTable draws a table over a random subset of a small column pool with
// distinct timestamps from a small range, so overlaps are common.
func randomTable(t *testing.T, rng *rand.Rand) *Table {
	pool := []string{"A", "B", "C", "D"}
	columns := []string{"Time"}
	for _, c := range pool {
		if rng.Intn(2) == 0 {
			columns = append(columns, c)
		}
	}
	n := rng.Intn(8)
	perm := rng.Perm(20)[:n]
	rows := make([][]model.Value, 0, n)
	for _, ts := range perm {
		r := make([]model.Value, len(columns))
		r[0] = model.Num(float64(ts * 10))
		for i := 1; i < len(columns); i++ {
			if rng.Intn(4) > 0 {
				r[i] = model.Num(float64(rng.Intn(100)))
			}
		}
		rows = append(rows, r)
	}
	return mustTable(t, columns, rows...)
}

func TestMergeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		a := randomTable(t, rng)
		b := randomTable(t, rng)
		c := Merge(a, b)

		// Column union without duplicates.
		union := map[string]bool{}
		for _, name := range append(a.Columns(), b.Columns()...) {
			union[name] = true
		}
		cols := c.Columns()
		assert.Len(t, cols, len(union))
		for _, name := range cols {
			assert.True(t, union[name])
		}

		// One row per distinct timestamp, ascending.
		times := map[int64]bool{}
		for i := 0; i < a.Len(); i++ {
			times[a.Time(i)] = true
		}
		for i := 0; i < b.Len(); i++ {
			times[b.Time(i)] = true
		}
		require.Equal(t, len(times), c.Len())
		for i := 1; i < c.Len(); i++ {
			assert.Less(t, c.Time(i-1), c.Time(i))
		}

		// Shared timestamp and column: b wins.
		for j := 0; j < b.Len(); j++ {
			ts := b.Time(j)
			idx := sort.Search(c.Len(), func(i int) bool { return c.Time(i) >= ts })
			require.Less(t, idx, c.Len())
			for _, name := range b.Columns() {
				want, _ := b.ValueAt(j, name)
				got, _ := c.ValueAt(idx, name)
				assert.Equal(t, want, got)
			}
		}
	}
}
