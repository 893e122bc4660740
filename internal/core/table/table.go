// Package table implements the columnar time-series dataset the chart draws
// from, and the merge that folds new rows into it.
package table

import (
	"fmt"
	"math"
	"sort"

	"github.com/penwyp/go-timeplot/internal/core/model"
)

// TimeColumn is the required time key of every table.
const TimeColumn = model.TimeColumn

// Table is an immutable columnar dataset. Rows are ordered by ascending,
// unique Time and every row holds exactly one value per column.
type Table struct {
	columns []string
	index   map[string]int
	timeIdx int
	rows    [][]model.Value
}

// Empty returns a table holding only the Time column and no rows.
func Empty() *Table {
	return &Table{
		columns: []string{TimeColumn},
		index:   map[string]int{TimeColumn: 0},
	}
}

// New builds a table from column names and row values. Rows are copied,
// sorted by Time and deduplicated so that the last row for a timestamp wins.
func New(columns []string, rows [][]model.Value) (*Table, error) {
	index, err := buildIndex(columns)
	if err != nil {
		return nil, err
	}
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   index,
		timeIdx: index[TimeColumn],
		rows:    make([][]model.Value, 0, len(rows)),
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", model.ErrInvalidTable, i, len(row), len(columns))
		}
		if err := checkRow(row, t.timeIdx); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		t.rows = append(t.rows, append([]model.Value(nil), row...))
	}

	t.normalize()
	return t, nil
}

func buildIndex(columns []string) (map[string]int, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has no name", model.ErrInvalidTable, i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", model.ErrInvalidTable, name)
		}
		index[name] = i
	}
	if _, ok := index[TimeColumn]; !ok {
		return nil, fmt.Errorf("%w: missing %q column", model.ErrInvalidTable, TimeColumn)
	}
	return index, nil
}

func checkRow(row []model.Value, timeIdx int) error {
	ts := row[timeIdx]
	if !ts.Valid {
		return fmt.Errorf("%w: %s is null", model.ErrInvalidTable, TimeColumn)
	}
	if math.IsNaN(ts.Num) || math.IsInf(ts.Num, 0) || ts.Num != math.Trunc(ts.Num) {
		return fmt.Errorf("%w: %s must be integral seconds, got %v", model.ErrInvalidTable, TimeColumn, ts.Num)
	}
	for _, v := range row {
		if v.NonFinite() {
			return fmt.Errorf("%w: non-finite sample %v", model.ErrInvalidTable, v.Num)
		}
	}
	return nil
}

// normalize sorts rows by Time and collapses duplicate timestamps, keeping
// the row that came last in input order.
func (t *Table) normalize() {
	sort.SliceStable(t.rows, func(i, j int) bool {
		return t.rows[i][t.timeIdx].Num < t.rows[j][t.timeIdx].Num
	})
	out := t.rows[:0]
	for _, row := range t.rows {
		if n := len(out); n > 0 && out[n-1][t.timeIdx].Num == row[t.timeIdx].Num {
			out[n-1] = row
			continue
		}
		out = append(out, row)
	}
	t.rows = out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns a copy of the column names in table order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the table declares the column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ValueAt returns the value of a column in the given row.
func (t *Table) ValueAt(row int, column string) (model.Value, error) {
	if row < 0 || row >= len(t.rows) {
		return model.Null, fmt.Errorf("%w: row %d of %d", model.ErrOutOfRange, row, len(t.rows))
	}
	col, ok := t.index[column]
	if !ok {
		return model.Null, fmt.Errorf("%w: column %q", model.ErrOutOfRange, column)
	}
	return t.rows[row][col], nil
}

// Time returns the timestamp of a row. The caller guarantees the index.
func (t *Table) Time(row int) int64 {
	return int64(t.rows[row][t.timeIdx].Num)
}

// Row returns a copy of one row keyed by column name.
func (t *Table) Row(row int) (Record, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, fmt.Errorf("%w: row %d of %d", model.ErrOutOfRange, row, len(t.rows))
	}
	rec := make(Record, len(t.columns))
	for i, name := range t.columns {
		rec[name] = t.rows[row][i]
	}
	return rec, nil
}

// MinMax scans a column and returns its extremes, ignoring nulls.
func (t *Table) MinMax(column string) (min, max float64, err error) {
	col, ok := t.index[column]
	if !ok {
		return 0, 0, fmt.Errorf("%w: column %q", model.ErrOutOfRange, column)
	}
	found := false
	for _, row := range t.rows {
		v := row[col]
		if !v.Valid {
			continue
		}
		if !found {
			min, max = v.Num, v.Num
			found = true
			continue
		}
		if v.Num < min {
			min = v.Num
		}
		if v.Num > max {
			max = v.Num
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("%w: %q", model.ErrEmptyColumn, column)
	}
	return min, max, nil
}

// TimeRange returns the first and last timestamp. ok is false for an empty table.
func (t *Table) TimeRange() (first, last int64, ok bool) {
	if len(t.rows) == 0 {
		return 0, 0, false
	}
	return t.Time(0), t.Time(len(t.rows) - 1), true
}

// Slice returns the rows with start <= Time <= end as a new table with the
// same columns.
func (t *Table) Slice(start, end int64) *Table {
	lo := sort.Search(len(t.rows), func(i int) bool { return t.Time(i) >= start })
	hi := sort.Search(len(t.rows), func(i int) bool { return t.Time(i) > end })
	if hi < lo {
		hi = lo
	}
	out := &Table{
		columns: t.Columns(),
		index:   t.index,
		timeIdx: t.timeIdx,
		rows:    make([][]model.Value, 0, hi-lo),
	}
	for _, row := range t.rows[lo:hi] {
		out.rows = append(out.rows, append([]model.Value(nil), row...))
	}
	return out
}
