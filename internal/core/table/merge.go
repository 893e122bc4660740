package table

import "github.com/penwyp/go-timeplot/internal/core/model"

// Merge combines two tables into a new one. Columns are a's followed by b's
// columns a lacks. Rows are merge-joined on Time: a timestamp present in both
// inputs yields one row in which every column declared by b takes b's value.
// Cells neither input defines are null. A nil table is treated as empty.
func Merge(a, b *Table) *Table {
	if a == nil {
		a = Empty()
	}
	if b == nil {
		b = Empty()
	}

	columns := a.Columns()
	index := make(map[string]int, len(a.columns)+len(b.columns))
	for i, name := range columns {
		index[name] = i
	}
	for _, name := range b.columns {
		if _, ok := index[name]; !ok {
			index[name] = len(columns)
			columns = append(columns, name)
		}
	}

	aMap := projection(a.columns, index)
	bMap := projection(b.columns, index)
	width := len(columns)

	rows := make([][]model.Value, 0, len(a.rows)+len(b.rows))
	i, j := 0, 0
	for i < len(a.rows) || j < len(b.rows) {
		switch {
		case j == len(b.rows) || (i < len(a.rows) && a.Time(i) < b.Time(j)):
			rows = append(rows, project(a.rows[i], aMap, width))
			i++
		case i == len(a.rows) || b.Time(j) < a.Time(i):
			rows = append(rows, project(b.rows[j], bMap, width))
			j++
		default:
			row := project(a.rows[i], aMap, width)
			for k, v := range b.rows[j] {
				row[bMap[k]] = v
			}
			rows = append(rows, row)
			i++
			j++
		}
	}

	return &Table{
		columns: columns,
		index:   index,
		timeIdx: index[TimeColumn],
		rows:    rows,
	}
}

// projection maps each source column position to its position in the merged table.
func projection(src []string, index map[string]int) []int {
	m := make([]int, len(src))
	for i, name := range src {
		m[i] = index[name]
	}
	return m
}

func project(src []model.Value, m []int, width int) []model.Value {
	row := make([]model.Value, width)
	for k, v := range src {
		row[m[k]] = v
	}
	return row
}
