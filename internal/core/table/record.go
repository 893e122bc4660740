package table

import (
	"fmt"
	"sort"

	"github.com/penwyp/go-timeplot/internal/core/model"
)

// Record is one row keyed by column name, the shape persisted per timestamp.
type Record map[string]model.Value

// Time returns the record's timestamp. ok is false if Time is absent or null.
func (r Record) Time() (int64, bool) {
	v, ok := r[TimeColumn]
	if !ok || !v.Valid {
		return 0, false
	}
	return int64(v.Num), true
}

// FromRecords builds a table from an unordered record list. Columns are the
// union of all keys: Time first, then keys in first-seen order (keys within a
// single record are taken alphabetically). Missing cells become null.
func FromRecords(records []Record) (*Table, error) {
	columns := []string{TimeColumn}
	seen := map[string]bool{TimeColumn: true}
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			columns = append(columns, k)
		}
	}

	rows := make([][]model.Value, len(records))
	for i, rec := range records {
		if _, ok := rec[TimeColumn]; !ok {
			return nil, fmt.Errorf("%w: record %d has no %q", model.ErrInvalidTable, i, TimeColumn)
		}
		row := make([]model.Value, len(columns))
		for c, name := range columns {
			row[c] = rec[name]
		}
		rows[i] = row
	}
	return New(columns, rows)
}

// Records returns every row as a Record. Null cells are kept so the record
// still declares every column of the table.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.rows))
	for i := range t.rows {
		rec, _ := t.Row(i)
		out = append(out, rec)
	}
	return out
}
