package render

import (
	"encoding/csv"
	"io"

	"github.com/penwyp/go-timeplot/internal/core/table"
)

// CSV writes the table with a header row. Null cells are left empty.
func CSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)

	columns := t.Columns()
	if err := cw.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for row := 0; row < t.Len(); row++ {
		for i, name := range columns {
			v, err := t.ValueAt(row, name)
			if err != nil {
				return err
			}
			if v.Valid {
				record[i] = v.String()
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
