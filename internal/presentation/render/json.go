package render

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/core/table"
)

// JSON writes the geometry as indented JSON.
func JSON(w io.Writer, g chart.Geometry) error {
	data, err := sonic.ConfigStd.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode geometry: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// JSONL writes one JSON object per row, nulls included, in time order.
func JSONL(w io.Writer, t *table.Table) error {
	for _, rec := range t.Records() {
		data, err := sonic.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}
