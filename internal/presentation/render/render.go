// Package render draws chart geometry and exports tables.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/core/table"
)

// Format selects an output encoding.
type Format string

const (
	FormatSVG   Format = "svg"
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ErrUnknownFormat is returned for an output format that is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatSVG, FormatText, FormatJSON, FormatCSV, FormatJSONL}
}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Snapshot is what the renderers draw from: the geometry of the current
// viewport plus the merged table behind it.
type Snapshot struct {
	Geometry chart.Geometry
	Table    *table.Table
	Text     TextOptions
}

// Write renders s in the requested format. Geometry formats draw the
// visible chart; table formats export every row.
func Write(w io.Writer, format Format, s Snapshot) error {
	switch format {
	case FormatSVG:
		return SVG(w, s.Geometry)
	case FormatText:
		return Text(w, s.Geometry, s.Text)
	case FormatJSON:
		return JSON(w, s.Geometry)
	case FormatCSV:
		return CSV(w, tableOrEmpty(s.Table))
	case FormatJSONL:
		return JSONL(w, tableOrEmpty(s.Table))
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func tableOrEmpty(t *table.Table) *table.Table {
	if t == nil {
		return table.Empty()
	}
	return t
}
