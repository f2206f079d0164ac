// Package source parses delimited text or 2-D value grids into loosely-typed
// rows keyed by column label.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrEmptySource indicates a source with a header row only, or no rows at
// all. Callers treat it as "nothing to import", not as a per-row failure.
var ErrEmptySource = eris.New("source: fewer than two rows")

// Row maps a column label to its string value. Positional keys ("_1", "_2",
// ...) are populated alongside header labels so header-less layouts still
// normalize.
type Row map[string]string

// FromGrid converts a rectangular grid of values (first row = headers) into
// rows. Rows shorter than the header are padded with empty strings for the
// missing trailing columns.
func FromGrid(grid [][]string) ([]Row, error) {
	if len(grid) < 2 {
		return nil, eris.Wrapf(ErrEmptySource, "grid has %d rows", len(grid))
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		rows = append(rows, newRow(headers, cells))
	}
	return rows, nil
}

// FromDelimited parses delimited text. Header and value splitting, quoted
// fields, and blank-line skipping follow encoding/csv conventions.
func FromDelimited(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	var grid [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "source: read delimited row")
		}
		grid = append(grid, record)
	}

	return FromGrid(grid)
}

func newRow(headers []string, cells []string) Row {
	row := make(Row, len(headers)*2)
	for i, h := range headers {
		var v string
		if i < len(cells) {
			v = strings.TrimSpace(cells[i])
		}
		if h != "" {
			row[h] = v
		}
		row[fmt.Sprintf("_%d", i+1)] = v
	}
	return row
}
