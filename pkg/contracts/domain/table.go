package domain

import (
	"math"
	"strconv"
	"strings"
)

// Table is a loosely-schematized tabular dataset as uploaded by a researcher.
// Cells are kept as strings; numeric interpretation is left to consumers so
// that a single bad cell never fails ingestion of the whole file.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NumRows returns the number of data rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the raw cell value for a row/column pair. Short rows read as
// empty cells.
func (t *Table) Cell(row int, col string) string {
	idx := t.ColumnIndex(col)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	if idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// FloatColumn parses the named column as float64 values. Unparseable or
// missing cells become NaN, mirroring how numeric comparisons should simply
// fail for them downstream.
func (t *Table) FloatColumn(name string) []float64 {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = math.NaN()
		if idx >= len(row) {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64); err == nil {
			out[i] = v
		}
	}
	return out
}

// IsNumericColumn reports whether the named column holds numeric data. A
// column counts as numeric when at least one cell is non-empty and every
// non-empty cell parses as a float.
func (t *Table) IsNumericColumn(name string) bool {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return false
	}
	seen := false
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
