package model

import (
	"fmt"
)

// Table is tabular output of the visualizer: column headers plus data rows.
// Cells hold raw values (Value, string, int, float64, or nil for a missing
// cell) so callers can post-process them; writers format them with CellString.
type Table struct {
	// Headers are the column names.
	Headers []string `json:"headers"`

	// Rows holds one slice per row, each len(Headers) long.
	Rows [][]any `json:"rows"`
}

// NewTable creates a table with the given headers and no rows.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers, Rows: [][]any{}}
}

// Append adds a row. Missing trailing cells are padded with nil.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Records returns the list-of-lists form: the header row at index 0
// followed by the data rows.
func (t *Table) Records() [][]any {
	records := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	records = append(records, header)
	return append(records, t.Rows...)
}

// StringRows returns every data row formatted with CellString.
func (t *Table) StringRows() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = CellString(c)
		}
		out[i] = cells
	}
	return out
}

// MissingCell is how an absent value is displayed.
const MissingCell = "-"

// OrMissing returns s, or MissingCell when s is empty.
func OrMissing(s string) string {
	if s == "" {
		return MissingCell
	}
	return s
}

// CellString formats a single table cell for display.
func CellString(c any) string {
	switch v := c.(type) {
	case nil:
		return MissingCell
	case Value:
		return v.String()
	case *Value:
		if v == nil {
			return MissingCell
		}
		return v.String()
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case float32:
		return FormatNumber(float64(v))
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
