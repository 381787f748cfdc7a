// Package table holds the dense tabular form that every export sheet is built
// from: ordered columns carrying both their structured key and human label,
// plus rows of scalar cells aligned to those columns.
package table

import (
	"maude/internal/colkey"
	"maude/internal/value"
)

// Column is one table column. Label is empty until a namer assigns one.
type Column struct {
	Key   colkey.Key
	Label string
}

// Header is the text shown for the column: its label, or the raw key.
func (c Column) Header() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key.String()
}

// Table is a named grid. Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]value.Value
}

// New returns an empty table with the given column headers used as raw keys.
func New(name string, headers ...string) *Table {
	t := &Table{Name: name}
	for _, h := range headers {
		t.Columns = append(t.Columns, Column{Key: colkey.New(h), Label: h})
	}
	return t
}

// Append adds a row, padding with Absent or truncating to the column count.
func (t *Table) Append(cells ...value.Value) {
	row := make([]value.Value, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// AppendText adds a row of string cells; empty strings become Absent.
func (t *Table) AppendText(cells ...string) {
	row := make([]value.Value, len(t.Columns))
	for i := 0; i < len(cells) && i < len(row); i++ {
		if cells[i] != "" {
			row[i] = value.String(cells[i])
		}
	}
	t.Rows = append(t.Rows, row)
}

// Index returns the position of the column whose rendered key is key, or -1.
func (t *Table) Index(key string) int {
	for i, c := range t.Columns {
		if c.Key.String() == key {
			return i
		}
	}
	return -1
}

// IndexLabel returns the position of the column labelled label, or -1.
func (t *Table) IndexLabel(label string) int {
	for i, c := range t.Columns {
		if c.Label == label {
			return i
		}
	}
	return -1
}

// Headers returns the header text of every column in order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header()
	}
	return out
}

// Cell returns the value at (row, col), or Absent when out of range.
func (t *Table) Cell(row, col int) value.Value {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return value.Absent()
	}
	return t.Rows[row][col]
}

// Map rewrites every cell of column col in place.
func (t *Table) Map(col int, fn func(value.Value) value.Value) {
	for _, row := range t.Rows {
		if col < len(row) {
			row[col] = fn(row[col])
		}
	}
}

// Select keeps only the columns at the given positions, in that order.
func (t *Table) Select(cols []int) {
	next := make([]Column, len(cols))
	for i, c := range cols {
		next[i] = t.Columns[c]
	}
	for r, row := range t.Rows {
		nr := make([]value.Value, len(cols))
		for i, c := range cols {
			if c < len(row) {
				nr[i] = row[c]
			}
		}
		t.Rows[r] = nr
	}
	t.Columns = next
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Clone returns a copy under a new name. Rows are copied, cells are shared.
func (t *Table) Clone(name string) *Table {
	c := &Table{Name: name, Columns: append([]Column(nil), t.Columns...)}
	c.Rows = make([][]value.Value, len(t.Rows))
	for i, row := range t.Rows {
		c.Rows[i] = append([]value.Value(nil), row...)
	}
	return c
}
