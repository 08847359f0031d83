// Package table implements the in-memory tabular dataset the cleaning engine
// operates on: an ordered sequence of named columns, each an ordered sequence
// of cell values aligned by row index.
//
// Invariants maintained by every mutating operation:
//   - All columns always have the same length.
//   - Row correspondence is preserved across columns (row i of column A and
//     row i of column B always belong to the same logical record).
//
// A nil cell represents a missing value.
package table

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is returned (wrapped) whenever an operation references a
// column that is not present in the dataset. Callers that need to branch on
// this condition should use errors.Is.
var ErrMissingColumn = errors.New("missing column")

// Dataset holds columns in insertion order. The zero value is an empty
// dataset with no columns and no rows.
type Dataset struct {
	names []string
	cells [][]any
}

// New constructs a dataset with the given column names and no rows.
func New(names ...string) *Dataset {
	d := &Dataset{
		names: append([]string(nil), names...),
		cells: make([][]any, len(names)),
	}
	return d
}

// Columns returns the column names in order. The returned slice is a copy.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.names...)
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int { return len(d.names) }

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if len(d.cells) == 0 {
		return 0
	}
	return len(d.cells[0])
}

// Has reports whether the dataset contains a column with the given name.
func (d *Dataset) Has(name string) bool {
	return d.index(name) >= 0
}

func (d *Dataset) index(name string) int {
	for i, n := range d.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns the cell slice for the named column. The slice aliases the
// dataset's storage; callers that mutate it mutate the dataset.
func (d *Dataset) Column(name string) ([]any, error) {
	i := d.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return d.cells[i], nil
}

// Cell returns the value at (column, row). It is a convenience for tests and
// small readers; bulk access should go through Column.
func (d *Dataset) Cell(name string, row int) (any, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(col) {
		return nil, fmt.Errorf("row %d out of range for column %q (len %d)", row, name, len(col))
	}
	return col[row], nil
}

// AppendRow adds one row. The number of values must match the number of
// columns; this is the only way rows enter a dataset, which keeps column
// alignment mechanical.
func (d *Dataset) AppendRow(values []any) error {
	if len(values) != len(d.names) {
		return fmt.Errorf("append row: got %d values for %d columns", len(values), len(d.names))
	}
	for i, v := range values {
		d.cells[i] = append(d.cells[i], v)
	}
	return nil
}

// AddColumn appends a new column. Its length must match the current row
// count unless the dataset has no columns yet.
func (d *Dataset) AddColumn(name string, cells []any) error {
	if d.index(name) >= 0 {
		return fmt.Errorf("add column: %q already exists", name)
	}
	if len(d.names) > 0 && len(cells) != d.Len() {
		return fmt.Errorf("add column %q: got %d cells, want %d", name, len(cells), d.Len())
	}
	d.names = append(d.names, name)
	d.cells = append(d.cells, cells)
	return nil
}

// Rename changes a column's name in place, keeping its position and cells.
func (d *Dataset) Rename(from, to string) error {
	i := d.index(from)
	if i < 0 {
		return fmt.Errorf("rename: %w: %q", ErrMissingColumn, from)
	}
	if j := d.index(to); j >= 0 && j != i {
		return fmt.Errorf("rename %q: target %q already exists", from, to)
	}
	d.names[i] = to
	return nil
}

// LastColumn returns the name of the last column.
func (d *Dataset) LastColumn() (string, error) {
	if len(d.names) == 0 {
		return "", fmt.Errorf("last column: dataset has no columns")
	}
	return d.names[len(d.names)-1], nil
}

// SetColumn replaces the cells of an existing column. The replacement must
// have the same length as the dataset.
func (d *Dataset) SetColumn(name string, cells []any) error {
	i := d.index(name)
	if i < 0 {
		return fmt.Errorf("set column: %w: %q", ErrMissingColumn, name)
	}
	if len(cells) != d.Len() {
		return fmt.Errorf("set column %q: got %d cells, want %d", name, len(cells), d.Len())
	}
	d.cells[i] = cells
	return nil
}

// Apply replaces each cell of the named column with fn(cell).
func (d *Dataset) Apply(name string, fn func(any) any) error {
	col, err := d.Column(name)
	if err != nil {
		return err
	}
	for i := range col {
		col[i] = fn(col[i])
	}
	return nil
}

// Filter keeps only the rows for which keep returns true. All columns are
// filtered in lockstep so row correspondence survives the drop.
func (d *Dataset) Filter(keep func(row int) bool) {
	n := d.Len()
	if n == 0 {
		return
	}
	kept := make([]int, 0, n)
	for r := 0; r < n; r++ {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == n {
		return
	}
	for c := range d.cells {
		out := make([]any, len(kept))
		for i, r := range kept {
			out[i] = d.cells[c][r]
		}
		d.cells[c] = out
	}
}

// Select reduces the dataset to exactly the named columns, in the given
// order. Every requested column must exist.
func (d *Dataset) Select(names ...string) error {
	idx := make([]int, len(names))
	for i, n := range names {
		j := d.index(n)
		if j < 0 {
			return fmt.Errorf("select: %w: %q", ErrMissingColumn, n)
		}
		idx[i] = j
	}
	newNames := make([]string, len(names))
	newCells := make([][]any, len(names))
	for i, j := range idx {
		newNames[i] = d.names[j]
		newCells[i] = d.cells[j]
	}
	d.names = newNames
	d.cells = newCells
	return nil
}

// Rows returns a row-major copy of the dataset, suitable for bulk loading.
func (d *Dataset) Rows() [][]any {
	n := d.Len()
	out := make([][]any, n)
	for r := 0; r < n; r++ {
		row := make([]any, len(d.cells))
		for c := range d.cells {
			row[c] = d.cells[c][r]
		}
		out[r] = row
	}
	return out
}

// Clone returns a deep copy of the dataset structure. Cell values themselves
// are copied by assignment (they are treated as immutable scalars).
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		names: append([]string(nil), d.names...),
		cells: make([][]any, len(d.cells)),
	}
	for i := range d.cells {
		out.cells[i] = append([]any(nil), d.cells[i]...)
	}
	return out
}
