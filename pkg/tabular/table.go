// Package tabular holds the rectangular in-memory tables used between the
// upstream responses, the store and the derivations.
package tabular

import (
	"fmt"
	"slices"
)

// Table is an ordered sequence of rows sharing one column descriptor.
// Cells carry the scalar JSON types (string, int64, float64, bool) or nil.
type Table struct {
	Columns []string
	Rows    [][]any
	lookup  map[string]int
}

func New(columns ...string) *Table {
	t := &Table{Columns: append([]string{}, columns...), Rows: make([][]any, 0)}
	t.reindex()
	return t
}

// Empty returns a table without columns and rows
func Empty() *Table {
	return New()
}

func (t *Table) reindex() {
	t.lookup = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.lookup[c] = i
	}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	_, ok := t.lookup[col]
	return ok
}

// Index returns the position of col or -1
func (t *Table) Index(col string) int {
	if idx, ok := t.lookup[col]; ok {
		return idx
	}
	return -1
}

// Append adds a row. Missing cells are filled with nil, surplus cells are dropped.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// AppendMap adds a row from a column keyed map. Unknown keys are ignored.
func (t *Table) AppendMap(m map[string]any) {
	row := make([]any, len(t.Columns))
	for k, v := range m {
		if idx, ok := t.lookup[k]; ok {
			row[idx] = v
		}
	}
	t.Rows = append(t.Rows, row)
}

// AddColumn appends a new column filled with nil. No-op if the column exists.
func (t *Table) AddColumn(col string) {
	if t.Has(col) {
		return
	}
	t.Columns = append(t.Columns, col)
	t.lookup[col] = len(t.Columns) - 1
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], nil)
	}
}

// WithConstant broadcasts v into col for every row (adding col if needed).
func (t *Table) WithConstant(col string, v any) *Table {
	t.AddColumn(col)
	idx := t.lookup[col]
	for i := range t.Rows {
		t.Rows[i][idx] = v
	}
	return t
}

// Rename changes column names according to mapping old->new.
func (t *Table) Rename(mapping map[string]string) *Table {
	for i, c := range t.Columns {
		if n, ok := mapping[c]; ok {
			t.Columns[i] = n
		}
	}
	t.reindex()
	return t
}

// Select returns a new table with the requested columns (missing ones are nil).
func (t *Table) Select(cols ...string) *Table {
	ret := New(cols...)
	for i := range t.Rows {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = t.Value(i, c)
		}
		ret.Rows = append(ret.Rows, row)
	}
	return ret
}

// Filter returns a new table containing the rows accepted by keep.
func (t *Table) Filter(keep func(r Row) bool) *Table {
	ret := New(t.Columns...)
	for i := range t.Rows {
		if keep(Row{t: t, idx: i}) {
			ret.Rows = append(ret.Rows, slices.Clone(t.Rows[i]))
		}
	}
	return ret
}

func (t *Table) Row(i int) Row {
	return Row{t: t, idx: i}
}

// Each calls f for every row
func (t *Table) Each(f func(r Row)) {
	for i := range t.Rows {
		f(Row{t: t, idx: i})
	}
}

// Value returns the cell or nil if the column does not exist.
func (t *Table) Value(row int, col string) any {
	idx, ok := t.lookup[col]
	if !ok || row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][idx]
}

func (t *Table) Column(col string) []any {
	ret := make([]any, len(t.Rows))
	idx, ok := t.lookup[col]
	if !ok {
		return ret
	}
	for i := range t.Rows {
		ret[i] = t.Rows[i][idx]
	}
	return ret
}

// Concat appends the rows of other, aligning by column name.
// Columns only present in other are added.
func (t *Table) Concat(other *Table) *Table {
	if other == nil {
		return t
	}
	for _, c := range other.Columns {
		t.AddColumn(c)
	}
	for i := range other.Rows {
		row := make([]any, len(t.Columns))
		for j, c := range other.Columns {
			row[t.lookup[c]] = other.Rows[i][j]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%d cols, %d rows)", len(t.Columns), len(t.Rows))
}

// Row is a view on a single table row
type Row struct {
	t   *Table
	idx int
}

func (r Row) Index() int { return r.idx }

func (r Row) Get(col string) any {
	return r.t.Value(r.idx, col)
}

func (r Row) String(col string) string {
	return AsString(r.Get(col))
}

func (r Row) Int64(col string) (int64, bool) {
	return AsInt64(r.Get(col))
}

func (r Row) Float64(col string) (float64, bool) {
	return AsFloat64(r.Get(col))
}

// Map returns the row as column keyed map
func (r Row) Map() map[string]any {
	ret := make(map[string]any, len(r.t.Columns))
	for i, c := range r.t.Columns {
		ret[c] = r.t.Rows[r.idx][i]
	}
	return ret
}
