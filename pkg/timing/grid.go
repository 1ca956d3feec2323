package timing

import (
	"slices"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
)

// Grid is a wide table of seconds: one row per key (usually the entryId),
// one column per label (split or section). Missing cells are null.
type Grid struct {
	Keys   []string
	Labels []string
	Cells  [][]null.Val[float64]
}

func NewGrid(labels ...string) *Grid {
	return &Grid{Keys: []string{}, Labels: slices.Clone(labels), Cells: [][]null.Val[float64]{}}
}

// Add appends a row. Missing trailing cells are null.
func (g *Grid) Add(key string, cells ...null.Val[float64]) {
	row := make([]null.Val[float64], len(g.Labels))
	copy(row, cells)
	g.Keys = append(g.Keys, key)
	g.Cells = append(g.Cells, row)
}

// AddValues appends a row of plain values
func (g *Grid) AddValues(key string, values ...float64) {
	cells := make([]null.Val[float64], len(values))
	for i, v := range values {
		cells[i] = null.From(v)
	}
	g.Add(key, cells...)
}

func (g *Grid) Len() int {
	return len(g.Keys)
}

// RowIndex returns the index of key or -1
func (g *Grid) RowIndex(key string) int {
	return slices.Index(g.Keys, key)
}

func (g *Grid) LabelIndex(label string) int {
	return slices.Index(g.Labels, label)
}

// Row returns the cells of key (nil if unknown)
func (g *Grid) Row(key string) []null.Val[float64] {
	if idx := g.RowIndex(key); idx >= 0 {
		return g.Cells[idx]
	}
	return nil
}

// Values returns the row of key with null cells replaced by zero
func (g *Grid) Values(key string) []float64 {
	row := g.Row(key)
	ret := make([]float64, len(row))
	for i, c := range row {
		ret[i] = c.GetOrZero()
	}
	return ret
}

func (g *Grid) Clone() *Grid {
	ret := &Grid{
		Keys:   slices.Clone(g.Keys),
		Labels: slices.Clone(g.Labels),
		Cells:  make([][]null.Val[float64], len(g.Cells)),
	}
	for i := range g.Cells {
		ret.Cells[i] = slices.Clone(g.Cells[i])
	}
	return ret
}

// Without returns a copy without the rows identified by keys
func (g *Grid) Without(keys ...string) *Grid {
	ret := NewGrid(g.Labels...)
	for i, k := range g.Keys {
		if !slices.Contains(keys, k) {
			ret.Add(k, g.Cells[i]...)
		}
	}
	return ret
}

// Table converts the grid into a table with keyCol as the first column
func (g *Grid) Table(keyCol string) *tabular.Table {
	t := tabular.New(append([]string{keyCol}, g.Labels...)...)
	for i, k := range g.Keys {
		row := make([]any, 0, len(g.Labels)+1)
		row = append(row, k)
		for _, c := range g.Cells[i] {
			if v, ok := c.Get(); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		t.Append(row...)
	}
	return t
}

// GridFromTable reads the numeric columns cols of t. Cells that are not
// numeric become null.
//
//nolint:whitespace // can't make both editor and linter happy
func GridFromTable(
	t *tabular.Table, keyCol string, cols ...string,
) *Grid {
	g := NewGrid(cols...)
	t.Each(func(r tabular.Row) {
		cells := make([]null.Val[float64], len(cols))
		for i, c := range cols {
			if v, ok := r.Float64(c); ok {
				cells[i] = null.From(v)
			}
		}
		g.Add(r.String(keyCol), cells...)
	})
	return g
}
