package timing

import (
	"github.com/aarondl/opt/null"
)

// UltimateKey identifies the virtual best competitor
const UltimateKey = "ULT"

// Ultimate returns per column the minimum positive value among the rows.
// Columns without any positive value are null.
func Ultimate(g *Grid) []null.Val[float64] {
	ret := make([]null.Val[float64], len(g.Labels))
	for i, key := range g.Keys {
		if key == UltimateKey {
			continue
		}
		for j, c := range g.Cells[i] {
			v, ok := c.Get()
			if !ok || v <= 0 {
				continue
			}
			if best, ok := ret[j].Get(); !ok || v < best {
				ret[j] = null.From(v)
			}
		}
	}
	return ret
}

// WithUltimate returns a copy of the section grid with an additional ULT row.
func WithUltimate(g *Grid) *Grid {
	ret := g.Without(UltimateKey)
	ret.Add(UltimateKey, Ultimate(g)...)
	return ret
}

// WithoutUltimate drops the ULT row
func WithoutUltimate(g *Grid) *Grid {
	return g.Without(UltimateKey)
}
