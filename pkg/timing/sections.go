package timing

import (
	"github.com/aarondl/opt/null"
)

// SectionDurations converts cumulative times s1..sN+1 into per-section
// durations s_i - s_i-1 (s_0 = 0). Sections bounded by a missing value are null.
func SectionDurations(g *Grid) *Grid {
	ret := NewGrid(g.Labels...)
	for i, key := range g.Keys {
		row := make([]null.Val[float64], len(g.Labels))
		prev := null.From(0.0)
		for j, c := range g.Cells[i] {
			curr, ok1 := c.Get()
			p, ok2 := prev.Get()
			if ok1 && ok2 {
				row[j] = null.From(Round1(curr - p))
			}
			prev = c
		}
		ret.Add(key, row...)
	}
	return ret
}

// Cumulative is the inverse of SectionDurations.
// Once a section is missing all following cumulative values are null.
func Cumulative(g *Grid) *Grid {
	ret := NewGrid(g.Labels...)
	for i, key := range g.Keys {
		row := make([]null.Val[float64], len(g.Labels))
		sum := 0.0
		valid := true
		for j, c := range g.Cells[i] {
			v, ok := c.Get()
			valid = valid && ok
			if !valid {
				continue
			}
			sum += v
			row[j] = null.From(Round1(sum))
		}
		ret.Add(key, row...)
	}
	return ret
}

// SectionDistances computes successive differences of cumulative distances
// rounded to one decimal
func SectionDistances(cumulative []float64) []float64 {
	ret := make([]float64, len(cumulative))
	prev := 0.0
	for i, d := range cumulative {
		ret[i] = Round1(d - prev)
		prev = d
	}
	return ret
}
