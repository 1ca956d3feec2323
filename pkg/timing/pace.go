package timing

import (
	"github.com/aarondl/opt/null"
)

// Pace computes seconds per km for each section. distances are the section
// distances (km) aligned to the grid labels. Cells with a missing duration
// or a non-positive distance are null.
func Pace(durations *Grid, distances []float64) *Grid {
	return roundGrid(exactPace(durations, distances))
}

// Speed computes km/h for each section
func Speed(durations *Grid, distances []float64) *Grid {
	return roundGrid(sectionMetric(durations, distances, func(t, d float64) (float64, bool) {
		return 3600 * d / t, d > 0 && t > 0
	}))
}

// PaceDiff computes the pace difference to winnerKey column-wise.
// The difference is taken on the exact pace and rounded once.
// Returns nil if winnerKey is not part of the grid.
func PaceDiff(durations *Grid, distances []float64, winnerKey string) *Grid {
	if durations.RowIndex(winnerKey) < 0 {
		return nil
	}
	return Rebase(exactPace(durations, distances), winnerKey)
}

func exactPace(durations *Grid, distances []float64) *Grid {
	return sectionMetric(durations, distances, func(t, d float64) (float64, bool) {
		return t / d, d > 0
	})
}

//nolint:whitespace // can't make both editor and linter happy
func sectionMetric(
	g *Grid, distances []float64, f func(t, d float64) (float64, bool),
) *Grid {
	ret := NewGrid(g.Labels...)
	for i, key := range g.Keys {
		row := make([]null.Val[float64], len(g.Labels))
		for j, c := range g.Cells[i] {
			t, ok := c.Get()
			if !ok || j >= len(distances) {
				continue
			}
			if v, ok := f(t, distances[j]); ok {
				row[j] = null.From(v)
			}
		}
		ret.Add(key, row...)
	}
	return ret
}

func roundGrid(g *Grid) *Grid {
	for i := range g.Cells {
		for j, c := range g.Cells[i] {
			if v, ok := c.Get(); ok {
				g.Cells[i][j] = null.From(Round1(v))
			}
		}
	}
	return g
}

// PaceSPerKm returns seconds per km for a total time.
func PaceSPerKm(seconds, km float64) null.Val[float64] {
	if km <= 0 {
		return null.Val[float64]{}
	}
	return null.From(Round1(seconds / km))
}

// SpeedKmh returns the average speed for a total time.
func SpeedKmh(seconds, km float64) null.Val[float64] {
	if km <= 0 || seconds <= 0 {
		return null.Val[float64]{}
	}
	return null.From(Round1(3600 * km / seconds))
}
