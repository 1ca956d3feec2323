package timing

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aarondl/opt/null"
)

var ErrLengthMismatch = errors.New("length mismatch")

// Rebase subtracts the values of refKey column-wise. If cols is empty all
// columns are rebased. Columns where the reference has no value are left as they are.
// An unknown refKey returns an unchanged copy.
func Rebase(g *Grid, refKey string, cols ...string) *Grid {
	ref := g.Row(refKey)
	if ref == nil {
		return g.Clone()
	}
	return rebaseWith(g, ref, cols)
}

// RebaseWithDummyValues rebases against an explicit reference vector
// aligned to the grid labels.
func RebaseWithDummyValues(g *Grid, values []null.Val[float64]) (*Grid, error) {
	if len(values) != len(g.Labels) {
		return nil, fmt.Errorf("%w: got %d values for %d columns",
			ErrLengthMismatch, len(values), len(g.Labels))
	}
	return rebaseWith(g, values, nil), nil
}

func rebaseWith(g *Grid, ref []null.Val[float64], cols []string) *Grid {
	ret := g.Clone()
	for j, label := range g.Labels {
		if len(cols) > 0 && !slices.Contains(cols, label) {
			continue
		}
		r, ok := ref[j].Get()
		if !ok {
			continue
		}
		for i := range ret.Cells {
			if v, ok := ret.Cells[i][j].Get(); ok {
				ret.Cells[i][j] = null.From(Round1(v - r))
			}
		}
	}
	return ret
}
