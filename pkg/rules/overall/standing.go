// Package overall derives position transitions between two overall standings.
package overall

import (
	"cmp"
	"slices"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

// Standing is an overall position of an entry after a stage, times in seconds.
type Standing struct {
	EntryID          int64
	Position         int64
	TotalS           null.Val[float64]
	DiffFirstS       null.Val[float64]
	DiffPrevS        null.Val[float64]
	TimeToCarBehindS null.Val[float64]
}

// FromStageOverall converts stored rows into standings. The time to the car
// behind is taken from the diffPrev of the next position.
// Rows without a position are dropped.
func FromStageOverall(rows []model.StageOverall) []Standing {
	ret := make([]Standing, 0, len(rows))
	for _, r := range rows {
		pos, ok := r.Position.Get()
		if !ok {
			continue
		}
		ret = append(ret, Standing{
			EntryID:    r.EntryID,
			Position:   pos,
			TotalS:     msToSeconds(r.TotalTimeMs),
			DiffFirstS: msToSeconds(r.DiffFirstMs),
			DiffPrevS:  msToSeconds(r.DiffPrevMs),
		})
	}
	slices.SortStableFunc(ret, func(a, b Standing) int {
		return cmp.Compare(a.Position, b.Position)
	})
	for i := range ret {
		for j := i + 1; j < len(ret); j++ {
			if ret[j].Position > ret[i].Position {
				ret[i].TimeToCarBehindS = ret[j].DiffPrevS
				break
			}
		}
	}
	return ret
}

func msToSeconds(v null.Val[int64]) null.Val[float64] {
	if ms, ok := v.Get(); ok {
		return null.From(timing.MsToSeconds(ms))
	}
	return null.Val[float64]{}
}
