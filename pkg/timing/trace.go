package timing

import (
	"cmp"
	"slices"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
)

type TracePoint struct {
	EntryID     int64
	StageID     int64
	StageIndex  int
	Position    int64
	TotalTimeMs int64
}

// PositionTrace emits the overall position of each entry after each stage.
// Stages are visited in chronological order (shakedown skipped), the ranking
// is done among entries accepted by include (nil accepts all).
//
//nolint:whitespace // can't make both editor and linter happy
func PositionTrace(
	overall []model.StageOverall, stages []StageInfo, include func(entryID int64) bool,
) []TracePoint {
	byStage := map[int64][]model.StageOverall{}
	for _, o := range overall {
		if include != nil && !include(o.EntryID) {
			continue
		}
		byStage[o.StageID] = append(byStage[o.StageID], o)
	}
	ret := make([]TracePoint, 0, len(overall))
	idx := 0
	for _, s := range ChronologicalOrder(stages) {
		if model.IsShakedownCode(s.Code) {
			continue
		}
		idx++
		for _, o := range RankOverall(byStage[s.StageID]) {
			pos, ok := o.Position.Get()
			if !ok {
				continue
			}
			ret = append(ret, TracePoint{
				EntryID:     o.EntryID,
				StageID:     s.StageID,
				StageIndex:  idx,
				Position:    pos,
				TotalTimeMs: o.TotalTimeMs.GetOrZero(),
			})
		}
	}
	return ret
}

// FillTotals sets missing totalTimeMs values to the running sum of
// stageTimeMs plus the penaltyTimeMs reported for that stage.
// Rows with a total are kept as delivered.
//
//nolint:whitespace // can't make both editor and linter happy
func FillTotals(
	rows []model.StageOverall, stages []StageInfo,
) []model.StageOverall {
	pos := map[int64]int{}
	for i, s := range ChronologicalOrder(stages) {
		pos[s.StageID] = i
	}
	byEntry := map[int64][]int{}
	for i, r := range rows {
		byEntry[r.EntryID] = append(byEntry[r.EntryID], i)
	}
	ret := make([]model.StageOverall, len(rows))
	copy(ret, rows)
	for _, idxs := range byEntry {
		ordered := slices.Clone(idxs)
		slices.SortStableFunc(ordered, func(a, b int) int {
			return cmp.Compare(pos[ret[a].StageID], pos[ret[b].StageID])
		})
		sum := int64(0)
		for _, i := range ordered {
			sum += ret[i].StageTimeMs.GetOrZero()
			if ret[i].TotalTimeMs.IsNull() && ret[i].StageTimeMs.IsValue() {
				ret[i].TotalTimeMs = null.From(sum + ret[i].PenaltyTimeMs.GetOrZero())
			}
		}
	}
	return ret
}
