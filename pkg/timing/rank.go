package timing

import (
	"cmp"
	"slices"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
)

// DenseRank ranks values ascending. Equal values share a position, the next
// distinct value gets the following position. Null values stay unranked.
func DenseRank(values []null.Val[int64]) []null.Val[int64] {
	distinct := distinctSorted(values)
	ret := make([]null.Val[int64], len(values))
	for i, v := range values {
		if x, ok := v.Get(); ok {
			idx, _ := slices.BinarySearch(distinct, x)
			ret[i] = null.From(int64(idx + 1))
		}
	}
	return ret
}

// DiffFirstPrev computes the gap to the best value and the gap to the next
// strictly better value. The best entries have 0 for both.
func DiffFirstPrev(values []null.Val[int64]) (diffFirst, diffPrev []null.Val[int64]) {
	distinct := distinctSorted(values)
	diffFirst = make([]null.Val[int64], len(values))
	diffPrev = make([]null.Val[int64], len(values))
	for i, v := range values {
		x, ok := v.Get()
		if !ok {
			continue
		}
		idx, _ := slices.BinarySearch(distinct, x)
		diffFirst[i] = null.From(x - distinct[0])
		if idx == 0 {
			diffPrev[i] = null.From(int64(0))
		} else {
			diffPrev[i] = null.From(x - distinct[idx-1])
		}
	}
	return diffFirst, diffPrev
}

func distinctSorted(values []null.Val[int64]) []int64 {
	ret := make([]int64, 0, len(values))
	for _, v := range values {
		if x, ok := v.Get(); ok {
			ret = append(ret, x)
		}
	}
	slices.Sort(ret)
	return slices.Compact(ret)
}

// RankStageTimes recomputes position, diffFirstMs and diffPrevMs for the
// given (usually category filtered) rows. The input is not modified.
// The result is ordered by position, unranked rows last.
func RankStageTimes(times []model.StageTime) []model.StageTime {
	values := make([]null.Val[int64], len(times))
	for i := range times {
		values[i] = times[i].ElapsedDurationMs
	}
	pos := DenseRank(values)
	first, prev := DiffFirstPrev(values)
	ret := slices.Clone(times)
	for i := range ret {
		ret[i].Position = pos[i]
		ret[i].DiffFirstMs = first[i]
		ret[i].DiffPrevMs = prev[i]
	}
	slices.SortStableFunc(ret, func(a, b model.StageTime) int {
		return comparePosition(a.Position, b.Position)
	})
	return ret
}

// RankOverall is RankStageTimes for overall standings based on totalTimeMs
func RankOverall(rows []model.StageOverall) []model.StageOverall {
	values := make([]null.Val[int64], len(rows))
	for i := range rows {
		values[i] = rows[i].TotalTimeMs
	}
	pos := DenseRank(values)
	first, prev := DiffFirstPrev(values)
	ret := slices.Clone(rows)
	for i := range ret {
		ret[i].Position = pos[i]
		ret[i].DiffFirstMs = first[i]
		ret[i].DiffPrevMs = prev[i]
	}
	slices.SortStableFunc(ret, func(a, b model.StageOverall) int {
		return comparePosition(a.Position, b.Position)
	})
	return ret
}

func comparePosition(a, b null.Val[int64]) int {
	av, aok := a.Get()
	bv, bok := b.Get()
	switch {
	case aok && bok:
		return cmp.Compare(av, bv)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}
