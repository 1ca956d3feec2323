package ingest

import (
	"slices"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

// regularizeStageTimes fills the ms columns of a results stage time table.
// The first row is the leader with an absolute finish, the other rows carry
// "+delta" strings relative to the leader unless an absolute time is given.
// Cells already delivered by upstream are kept.
func regularizeStageTimes(t *tabular.Table) *tabular.Table {
	if t.IsEmpty() || !t.Has("entryId") {
		return t
	}
	g := timing.RegularizeTable(t, "entryId", nil, "diffFirst", stageTimeColumn(t))
	finish := g.LabelIndex(timing.FinishLabel)
	if finish < 0 {
		return t
	}
	elapsed := make([]null.Val[int64], g.Len())
	for i := range g.Keys {
		if v, ok := g.Cells[i][finish].Get(); ok {
			elapsed[i] = null.From(timing.SecondsToMs(v))
		}
	}
	fillInt64(t, "elapsedDurationMs", elapsed)
	elapsed = int64Column(t, "elapsedDurationMs")
	diffFirst, diffPrev := timing.DiffFirstPrev(elapsed)
	fillInt64(t, "diffFirstMs", diffFirst)
	fillInt64(t, "diffPrevMs", diffPrev)
	return t
}

// the absolute stage time is delivered either as stageTime or elapsedDuration
func stageTimeColumn(t *tabular.Table) string {
	for _, c := range []string{"stageTime", "elapsedDuration"} {
		if t.Has(c) {
			return c
		}
	}
	return ""
}

// regularizeSplitTimes fills elapsedDurationMs of the exploded results split
// times. Per split point the first entry holds the absolute value, all other
// entries are deltas to it.
func regularizeSplitTimes(t *tabular.Table) *tabular.Table {
	if t.IsEmpty() || !t.Has("entryId") || !t.Has("splitPointId") || !t.Has("elapsedDuration") {
		return t
	}
	keys := make([]string, 0)
	points := make([]string, 0)
	values := map[string]map[string]string{}
	t.Each(func(r tabular.Row) {
		key, point := r.String("entryId"), r.String("splitPointId")
		if _, ok := values[key]; !ok {
			keys = append(keys, key)
			values[key] = map[string]string{}
		}
		if !slices.Contains(points, point) {
			points = append(points, point)
		}
		values[key][point] = r.String("elapsedDuration")
	})
	in := timing.SplitRows{Keys: keys, Splits: make([][]string, len(keys))}
	for i, key := range keys {
		row := make([]string, len(points))
		for j, point := range points {
			row[j] = values[key][point]
		}
		in.Splits[i] = row
	}
	g := timing.Regularize(in, points)

	ms := make([]null.Val[int64], t.Len())
	t.Each(func(r tabular.Row) {
		row := g.Row(r.String("entryId"))
		j := g.LabelIndex(r.String("splitPointId"))
		if row == nil || j < 0 {
			return
		}
		if v, ok := row[j].Get(); ok {
			ms[r.Index()] = null.From(timing.SecondsToMs(v))
		}
	})
	fillInt64(t, "elapsedDurationMs", ms)
	fillDuration(t, "stageTimeDuration", "stageTimeDurationMs")
	return t
}

// regularizeOverall converts the absolute overall times of a results stage
// result and derives the gaps from the total times.
func regularizeOverall(t *tabular.Table) *tabular.Table {
	if t.IsEmpty() {
		return t
	}
	fillDuration(t, "stageTime", "stageTimeMs")
	fillDuration(t, "penaltyTime", "penaltyTimeMs")
	fillDuration(t, "totalTime", "totalTimeMs")
	if !t.Has("totalTimeMs") {
		return t
	}
	diffFirst, diffPrev := timing.DiffFirstPrev(int64Column(t, "totalTimeMs"))
	fillInt64(t, "diffFirstMs", diffFirst)
	fillInt64(t, "diffPrevMs", diffPrev)
	return t
}

// fillDuration parses the absolute time strings of src into msCol
func fillDuration(t *tabular.Table, src, msCol string) {
	if !t.Has(src) {
		return
	}
	ms := make([]null.Val[int64], t.Len())
	t.Each(func(r tabular.Row) {
		if v, ok := timing.ParseTime(r.String(src), false).Get(); ok {
			ms[r.Index()] = null.From(timing.SecondsToMs(v))
		}
	})
	fillInt64(t, msCol, ms)
}

// fillInt64 sets empty cells of col from values, adding col if needed
func fillInt64(t *tabular.Table, col string, values []null.Val[int64]) {
	t.AddColumn(col)
	idx := t.Index(col)
	for i := range t.Rows {
		if c := t.Rows[i][idx]; c != nil && c != "" {
			continue
		}
		if v, ok := values[i].Get(); ok {
			t.Rows[i][idx] = v
		} else {
			t.Rows[i][idx] = nil
		}
	}
}

func int64Column(t *tabular.Table, col string) []null.Val[int64] {
	ret := make([]null.Val[int64], t.Len())
	t.Each(func(r tabular.Row) {
		if v, ok := r.Int64(col); ok {
			ret[r.Index()] = null.From(v)
		}
	})
	return ret
}
