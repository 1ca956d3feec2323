package timing

import (
	"slices"
	"strconv"

	"github.com/aarondl/opt/null"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
)

// FinishLabel is the label of the stage finish column
const FinishLabel = "finish"

// SplitRows carries split strings as delivered by the results api.
// The first row is the leader with absolute values, the others are
// deltas to the leader.
type SplitRows struct {
	Keys   []string
	Splits [][]string
	// DiffFirst is the finish delta per row. For the leader it is either
	// empty or the absolute stage time.
	DiffFirst []string
	// StageTime holds absolute stage times. nil if the column is absent.
	StageTime []string
}

// Regularize converts split strings into absolute cumulative seconds.
// If finish information is available (DiffFirst or StageTime) a FinishLabel
// column is appended as N+1th cumulative.
func Regularize(in SplitRows, labels []string) *Grid {
	hasFinish := in.DiffFirst != nil || in.StageTime != nil
	cols := slices.Clone(labels)
	if hasFinish {
		cols = append(cols, FinishLabel)
	}
	g := NewGrid(cols...)
	if len(in.Keys) == 0 {
		return g
	}
	leader := make([]null.Val[float64], len(labels))
	for j := range labels {
		leader[j] = ParseTime(cellAt(in.Splits, 0, j), false)
	}
	leaderFinish := finishForLeader(in)

	for i, key := range in.Keys {
		row := make([]null.Val[float64], len(cols))
		for j := range labels {
			if i == 0 {
				row[j] = leader[j]
				continue
			}
			row[j] = addLeader(leader[j], ParseTime(cellAt(in.Splits, i, j), false))
		}
		if hasFinish {
			switch {
			case i == 0:
				row[len(labels)] = leaderFinish
			case stageTimeAt(in, i).IsValue():
				row[len(labels)] = stageTimeAt(in, i)
			default:
				row[len(labels)] = addLeader(leaderFinish,
					ParseTime(stringAt(in.DiffFirst, i), false))
			}
		}
		g.Add(key, row...)
	}
	return g
}

// leader's absolute finish: stageTime when present, otherwise diffFirst
// is assumed to carry the absolute value (or nothing)
func finishForLeader(in SplitRows) null.Val[float64] {
	if v := stageTimeAt(in, 0); v.IsValue() {
		return v
	}
	return ParseTime(stringAt(in.DiffFirst, 0), false)
}

func stageTimeAt(in SplitRows, i int) null.Val[float64] {
	return ParseTime(stringAt(in.StageTime, i), false)
}

func addLeader(leader, delta null.Val[float64]) null.Val[float64] {
	l, ok1 := leader.Get()
	d, ok2 := delta.Get()
	if !ok1 || !ok2 {
		return null.Val[float64]{}
	}
	return null.From(Round1(l + d))
}

func cellAt(rows [][]string, i, j int) string {
	if i >= len(rows) || j >= len(rows[i]) {
		return ""
	}
	return rows[i][j]
}

func stringAt(s []string, i int) string {
	if i >= len(s) {
		return ""
	}
	return s[i]
}

// RegularizeTable builds SplitRows from a normalized results table.
// diffFirstCol and stageTimeCol are optional, absent columns are ignored.
//
//nolint:whitespace // can't make both editor and linter happy
func RegularizeTable(
	t *tabular.Table, keyCol string, splitCols []string, diffFirstCol, stageTimeCol string,
) *Grid {
	in := SplitRows{
		Keys:   make([]string, 0, t.Len()),
		Splits: make([][]string, 0, t.Len()),
	}
	if t.Has(diffFirstCol) {
		in.DiffFirst = make([]string, 0, t.Len())
	}
	if t.Has(stageTimeCol) {
		in.StageTime = make([]string, 0, t.Len())
	}
	cols := make([]string, 0, len(splitCols))
	for _, c := range splitCols {
		if t.Has(c) {
			cols = append(cols, c)
		}
	}
	t.Each(func(r tabular.Row) {
		in.Keys = append(in.Keys, r.String(keyCol))
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = r.String(c)
		}
		in.Splits = append(in.Splits, row)
		if in.DiffFirst != nil {
			in.DiffFirst = append(in.DiffFirst, r.String(diffFirstCol))
		}
		if in.StageTime != nil {
			in.StageTime = append(in.StageTime, r.String(stageTimeCol))
		}
	})
	return Regularize(in, cols)
}

// SplitLabel is the column label for split point number n (1-based)
func SplitLabel(n int) string {
	return "split" + strconv.Itoa(n)
}

// CumulativeFromStore builds the cumulative grid from stored split times (ms).
// Split points are ordered by number, the stage time is appended as FinishLabel.
// Rows appear in the order of the stage times.
//
//nolint:whitespace // can't make both editor and linter happy
func CumulativeFromStore(
	points []model.SplitPoint, splits []model.SplitTime, stageTimes []model.StageTime,
) *Grid {
	ordered := slices.Clone(points)
	slices.SortFunc(ordered, func(a, b model.SplitPoint) int {
		return a.Number - b.Number
	})
	labels := make([]string, 0, len(ordered)+1)
	colByPoint := make(map[int64]int, len(ordered))
	for i, p := range ordered {
		labels = append(labels, SplitLabel(i+1))
		colByPoint[p.SplitPointID] = i
	}
	labels = append(labels, FinishLabel)

	byEntry := make(map[int64][]null.Val[float64])
	for _, st := range stageTimes {
		row := make([]null.Val[float64], len(labels))
		if ms, ok := st.ElapsedDurationMs.Get(); ok {
			row[len(labels)-1] = null.From(MsToSeconds(ms))
		}
		byEntry[st.EntryID] = row
	}
	for _, s := range splits {
		row, ok := byEntry[s.EntryID]
		if !ok {
			continue
		}
		col, ok := colByPoint[s.SplitPointID]
		if !ok {
			continue
		}
		if ms, ok := s.ElapsedDurationMs.Get(); ok {
			row[col] = null.From(MsToSeconds(ms))
		}
	}
	g := NewGrid(labels...)
	for _, st := range stageTimes {
		g.Add(strconv.FormatInt(st.EntryID, 10), byEntry[st.EntryID]...)
	}
	return g
}
