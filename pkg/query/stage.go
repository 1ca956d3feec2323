package query

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/aarondl/opt/null"
	"github.com/samber/lo"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

var stageTimesColumns = []string{
	"entryId", "carNo", "driverName", "codriverName", "manufacturerName",
	"position", "elapsedMs", "diffFirstMs", "diffPrevMs",
	"pace", "speed", "paceDiff", "roadPos", "categoryPosition",
}

var paceColumns = []string{"pace", "speed", "paceDiff"}

// StageTimesPretty lists the stage result enriched with entry data.
// With a priority filter the diffs are recomputed within the category while
// position keeps the upstream value. Pace columns are omitted when the stage
// has no distance.
//
//nolint:funlen,whitespace // many columns
func (q *Query) StageTimesPretty(
	ctx context.Context, stageID int64, priority string,
) (*tabular.Table, error) {
	st, err := q.stage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	infos, err := q.entries(ctx, st.EventID)
	if err != nil {
		return nil, err
	}
	times, err := q.store.StageTimes(ctx, stageID)
	if err != nil {
		return nil, err
	}
	road, err := q.roadPositions(ctx, stageID)
	if err != nil {
		return nil, err
	}
	filtered := NormalizePriority(priority) != ""
	ranked := timing.RankStageTimes(keep(times, infos.accept(priority),
		func(t model.StageTime) int64 { return t.EntryID }))
	upstream := lo.SliceToMap(times, func(t model.StageTime) (int64, model.StageTime) {
		return t.EntryID, t
	})

	var winnerPace null.Val[float64]
	if len(ranked) > 0 {
		if ms, ok := ranked[0].ElapsedDurationMs.Get(); ok {
			winnerPace = timing.PaceSPerKm(timing.MsToSeconds(ms), st.Distance)
		}
	}

	out := tabular.New(stageTimesColumns...)
	for _, r := range ranked {
		orig := upstream[r.EntryID]
		info := infos[r.EntryID]
		var pace, speed null.Val[float64]
		if ms, ok := r.ElapsedDurationMs.Get(); ok {
			secs := timing.MsToSeconds(ms)
			pace = timing.PaceSPerKm(secs, st.Distance)
			speed = timing.SpeedKmh(secs, st.Distance)
		}
		diffFirst, diffPrev := orig.DiffFirstMs, orig.DiffPrevMs
		if filtered {
			diffFirst, diffPrev = r.DiffFirstMs, r.DiffPrevMs
		}
		var roadPos any
		if v, ok := road[r.EntryID]; ok {
			roadPos = v
		}
		out.Append(
			r.EntryID, info.CarNo, info.DriverName, info.CodriverName, info.ManufacturerName,
			cell(orig.Position), cell(r.ElapsedDurationMs), cell(diffFirst), cell(diffPrev),
			cell(pace), cell(speed), cell(diff(pace, winnerPace)), roadPos, cell(r.Position),
		)
	}
	if st.Distance <= 0 {
		return without(out, paceColumns...), nil
	}
	return out, nil
}

// SplitTimesPretty returns the cumulative split times in long form, one row
// per entry and split. The finish is reported as the last split number.
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) SplitTimesPretty(
	ctx context.Context, stageID int64, priority string,
) (*tabular.Table, error) {
	st, err := q.stage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	infos, err := q.entries(ctx, st.EventID)
	if err != nil {
		return nil, err
	}
	points, err := q.store.SplitPoints(ctx, stageID)
	if err != nil {
		return nil, err
	}
	splits, err := q.store.SplitTimes(ctx, stageID)
	if err != nil {
		return nil, err
	}
	times, err := q.store.StageTimes(ctx, stageID)
	if err != nil {
		return nil, err
	}
	times = keep(times, infos.accept(priority), func(t model.StageTime) int64 { return t.EntryID })

	slices.SortFunc(points, func(a, b model.SplitPoint) int { return cmp.Compare(a.Number, b.Number) })
	type key struct{ entry, point int64 }
	byKey := lo.SliceToMap(splits, func(s model.SplitTime) (key, null.Val[int64]) {
		return key{s.EntryID, s.SplitPointID}, s.ElapsedDurationMs
	})

	out := tabular.New("entryId", "carNo", "driverName", "splitNumber", "split", "distance", "elapsedMs")
	for _, t := range times {
		info := infos[t.EntryID]
		for i, p := range points {
			out.Append(t.EntryID, info.CarNo, info.DriverName, int64(i+1),
				timing.SplitLabel(i+1), p.Distance, cell(byKey[key{t.EntryID, p.SplitPointID}]))
		}
		out.Append(t.EntryID, info.CarNo, info.DriverName, int64(len(points)+1),
			timing.FinishLabel, st.Distance, cell(t.ElapsedDurationMs))
	}
	return out, nil
}

var stageOverallColumns = []string{
	"entryId", "carNo", "driverName", "codriverName", "manufacturerName",
	"position", "stageTimeMs", "penaltyTimeMs", "totalTimeMs", "diffFirstMs", "diffPrevMs",
	"categoryPosition",
}

// StageOverallPretty lists the overall standings after the stage
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) StageOverallPretty(
	ctx context.Context, stageID int64, priority string,
) (*tabular.Table, error) {
	st, err := q.stage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	infos, err := q.entries(ctx, st.EventID)
	if err != nil {
		return nil, err
	}
	rows, err := q.overall(ctx, stageID, infos, priority)
	if err != nil {
		return nil, err
	}
	upstream, err := q.store.StageOverall(ctx, stageID)
	if err != nil {
		return nil, err
	}
	byEntry := lo.SliceToMap(upstream, func(o model.StageOverall) (int64, model.StageOverall) {
		return o.EntryID, o
	})
	filtered := NormalizePriority(priority) != ""
	out := tabular.New(stageOverallColumns...)
	for _, r := range rows {
		orig := byEntry[r.EntryID]
		info := infos[r.EntryID]
		diffFirst, diffPrev := orig.DiffFirstMs, orig.DiffPrevMs
		if filtered {
			diffFirst, diffPrev = r.DiffFirstMs, r.DiffPrevMs
		}
		out.Append(
			r.EntryID, info.CarNo, info.DriverName, info.CodriverName, info.ManufacturerName,
			cell(orig.Position), cell(r.StageTimeMs), cell(r.PenaltyTimeMs), cell(r.TotalTimeMs),
			cell(diffFirst), cell(diffPrev), cell(r.Position),
		)
	}
	return out, nil
}

// overall returns the (category) ranked standings after the stage.
// Without filter the upstream ranking is kept.
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) overall(
	ctx context.Context, stageID int64, infos entryInfos, priority string,
) ([]model.StageOverall, error) {
	rows, err := q.store.StageOverall(ctx, stageID)
	if err != nil {
		return nil, err
	}
	accept := infos.accept(priority)
	if accept == nil {
		return rows, nil
	}
	return timing.RankOverall(keep(rows, accept,
		func(o model.StageOverall) int64 { return o.EntryID })), nil
}

func entryKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
