package query

import (
	"context"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

// SectionsRequest describes the split section view of a stage
type SectionsRequest struct {
	StageID  int64
	Priority string
	// RebaseRef is an entryId, timing.UltimateKey or empty (no rebasing)
	RebaseRef string
	// WithUltimate keeps the ULT row in the result
	WithUltimate bool
	// ReversePalette is passed through to the renderer
	ReversePalette bool
}

// SectionsView holds the section durations (seconds) of a stage.
// Pace, Speed and PaceDiff are nil if no distances are known.
type SectionsView struct {
	Durations      *tabular.Table
	Pace           *tabular.Table
	Speed          *tabular.Table
	PaceDiff       *tabular.Table
	Distances      []float64
	ReversePalette bool
}

// SplitSections computes the time spent between consecutive split points.
// The ULT row is added before rebasing and only kept if requested.
//
//nolint:funlen // sequential steps
func (q *Query) SplitSections(ctx context.Context, req SectionsRequest) (*SectionsView, error) {
	st, err := q.stage(ctx, req.StageID)
	if err != nil {
		return nil, err
	}
	infos, err := q.entries(ctx, st.EventID)
	if err != nil {
		return nil, err
	}
	points, err := q.store.SplitPoints(ctx, req.StageID)
	if err != nil {
		return nil, err
	}
	splits, err := q.store.SplitTimes(ctx, req.StageID)
	if err != nil {
		return nil, err
	}
	times, err := q.store.StageTimes(ctx, req.StageID)
	if err != nil {
		return nil, err
	}
	times = timing.RankStageTimes(keep(times, infos.accept(req.Priority),
		func(t model.StageTime) int64 { return t.EntryID }))

	durations := timing.SectionDurations(timing.CumulativeFromStore(points, splits, times))
	needULT := req.WithUltimate || req.RebaseRef == timing.UltimateKey
	if needULT {
		durations = timing.WithUltimate(durations)
	}

	view := &SectionsView{ReversePalette: req.ReversePalette}
	distances, ok := q.sectionDistances(ctx, &st, points, len(durations.Labels))
	if ok {
		view.Distances = distances
		view.Pace = decorate(timing.Pace(durations, distances), infos, req.WithUltimate)
		view.Speed = decorate(timing.Speed(durations, distances), infos, req.WithUltimate)
		if len(times) > 0 {
			if d := timing.PaceDiff(durations, distances, entryKey(times[0].EntryID)); d != nil {
				view.PaceDiff = decorate(d, infos, req.WithUltimate)
			}
		}
	}
	if req.RebaseRef != "" {
		durations = timing.Rebase(durations, req.RebaseRef)
	}
	view.Durations = decorate(durations, infos, req.WithUltimate)
	return view, nil
}

// decorate drops the ULT row unless requested and adds the entry columns
//
//nolint:whitespace // can't make both editor and linter happy
func decorate(
	g *timing.Grid, infos entryInfos, withULT bool,
) *tabular.Table {
	if !withULT {
		g = timing.WithoutUltimate(g)
	}
	t := g.Table("entryId")
	ret := tabular.New(append([]string{"entryId", "carNo", "driverName"}, g.Labels...)...)
	t.Each(func(r tabular.Row) {
		m := r.Map()
		carNo, driver := timing.UltimateKey, timing.UltimateKey
		if id, ok := r.Int64("entryId"); ok {
			m["entryId"] = id
			carNo, driver = infos[id].CarNo, infos[id].DriverName
		}
		m["carNo"] = carNo
		m["driverName"] = driver
		ret.AppendMap(m)
	})
	return ret
}

// sectionDistances prefers the split point distances of the store and falls
// back to the patches. The result is aligned to n sections.
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) sectionDistances(
	ctx context.Context, st *model.Stage, points []model.SplitPoint, n int,
) ([]float64, bool) {
	if st.Distance > 0 && lo.EveryBy(points, func(p model.SplitPoint) bool { return p.Distance > 0 }) {
		ordered := slices.Clone(points)
		slices.SortFunc(ordered, func(a, b model.SplitPoint) int { return a.Number - b.Number })
		cum := lo.Map(ordered, func(p model.SplitPoint, _ int) float64 { return p.Distance })
		cum = append(cum, st.Distance)
		if d := timing.SectionDistances(cum); len(d) == n {
			return d, true
		}
	}
	meta, ok, err := q.meta(ctx, st.StageID)
	if err != nil || !ok {
		return nil, false
	}
	d, ok := q.patches.SectionDistances(meta.Year, meta.RallyID, st.Code)
	if !ok {
		return nil, false
	}
	if len(d) != n {
		q.log.Warn("patch distances do not match splits",
			log.String("stage", st.Code), log.Int("sections", n), log.Int("distances", len(d)))
		return nil, false
	}
	return d, true
}
