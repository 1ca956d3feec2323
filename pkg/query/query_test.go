package query_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/wrc-timing-go/pkg/patches"
	"github.com/mpapenbr/wrc-timing-go/pkg/query"
	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
	"github.com/mpapenbr/wrc-timing-go/testsupport/basedata"
	"github.com/mpapenbr/wrc-timing-go/testsupport/testdb"
)

func setup(t *testing.T, opts ...query.Option) (*query.Query, *repository.Store) {
	t.Helper()
	store := testdb.InitTestDB(t)
	basedata.SeedSampleRally(t, store)
	return query.New(store, opts...), store
}

func ids(vals ...int64) []any {
	ret := make([]any, len(vals))
	for i, v := range vals {
		ret[i] = v
	}
	return ret
}

func rowOf(t *testing.T, tbl *tabular.Table, col string, v any) tabular.Row {
	t.Helper()
	for i := range tbl.Len() {
		if tbl.Value(i, col) == v {
			return tbl.Row(i)
		}
	}
	t.Fatalf("no row with %s=%v", col, v)
	return tabular.Row{}
}

func TestNormalizePriority(t *testing.T) {
	assert.Equal(t, "", query.NormalizePriority(""))
	assert.Equal(t, "", query.NormalizePriority(" p0"))
	assert.Equal(t, "P2", query.NormalizePriority("p2"))
}

func TestStageInfos(t *testing.T) {
	q, _ := setup(t)
	infos, err := q.StageInfos(context.Background(), basedata.EventID)
	require.NoError(t, err)
	codes := make([]string, len(infos))
	for i, s := range infos {
		codes[i] = s.Code
	}
	assert.Equal(t, []string{"SHD", "SS1", "SS2", "SS3"}, codes)
	assert.Equal(t, int64(3101), infos[1].LegID)
	assert.Equal(t, 12.5, infos[1].Distance)
}

func TestStageTimesPretty(t *testing.T) {
	q, _ := setup(t)
	ctx := context.Background()

	res, err := q.StageTimesPretty(ctx, basedata.StageSS1, "")
	require.NoError(t, err)
	require.Equal(t, 3, res.Len())
	if diff := cmp.Diff(ids(11, 8, 21), res.Column("entryId")); diff != "" {
		t.Errorf("entry order mismatch (-want +got):\n%s", diff)
	}
	first := res.Row(0)
	assert.Equal(t, "Anna Alpha", first.String("driverName"))
	assert.Equal(t, "Dan Delta", first.String("codriverName"))
	assert.Equal(t, "Toyota", first.String("manufacturerName"))
	assert.Equal(t, "11", first.String("carNo"))
	assert.Equal(t, int64(292149), first.Get("elapsedMs"))
	assert.Equal(t, 23.4, first.Get("pace"))
	assert.Equal(t, 154.1, first.Get("speed"))
	assert.Equal(t, 0.0, first.Get("paceDiff"))
	assert.Equal(t, int64(1), first.Get("roadPos"))
	assert.Equal(t, int64(1), first.Get("categoryPosition"))

	third := res.Row(2)
	assert.Equal(t, int64(3), third.Get("position"))
	assert.Equal(t, int64(13351), third.Get("diffFirstMs"))
	assert.Equal(t, int64(10488), third.Get("diffPrevMs"))
}

func TestStageTimesPrettyFiltered(t *testing.T) {
	q, _ := setup(t)
	ctx := context.Background()

	res, err := q.StageTimesPretty(ctx, basedata.StageSS1, "P2")
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	r := res.Row(0)
	assert.Equal(t, int64(basedata.Entry21), r.Get("entryId"))
	assert.Equal(t, int64(3), r.Get("position"), "upstream position is kept")
	assert.Equal(t, int64(1), r.Get("categoryPosition"))
	assert.Equal(t, int64(0), r.Get("diffFirstMs"))

	res, err = q.StageTimesPretty(ctx, basedata.StageSS1, "P1")
	require.NoError(t, err)
	assert.Equal(t, ids(11, 8), res.Column("entryId"))
	assert.Equal(t, ids(1, 2), res.Column("categoryPosition"))

	// P0 is no filter
	res, err = q.StageTimesPretty(ctx, basedata.StageSS1, "P0")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Len())

	// road position follows the startlist of the day, 21 has no start on Saturday
	res, err = q.StageTimesPretty(ctx, basedata.StageSS3, "")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(1), nil}, res.Column("roadPos"))
}

func TestStageTimesPrettyUnknownStage(t *testing.T) {
	q, _ := setup(t)
	_, err := q.StageTimesPretty(context.Background(), 4711, "")
	assert.ErrorIs(t, err, query.ErrNotFound)
}

func TestSplitTimesPretty(t *testing.T) {
	q, _ := setup(t)
	res, err := q.SplitTimesPretty(context.Background(), basedata.StageSS1, "")
	require.NoError(t, err)
	require.Equal(t, 9, res.Len())
	assert.Equal(t, ids(1, 2, 3), res.Column("splitNumber")[:3])
	assert.Equal(t, ids(135412, 222149, 292149), res.Column("elapsedMs")[:3])
	assert.Equal(t, timing.FinishLabel, res.Row(2).String("split"))
	assert.Equal(t, 12.5, res.Row(2).Get("distance"))

	res, err = q.SplitTimesPretty(context.Background(), basedata.StageSS1, "P2")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Len())
}

func TestStageOverallPretty(t *testing.T) {
	q, _ := setup(t)
	ctx := context.Background()
	res, err := q.StageOverallPretty(ctx, basedata.StageSS3, "")
	require.NoError(t, err)
	assert.Equal(t, ids(8, 11, 21), res.Column("entryId"))
	assert.Equal(t, int64(10000), res.Row(2).Get("penaltyTimeMs"))

	res, err = q.StageOverallPretty(ctx, basedata.StageSS3, "P1")
	require.NoError(t, err)
	assert.Equal(t, ids(8, 11), res.Column("entryId"))
	assert.Equal(t, int64(3637), res.Row(1).Get("diffFirstMs"))
}

func TestSplitSections(t *testing.T) {
	q, _ := setup(t)
	ctx := context.Background()

	view, err := q.SplitSections(ctx, query.SectionsRequest{StageID: basedata.StageSS1})
	require.NoError(t, err)
	assert.Equal(t, []float64{3.4, 4.7, 4.4}, view.Distances)
	d := view.Durations
	assert.Equal(t, 3, d.Len())
	r := rowOf(t, d, "entryId", basedata.Entry8)
	assert.Equal(t, 136.0, r.Get("split1"))
	assert.Equal(t, 87.3, r.Get("split2"))
	assert.Equal(t, 71.7, r.Get(timing.FinishLabel))
	require.NotNil(t, view.Pace)
	assert.Equal(t, 39.8, rowOf(t, view.Pace, "entryId", basedata.Entry11).Get("split1"))
	require.NotNil(t, view.PaceDiff)
	assert.Equal(t, 0.0, rowOf(t, view.PaceDiff, "entryId", basedata.Entry11).Get("split1"))
}

func TestSplitSectionsUltimate(t *testing.T) {
	q, _ := setup(t)
	ctx := context.Background()

	view, err := q.SplitSections(ctx, query.SectionsRequest{
		StageID: basedata.StageSS1, WithUltimate: true, ReversePalette: true,
	})
	require.NoError(t, err)
	assert.True(t, view.ReversePalette)
	d := view.Durations
	require.Equal(t, 4, d.Len())
	ult := rowOf(t, d, "entryId", timing.UltimateKey)
	assert.Equal(t, timing.UltimateKey, ult.String("carNo"))
	for _, col := range []string{"split1", "split2", timing.FinishLabel} {
		best, _ := ult.Float64(col)
		for i := range d.Len() {
			v, ok := d.Row(i).Float64(col)
			require.True(t, ok)
			assert.LessOrEqual(t, best, v, col)
		}
	}

	// ULT as reference is temporary unless requested
	view, err = q.SplitSections(ctx, query.SectionsRequest{
		StageID: basedata.StageSS1, RebaseRef: timing.UltimateKey,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, view.Durations.Len())
	r := rowOf(t, view.Durations, "entryId", basedata.Entry21)
	v, _ := r.Float64("split1")
	assert.InDelta(t, 5.1, v, 1e-9)
}

func TestSplitSectionsRebase(t *testing.T) {
	q, _ := setup(t)
	view, err := q.SplitSections(context.Background(), query.SectionsRequest{
		StageID: basedata.StageSS1, RebaseRef: "8",
	})
	require.NoError(t, err)
	r := rowOf(t, view.Durations, "entryId", basedata.Entry8)
	assert.Equal(t, 0.0, r.Get("split1"))
	r = rowOf(t, view.Durations, "entryId", basedata.Entry11)
	v, _ := r.Float64(timing.FinishLabel)
	assert.InDelta(t, -1.7, v, 1e-9)
}

func TestSplitSectionsPatchDistances(t *testing.T) {
	ctx := context.Background()
	p := patches.Empty()
	p.SetSplitDistances(basedata.Year, basedata.RallyID, "SS2", []float64{3.0, 8.0})
	q, store := setup(t, query.WithPatches(p))

	// SS2 gets a split point without distance
	points := tabular.New("splitPointId", "stageId", "number", "distance")
	points.Append(int64(1021), basedata.StageSS2, int64(1), 0.0)
	_, err := store.Upsert(ctx, "split_points", points, "splitPointId")
	require.NoError(t, err)

	view, err := q.SplitSections(ctx, query.SectionsRequest{StageID: basedata.StageSS2})
	require.NoError(t, err)
	assert.Equal(t, []float64{3.0, 5.0}, view.Distances)

	// without patches there are no pace values
	view, err = query.New(store).SplitSections(ctx, query.SectionsRequest{StageID: basedata.StageSS2})
	require.NoError(t, err)
	assert.Nil(t, view.Pace)
	assert.Nil(t, view.Distances)
	assert.Equal(t, 3, view.Durations.Len())
}

func TestStartlistPretty(t *testing.T) {
	q, store := setup(t)
	ctx := context.Background()

	res, err := q.StartlistPretty(ctx, basedata.EventID, 0)
	require.NoError(t, err)
	require.Equal(t, 5, res.Len())
	assert.Equal(t, "Friday", res.Row(0).String("startList"))
	assert.Equal(t, "Saturday", res.Row(3).String("startList"))

	res, err = q.StartlistPretty(ctx, basedata.EventID, 7001)
	require.NoError(t, err)
	assert.Equal(t, ids(11, 8), res.Column("entryId"))
	assert.Equal(t, ids(1, 2), res.Column("order"))

	require.NoError(t, store.Clear(ctx, "startlist_items"))
	res, err = q.StartlistPretty(ctx, basedata.EventID, 0)
	require.NoError(t, err)
	assert.Equal(t, ids(11, 8, 21), res.Column("entryId"))
	assert.Equal(t, query.EntryListName, res.Row(0).String("startList"))
}

func TestStageWinnersPretty(t *testing.T) {
	q, _ := setup(t)
	res, err := q.StageWinnersPretty(context.Background(), basedata.EventID)
	require.NoError(t, err)
	require.Equal(t, 3, res.Len())
	assert.Equal(t, []any{"SS1", "SS2", "SS3"}, res.Column("code"))
	assert.Equal(t, ids(11, 8, 8), res.Column("entryId"))
	assert.Equal(t, ids(1, 1, 2), res.Column("winsOverall"))
	assert.Equal(t, ids(1, 1, 1), res.Column("dailyWins"))
}

func TestStageWinnersDerived(t *testing.T) {
	q, store := setup(t)
	ctx := context.Background()
	require.NoError(t, store.Clear(ctx, "stage_winners"))
	res, err := q.StageWinnersPretty(ctx, basedata.EventID)
	require.NoError(t, err)
	assert.Equal(t, ids(11, 8, 8), res.Column("entryId"))
}

func TestPositionTrace(t *testing.T) {
	q, _ := setup(t)
	ctx := context.Background()
	res, err := q.PositionTrace(ctx, basedata.EventID, "")
	require.NoError(t, err)
	assert.Equal(t, 9, res.Len())
	last := res.Filter(func(r tabular.Row) bool { return r.String("code") == "SS3" })
	assert.Equal(t, ids(8, 11, 21), last.Column("entryId"))
	assert.Equal(t, ids(3, 3, 3), last.Column("stageIndex"))

	res, err = q.PositionTrace(ctx, basedata.EventID, "P2")
	require.NoError(t, err)
	assert.Equal(t, ids(1, 1, 1), res.Column("position"))
}

func TestOverallChanges(t *testing.T) {
	q, _ := setup(t)
	ctx := context.Background()

	res, err := q.OverallChanges(ctx, basedata.StageSS3, "")
	require.NoError(t, err)
	require.Equal(t, 2, res.Len())
	assert.Equal(t, "newLeader", res.Row(0).String("rule"))
	assert.Equal(t, int64(basedata.Entry8), res.Row(0).Get("entryId"))
	assert.Equal(t, "moved into first place overall, 3.6s ahead", res.Row(0).String("remark"))
	assert.Equal(t, "lostLead", res.Row(1).String("rule"))
	assert.Equal(t, "lost the lead, now P2 3.6s behind", res.Row(1).String("remark"))

	res, err = q.OverallChanges(ctx, basedata.StageSS2, "")
	require.NoError(t, err)
	assert.Contains(t, res.Column("rule"), "leadReduced")

	res, err = q.OverallChanges(ctx, basedata.StageSHD, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
}

func TestPenaltiesAndRetirements(t *testing.T) {
	q, _ := setup(t)
	ctx := context.Background()

	res, err := q.PenaltiesPretty(ctx, basedata.EventID)
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, "TC2", res.Row(0).String("control"))
	assert.Equal(t, 10.0, res.Row(0).Get("penaltyS"))
	assert.Equal(t, "21", res.Row(0).String("carNo"))

	res, err = q.RetirementsPretty(ctx, basedata.EventID)
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, "TC3", res.Row(0).String("control"))
	assert.Equal(t, "Mechanical", res.Row(0).String("reason"))
}

func TestShakedownPretty(t *testing.T) {
	q, _ := setup(t)
	res, err := q.ShakedownPretty(context.Background(), basedata.EventID, "")
	require.NoError(t, err)
	assert.Equal(t, ids(11, 8), res.Column("entryId"))
	assert.Equal(t, ids(2, 1), res.Column("runs"))
	assert.Equal(t, ids(123900, 124400), res.Column("bestRunMs"))
	assert.Equal(t, ids(0, 500), res.Column("diffFirstMs"))
	assert.Equal(t, ids(1, 2), res.Column("position"))
}

func TestChampionshipStandings(t *testing.T) {
	q, _ := setup(t)
	res, err := q.ChampionshipStandings(context.Background(), basedata.ChampionshipDriversWRC)
	require.NoError(t, err)
	assert.Equal(t, ids(9502, 9501), res.Column("championshipEntryId"))
	assert.Equal(t, []any{"Anna Alpha", "Bruno Bravo"}, res.Column("name"))
	assert.Equal(t, ids(43, 42), res.Column("points"))
	assert.Equal(t, ids(2, 2), res.Column("rounds"))
	assert.Equal(t, ids(1, 2), res.Column("position"))
}
