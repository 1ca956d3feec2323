//nolint:funlen,errcheck //ok for this test code
package repository_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/aarondl/opt/null"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/testsupport/basedata"
	"github.com/mpapenbr/wrc-timing-go/testsupport/testdb"
)

func stageRows() *tabular.Table {
	t := tabular.New("stageId", "eventId", "code", "distance", "status", "someNewField")
	t.Append(int64(1), int64(10), "SS1", 12.5, "Completed", "ignored")
	t.Append(int64(2), int64(10), "SS2", 8.0, "ToRun", "ignored")
	return t
}

func TestUpsert(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	n, err := s.Upsert(ctx, "stages", stageRows(), "stageId")
	assert.NilError(t, err)
	assert.Equal(t, n, 2)

	stages, err := s.Stages(ctx, 10)
	assert.NilError(t, err)
	assert.Equal(t, len(stages), 2)
	assert.Equal(t, stages[0].Code, "SS1")
	assert.Equal(t, stages[0].Distance, 12.5)
	assert.Equal(t, stages[1].Status, model.StageToRun)
}

func TestUpsertIdempotent(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "stages", stageRows(), "stageId")
	assert.NilError(t, err)
	first, err := s.Read(ctx, `SELECT * FROM stages ORDER BY "stageId"`)
	assert.NilError(t, err)

	_, err = s.Upsert(ctx, "stages", stageRows(), "stageId")
	assert.NilError(t, err)
	second, err := s.Read(ctx, `SELECT * FROM stages ORDER BY "stageId"`)
	assert.NilError(t, err)
	assert.DeepEqual(t, first.Rows, second.Rows)
	assert.DeepEqual(t, first.Columns, second.Columns)
}

func TestUpsertUpdatesDeliveredColumnsOnly(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "stages", stageRows(), "stageId")
	assert.NilError(t, err)

	update := tabular.New("stageId", "status")
	update.Append(int64(2), "Running")
	_, err = s.Upsert(ctx, "stages", update, "stageId")
	assert.NilError(t, err)

	st, ok, err := s.Stage(ctx, 2)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, st.Status, model.StageRunning)
	assert.Equal(t, st.Code, "SS2")
	assert.Equal(t, st.Distance, 8.0)
}

func TestUpsertCompositeKey(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	rows := tabular.New("stageId", "entryId", "elapsedDurationMs", "position")
	rows.Append(int64(1), int64(11), int64(100000), int64(1))
	rows.Append(int64(1), int64(8), int64(101000), int64(2))
	rows.Append(int64(2), int64(11), int64(90000), int64(1))
	_, err := s.Upsert(ctx, "stage_times", rows, "stageId", "entryId")
	assert.NilError(t, err)

	update := tabular.New("stageId", "entryId", "elapsedDurationMs", "position")
	update.Append(int64(1), int64(8), int64(99000), int64(1))
	update.Append(int64(1), int64(11), int64(100000), int64(2))
	_, err = s.Upsert(ctx, "stage_times", update, "stageId", "entryId")
	assert.NilError(t, err)

	times, err := s.StageTimes(ctx, 1)
	assert.NilError(t, err)
	assert.Equal(t, len(times), 2)
	assert.Equal(t, times[0].EntryID, int64(8))
	assert.Equal(t, times[0].ElapsedDurationMs, null.From(int64(99000)))

	all, err := s.Read(ctx, `SELECT COUNT(*) AS n FROM stage_times`)
	assert.NilError(t, err)
	assert.Equal(t, all.Value(0, "n"), any(int64(3)))
}

func TestUpsertWithoutPK(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	rows := tabular.New("personId", "fullName", "country")
	rows.Append(int64(1), "Anna Alpha", "FIN")
	_, err := s.Upsert(ctx, "persons", rows)
	assert.NilError(t, err)

	replace := tabular.New("personId", "fullName")
	replace.Append(int64(1), "Anna A.")
	_, err = s.Upsert(ctx, "persons", replace)
	assert.NilError(t, err)

	persons, err := s.Persons(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(persons), 1)
	assert.Equal(t, persons[0].FullName, "Anna A.")
	assert.Assert(t, persons[0].Country.IsNull(), "replaced as a whole")
}

func TestUpsertErrors(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "no_such_table", stageRows(), "stageId")
	assert.Assert(t, errors.Is(err, repository.ErrUnknownTable))

	_, err = s.Upsert(ctx, `stages"; DROP TABLE stages; --`, stageRows())
	assert.Assert(t, errors.Is(err, repository.ErrUnknownTable))

	noPK := tabular.New("eventId", "code")
	noPK.Append(int64(10), "SS1")
	_, err = s.Upsert(ctx, "stages", noPK, "stageId")
	assert.Assert(t, errors.Is(err, repository.ErrMissingPK))
}

func TestUpsertSkipsRowsWithoutKeyValue(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	rows := tabular.New("stageId", "eventId", "code")
	rows.Append(int64(1), int64(10), "SS1")
	rows.Append(nil, int64(10), "SS2")
	rows.Append("", int64(10), "SS3")
	n, err := s.Upsert(ctx, "stages", rows, "stageId")
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
}

func TestUpsertEmpty(t *testing.T) {
	s := testdb.InitTestDB(t)
	n, err := s.Upsert(context.Background(), "stages", tabular.Empty(), "stageId")
	assert.NilError(t, err)
	assert.Equal(t, n, 0)
}

func TestUpsertCellMapping(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	rows := tabular.New("rallyId", "eventId", "name", "isMain")
	rows.Append(int64(1), int64(10), "", true)
	rows.Append(int64(2), int64(10), map[string]any{"x": 1}, false)
	_, err := s.Upsert(ctx, "event_rallies", rows, "rallyId")
	assert.NilError(t, err)

	got, err := s.Read(ctx, `SELECT "rallyId", "name", "isMain" FROM event_rallies ORDER BY "rallyId"`)
	assert.NilError(t, err)
	assert.Equal(t, got.Len(), 2)
	assert.Equal(t, got.Value(0, "name"), nil)
	assert.Equal(t, got.Value(0, "isMain"), any(int64(1)))
	assert.Equal(t, got.Value(1, "name"), nil)
	assert.Equal(t, got.Value(1, "isMain"), any(int64(0)))

	rallies, err := s.Rallies(ctx, 10)
	assert.NilError(t, err)
	assert.Assert(t, rallies[0].IsMain)
}

func TestClearAndDelete(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()
	_, err := s.Upsert(ctx, "stages", stageRows(), "stageId")
	assert.NilError(t, err)

	n, err := s.DeleteWhere(ctx, "stages", "stageId", int64(2))
	assert.NilError(t, err)
	assert.Equal(t, n, int64(1))

	_, err = s.DeleteWhere(ctx, "stages", "bogus", 1)
	assert.ErrorContains(t, err, "unknown column")

	assert.NilError(t, s.Clear(ctx, "stages"))
	stages, err := s.Stages(ctx, 10)
	assert.NilError(t, err)
	assert.Equal(t, len(stages), 0)

	assert.Assert(t, errors.Is(s.Clear(ctx, "bogus"), repository.ErrUnknownTable))
}

func TestRunInTxRollback(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		assert.Assert(t, repository.InTx(ctx))
		if _, err := s.Upsert(ctx, "stages", stageRows(), "stageId"); err != nil {
			return err
		}
		// nested call joins the outer transaction
		return s.RunInTx(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	assert.Assert(t, errors.Is(err, boom))

	stages, err := s.Stages(ctx, 10)
	assert.NilError(t, err)
	assert.Equal(t, len(stages), 0)
	assert.Assert(t, !repository.InTx(ctx))
}

func TestTablesAndColumns(t *testing.T) {
	s := testdb.InitTestDB(t)
	ctx := context.Background()

	tables, err := s.Tables(ctx)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(tables, "stage_overall"))
	assert.Assert(t, is.Contains(tables, "championship_results"))
	assert.Assert(t, !slices.Contains(tables, "schema_migrations"))

	cols, err := s.Columns(ctx, "split_points")
	assert.NilError(t, err)
	assert.DeepEqual(t, cols, []string{"splitPointId", "stageId", "number", "distance"})
}

func TestTypedReads(t *testing.T) {
	s := testdb.InitTestDB(t)
	basedata.SeedSampleRally(t, s)
	ctx := context.Background()

	season, ok, err := s.SeasonByYear(ctx, basedata.Year)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, season.SeasonID, basedata.SeasonID)

	events, err := s.Events(ctx, basedata.SeasonID)
	assert.NilError(t, err)
	assert.Equal(t, len(events), 2)
	assert.Equal(t, events[0].EventID, basedata.EventID)

	ev, ok, err := s.Event(ctx, basedata.EventID)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, ev.TimeZoneID, null.From("Europe/Lisbon"))

	_, ok, err = s.Event(ctx, 424242)
	assert.NilError(t, err)
	assert.Assert(t, !ok)

	legs, err := s.Legs(ctx, basedata.ItineraryID)
	assert.NilError(t, err)
	assert.Equal(t, len(legs), 3)

	sections, err := s.Sections(ctx, basedata.ItineraryID)
	assert.NilError(t, err)
	assert.Equal(t, len(sections), 4)

	st, ok, err := s.StageByCode(ctx, basedata.EventID, "ss2")
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, st.StageID, basedata.StageSS2)

	sps, err := s.SplitPoints(ctx, basedata.StageSS1)
	assert.NilError(t, err)
	assert.Equal(t, len(sps), 2)
	assert.Equal(t, sps[1].Distance, 8.1)

	entries, err := s.Entries(ctx, basedata.EventID)
	assert.NilError(t, err)
	assert.Equal(t, len(entries), 3)

	overall, err := s.StageOverall(ctx, basedata.StageSS3)
	assert.NilError(t, err)
	assert.Equal(t, overall[0].EntryID, basedata.Entry8)

	winners, err := s.StageWinners(ctx, basedata.EventID)
	assert.NilError(t, err)
	assert.Equal(t, len(winners), 3)
	assert.Equal(t, winners[0].EntryID, basedata.Entry11)

	pens, err := s.Penalties(ctx, basedata.EventID)
	assert.NilError(t, err)
	assert.Equal(t, len(pens), 1)

	rets, err := s.Retirements(ctx, basedata.EventID)
	assert.NilError(t, err)
	assert.Equal(t, len(rets), 1)

	items, err := s.StartlistItems(ctx, basedata.StartListID)
	assert.NilError(t, err)
	assert.Equal(t, len(items), 3)
	assert.Equal(t, items[0].EntryID, basedata.Entry11)
}
