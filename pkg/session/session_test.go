package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/wrc-timing-go/pkg/ingest"
	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/session"
	"github.com/mpapenbr/wrc-timing-go/testsupport/basedata"
	"github.com/mpapenbr/wrc-timing-go/testsupport/testdb"
)

type fakeSeeder struct {
	seasons int
	season  []int64
	events  []int64
}

func (f *fakeSeeder) Seasons(context.Context) (ingest.Counts, error) {
	f.seasons++
	return ingest.Counts{}, nil
}

func (f *fakeSeeder) Season(_ context.Context, id int64) (ingest.Counts, error) {
	f.season = append(f.season, id)
	return ingest.Counts{}, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (f *fakeSeeder) Event(
	_ context.Context, id int64,
) (ingest.EventRef, ingest.Counts, error) {
	f.events = append(f.events, id)
	return ingest.EventRef{EventID: id, RallyID: basedata.RallyID, ItineraryID: basedata.ItineraryID}, nil, nil
}

func clock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 12, 0, 0, 0, time.UTC) }
}

func TestSetSeason(t *testing.T) {
	store := testdb.InitTestDB(t)
	basedata.SeedSampleRally(t, store)
	ctx := context.Background()
	seeder := &fakeSeeder{}
	s := session.New(store, session.WithSeeder(seeder))

	require.NoError(t, s.SetSeason(ctx, basedata.Year))
	assert.Equal(t, basedata.SeasonID, s.State().SeasonID)
	assert.Equal(t, 0, seeder.seasons, "season already known")
	assert.Equal(t, []int64{basedata.SeasonID}, seeder.season)

	id, ok := s.Lookup().Drivers(basedata.Year, model.CategoryWRC)
	require.True(t, ok)
	assert.Equal(t, basedata.ChampionshipDriversWRC, id)
	id, ok = s.Lookup().Drivers(basedata.Year, model.CategoryWRC2)
	require.True(t, ok)
	assert.Equal(t, basedata.ChampionshipDriversWRC2, id)

	err := s.SetSeason(ctx, 2019)
	assert.ErrorIs(t, err, session.ErrNoSeason)
	assert.Equal(t, 1, seeder.seasons)
}

func TestSetSeasonResetsSelection(t *testing.T) {
	store := testdb.InitTestDB(t)
	basedata.SeedSampleRally(t, store)
	ctx := context.Background()
	s := session.New(store)
	require.NoError(t, s.SetSeason(ctx, basedata.Year))
	require.NoError(t, s.SetEvent(ctx, basedata.EventID))
	s.SetStage("SS1")
	_, err := s.Stage(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetSeason(ctx, basedata.Year))
	st := s.State()
	assert.Zero(t, st.EventID)
	assert.Zero(t, st.RallyID)
	assert.Zero(t, st.StageID)
	_, err = s.Stage(ctx)
	assert.ErrorIs(t, err, session.ErrUnknownStage)
}

func TestCurrentEvent(t *testing.T) {
	store := testdb.InitTestDB(t)
	basedata.SeedSampleRally(t, store)
	ctx := context.Background()

	tests := []struct {
		name string
		now  func() time.Time
		want int64
		ok   bool
	}{
		{"before season", clock(2024, 1, 1), 0, false},
		{"during first", clock(2024, 5, 10), basedata.EventID, true},
		{"between", clock(2024, 6, 1), basedata.EventID, true},
		{"second started", clock(2024, 8, 2), 1001, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.New(store, session.WithClock(tt.now))
			_, _, err := s.CurrentEvent(ctx)
			require.ErrorIs(t, err, session.ErrNoSeason)
			require.NoError(t, s.SetSeason(ctx, basedata.Year))
			ev, ok, err := s.CurrentEvent(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, ev.EventID)
		})
	}
}

func TestUseCurrentEventAndLive(t *testing.T) {
	store := testdb.InitTestDB(t)
	basedata.SeedSampleRally(t, store)
	ctx := context.Background()
	now := clock(2024, 5, 10)
	s := session.New(store, session.WithClock(now))

	_, err := s.IsLive(ctx)
	assert.ErrorIs(t, err, session.ErrNoEvent)

	require.NoError(t, s.SetSeason(ctx, basedata.Year))
	require.NoError(t, s.UseCurrentEvent(ctx))
	st := s.State()
	assert.Equal(t, basedata.EventID, st.EventID)
	assert.Equal(t, basedata.RallyID, st.RallyID)
	assert.Equal(t, basedata.ItineraryID, st.ItineraryID)

	live, err := s.IsLive(ctx)
	require.NoError(t, err)
	assert.True(t, live)

	later := session.New(store, session.WithClock(clock(2024, 6, 1)))
	require.NoError(t, later.SetSeason(ctx, basedata.Year))
	require.NoError(t, later.UseCurrentEvent(ctx))
	live, err = later.IsLive(ctx)
	require.NoError(t, err)
	assert.False(t, live)
}

func TestSetEventWithSeeder(t *testing.T) {
	store := testdb.InitTestDB(t)
	ctx := context.Background()
	seeder := &fakeSeeder{}
	s := session.New(store, session.WithSeeder(seeder))

	require.NoError(t, s.SetEvent(ctx, basedata.EventID))
	require.NoError(t, s.SetEvent(ctx, basedata.EventID))
	assert.Equal(t, []int64{basedata.EventID}, seeder.events, "same event is not seeded twice")
	assert.Equal(t, basedata.RallyID, s.State().RallyID)
}

func TestSetEventWithoutRally(t *testing.T) {
	store := testdb.InitTestDB(t)
	s := session.New(store)
	err := s.SetEvent(context.Background(), 4711)
	assert.ErrorIs(t, err, session.ErrNoEvent)
}

func TestStageSelection(t *testing.T) {
	store := testdb.InitTestDB(t)
	basedata.SeedSampleRally(t, store)
	ctx := context.Background()
	s := session.New(store)

	s.SetStage("SS2")
	_, err := s.Stage(ctx)
	assert.ErrorIs(t, err, session.ErrNoEvent, "codes need an event")

	require.NoError(t, s.SetSeason(ctx, basedata.Year))
	require.NoError(t, s.SetEvent(ctx, basedata.EventID))

	s.SetStage("ss2")
	st, err := s.Stage(ctx)
	require.NoError(t, err)
	assert.Equal(t, basedata.StageSS2, st.StageID)
	assert.Equal(t, "SS2", s.State().StageCode)

	s.SetStageID(basedata.StageSS3)
	st, err = s.Stage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SS3", st.Code)
	assert.Equal(t, basedata.StageSS3, s.State().StageID)

	s.SetStage("SHD")
	st, err = s.Stage(ctx)
	require.NoError(t, err)
	assert.True(t, st.IsShakedown())

	s.SetStage("SS9")
	_, err = s.Stage(ctx)
	assert.ErrorIs(t, err, session.ErrUnknownStage)
}

func TestCategoryAndStageRef(t *testing.T) {
	store := testdb.InitTestDB(t)
	basedata.SeedSampleRally(t, store)
	ctx := context.Background()
	s := session.New(store)

	assert.Equal(t, "", s.Priority())
	s.SetCategory("p1")
	assert.Equal(t, "P1", s.Priority())
	s.SetCategory("P0")
	assert.Equal(t, "", s.Priority())
	s.SetCategory("")
	assert.Equal(t, session.NoCategory, s.State().Category)

	require.NoError(t, s.SetSeason(ctx, basedata.Year))
	require.NoError(t, s.SetEvent(ctx, basedata.EventID))
	s.SetStage("SS1")
	ref, err := s.StageRef(ctx)
	require.NoError(t, err)
	assert.Equal(t, basedata.Year, ref.Year)
	assert.Equal(t, basedata.StageSS1, ref.StageID)
	assert.Equal(t, basedata.RallyID, ref.RallyID)
	assert.Equal(t, basedata.ChampionshipDriversWRC, ref.ChampionshipID)
	assert.Equal(t, "wrc", ref.Championship)

	s.SetChampionship(model.CategoryWRC2)
	ref, err = s.StageRef(ctx)
	require.NoError(t, err)
	assert.Equal(t, basedata.ChampionshipDriversWRC2, ref.ChampionshipID)

	base := s.EventRef()
	assert.Equal(t, int64(0), base.StageID)
	assert.Equal(t, basedata.EventID, base.EventID)
	assert.Equal(t, basedata.ChampionshipDriversWRC2, base.ChampionshipID)
}
