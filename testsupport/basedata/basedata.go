// Package basedata seeds a small two-leg rally for tests.
//
//nolint:lll,mnd,funlen // test data
package basedata

import (
	"context"
	"testing"

	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
)

const (
	Year        = 2024
	SeasonID    = int64(40)
	EventID     = int64(1000)
	RallyID     = int64(2000)
	ItineraryID = int64(3000)
	StartListID = int64(7000)

	ChampionshipDriversWRC  = int64(300)
	ChampionshipDriversWRC2 = int64(301)

	StageSHD = int64(100)
	StageSS1 = int64(101)
	StageSS2 = int64(102)
	StageSS3 = int64(103)

	Entry11 = int64(11)
	Entry8  = int64(8)
	Entry21 = int64(21)
)

type seed struct {
	table string
	pk    []string
	t     *tabular.Table
}

func rows(cols []string, values ...[]any) *tabular.Table {
	t := tabular.New(cols...)
	for _, v := range values {
		t.Append(v...)
	}
	return t
}

// SampleRally returns the seed tables keyed by store table name
func SampleRally() []seed {
	return []seed{
		{"seasons", []string{"seasonId"}, rows([]string{"seasonId", "name", "year"},
			[]any{SeasonID, "2024", int64(Year)})},
		{"championships", []string{"championshipId"}, rows([]string{"championshipId", "seasonId", "name", "type"},
			[]any{ChampionshipDriversWRC, SeasonID, "FIA World Rally Championship for Drivers", "Person"},
			[]any{ChampionshipDriversWRC2, SeasonID, "WRC2 Championship for Drivers", "Person"},
			[]any{int64(302), SeasonID, "FIA World Rally Championship for Manufacturers", "Manufacturer"})},
		{"season_rounds", []string{"eventId"}, rows([]string{"eventId", "seasonId", "name", "country", "location", "startDate", "finishDate", "timeZoneId", "timeZoneOffset", "surfaces", "order"},
			[]any{EventID, SeasonID, "Rally Sampleland", "Portugal", "Matosinhos", "2024-05-09", "2024-05-12", "Europe/Lisbon", int64(60), "Gravel", int64(5)},
			[]any{int64(1001), SeasonID, "Rally Future", "Finland", "Jyväskylä", "2024-08-01", "2024-08-04", "Europe/Helsinki", int64(180), "Gravel", int64(8)})},
		{"event_rallies", []string{"rallyId"}, rows([]string{"rallyId", "eventId", "itineraryId", "name", "isMain"},
			[]any{RallyID, EventID, ItineraryID, "Rally Sampleland", true})},
		{"itinerary_legs", []string{"itineraryLegId"}, rows([]string{"itineraryLegId", "itineraryId", "startListId", "name", "legDate", "order", "status"},
			[]any{int64(3100), ItineraryID, StartListID, "Thursday", "2024-05-09", int64(0), "Completed"},
			[]any{int64(3101), ItineraryID, StartListID, "Friday", "2024-05-10", int64(1), "Completed"},
			[]any{int64(3102), ItineraryID, int64(7001), "Saturday", "2024-05-11", int64(2), "Completed"})},
		{"itinerary_sections", []string{"itinerarySectionId"}, rows([]string{"itinerarySectionId", "itineraryLegId", "name", "order"},
			[]any{int64(3200), int64(3100), "Section 0", int64(0)},
			[]any{int64(3201), int64(3101), "Section 1", int64(1)},
			[]any{int64(3202), int64(3101), "Section 2", int64(2)},
			[]any{int64(3203), int64(3102), "Section 3", int64(3)})},
		{"itinerary_controls", []string{"controlId"}, rows([]string{"controlId", "eventId", "stageId", "itinerarySectionId", "code", "type", "location", "distance", "status"},
			[]any{int64(9001), EventID, StageSS2, int64(3202), "TC2", "TimeControl", "Arrival SS2", 0.0, "Completed"},
			[]any{int64(9002), EventID, StageSS3, int64(3203), "TC3", "TimeControl", "Arrival SS3", 0.0, "Completed"})},
		{"stages", []string{"stageId"}, rows([]string{"stageId", "eventId", "itinerarySectionId", "code", "name", "number", "distance", "status", "stageType", "timingPrecision"},
			[]any{StageSHD, EventID, int64(3200), "SHD", "Shakedown", int64(0), 3.0, "Completed", "Shakedown", "Tenth"},
			[]any{StageSS1, EventID, int64(3201), "SS1", "Ponte", int64(1), 12.5, "Completed", "SpecialStage", "Tenth"},
			[]any{StageSS2, EventID, int64(3202), "SS2", "Lousada", int64(2), 8.0, "Completed", "SpecialStage", "Tenth"},
			[]any{StageSS3, EventID, int64(3203), "SS3", "Fafe", int64(3), 10.0, "Completed", "SpecialStage", "Tenth"})},
		{"split_points", []string{"splitPointId"}, rows([]string{"splitPointId", "stageId", "number", "distance"},
			[]any{int64(1011), StageSS1, int64(1), 3.4},
			[]any{int64(1012), StageSS1, int64(2), 8.1})},
		{"persons", []string{"personId"}, rows([]string{"personId", "fullName", "abbvName", "country"},
			[]any{int64(501), "Anna Alpha", "A. ALPHA", "FIN"},
			[]any{int64(502), "Bruno Bravo", "B. BRAVO", "BEL"},
			[]any{int64(503), "Carl Charlie", "C. CHARLIE", "EST"},
			[]any{int64(511), "Dan Delta", "D. DELTA", "FIN"},
			[]any{int64(512), "Eve Echo", "E. ECHO", "BEL"},
			[]any{int64(513), "Finn Foxtrot", "F. FOXTROT", "EST"})},
		{"manufacturers", []string{"manufacturerId"}, rows([]string{"manufacturerId", "name"},
			[]any{int64(601), "Toyota"},
			[]any{int64(602), "Hyundai"},
			[]any{int64(603), "Skoda"})},
		{"entrants", []string{"entrantId"}, rows([]string{"entrantId", "name"},
			[]any{int64(701), "Toyota Gazoo Racing WRT"},
			[]any{int64(702), "Hyundai Shell Mobis WRT"},
			[]any{int64(703), "Private"})},
		{"groups", []string{"groupId"}, rows([]string{"groupId", "name"},
			[]any{int64(801), "Rally1"},
			[]any{int64(802), "Rally2"})},
		{"entries", []string{"entryId"}, rows([]string{"entryId", "eventId", "rallyId", "driverId", "codriverId", "manufacturerId", "entrantId", "groupId", "identifier", "vehicleModel", "entryListOrder", "priority", "eligibility"},
			[]any{Entry11, EventID, RallyID, int64(501), int64(511), int64(601), int64(701), int64(801), "11", "GR Yaris Rally1", int64(1), "P1", "M"},
			[]any{Entry8, EventID, RallyID, int64(502), int64(512), int64(602), int64(702), int64(801), "8", "i20 N Rally1", int64(2), "P1", "M"},
			[]any{Entry21, EventID, RallyID, int64(503), int64(513), int64(603), int64(703), int64(802), "21", "Fabia RS Rally2", int64(3), "P2", ""})},
		{"startlists", []string{"startListId"}, rows([]string{"startListId", "eventId", "name"},
			[]any{StartListID, EventID, "Friday"},
			[]any{int64(7001), EventID, "Saturday"})},
		{"startlist_items", []string{"startListItemId"}, rows([]string{"startListItemId", "startListId", "entryId", "order", "startDateTimeLocal"},
			[]any{int64(7101), StartListID, Entry11, int64(1), "2024-05-10T08:05:00+01:00"},
			[]any{int64(7102), StartListID, Entry8, int64(2), "2024-05-10T08:07:00+01:00"},
			[]any{int64(7103), StartListID, Entry21, int64(3), "2024-05-10T08:09:00+01:00"},
			[]any{int64(7201), int64(7001), Entry8, int64(2), "2024-05-11T07:07:00+01:00"},
			[]any{int64(7202), int64(7001), Entry11, int64(1), "2024-05-11T07:05:00+01:00"})},
		{"stage_times", []string{"stageId", "entryId"}, rows([]string{"stageId", "entryId", "elapsedDurationMs", "position", "diffFirstMs", "diffPrevMs", "status"},
			[]any{StageSS1, Entry11, int64(292149), int64(1), int64(0), int64(0), "Completed"},
			[]any{StageSS1, Entry8, int64(295012), int64(2), int64(2863), int64(2863), "Completed"},
			[]any{StageSS1, Entry21, int64(305500), int64(3), int64(13351), int64(10488), "Completed"},
			[]any{StageSS2, Entry8, int64(298500), int64(1), int64(0), int64(0), "Completed"},
			[]any{StageSS2, Entry11, int64(300000), int64(2), int64(1500), int64(1500), "Completed"},
			[]any{StageSS2, Entry21, int64(310000), int64(3), int64(11500), int64(10000), "Completed"},
			[]any{StageSS3, Entry8, int64(355000), int64(1), int64(0), int64(0), "Completed"},
			[]any{StageSS3, Entry11, int64(360000), int64(2), int64(5000), int64(5000), "Completed"},
			[]any{StageSS3, Entry21, int64(370000), int64(3), int64(15000), int64(10000), "Completed"})},
		{"split_times", []string{"splitPointTimeId"}, rows([]string{"splitPointTimeId", "splitPointId", "stageId", "entryId", "elapsedDurationMs"},
			[]any{int64(1), int64(1011), StageSS1, Entry11, int64(135412)},
			[]any{int64(2), int64(1012), StageSS1, Entry11, int64(222149)},
			[]any{int64(3), int64(1011), StageSS1, Entry8, int64(136001)},
			[]any{int64(4), int64(1012), StageSS1, Entry8, int64(223349)},
			[]any{int64(5), int64(1011), StageSS1, Entry21, int64(140500)},
			[]any{int64(6), int64(1012), StageSS1, Entry21, int64(231000)})},
		{"stage_overall", []string{"stageId", "entryId"}, rows([]string{"stageId", "entryId", "position", "stageTimeMs", "totalTimeMs", "diffFirstMs", "diffPrevMs", "penaltyTimeMs"},
			[]any{StageSS1, Entry11, int64(1), int64(292149), int64(292149), int64(0), int64(0), int64(0)},
			[]any{StageSS1, Entry8, int64(2), int64(295012), int64(295012), int64(2863), int64(2863), int64(0)},
			[]any{StageSS1, Entry21, int64(3), int64(305500), int64(305500), int64(13351), int64(10488), int64(0)},
			[]any{StageSS2, Entry11, int64(1), int64(300000), int64(592149), int64(0), int64(0), int64(0)},
			[]any{StageSS2, Entry8, int64(2), int64(298500), int64(593512), int64(1363), int64(1363), int64(0)},
			[]any{StageSS2, Entry21, int64(3), int64(310000), int64(625500), int64(33351), int64(31988), int64(10000)},
			[]any{StageSS3, Entry8, int64(1), int64(355000), int64(948512), int64(0), int64(0), int64(0)},
			[]any{StageSS3, Entry11, int64(2), int64(360000), int64(952149), int64(3637), int64(3637), int64(0)},
			[]any{StageSS3, Entry21, int64(3), int64(370000), int64(995500), int64(46988), int64(43351), int64(10000)})},
		{"stage_winners", []string{"stageId", "entryId"}, rows([]string{"stageId", "entryId", "eventId", "elapsedDurationMs"},
			[]any{StageSS1, Entry11, EventID, int64(292149)},
			[]any{StageSS2, Entry8, EventID, int64(298500)},
			[]any{StageSS3, Entry8, EventID, int64(355000)})},
		{"penalties", []string{"penaltyId"}, rows([]string{"penaltyId", "eventId", "controlId", "entryId", "penaltyDurationMs", "reason"},
			[]any{int64(8801), EventID, int64(9001), Entry21, int64(10000), "1 min late at TC2"})},
		{"retirements", []string{"retirementId"}, rows([]string{"retirementId", "eventId", "controlId", "entryId", "reason", "retirementDateTime", "status"},
			[]any{int64(8901), EventID, int64(9002), Entry21, "Mechanical", "2024-05-11T16:00:00Z", "Temporary"})},
		{"shakedown_times", []string{"shakedownTimeId"}, rows([]string{"shakedownTimeId", "eventId", "entryId", "shakedownNumber", "runNumber", "runDurationMs"},
			[]any{int64(1), EventID, Entry11, int64(1), int64(1), int64(125300)},
			[]any{int64(2), EventID, Entry11, int64(1), int64(2), int64(123900)},
			[]any{int64(3), EventID, Entry8, int64(1), int64(1), int64(124400)})},
		{"championship_entries", []string{"championshipEntryId"}, rows([]string{"championshipEntryId", "championshipId", "personId", "manufacturerId", "firstName", "lastName"},
			[]any{int64(9501), ChampionshipDriversWRC, int64(502), int64(602), "Bruno", "Bravo"},
			[]any{int64(9502), ChampionshipDriversWRC, int64(501), int64(601), "Anna", "Alpha"})},
		{"championship_results", []string{"championshipEntryId", "eventId"}, rows([]string{"championshipEntryId", "eventId", "championshipId", "position", "totalPoints"},
			[]any{int64(9501), EventID, ChampionshipDriversWRC, int64(1), int64(25)},
			[]any{int64(9502), EventID, ChampionshipDriversWRC, int64(2), int64(18)},
			[]any{int64(9501), int64(999), ChampionshipDriversWRC, int64(2), int64(17)},
			[]any{int64(9502), int64(999), ChampionshipDriversWRC, int64(1), int64(25)})},
	}
}

// SeedSampleRally writes the sample rally into the store
func SeedSampleRally(t testing.TB, s *repository.Store) {
	t.Helper()
	ctx := context.Background()
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		for _, item := range SampleRally() {
			if _, err := s.Upsert(ctx, item.table, item.t, item.pk...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seedSampleRally: %v", err)
	}
}
