package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/wrc-timing-go/pkg/fetch"
)

func TestSplitTimeQueryOrder(t *testing.T) {
	ref := StageRef{EventID: 1, RallyID: 2, StageID: 3, ChampionshipID: 4, Championship: "wrc"}
	tests := []struct {
		name string
		year int
		want string
	}{
		{"legacy", 2023, "eventId=1&rallyId=2&stageId=3&championship=wrc"},
		{"current", 2024, "eventId=1&rallyId=2&stageId=3&championshipId=4&championship=wrc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref.Year = tt.year
			e := SplitTime(ref)
			assert.Equal(t, fetch.Results, e.Family)
			assert.Equal(t, "result/splitTime", e.Path)
			assert.Equal(t, tt.want, e.Params.Encode())
		})
	}
}

func TestTimingPaths(t *testing.T) {
	f, _ := fetch.New(fetch.Config{TimingURL: "https://t/api/", ResultsURL: "https://r/"})
	tests := []struct {
		e    Endpoint
		want string
	}{
		{Seasons(), "https://t/api/seasons.json"},
		{SeasonDetail(20), "https://t/api/season-detail.json?seasonId=20"},
		{StageTimesJSON(1, 2, 3), "https://t/api/events/1/stages/3/stagetimes.json?rallyId=2"},
		{ShakedownTimes(1, 2, 1), "https://t/api/events/1/rallies/2/shakedowntimes.json?shakedownNumber=1"},
		{ChampionshipResults(7), "https://t/api/championships/7/results.json"},
		{Calendar(20, "wrc"), "https://r/result/calendar?season=20&championship=wrc"},
		{Itinerary(5), "https://r/result/itinerary?eventId=5&extended=true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.URL(tt.e.Family, tt.e.Path, tt.e.Params))
	}
}
