// Package upstream knows the paths and query parameters of the upstream endpoints.
package upstream

import (
	"context"
	"fmt"

	"github.com/mpapenbr/wrc-timing-go/pkg/fetch"
)

// Endpoint is a request against one of the upstream families
type Endpoint struct {
	Family fetch.Family
	Path   string
	Params fetch.Params
}

// results family

func Calendar(seasonID int64, championship string) Endpoint {
	return results("result/calendar", fetch.Params{}.
		Add("season", seasonID).
		Add("championship", championship))
}

func Stages(eventID, rallyID int64, championship string) Endpoint {
	return results("result/stages", fetch.Params{}.
		Add("eventId", eventID).
		Add("rallyId", rallyID).
		Add("championship", championship))
}

func Itinerary(eventID int64) Endpoint {
	return results("result/itinerary", fetch.Params{}.
		Add("eventId", eventID).
		Add("extended", true))
}

func StartLists(eventID int64) Endpoint {
	return results("result/startLists", fetch.Params{}.Add("eventId", eventID))
}

// StageRef holds the parameters common to the stage scoped results endpoints
type StageRef struct {
	Year           int
	EventID        int64
	RallyID        int64
	StageID        int64
	ChampionshipID int64
	Championship   string
}

func (s StageRef) params(withChampionshipID bool) fetch.Params {
	p := fetch.Params{}.
		Add("eventId", s.EventID).
		Add("rallyId", s.RallyID).
		Add("stageId", s.StageID)
	if withChampionshipID {
		p = p.Add("championshipId", s.ChampionshipID)
	}
	return p.Add("championship", s.Championship)
}

func StageResult(s StageRef) Endpoint {
	return results("result/stageResult", s.params(true))
}

func StageTimes(s StageRef) Endpoint {
	return results("result/stageTimes", s.params(true))
}

// lastLegacySplitYear is the last season using the old splitTime query
const lastLegacySplitYear = 2023

// SplitTime uses the legacy query (no championshipId) up to 2023
func SplitTime(s StageRef) Endpoint {
	return results("result/splitTime", s.params(s.Year > lastLegacySplitYear))
}

func StageWinners(eventID, championshipID int64) Endpoint {
	return results("result/stageWinners", fetch.Params{}.
		Add("eventId", eventID).
		Add("championshipId", championshipID))
}

func Penalty(eventID int64) Endpoint {
	return results("result/penalty", fetch.Params{}.Add("eventId", eventID))
}

func Retirements(eventID int64) Endpoint {
	return results("result/retirements", fetch.Params{}.Add("eventId", eventID))
}

// timing family

func Seasons() Endpoint {
	return timing("seasons.json", nil)
}

func SeasonDetail(seasonID int64) Endpoint {
	return timing("season-detail.json", fetch.Params{}.Add("seasonId", seasonID))
}

func Event(eventID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d.json", eventID), nil)
}

func Entries(eventID, rallyID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/rallies/%d/entries.json", eventID, rallyID), nil)
}

func EventStages(eventID, rallyID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/rallies/%d/stages.json", eventID, rallyID), nil)
}

func StageTimesJSON(eventID, rallyID, stageID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/stages/%d/stagetimes.json", eventID, stageID),
		fetch.Params{}.Add("rallyId", rallyID))
}

func SplitTimesJSON(eventID, rallyID, stageID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/stages/%d/splittimes.json", eventID, stageID),
		fetch.Params{}.Add("rallyId", rallyID))
}

func StageOverallJSON(eventID, rallyID, stageID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/stages/%d/results.json", eventID, stageID),
		fetch.Params{}.Add("rallyId", rallyID))
}

func ControlTimes(eventID, controlID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/controls/%d/controlTimes.json", eventID, controlID), nil)
}

func ItineraryJSON(eventID, itineraryID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/itineraries/%d.json", eventID, itineraryID), nil)
}

func StartListJSON(eventID, startListID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/startLists/%d.json", eventID, startListID), nil)
}

func StageWinnersJSON(eventID, rallyID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/rallies/%d/stagewinners.json", eventID, rallyID), nil)
}

func RetirementsJSON(eventID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/retirements.json", eventID), nil)
}

func PenaltiesJSON(eventID int64) Endpoint {
	return timing(fmt.Sprintf("events/%d/penalties.json", eventID), nil)
}

func ShakedownTimes(eventID, rallyID int64, shakedownNumber int) Endpoint {
	return timing(fmt.Sprintf("events/%d/rallies/%d/shakedowntimes.json", eventID, rallyID),
		fetch.Params{}.Add("shakedownNumber", shakedownNumber))
}

func ChampionshipJSON(championshipID int64) Endpoint {
	return timing(fmt.Sprintf("championships/%d.json", championshipID), nil)
}

func ChampionshipResults(championshipID int64) Endpoint {
	return timing(fmt.Sprintf("championships/%d/results.json", championshipID), nil)
}

func results(path string, p fetch.Params) Endpoint {
	return Endpoint{Family: fetch.Results, Path: path, Params: p}
}

func timing(path string, p fetch.Params) Endpoint {
	return Endpoint{Family: fetch.Timing, Path: path, Params: p}
}

// Fetcher is satisfied by *fetch.Fetcher
type Fetcher interface {
	Fetch(ctx context.Context, family fetch.Family, path string, params fetch.Params) (any, bool)
}

// Get fetches the endpoint
func Get(ctx context.Context, f Fetcher, e Endpoint) (any, bool) {
	return f.Fetch(ctx, e.Family, e.Path, e.Params)
}
