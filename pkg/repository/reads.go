//nolint:lll // sql readability
package repository

import (
	"context"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
)

// typed reads of the stored entities. Non-nullable model fields are
// coalesced so partially delivered upstream rows can still be mapped.

const (
	seasonCols       = `"seasonId", COALESCE("name",'') AS "name", COALESCE("year",0) AS "year"`
	championshipCols = `"championshipId", COALESCE("name",'') AS "name", COALESCE("seasonId",0) AS "seasonId", COALESCE("type",'') AS "type"`
	eventCols        = `"eventId", COALESCE("seasonId",0) AS "seasonId", COALESCE("name",'') AS "name", "country", "location",
		COALESCE("startDate",'') AS "startDate", COALESCE("finishDate",'') AS "finishDate", "timeZoneId", "timeZoneOffset", "surfaces", COALESCE("order",0) AS "order"`
	rallyCols   = `"rallyId", COALESCE("eventId",0) AS "eventId", COALESCE("itineraryId",0) AS "itineraryId", COALESCE("isMain",0) AS "isMain"`
	legCols     = `"itineraryLegId", COALESCE("itineraryId",0) AS "itineraryId", "startListId", COALESCE("name",'') AS "name", "legDate", COALESCE("order",0) AS "order", "status"`
	sectionCols = `"itinerarySectionId", COALESCE("itineraryLegId",0) AS "itineraryLegId", COALESCE("name",'') AS "name", COALESCE("order",0) AS "order"`
	controlCols = `"controlId", COALESCE("eventId",0) AS "eventId", "stageId", "itinerarySectionId", COALESCE("code",'') AS "code", COALESCE("type",'') AS "type",
		"location", "distance", "firstCarDueDateTime", "targetDuration", "status"`
	stageCols = `"stageId", COALESCE("eventId",0) AS "eventId", "itinerarySectionId", COALESCE("code",'') AS "code", COALESCE("name",'') AS "name",
		COALESCE("number",0) AS "number", COALESCE("distance",0) AS "distance", COALESCE("status",'') AS "status", "stageType", "timingPrecision"`
	splitPointCols = `"splitPointId", COALESCE("stageId",0) AS "stageId", COALESCE("number",0) AS "number", COALESCE("distance",0) AS "distance"`
	entryCols      = `"entryId", COALESCE("eventId",0) AS "eventId", COALESCE("rallyId",0) AS "rallyId", "driverId", "codriverId", "manufacturerId", "entrantId", "groupId",
		COALESCE("identifier",'') AS "identifier", "priority", "eligibility", "vehicleModel"`
	stageTimeCols   = `"entryId", "stageId", "elapsedDurationMs", "position", "diffFirstMs", "diffPrevMs", "status"`
	splitTimeCols   = `"splitPointTimeId", COALESCE("entryId",0) AS "entryId", COALESCE("splitPointId",0) AS "splitPointId", COALESCE("stageId",0) AS "stageId", "elapsedDurationMs", "stageTimeDurationMs"`
	overallCols     = `"entryId", "stageId", "position", "stageTimeMs", "totalTimeMs", "diffFirstMs", "diffPrevMs", "penaltyTimeMs"`
	penaltyCols     = `"penaltyId", COALESCE("entryId",0) AS "entryId", "controlId", "penaltyDurationMs", "reason"`
	retirementCols  = `"retirementId", COALESCE("entryId",0) AS "entryId", "controlId", "reason", "retirementDateTime", "status"`
	startlistCols   = `"startListItemId", COALESCE("startListId",0) AS "startListId", COALESCE("entryId",0) AS "entryId", COALESCE("order",0) AS "order", "startDateTimeLocal"`
	personCols      = `"personId", COALESCE("fullName",'') AS "fullName", "abbvName", "country"`
	manufacturerCol = `"manufacturerId", COALESCE("name",'') AS "name"`
)

func (s *Store) Seasons(ctx context.Context) ([]model.Season, error) {
	return Select[model.Season](ctx, s, `SELECT `+seasonCols+` FROM seasons ORDER BY "year"`)
}

func (s *Store) SeasonByYear(ctx context.Context, year int) (model.Season, bool, error) {
	return SelectOne[model.Season](ctx, s, `SELECT `+seasonCols+` FROM seasons WHERE "year" = ? ORDER BY "seasonId" LIMIT 1`, year)
}

func (s *Store) Championships(ctx context.Context, seasonID int64) ([]model.Championship, error) {
	return Select[model.Championship](ctx, s, `SELECT `+championshipCols+` FROM championships WHERE "seasonId" = ? ORDER BY "championshipId"`, seasonID)
}

func (s *Store) Events(ctx context.Context, seasonID int64) ([]model.Event, error) {
	return Select[model.Event](ctx, s, `SELECT `+eventCols+` FROM season_rounds WHERE "seasonId" = ? ORDER BY "order", "startDate"`, seasonID)
}

func (s *Store) Event(ctx context.Context, eventID int64) (model.Event, bool, error) {
	return SelectOne[model.Event](ctx, s, `SELECT `+eventCols+` FROM season_rounds WHERE "eventId" = ?`, eventID)
}

func (s *Store) Rallies(ctx context.Context, eventID int64) ([]model.Rally, error) {
	return Select[model.Rally](ctx, s, `SELECT `+rallyCols+` FROM event_rallies WHERE "eventId" = ? ORDER BY "isMain" DESC, "rallyId"`, eventID)
}

func (s *Store) Legs(ctx context.Context, itineraryID int64) ([]model.Leg, error) {
	return Select[model.Leg](ctx, s, `SELECT `+legCols+` FROM itinerary_legs WHERE "itineraryId" = ? ORDER BY "order"`, itineraryID)
}

func (s *Store) Sections(ctx context.Context, itineraryID int64) ([]model.Section, error) {
	return Select[model.Section](ctx, s, `SELECT s."itinerarySectionId" AS "itinerarySectionId", COALESCE(s."itineraryLegId",0) AS "itineraryLegId",
		COALESCE(s."name",'') AS "name", COALESCE(s."order",0) AS "order" FROM itinerary_sections s
		JOIN itinerary_legs l ON l."itineraryLegId" = s."itineraryLegId"
		WHERE l."itineraryId" = ? ORDER BY l."order", s."order"`, itineraryID)
}

func (s *Store) Controls(ctx context.Context, eventID int64) ([]model.Control, error) {
	return Select[model.Control](ctx, s, `SELECT `+controlCols+` FROM itinerary_controls WHERE "eventId" = ? ORDER BY "controlId"`, eventID)
}

func (s *Store) Stages(ctx context.Context, eventID int64) ([]model.Stage, error) {
	return Select[model.Stage](ctx, s, `SELECT `+stageCols+` FROM stages WHERE "eventId" = ? ORDER BY "number"`, eventID)
}

func (s *Store) Stage(ctx context.Context, stageID int64) (model.Stage, bool, error) {
	return SelectOne[model.Stage](ctx, s, `SELECT `+stageCols+` FROM stages WHERE "stageId" = ?`, stageID)
}

func (s *Store) StageByCode(ctx context.Context, eventID int64, code string) (model.Stage, bool, error) {
	return SelectOne[model.Stage](ctx, s, `SELECT `+stageCols+` FROM stages WHERE "eventId" = ? AND upper("code") = upper(?)`, eventID, code)
}

func (s *Store) SplitPoints(ctx context.Context, stageID int64) ([]model.SplitPoint, error) {
	return Select[model.SplitPoint](ctx, s, `SELECT `+splitPointCols+` FROM split_points WHERE "stageId" = ? ORDER BY "number"`, stageID)
}

func (s *Store) Entries(ctx context.Context, eventID int64) ([]model.Entry, error) {
	return Select[model.Entry](ctx, s, `SELECT `+entryCols+` FROM entries WHERE "eventId" = ? ORDER BY "entryListOrder", "entryId"`, eventID)
}

func (s *Store) Persons(ctx context.Context) ([]model.Person, error) {
	return Select[model.Person](ctx, s, `SELECT `+personCols+` FROM persons ORDER BY "personId"`)
}

func (s *Store) Manufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	return Select[model.Manufacturer](ctx, s, `SELECT `+manufacturerCol+` FROM manufacturers ORDER BY "manufacturerId"`)
}

func (s *Store) StartlistItems(ctx context.Context, startListID int64) ([]model.StartlistItem, error) {
	return Select[model.StartlistItem](ctx, s, `SELECT `+startlistCols+` FROM startlist_items WHERE "startListId" = ? ORDER BY "order"`, startListID)
}

func (s *Store) StageTimes(ctx context.Context, stageID int64) ([]model.StageTime, error) {
	return Select[model.StageTime](ctx, s, `SELECT `+stageTimeCols+` FROM stage_times WHERE "stageId" = ? ORDER BY "position" IS NULL, "position"`, stageID)
}

func (s *Store) SplitTimes(ctx context.Context, stageID int64) ([]model.SplitTime, error) {
	return Select[model.SplitTime](ctx, s, `SELECT `+splitTimeCols+` FROM split_times WHERE "stageId" = ? ORDER BY "entryId", "splitPointId"`, stageID)
}

func (s *Store) StageOverall(ctx context.Context, stageID int64) ([]model.StageOverall, error) {
	return Select[model.StageOverall](ctx, s, `SELECT `+overallCols+` FROM stage_overall WHERE "stageId" = ? ORDER BY "position" IS NULL, "position"`, stageID)
}

// EventOverall returns the overall standings of all stages of an event
func (s *Store) EventOverall(ctx context.Context, eventID int64) ([]model.StageOverall, error) {
	return Select[model.StageOverall](ctx, s, `SELECT o."entryId" AS "entryId", o."stageId" AS "stageId", o."position" AS "position", o."stageTimeMs" AS "stageTimeMs",
		o."totalTimeMs" AS "totalTimeMs", o."diffFirstMs" AS "diffFirstMs", o."diffPrevMs" AS "diffPrevMs", o."penaltyTimeMs" AS "penaltyTimeMs" FROM stage_overall o
		JOIN stages st ON st."stageId" = o."stageId"
		WHERE st."eventId" = ? ORDER BY st."number", o."position" IS NULL, o."position"`, eventID)
}

func (s *Store) StageWinners(ctx context.Context, eventID int64) ([]model.StageWinner, error) {
	return Select[model.StageWinner](ctx, s, `SELECT w."stageId" AS "stageId", w."entryId" AS "entryId", COALESCE(w."elapsedDurationMs",0) AS "elapsedDurationMs" FROM stage_winners w
		JOIN stages st ON st."stageId" = w."stageId"
		WHERE st."eventId" = ? ORDER BY st."number", w."entryId"`, eventID)
}

func (s *Store) Penalties(ctx context.Context, eventID int64) ([]model.Penalty, error) {
	return Select[model.Penalty](ctx, s, `SELECT `+penaltyCols+` FROM penalties WHERE "eventId" = ? ORDER BY "penaltyId"`, eventID)
}

func (s *Store) Retirements(ctx context.Context, eventID int64) ([]model.Retirement, error) {
	return Select[model.Retirement](ctx, s, `SELECT `+retirementCols+` FROM retirements WHERE "eventId" = ? ORDER BY "retirementId"`, eventID)
}
