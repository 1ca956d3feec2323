package ingest

import (
	"context"
	"fmt"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/upstream"
)

// EventRef holds the ids resolved while seeding an event
type EventRef struct {
	EventID      int64
	RallyID      int64
	ItineraryID  int64
	StartListIDs []int64
}

// Event seeds the store with everything known about the event:
// rallies, entries (incl. persons, manufacturers, ...), the itinerary with
// its legs, sections, controls, stages and split points, the startlists,
// stage winners, penalties and retirements.
//
//nolint:funlen // linear sequence of artifacts
func (i *Ingester) Event(ctx context.Context, eventID int64) (EventRef, Counts, error) {
	ref := EventRef{EventID: eventID}
	ev, ok := i.get(ctx, upstream.Event(eventID))
	if !ok {
		return ref, nil, fmt.Errorf("event %d: %w", eventID, ErrNoData)
	}
	evConst := map[string]any{"eventId": eventID}
	items := []batch{
		item("season_rounds", records(ev, evConst, "country").Rename(map[string]string{
			"country.name": "country", "country.iso3": "countryIso3",
		}), "eventId"),
	}
	rallies := records(matches(ev, "$.rallies[*]"), evConst)
	items = append(items, item("event_rallies", rallies, "rallyId"))

	if !selectRally(rallies, &ref) {
		i.log.Warn("event without rally", log.Int64("eventId", eventID))
		counts, err := i.write(ctx, items...)
		return ref, counts, err
	}

	if data, ok := i.get(ctx, upstream.Entries(eventID, ref.RallyID)); ok {
		items = append(items, entryBatches(data, map[string]any{
			"eventId": eventID, "rallyId": ref.RallyID,
		})...)
	}

	if data, ok := i.itinerary(ctx, eventID, ref.ItineraryID); ok {
		if obj, ok := data.(map[string]any); ok && ref.ItineraryID == 0 {
			ref.ItineraryID, _ = int64Of(obj, "itineraryId")
		}
		b, startLists := itineraryBatches(data, eventID, ref.ItineraryID)
		items = append(items, b...)
		ref.StartListIDs = startLists
	}
	items = append(items, i.startLists(ctx, eventID, ref.StartListIDs)...)

	counts, err := i.write(ctx, items...)
	if err != nil {
		return ref, nil, err
	}
	more, err := i.EventResults(ctx, upstream.StageRef{EventID: eventID, RallyID: ref.RallyID})
	if err != nil {
		return ref, nil, err
	}
	return ref, counts.add(more), nil
}

// itinerary prefers the extended itinerary of the results family if that
// source is selected
func (i *Ingester) itinerary(ctx context.Context, eventID, itineraryID int64) (any, bool) {
	if i.source == SourceResults {
		if data, ok := i.get(ctx, upstream.Itinerary(eventID)); ok {
			return data, true
		}
	}
	if itineraryID == 0 {
		return nil, false
	}
	return i.get(ctx, upstream.ItineraryJSON(eventID, itineraryID))
}

// startLists loads the startlists of the event. The results family delivers
// all of them at once, the timing family one per id.
func (i *Ingester) startLists(ctx context.Context, eventID int64, ids []int64) []batch {
	items := make([]batch, 0)
	if i.source == SourceResults {
		if data, ok := i.get(ctx, upstream.StartLists(eventID)); ok {
			for _, sl := range objects(data, "$[*]") {
				if id, ok := int64Of(sl, "startListId"); ok {
					items = append(items, startListBatches(sl, eventID, id)...)
				}
			}
			return items
		}
	}
	for _, id := range ids {
		if data, ok := i.get(ctx, upstream.StartListJSON(eventID, id)); ok {
			items = append(items, startListBatches(data, eventID, id)...)
		}
	}
	return items
}

// EventResults refreshes the event scoped results: stage winners,
// penalties and retirements. The results family needs the championship
// id for the stage winners, without it the timing family is used.
func (i *Ingester) EventResults(ctx context.Context, ref upstream.StageRef) (Counts, error) {
	evConst := map[string]any{"eventId": ref.EventID}
	winners := upstream.StageWinnersJSON(ref.EventID, ref.RallyID)
	penalties := upstream.PenaltiesJSON(ref.EventID)
	retirements := upstream.RetirementsJSON(ref.EventID)
	if i.source == SourceResults {
		if ref.ChampionshipID != 0 {
			winners = upstream.StageWinners(ref.EventID, ref.ChampionshipID)
		}
		penalties = upstream.Penalty(ref.EventID)
		retirements = upstream.Retirements(ref.EventID)
	}
	items := make([]batch, 0, 3)
	if data, ok := i.get(ctx, winners); ok {
		t := table(data, evConst)
		fillDuration(t, "elapsedDuration", "elapsedDurationMs")
		items = append(items, item("stage_winners", t, "stageId", "entryId"))
	}
	if data, ok := i.get(ctx, penalties); ok {
		t := table(data, evConst)
		fillDuration(t, "penaltyDuration", "penaltyDurationMs")
		items = append(items, item("penalties", t, "penaltyId"))
	}
	if data, ok := i.get(ctx, retirements); ok {
		items = append(items, item("retirements", table(data, evConst), "retirementId"))
	}
	return i.write(ctx, items...)
}

// selectRally picks the main rally (or the first one) of the event
func selectRally(rallies *tabular.Table, ref *EventRef) bool {
	if rallies.IsEmpty() {
		return false
	}
	idx := 0
	for j := range rallies.Rows {
		if tabular.AsBool(rallies.Value(j, "isMain")) {
			idx = j
			break
		}
	}
	r := rallies.Row(idx)
	ref.RallyID, _ = r.Int64("rallyId")
	ref.ItineraryID, _ = r.Int64("itineraryId")
	return ref.RallyID != 0
}

// the nested driver/codriver/... objects of an entry fill their own tables
func entryBatches(data any, constants map[string]any) []batch {
	t := records(data, constants,
		"driver", "codriver", "manufacturer", "entrant", "group")
	persons := subTable(t, "driver").Concat(subTable(t, "codriver"))
	return []batch{
		item("persons", persons, "personId"),
		item("manufacturers", subTable(t, "manufacturer"), "manufacturerId"),
		item("entrants", subTable(t, "entrant"), "entrantId"),
		item("groups", subTable(t, "group"), "groupId"),
		item("entries", t, "entryId"),
	}
}

// itineraryBatches walks the tree leg -> section -> (controls, stages -> split points)
// and injects the parent ids on the way down.
//
//nolint:whitespace // can't make both editor and linter happy
func itineraryBatches(
	data any, eventID, itineraryID int64,
) (items []batch, startLists []int64) {
	legs := tabular.Empty()
	sections := tabular.Empty()
	controls := tabular.Empty()
	stages := tabular.Empty()
	splitPoints := tabular.Empty()
	seen := map[int64]bool{}

	for _, leg := range objects(data, "$.itineraryLegs[*]") {
		legID, ok := int64Of(leg, "itineraryLegId")
		if !ok {
			continue
		}
		legs.Concat(records(leg, map[string]any{"itineraryId": itineraryID}))
		if id, ok := int64Of(leg, "startListId"); ok && !seen[id] {
			seen[id] = true
			startLists = append(startLists, id)
		}
		for _, sec := range objects(leg, "$.itinerarySections[*]") {
			secID, ok := int64Of(sec, "itinerarySectionId")
			if !ok {
				continue
			}
			sections.Concat(records(sec, map[string]any{"itineraryLegId": legID}))
			controls.Concat(records(matches(sec, "$.controls[*]"), map[string]any{
				"eventId": eventID, "itineraryLegId": legID, "itinerarySectionId": secID,
			}))
			st, sp := stageTables(objects(sec, "$.stages[*]"), map[string]any{
				"eventId": eventID, "itinerarySectionId": secID,
			})
			stages.Concat(st)
			splitPoints.Concat(sp)
		}
	}
	items = []batch{
		item("itinerary_legs", legs, "itineraryLegId"),
		item("itinerary_sections", sections, "itinerarySectionId"),
		item("itinerary_controls", controls, "controlId"),
		item("stages", stages, "stageId"),
		item("split_points", splitPoints, "splitPointId"),
	}
	return items, startLists
}

// stageTables converts stage objects and their split points
//
//nolint:whitespace // can't make both editor and linter happy
func stageTables(
	list []map[string]any, constants map[string]any,
) (stages, splitPoints *tabular.Table) {
	stages = tabular.Empty()
	splitPoints = tabular.Empty()
	for _, st := range list {
		stageID, ok := int64Of(st, "stageId")
		if !ok {
			continue
		}
		stages.Concat(records(st, constants))
		splitPoints.Concat(records(matches(st, "$.splitPoints[*]"),
			map[string]any{"stageId": stageID}))
	}
	return stages, splitPoints
}

//nolint:whitespace // can't make both editor and linter happy
func startListBatches(
	data any, eventID, startListID int64,
) []batch {
	slConst := map[string]any{"startListId": startListID}
	return []batch{
		item("startlists", records(data, map[string]any{
			"eventId": eventID, "startListId": startListID,
		}), "startListId"),
		item("startlist_items", records(matches(data, "$.startListItems[*]"), slConst),
			"startListItemId"),
	}
}
