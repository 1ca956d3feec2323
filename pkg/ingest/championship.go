package ingest

import (
	"context"

	"github.com/mpapenbr/wrc-timing-go/pkg/upstream"
)

// Championship stores the entries and per-round results of a championship
func (i *Ingester) Championship(ctx context.Context, championshipID int64) (Counts, error) {
	chConst := map[string]any{"championshipId": championshipID}
	items := make([]batch, 0, 2)
	if data, ok := i.get(ctx, upstream.ChampionshipJSON(championshipID)); ok {
		items = append(items, item("championship_entries",
			records(matches(data, "$.championshipEntries[*]"), chConst),
			"championshipEntryId"))
	}
	if data, ok := i.get(ctx, upstream.ChampionshipResults(championshipID)); ok {
		items = append(items, item("championship_results", records(data, chConst),
			"championshipEntryId", "eventId"))
	}
	return i.write(ctx, items...)
}
