package ingest

import (
	"context"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/upstream"
)

// Seasons stores the list of known seasons
func (i *Ingester) Seasons(ctx context.Context) (Counts, error) {
	data, ok := i.get(ctx, upstream.Seasons())
	if !ok {
		return Counts{}, nil
	}
	return i.write(ctx, item("seasons", records(data, nil), "seasonId"))
}

// Season stores the championships and rounds of a season.
// The rounds are taken from the season detail, the results calendar is
// used if the detail does not provide them.
func (i *Ingester) Season(ctx context.Context, seasonID int64) (Counts, error) {
	constants := map[string]any{"seasonId": seasonID}
	champs := tabular.Empty()
	rounds := tabular.Empty()
	if data, ok := i.get(ctx, upstream.SeasonDetail(seasonID)); ok {
		champs = records(matches(data, "$.championships[*]"), constants)
		rounds = unprefix(records(matches(data, "$.seasonRounds[*]"), constants, "event"), "event")
	}
	if rounds.IsEmpty() {
		if data, ok := i.get(ctx, upstream.Calendar(seasonID, i.championship)); ok {
			rounds = withConstants(tabular.Flat(data), constants)
		}
	}
	if rounds.IsEmpty() {
		i.log.Warn("no rounds for season", log.Int64("seasonId", seasonID))
	}
	return i.write(ctx,
		item("championships", champs, "championshipId"),
		item("season_rounds", rounds, "eventId"),
	)
}
