package query

import (
	"context"

	"github.com/aarondl/opt/null"
	"github.com/samber/lo"

	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

type standingRow struct {
	ChampionshipEntryID int64  `db:"championshipEntryId"`
	Name                string `db:"name"`
	Points              int64  `db:"points"`
	Rounds              int64  `db:"rounds"`
}

// ChampionshipStandings sums up the points of all stored rounds.
// Entries with equal points share the position.
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) ChampionshipStandings(
	ctx context.Context, championshipID int64,
) (*tabular.Table, error) {
	rows, err := repository.Select[standingRow](ctx, q.store,
		`SELECT r."championshipEntryId" AS "championshipEntryId",
		COALESCE(NULLIF(ce."name",''), TRIM(COALESCE(ce."firstName",'') || ' ' || COALESCE(ce."lastName",'')), '') AS "name",
		COALESCE(SUM(r."totalPoints"),0) AS "points", COUNT(r."eventId") AS "rounds"
		FROM championship_results r
		LEFT JOIN championship_entries ce ON ce."championshipEntryId" = r."championshipEntryId"
		WHERE r."championshipId" = ?
		GROUP BY r."championshipEntryId"
		ORDER BY "points" DESC, r."championshipEntryId"`, championshipID)
	if err != nil {
		return nil, err
	}
	pos := timing.DenseRank(lo.Map(rows, func(r standingRow, _ int) null.Val[int64] {
		return null.From(-r.Points)
	}))
	out := tabular.New("position", "championshipEntryId", "name", "points", "rounds")
	for i, r := range rows {
		out.Append(cell(pos[i]), r.ChampionshipEntryID, r.Name, r.Points, r.Rounds)
	}
	return out, nil
}
