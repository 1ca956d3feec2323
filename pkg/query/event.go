//nolint:lll // sql readability
package query

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/samber/lo"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/rules/overall"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

// EntryListName is used for the startlist fallback based on the entry list
const EntryListName = "Entrylist"

type startlistRow struct {
	StartListID        int64  `db:"startListId"`
	Name               string `db:"name"`
	Order              int64  `db:"order"`
	EntryID            int64  `db:"entryId"`
	StartDateTimeLocal string `db:"startDateTimeLocal"`
}

// StartlistPretty lists the start order. startListID 0 returns all
// startlists of the event. Without any startlist the entry list order is used.
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) StartlistPretty(
	ctx context.Context, eventID, startListID int64,
) (*tabular.Table, error) {
	infos, err := q.entries(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows, err := repository.Select[startlistRow](ctx, q.store, `SELECT sli."startListId" AS "startListId", COALESCE(sl."name",'') AS "name",
		COALESCE(sli."order",0) AS "order", sli."entryId" AS "entryId", COALESCE(sli."startDateTimeLocal",'') AS "startDateTimeLocal"
		FROM startlist_items sli
		JOIN entries e ON e."entryId" = sli."entryId"
		LEFT JOIN startlists sl ON sl."startListId" = sli."startListId"
		WHERE e."eventId" = ? AND (? = 0 OR sli."startListId" = ?)
		ORDER BY sli."startListId", sli."order"`, eventID, startListID, startListID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && startListID == 0 {
		rows, err = repository.Select[startlistRow](ctx, q.store, `SELECT 0 AS "startListId", '' AS "name",
			COALESCE("entryListOrder",0) AS "order", "entryId", '' AS "startDateTimeLocal"
			FROM entries WHERE "eventId" = ? ORDER BY "entryListOrder", "entryId"`, eventID)
		if err != nil {
			return nil, err
		}
	}
	out := tabular.New("startListId", "startList", "order", "entryId", "carNo",
		"driverName", "codriverName", "startDateTimeLocal")
	for _, r := range rows {
		info := infos[r.EntryID]
		var start any
		if r.StartDateTimeLocal != "" {
			start = r.StartDateTimeLocal
		}
		out.Append(r.StartListID, startListName(&r), r.Order, r.EntryID,
			info.CarNo, info.DriverName, info.CodriverName, start)
	}
	return out, nil
}

// startListName is the weekday of the first start, the stored name or Entrylist
func startListName(r *startlistRow) string {
	if t, err := time.Parse(time.RFC3339, r.StartDateTimeLocal); err == nil {
		return t.Weekday().String()
	}
	if r.Name != "" {
		return r.Name
	}
	return EntryListName
}

// StageWinnersPretty lists the stage winners with running win counts.
// Stages without stored winners are derived from their stage times.
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) StageWinnersPretty(
	ctx context.Context, eventID int64,
) (*tabular.Table, error) {
	infos, err := q.entries(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stages, err := q.StageInfos(ctx, eventID)
	if err != nil {
		return nil, err
	}
	winners, err := q.store.StageWinners(ctx, eventID)
	if err != nil {
		return nil, err
	}
	known := lo.SliceToMap(winners, func(w model.StageWinner) (int64, bool) { return w.StageID, true })
	for _, s := range stages {
		if known[s.StageID] || model.IsShakedownCode(s.Code) {
			continue
		}
		times, err := q.store.StageTimes(ctx, s.StageID)
		if err != nil {
			return nil, err
		}
		winners = append(winners, timing.WinnersFromStageTimes(times)...)
	}

	out := tabular.New("stageId", "code", "entryId", "carNo", "driverName", "elapsedMs",
		"timeInS", "speedKmh", "paceSPerKm", "winsOverall", "dailyWins", "sectionWins")
	for _, w := range timing.EnrichWinners(winners, stages) {
		info := infos[w.EntryID]
		out.Append(w.StageID, w.Code, w.EntryID, info.CarNo, info.DriverName, w.ElapsedDurationMs,
			w.TimeInS, cell(w.SpeedKmh), cell(w.PaceSPerKm),
			int64(w.WinsOverall), int64(w.DailyWins), int64(w.SectionWins))
	}
	return out, nil
}

// PositionTrace reports the overall position of each entry after each stage
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) PositionTrace(
	ctx context.Context, eventID int64, priority string,
) (*tabular.Table, error) {
	infos, err := q.entries(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stages, err := q.StageInfos(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows, err := q.store.EventOverall(ctx, eventID)
	if err != nil {
		return nil, err
	}
	codes := lo.SliceToMap(stages, func(s timing.StageInfo) (int64, string) { return s.StageID, s.Code })
	trace := timing.PositionTrace(timing.FillTotals(rows, stages), stages, infos.accept(priority))

	out := tabular.New("entryId", "carNo", "driverName", "stageId", "code",
		"stageIndex", "position", "totalTimeMs")
	for _, p := range trace {
		info := infos[p.EntryID]
		out.Append(p.EntryID, info.CarNo, info.DriverName, p.StageID, codes[p.StageID],
			int64(p.StageIndex), p.Position, p.TotalTimeMs)
	}
	return out, nil
}

// OverallChanges evaluates the overall rules for the stage against the
// chronologically previous stage (shakedown excluded).
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) OverallChanges(
	ctx context.Context, stageID int64, priority string,
) (*tabular.Table, error) {
	st, err := q.stage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	infos, err := q.entries(ctx, st.EventID)
	if err != nil {
		return nil, err
	}
	stages, err := q.StageInfos(ctx, st.EventID)
	if err != nil {
		return nil, err
	}
	curr, err := q.overall(ctx, stageID, infos, priority)
	if err != nil {
		return nil, err
	}
	var prev []model.StageOverall
	if prevID, ok := previousStage(stages, stageID); ok {
		if prev, err = q.overall(ctx, prevID, infos, priority); err != nil {
			return nil, err
		}
	}
	facts := q.evaluator.Facts(&st, overall.FromStageOverall(curr), overall.FromStageOverall(prev))

	out := tabular.New("entryId", "carNo", "driverName", "rule", "remark", "confidence")
	for _, f := range facts {
		info := infos[f.EntryID]
		out.Append(f.EntryID, info.CarNo, info.DriverName, f.Rule, f.Remark, f.Confidence)
	}
	return out, nil
}

func previousStage(stages []timing.StageInfo, stageID int64) (int64, bool) {
	var prev int64
	found := false
	for _, s := range timing.ChronologicalOrder(stages) {
		if s.StageID == stageID {
			return prev, found
		}
		if !model.IsShakedownCode(s.Code) {
			prev, found = s.StageID, true
		}
	}
	return 0, false
}

type penaltyRow struct {
	PenaltyID  int64           `db:"penaltyId"`
	EntryID    int64           `db:"entryId"`
	Control    string          `db:"control"`
	DurationMs null.Val[int64] `db:"penaltyDurationMs"`
	Reason     string          `db:"reason"`
}

// PenaltiesPretty lists the penalties of the event with the control code
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) PenaltiesPretty(
	ctx context.Context, eventID int64,
) (*tabular.Table, error) {
	infos, err := q.entries(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows, err := repository.Select[penaltyRow](ctx, q.store, `SELECT p."penaltyId" AS "penaltyId", COALESCE(p."entryId",0) AS "entryId",
		COALESCE(c."code",'') AS "control", p."penaltyDurationMs" AS "penaltyDurationMs", COALESCE(p."reason",'') AS "reason"
		FROM penalties p LEFT JOIN itinerary_controls c ON c."controlId" = p."controlId"
		WHERE p."eventId" = ? ORDER BY p."penaltyId"`, eventID)
	if err != nil {
		return nil, err
	}
	out := tabular.New("penaltyId", "entryId", "carNo", "driverName", "control",
		"penaltyMs", "penaltyS", "reason")
	for _, r := range rows {
		info := infos[r.EntryID]
		out.Append(r.PenaltyID, r.EntryID, info.CarNo, info.DriverName, r.Control,
			cell(r.DurationMs), cell(secondsOf(r.DurationMs)), r.Reason)
	}
	return out, nil
}

type retirementRow struct {
	RetirementID       int64  `db:"retirementId"`
	EntryID            int64  `db:"entryId"`
	Control            string `db:"control"`
	Reason             string `db:"reason"`
	RetirementDateTime string `db:"retirementDateTime"`
	Status             string `db:"status"`
}

// RetirementsPretty lists the retirements of the event with the control code
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) RetirementsPretty(
	ctx context.Context, eventID int64,
) (*tabular.Table, error) {
	infos, err := q.entries(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows, err := repository.Select[retirementRow](ctx, q.store, `SELECT r."retirementId" AS "retirementId", COALESCE(r."entryId",0) AS "entryId",
		COALESCE(c."code",'') AS "control", COALESCE(r."reason",'') AS "reason",
		COALESCE(r."retirementDateTime",'') AS "retirementDateTime", COALESCE(r."status",'') AS "status"
		FROM retirements r LEFT JOIN itinerary_controls c ON c."controlId" = r."controlId"
		WHERE r."eventId" = ? ORDER BY r."retirementId"`, eventID)
	if err != nil {
		return nil, err
	}
	out := tabular.New("retirementId", "entryId", "carNo", "driverName", "control",
		"reason", "retirementDateTime", "status")
	for _, r := range rows {
		info := infos[r.EntryID]
		out.Append(r.RetirementID, r.EntryID, info.CarNo, info.DriverName, r.Control,
			r.Reason, r.RetirementDateTime, r.Status)
	}
	return out, nil
}

type shakedownRow struct {
	EntryID   int64 `db:"entryId"`
	Runs      int64 `db:"runs"`
	BestRunMs int64 `db:"bestRunMs"`
}

// ShakedownPretty ranks the entries by their best shakedown run
//
//nolint:whitespace // can't make both editor and linter happy
func (q *Query) ShakedownPretty(
	ctx context.Context, eventID int64, priority string,
) (*tabular.Table, error) {
	infos, err := q.entries(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows, err := repository.Select[shakedownRow](ctx, q.store, `SELECT "entryId", COUNT(*) AS "runs", MIN("runDurationMs") AS "bestRunMs"
		FROM shakedown_times WHERE "eventId" = ? AND "runDurationMs" IS NOT NULL
		GROUP BY "entryId"`, eventID)
	if err != nil {
		return nil, err
	}
	rows = keep(rows, infos.accept(priority), func(r shakedownRow) int64 { return r.EntryID })
	slices.SortStableFunc(rows, func(a, b shakedownRow) int {
		return cmp.Or(cmp.Compare(a.BestRunMs, b.BestRunMs), cmp.Compare(a.EntryID, b.EntryID))
	})
	values := lo.Map(rows, func(r shakedownRow, _ int) null.Val[int64] { return null.From(r.BestRunMs) })
	pos := timing.DenseRank(values)
	first, prev := timing.DiffFirstPrev(values)

	out := tabular.New("position", "entryId", "carNo", "driverName", "runs",
		"bestRunMs", "bestRunS", "diffFirstMs", "diffPrevMs")
	for i, r := range rows {
		info := infos[r.EntryID]
		out.Append(cell(pos[i]), r.EntryID, info.CarNo, info.DriverName, r.Runs,
			r.BestRunMs, timing.MsToSeconds(r.BestRunMs), cell(first[i]), cell(prev[i]))
	}
	return out, nil
}
