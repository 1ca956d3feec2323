package timing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/aarondl/opt/null"
	"github.com/samber/lo"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
)

var (
	ErrNoWinner        = errors.New("no winner")
	ErrAmbiguousWinner = errors.New("ambiguous winner")
)

// StageInfo locates a stage within the itinerary
type StageInfo struct {
	StageID      int64
	Code         string
	Distance     float64
	LegID        int64
	LegOrder     int
	SectionID    int64
	SectionOrder int
	Number       int
}

// ChronologicalOrder sorts by leg, section and stage number
func ChronologicalOrder(stages []StageInfo) []StageInfo {
	ret := slices.Clone(stages)
	slices.SortStableFunc(ret, func(a, b StageInfo) int {
		return cmp.Or(
			cmp.Compare(a.LegOrder, b.LegOrder),
			cmp.Compare(a.SectionOrder, b.SectionOrder),
			cmp.Compare(a.Number, b.Number),
		)
	})
	return ret
}

type EnrichedWinner struct {
	model.StageWinner
	Code        string
	WinsOverall int
	DailyWins   int
	SectionWins int
	TimeInS     float64
	SpeedKmh    null.Val[float64]
	PaceSPerKm  null.Val[float64]
}

// EnrichWinners attaches running win counts (overall, per leg, per section)
// and time based metrics to each winning row. Rows are processed in
// chronological stage order, tied rows of a stage each count as a win.
// Winners of unknown stages and of the shakedown are dropped.
//
//nolint:whitespace // can't make both editor and linter happy
func EnrichWinners(
	winners []model.StageWinner, stages []StageInfo,
) []EnrichedWinner {
	byStage := lo.GroupBy(winners, func(w model.StageWinner) int64 { return w.StageID })
	type key struct{ entry, group int64 }
	overall := map[int64]int{}
	daily := map[key]int{}
	section := map[key]int{}

	ret := make([]EnrichedWinner, 0, len(winners))
	for _, s := range ChronologicalOrder(stages) {
		if model.IsShakedownCode(s.Code) {
			continue
		}
		rows := slices.Clone(byStage[s.StageID])
		slices.SortFunc(rows, func(a, b model.StageWinner) int {
			return cmp.Compare(a.EntryID, b.EntryID)
		})
		for _, w := range rows {
			overall[w.EntryID]++
			daily[key{w.EntryID, s.LegID}]++
			section[key{w.EntryID, s.SectionID}]++
			secs := MsToSeconds(w.ElapsedDurationMs)
			ret = append(ret, EnrichedWinner{
				StageWinner: w,
				Code:        s.Code,
				WinsOverall: overall[w.EntryID],
				DailyWins:   daily[key{w.EntryID, s.LegID}],
				SectionWins: section[key{w.EntryID, s.SectionID}],
				TimeInS:     secs,
				SpeedKmh:    SpeedKmh(secs, s.Distance),
				PaceSPerKm:  PaceSPerKm(secs, s.Distance),
			})
		}
	}
	return ret
}

// SingleWinner returns the winner of stageID. Ties are reported as
// ErrAmbiguousWinner instead of picking one of them.
//
//nolint:whitespace // can't make both editor and linter happy
func SingleWinner(
	winners []model.StageWinner, stageID int64,
) (model.StageWinner, error) {
	rows := lo.Filter(winners, func(w model.StageWinner, _ int) bool {
		return w.StageID == stageID
	})
	switch len(rows) {
	case 0:
		return model.StageWinner{}, fmt.Errorf("stage %d: %w", stageID, ErrNoWinner)
	case 1:
		return rows[0], nil
	default:
		return model.StageWinner{}, fmt.Errorf("stage %d: %w (%d entries)",
			stageID, ErrAmbiguousWinner, len(rows))
	}
}

// WinnersFromStageTimes derives the winners (all entries sharing the best time)
func WinnersFromStageTimes(times []model.StageTime) []model.StageWinner {
	best, found := int64(0), false
	for _, t := range times {
		if v, ok := t.ElapsedDurationMs.Get(); ok && (!found || v < best) {
			best, found = v, true
		}
	}
	if !found {
		return []model.StageWinner{}
	}
	ret := make([]model.StageWinner, 0, 1)
	for _, t := range times {
		if v, ok := t.ElapsedDurationMs.Get(); ok && v == best {
			ret = append(ret, model.StageWinner{
				StageID: t.StageID, EntryID: t.EntryID, ElapsedDurationMs: v,
			})
		}
	}
	return ret
}
