package ingest

import (
	"context"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/upstream"
)

// Stages refreshes the stage list (status, split points) of a rally
func (i *Ingester) Stages(ctx context.Context, eventID, rallyID int64) (Counts, error) {
	e := upstream.EventStages(eventID, rallyID)
	if i.source == SourceResults {
		e = upstream.Stages(eventID, rallyID, i.championship)
	}
	data, ok := i.get(ctx, e)
	if !ok {
		return Counts{}, nil
	}
	evConst := map[string]any{"eventId": eventID}
	if tabular.IsFlat(data) {
		return i.write(ctx,
			item("stages", withConstants(tabular.Flat(data, "eventId"), evConst), "stageId"))
	}
	stages, splitPoints := stageTables(objects(data, "$[*]"), evConst)
	return i.write(ctx,
		item("stages", stages, "stageId"),
		item("split_points", splitPoints, "splitPointId"),
	)
}

// Stage stores the stage times, split times and overall standings of a stage.
// Stages stored as Completed or Cancelled which already have times are
// not fetched again unless force is set.
func (i *Ingester) Stage(ctx context.Context, ref upstream.StageRef, force bool) (Counts, error) {
	l := i.log.With(log.Int64("stageId", ref.StageID))
	if !force {
		final, err := i.hasFinalData(ctx, ref.StageID)
		if err != nil {
			return nil, err
		}
		if final {
			l.Debug("stage is final, skipping")
			return Counts{}, nil
		}
	}
	stConst := map[string]any{"stageId": ref.StageID}
	var items []batch
	if i.source == SourceResults {
		items = i.stageFromResults(ctx, ref, stConst)
	} else {
		items = i.stageFromTiming(ctx, ref, stConst)
	}
	counts, err := i.write(ctx, items...)
	if err != nil {
		return nil, err
	}
	status, err := i.Stages(ctx, ref.EventID, ref.RallyID)
	if err != nil {
		return nil, err
	}
	return counts.add(status), nil
}

//nolint:whitespace // can't make both editor and linter happy
func (i *Ingester) stageFromTiming(
	ctx context.Context, ref upstream.StageRef, stConst map[string]any,
) []batch {
	items := make([]batch, 0, 3)
	if data, ok := i.get(ctx, upstream.StageTimesJSON(ref.EventID, ref.RallyID, ref.StageID)); ok {
		items = append(items, item("stage_times", records(data, stConst), "stageId", "entryId"))
	}
	if data, ok := i.get(ctx, upstream.SplitTimesJSON(ref.EventID, ref.RallyID, ref.StageID)); ok {
		items = append(items, item("split_times", records(data, stConst), "splitPointTimeId"))
	}
	if data, ok := i.get(ctx, upstream.StageOverallJSON(ref.EventID, ref.RallyID, ref.StageID)); ok {
		items = append(items, item("stage_overall", records(data, stConst), "stageId", "entryId"))
	}
	return items
}

//nolint:whitespace // can't make both editor and linter happy
func (i *Ingester) stageFromResults(
	ctx context.Context, ref upstream.StageRef, stConst map[string]any,
) []batch {
	if ref.Championship == "" {
		ref.Championship = i.championship
	}
	items := make([]batch, 0, 3)
	if data, ok := i.get(ctx, upstream.StageTimes(ref)); ok {
		items = append(items, item("stage_times",
			withConstants(regularizeStageTimes(tabular.Flat(data, "stageId")), stConst),
			"stageId", "entryId"))
	}
	if data, ok := i.get(ctx, upstream.SplitTime(ref)); ok {
		items = append(items, item("split_times",
			withConstants(regularizeSplitTimes(tabular.Nested(data, "splitPointTimes", "entryId")), stConst),
			"splitPointTimeId"))
	}
	if data, ok := i.get(ctx, upstream.StageResult(ref)); ok {
		items = append(items, item("stage_overall",
			withConstants(regularizeOverall(tabular.Flat(data, "stageId")), stConst),
			"stageId", "entryId"))
	}
	return items
}

func (i *Ingester) hasFinalData(ctx context.Context, stageID int64) (bool, error) {
	st, ok, err := i.store.Stage(ctx, stageID)
	if err != nil || !ok {
		return false, err
	}
	if !st.Status.Final() {
		return false, nil
	}
	times, err := i.store.StageTimes(ctx, stageID)
	if err != nil {
		return false, err
	}
	return len(times) > 0, nil
}

// LiveStages refreshes all stored stages of the event which are not final
// yet, followed by the event scoped results. Shakedown stages are handled
// by Shakedown.
//
//nolint:whitespace // can't make both editor and linter happy
func (i *Ingester) LiveStages(
	ctx context.Context, base upstream.StageRef, force bool,
) (Counts, error) {
	if _, err := i.Stages(ctx, base.EventID, base.RallyID); err != nil {
		return nil, err
	}
	stages, err := i.store.Stages(ctx, base.EventID)
	if err != nil {
		return nil, err
	}
	counts := Counts{}
	for idx := range stages {
		st := &stages[idx]
		if st.IsShakedown() || st.Status == model.StageToRun {
			continue
		}
		ref := base
		ref.StageID = st.StageID
		c, err := i.Stage(ctx, ref, force)
		if err != nil {
			return nil, err
		}
		counts.add(c)
	}
	more, err := i.EventResults(ctx, base)
	if err != nil {
		return nil, err
	}
	return counts.add(more), nil
}

// Shakedown stores the runs of the given shakedown
//
//nolint:whitespace // can't make both editor and linter happy
func (i *Ingester) Shakedown(
	ctx context.Context, eventID, rallyID int64, number int,
) (Counts, error) {
	data, ok := i.get(ctx, upstream.ShakedownTimes(eventID, rallyID, number))
	if !ok {
		return Counts{}, nil
	}
	return i.write(ctx, item("shakedown_times", records(data, map[string]any{
		"eventId": eventID, "shakedownNumber": int64(number),
	}), "shakedownTimeId"))
}

// ControlTimes stores the arrival/departure times at a control
//
//nolint:whitespace // can't make both editor and linter happy
func (i *Ingester) ControlTimes(
	ctx context.Context, eventID, controlID int64,
) (Counts, error) {
	data, ok := i.get(ctx, upstream.ControlTimes(eventID, controlID))
	if !ok {
		return Counts{}, nil
	}
	return i.write(ctx, item("control_times",
		records(data, map[string]any{"controlId": controlID}), "controlTimeId"))
}
