package model

import "github.com/aarondl/opt/null"

//nolint:tagliatelle // upstream field names
type (
	StageTime struct {
		EntryID           int64            `db:"entryId" json:"entryId"`
		StageID           int64            `db:"stageId" json:"stageId"`
		ElapsedDurationMs null.Val[int64]  `db:"elapsedDurationMs" json:"elapsedDurationMs"`
		Position          null.Val[int64]  `db:"position" json:"position"`
		DiffFirstMs       null.Val[int64]  `db:"diffFirstMs" json:"diffFirstMs"`
		DiffPrevMs        null.Val[int64]  `db:"diffPrevMs" json:"diffPrevMs"`
		Status            null.Val[string] `db:"status" json:"status"`
	}

	SplitTime struct {
		SplitPointTimeID    int64           `db:"splitPointTimeId" json:"splitPointTimeId"`
		EntryID             int64           `db:"entryId" json:"entryId"`
		SplitPointID        int64           `db:"splitPointId" json:"splitPointId"`
		StageID             int64           `db:"stageId" json:"stageId"`
		ElapsedDurationMs   null.Val[int64] `db:"elapsedDurationMs" json:"elapsedDurationMs"`
		StageTimeDurationMs null.Val[int64] `db:"stageTimeDurationMs" json:"stageTimeDurationMs"`
	}

	// StageOverall holds the standings at the end of a stage
	StageOverall struct {
		EntryID       int64           `db:"entryId" json:"entryId"`
		StageID       int64           `db:"stageId" json:"stageId"`
		Position      null.Val[int64] `db:"position" json:"position"`
		StageTimeMs   null.Val[int64] `db:"stageTimeMs" json:"stageTimeMs"`
		TotalTimeMs   null.Val[int64] `db:"totalTimeMs" json:"totalTimeMs"`
		DiffFirstMs   null.Val[int64] `db:"diffFirstMs" json:"diffFirstMs"`
		DiffPrevMs    null.Val[int64] `db:"diffPrevMs" json:"diffPrevMs"`
		PenaltyTimeMs null.Val[int64] `db:"penaltyTimeMs" json:"penaltyTimeMs"`
	}

	StageWinner struct {
		StageID           int64 `db:"stageId" json:"stageId"`
		EntryID           int64 `db:"entryId" json:"entryId"`
		ElapsedDurationMs int64 `db:"elapsedDurationMs" json:"elapsedDurationMs"`
	}

	Penalty struct {
		PenaltyID         int64            `db:"penaltyId" json:"penaltyId"`
		EntryID           int64            `db:"entryId" json:"entryId"`
		ControlID         null.Val[int64]  `db:"controlId" json:"controlId"`
		PenaltyDurationMs null.Val[int64]  `db:"penaltyDurationMs" json:"penaltyDurationMs"`
		Reason            null.Val[string] `db:"reason" json:"reason"`
	}

	Retirement struct {
		RetirementID       int64            `db:"retirementId" json:"retirementId"`
		EntryID            int64            `db:"entryId" json:"entryId"`
		ControlID          null.Val[int64]  `db:"controlId" json:"controlId"`
		Reason             null.Val[string] `db:"reason" json:"reason"`
		RetirementDateTime null.Val[string] `db:"retirementDateTime" json:"retirementDateTime"`
		Status             null.Val[string] `db:"status" json:"status"`
	}
)
