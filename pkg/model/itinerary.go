package model

import (
	"strings"

	"github.com/aarondl/opt/null"
)

type StageStatus string

const (
	StageToRun       StageStatus = "ToRun"
	StageRunning     StageStatus = "Running"
	StageInterrupted StageStatus = "Interrupted"
	StageCompleted   StageStatus = "Completed"
	StageCancelled   StageStatus = "Cancelled"
)

// Final is true if no more timing updates are expected for the stage
func (s StageStatus) Final() bool {
	return s == StageCompleted || s == StageCancelled
}

type ControlType string

const (
	ControlTimeControl  ControlType = "TimeControl"
	ControlStageStart   ControlType = "StageStart"
	ControlFlyingFinish ControlType = "FlyingFinish"
	ControlStageEnd     ControlType = "StageEnd"
	ControlRegroupIn    ControlType = "RegroupIn"
	ControlRegroupOut   ControlType = "RegroupOut"
	ControlServiceIn    ControlType = "ServiceIn"
	ControlServiceOut   ControlType = "ServiceOut"
)

// ShakedownCode is the stage code used for the shakedown
const ShakedownCode = "SHD"

//nolint:tagliatelle // upstream field names
type (
	Leg struct {
		ItineraryLegID int64            `db:"itineraryLegId" json:"itineraryLegId"`
		ItineraryID    int64            `db:"itineraryId" json:"itineraryId"`
		StartListID    null.Val[int64]  `db:"startListId" json:"startListId"`
		Name           string           `db:"name" json:"name"`
		LegDate        null.Val[string] `db:"legDate" json:"legDate"`
		Order          int              `db:"order" json:"order"`
		Status         null.Val[string] `db:"status" json:"status"`
	}

	Section struct {
		ItinerarySectionID int64  `db:"itinerarySectionId" json:"itinerarySectionId"`
		ItineraryLegID     int64  `db:"itineraryLegId" json:"itineraryLegId"`
		Name               string `db:"name" json:"name"`
		Order              int    `db:"order" json:"order"`
	}

	Control struct {
		ControlID           int64             `db:"controlId" json:"controlId"`
		EventID             int64             `db:"eventId" json:"eventId"`
		StageID             null.Val[int64]   `db:"stageId" json:"stageId"`
		ItinerarySectionID  null.Val[int64]   `db:"itinerarySectionId" json:"itinerarySectionId"`
		Code                string            `db:"code" json:"code"`
		Type                ControlType       `db:"type" json:"type"`
		Location            null.Val[string]  `db:"location" json:"location"`
		Distance            null.Val[float64] `db:"distance" json:"distance"`
		FirstCarDueDateTime null.Val[string]  `db:"firstCarDueDateTime" json:"firstCarDueDateTime"`
		TargetDuration      null.Val[string]  `db:"targetDuration" json:"targetDuration"`
		Status              null.Val[string]  `db:"status" json:"status"`
	}

	Stage struct {
		StageID            int64            `db:"stageId" json:"stageId"`
		EventID            int64            `db:"eventId" json:"eventId"`
		ItinerarySectionID null.Val[int64]  `db:"itinerarySectionId" json:"itinerarySectionId"`
		Code               string           `db:"code" json:"code"`
		Name               string           `db:"name" json:"name"`
		Number             int              `db:"number" json:"number"`
		Distance           float64          `db:"distance" json:"distance"`
		Status             StageStatus      `db:"status" json:"status"`
		StageType          null.Val[string] `db:"stageType" json:"stageType"`
		TimingPrecision    null.Val[string] `db:"timingPrecision" json:"timingPrecision"`
	}

	SplitPoint struct {
		SplitPointID int64   `db:"splitPointId" json:"splitPointId"`
		StageID      int64   `db:"stageId" json:"stageId"`
		Number       int     `db:"number" json:"number"`
		Distance     float64 `db:"distance" json:"distance"`
	}
)

func (s *Stage) IsShakedown() bool {
	return IsShakedownCode(s.Code)
}

func IsShakedownCode(code string) bool {
	return strings.EqualFold(code, ShakedownCode)
}
