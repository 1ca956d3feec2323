package model

import (
	"fmt"
	"time"

	"github.com/aarondl/opt/null"
)

//nolint:tagliatelle // upstream field names
type (
	Season struct {
		SeasonID int64  `db:"seasonId" json:"seasonId"`
		Name     string `db:"name" json:"name"`
		Year     int    `db:"year" json:"year"`
	}

	Championship struct {
		ChampionshipID int64            `db:"championshipId" json:"championshipId"`
		Name           string           `db:"name" json:"name"`
		SeasonID       int64            `db:"seasonId" json:"seasonId"`
		Type           ChampionshipType `db:"type" json:"type"`
	}

	// Event is a round of the season. Dates are local to the event.
	Event struct {
		EventID        int64            `db:"eventId" json:"eventId"`
		SeasonID       int64            `db:"seasonId" json:"seasonId"`
		Name           string           `db:"name" json:"name"`
		Country        null.Val[string] `db:"country" json:"country"`
		Location       null.Val[string] `db:"location" json:"location"`
		StartDate      string           `db:"startDate" json:"startDate"`
		FinishDate     string           `db:"finishDate" json:"finishDate"`
		TimeZoneID     null.Val[string] `db:"timeZoneId" json:"timeZoneId"`
		TimeZoneOffset null.Val[int64]  `db:"timeZoneOffset" json:"timeZoneOffset"`
		Surfaces       null.Val[string] `db:"surfaces" json:"surfaces"`
		Order          int              `db:"order" json:"order"`
	}

	Rally struct {
		RallyID     int64 `db:"rallyId" json:"rallyId"`
		EventID     int64 `db:"eventId" json:"eventId"`
		ItineraryID int64 `db:"itineraryId" json:"itineraryId"`
		IsMain      bool  `db:"isMain" json:"isMain"`
	}
)

type ChampionshipType string

const (
	ChampionshipDrivers       ChampionshipType = "Person"
	ChampionshipCodrivers     ChampionshipType = "CoDriver"
	ChampionshipManufacturers ChampionshipType = "Manufacturer"
	ChampionshipTeams         ChampionshipType = "Entrant"
)

const dateLayout = "2006-01-02"

// TimeLocation resolves the event time zone.
// The zone id is preferred, the offset (minutes) is used as fallback.
func (e *Event) TimeLocation() *time.Location {
	if id, ok := e.TimeZoneID.Get(); ok && id != "" {
		if loc, err := time.LoadLocation(id); err == nil {
			return loc
		}
	}
	if offset, ok := e.TimeZoneOffset.Get(); ok {
		return time.FixedZone(fmt.Sprintf("UTC%+d", offset/60), int(offset)*60)
	}
	return time.UTC
}

// StartTime returns the begin of the start day in event local time
func (e *Event) StartTime() (time.Time, error) {
	return time.ParseInLocation(dateLayout, trimDate(e.StartDate), e.TimeLocation())
}

// FinishTime returns the end of the finish day in event local time
func (e *Event) FinishTime() (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, trimDate(e.FinishDate), e.TimeLocation())
	if err != nil {
		return t, err
	}
	return t.Add(24*time.Hour - time.Nanosecond), nil
}

// HasStarted is true if the start day has begun at the event location
func (e *Event) HasStarted(now time.Time) bool {
	start, err := e.StartTime()
	if err != nil {
		return false
	}
	return !now.Before(start)
}

// IsLive is true while now lies between start and finish day (event local time)
func (e *Event) IsLive(now time.Time) bool {
	start, err := e.StartTime()
	if err != nil {
		return false
	}
	finish, err := e.FinishTime()
	if err != nil {
		return false
	}
	return !now.Before(start) && !now.After(finish)
}

// upstream sometimes delivers full timestamps
func trimDate(s string) string {
	if len(s) > len(dateLayout) {
		return s[:len(dateLayout)]
	}
	return s
}
