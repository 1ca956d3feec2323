package model

import (
	"strings"

	"github.com/aarondl/opt/null"
)

//nolint:tagliatelle // upstream field names
type (
	Entry struct {
		EntryID        int64            `db:"entryId" json:"entryId"`
		EventID        int64            `db:"eventId" json:"eventId"`
		RallyID        int64            `db:"rallyId" json:"rallyId"`
		DriverID       null.Val[int64]  `db:"driverId" json:"driverId"`
		CodriverID     null.Val[int64]  `db:"codriverId" json:"codriverId"`
		ManufacturerID null.Val[int64]  `db:"manufacturerId" json:"manufacturerId"`
		EntrantID      null.Val[int64]  `db:"entrantId" json:"entrantId"`
		GroupID        null.Val[int64]  `db:"groupId" json:"groupId"`
		Identifier     string           `db:"identifier" json:"identifier"`
		Priority       null.Val[string] `db:"priority" json:"priority"`
		Eligibility    null.Val[string] `db:"eligibility" json:"eligibility"`
		VehicleModel   null.Val[string] `db:"vehicleModel" json:"vehicleModel"`
	}

	Person struct {
		PersonID int64            `db:"personId" json:"personId"`
		FullName string           `db:"fullName" json:"fullName"`
		AbbvName null.Val[string] `db:"abbvName" json:"abbvName"`
		Country  null.Val[string] `db:"country" json:"country"`
	}

	Manufacturer struct {
		ManufacturerID int64  `db:"manufacturerId" json:"manufacturerId"`
		Name           string `db:"name" json:"name"`
	}

	StartlistItem struct {
		StartListItemID    int64            `db:"startListItemId" json:"startListItemId"`
		StartListID        int64            `db:"startListId" json:"startListId"`
		EntryID            int64            `db:"entryId" json:"entryId"`
		Order              int              `db:"order" json:"order"`
		StartDateTimeLocal null.Val[string] `db:"startDateTimeLocal" json:"startDateTimeLocal"`
	}
)

// EligibilityFlags splits the eligibility value ("M", "M / T", ...) into single flags
func (e *Entry) EligibilityFlags() []string {
	raw, ok := e.Eligibility.Get()
	if !ok {
		return nil
	}
	ret := make([]string, 0)
	for _, f := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == ',' || r == ' '
	}) {
		ret = append(ret, strings.TrimSpace(f))
	}
	return ret
}

// HasEligibility checks if the given flag (e.g. "M" for manufacturers) is set
func (e *Entry) HasEligibility(flag string) bool {
	for _, f := range e.EligibilityFlags() {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}
