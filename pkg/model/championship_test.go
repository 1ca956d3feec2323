package model

import (
	"testing"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryFromName(t *testing.T) {
	tests := []struct {
		name string
		want Category
		ok   bool
	}{
		{"FIA World Rally Championship for Drivers", CategoryWRC, true},
		{"WRC2 Championship for Drivers", CategoryWRC2, true},
		{"WRC2 Challenger Championship for Drivers", CategoryWRC2C, true},
		{"FIA Junior WRC Championship for Drivers", CategoryJWRC, true},
		{"WRC3 Championship for Drivers", CategoryWRC3, true},
		{"WRC Masters Cup for Drivers", CategoryMCup, true},
		{"Something else", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CategoryFromName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChampionshipLookup(t *testing.T) {
	l := NewChampionshipLookup()
	l.Set(2024, CategoryWRC, ChampionshipDrivers, 999)
	l.AddFromChampionships(2024, []Championship{
		{ChampionshipID: 287, Name: "FIA World Rally Championship for Drivers", Type: ChampionshipDrivers},
		{ChampionshipID: 288, Name: "FIA World Rally Championship for Co-Drivers", Type: ChampionshipCodrivers},
		{ChampionshipID: 289, Name: "WRC2 Championship for Drivers", Type: ChampionshipDrivers},
	})

	id, ok := l.Drivers(2024, CategoryWRC)
	require.True(t, ok)
	assert.Equal(t, int64(999), id, "explicit value wins")

	id, ok = l.Get(2024, CategoryWRC, ChampionshipCodrivers)
	require.True(t, ok)
	assert.Equal(t, int64(288), id)

	id, ok = l.Drivers(2024, CategoryWRC2)
	require.True(t, ok)
	assert.Equal(t, int64(289), id)

	_, ok = l.Drivers(2023, CategoryWRC)
	assert.False(t, ok)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" WRC2 ")
	require.NoError(t, err)
	assert.Equal(t, CategoryWRC2, c)
	_, err = ParseCategory("rally1")
	assert.Error(t, err)
}

func TestEvent_IsLive(t *testing.T) {
	e := Event{
		StartDate:  "2024-05-09",
		FinishDate: "2024-05-12",
		TimeZoneID: null.From("Europe/Lisbon"),
	}
	loc := e.TimeLocation()
	assert.True(t, e.IsLive(time.Date(2024, 5, 9, 0, 0, 1, 0, loc)))
	assert.True(t, e.IsLive(time.Date(2024, 5, 12, 23, 59, 0, 0, loc)))
	assert.False(t, e.IsLive(time.Date(2024, 5, 13, 0, 0, 1, 0, loc)))
	assert.False(t, e.IsLive(time.Date(2024, 5, 8, 23, 59, 0, 0, loc)))
	assert.True(t, e.HasStarted(time.Date(2024, 6, 1, 0, 0, 0, 0, loc)))
}

func TestEvent_TimeLocationFallback(t *testing.T) {
	e := Event{TimeZoneOffset: null.From(int64(120))}
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, e.TimeLocation()).Zone()
	assert.Equal(t, 7200, offset)
	assert.Equal(t, time.UTC, (&Event{}).TimeLocation())
}

func TestEntry_Eligibility(t *testing.T) {
	e := Entry{Eligibility: null.From("M / T")}
	assert.Equal(t, []string{"M", "T"}, e.EligibilityFlags())
	assert.True(t, e.HasEligibility("m"))
	assert.False(t, (&Entry{}).HasEligibility("M"))
}
