package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is the championship short key
type Category string

const (
	CategoryAll   Category = "all"
	CategoryWRC   Category = "wrc"
	CategoryWRC2  Category = "wrc2"
	CategoryWRC3  Category = "wrc3"
	CategoryJWRC  Category = "jwrc"
	CategoryWRC2C Category = "wrc2c"
	CategoryMCup  Category = "mcup"
)

var Categories = []Category{
	CategoryAll, CategoryWRC, CategoryWRC2, CategoryWRC3,
	CategoryJWRC, CategoryWRC2C, CategoryMCup,
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown championship key %q", s)
}

// ordered: more specific patterns first
var categoryPatterns = []struct {
	cat Category
	re  *regexp.Regexp
}{
	{CategoryWRC2C, regexp.MustCompile(`(?i)wrc2 challenger|wrc2c`)},
	{CategoryJWRC, regexp.MustCompile(`(?i)junior|jwrc`)},
	{CategoryWRC3, regexp.MustCompile(`(?i)wrc3`)},
	{CategoryWRC2, regexp.MustCompile(`(?i)wrc2`)},
	{CategoryMCup, regexp.MustCompile(`(?i)masters`)},
	{CategoryWRC, regexp.MustCompile(`(?i)world rally championship`)},
}

// CategoryFromName derives the short key from the official championship name.
func CategoryFromName(name string) (Category, bool) {
	for _, p := range categoryPatterns {
		if p.re.MatchString(name) {
			return p.cat, true
		}
	}
	return "", false
}

// ChampionshipLookup resolves (year, shortKey) to upstream championship ids.
// Each key holds the ids per championship type (drivers, codrivers, ...).
type ChampionshipLookup struct {
	data map[int]map[Category]map[ChampionshipType]int64
}

func NewChampionshipLookup() *ChampionshipLookup {
	return &ChampionshipLookup{data: make(map[int]map[Category]map[ChampionshipType]int64)}
}

//nolint:whitespace // can't make both editor and linter happy
func (l *ChampionshipLookup) Set(
	year int, cat Category, typ ChampionshipType, id int64,
) {
	byCat, ok := l.data[year]
	if !ok {
		byCat = make(map[Category]map[ChampionshipType]int64)
		l.data[year] = byCat
	}
	byType, ok := byCat[cat]
	if !ok {
		byType = make(map[ChampionshipType]int64)
		byCat[cat] = byType
	}
	byType[typ] = id
}

// AddFromChampionships registers the championships of the season by name.
// Existing entries are kept, so explicit overrides win.
func (l *ChampionshipLookup) AddFromChampionships(year int, items []Championship) {
	for i := range items {
		cat, ok := CategoryFromName(items[i].Name)
		if !ok {
			continue
		}
		if _, exists := l.Get(year, cat, items[i].Type); exists {
			continue
		}
		l.Set(year, cat, items[i].Type, items[i].ChampionshipID)
	}
}

//nolint:whitespace // can't make both editor and linter happy
func (l *ChampionshipLookup) Get(
	year int, cat Category, typ ChampionshipType,
) (int64, bool) {
	id, ok := l.data[year][cat][typ]
	return id, ok
}

// Drivers is the common case used for stage results
func (l *ChampionshipLookup) Drivers(year int, cat Category) (int64, bool) {
	return l.Get(year, cat, ChampionshipDrivers)
}
