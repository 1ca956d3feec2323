// Package patches provides side-car data the upstream sometimes omits.
// Currently these are the cumulative split point distances of stages and
// explicit championship ids.
package patches

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

var ErrInvalidDocument = errors.New("invalid patch document")

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

const (
	keySplitDistances = "split_distances"
	keyChampionships  = "championships"
)

// Patches holds the parsed document.
//
// split_distances: year -> rallyId -> stage code -> [km, km, ..., total]
// championships:   year -> short key -> championshipId (drivers)
type Patches struct {
	distances     map[int]map[int64]map[string][]float64
	championships map[int]map[model.Category]int64
}

func Empty() *Patches {
	return &Patches{
		distances:     map[int]map[int64]map[string][]float64{},
		championships: map[int]map[model.Category]int64{},
	}
}

// Load reads the document at path. Files ending with .yml or .yaml are
// parsed as YAML, everything else as JSON. An empty path yields no patches.
func Load(path string) (*Patches, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		format = FormatYAML
	}
	return Parse(data, format)
}

func Parse(data []byte, format Format) (*Patches, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	default:
		v, err := oj.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		doc = v
	}
	return fromDocument(doc)
}

//nolint:gocognit // walking a nested document
func fromDocument(doc any) (*Patches, error) {
	ret := Empty()
	if doc == nil {
		return ret, nil
	}
	root, ok := asMap(doc)
	if !ok {
		return nil, fmt.Errorf("%w: root must be an object", ErrInvalidDocument)
	}
	if raw, exists := root[keySplitDistances]; exists {
		years, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidDocument, keySplitDistances)
		}
		for y, rallies := range years {
			year, err := strconv.Atoi(y)
			if err != nil {
				return nil, fmt.Errorf("%w: year %q", ErrInvalidDocument, y)
			}
			byRally, ok := asMap(rallies)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s must be an object", ErrInvalidDocument, keySplitDistances, y)
			}
			for r, stages := range byRally {
				rallyID, err := strconv.ParseInt(r, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: rallyId %q", ErrInvalidDocument, r)
				}
				byCode, ok := asMap(stages)
				if !ok {
					return nil, fmt.Errorf("%w: %s.%s.%s must be an object", ErrInvalidDocument, keySplitDistances, y, r)
				}
				for code, list := range byCode {
					dists, err := asFloats(list)
					if err != nil {
						return nil, fmt.Errorf("%w: %s/%s/%s: %w", ErrInvalidDocument, y, r, code, err)
					}
					ret.SetSplitDistances(year, rallyID, code, dists)
				}
			}
		}
	}
	if raw, exists := root[keyChampionships]; exists {
		years, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidDocument, keyChampionships)
		}
		for y, keys := range years {
			year, err := strconv.Atoi(y)
			if err != nil {
				return nil, fmt.Errorf("%w: year %q", ErrInvalidDocument, y)
			}
			byKey, ok := asMap(keys)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s must be an object", ErrInvalidDocument, keyChampionships, y)
			}
			for k, v := range byKey {
				cat, err := model.ParseCategory(k)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
				}
				id, ok := tabular.AsInt64(v)
				if !ok {
					return nil, fmt.Errorf("%w: championship id %v", ErrInvalidDocument, v)
				}
				if ret.championships[year] == nil {
					ret.championships[year] = map[model.Category]int64{}
				}
				ret.championships[year][cat] = id
			}
		}
	}
	return ret, nil
}

// yaml produces map[any]any for non-string keys (e.g. unquoted years)
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		ret := make(map[string]any, len(m))
		for k, val := range m {
			ret[fmt.Sprint(k)] = val
		}
		return ret, true
	default:
		return nil, false
	}
}

func asFloats(v any) ([]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New("distances must be a list")
	}
	ret := make([]float64, len(list))
	prev := 0.0
	for i, item := range list {
		f, ok := tabular.AsFloat64(item)
		if !ok {
			return nil, fmt.Errorf("distance %v is not a number", item)
		}
		if f < prev {
			return nil, fmt.Errorf("distances must be cumulative (%v < %v)", f, prev)
		}
		ret[i] = f
		prev = f
	}
	return ret, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (p *Patches) SetSplitDistances(
	year int, rallyID int64, code string, cumulative []float64,
) {
	byRally, ok := p.distances[year]
	if !ok {
		byRally = map[int64]map[string][]float64{}
		p.distances[year] = byRally
	}
	byCode, ok := byRally[rallyID]
	if !ok {
		byCode = map[string][]float64{}
		byRally[rallyID] = byCode
	}
	byCode[strings.ToUpper(code)] = cumulative
}

// SplitDistances returns the cumulative distances (split points and total)
// of a stage.
//
//nolint:whitespace // can't make both editor and linter happy
func (p *Patches) SplitDistances(
	year int, rallyID int64, code string,
) ([]float64, bool) {
	if p == nil {
		return nil, false
	}
	d, ok := p.distances[year][rallyID][strings.ToUpper(code)]
	if !ok || len(d) == 0 {
		return nil, false
	}
	return d, true
}

// SectionDistances returns the length of each split section of a stage
//
//nolint:whitespace // can't make both editor and linter happy
func (p *Patches) SectionDistances(
	year int, rallyID int64, code string,
) ([]float64, bool) {
	d, ok := p.SplitDistances(year, rallyID, code)
	if !ok {
		return nil, false
	}
	return timing.SectionDistances(d), true
}

// ApplyChampionships registers the championship ids of the document
// as drivers championships. These take precedence over ids derived by name
// when applied first.
func (p *Patches) ApplyChampionships(l *model.ChampionshipLookup) {
	if p == nil {
		return
	}
	for year, byCat := range p.championships {
		for cat, id := range byCat {
			l.Set(year, cat, model.ChampionshipDrivers, id)
		}
	}
}
