package patches

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
)

const sampleJSON = `{
	"split_distances": {
		"2024": {
			"2000": {"SS1": [3.4, 8.1, 12.5], "ss2": [4.0, 8.0]}
		}
	},
	"championships": {"2024": {"wrc": 287, "wrc2": 289}}
}`

const sampleYAML = `
split_distances:
  2024:
    2000:
      SS1: [3.4, 8.1, 12.5]
championships:
  2024:
    wrc: 287
`

func TestParseJSON(t *testing.T) {
	p, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	d, ok := p.SplitDistances(2024, 2000, "ss1")
	require.True(t, ok)
	assert.Equal(t, []float64{3.4, 8.1, 12.5}, d)

	sec, ok := p.SectionDistances(2024, 2000, "SS1")
	require.True(t, ok)
	assert.Equal(t, []float64{3.4, 4.7, 4.4}, sec)

	sec, ok = p.SectionDistances(2024, 2000, "SS2")
	require.True(t, ok)
	assert.Equal(t, []float64{4.0, 4.0}, sec)

	_, ok = p.SectionDistances(2024, 2000, "SS3")
	assert.False(t, ok)
	_, ok = p.SectionDistances(2023, 2000, "SS1")
	assert.False(t, ok)

	l := model.NewChampionshipLookup()
	p.ApplyChampionships(l)
	id, ok := l.Drivers(2024, model.CategoryWRC2)
	require.True(t, ok)
	assert.Equal(t, int64(289), id)
}

func TestParseYAML(t *testing.T) {
	p, err := Parse([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)
	sec, ok := p.SectionDistances(2024, 2000, "SS1")
	require.True(t, ok)
	assert.Equal(t, []float64{3.4, 4.7, 4.4}, sec)
	l := model.NewChampionshipLookup()
	p.ApplyChampionships(l)
	id, ok := l.Drivers(2024, model.CategoryWRC)
	require.True(t, ok)
	assert.Equal(t, int64(287), id)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"split_distances": `},
		{"root list", `[1,2]`},
		{"year", `{"split_distances": {"abc": {}}}`},
		{"rally", `{"split_distances": {"2024": {"x": {}}}}`},
		{"list", `{"split_distances": {"2024": {"1": {"SS1": 3.4}}}}`},
		{"number", `{"split_distances": {"2024": {"1": {"SS1": ["a"]}}}}`},
		{"not cumulative", `{"split_distances": {"2024": {"1": {"SS1": [5, 3]}}}}`},
		{"championship key", `{"championships": {"2024": {"rally1": 1}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatJSON)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "patches.yml")
	require.NoError(t, os.WriteFile(yml, []byte(sampleYAML), 0o600))
	p, err := Load(yml)
	require.NoError(t, err)
	_, ok := p.SplitDistances(2024, 2000, "SS1")
	assert.True(t, ok)

	p, err = Load("")
	require.NoError(t, err)
	_, ok = p.SplitDistances(2024, 2000, "SS1")
	assert.False(t, ok)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
