//nolint:funlen // ok for tests
package tabular

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	data, err := oj.ParseString(s)
	require.NoError(t, err)
	return data
}

func TestFlat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		addCols  []string
		wantCols []string
		wantRows [][]any
	}{
		{
			name:     "regular",
			input:    `{"fields":["a","b"],"values":[[1,"x"],[2,"y"]]}`,
			wantCols: []string{"a", "b"},
			wantRows: [][]any{{int64(1), "x"}, {int64(2), "y"}},
		},
		{
			name:     "short rows padded",
			input:    `{"fields":["a","b","STATUS"],"values":[[1,"x"],[2]]}`,
			wantCols: []string{"a", "b", "STATUS"},
			wantRows: [][]any{{int64(1), "x", ""}, {int64(2), "", ""}},
		},
		{
			name:     "no values",
			input:    `{"fields":["a"]}`,
			wantCols: []string{"a"},
			wantRows: [][]any{},
		},
		{
			name:     "added columns",
			input:    `{"fields":["a","b"],"values":[[1,"x"],[2]]}`,
			addCols:  []string{"stageId", "a"},
			wantCols: []string{"a", "b", "stageId"},
			wantRows: [][]any{{int64(1), "x", nil}, {int64(2), "", nil}},
		},
		{
			name:     "fields missing",
			input:    `{"status":"Not Found"}`,
			wantCols: []string{},
			wantRows: [][]any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flat(mustParse(t, tt.input), tt.addCols...)
			assert.Equal(t, tt.wantCols, got.Columns)
			if diff := cmp.Diff(tt.wantRows, got.Rows); diff != "" {
				t.Errorf("Flat() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsFlat(t *testing.T) {
	assert.True(t, IsFlat(mustParse(t, `{"fields":["a"],"values":[]}`)))
	assert.False(t, IsFlat(mustParse(t, `[{"a":1}]`)))
	assert.False(t, IsFlat(mustParse(t, `{"status":"Not Found"}`)))
}

func TestNested(t *testing.T) {
	input := `{"fields":["pos","car"],"values":[
		{"split":[[1,"11"],[2]],"splitNo":1,"dist":4.5},
		{"split":[[1,"8"]],"splitNo":2}
	]}`
	got := Nested(mustParse(t, input), "split", "splitNo", "dist")
	assert.Equal(t, []string{"pos", "car", "splitNo", "dist"}, got.Columns)
	want := [][]any{
		{int64(1), "11", int64(1), 4.5},
		{int64(2), "", int64(1), 4.5},
		{int64(1), "8", int64(2), nil},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("Nested() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, Nested(nil, "split").IsEmpty())
}

func TestFromRecords(t *testing.T) {
	input := `[
		{"entryId":1,"identifier":"11","driver":{"fullName":"A B","personId":7},"tags":[1]},
		{"entryId":2,"identifier":"8","priority":"P1"}
	]`
	got := FromRecords(mustParse(t, input), "driver")
	assert.Equal(t,
		[]string{"driver.fullName", "driver.personId", "entryId", "identifier", "priority"},
		got.Columns)
	assert.Equal(t, "A B", got.Row(0).String("driver.fullName"))
	assert.Nil(t, got.Row(0).Get("priority"))
	assert.Equal(t, "P1", got.Row(1).String("priority"))
	assert.False(t, got.Has("tags"))

	single := FromRecords(mustParse(t, `{"seasonId":5}`))
	assert.Equal(t, 1, single.Len())
}

func TestFlattenObjects(t *testing.T) {
	input := `{"itineraryLegs":[
		{"itineraryLegId":1,"itinerarySections":[{"itinerarySectionId":10,"stages":[{"stageId":100},{"stageId":101}]}]},
		{"itineraryLegId":2,"itinerarySections":[{"itinerarySectionId":20,"stages":[{"stageId":200}]}]}
	]}`
	got, err := FlattenObjects(mustParse(t, input), "$.itineraryLegs[*].itinerarySections[*].stages[*]")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(100), int64(101), int64(200)}, got.Column("stageId"))

	_, err = FlattenObjects(nil, "$.x[1")
	assert.Error(t, err)
}
