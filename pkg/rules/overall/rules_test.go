//nolint:funlen // ok for tests
package overall

import (
	"testing"

	"github.com/aarondl/opt/null"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
)

func TestNewLeaderScenario(t *testing.T) {
	prev := []Standing{
		{EntryID: 1, Position: 1},
		{EntryID: 2, Position: 2},
		{EntryID: 99, Position: 3},
	}
	curr := []Standing{
		{EntryID: 99, Position: 1, TimeToCarBehindS: null.From(4.2)},
		{EntryID: 1, Position: 2, DiffFirstS: null.From(4.2)},
		{EntryID: 2, Position: 3},
	}
	changes, leadChanged := Changes(curr, prev)
	require.Len(t, changes, 3)
	assert.True(t, leadChanged)
	assert.True(t, changes[0].NewLeader)
	assert.Equal(t, int64(2), changes[0].PosDelta)

	facts := NewEvaluator().Facts(&model.Stage{Code: "SS4"}, curr, prev)
	require.NotEmpty(t, facts)
	assert.Equal(t, "newLeader", facts[0].Rule)
	assert.Equal(t, int64(99), facts[0].EntryID)
	assert.Contains(t, facts[0].Remark, "into first place overall")
	assert.Contains(t, facts[0].Remark, "4.2")
	assert.InDelta(t, 1.0, facts[0].Confidence, 1e-9)

	assert.Equal(t, "lostLead", facts[1].Rule)
	assert.Equal(t, int64(1), facts[1].EntryID)
}

func TestPodiumChanges(t *testing.T) {
	prev := []Standing{
		{EntryID: 1, Position: 1}, {EntryID: 2, Position: 2},
		{EntryID: 3, Position: 3}, {EntryID: 4, Position: 4},
	}
	curr := []Standing{
		{EntryID: 1, Position: 1}, {EntryID: 2, Position: 2},
		{EntryID: 4, Position: 3}, {EntryID: 3, Position: 4},
	}
	facts := NewEvaluator().Facts(nil, curr, prev)
	require.Len(t, facts, 2)
	assert.Equal(t, Fact{EntryID: 4, Rule: "ontoPodium", Remark: "moved onto the podium in P3", Confidence: 1}, facts[0])
	assert.Equal(t, Fact{EntryID: 3, Rule: "lostPodium", Remark: "dropped off the podium to P4", Confidence: 1}, facts[1])
}

func TestLeadSize(t *testing.T) {
	prev := []Standing{{EntryID: 1, Position: 1, TimeToCarBehindS: null.From(3.0)}}
	tests := []struct {
		name     string
		behind   float64
		wantRule string
		wantConf float64
	}{
		{"extended", 5.5, "leadExtended", 0.5},
		{"reduced", 1.0, "leadReduced", 0.4},
		{"extended a lot", 13.0, "leadExtended", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curr := []Standing{{EntryID: 1, Position: 1, TimeToCarBehindS: null.From(tt.behind)}}
			facts := NewEvaluator().Facts(nil, curr, prev)
			require.Len(t, facts, 1)
			assert.Equal(t, tt.wantRule, facts[0].Rule)
			assert.InDelta(t, tt.wantConf, facts[0].Confidence, 1e-9)
		})
	}
	curr := []Standing{{EntryID: 1, Position: 1, TimeToCarBehindS: null.From(5.5)}}
	assert.Empty(t, NewEvaluator(WithMinConfidence(0.6)).Facts(nil, curr, prev))
}

func TestShakedownSkipped(t *testing.T) {
	prev := []Standing{{EntryID: 1, Position: 3}}
	curr := []Standing{{EntryID: 1, Position: 1}}
	assert.Empty(t, NewEvaluator().Facts(&model.Stage{Code: model.ShakedownCode}, curr, prev))
}

func TestFromStageOverall(t *testing.T) {
	rows := []model.StageOverall{
		{EntryID: 2, Position: null.From(int64(2)), DiffPrevMs: null.From(int64(4200)), DiffFirstMs: null.From(int64(4200))},
		{EntryID: 1, Position: null.From(int64(1)), TotalTimeMs: null.From(int64(600000))},
		{EntryID: 3, Position: null.From(int64(3)), DiffPrevMs: null.From(int64(1049))},
		{EntryID: 4},
	}
	got := FromStageOverall(rows)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].EntryID)
	assert.Equal(t, null.From(4.2), got[0].TimeToCarBehindS)
	assert.Equal(t, null.From(1.0), got[1].TimeToCarBehindS)
	assert.True(t, got[2].TimeToCarBehindS.IsNull())
	assert.Equal(t, null.From(600.0), got[0].TotalS)
}

func TestDropped(t *testing.T) {
	prev := []Standing{{EntryID: 1, Position: 1}, {EntryID: 2, Position: 2}, {EntryID: 5, Position: 5}}
	curr := []Standing{{EntryID: 1, Position: 1}}
	assert.Equal(t, []Standing{{EntryID: 2, Position: 2}, {EntryID: 5, Position: 5}}, Dropped(curr, prev))
}

func TestOntoPodiumWithoutPrevStanding(t *testing.T) {
	prev := []Standing{
		{EntryID: 1, Position: 1}, {EntryID: 2, Position: 2}, {EntryID: 3, Position: 3},
	}
	curr := []Standing{
		{EntryID: 1, Position: 1}, {EntryID: 2, Position: 2},
		{EntryID: 7, Position: 3}, {EntryID: 3, Position: 4},
	}
	changes, _ := Changes(curr, prev)
	require.Len(t, changes, 4)
	assert.False(t, changes[2].Prev.IsValue())
	assert.True(t, changes[2].OntoPodium)

	facts := NewEvaluator().Facts(nil, curr, prev)
	require.Len(t, facts, 2)
	assert.Equal(t, Fact{EntryID: 7, Rule: "ontoPodium", Remark: "moved onto the podium in P3", Confidence: 1}, facts[0])
	assert.Equal(t, "lostPodium", facts[1].Rule)
	assert.Equal(t, int64(3), facts[1].EntryID)
}

func TestDroppedPodiumEntries(t *testing.T) {
	prev := []Standing{
		{EntryID: 1, Position: 1}, {EntryID: 2, Position: 2},
		{EntryID: 3, Position: 3}, {EntryID: 4, Position: 4},
	}
	curr := []Standing{
		{EntryID: 1, Position: 1}, {EntryID: 3, Position: 2}, {EntryID: 4, Position: 3},
	}
	facts := NewEvaluator().Facts(nil, curr, prev)
	rules := lo.Map(facts, func(f Fact, _ int) string { return f.Rule })
	assert.Equal(t, []string{"ontoPodium", "lostPodium"}, rules)
	assert.Equal(t, Fact{
		EntryID:    2,
		Rule:       "lostPodium",
		Remark:     "dropped off the podium from P2, no longer classified",
		Confidence: 1,
	}, facts[1])

	// the retired leader loses the lead, the successor is the new leader
	curr = []Standing{{EntryID: 2, Position: 1}, {EntryID: 3, Position: 2}, {EntryID: 4, Position: 3}}
	facts = NewEvaluator().Facts(nil, curr, prev)
	rules = lo.Map(facts, func(f Fact, _ int) string { return f.Rule })
	assert.Equal(t, []string{"newLeader", "lostLead", "ontoPodium"}, rules)
	assert.Equal(t, int64(1), facts[1].EntryID)
	assert.Equal(t, "lost the lead, no longer classified", facts[1].Remark)
}
