package overall

import (
	"fmt"
	"math"

	"github.com/mpapenbr/wrc-timing-go/pkg/model"
)

// Rule maps a change to a remark (empty if the rule does not apply) and a
// confidence in [0,1]. Dropped is optional and is applied to the previous
// standings of entries missing in the current standings.
type Rule struct {
	Name    string
	Apply   func(c *Change) (remark string, confidence float64)
	Dropped func(prev Standing) (remark string, confidence float64)
}

// Fact is a remark emitted by a rule for an entry
type Fact struct {
	EntryID    int64
	Rule       string
	Remark     string
	Confidence float64
}

// leadSizeScale is the lead change (seconds) considered a certain remark
const leadSizeScale = 5.0

// DefaultRules are applied in this order: leader changes, podium changes, lead size
var DefaultRules = []Rule{
	{Name: "newLeader", Apply: newLeader},
	{Name: "lostLead", Apply: lostLead, Dropped: droppedLeader},
	{Name: "ontoPodium", Apply: ontoPodium},
	{Name: "lostPodium", Apply: lostPodium, Dropped: droppedFromPodium},
	{Name: "leadExtended", Apply: leadExtended},
	{Name: "leadReduced", Apply: leadReduced},
}

type Option func(*Evaluator)

func WithRules(rules ...Rule) Option {
	return func(e *Evaluator) {
		e.rules = rules
	}
}

func WithMinConfidence(v float64) Option {
	return func(e *Evaluator) {
		e.minConfidence = v
	}
}

type Evaluator struct {
	rules         []Rule
	minConfidence float64
}

func NewEvaluator(opts ...Option) *Evaluator {
	ret := &Evaluator{rules: DefaultRules}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Facts applies the rules to the standings after stage curr and the
// previous stage. Shakedown produces no facts. Facts are ordered by rule,
// then by current position. Dropped entries follow the changes of a rule.
//
//nolint:whitespace // can't make both editor and linter happy
func (e *Evaluator) Facts(
	stage *model.Stage, curr, prev []Standing,
) []Fact {
	if stage != nil && stage.IsShakedown() {
		return []Fact{}
	}
	changes, _ := Changes(curr, prev)
	dropped := Dropped(curr, prev)
	ret := make([]Fact, 0)
	add := func(r *Rule, entryID int64, remark string, conf float64) {
		if remark == "" || conf < e.minConfidence {
			return
		}
		ret = append(ret, Fact{
			EntryID:    entryID,
			Rule:       r.Name,
			Remark:     remark,
			Confidence: conf,
		})
	}
	for idx := range e.rules {
		r := &e.rules[idx]
		for i := range changes {
			remark, conf := r.Apply(&changes[i])
			add(r, changes[i].EntryID, remark, conf)
		}
		if r.Dropped == nil {
			continue
		}
		for _, p := range dropped {
			remark, conf := r.Dropped(p)
			add(r, p.EntryID, remark, conf)
		}
	}
	return ret
}

func newLeader(c *Change) (string, float64) {
	if !c.NewLeader {
		return "", 0
	}
	if ahead, ok := c.Curr.TimeToCarBehindS.Get(); ok {
		return fmt.Sprintf("moved into first place overall, %.1fs ahead", ahead), 1
	}
	return "moved into first place overall", 1
}

func lostLead(c *Change) (string, float64) {
	if !c.PrevLeader || c.CurrLeader {
		return "", 0
	}
	if gap, ok := c.Curr.DiffFirstS.Get(); ok {
		return fmt.Sprintf("lost the lead, now P%d %.1fs behind", c.Curr.Position, gap), 1
	}
	return fmt.Sprintf("lost the lead, now P%d", c.Curr.Position), 1
}

func ontoPodium(c *Change) (string, float64) {
	if !c.OntoPodium || c.NewLeader {
		return "", 0
	}
	return fmt.Sprintf("moved onto the podium in P%d", c.Curr.Position), 1
}

func lostPodium(c *Change) (string, float64) {
	if !c.LostPodium || c.PrevLeader {
		return "", 0
	}
	return fmt.Sprintf("dropped off the podium to P%d", c.Curr.Position), 1
}

func droppedLeader(p Standing) (string, float64) {
	if p.Position != 1 {
		return "", 0
	}
	return "lost the lead, no longer classified", 1
}

func droppedFromPodium(p Standing) (string, float64) {
	if p.Position == 1 || p.Position > podiumPositions {
		return "", 0
	}
	return fmt.Sprintf("dropped off the podium from P%d, no longer classified", p.Position), 1
}

// lead size rules only apply to an unchanged leader
func leadExtended(c *Change) (string, float64) {
	d, ok := leadDelta(c)
	if !ok || d >= 0 {
		return "", 0
	}
	return fmt.Sprintf("extended the lead by %.1fs to %.1fs",
		-d, c.Curr.TimeToCarBehindS.GetOrZero()), leadConfidence(d)
}

func leadReduced(c *Change) (string, float64) {
	d, ok := leadDelta(c)
	if !ok || d <= 0 {
		return "", 0
	}
	return fmt.Sprintf("lead reduced by %.1fs to %.1fs",
		d, c.Curr.TimeToCarBehindS.GetOrZero()), leadConfidence(d)
}

func leadDelta(c *Change) (float64, bool) {
	if !c.CurrLeader || !c.PrevLeader {
		return 0, false
	}
	return c.TimeToCarBehindDelta.Get()
}

func leadConfidence(d float64) float64 {
	return math.Min(1, math.Abs(d)/leadSizeScale)
}
