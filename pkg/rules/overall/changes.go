package overall

import (
	"github.com/aarondl/opt/null"
	"github.com/samber/lo"

	"github.com/mpapenbr/wrc-timing-go/pkg/timing"
)

const podiumPositions = 3

// Change holds the derived values of an entry between two standings.
// Deltas are prev - curr.
type Change struct {
	EntryID              int64
	Curr                 Standing
	Prev                 null.Val[Standing]
	PosDelta             int64
	GapDelta             null.Val[float64]
	DiffDelta            null.Val[float64]
	TimeToCarBehindDelta null.Val[float64]
	CurrPodium           bool
	PrevPodium           bool
	CurrLeader           bool
	PrevLeader           bool
	OntoPodium           bool
	LostPodium           bool
	NewLeader            bool
}

// Changes joins curr and prev by entry. Entries only present in prev are
// omitted, see Dropped. Entries new in curr have no prev standing, a zero
// PosDelta and count as not being on the podium before.
// The second return value reports whether any entry became the new leader.
func Changes(curr, prev []Standing) (changes []Change, leadChanged bool) {
	prevByEntry := lo.SliceToMap(prev, func(s Standing) (int64, Standing) {
		return s.EntryID, s
	})
	changes = make([]Change, 0, len(curr))
	for _, c := range curr {
		ch := Change{
			EntryID:    c.EntryID,
			Curr:       c,
			CurrPodium: c.Position <= podiumPositions,
			CurrLeader: c.Position == 1,
		}
		if p, ok := prevByEntry[c.EntryID]; ok {
			ch.Prev = null.From(p)
			ch.PosDelta = p.Position - c.Position
			ch.GapDelta = delta(p.DiffFirstS, c.DiffFirstS)
			ch.DiffDelta = delta(p.DiffPrevS, c.DiffPrevS)
			ch.TimeToCarBehindDelta = delta(p.TimeToCarBehindS, c.TimeToCarBehindS)
			ch.PrevPodium = p.Position <= podiumPositions
			ch.PrevLeader = p.Position == 1
		}
		ch.OntoPodium = !ch.PrevPodium && ch.CurrPodium
		ch.LostPodium = ch.PrevPodium && !ch.CurrPodium
		ch.NewLeader = ch.CurrLeader && ch.PosDelta != 0
		leadChanged = leadChanged || ch.NewLeader
		changes = append(changes, ch)
	}
	return changes, leadChanged
}

// Dropped lists the standings of prev whose entry is missing in curr
// (e.g. retired), ordered by the previous position.
func Dropped(curr, prev []Standing) []Standing {
	inCurr := lo.SliceToMap(curr, func(s Standing) (int64, bool) { return s.EntryID, true })
	return lo.Filter(prev, func(p Standing, _ int) bool { return !inCurr[p.EntryID] })
}

func delta(prev, curr null.Val[float64]) null.Val[float64] {
	p, ok1 := prev.Get()
	c, ok2 := curr.Get()
	if !ok1 || !ok2 {
		return null.Val[float64]{}
	}
	return null.From(timing.Round1(p - c))
}
