package scoring

import (
	"math"
	"sort"
)

// ─── Productivity Bonus Table ───────────────────────────────────────────────

// Tier is an inclusive productivity floor (whole percent) and its bonus.
type Tier struct {
	Floor int `toml:"floor" json:"floor"`
	Bonus int `toml:"bonus" json:"bonus"`
}

// BonusTable maps a to-do completion ratio to a single bonus tier.
type BonusTable struct {
	tiers []Tier // highest floor first
}

// NewBonusTable copies and sorts tiers.
func NewBonusTable(tiers []Tier) BonusTable {
	t := append([]Tier(nil), tiers...)
	sort.Slice(t, func(i, j int) bool { return t[i].Floor > t[j].Floor })
	return BonusTable{tiers: t}
}

// meets compares completed/total against floor% without rounding.
func meets(completed, total, floor int) bool {
	if total <= 0 {
		return floor <= 0
	}
	return completed*100 >= floor*total
}

// Bonus returns the bonus of the highest tier the ratio reaches.
func (b BonusTable) Bonus(completed, total int) int {
	for _, t := range b.tiers {
		if meets(completed, total, t.Floor) {
			return t.Bonus
		}
	}
	return 0
}

// BonusForPercent looks up an already computed percentage.
func (b BonusTable) BonusForPercent(p float64) int {
	for _, t := range b.tiers {
		if p >= float64(t.Floor) {
			return t.Bonus
		}
	}
	return 0
}

// Percent is completed/total as a percentage rounded to one decimal.
func Percent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed)*1000/float64(total)) / 10
}

// TierHint describes the next tier above the current ratio.
type TierHint struct {
	Floor       int  `json:"floor"`
	Bonus       int  `json:"bonus"`
	TasksNeeded int  `json:"tasks_needed"`
	MaxReached  bool `json:"max_reached"`
}

// NextTier reports the lowest tier not yet reached and how many more of the
// month's existing to-dos must be completed to reach it.
func (b BonusTable) NextTier(completed, total int) TierHint {
	for i := len(b.tiers) - 1; i >= 0; i-- {
		t := b.tiers[i]
		if meets(completed, total, t.Floor) {
			continue
		}
		need := (t.Floor*total+99)/100 - completed
		if need < 0 {
			need = 0
		}
		return TierHint{Floor: t.Floor, Bonus: t.Bonus, TasksNeeded: need}
	}
	return TierHint{MaxReached: true}
}
