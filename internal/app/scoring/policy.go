// Package scoring is the Habit King rule engine: day qualification, streaks,
// the productivity table, monthly totals, edit windows and winner selection.
// Everything here is pure computation over already-fetched records.
package scoring

import (
	"time"

	"github.com/habit-king/habitking/internal/domain"
)

// Policy carries every tunable threshold of the engine.
type Policy struct {
	// Habit edit window
	DeleteWindow    time.Duration
	DeleteGraceDays int // habits deletable on days 1..N of the month
	CreateDays      int // 0 = create any day, N = days 1..N only

	// Capacity
	MaxPersonal int
	MaxStudy    int
	MaxGoals    int

	// Goals
	GoalEditLastDay int
	GoalBonus       int

	// Study hours convert 1:1 into points when set.
	StudyPoints bool

	Milestones []domain.Milestone
	Tiers      []Tier
	Win        WinRules

	FallbackZone string
}

// WinRules are the Primary and Bonus path thresholds.
// Productivity values are whole percents compared against the exact ratio.
type WinRules struct {
	PrimaryMinProductivity int     `toml:"primary_min_productivity"`
	PrimaryMaxMissed       int     `toml:"primary_max_missed"`
	MinActivities          int     `toml:"min_activities"`
	BonusMinPoints         float64 `toml:"bonus_min_points"`
	BonusMinProductivity   int     `toml:"bonus_min_productivity"`
}

// DefaultMilestones are the streak lengths that pay a one-time bonus.
func DefaultMilestones() []domain.Milestone {
	return []domain.Milestone{
		{Threshold: 7, Bonus: 2},
		{Threshold: 14, Bonus: 5},
		{Threshold: 21, Bonus: 10},
		{Threshold: 30, Bonus: 20},
	}
}

// DefaultTiers is the to-do productivity table.
func DefaultTiers() []Tier {
	return []Tier{
		{Floor: 85, Bonus: 20},
		{Floor: 75, Bonus: 15},
		{Floor: 65, Bonus: 10},
		{Floor: 50, Bonus: 5},
	}
}

// DefaultPolicy returns the production rules.
func DefaultPolicy() Policy {
	return Policy{
		DeleteWindow:    time.Hour,
		DeleteGraceDays: 3,
		CreateDays:      0,
		MaxPersonal:     10,
		MaxStudy:        5,
		MaxGoals:        5,
		GoalEditLastDay: 4,
		GoalBonus:       15,
		StudyPoints:     true,
		Milestones:      DefaultMilestones(),
		Tiers:           DefaultTiers(),
		Win: WinRules{
			PrimaryMinProductivity: 65,
			PrimaryMaxMissed:       3,
			MinActivities:          130,
			BonusMinPoints:         260,
			BonusMinProductivity:   80,
		},
		FallbackZone: "Africa/Lagos",
	}
}

// EditWindow returns the habit edit window configured by p.
func (p Policy) EditWindow() EditWindow {
	return EditWindow{
		DeleteWindow: p.DeleteWindow,
		GraceDays:    p.DeleteGraceDays,
		CreateDays:   p.CreateDays,
	}
}

// GoalWindow returns the monthly goal window configured by p.
func (p Policy) GoalWindow() GoalWindow {
	return GoalWindow{LastDay: p.GoalEditLastDay, Slots: p.MaxGoals}
}

// BonusTable returns the productivity table configured by p.
func (p Policy) BonusTable() BonusTable {
	return NewBonusTable(p.Tiers)
}
