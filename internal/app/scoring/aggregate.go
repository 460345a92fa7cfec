package scoring

import (
	"github.com/habit-king/habitking/internal/domain"
)

// ─── Score Aggregator ───────────────────────────────────────────────────────

// Engine ties the clock and policy together for per-user computations.
type Engine struct {
	Clock  *Clock
	Policy Policy
	table  BonusTable
}

// NewEngine creates an engine.
func NewEngine(clock *Clock, p Policy) *Engine {
	return &Engine{Clock: clock, Policy: p, table: p.BonusTable()}
}

// Table returns the productivity table.
func (e *Engine) Table() BonusTable { return e.table }

// Streak recomputes the user's streak as of today in their zone.
func (e *Engine) Streak(snap *domain.Snapshot) domain.StreakState {
	today := e.Clock.Today(snap.Account)
	ledger := NewLedger(snap, e.Clock.Location(snap.Account))
	return Recompute(snap.Account.ID, ledger.Series(ledger.First(), today), today)
}

// Awards derives every milestone the user has reached through the given
// date, merged with the persisted awards in snap.
func (e *Engine) Awards(snap *domain.Snapshot, through domain.Date) []domain.MilestoneAward {
	ledger := NewLedger(snap, e.Clock.Location(snap.Account))
	derived := Milestones(snap.Account.ID, ledger.Series(ledger.First(), through), through, e.Policy.Milestones)
	return MergeAwards(snap.Awards, derived)
}

// MonthlyTotal computes the user's summary for month m as of today.
// It always produces a summary; malformed records are skipped.
func (e *Engine) MonthlyTotal(snap *domain.Snapshot, m domain.Month, today domain.Date) domain.MonthlySummary {
	acct := snap.Account
	loc := e.Clock.Location(acct)
	ledger := NewLedger(snap, loc)

	sum := domain.MonthlySummary{
		UserID:      acct.ID,
		DisplayName: acct.DisplayName,
		Month:       m,
	}

	end := m.Last()
	if today.Before(end) {
		end = today
	}
	if end.Before(m.First()) {
		return sum
	}

	// Milestones need the streak history that led into the month.
	awards := MergeAwards(snap.Awards,
		Milestones(acct.ID, ledger.Series(ledger.First(), end), end, e.Policy.Milestones))
	streakOn := make(map[domain.Date]int)
	for _, a := range awards {
		if m.Contains(a.ReachedOn) {
			streakOn[a.ReachedOn] += a.Bonus
		}
	}

	goalOn := domain.Date{}
	if at, ok := snap.GoalBonuses[m]; ok {
		goalOn = domain.DateOf(at.In(loc))
		if goalOn.Before(m.First()) || goalOn.After(end) {
			goalOn = end
		}
	} else {
		for _, g := range snap.Goals {
			if g.Month == m && g.BonusAwarded {
				goalOn = end
				break
			}
		}
	}

	missFrom := m.First()
	if !acct.JoinedAt.IsZero() {
		if j := domain.DateOf(acct.JoinedAt.In(loc)); j.After(missFrom) {
			missFrom = j
		}
	}

	var studyHours float64
	for d := m.First(); !d.After(end); d = d.AddDays(1) {
		rec := ledger.Day(d)
		sum.HabitPoints += rec.HabitPoints
		studyHours += rec.StudyHours
		sum.TodosTotal += rec.TodosTotal
		sum.TodosCompleted += rec.TodosCompleted
		sum.TotalActivities += rec.Activities()
		sum.StreakBonus += streakOn[d]
		if !goalOn.IsZero() && !d.Before(goalOn) {
			sum.GoalBonus = e.Policy.GoalBonus
		}
		if d.Before(today) && !d.Before(missFrom) && !Qualifies(rec) {
			sum.MissedDays++
		}

		sum.StudyHours = studyHours
		e.total(&sum)
		if sum.PrimaryQualifiedOn.IsZero() && e.Policy.Win.Primary(sum) {
			sum.PrimaryQualifiedOn = d
		}
		if sum.BonusQualifiedOn.IsZero() && e.Policy.Win.Bonus(sum) {
			sum.BonusQualifiedOn = d
		}
	}

	// To-dos planned later in the month still count toward productivity.
	for d := end.AddDays(1); !d.After(m.Last()); d = d.AddDays(1) {
		rec := ledger.Day(d)
		sum.TodosTotal += rec.TodosTotal
		sum.TodosCompleted += rec.TodosCompleted
	}
	e.total(&sum)
	return sum
}

// total refreshes the derived fields of sum from its counters.
func (e *Engine) total(sum *domain.MonthlySummary) {
	sum.StudyPoints = 0
	if e.Policy.StudyPoints {
		sum.StudyPoints = sum.StudyHours
	}
	sum.TodoProductivity = Percent(sum.TodosCompleted, sum.TodosTotal)
	sum.TodoBonus = e.table.Bonus(sum.TodosCompleted, sum.TodosTotal)
	sum.TotalPoints = float64(sum.HabitPoints) + sum.StudyPoints +
		float64(sum.TodoBonus+sum.StreakBonus+sum.GoalBonus)
}

// MonthClosed reports whether m has fully passed for a user whose today is given.
func MonthClosed(m domain.Month, today domain.Date) bool {
	return today.After(m.Last())
}
