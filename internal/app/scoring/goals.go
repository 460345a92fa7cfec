package scoring

import (
	"github.com/habit-king/habitking/internal/domain"
)

// ─── Monthly Goal Window ────────────────────────────────────────────────────

// GoalWindow gates goal edits to the first days of the month and detects the
// all-slots-complete bonus edge.
type GoalWindow struct {
	LastDay int // edits allowed on days 1..LastDay
	Slots   int // goals per month; the bonus needs all of them
}

// CanEdit reports whether goal text may be created, edited or deleted on the
// given day of the month.
func (w GoalWindow) CanEdit(dayOfMonth int) bool {
	return dayOfMonth >= 1 && dayOfMonth <= w.LastDay
}

// ApplyToggle flips goal id inside the month's goals and reports whether the
// one-time bonus fires: every slot is filled and complete after the flip and
// the bonus has not been awarded yet. Unchecking never retracts.
func (w GoalWindow) ApplyToggle(goals []domain.MonthlyGoal, id string, awarded bool) (domain.MonthlyGoal, bool, error) {
	var toggled *domain.MonthlyGoal
	for i := range goals {
		if goals[i].ID == id {
			goals[i].Completed = !goals[i].Completed
			toggled = &goals[i]
			break
		}
	}
	if toggled == nil {
		return domain.MonthlyGoal{}, false, domain.ErrGoalNotFound
	}
	if awarded || !toggled.Completed {
		return *toggled, false, nil
	}
	return *toggled, w.AllComplete(goals), nil
}

// AllComplete reports whether every slot holds a completed goal.
func (w GoalWindow) AllComplete(goals []domain.MonthlyGoal) bool {
	if w.Slots <= 0 || len(goals) < w.Slots {
		return false
	}
	for _, g := range goals {
		if !g.Completed {
			return false
		}
	}
	return true
}
