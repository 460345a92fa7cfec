package scoring

import (
	"time"

	"github.com/habit-king/habitking/internal/domain"
)

// ─── Habit Edit Window ──────────────────────────────────────────────────────

// EditWindow decides when habits may be created or deleted.
// now is always the user's local time.
type EditWindow struct {
	DeleteWindow time.Duration
	GraceDays    int
	CreateDays   int
}

// CanDelete reports whether a member may delete h. Personal and Study habits
// are deletable shortly after creation or during the month's grace days;
// Team habits never are.
func (w EditWindow) CanDelete(h domain.Habit, now time.Time) bool {
	if h.Category == domain.CategoryTeam {
		return false
	}
	if now.Sub(h.CreatedAt) <= w.DeleteWindow {
		return true
	}
	return now.Day() <= w.GraceDays
}

// CanCreate reports whether habits may be created today.
func (w EditWindow) CanCreate(now time.Time) bool {
	return w.CreateDays <= 0 || now.Day() <= w.CreateDays
}
