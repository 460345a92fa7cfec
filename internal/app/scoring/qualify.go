package scoring

import (
	"math"
	"time"

	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/logger"
)

// ─── Daily Qualification ────────────────────────────────────────────────────

// DayRecord is one user's activity on one date.
type DayRecord struct {
	Date domain.Date

	TeamRequired      int // Team habits that existed on Date
	TeamCompleted     int
	PersonalHabits    int
	PersonalCompleted int
	TodosTotal        int
	TodosCompleted    int

	HabitPoints int     // Team point values + 1 per Personal completion
	StudyHours  float64 // floored to the half hour per log
	Completions int     // completed habit logs (Study counts when hours > 0)
}

// Logged reports whether anything was recorded on the day.
func (d DayRecord) Logged() bool {
	return d.Completions > 0 || d.TodosTotal > 0
}

// Activities is the raw activity volume of the day.
func (d DayRecord) Activities() int {
	return d.Completions + d.TodosCompleted
}

// Qualifies reports whether the day counts toward a streak. Each clause is
// vacuously true when the category is empty; an unlogged day never counts.
func Qualifies(d DayRecord) bool {
	if !d.Logged() {
		return false
	}
	team := d.TeamCompleted >= d.TeamRequired
	personal := d.PersonalHabits == 0 || d.PersonalCompleted > 0
	todos := d.TodosTotal == 0 || d.TodosCompleted > 0
	return team && personal && todos
}

// Ledger indexes one user's snapshot by calendar date.
type Ledger struct {
	habits  map[string]domain.Habit
	spans   map[string]span
	logs    map[domain.Date][]domain.HabitLog
	todos   map[domain.Date][]domain.Todo
	first   domain.Date
}

// span is the date range a habit applies on: from inclusive, until
// exclusive (zero until = still active).
type span struct {
	from, until domain.Date
}

func (s span) covers(d domain.Date) bool {
	if s.from.After(d) {
		return false
	}
	return s.until.IsZero() || d.Before(s.until)
}

// habitSpan starts at the later of the habit's creation and the user's
// joining its group, and ends on the deletion date.
func habitSpan(h domain.Habit, loc *time.Location) span {
	sp := span{from: domain.DateOf(h.CreatedAt.In(loc))}
	if !h.MemberSince.IsZero() {
		if joined := domain.DateOf(h.MemberSince.In(loc)); joined.After(sp.from) {
			sp.from = joined
		}
	}
	if !h.DeletedAt.IsZero() {
		sp.until = domain.DateOf(h.DeletedAt.In(loc))
	}
	return sp
}

// NewLedger indexes snap. Habit instants are converted to dates in loc.
// Logs for unknown habits, logs dated on or after their habit's deletion and
// logs with invalid hours are skipped.
func NewLedger(snap *domain.Snapshot, loc *time.Location) *Ledger {
	l := &Ledger{
		habits: make(map[string]domain.Habit, len(snap.Habits)),
		spans:  make(map[string]span, len(snap.Habits)),
		logs:   make(map[domain.Date][]domain.HabitLog),
		todos:  make(map[domain.Date][]domain.Todo),
	}
	for _, h := range snap.Habits {
		l.habits[h.ID] = h
		l.spans[h.ID] = habitSpan(h, loc)
	}
	for _, lg := range snap.Logs {
		h, ok := l.habits[lg.HabitID]
		if !ok {
			logger.Warn("skipping log for unknown habit",
				"user", snap.Account.ID, "habit", lg.HabitID, "date", lg.LogDate)
			continue
		}
		if sp := l.spans[lg.HabitID]; !sp.until.IsZero() && !lg.LogDate.Before(sp.until) {
			continue
		}
		if h.Category == domain.CategoryStudy && (lg.Hours < 0 || math.IsNaN(lg.Hours)) {
			logger.Warn("skipping study log with invalid hours",
				"user", snap.Account.ID, "habit", lg.HabitID, "hours", lg.Hours)
			continue
		}
		l.logs[lg.LogDate] = append(l.logs[lg.LogDate], lg)
		l.touch(lg.LogDate)
	}
	for _, td := range snap.Todos {
		l.todos[td.TaskDate] = append(l.todos[td.TaskDate], td)
		l.touch(td.TaskDate)
	}
	return l
}

func (l *Ledger) touch(d domain.Date) {
	if l.first.IsZero() || d.Before(l.first) {
		l.first = d
	}
}

// First is the earliest date with any log or to-do (zero when empty).
func (l *Ledger) First() domain.Date { return l.first }

// Day builds the record for d.
func (l *Ledger) Day(d domain.Date) DayRecord {
	rec := DayRecord{Date: d}

	for id, h := range l.habits {
		if !l.spans[id].covers(d) {
			continue
		}
		switch h.Category {
		case domain.CategoryTeam:
			rec.TeamRequired++
		case domain.CategoryPersonal:
			rec.PersonalHabits++
		}
	}

	for _, lg := range l.logs[d] {
		h := l.habits[lg.HabitID]
		switch h.Category {
		case domain.CategoryTeam:
			if lg.Completed {
				rec.TeamCompleted++
				rec.HabitPoints += h.PointValue
				rec.Completions++
			}
		case domain.CategoryPersonal:
			if lg.Completed {
				rec.PersonalCompleted++
				rec.HabitPoints++
				rec.Completions++
			}
		case domain.CategoryStudy:
			if hrs := HalfHours(lg.Hours); hrs > 0 {
				rec.StudyHours += hrs
				rec.Completions++
			}
		}
	}

	// A log may predate its habit's span when the zone changed or the user
	// rejoined a group.
	if rec.TeamCompleted > rec.TeamRequired {
		rec.TeamRequired = rec.TeamCompleted
	}

	for _, td := range l.todos[d] {
		rec.TodosTotal++
		if td.Completed {
			rec.TodosCompleted++
		}
	}
	return rec
}

// Series returns one record per date from..to inclusive (nil when to < from).
func (l *Ledger) Series(from, to domain.Date) []DayRecord {
	if from.IsZero() || to.Before(from) {
		return nil
	}
	out := make([]DayRecord, 0, to.DaysSince(from)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		out = append(out, l.Day(d))
	}
	return out
}

// HalfHours floors h to the half hour and clamps it to 0..24.
func HalfHours(h float64) float64 {
	if h <= 0 || math.IsNaN(h) {
		return 0
	}
	if h > domain.MaxStudyHours {
		h = domain.MaxStudyHours
	}
	return math.Floor(h*2) / 2
}

// ValidHours reports whether h is a loggable study value.
func ValidHours(h float64) bool {
	return h >= 0 && h <= domain.MaxStudyHours && h*2 == math.Trunc(h*2)
}
