package scoring_test

import (
	"time"

	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
)

func d(y int, m time.Month, day int) domain.Date { return domain.NewDate(y, m, day) }

func fixedClock(t time.Time) *scoring.Clock {
	return scoring.NewClock("Africa/Lagos", func() time.Time { return t })
}

// qualifying is a day with one completed Personal habit.
func qualifying(date domain.Date) scoring.DayRecord {
	return scoring.DayRecord{Date: date, PersonalHabits: 1, PersonalCompleted: 1, HabitPoints: 1, Completions: 1}
}

// failing is a logged day whose only to-do is left open.
func failing(date domain.Date) scoring.DayRecord {
	return scoring.DayRecord{Date: date, PersonalHabits: 1, TodosTotal: 1}
}

// series builds consecutive days starting at from; true = qualifying.
func series(from domain.Date, pattern ...bool) []scoring.DayRecord {
	out := make([]scoring.DayRecord, len(pattern))
	for i, q := range pattern {
		if q {
			out[i] = qualifying(from.AddDays(i))
		} else {
			out[i] = failing(from.AddDays(i))
		}
	}
	return out
}

func repeat(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func concat(parts ...[]bool) []bool {
	var out []bool
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
