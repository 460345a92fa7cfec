package scoring

import (
	"sort"

	"github.com/habit-king/habitking/internal/domain"
)

// ─── Streak Tracker ─────────────────────────────────────────────────────────

// Recompute derives the streak state as of asOf from an ascending day series.
// The current streak ends at asOf-1 because asOf is still open; a missing day
// in the series counts as unlogged. Recompute is a pure function of its input.
func Recompute(userID string, series []DayRecord, asOf domain.Date) domain.StreakState {
	st := domain.StreakState{UserID: userID, AsOf: asOf}

	byDate := make(map[domain.Date]DayRecord, len(series))
	for _, d := range series {
		byDate[d.Date] = d
	}

	for d := asOf.AddDays(-1); ; d = d.AddDays(-1) {
		rec, ok := byDate[d]
		if !ok || !Qualifies(rec) {
			break
		}
		st.CurrentStreak++
	}

	if rec, ok := byDate[asOf]; ok {
		st.TodayQualified = Qualifies(rec)
	}

	run := 0
	var prev domain.Date
	month := asOf.MonthOf()
	for _, rec := range series {
		if rec.Date.After(asOf) {
			break
		}
		q := Qualifies(rec)
		switch {
		case !q:
			run = 0
		case !prev.IsZero() && rec.Date.DaysSince(prev) == 1 && run > 0:
			run++
		default:
			run = 1
		}
		prev = rec.Date
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
		if q {
			st.LastQualifyingDate = rec.Date
			if month.Contains(rec.Date) {
				st.MonthCompletedDays++
			}
		}
	}
	if month.Contains(asOf) {
		st.MonthElapsedDays = asOf.Day
	}
	return st
}

// Milestones returns the first date the live streak reached each threshold,
// walking the series through asOf. A threshold is reported at most once no
// matter how often the streak later passes it again after a reset.
func Milestones(userID string, series []DayRecord, asOf domain.Date, table []domain.Milestone) []domain.MilestoneAward {
	seen := make(map[int]bool, len(table))
	var out []domain.MilestoneAward

	run := 0
	var prev domain.Date
	for _, rec := range series {
		if rec.Date.After(asOf) {
			break
		}
		before := run
		switch {
		case !Qualifies(rec):
			run = 0
		case !prev.IsZero() && rec.Date.DaysSince(prev) == 1 && run > 0:
			run++
		default:
			run = 1
		}
		prev = rec.Date

		for _, m := range Crossed(before, run, table) {
			if seen[m.Threshold] {
				continue
			}
			seen[m.Threshold] = true
			out = append(out, domain.MilestoneAward{
				UserID:    userID,
				Threshold: m.Threshold,
				Bonus:     m.Bonus,
				ReachedOn: rec.Date,
			})
		}
	}
	return out
}

// Crossed returns the milestones whose threshold lies in (before, after].
func Crossed(before, after int, table []domain.Milestone) []domain.Milestone {
	if after <= before {
		return nil
	}
	var out []domain.Milestone
	for _, m := range table {
		if m.Threshold > before && m.Threshold <= after {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}

// MergeAwards combines persisted awards with derived ones. Persisted awards
// win for a threshold; derived awards fill only thresholds never persisted.
func MergeAwards(persisted, derived []domain.MilestoneAward) []domain.MilestoneAward {
	have := make(map[int]bool, len(persisted))
	out := make([]domain.MilestoneAward, 0, len(persisted)+len(derived))
	for _, a := range persisted {
		if have[a.Threshold] {
			continue
		}
		have[a.Threshold] = true
		out = append(out, a)
	}
	for _, a := range derived {
		if !have[a.Threshold] {
			have[a.Threshold] = true
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}
