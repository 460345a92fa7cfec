package scoring

import (
	"sort"

	"github.com/habit-king/habitking/internal/domain"
)

// ─── Winner Determiner ──────────────────────────────────────────────────────

// productivityAtLeast compares the exact to-do ratio against floor%.
// Summaries built without counters fall back to the reported percentage.
func productivityAtLeast(s domain.MonthlySummary, floor int) bool {
	if s.TodosTotal > 0 {
		return meets(s.TodosCompleted, s.TodosTotal, floor)
	}
	return s.TodoProductivity >= float64(floor)
}

// Primary reports whether s meets the Primary path thresholds.
func (r WinRules) Primary(s domain.MonthlySummary) bool {
	return productivityAtLeast(s, r.PrimaryMinProductivity) &&
		s.MissedDays <= r.PrimaryMaxMissed &&
		s.TotalActivities >= r.MinActivities
}

// Bonus reports whether s meets the Bonus path thresholds.
func (r WinRules) Bonus(s domain.MonthlySummary) bool {
	return s.TotalPoints >= r.BonusMinPoints &&
		productivityAtLeast(s, r.BonusMinProductivity) &&
		s.TotalActivities >= r.MinActivities
}

// earlier orders qualification dates; a zero date sorts last.
func earlier(a, b domain.Date) bool {
	switch {
	case a == b:
		return false
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	}
	return a.Before(b)
}

// DetermineWinner picks at most one champion from a group's summaries.
// Primary: highest points, then earliest to qualify, then user id.
// Bonus (only when nobody meets Primary): earliest to qualify, then user id.
// No qualifier means no champion, reported as false.
func (r WinRules) DetermineWinner(summaries []domain.MonthlySummary) (domain.ChampionRecord, bool) {
	var primary, bonus []domain.MonthlySummary
	for _, s := range summaries {
		if r.Primary(s) {
			primary = append(primary, s)
		} else if r.Bonus(s) {
			bonus = append(bonus, s)
		}
	}

	if len(primary) > 0 {
		sort.SliceStable(primary, func(i, j int) bool {
			a, b := primary[i], primary[j]
			if a.TotalPoints != b.TotalPoints {
				return a.TotalPoints > b.TotalPoints
			}
			if a.PrimaryQualifiedOn != b.PrimaryQualifiedOn {
				return earlier(a.PrimaryQualifiedOn, b.PrimaryQualifiedOn)
			}
			return a.UserID < b.UserID
		})
		return champion(primary[0], domain.WinPathPrimary), true
	}

	if len(bonus) > 0 {
		sort.SliceStable(bonus, func(i, j int) bool {
			a, b := bonus[i], bonus[j]
			if a.BonusQualifiedOn != b.BonusQualifiedOn {
				return earlier(a.BonusQualifiedOn, b.BonusQualifiedOn)
			}
			return a.UserID < b.UserID
		})
		return champion(bonus[0], domain.WinPathBonus), true
	}

	return domain.ChampionRecord{}, false
}

func champion(s domain.MonthlySummary, path domain.WinPath) domain.ChampionRecord {
	return domain.ChampionRecord{
		GroupID:          s.GroupID,
		Month:            s.Month,
		UserID:           s.UserID,
		DisplayName:      s.DisplayName,
		WinPath:          path,
		TotalPoints:      s.TotalPoints,
		TodoProductivity: s.TodoProductivity,
		MissedDays:       s.MissedDays,
		TotalActivities:  s.TotalActivities,
	}
}

// RankLeaderboard orders summaries by total points descending, then user id.
func RankLeaderboard(summaries []domain.MonthlySummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].TotalPoints != summaries[j].TotalPoints {
			return summaries[i].TotalPoints > summaries[j].TotalPoints
		}
		return summaries[i].UserID < summaries[j].UserID
	})
}
