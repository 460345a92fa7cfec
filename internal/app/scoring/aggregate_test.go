package scoring_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
)

var march = domain.Month{Year: 2025, Month: time.March}

// marchSnapshot: team (3 pts) + personal completed and one to-do done on
// Mar 1-9, study 1.5h on Mar 1 and 0.75h on Mar 2, one open to-do planned
// for Mar 15, goal bonus banked on Mar 5.
func marchSnapshot() *domain.Snapshot {
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	snap := &domain.Snapshot{
		Account: domain.Account{ID: "u1", DisplayName: "Ada", TimeZone: "UTC", JoinedAt: created},
		Habits: []domain.Habit{
			{ID: "team", GroupID: "g1", Category: domain.CategoryTeam, PointValue: 3, CreatedAt: created},
			{ID: "walk", OwnerID: "u1", Category: domain.CategoryPersonal, PointValue: 1, CreatedAt: created},
			{ID: "math", OwnerID: "u1", Category: domain.CategoryStudy, CreatedAt: created},
		},
		GoalBonuses: map[domain.Month]time.Time{
			march: time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC),
		},
	}
	for i := 0; i < 9; i++ {
		day := d(2025, 3, 1+i)
		snap.Logs = append(snap.Logs,
			domain.HabitLog{HabitID: "team", UserID: "u1", LogDate: day, Completed: true},
			domain.HabitLog{HabitID: "walk", UserID: "u1", LogDate: day, Completed: true},
		)
		snap.Todos = append(snap.Todos, domain.Todo{ID: day.String(), OwnerID: "u1", TaskDate: day, Completed: true})
	}
	snap.Logs = append(snap.Logs,
		domain.HabitLog{HabitID: "math", UserID: "u1", LogDate: d(2025, 3, 1), Hours: 1.5, Completed: true},
		domain.HabitLog{HabitID: "math", UserID: "u1", LogDate: d(2025, 3, 2), Hours: 0.75, Completed: true},
	)
	snap.Todos = append(snap.Todos, domain.Todo{ID: "later", OwnerID: "u1", TaskDate: d(2025, 3, 15)})
	return snap
}

func newEngine(p scoring.Policy) *scoring.Engine {
	return scoring.NewEngine(fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)), p)
}

func TestMonthlyTotal_Composition(t *testing.T) {
	e := newEngine(scoring.DefaultPolicy())
	got := e.MonthlyTotal(marchSnapshot(), march, d(2025, 3, 10))

	want := domain.MonthlySummary{
		UserID:           "u1",
		DisplayName:      "Ada",
		Month:            march,
		HabitPoints:      36, // 9*3 team + 9*1 personal
		StudyHours:       2,
		StudyPoints:      2,
		TodosCompleted:   9,
		TodosTotal:       10,
		TodoProductivity: 90,
		TodoBonus:        20,
		StreakBonus:      2, // 7-day milestone on Mar 7
		GoalBonus:        15,
		TotalPoints:      75,
		MissedDays:       0,
		TotalActivities:  29, // 18 habit + 2 study + 9 todos
	}
	opts := cmpopts.IgnoreFields(domain.MonthlySummary{}, "PrimaryQualifiedOn", "BonusQualifiedOn")
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthlyTotal_StudyPointsToggle(t *testing.T) {
	p := scoring.DefaultPolicy()
	p.StudyPoints = false
	got := newEngine(p).MonthlyTotal(marchSnapshot(), march, d(2025, 3, 10))
	if got.StudyHours != 2 || got.StudyPoints != 0 || got.TotalPoints != 73 {
		t.Errorf("study off: hours=%v points=%v total=%v", got.StudyHours, got.StudyPoints, got.TotalPoints)
	}
}

func TestMonthlyTotal_MissedDaysFromJoin(t *testing.T) {
	snap := &domain.Snapshot{
		Account: domain.Account{ID: "new", TimeZone: "UTC", JoinedAt: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)},
	}
	got := newEngine(scoring.DefaultPolicy()).MonthlyTotal(snap, march, d(2025, 3, 10))
	// Mar 5..9 closed and unlogged; today (Mar 10) is still open.
	if got.MissedDays != 5 {
		t.Errorf("missed = %d, want 5", got.MissedDays)
	}
	if got.TotalPoints != 0 {
		t.Errorf("total = %v, want 0", got.TotalPoints)
	}
}

func TestMonthlyTotal_FutureMonthIsEmpty(t *testing.T) {
	april := march.Next()
	got := newEngine(scoring.DefaultPolicy()).MonthlyTotal(marchSnapshot(), april, d(2025, 3, 10))
	if got.TotalPoints != 0 || got.MissedDays != 0 || got.Month != april {
		t.Errorf("future month should be empty, got %+v", got)
	}
}

func TestMonthlyTotal_PersistedAwardInEarlierMonth(t *testing.T) {
	snap := marchSnapshot()
	// The 7-day milestone was already banked in January; it must not pay again.
	snap.Awards = []domain.MilestoneAward{{UserID: "u1", Threshold: 7, Bonus: 2, ReachedOn: d(2025, 1, 7)}}
	got := newEngine(scoring.DefaultPolicy()).MonthlyTotal(snap, march, d(2025, 3, 10))
	if got.StreakBonus != 0 {
		t.Errorf("streak bonus = %d, want 0", got.StreakBonus)
	}
}

func TestMonthlyTotal_QualificationStamps(t *testing.T) {
	p := scoring.DefaultPolicy()
	p.Win = scoring.WinRules{
		PrimaryMinProductivity: 50,
		PrimaryMaxMissed:       3,
		MinActivities:          5,
		BonusMinPoints:         20,
		BonusMinProductivity:   80,
	}
	got := newEngine(p).MonthlyTotal(marchSnapshot(), march, d(2025, 3, 10))
	// Mar 1 has 4 activities, Mar 2 brings the running total to 8.
	if got.PrimaryQualifiedOn != d(2025, 3, 2) {
		t.Errorf("primary qualified on %s, want 2025-03-02", got.PrimaryQualifiedOn)
	}
	if got.BonusQualifiedOn != d(2025, 3, 2) {
		t.Errorf("bonus qualified on %s, want 2025-03-02", got.BonusQualifiedOn)
	}
}

func TestMonthlyTotal_SkipsMalformedLogs(t *testing.T) {
	snap := marchSnapshot()
	snap.Logs = append(snap.Logs,
		domain.HabitLog{HabitID: "deleted", UserID: "u1", LogDate: d(2025, 3, 3), Completed: true},
		domain.HabitLog{HabitID: "math", UserID: "u1", LogDate: d(2025, 3, 4), Hours: -3},
	)
	got := newEngine(scoring.DefaultPolicy()).MonthlyTotal(snap, march, d(2025, 3, 10))
	if got.TotalPoints != 75 {
		t.Errorf("malformed logs changed the total: %v", got.TotalPoints)
	}
}

func TestEngine_StreakAndAwards(t *testing.T) {
	e := newEngine(scoring.DefaultPolicy())
	snap := marchSnapshot()

	st := e.Streak(snap)
	if st.CurrentStreak != 9 || st.TodayQualified {
		t.Errorf("streak = %+v", st)
	}
	first := e.Awards(snap, d(2025, 3, 10))
	second := e.Awards(snap, d(2025, 3, 10))
	if len(first) != 1 || first[0].Threshold != 7 {
		t.Fatalf("awards = %+v", first)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("awards not stable:\n%s", diff)
	}
}
