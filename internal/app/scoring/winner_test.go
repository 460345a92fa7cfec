package scoring_test

import (
	"testing"

	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
)

func member(id string, done, total, missed, activities int, points float64) domain.MonthlySummary {
	return domain.MonthlySummary{
		UserID:           id,
		GroupID:          "g1",
		Month:            domain.Month{Year: 2025, Month: 3},
		TodosCompleted:   done,
		TodosTotal:       total,
		TodoProductivity: scoring.Percent(done, total),
		MissedDays:       missed,
		TotalActivities:  activities,
		TotalPoints:      points,
	}
}

func TestDetermineWinner_PrimaryHighestPoints(t *testing.T) {
	rules := scoring.DefaultPolicy().Win
	a := member("a", 70, 100, 2, 140, 200)
	b := member("b", 90, 100, 1, 150, 180)

	rec, ok := rules.DetermineWinner([]domain.MonthlySummary{b, a})
	if !ok {
		t.Fatal("expected a champion")
	}
	if rec.UserID != "a" || rec.WinPath != domain.WinPathPrimary {
		t.Errorf("winner = %s via %s, want a via primary", rec.UserID, rec.WinPath)
	}
	if rec.GroupID != "g1" || rec.TotalPoints != 200 || rec.MissedDays != 2 {
		t.Errorf("record not copied from summary: %+v", rec)
	}
}

func TestDetermineWinner_BonusPath(t *testing.T) {
	rules := scoring.DefaultPolicy().Win
	c := member("c", 82, 100, 6, 135, 270) // too many missed days for Primary
	low := member("d", 50, 100, 0, 200, 300) // productivity too low for both

	rec, ok := rules.DetermineWinner([]domain.MonthlySummary{c, low})
	if !ok {
		t.Fatal("expected bonus champion")
	}
	if rec.UserID != "c" || rec.WinPath != domain.WinPathBonus {
		t.Errorf("winner = %s via %s, want c via bonus", rec.UserID, rec.WinPath)
	}
}

func TestDetermineWinner_PrimaryBeatsBonus(t *testing.T) {
	rules := scoring.DefaultPolicy().Win
	primary := member("p", 65, 100, 3, 130, 100)
	bonusOnly := member("q", 95, 100, 10, 300, 500)

	rec, ok := rules.DetermineWinner([]domain.MonthlySummary{bonusOnly, primary})
	if !ok || rec.UserID != "p" {
		t.Errorf("primary qualifier must win, got %+v ok=%v", rec, ok)
	}
}

func TestDetermineWinner_NoQualifier(t *testing.T) {
	rules := scoring.DefaultPolicy().Win
	top := member("top", 60, 100, 0, 500, 900)
	if _, ok := rules.DetermineWinner([]domain.MonthlySummary{top}); ok {
		t.Error("top scorer without qualification must not be crowned")
	}
	if _, ok := rules.DetermineWinner(nil); ok {
		t.Error("empty group has no champion")
	}
}

func TestDetermineWinner_TieBreaks(t *testing.T) {
	rules := scoring.DefaultPolicy().Win

	early := member("zed", 70, 100, 0, 140, 200)
	early.PrimaryQualifiedOn = d(2025, 3, 20)
	late := member("amy", 70, 100, 0, 140, 200)
	late.PrimaryQualifiedOn = d(2025, 3, 25)
	never := member("aaa", 70, 100, 0, 140, 200)

	rec, _ := rules.DetermineWinner([]domain.MonthlySummary{never, late, early})
	if rec.UserID != "zed" {
		t.Errorf("earliest qualifier should win, got %s", rec.UserID)
	}

	same1 := member("bob", 70, 100, 0, 140, 200)
	same2 := member("ann", 70, 100, 0, 140, 200)
	rec, _ = rules.DetermineWinner([]domain.MonthlySummary{same1, same2})
	if rec.UserID != "ann" {
		t.Errorf("user id breaks full ties, got %s", rec.UserID)
	}

	b1 := member("b1", 85, 100, 9, 140, 300)
	b1.BonusQualifiedOn = d(2025, 3, 28)
	b2 := member("b2", 85, 100, 9, 140, 400)
	b2.BonusQualifiedOn = d(2025, 3, 27)
	rec, _ = rules.DetermineWinner([]domain.MonthlySummary{b1, b2})
	if rec.UserID != "b2" || rec.WinPath != domain.WinPathBonus {
		t.Errorf("bonus path picks earliest qualifier, got %s", rec.UserID)
	}
}

func TestDetermineWinner_ExactProductivityFloor(t *testing.T) {
	rules := scoring.DefaultPolicy().Win
	// 649/1000 rounds to 64.9%; 13/20 is exactly 65%.
	below := member("below", 649, 1000, 0, 140, 500)
	at := member("at", 13, 20, 0, 140, 100)
	rec, ok := rules.DetermineWinner([]domain.MonthlySummary{below, at})
	if !ok || rec.UserID != "at" {
		t.Errorf("want at, got %+v", rec)
	}
}

func TestRankLeaderboard(t *testing.T) {
	list := []domain.MonthlySummary{
		member("c", 0, 0, 0, 0, 10),
		member("a", 0, 0, 0, 0, 30),
		member("b", 0, 0, 0, 0, 10),
	}
	scoring.RankLeaderboard(list)
	got := []string{list[0].UserID, list[1].UserID, list[2].UserID}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("order = %v", got)
	}
}
