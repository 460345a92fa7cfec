package domain

import "time"

// ─── Streak Types ───────────────────────────────────────────────────────────

// StreakState is a user's streak as of a given day.
// CurrentStreak counts consecutive qualifying days ending at the most recent
// closed date; today is still open and only reported via TodayQualified.
type StreakState struct {
	UserID             string `json:"user_id"`
	CurrentStreak      int    `json:"current_streak"`
	LongestStreak      int    `json:"longest_streak"`
	LastQualifyingDate Date   `json:"last_qualifying_date"`
	TodayQualified     bool   `json:"today_qualified"`
	MonthCompletedDays int    `json:"month_completed_days"`
	MonthElapsedDays   int    `json:"month_elapsed_days"`
	AsOf               Date   `json:"as_of"`
}

// LiveStreak is the streak counting today when today already qualifies.
func (s StreakState) LiveStreak() int {
	if s.TodayQualified {
		return s.CurrentStreak + 1
	}
	return s.CurrentStreak
}

// Milestone is a streak length that pays a one-time bonus.
type Milestone struct {
	Threshold int `json:"threshold" toml:"threshold"`
	Bonus     int `json:"bonus" toml:"bonus"`
}

// MilestoneAward records the first time a user reached a milestone.
type MilestoneAward struct {
	UserID    string    `json:"user_id"`
	Threshold int       `json:"threshold"`
	Bonus     int       `json:"bonus"`
	ReachedOn Date      `json:"reached_on"`
	AwardedAt time.Time `json:"awarded_at"`
}

// ─── Monthly Scoring ────────────────────────────────────────────────────────

// MonthlySummary is a user's derived scoreboard for one month.
// It is recomputed on every query and never stored.
type MonthlySummary struct {
	UserID           string  `json:"user_id"`
	DisplayName      string  `json:"display_name"`
	GroupID          string  `json:"group_id,omitempty"`
	Month            Month   `json:"month"`
	HabitPoints      int     `json:"habit_points"`
	StudyHours       float64 `json:"study_hours"`
	StudyPoints      float64 `json:"study_points"`
	TodosCompleted   int     `json:"todos_completed"`
	TodosTotal       int     `json:"todos_total"`
	TodoProductivity float64 `json:"todo_productivity"` // percent, 1 decimal
	TodoBonus        int     `json:"todo_bonus"`
	StreakBonus      int     `json:"streak_bonus"`
	GoalBonus        int     `json:"goal_bonus"`
	TotalPoints      float64 `json:"total_points"`
	MissedDays       int     `json:"missed_days"`
	TotalActivities  int     `json:"total_activities"`

	// First day the running month-to-date totals met each win path.
	PrimaryQualifiedOn Date `json:"primary_qualified_on"`
	BonusQualifiedOn   Date `json:"bonus_qualified_on"`
}

// WinPath is the route by which a champion qualified.
type WinPath string

const (
	WinPathPrimary WinPath = "primary"
	WinPathBonus   WinPath = "bonus"
)

// ChampionRecord is the crowned winner of a group for a month.
// Once stored it is never modified.
type ChampionRecord struct {
	GroupID          string    `json:"group_id"`
	Month            Month     `json:"month"`
	UserID           string    `json:"user_id"`
	DisplayName      string    `json:"display_name,omitempty"`
	WinPath          WinPath   `json:"win_path"`
	TotalPoints      float64   `json:"total_points"`
	TodoProductivity float64   `json:"todo_productivity"`
	MissedDays       int       `json:"missed_days"`
	TotalActivities  int       `json:"total_activities"`
	CrownedAt        time.Time `json:"crowned_at"`
}

// HallOfFame is a group's champion history plus all-time records.
type HallOfFame struct {
	GroupID   string           `json:"group_id"`
	Champions []ChampionRecord `json:"champions"` // newest first
	Records   HallRecords      `json:"records"`
	UserStats LegacyStats      `json:"user_stats"`
}

// HallRecords are the all-time bests among a group's champions.
type HallRecords struct {
	MostChampionships RecordHolder `json:"most_championships"`
	HighestPoints     RecordHolder `json:"highest_points"`
	BestProductivity  RecordHolder `json:"perfect_productivity"`
	MostActivities    RecordHolder `json:"most_activities"`
}

// RecordHolder is one all-time record. Value meaning depends on the record.
type RecordHolder struct {
	UserID string  `json:"user_id,omitempty"`
	Name   string  `json:"name,omitempty"`
	Value  float64 `json:"value"`
	Month  Month   `json:"month,omitempty"`
}

// LegacyStats summarizes the requesting user's championships.
type LegacyStats struct {
	TotalChampionships int             `json:"total_championships"`
	BestMonth          *ChampionRecord `json:"best_month,omitempty"`
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

// Snapshot is every record needed to score one user, read in a single
// consistent transaction. Logs and to-dos cover all history through Through.
type Snapshot struct {
	Account     Account
	Habits      []Habit // own Personal/Study habits plus Team habits of the user's groups
	Logs        []HabitLog
	Todos       []Todo
	Goals       []MonthlyGoal
	GoalBonuses map[Month]time.Time // awarded_at per month
	Awards      []MilestoneAward
	Through     Date
}

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyMilestone NotificationType = "milestone"
	NotifyGoalBonus NotificationType = "goal_bonus"
	NotifyChampion  NotificationType = "champion"
)

// Notification is a user-facing message.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
	Shown     bool             `json:"shown"`
}

// NotificationPolicy governs how often notifications are sent.
type NotificationPolicy struct {
	MaxPerDay  int    `json:"max_per_day" toml:"max_per_day"`
	QuietStart string `json:"quiet_start" toml:"quiet_start"` // "22:00", user's zone
	QuietEnd   string `json:"quiet_end" toml:"quiet_end"`     // "08:00"
}

// DefaultNotificationPolicy returns the default policy.
func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		MaxPerDay:  3,
		QuietStart: "22:00",
		QuietEnd:   "08:00",
	}
}
