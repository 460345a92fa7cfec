// Package domain holds the pure Habit King types: the raw entities users log
// (habits, logs, to-dos, monthly goals), group membership, and the derived
// scoring records (streaks, summaries, champions).
// Domain types have no infrastructure dependency.
package domain

import (
	"strings"
	"time"
)

// ─── Accounts & Groups ──────────────────────────────────────────────────────

// Account is the identity collaborator's view of a user.
type Account struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	TimeZone    string    `json:"time_zone"`
	Exempt      bool      `json:"exempt"` // test/admin accounts: never day-locked
	JoinedAt    time.Time `json:"joined_at"`
}

// Group is a competition group. Membership is managed elsewhere.
type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatorID  string    `json:"creator_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// MemberRole distinguishes the group creator from regular members.
type MemberRole string

const (
	RoleCreator MemberRole = "creator"
	RoleMember  MemberRole = "member"
)

// GroupMember links a user to a group.
type GroupMember struct {
	GroupID  string     `json:"group_id"`
	UserID   string     `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

// ─── Habits ─────────────────────────────────────────────────────────────────

// Category is the kind of habit.
type Category string

const (
	CategoryTeam     Category = "Team"
	CategoryPersonal Category = "Personal"
	CategoryStudy    Category = "Study"
)

// ParseCategory accepts the category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "team":
		return CategoryTeam, nil
	case "personal":
		return CategoryPersonal, nil
	case "study":
		return CategoryStudy, nil
	}
	return "", ErrInvalidCategory
}

// MaxHabitNameLen bounds habit and to-do names.
const MaxHabitNameLen = 50

// Habit is a trackable daily habit.
// Team habits belong to a group and are shared by its members.
type Habit struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	GroupID      string    `json:"group_id,omitempty"`
	Name         string    `json:"name"`
	Category     Category  `json:"category"`
	PointValue   int       `json:"point_value"` // ignored for Study
	CreatedAt    time.Time `json:"created_at"`
	DisplayOrder int       `json:"display_order"`

	// Scoring snapshots only. A habit applies to a user on the dates between
	// max(CreatedAt, MemberSince) and DeletedAt, in the user's zone.
	MemberSince time.Time `json:"-"` // Team: when the user joined the group
	DeletedAt   time.Time `json:"-"` // zero while active
}

// HabitLog is one user's entry for one habit on one date.
type HabitLog struct {
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	LogDate   Date      `json:"log_date"`
	Completed bool      `json:"completed"`
	Hours     float64   `json:"hours"` // Study only
	UpdatedAt time.Time `json:"updated_at"`
}

// MaxStudyHours is the most hours a single study log may record.
const MaxStudyHours = 24.0

// ─── To-dos & Goals ─────────────────────────────────────────────────────────

// Todo is a dated task.
type Todo struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	TaskDate  Date      `json:"task_date"`
	TaskName  string    `json:"task_name"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// MonthlyGoal is one of up to five goals a user sets for a month.
type MonthlyGoal struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Month        Month     `json:"month"`
	GoalText     string    `json:"goal_text"`
	Completed    bool      `json:"completed"`
	BonusAwarded bool      `json:"bonus_awarded"`
	CreatedAt    time.Time `json:"created_at"`
}
