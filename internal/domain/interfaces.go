package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define the boundary to the persistence collaborator.
// infra/db implements them; the application layer depends on them.

// AccountStore reads identity data (time zone, exempt flag).
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*Account, error)
	UpsertAccount(ctx context.Context, a Account) error
}

// GroupStore reads group membership.
type GroupStore interface {
	CreateGroup(ctx context.Context, g Group) error
	GetGroup(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context) ([]Group, error)
	AddMember(ctx context.Context, m GroupMember) error
	ListMembers(ctx context.Context, groupID string) ([]GroupMember, error)
}

// HabitStore persists habits and their daily logs.
type HabitStore interface {
	InsertHabit(ctx context.Context, h Habit) error
	GetHabit(ctx context.Context, id string) (*Habit, error)
	DeleteHabit(ctx context.Context, id string, at time.Time) error
	CountHabits(ctx context.Context, ownerID string, c Category) (int, error)
	ListHabits(ctx context.Context, userID string) ([]Habit, error)
	SetHabitOrder(ctx context.Context, ownerID string, ids []string) error

	// UpsertLog writes the log for (habit, user, date); last write wins.
	UpsertLog(ctx context.Context, l HabitLog) error
}

// TodoStore persists to-dos.
type TodoStore interface {
	InsertTodo(ctx context.Context, t Todo) error
	GetTodo(ctx context.Context, id string) (*Todo, error)
	SetTodoCompleted(ctx context.Context, id string, completed bool) error
	DeleteTodo(ctx context.Context, id string) error
}

// GoalStore persists monthly goals and the once-per-month goal bonus.
type GoalStore interface {
	InsertGoal(ctx context.Context, g MonthlyGoal) error
	GetGoal(ctx context.Context, id string) (*MonthlyGoal, error)
	UpdateGoalText(ctx context.Context, id, text string) error
	SetGoalCompleted(ctx context.Context, id string, completed bool) error
	DeleteGoal(ctx context.Context, id string) error
	ListGoals(ctx context.Context, ownerID string, m Month) ([]MonthlyGoal, error)

	// AwardGoalBonus flips the month's bonus flag if it is not set yet.
	// Returns true only for the call that performed the flip.
	AwardGoalBonus(ctx context.Context, ownerID string, m Month, at time.Time) (bool, error)
}

// StreakStore persists streak state and milestone awards.
type StreakStore interface {
	SaveStreak(ctx context.Context, s StreakState) error
	GetStreak(ctx context.Context, userID string) (*StreakState, error)

	// RecordMilestone inserts the award unless one exists for (user, threshold).
	// Returns true if this call inserted it.
	RecordMilestone(ctx context.Context, a MilestoneAward) (bool, error)
	ListMilestones(ctx context.Context, userID string) ([]MilestoneAward, error)
}

// ChampionStore persists crowned champions.
type ChampionStore interface {
	// InsertChampion stores the record unless one exists for (group, month).
	// Returns true if this call inserted it.
	InsertChampion(ctx context.Context, c ChampionRecord) (bool, error)
	GetChampion(ctx context.Context, groupID string, m Month) (*ChampionRecord, error)
	ListChampions(ctx context.Context, groupID string) ([]ChampionRecord, error)
}

// NotificationStore persists per-user notifications.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n Notification) error
	CountNotificationsSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListPendingNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkNotificationShown(ctx context.Context, userID, id string) error
}

// SnapshotReader reads everything needed to score a user in one transaction.
type SnapshotReader interface {
	Snapshot(ctx context.Context, userID string, through Date) (*Snapshot, error)
}

// Store is the full persistence boundary.
type Store interface {
	AccountStore
	GroupStore
	HabitStore
	TodoStore
	GoalStore
	StreakStore
	ChampionStore
	NotificationStore
	SnapshotReader
	Ping() error
}
