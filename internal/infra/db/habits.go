package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/habit-king/habitking/internal/domain"
)

// ─── Habits ─────────────────────────────────────────────────────────────────

type habitRow struct {
	ID           string `db:"id"`
	OwnerID      string `db:"owner_id"`
	GroupID      string `db:"group_id"`
	Name         string `db:"name"`
	Category     string `db:"category"`
	PointValue   int    `db:"point_value"`
	CreatedAt    int64  `db:"created_at"`
	DisplayOrder int    `db:"display_order"`
	DeletedAt    int64  `db:"deleted_at"`
	MemberSince  int64  `db:"member_since"`
}

func (r habitRow) toDomain() domain.Habit {
	return domain.Habit{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		GroupID:      r.GroupID,
		Name:         r.Name,
		Category:     domain.Category(r.Category),
		PointValue:   r.PointValue,
		CreatedAt:    fromUnix(r.CreatedAt),
		DisplayOrder: r.DisplayOrder,
		DeletedAt:    fromUnix(r.DeletedAt),
		MemberSince:  fromUnix(r.MemberSince),
	}
}

const habitCols = `id, owner_id, group_id, name, category, point_value, created_at, display_order`

const habitSelectCols = habitCols + `, deleted_at`

// historyHabits selects a user's own Personal/Study habits plus the Team
// habits of every group they belong to, deleted ones included, with the
// user's join time for Team habits. $1 is the user id.
const historyHabits = `SELECT h.id, h.owner_id, h.group_id, h.name, h.category, h.point_value,
	       h.created_at, h.display_order, h.deleted_at, COALESCE(m.joined_at, 0) AS member_since
	FROM habits h
	LEFT JOIN group_members m
	       ON h.category = 'Team' AND m.group_id = h.group_id AND m.user_id = $1
	WHERE (h.owner_id = $1 AND h.category <> 'Team')
	   OR (h.category = 'Team' AND m.user_id IS NOT NULL)`

const habitOrder = ` ORDER BY h.category, h.display_order, h.created_at, h.id`

// applicableHabits is historyHabits without deleted habits.
const applicableHabits = `SELECT * FROM (` + historyHabits + `) live WHERE deleted_at = 0
	ORDER BY category, display_order, created_at, id`

// InsertHabit stores a new habit.
func (d *DB) InsertHabit(ctx context.Context, h domain.Habit) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO habits (`+habitCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.OwnerID, h.GroupID, h.Name, string(h.Category), h.PointValue, unix(h.CreatedAt), h.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("insert habit: %w", err)
	}
	return nil
}

// GetHabit loads a habit.
func (d *DB) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	var row habitRow
	err := d.db.GetContext(ctx, &row,
		`SELECT `+habitSelectCols+` FROM habits WHERE id = $1 AND deleted_at = 0`, id)
	if err != nil {
		return nil, notFound(err, domain.ErrHabitNotFound)
	}
	h := row.toDomain()
	return &h, nil
}

// DeleteHabit marks a habit deleted at the given instant. Its logs stay so
// closed days keep their score.
func (d *DB) DeleteHabit(ctx context.Context, id string, at time.Time) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE habits SET deleted_at = $1 WHERE id = $2 AND deleted_at = 0`, unix(at), id)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return affectedOrNotFound(res, domain.ErrHabitNotFound)
}

// CountHabits counts an owner's habits in a category.
func (d *DB) CountHabits(ctx context.Context, ownerID string, c domain.Category) (int, error) {
	var n int
	err := d.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM habits WHERE owner_id = $1 AND category = $2 AND deleted_at = 0`, ownerID, string(c))
	if err != nil {
		return 0, fmt.Errorf("count habits: %w", err)
	}
	return n, nil
}

// ListHabits returns every active habit that applies to the user.
func (d *DB) ListHabits(ctx context.Context, userID string) ([]domain.Habit, error) {
	return selectHabits(ctx, d.db, applicableHabits, userID)
}

func selectHabits(ctx context.Context, q sqlx.QueryerContext, query, userID string) ([]domain.Habit, error) {
	var rows []habitRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	out := make([]domain.Habit, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// SetHabitOrder assigns display_order 0..n-1 following ids. Every id must
// belong to ownerID.
func (d *DB) SetHabitOrder(ctx context.Context, ownerID string, ids []string) error {
	return d.inTx(ctx, nil, func(tx *sqlx.Tx) error {
		for i, id := range ids {
			res, err := tx.ExecContext(ctx,
				`UPDATE habits SET display_order = $1 WHERE id = $2 AND owner_id = $3 AND deleted_at = 0`, i, id, ownerID)
			if err != nil {
				return fmt.Errorf("reorder habit %s: %w", id, err)
			}
			if err := affectedOrNotFound(res, domain.ErrHabitNotFound); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Habit Logs ─────────────────────────────────────────────────────────────

type logRow struct {
	HabitID   string  `db:"habit_id"`
	UserID    string  `db:"user_id"`
	LogDate   string  `db:"log_date"`
	Completed bool    `db:"completed"`
	Hours     float64 `db:"hours"`
	UpdatedAt int64   `db:"updated_at"`
}

func (r logRow) toDomain() domain.HabitLog {
	return domain.HabitLog{
		HabitID:   r.HabitID,
		UserID:    r.UserID,
		LogDate:   parseDate(r.LogDate),
		Completed: r.Completed,
		Hours:     r.Hours,
		UpdatedAt: fromUnix(r.UpdatedAt),
	}
}

// UpsertLog writes the log for (habit, user, date); last write wins.
func (d *DB) UpsertLog(ctx context.Context, l domain.HabitLog) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO habit_logs (habit_id, user_id, log_date, completed, hours, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (habit_id, user_id, log_date) DO UPDATE SET
		   completed = excluded.completed,
		   hours = excluded.hours,
		   updated_at = excluded.updated_at`,
		l.HabitID, l.UserID, l.LogDate.String(), l.Completed, l.Hours, unix(l.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert log: %w", err)
	}
	return nil
}
