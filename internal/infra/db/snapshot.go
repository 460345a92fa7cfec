package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/habit-king/habitking/internal/domain"
)

// Snapshot reads everything needed to score userID through the given date in
// a single transaction, so a log written mid-read cannot split the result.
func (d *DB) Snapshot(ctx context.Context, userID string, through domain.Date) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Through: through, GoalBonuses: make(map[domain.Month]time.Time)}
	cutoff := through.String()

	err := d.inTx(ctx, d.readOpts(), func(tx *sqlx.Tx) error {
		var acct accountRow
		if err := tx.GetContext(ctx, &acct,
			`SELECT `+accountCols+` FROM accounts WHERE id = $1`, userID); err != nil {
			return notFound(err, domain.ErrAccountNotFound)
		}
		snap.Account = acct.toDomain()

		habits, err := selectHabits(ctx, tx, historyHabits+habitOrder, userID)
		if err != nil {
			return err
		}
		snap.Habits = habits

		var logs []logRow
		if err := tx.SelectContext(ctx, &logs,
			`SELECT habit_id, user_id, log_date, completed, hours, updated_at FROM habit_logs
			 WHERE user_id = $1 AND log_date <= $2 ORDER BY log_date, habit_id`, userID, cutoff); err != nil {
			return fmt.Errorf("snapshot logs: %w", err)
		}
		snap.Logs = make([]domain.HabitLog, len(logs))
		for i, r := range logs {
			snap.Logs[i] = r.toDomain()
		}

		var todos []todoRow
		if err := tx.SelectContext(ctx, &todos,
			`SELECT `+todoCols+` FROM todos WHERE owner_id = $1 AND task_date <= $2
			 ORDER BY task_date, created_at, id`, userID, cutoff); err != nil {
			return fmt.Errorf("snapshot todos: %w", err)
		}
		snap.Todos = make([]domain.Todo, len(todos))
		for i, r := range todos {
			snap.Todos[i] = r.toDomain()
		}

		var goals []goalRow
		if err := tx.SelectContext(ctx, &goals,
			`SELECT `+goalCols+` FROM monthly_goals WHERE owner_id = $1 AND month <= $2
			 ORDER BY month, created_at, id`, userID, through.MonthOf().String()); err != nil {
			return fmt.Errorf("snapshot goals: %w", err)
		}
		snap.Goals = goalsFromRows(goals)

		var bonuses []struct {
			Month     string `db:"month"`
			AwardedAt int64  `db:"awarded_at"`
		}
		if err := tx.SelectContext(ctx, &bonuses,
			`SELECT month, awarded_at FROM goal_bonuses WHERE owner_id = $1`, userID); err != nil {
			return fmt.Errorf("snapshot goal bonuses: %w", err)
		}
		for _, b := range bonuses {
			snap.GoalBonuses[parseMonth(b.Month)] = fromUnix(b.AwardedAt)
		}

		var awards []awardRow
		if err := tx.SelectContext(ctx, &awards,
			`SELECT `+awardCols+` FROM milestone_awards WHERE user_id = $1 ORDER BY threshold`, userID); err != nil {
			return fmt.Errorf("snapshot awards: %w", err)
		}
		snap.Awards = awardsFromRows(awards)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
