package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/habit-king/habitking/internal/domain"
)

type goalRow struct {
	ID           string `db:"id"`
	OwnerID      string `db:"owner_id"`
	Month        string `db:"month"`
	GoalText     string `db:"goal_text"`
	Completed    bool   `db:"completed"`
	BonusAwarded bool   `db:"bonus_awarded"`
	CreatedAt    int64  `db:"created_at"`
}

func (r goalRow) toDomain() domain.MonthlyGoal {
	return domain.MonthlyGoal{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Month:        parseMonth(r.Month),
		GoalText:     r.GoalText,
		Completed:    r.Completed,
		BonusAwarded: r.BonusAwarded,
		CreatedAt:    fromUnix(r.CreatedAt),
	}
}

const goalCols = `id, owner_id, month, goal_text, completed, bonus_awarded, created_at`

// InsertGoal stores a new monthly goal.
func (d *DB) InsertGoal(ctx context.Context, g domain.MonthlyGoal) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO monthly_goals (`+goalCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.OwnerID, g.Month.String(), g.GoalText, g.Completed, g.BonusAwarded, unix(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// GetGoal loads a goal.
func (d *DB) GetGoal(ctx context.Context, id string) (*domain.MonthlyGoal, error) {
	var row goalRow
	err := d.db.GetContext(ctx, &row, `SELECT `+goalCols+` FROM monthly_goals WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err, domain.ErrGoalNotFound)
	}
	g := row.toDomain()
	return &g, nil
}

// UpdateGoalText rewrites a goal.
func (d *DB) UpdateGoalText(ctx context.Context, id, text string) error {
	res, err := d.db.ExecContext(ctx, `UPDATE monthly_goals SET goal_text = $1 WHERE id = $2`, text, id)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return affectedOrNotFound(res, domain.ErrGoalNotFound)
}

// SetGoalCompleted sets a goal's completion flag.
func (d *DB) SetGoalCompleted(ctx context.Context, id string, completed bool) error {
	res, err := d.db.ExecContext(ctx, `UPDATE monthly_goals SET completed = $1 WHERE id = $2`, completed, id)
	if err != nil {
		return fmt.Errorf("toggle goal: %w", err)
	}
	return affectedOrNotFound(res, domain.ErrGoalNotFound)
}

// DeleteGoal removes a goal.
func (d *DB) DeleteGoal(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM monthly_goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return affectedOrNotFound(res, domain.ErrGoalNotFound)
}

// ListGoals returns an owner's goals for a month, oldest first.
func (d *DB) ListGoals(ctx context.Context, ownerID string, m domain.Month) ([]domain.MonthlyGoal, error) {
	var rows []goalRow
	if err := d.db.SelectContext(ctx, &rows,
		`SELECT `+goalCols+` FROM monthly_goals WHERE owner_id = $1 AND month = $2
		 ORDER BY created_at, id`, ownerID, m.String()); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goalsFromRows(rows), nil
}

func goalsFromRows(rows []goalRow) []domain.MonthlyGoal {
	out := make([]domain.MonthlyGoal, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}

// AwardGoalBonus is the compare-and-set on (owner, month): only the caller
// whose insert lands sees true, and only then are the goals flagged.
func (d *DB) AwardGoalBonus(ctx context.Context, ownerID string, m domain.Month, at time.Time) (bool, error) {
	var won bool
	err := d.inTx(ctx, nil, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO goal_bonuses (owner_id, month, awarded_at) VALUES ($1, $2, $3)
			 ON CONFLICT (owner_id, month) DO NOTHING`,
			ownerID, m.String(), unix(at))
		if err != nil {
			return fmt.Errorf("insert goal bonus: %w", err)
		}
		if won, err = inserted(res); err != nil || !won {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE monthly_goals SET bonus_awarded = $1 WHERE owner_id = $2 AND month = $3`,
			true, ownerID, m.String())
		if err != nil {
			return fmt.Errorf("flag goals: %w", err)
		}
		return nil
	})
	return won, err
}
