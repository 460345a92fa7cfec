package db

import (
	"context"
	"fmt"
	"time"

	"github.com/habit-king/habitking/internal/domain"
)

// ─── Streaks ────────────────────────────────────────────────────────────────

type streakRow struct {
	UserID             string `db:"user_id"`
	CurrentStreak      int    `db:"current_streak"`
	LongestStreak      int    `db:"longest_streak"`
	LastQualifyingDate string `db:"last_qualifying_date"`
	TodayQualified     bool   `db:"today_qualified"`
	MonthCompletedDays int    `db:"month_completed_days"`
	MonthElapsedDays   int    `db:"month_elapsed_days"`
	AsOf               string `db:"as_of"`
}

// SaveStreak stores the latest computed streak for display and history.
func (d *DB) SaveStreak(ctx context.Context, s domain.StreakState) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO streaks (user_id, current_streak, longest_streak, last_qualifying_date,
		   today_qualified, month_completed_days, month_elapsed_days, as_of, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO UPDATE SET
		   current_streak = excluded.current_streak,
		   longest_streak = excluded.longest_streak,
		   last_qualifying_date = excluded.last_qualifying_date,
		   today_qualified = excluded.today_qualified,
		   month_completed_days = excluded.month_completed_days,
		   month_elapsed_days = excluded.month_elapsed_days,
		   as_of = excluded.as_of,
		   updated_at = excluded.updated_at`,
		s.UserID, s.CurrentStreak, s.LongestStreak, s.LastQualifyingDate.String(),
		s.TodayQualified, s.MonthCompletedDays, s.MonthElapsedDays, s.AsOf.String(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

// GetStreak loads the last saved streak.
func (d *DB) GetStreak(ctx context.Context, userID string) (*domain.StreakState, error) {
	var r streakRow
	err := d.db.GetContext(ctx, &r,
		`SELECT user_id, current_streak, longest_streak, last_qualifying_date, today_qualified,
		        month_completed_days, month_elapsed_days, as_of
		 FROM streaks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, notFound(err, fmt.Errorf("streak %w", domain.ErrNotFound))
	}
	return &domain.StreakState{
		UserID:             r.UserID,
		CurrentStreak:      r.CurrentStreak,
		LongestStreak:      r.LongestStreak,
		LastQualifyingDate: parseDate(r.LastQualifyingDate),
		TodayQualified:     r.TodayQualified,
		MonthCompletedDays: r.MonthCompletedDays,
		MonthElapsedDays:   r.MonthElapsedDays,
		AsOf:               parseDate(r.AsOf),
	}, nil
}

// ─── Milestone Awards ───────────────────────────────────────────────────────

type awardRow struct {
	UserID    string `db:"user_id"`
	Threshold int    `db:"threshold"`
	Bonus     int    `db:"bonus"`
	ReachedOn string `db:"reached_on"`
	AwardedAt int64  `db:"awarded_at"`
}

func (r awardRow) toDomain() domain.MilestoneAward {
	return domain.MilestoneAward{
		UserID:    r.UserID,
		Threshold: r.Threshold,
		Bonus:     r.Bonus,
		ReachedOn: parseDate(r.ReachedOn),
		AwardedAt: fromUnix(r.AwardedAt),
	}
}

const awardCols = `user_id, threshold, bonus, reached_on, awarded_at`

// RecordMilestone inserts the award unless (user, threshold) already exists.
func (d *DB) RecordMilestone(ctx context.Context, a domain.MilestoneAward) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO milestone_awards (`+awardCols+`) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, threshold) DO NOTHING`,
		a.UserID, a.Threshold, a.Bonus, a.ReachedOn.String(), unix(a.AwardedAt),
	)
	if err != nil {
		return false, fmt.Errorf("record milestone: %w", err)
	}
	return inserted(res)
}

// ListMilestones returns a user's awards by threshold.
func (d *DB) ListMilestones(ctx context.Context, userID string) ([]domain.MilestoneAward, error) {
	var rows []awardRow
	if err := d.db.SelectContext(ctx, &rows,
		`SELECT `+awardCols+` FROM milestone_awards WHERE user_id = $1 ORDER BY threshold`, userID); err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return awardsFromRows(rows), nil
}

func awardsFromRows(rows []awardRow) []domain.MilestoneAward {
	out := make([]domain.MilestoneAward, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}
