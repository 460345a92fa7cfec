package db

import (
	"context"
	"fmt"

	"github.com/habit-king/habitking/internal/domain"
)

type championRow struct {
	GroupID          string  `db:"group_id"`
	Month            string  `db:"month"`
	UserID           string  `db:"user_id"`
	DisplayName      string  `db:"display_name"`
	WinPath          string  `db:"win_path"`
	TotalPoints      float64 `db:"total_points"`
	TodoProductivity float64 `db:"todo_productivity"`
	MissedDays       int     `db:"missed_days"`
	TotalActivities  int     `db:"total_activities"`
	CrownedAt        int64   `db:"crowned_at"`
}

func (r championRow) toDomain() domain.ChampionRecord {
	return domain.ChampionRecord{
		GroupID:          r.GroupID,
		Month:            parseMonth(r.Month),
		UserID:           r.UserID,
		DisplayName:      r.DisplayName,
		WinPath:          domain.WinPath(r.WinPath),
		TotalPoints:      r.TotalPoints,
		TodoProductivity: r.TodoProductivity,
		MissedDays:       r.MissedDays,
		TotalActivities:  r.TotalActivities,
		CrownedAt:        fromUnix(r.CrownedAt),
	}
}

const championCols = `group_id, month, user_id, display_name, win_path, total_points,
	todo_productivity, missed_days, total_activities, crowned_at`

// InsertChampion stores the record unless (group, month) is already crowned.
// Stored records are never updated.
func (d *DB) InsertChampion(ctx context.Context, c domain.ChampionRecord) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO champions (`+championCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (group_id, month) DO NOTHING`,
		c.GroupID, c.Month.String(), c.UserID, c.DisplayName, string(c.WinPath), c.TotalPoints,
		c.TodoProductivity, c.MissedDays, c.TotalActivities, unix(c.CrownedAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert champion: %w", err)
	}
	return inserted(res)
}

// GetChampion loads the stored champion for a group month.
func (d *DB) GetChampion(ctx context.Context, groupID string, m domain.Month) (*domain.ChampionRecord, error) {
	var row championRow
	err := d.db.GetContext(ctx, &row,
		`SELECT `+championCols+` FROM champions WHERE group_id = $1 AND month = $2`, groupID, m.String())
	if err != nil {
		return nil, notFound(err, fmt.Errorf("champion %w", domain.ErrNotFound))
	}
	c := row.toDomain()
	return &c, nil
}

// ListChampions returns a group's champions, newest month first.
func (d *DB) ListChampions(ctx context.Context, groupID string) ([]domain.ChampionRecord, error) {
	var rows []championRow
	if err := d.db.SelectContext(ctx, &rows,
		`SELECT `+championCols+` FROM champions WHERE group_id = $1 ORDER BY month DESC`, groupID); err != nil {
		return nil, fmt.Errorf("list champions: %w", err)
	}
	out := make([]domain.ChampionRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}
