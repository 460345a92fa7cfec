package db

import (
	"context"
	"fmt"
	"time"

	"github.com/habit-king/habitking/internal/domain"
)

type notificationRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Type      string `db:"type"`
	Title     string `db:"title"`
	Body      string `db:"body"`
	CreatedAt int64  `db:"created_at"`
	Shown     bool   `db:"shown"`
}

const notificationCols = `id, user_id, type, title, body, created_at, shown`

// InsertNotification stores a notification.
func (d *DB) InsertNotification(ctx context.Context, n domain.Notification) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Body, unix(n.CreatedAt), n.Shown,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// CountNotificationsSince counts a user's notifications created at or after since.
func (d *DB) CountNotificationsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := d.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND created_at >= $2`, userID, since.Unix())
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

// ListPendingNotifications returns unshown notifications, oldest first.
func (d *DB) ListPendingNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []notificationRow
	if err := d.db.SelectContext(ctx, &rows,
		`SELECT `+notificationCols+` FROM notifications
		 WHERE user_id = $1 AND shown = $2 ORDER BY created_at, id LIMIT $3`,
		userID, false, limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]domain.Notification, len(rows))
	for i, r := range rows {
		out[i] = domain.Notification{
			ID:        r.ID,
			UserID:    r.UserID,
			Type:      domain.NotificationType(r.Type),
			Title:     r.Title,
			Body:      r.Body,
			CreatedAt: fromUnix(r.CreatedAt),
			Shown:     r.Shown,
		}
	}
	return out, nil
}

// MarkNotificationShown marks one of the user's notifications as shown.
func (d *DB) MarkNotificationShown(ctx context.Context, userID, id string) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE notifications SET shown = $1 WHERE id = $2 AND user_id = $3`, true, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification: %w", err)
	}
	return affectedOrNotFound(res, fmt.Errorf("notification %w", domain.ErrNotFound))
}
