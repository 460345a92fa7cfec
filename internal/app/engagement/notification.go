package engagement

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/logger"
)

// NotificationService stores user notifications under a policy:
//   - at most MaxPerDay per user per local day
//   - nothing between QuietStart and QuietEnd in the user's zone
//   - only milestone, goal bonus and champion events
type NotificationService struct {
	store  domain.NotificationStore
	clock  *scoring.Clock
	policy domain.NotificationPolicy
}

// NewNotificationService creates a notification service.
func NewNotificationService(store domain.NotificationStore, clock *scoring.Clock, policy domain.NotificationPolicy) *NotificationService {
	return &NotificationService{store: store, clock: clock, policy: policy}
}

// Create stores n for acct if policy allows it.
// Returns the notification ID ("" if suppressed by policy) and any error.
func (n *NotificationService) Create(ctx context.Context, acct domain.Account, notif domain.Notification) (string, error) {
	local := n.clock.Now(acct)
	if n.isQuietHour(local) {
		return "", nil
	}

	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	count, err := n.store.CountNotificationsSince(ctx, acct.ID, dayStart)
	if err != nil {
		return "", fmt.Errorf("count today: %w", err)
	}
	if count >= n.policy.MaxPerDay {
		return "", nil
	}

	notif.ID = uuid.New().String()
	notif.UserID = acct.ID
	notif.CreatedAt = n.clock.Instant()
	notif.Shown = false
	if err := n.store.InsertNotification(ctx, notif); err != nil {
		return "", fmt.Errorf("insert notification: %w", err)
	}
	return notif.ID, nil
}

// Send is Create for event hooks: errors are logged, never returned.
func (n *NotificationService) Send(ctx context.Context, acct domain.Account, notif domain.Notification) {
	if _, err := n.Create(ctx, acct, notif); err != nil {
		logger.Warn("notification dropped", "user", acct.ID, "type", notif.Type, "err", err)
	}
}

// Pending returns the user's unshown notifications.
func (n *NotificationService) Pending(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return n.store.ListPendingNotifications(ctx, userID, limit)
}

// MarkShown marks one of the user's notifications as shown.
func (n *NotificationService) MarkShown(ctx context.Context, userID, id string) error {
	return n.store.MarkNotificationShown(ctx, userID, id)
}

// Policy returns the current notification policy.
func (n *NotificationService) Policy() domain.NotificationPolicy {
	return n.policy
}

// isQuietHour reports whether local falls inside quiet hours.
func (n *NotificationService) isQuietHour(local time.Time) bool {
	startHour, startMin := parseHHMM(n.policy.QuietStart)
	endHour, endMin := parseHHMM(n.policy.QuietEnd)

	now := local.Hour()*60 + local.Minute()
	start := startHour*60 + startMin
	end := endHour*60 + endMin

	if start == end {
		return false
	}
	if start > end {
		// Wraps midnight: e.g., 22:00 – 08:00
		return now >= start || now < end
	}
	return now >= start && now < end
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}
