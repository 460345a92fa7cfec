package engagement

import (
	"context"
	"fmt"
	"strconv"

	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/metrics"
	"github.com/habit-king/habitking/internal/logger"
)

// StreakService recomputes streaks from logged history and banks milestones.
// Streaks are always derived; the stored row is a cache for display.
type StreakService struct {
	*core
}

// GetStreak recomputes the user's streak as of today in their zone.
// Milestones reached along the way are banked once; repeated calls are
// idempotent.
func (s *StreakService) GetStreak(ctx context.Context, userID string) (domain.StreakState, error) {
	acct, err := s.account(ctx, userID)
	if err != nil {
		return domain.StreakState{}, err
	}
	today := s.clock().Today(*acct)

	snap, err := s.store.Snapshot(ctx, userID, today)
	if err != nil {
		return domain.StreakState{}, fmt.Errorf("snapshot: %w", err)
	}

	st := s.engine.Streak(snap)
	if _, err := s.bank(ctx, snap, today); err != nil {
		return st, err
	}
	if err := s.store.SaveStreak(ctx, st); err != nil {
		return st, err
	}
	return st, nil
}

// Refresh recomputes after a write; failures are logged, not returned,
// because the write itself already succeeded.
func (s *StreakService) Refresh(ctx context.Context, userID string) {
	if _, err := s.GetStreak(ctx, userID); err != nil {
		logger.Warn("streak refresh failed", "user", userID, "err", err)
	}
}

// Milestones lists the user's banked awards.
func (s *StreakService) Milestones(ctx context.Context, userID string) ([]domain.MilestoneAward, error) {
	return s.store.ListMilestones(ctx, userID)
}

// bank persists derived awards that are not stored yet and notifies the user
// for each award this call inserted. Returns the newly banked awards.
func (s *StreakService) bank(ctx context.Context, snap *domain.Snapshot, through domain.Date) ([]domain.MilestoneAward, error) {
	have := make(map[int]bool, len(snap.Awards))
	for _, a := range snap.Awards {
		have[a.Threshold] = true
	}

	var banked []domain.MilestoneAward
	for _, a := range s.engine.Awards(snap, through) {
		if have[a.Threshold] {
			continue
		}
		a.AwardedAt = s.clock().Instant()
		isNew, err := s.store.RecordMilestone(ctx, a)
		if err != nil {
			return banked, fmt.Errorf("bank milestone %d: %w", a.Threshold, err)
		}
		if !isNew {
			continue // a concurrent reader banked it first
		}
		banked = append(banked, a)
		metrics.MilestonesAwarded.WithLabelValues(strconv.Itoa(a.Threshold)).Inc()
		logger.Info("milestone reached", "user", a.UserID, "threshold", a.Threshold, "bonus", a.Bonus, "on", a.ReachedOn)

		s.notify.Send(ctx, snap.Account, domain.Notification{
			Type:  domain.NotifyMilestone,
			Title: fmt.Sprintf("%d-day streak!", a.Threshold),
			Body:  fmt.Sprintf("You earned +%d bonus points for a %d-day streak.", a.Bonus, a.Threshold),
		})
	}
	return banked, nil
}
