package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/metrics"
	"github.com/habit-king/habitking/internal/logger"
)

// SummaryService computes monthly summaries and leaderboards. Summaries are
// never stored; each is recomputed from one snapshot.
type SummaryService struct {
	*core
}

// GetMonthlySummary computes the user's summary for m (current month when zero).
func (s *SummaryService) GetMonthlySummary(ctx context.Context, userID string, m domain.Month) (domain.MonthlySummary, error) {
	start := time.Now()
	defer func() { metrics.SummaryLatency.Observe(time.Since(start).Seconds()) }()

	acct, err := s.account(ctx, userID)
	if err != nil {
		return domain.MonthlySummary{}, err
	}
	today := s.clock().Today(*acct)
	if m.IsZero() {
		m = today.MonthOf()
	}

	through := m.Last()
	if today.Before(through) {
		through = today
	}
	snap, err := s.store.Snapshot(ctx, userID, m.Last())
	if err != nil {
		return domain.MonthlySummary{}, fmt.Errorf("snapshot: %w", err)
	}
	if !through.Before(m.First()) {
		if _, err := s.streaks.bank(ctx, snap, through); err != nil {
			logger.Warn("banking milestones failed", "user", userID, "err", err)
		}
	}
	return s.engine.MonthlyTotal(snap, m, today), nil
}

// GetLeaderboard returns every member's summary for m, highest total first.
func (s *SummaryService) GetLeaderboard(ctx context.Context, groupID string, m domain.Month) ([]domain.MonthlySummary, error) {
	board, _, err := s.memberSummaries(ctx, groupID, m)
	if err != nil {
		return nil, err
	}
	scoring.RankLeaderboard(board)
	return board, nil
}

// RequireMember returns ErrNotGroupMember unless userID belongs to groupID.
func (s *SummaryService) RequireMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return err
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.UserID == userID {
			return nil
		}
	}
	return domain.ErrNotGroupMember
}

// memberSummaries computes every member's summary and reports whether m has
// closed for all of them. m defaults to the current month in the fallback zone.
func (s *SummaryService) memberSummaries(ctx context.Context, groupID string, m domain.Month) ([]domain.MonthlySummary, bool, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, false, err
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, false, err
	}
	if m.IsZero() {
		m = s.clock().Today(domain.Account{}).MonthOf()
	}

	closed := true
	board := make([]domain.MonthlySummary, 0, len(members))
	for _, mem := range members {
		acct, err := s.store.GetAccount(ctx, mem.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("member without account", "group", groupID, "user", mem.UserID)
			closed = closed && scoring.MonthClosed(m, s.clock().Today(domain.Account{ID: mem.UserID}))
			continue
		}
		if err != nil {
			return nil, false, err
		}
		closed = closed && scoring.MonthClosed(m, s.clock().Today(*acct))

		sum, err := s.GetMonthlySummary(ctx, mem.UserID, m)
		if err != nil {
			return nil, false, fmt.Errorf("summary for %s: %w", mem.UserID, err)
		}
		sum.GroupID = groupID
		board = append(board, sum)
	}
	return board, closed, nil
}

// ProductivityView is the standalone to-do productivity display.
type ProductivityView struct {
	Month     domain.Month     `json:"month"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Percent   float64          `json:"percent"`
	Bonus     int              `json:"bonus"`
	NextTier  scoring.TierHint `json:"next_tier"`
}

// GetProductivity reports the month's to-do ratio, bonus and next tier.
func (s *SummaryService) GetProductivity(ctx context.Context, userID string, m domain.Month) (ProductivityView, error) {
	sum, err := s.GetMonthlySummary(ctx, userID, m)
	if err != nil {
		return ProductivityView{}, err
	}
	table := s.engine.Table()
	return ProductivityView{
		Month:     sum.Month,
		Completed: sum.TodosCompleted,
		Total:     sum.TodosTotal,
		Percent:   sum.TodoProductivity,
		Bonus:     sum.TodoBonus,
		NextTier:  table.NextTier(sum.TodosCompleted, sum.TodosTotal),
	}, nil
}
