package engagement

import (
	"context"

	"github.com/google/uuid"

	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/metrics"
	"github.com/habit-king/habitking/internal/logger"
)

// maxGoalTextLen bounds goal text.
const maxGoalTextLen = 200

// GoalService manages the monthly goals and their one-time bonus.
// Goal text is editable only during the first days of the month; the
// completion toggle stays open all month.
type GoalService struct {
	*core
}

// ToggleResult is the outcome of a goal toggle.
type ToggleResult struct {
	Goal         domain.MonthlyGoal `json:"goal"`
	BonusAwarded bool               `json:"bonus_awarded"` // true only on the awarding toggle
}

// ListGoals returns the user's goals for m (current month when zero).
func (s *GoalService) ListGoals(ctx context.Context, userID string, m domain.Month) ([]domain.MonthlyGoal, error) {
	if m.IsZero() {
		acct, err := s.account(ctx, userID)
		if err != nil {
			return nil, err
		}
		m = s.clock().Today(*acct).MonthOf()
	}
	return s.store.ListGoals(ctx, userID, m)
}

// CreateGoal adds a goal to the current month.
func (s *GoalService) CreateGoal(ctx context.Context, userID, text string) (domain.MonthlyGoal, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	acct, err := s.account(ctx, userID)
	if err != nil {
		return domain.MonthlyGoal{}, err
	}
	text, err = cleanName(text, maxGoalTextLen)
	if err != nil {
		return domain.MonthlyGoal{}, err
	}
	today := s.clock().Today(*acct)
	if !s.policy().GoalWindow().CanEdit(today.Day) {
		return domain.MonthlyGoal{}, reject("goal_window", domain.ErrGoalWindow)
	}

	existing, err := s.store.ListGoals(ctx, userID, today.MonthOf())
	if err != nil {
		return domain.MonthlyGoal{}, err
	}
	if len(existing) >= s.policy().MaxGoals {
		return domain.MonthlyGoal{}, reject("capacity", domain.ErrGoalLimit)
	}

	g := domain.MonthlyGoal{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Month:     today.MonthOf(),
		GoalText:  text,
		CreatedAt: s.clock().Instant(),
	}
	if err := s.store.InsertGoal(ctx, g); err != nil {
		return domain.MonthlyGoal{}, err
	}
	return g, nil
}

// EditGoal rewrites a goal's text inside the edit window.
func (s *GoalService) EditGoal(ctx context.Context, userID, goalID, text string) (domain.MonthlyGoal, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	g, err := s.editable(ctx, userID, goalID)
	if err != nil {
		return domain.MonthlyGoal{}, err
	}
	text, err = cleanName(text, maxGoalTextLen)
	if err != nil {
		return domain.MonthlyGoal{}, err
	}
	if err := s.store.UpdateGoalText(ctx, g.ID, text); err != nil {
		return domain.MonthlyGoal{}, err
	}
	g.GoalText = text
	return *g, nil
}

// DeleteGoal removes a goal inside the edit window.
func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	g, err := s.editable(ctx, userID, goalID)
	if err != nil {
		return err
	}
	return s.store.DeleteGoal(ctx, g.ID)
}

// ToggleGoal flips a current-month goal. The toggle that leaves every slot
// complete awards the bonus through the store's compare-and-set, so it is
// paid at most once per month even under concurrent toggles. Unchecking
// never takes it back.
func (s *GoalService) ToggleGoal(ctx context.Context, userID, goalID string) (ToggleResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	acct, g, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return ToggleResult{}, err
	}
	if g.Month != s.clock().Today(*acct).MonthOf() {
		return ToggleResult{}, reject("goal_window", domain.ErrGoalWindow)
	}

	goals, err := s.store.ListGoals(ctx, userID, g.Month)
	if err != nil {
		return ToggleResult{}, err
	}
	awarded := false
	for _, other := range goals {
		awarded = awarded || other.BonusAwarded
	}

	updated, fire, err := s.policy().GoalWindow().ApplyToggle(goals, g.ID, awarded)
	if err != nil {
		return ToggleResult{}, err
	}
	if err := s.store.SetGoalCompleted(ctx, g.ID, updated.Completed); err != nil {
		return ToggleResult{}, err
	}

	res := ToggleResult{Goal: updated}
	if !fire {
		return res, nil
	}

	won, err := s.store.AwardGoalBonus(ctx, userID, g.Month, s.clock().Instant())
	if err != nil {
		return res, err
	}
	if won {
		res.BonusAwarded = true
		res.Goal.BonusAwarded = true
		metrics.GoalBonuses.Inc()
		logger.Info("goal bonus awarded", "user", userID, "month", g.Month, "bonus", s.policy().GoalBonus)
		s.notify.Send(ctx, *acct, domain.Notification{
			Type:  domain.NotifyGoalBonus,
			Title: "All monthly goals complete!",
			Body:  "You earned the monthly goal bonus.",
		})
	}
	return res, nil
}

func (s *GoalService) ownedGoal(ctx context.Context, userID, goalID string) (*domain.Account, *domain.MonthlyGoal, error) {
	acct, err := s.account(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, nil, err
	}
	if g.OwnerID != userID {
		return nil, nil, domain.ErrGoalNotFound
	}
	return acct, g, nil
}

// editable loads a current-month goal while the edit window is open.
func (s *GoalService) editable(ctx context.Context, userID, goalID string) (*domain.MonthlyGoal, error) {
	acct, g, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	today := s.clock().Today(*acct)
	if g.Month != today.MonthOf() || !s.policy().GoalWindow().CanEdit(today.Day) {
		return nil, reject("goal_window", domain.ErrGoalWindow)
	}
	return g, nil
}
