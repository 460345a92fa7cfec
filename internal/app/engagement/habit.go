package engagement

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/metrics"
	"github.com/habit-king/habitking/internal/logger"
)

// HabitService creates, deletes, orders and logs habits.
type HabitService struct {
	*core
}

// CreateHabitInput describes a new habit.
type CreateHabitInput struct {
	Name       string          `json:"name"`
	Category   domain.Category `json:"category"`
	GroupID    string          `json:"group_id,omitempty"` // Team only
	PointValue *int            `json:"point_value,omitempty"` // Team only; nil means 1
}

// CreateHabit adds a habit for userID, enforcing caps and the creation window.
// Team habits are created by the group creator and shared with its members.
func (s *HabitService) CreateHabit(ctx context.Context, userID string, in CreateHabitInput) (domain.Habit, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	acct, err := s.account(ctx, userID)
	if err != nil {
		return domain.Habit{}, err
	}
	name, err := cleanName(in.Name, domain.MaxHabitNameLen)
	if err != nil {
		return domain.Habit{}, err
	}
	category, err := domain.ParseCategory(string(in.Category))
	if err != nil {
		return domain.Habit{}, err
	}
	if !s.policy().EditWindow().CanCreate(s.clock().Now(*acct)) {
		return domain.Habit{}, reject("create_window", domain.ErrHabitCreateWindow)
	}

	h := domain.Habit{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Name:      name,
		Category:  category,
		CreatedAt: s.clock().Instant(),
	}

	switch category {
	case domain.CategoryTeam:
		if in.GroupID == "" {
			return domain.Habit{}, fmt.Errorf("%w: team habits need a group", domain.ErrInvalidInput)
		}
		g, err := s.store.GetGroup(ctx, in.GroupID)
		if err != nil {
			return domain.Habit{}, err
		}
		if g.CreatorID != userID {
			return domain.Habit{}, domain.ErrNotGroupCreator
		}
		h.GroupID = g.ID
		h.PointValue = 1
		if in.PointValue != nil {
			if *in.PointValue < 0 {
				return domain.Habit{}, fmt.Errorf("%w: point value must be >= 0", domain.ErrInvalidInput)
			}
			h.PointValue = *in.PointValue
		}
	case domain.CategoryPersonal:
		h.PointValue = 1
	case domain.CategoryStudy:
		h.PointValue = 0
	}

	count, err := s.store.CountHabits(ctx, userID, category)
	if err != nil {
		return domain.Habit{}, err
	}
	switch {
	case category == domain.CategoryPersonal && count >= s.policy().MaxPersonal:
		return domain.Habit{}, reject("capacity", domain.ErrPersonalHabitLimit)
	case category == domain.CategoryStudy && count >= s.policy().MaxStudy:
		return domain.Habit{}, reject("capacity", domain.ErrStudyHabitLimit)
	}
	h.DisplayOrder = count

	if err := s.store.InsertHabit(ctx, h); err != nil {
		return domain.Habit{}, err
	}
	logger.Info("habit created", "user", userID, "habit", h.ID, "category", h.Category)
	return h, nil
}

// DeleteHabit removes one of the user's Personal or Study habits while the
// edit window allows it. Team habits are never deletable by members.
func (s *HabitService) DeleteHabit(ctx context.Context, userID, habitID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	acct, err := s.account(ctx, userID)
	if err != nil {
		return err
	}
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return err
	}
	if h.Category == domain.CategoryTeam {
		return reject("team_locked", domain.ErrTeamHabitLocked)
	}
	if h.OwnerID != userID {
		return domain.ErrHabitNotFound
	}
	if !s.policy().EditWindow().CanDelete(*h, s.clock().Now(*acct)) {
		return reject("delete_window", domain.ErrHabitDeleteWindow)
	}
	if err := s.store.DeleteHabit(ctx, habitID, s.clock().Instant()); err != nil {
		return err
	}
	logger.Info("habit deleted", "user", userID, "habit", habitID)
	s.streaks.Refresh(ctx, userID)
	return nil
}

// ReorderHabits sets display order within one of the user's categories.
// ids must list only the user's own habits of that category.
func (s *HabitService) ReorderHabits(ctx context.Context, userID string, category domain.Category, ids []string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	category, err := domain.ParseCategory(string(category))
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: duplicate habit %s", domain.ErrInvalidInput, id)
		}
		seen[id] = true
		h, err := s.store.GetHabit(ctx, id)
		if err != nil {
			return err
		}
		if h.OwnerID != userID || h.Category != category {
			return domain.ErrHabitNotFound
		}
	}
	return s.store.SetHabitOrder(ctx, userID, ids)
}

// ListHabits returns every habit that applies to the user.
func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]domain.Habit, error) {
	return s.store.ListHabits(ctx, userID)
}

// LogInput is one habit log write. Completed applies to Team and Personal
// habits; Hours applies to Study habits.
type LogInput struct {
	Date      domain.Date `json:"date"`
	Completed *bool       `json:"completed,omitempty"`
	Hours     *float64    `json:"hours,omitempty"`
}

// ToggleHabitLog writes the user's log for a habit on a date. It is
// rejected with ErrDayLocked once the date has closed in the user's zone.
func (s *HabitService) ToggleHabitLog(ctx context.Context, userID, habitID string, in LogInput) (domain.HabitLog, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	acct, err := s.account(ctx, userID)
	if err != nil {
		return domain.HabitLog{}, err
	}
	h, err := s.applicable(ctx, userID, habitID)
	if err != nil {
		return domain.HabitLog{}, err
	}

	d := in.Date
	if d.IsZero() {
		d = s.clock().Today(*acct)
	}
	if err := s.guardDay(acct, d); err != nil {
		return domain.HabitLog{}, err
	}
	if d.After(s.clock().Today(*acct)) && !acct.Exempt {
		return domain.HabitLog{}, fmt.Errorf("%w: cannot log a future date", domain.ErrInvalidInput)
	}

	log := domain.HabitLog{
		HabitID:   h.ID,
		UserID:    userID,
		LogDate:   d,
		UpdatedAt: s.clock().Instant(),
	}
	if h.Category == domain.CategoryStudy {
		if in.Hours == nil || !scoring.ValidHours(*in.Hours) {
			return domain.HabitLog{}, domain.ErrInvalidHours
		}
		log.Hours = *in.Hours
		log.Completed = log.Hours > 0
	} else {
		if in.Hours != nil {
			return domain.HabitLog{}, domain.ErrNotStudyHabit
		}
		if in.Completed == nil {
			return domain.HabitLog{}, fmt.Errorf("%w: completed is required", domain.ErrInvalidInput)
		}
		log.Completed = *in.Completed
	}

	if err := s.store.UpsertLog(ctx, log); err != nil {
		return domain.HabitLog{}, err
	}
	metrics.HabitLogs.WithLabelValues(string(h.Category)).Inc()
	s.streaks.Refresh(ctx, userID)
	return log, nil
}

// applicable returns habitID if it applies to the user.
func (s *HabitService) applicable(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range habits {
		if habits[i].ID == habitID {
			return &habits[i], nil
		}
	}
	return nil, domain.ErrHabitNotFound
}
