package engagement

import (
	"context"

	"github.com/google/uuid"

	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/metrics"
)

// maxTodoNameLen bounds to-do names.
const maxTodoNameLen = 200

// TodoService manages dated to-dos. Closed days are read-only.
type TodoService struct {
	*core
}

// CreateTodo adds a to-do for a date that has not closed yet.
func (s *TodoService) CreateTodo(ctx context.Context, userID string, date domain.Date, name string) (domain.Todo, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	acct, err := s.account(ctx, userID)
	if err != nil {
		return domain.Todo{}, err
	}
	name, err = cleanName(name, maxTodoNameLen)
	if err != nil {
		return domain.Todo{}, err
	}
	if date.IsZero() {
		date = s.clock().Today(*acct)
	}
	if err := s.guardDay(acct, date); err != nil {
		return domain.Todo{}, err
	}

	t := domain.Todo{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		TaskDate:  date,
		TaskName:  name,
		CreatedAt: s.clock().Instant(),
	}
	if err := s.store.InsertTodo(ctx, t); err != nil {
		return domain.Todo{}, err
	}
	s.streaks.Refresh(ctx, userID)
	return t, nil
}

// ToggleTodo flips a to-do's completion flag.
func (s *TodoService) ToggleTodo(ctx context.Context, userID, todoID string) (domain.Todo, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	t, err := s.owned(ctx, userID, todoID)
	if err != nil {
		return domain.Todo{}, err
	}
	t.Completed = !t.Completed
	if err := s.store.SetTodoCompleted(ctx, t.ID, t.Completed); err != nil {
		return domain.Todo{}, err
	}
	metrics.TodoToggles.Inc()
	s.streaks.Refresh(ctx, userID)
	return *t, nil
}

// DeleteTodo removes a to-do on a day that has not closed yet.
func (s *TodoService) DeleteTodo(ctx context.Context, userID, todoID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	t, err := s.owned(ctx, userID, todoID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTodo(ctx, t.ID); err != nil {
		return err
	}
	s.streaks.Refresh(ctx, userID)
	return nil
}

// owned loads the user's to-do and checks its day is still open.
func (s *TodoService) owned(ctx context.Context, userID, todoID string) (*domain.Todo, error) {
	acct, err := s.account(ctx, userID)
	if err != nil {
		return nil, err
	}
	t, err := s.store.GetTodo(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != userID {
		return nil, domain.ErrTodoNotFound
	}
	if err := s.guardDay(acct, t.TaskDate); err != nil {
		return nil, err
	}
	return t, nil
}
