// Package engagement implements the Habit King operations on top of the pure
// scoring engine: habit logging, to-dos, monthly goals, streaks, summaries,
// leaderboards, champions and notifications.
// Design rule: every read is one snapshot; every write is serialized per user.
package engagement

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/metrics"
)

// Services bundles the engagement services over one store.
type Services struct {
	Habits        *HabitService
	Todos         *TodoService
	Goals         *GoalService
	Streaks       *StreakService
	Summaries     *SummaryService
	Champions     *ChampionService
	Notifications *NotificationService
	Rollover      *RolloverJob
}

// New wires every service to the same store, engine and user lock.
func New(store domain.Store, engine *scoring.Engine, np domain.NotificationPolicy, rolloverLimit int) *Services {
	c := &core{
		store:  store,
		engine: engine,
		locks:  NewKeyedMutex(),
	}
	c.notify = NewNotificationService(store, engine.Clock, np)
	c.streaks = &StreakService{core: c}

	summaries := &SummaryService{core: c}
	champions := &ChampionService{core: c, summaries: summaries}
	return &Services{
		Habits:        &HabitService{core: c},
		Todos:         &TodoService{core: c},
		Goals:         &GoalService{core: c},
		Streaks:       c.streaks,
		Summaries:     summaries,
		Champions:     champions,
		Notifications: c.notify,
		Rollover:      NewRolloverJob(store, champions, rolloverLimit),
	}
}

// core holds the collaborators shared by every service.
type core struct {
	store   domain.Store
	engine  *scoring.Engine
	locks   *KeyedMutex
	notify  *NotificationService
	streaks *StreakService
}

func (c *core) policy() scoring.Policy { return c.engine.Policy }

func (c *core) clock() *scoring.Clock { return c.engine.Clock }

// account loads the user's account from the identity collaborator's copy.
func (c *core) account(ctx context.Context, userID string) (*domain.Account, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	return c.store.GetAccount(ctx, userID)
}

// guardDay rejects writes on a closed day for non-exempt accounts.
func (c *core) guardDay(acct *domain.Account, d domain.Date) error {
	if c.clock().IsLocked(d, *acct) {
		return reject("day_locked", fmt.Errorf("%s: %w", d, domain.ErrDayLocked))
	}
	return nil
}

// reject counts a rule rejection and returns err unchanged.
func reject(reason string, err error) error {
	metrics.Rejections.WithLabelValues(reason).Inc()
	return err
}

// cleanName trims s and enforces 1..max runes.
func cleanName(s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > max {
		return "", domain.ErrEmptyName
	}
	return s, nil
}
