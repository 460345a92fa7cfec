package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Every error here is a client-correctable validation failure: surfaced to the
// caller as-is, never retried. Specific variants wrap a base kind so callers
// can match either with errors.Is.

var (
	// Base kinds
	ErrDayLocked        = errors.New("day is locked")
	ErrEditWindowClosed = errors.New("edit window closed")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("forbidden")

	// Not found
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrHabitNotFound   = fmt.Errorf("habit %w", ErrNotFound)
	ErrTodoNotFound    = fmt.Errorf("todo %w", ErrNotFound)
	ErrGoalNotFound    = fmt.Errorf("monthly goal %w", ErrNotFound)
	ErrGroupNotFound   = fmt.Errorf("group %w", ErrNotFound)

	// Capacity
	ErrPersonalHabitLimit = fmt.Errorf("personal habit limit reached: %w", ErrCapacityExceeded)
	ErrStudyHabitLimit    = fmt.Errorf("study habit limit reached: %w", ErrCapacityExceeded)
	ErrGoalLimit          = fmt.Errorf("monthly goal limit reached: %w", ErrCapacityExceeded)

	// Edit windows
	ErrHabitDeleteWindow = fmt.Errorf("habit can no longer be deleted: %w", ErrEditWindowClosed)
	ErrHabitCreateWindow = fmt.Errorf("habits can only be created early in the month: %w", ErrEditWindowClosed)
	ErrGoalWindow        = fmt.Errorf("monthly goals are locked: %w", ErrEditWindowClosed)

	// Validation
	ErrInvalidCategory = fmt.Errorf("%w: category must be Team, Personal or Study", ErrInvalidInput)
	ErrInvalidHours    = fmt.Errorf("%w: hours must be 0-24 in half-hour steps", ErrInvalidInput)
	ErrEmptyName       = fmt.Errorf("%w: name must be 1-50 characters", ErrInvalidInput)
	ErrNotStudyHabit   = fmt.Errorf("%w: hours can only be logged on study habits", ErrInvalidInput)

	// Ownership
	ErrTeamHabitLocked = fmt.Errorf("team habits cannot be deleted by members: %w", ErrForbidden)
	ErrNotGroupCreator = fmt.Errorf("only the group creator manages team habits: %w", ErrForbidden)
	ErrNotGroupMember  = fmt.Errorf("not a member of this group: %w", ErrForbidden)
)
