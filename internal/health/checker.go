// Package health runs periodic self-checks for the Habit King server:
// database connectivity, the time zone database and the data directory.
package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/habit-king/habitking/internal/infra/metrics"
	"github.com/habit-king/habitking/internal/logger"
)

// DefaultInterval is how often the checks run.
const DefaultInterval = 60 * time.Second

// Pinger is the part of the store the checker needs.
type Pinger interface {
	Ping() error
}

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a checker with the standard checks. zones are the
// zone names day locks depend on (at least the fallback zone); dataDir may
// be empty when the database is not file backed.
func NewChecker(db Pinger, zones []string, dataDir string) *Checker {
	return &Checker{
		interval: DefaultInterval,
		checks: []Check{
			{
				Name: "database",
				CheckFn: func(ctx context.Context) error {
					return db.Ping()
				},
			},
			{
				Name: "tzdata",
				CheckFn: func(ctx context.Context) error {
					return checkZones(zones)
				},
			},
			{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkDataDir(dataDir)
				},
				RecoverFn: func(ctx context.Context) error {
					return recoverDataDir(dataDir)
				},
			},
		},
	}
}

// SetInterval changes the check period. Must be called before Run.
func (c *Checker) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check now and stores the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			logger.Warn("health check failed", "check", check.Name, "err", err)
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil {
					logger.Warn("health recovery failed", "check", check.Name, "err", rerr)
				}
			}
		} else {
			s.Healthy = true
		}
		gauge := 0.0
		if s.Healthy {
			gauge = 1
		}
		metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(gauge)
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkZones(zones []string) error {
	for _, z := range zones {
		if z == "" {
			continue
		}
		if _, err := time.LoadLocation(z); err != nil {
			return fmt.Errorf("load zone %q: %w", z, err)
		}
	}
	return nil
}

func checkDataDir(dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// recoverDataDir recreates a missing data directory. Anything else at the
// path is left for the operator.
func recoverDataDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("recreate data dir: %w", err)
	}
	logger.Info("data dir recreated", "dir", dir)
	return nil
}
