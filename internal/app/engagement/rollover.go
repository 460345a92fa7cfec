package engagement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/metrics"
	"github.com/habit-king/habitking/internal/logger"
)

// DefaultRolloverLimit bounds how many groups are finalized concurrently.
const DefaultRolloverLimit = 4

// RolloverJob finalizes champions for months that have closed. It is
// idempotent: re-running, or running on several replicas at once, never
// produces a second record for a (group, month).
type RolloverJob struct {
	groups    domain.GroupStore
	champions *ChampionService
	limit     int
}

// RolloverReport summarizes one run.
type RolloverReport struct {
	Month   domain.Month `json:"month"`
	Groups  int          `json:"groups"`
	Crowned int          `json:"crowned"`
	Skipped int          `json:"skipped"` // still open for some member, or already final
	Failed  int          `json:"failed"`
}

// NewRolloverJob creates a rollover job. limit <= 0 uses DefaultRolloverLimit.
func NewRolloverJob(groups domain.GroupStore, champions *ChampionService, limit int) *RolloverJob {
	if limit <= 0 {
		limit = DefaultRolloverLimit
	}
	return &RolloverJob{groups: groups, champions: champions, limit: limit}
}

// Run finalizes the month before the current UTC month.
func (j *RolloverJob) Run(ctx context.Context) (RolloverReport, error) {
	now := j.champions.clock().Instant().UTC()
	return j.RunMonth(ctx, domain.MonthOf(now).Prev())
}

// RunMonth finalizes m for every group. A failing group does not stop the
// others; all failures are joined into the returned error.
func (j *RolloverJob) RunMonth(ctx context.Context, m domain.Month) (RolloverReport, error) {
	start := time.Now()
	defer func() { metrics.RolloverDuration.Observe(time.Since(start).Seconds()) }()

	report := RolloverReport{Month: m}
	if m.IsZero() {
		return report, fmt.Errorf("%w: rollover month required", domain.ErrInvalidInput)
	}

	groups, err := j.groups.ListGroups(ctx)
	if err != nil {
		metrics.RolloverRuns.WithLabelValues("error").Inc()
		return report, fmt.Errorf("list groups: %w", err)
	}
	report.Groups = len(groups)

	var (
		crowned, skipped, failed atomic.Int64
		mu                       sync.Mutex
		errs                     []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.limit)
	for _, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, created, err := j.champions.Finalize(gctx, grp.ID, m)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Error("rollover failed", "group", grp.ID, "month", m, "err", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("group %s: %w", grp.ID, err))
				mu.Unlock()
			case created:
				crowned.Add(1)
			default:
				skipped.Add(1)
				if rec == nil {
					logger.Debug("no champion", "group", grp.ID, "month", m)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	report.Crowned = int(crowned.Load())
	report.Skipped = int(skipped.Load())
	report.Failed = int(failed.Load())

	outcome := "ok"
	if len(errs) > 0 {
		outcome = "error"
	}
	metrics.RolloverRuns.WithLabelValues(outcome).Inc()
	logger.Info("rollover finished", "month", m, "groups", report.Groups,
		"crowned", report.Crowned, "skipped", report.Skipped, "failed", report.Failed)
	return report, errors.Join(errs...)
}
