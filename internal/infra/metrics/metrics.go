// Package metrics provides Prometheus metrics for Habit King: logging
// activity, streak milestones, goal bonuses, champions, and the rollover job.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Logging Activity ───────────────────────────────────────────────────────

// HabitLogs counts habit log writes by category.
var HabitLogs = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "habitking",
	Name:      "habit_logs_total",
	Help:      "Total habit log writes.",
}, []string{"category"})

// TodoToggles counts to-do completion toggles.
var TodoToggles = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "habitking",
	Name:      "todo_toggles_total",
	Help:      "Total to-do completion toggles.",
})

// Rejections counts mutations refused by a rule, by reason.
var Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "habitking",
	Name:      "rejections_total",
	Help:      "Mutations rejected by day lock, edit window or capacity.",
}, []string{"reason"})

// ─── Bonuses ────────────────────────────────────────────────────────────────

// MilestonesAwarded counts streak milestones persisted, by threshold.
var MilestonesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "habitking",
	Name:      "milestones_awarded_total",
	Help:      "Streak milestones awarded.",
}, []string{"threshold"})

// GoalBonuses counts monthly goal bonuses awarded.
var GoalBonuses = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "habitking",
	Name:      "goal_bonuses_total",
	Help:      "Monthly goal bonuses awarded.",
})

// ─── Competition ────────────────────────────────────────────────────────────

// ChampionsCrowned counts stored champion records by win path.
var ChampionsCrowned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "habitking",
	Name:      "champions_crowned_total",
	Help:      "Champion records stored.",
}, []string{"path"})

// SummaryLatency tracks monthly summary computation time in seconds.
var SummaryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "habitking",
	Name:      "summary_latency_seconds",
	Help:      "Time to read a snapshot and compute a monthly summary.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// RolloverRuns counts rollover job runs by outcome.
var RolloverRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "habitking",
	Name:      "rollover_runs_total",
	Help:      "Month rollover job runs.",
}, []string{"outcome"})

// RolloverDuration tracks how long a rollover pass takes.
var RolloverDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "habitking",
	Name:      "rollover_duration_seconds",
	Help:      "Duration of a month rollover pass.",
	Buckets:   prometheus.DefBuckets,
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "habitking",
	Name:      "health_check_status",
	Help:      "Health check status (1=healthy, 0=unhealthy).",
}, []string{"check"})
