// Package api provides the HTTP server for Habit King: JSON endpoints over
// the engagement services, health and Prometheus metrics.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/habit-king/habitking/internal/app/engagement"
	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/health"
	"github.com/habit-king/habitking/internal/logger"
)

// Options configure the server.
type Options struct {
	Version         string
	JWTSecret       string        // HS256 secret; empty disables bearer tokens
	AllowUserHeader bool          // trust X-User-ID (behind an authenticating proxy)
	Metrics         bool          // mount /metrics
	RequestTimeout  time.Duration // 0 = 30s
	CORSOrigin      string        // "" = "*"
}

// Server is the Habit King HTTP API server.
type Server struct {
	svc    *engagement.Services
	health *health.Checker
	opts   Options
}

// NewServer creates a new API server. checker may be nil.
func NewServer(svc *engagement.Services, checker *health.Checker, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{svc: svc, health: checker, opts: opts}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": s.opts.Version})
	})

	if s.opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/me", func(r chi.Router) {
			r.Get("/streak", s.handleStreak)
			r.Get("/milestones", s.handleMilestones)
			r.Get("/summary", s.handleSummary)
			r.Get("/productivity", s.handleProductivity)
		})

		r.Route("/groups/{id}", func(r chi.Router) {
			r.Use(s.requireMember)
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/champion", s.handleChampion)
			r.Get("/hall-of-fame", s.handleHallOfFame)
		})

		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.handleListHabits)
			r.Post("/", s.handleCreateHabit)
			r.Put("/order", s.handleReorderHabits)
			r.Delete("/{id}", s.handleDeleteHabit)
			r.Post("/{id}/logs", s.handleLogHabit)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", s.handleCreateTodo)
			r.Post("/{id}/toggle", s.handleToggleTodo)
			r.Delete("/{id}", s.handleDeleteTodo)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleCreateGoal)
			r.Patch("/{id}", s.handleEditGoal)
			r.Delete("/{id}", s.handleDeleteGoal)
			r.Post("/{id}/toggle", s.handleToggleGoal)
		})

		r.Get("/notifications", s.handleNotifications)
		r.Post("/notifications/{id}/shown", s.handleNotificationShown)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    code,
		},
	})
}

// writeDomainError maps engine errors onto HTTP statuses. Anything that is
// not a known rule violation is logged and reported as a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "err", err)
		writeError(w, status, code, "internal error")
		return
	}
	writeError(w, status, code, err.Error())
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrDayLocked):
		return http.StatusLocked, "day_locked"
	case errors.Is(err, domain.ErrEditWindowClosed):
		return http.StatusForbidden, "edit_window_closed"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal"
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.opts.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
