package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/habit-king/habitking/internal/app/engagement"
	"github.com/habit-king/habitking/internal/domain"
)

// ─── Request Helpers ────────────────────────────────────────────────────────

// decode reads a JSON body into v.
func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// monthParam parses ?month=YYYY-MM; absent means the current month.
func monthParam(r *http.Request) (domain.Month, error) {
	v := r.URL.Query().Get("month")
	if v == "" {
		return domain.Month{}, nil
	}
	return domain.ParseMonth(v)
}

// ─── Scores (/api/me, /api/groups) ──────────────────────────────────────────

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Streaks.GetStreak(r.Context(), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"streak":      st,
		"live_streak": st.LiveStreak(),
	})
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	awards, err := s.svc.Streaks.Milestones(r.Context(), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"milestones": awards})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	sum, err := s.svc.Summaries.GetMonthlySummary(r.Context(), UserID(r.Context()), m)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleProductivity(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	view, err := s.svc.Summaries.GetProductivity(r.Context(), UserID(r.Context()), m)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	board, err := s.svc.Summaries.GetLeaderboard(r.Context(), chi.URLParam(r, "id"), m)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": board})
}

func (s *Server) handleChampion(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	rec, err := s.svc.Champions.GetChampion(r.Context(), chi.URLParam(r, "id"), m)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	// A null champion is a normal answer: nobody qualified (yet).
	writeJSON(w, http.StatusOK, map[string]interface{}{"champion": rec})
}

func (s *Server) handleHallOfFame(w http.ResponseWriter, r *http.Request) {
	hof, err := s.svc.Champions.GetHallOfFame(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hof)
}

// ─── Habits (/api/habits) ───────────────────────────────────────────────────

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.svc.Habits.ListHabits(r.Context(), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"habits": habits})
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var in engagement.CreateHabitInput
	if err := decode(r, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h, err := s.svc.Habits.CreateHabit(r.Context(), UserID(r.Context()), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

type reorderRequest struct {
	Category domain.Category `json:"category"`
	IDs      []string        `json:"ids"`
}

func (s *Server) handleReorderHabits(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.svc.Habits.ReorderHabits(r.Context(), UserID(r.Context()), req.Category, req.IDs); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Habits.DeleteHabit(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogHabit(w http.ResponseWriter, r *http.Request) {
	var in engagement.LogInput
	if err := decode(r, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}
	log, err := s.svc.Habits.ToggleHabitLog(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// ─── To-dos (/api/todos) ────────────────────────────────────────────────────

type createTodoRequest struct {
	Date     domain.Date `json:"task_date"`
	TaskName string      `json:"task_name"`
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decode(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	t, err := s.svc.Todos.CreateTodo(r.Context(), UserID(r.Context()), req.Date, req.TaskName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Todos.ToggleTodo(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Todos.DeleteTodo(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Goals (/api/goals) ─────────────────────────────────────────────────────

type goalRequest struct {
	GoalText string `json:"goal_text"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	m, err := monthParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	goals, err := s.svc.Goals.ListGoals(r.Context(), UserID(r.Context()), m)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decode(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	g, err := s.svc.Goals.CreateGoal(r.Context(), UserID(r.Context()), req.GoalText)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleEditGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decode(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	g, err := s.svc.Goals.EditGoal(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), req.GoalText)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Goals.DeleteGoal(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleGoal(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Goals.ToggleGoal(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Notifications (/api/notifications) ─────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_input", "limit must be a positive integer")
			return
		}
		limit = n
	}
	notifs, err := s.svc.Notifications.Pending(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifs})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Notifications.MarkShown(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
