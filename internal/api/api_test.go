package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/habit-king/habitking/internal/app/engagement"
	"github.com/habit-king/habitking/internal/app/scoring"
	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/infra/db"
)

const testSecret = "test-secret"

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()
	store, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "habitking.db"))
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, id := range []string{"ada", "bo"} {
		acct := domain.Account{ID: id, DisplayName: id, TimeZone: "UTC", JoinedAt: testNow}
		if err := store.UpsertAccount(ctx, acct); err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}
	if err := store.CreateGroup(ctx, domain.Group{ID: "g1", Name: "Early Birds", CreatorID: "ada", CreatedAt: testNow}); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	clock := scoring.NewClock("UTC", func() time.Time { return testNow })
	svc := engagement.New(store, scoring.NewEngine(clock, scoring.DefaultPolicy()), domain.DefaultNotificationPolicy(), 1)
	srv := NewServer(svc, nil, Options{
		Version:         "1.2.3",
		JWTSecret:       testSecret,
		AllowUserHeader: true,
		Metrics:         true,
	})
	return srv, store
}

// do sends a request as user (no identity when user is "").
func do(t *testing.T, srv *Server, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	decodeBody(t, w, &body)
	return body.Error.Type
}

// ─── Health & Version ───────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAPI_Version(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, "GET", "/api/version", "", nil)
	var body map[string]string
	decodeBody(t, w, &body)
	if body["version"] != "1.2.3" {
		t.Errorf("version = %q", body["version"])
	}
}

func TestAPI_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, "GET", "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// ─── Identity ───────────────────────────────────────────────────────────────

func TestAPI_RequiresIdentity(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, "GET", "/api/me/streak", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAPI_BearerToken(t *testing.T) {
	srv, _ := newTestServer(t)

	token, err := IssueToken(testSecret, "ada", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	forged, err := IssueToken("other-secret", "ada", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/me/streak", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	token, err := IssueToken(testSecret, "ada", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := VerifyToken(testSecret, token); err == nil {
		t.Error("expired token accepted")
	}
}

// ─── Habits & Logs ──────────────────────────────────────────────────────────

func TestAPI_HabitLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "POST", "/api/habits", "ada", map[string]string{"name": "Stretch", "category": "personal"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var h domain.Habit
	decodeBody(t, w, &h)
	if h.Category != domain.CategoryPersonal || h.PointValue != 1 {
		t.Errorf("habit = %+v", h)
	}

	w = do(t, srv, "POST", "/api/habits/"+h.ID+"/logs", "ada", map[string]interface{}{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("log status = %d: %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "POST", "/api/habits/"+h.ID+"/logs", "ada", map[string]interface{}{"date": "2025-03-09", "completed": true})
	if w.Code != http.StatusLocked {
		t.Errorf("closed day status = %d, want 423", w.Code)
	}

	w = do(t, srv, "GET", "/api/me/streak", "ada", nil)
	var streak struct {
		Streak     domain.StreakState `json:"streak"`
		LiveStreak int                `json:"live_streak"`
	}
	decodeBody(t, w, &streak)
	if !streak.Streak.TodayQualified || streak.LiveStreak != 1 {
		t.Errorf("streak = %+v", streak)
	}

	w = do(t, srv, "GET", "/api/me/summary?month=2025-03", "ada", nil)
	var sum domain.MonthlySummary
	decodeBody(t, w, &sum)
	if sum.HabitPoints != 1 || sum.Month.String() != "2025-03" {
		t.Errorf("summary = %+v", sum)
	}

	// Created 0s ago, so still deletable.
	w = do(t, srv, "DELETE", "/api/habits/"+h.ID, "ada", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d: %s", w.Code, w.Body.String())
	}
}

func TestAPI_ErrorStatuses(t *testing.T) {
	srv, _ := newTestServer(t)
	for i := 0; i < 10; i++ {
		w := do(t, srv, "POST", "/api/habits", "ada", map[string]string{"name": fmt.Sprintf("h%d", i), "category": "Personal"})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d: %d", i, w.Code)
		}
	}

	tests := []struct {
		name     string
		method   string
		path     string
		user     string
		body     interface{}
		want     int
		wantType string
	}{
		{"capacity", "POST", "/api/habits", "ada", map[string]string{"name": "h11", "category": "Personal"}, http.StatusConflict, "capacity_exceeded"},
		{"team by member", "POST", "/api/habits", "bo", map[string]string{"name": "run", "category": "Team", "group_id": "g1"}, http.StatusForbidden, "forbidden"},
		{"unknown habit", "DELETE", "/api/habits/nope", "ada", nil, http.StatusNotFound, "not_found"},
		{"bad month", "GET", "/api/me/summary?month=March", "ada", nil, http.StatusBadRequest, "invalid_input"},
		{"bad json", "POST", "/api/goals", "ada", "not an object", http.StatusBadRequest, "invalid_input"},
		{"goal window", "POST", "/api/goals", "ada", map[string]string{"goal_text": "read"}, http.StatusForbidden, "edit_window_closed"},
		{"unknown group", "GET", "/api/groups/nope/leaderboard", "ada", nil, http.StatusNotFound, "not_found"},
		{"leaderboard by non-member", "GET", "/api/groups/g1/leaderboard", "bo", nil, http.StatusForbidden, "forbidden"},
		{"hall of fame by non-member", "GET", "/api/groups/g1/hall-of-fame", "bo", nil, http.StatusForbidden, "forbidden"},
		{"unknown account", "GET", "/api/me/streak", "ghost", nil, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, tt.method, tt.path, tt.user, tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if got := errorType(t, w); got != tt.wantType {
				t.Errorf("type = %q, want %q", got, tt.wantType)
			}
		})
	}
}

// ─── Todos, Groups & Notifications ──────────────────────────────────────────

func TestAPI_TodosAndProductivity(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, "POST", "/api/todos", "ada", map[string]string{"task_name": "email"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create todo = %d: %s", w.Code, w.Body.String())
	}
	var td domain.Todo
	decodeBody(t, w, &td)
	if td.TaskDate.String() != "2025-03-10" {
		t.Errorf("task date = %s", td.TaskDate)
	}

	w = do(t, srv, "POST", "/api/todos/"+td.ID+"/toggle", "ada", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/me/productivity", "ada", nil)
	var view engagement.ProductivityView
	decodeBody(t, w, &view)
	if view.Percent != 100 || view.Bonus != 20 || !view.NextTier.MaxReached {
		t.Errorf("productivity = %+v", view)
	}

	w = do(t, srv, "DELETE", "/api/todos/"+td.ID, "bo", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("other user's delete = %d, want 404", w.Code)
	}
}

func TestAPI_GroupViews(t *testing.T) {
	srv, store := newTestServer(t)

	w := do(t, srv, "GET", "/api/groups/g1/leaderboard?month=2025-03", "ada", nil)
	var board struct {
		Leaderboard []domain.MonthlySummary `json:"leaderboard"`
	}
	decodeBody(t, w, &board)
	if len(board.Leaderboard) != 1 || board.Leaderboard[0].UserID != "ada" {
		t.Errorf("leaderboard = %+v", board)
	}

	w = do(t, srv, "GET", "/api/groups/g1/champion?month=2025-02", "ada", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("champion = %d", w.Code)
	}
	var champ struct {
		Champion *domain.ChampionRecord `json:"champion"`
	}
	decodeBody(t, w, &champ)
	if champ.Champion != nil {
		t.Errorf("champion = %+v, want null", champ.Champion)
	}

	w = do(t, srv, "GET", "/api/groups/g1/hall-of-fame", "ada", nil)
	var hof domain.HallOfFame
	decodeBody(t, w, &hof)
	if hof.GroupID != "g1" || len(hof.Champions) != 0 {
		t.Errorf("hall of fame = %+v", hof)
	}

	// joining opens the group's views
	if w := do(t, srv, "GET", "/api/groups/g1/champion", "bo", nil); w.Code != http.StatusForbidden {
		t.Fatalf("champion before joining = %d, want 403", w.Code)
	}
	err := store.AddMember(context.Background(), domain.GroupMember{GroupID: "g1", UserID: "bo", Role: domain.RoleMember, JoinedAt: testNow})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	w = do(t, srv, "GET", "/api/groups/g1/leaderboard?month=2025-03", "bo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard after joining = %d: %s", w.Code, w.Body.String())
	}
}

func TestAPI_Notifications(t *testing.T) {
	srv, store := newTestServer(t)
	n := domain.Notification{ID: "n1", UserID: "ada", Type: domain.NotifyGoalBonus, Title: "Goals", CreatedAt: testNow}
	if err := store.InsertNotification(context.Background(), n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}

	w := do(t, srv, "GET", "/api/notifications", "ada", nil)
	var body struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	decodeBody(t, w, &body)
	if len(body.Notifications) != 1 {
		t.Fatalf("notifications = %+v", body)
	}

	if w := do(t, srv, "GET", "/api/notifications?limit=x", "ada", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d", w.Code)
	}
	if w := do(t, srv, "POST", "/api/notifications/n1/shown", "bo", nil); w.Code != http.StatusNotFound {
		t.Errorf("other user's mark = %d, want 404", w.Code)
	}
	if w := do(t, srv, "POST", "/api/notifications/n1/shown", "ada", nil); w.Code != http.StatusNoContent {
		t.Errorf("mark shown = %d", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrDayLocked, http.StatusLocked},
		{domain.ErrHabitDeleteWindow, http.StatusForbidden},
		{domain.ErrGoalLimit, http.StatusConflict},
		{domain.ErrTodoNotFound, http.StatusNotFound},
		{domain.ErrInvalidHours, http.StatusBadRequest},
		{domain.ErrTeamHabitLocked, http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", domain.ErrDayLocked), http.StatusLocked},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
