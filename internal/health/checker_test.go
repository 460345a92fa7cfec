package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/habit-king/habitking/internal/infra/db"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "habitking.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// gaugeValue reads one labelled gauge from the default registry.
func gaugeValue(t *testing.T, name, check string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "check" && l.GetValue() == check {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("gauge %s{check=%q} not found", name, check)
	return 0
}

type brokenDB struct{}

func (brokenDB) Ping() error { return errors.New("connection refused") }

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestNewChecker(t *testing.T) {
	c := NewChecker(newTestDB(t), []string{"Africa/Lagos"}, t.TempDir())
	if len(c.checks) != 3 {
		t.Errorf("checks = %d, want 3", len(c.checks))
	}
}

func TestChecker_RunAllHealthy(t *testing.T) {
	c := NewChecker(newTestDB(t), []string{"Africa/Lagos", "America/New_York"}, t.TempDir())
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("Statuses() = %d, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
	if got := gaugeValue(t, "habitking_health_check_status", "database"); got != 1 {
		t.Errorf("database gauge = %v, want 1", got)
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	c := NewChecker(brokenDB{}, nil, "")

	// Before any run there are no statuses, so IsHealthy is vacuously true.
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestChecker_Failures(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(file, []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		checker *Checker
		failing string
	}{
		{"database down", NewChecker(brokenDB{}, nil, ""), "database"},
		{"unknown zone", NewChecker(newTestDB(t), []string{"Mars/Olympus_Mons"}, ""), "tzdata"},
		{"data dir is a file", NewChecker(newTestDB(t), nil, file), "data_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checker.RunOnce(context.Background())
			if tt.checker.IsHealthy() {
				t.Fatal("IsHealthy() should be false")
			}
			for _, s := range tt.checker.Statuses() {
				if s.Name == tt.failing && (s.Healthy || s.Error == "") {
					t.Errorf("%s = %+v, want failure with message", s.Name, s)
				}
				if s.Name != tt.failing && !s.Healthy {
					t.Errorf("unexpected failure in %s: %s", s.Name, s.Error)
				}
			}
		})
	}
}

func TestChecker_RecoverCalledOnFailure(t *testing.T) {
	recovered := false
	c := &Checker{
		checks: []Check{
			{
				Name:      "always_fail",
				CheckFn:   func(ctx context.Context) error { return os.ErrPermission },
				RecoverFn: func(ctx context.Context) error { recovered = true; return nil },
			},
		},
	}
	c.RunOnce(context.Background())

	if !recovered {
		t.Error("RecoverFn should run after a failed check")
	}
	if s := c.Statuses(); len(s) != 1 || s[0].Healthy {
		t.Errorf("statuses = %+v", s)
	}
}

func TestChecker_RecreatesMissingDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	c := NewChecker(newTestDB(t), nil, dir)

	c.RunOnce(context.Background())
	if c.IsHealthy() {
		t.Fatal("missing data dir should fail the first run")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("data dir not recreated: %v", err)
	}

	c.RunOnce(context.Background())
	if !c.IsHealthy() {
		t.Errorf("statuses after recovery = %+v", c.Statuses())
	}
}

func TestRecoverDataDir_LeavesFileAlone(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(file, []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := recoverDataDir(file); err != nil {
		t.Fatalf("recoverDataDir() error: %v", err)
	}
	if info, _ := os.Stat(file); info.IsDir() {
		t.Error("file replaced by a directory")
	}
}

func TestChecker_StatusesCopy(t *testing.T) {
	c := NewChecker(newTestDB(t), nil, t.TempDir())
	c.RunOnce(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()
	s1[0].Healthy = false
	if !s2[0].Healthy {
		t.Error("Statuses() should return a copy, not a reference")
	}
}
