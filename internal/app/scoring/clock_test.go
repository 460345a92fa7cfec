package scoring_test

import (
	"testing"
	"time"

	"github.com/habit-king/habitking/internal/domain"
)

func TestClock_TodayInUserZone(t *testing.T) {
	clock := fixedClock(time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC))

	tests := []struct {
		zone string
		want domain.Date
	}{
		{"Africa/Lagos", d(2025, 3, 10)},
		{"Asia/Tokyo", d(2025, 3, 11)},
		{"America/New_York", d(2025, 3, 10)},
		{"", d(2025, 3, 10)},
		{"Mars/Olympus_Mons", d(2025, 3, 10)},
	}
	for _, tt := range tests {
		got := clock.Today(domain.Account{ID: "u1", TimeZone: tt.zone})
		if got != tt.want {
			t.Errorf("zone %q: today = %s, want %s", tt.zone, got, tt.want)
		}
	}
}

func TestClock_InvalidZoneFallsBack(t *testing.T) {
	clock := fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	loc := clock.Location(domain.Account{TimeZone: "Not/AZone"})
	if loc.String() != "Africa/Lagos" {
		t.Errorf("fallback = %s, want Africa/Lagos", loc)
	}
	// cached on second lookup
	if again := clock.Location(domain.Account{TimeZone: "Not/AZone"}); again != loc {
		t.Error("expected cached location")
	}
}

func TestClock_IsLocked(t *testing.T) {
	// 23:30 on the 10th in Lagos, 07:30 on the 11th in Tokyo.
	clock := fixedClock(time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC))
	lagos := domain.Account{ID: "a", TimeZone: "Africa/Lagos"}
	tokyo := domain.Account{ID: "b", TimeZone: "Asia/Tokyo"}

	if clock.IsLocked(d(2025, 3, 10), lagos) {
		t.Error("today should not be locked in Lagos")
	}
	if !clock.IsLocked(d(2025, 3, 9), lagos) {
		t.Error("yesterday should be locked in Lagos")
	}
	if !clock.IsLocked(d(2025, 3, 10), tokyo) {
		t.Error("the 10th has closed in Tokyo")
	}
	if clock.IsLocked(d(2025, 3, 12), tokyo) {
		t.Error("future dates are never locked")
	}
}

func TestClock_CutoffIsEndOfDay(t *testing.T) {
	lagos := domain.Account{TimeZone: "Africa/Lagos"}
	// 23:59:59 local is still the day itself
	at := fixedClock(time.Date(2025, 3, 10, 22, 59, 59, 0, time.UTC))
	if at.IsLocked(d(2025, 3, 10), lagos) {
		t.Error("23:59:59 should not lock the day")
	}
	after := fixedClock(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))
	if !after.IsLocked(d(2025, 3, 10), lagos) {
		t.Error("midnight should lock the day")
	}
}

func TestClock_ExemptNeverLocked(t *testing.T) {
	clock := fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	admin := domain.Account{ID: "admin", Exempt: true}
	if clock.IsLocked(d(2024, 1, 1), admin) {
		t.Error("exempt accounts are never locked")
	}
}
