package scoring

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without zoneinfo

	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/logger"
)

// Clock resolves "now", "today" and day locks in each user's time zone.
// Loaded zones are cached; unknown zones fall back to a fixed zone.
type Clock struct {
	now      func() time.Time
	fallback *time.Location

	mu    sync.RWMutex
	zones map[string]*time.Location
}

// NewClock creates a clock. now may be nil for the wall clock.
func NewClock(fallbackZone string, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	fb, err := time.LoadLocation(fallbackZone)
	if err != nil || fallbackZone == "" {
		logger.Warn("fallback zone unavailable, using UTC", "zone", fallbackZone)
		fb = time.UTC
	}
	return &Clock{
		now:      now,
		fallback: fb,
		zones:    make(map[string]*time.Location),
	}
}

// Location returns the account's zone, or the fallback when it is empty or invalid.
func (c *Clock) Location(a domain.Account) *time.Location {
	name := strings.TrimSpace(a.TimeZone)
	if name == "" {
		return c.fallback
	}

	c.mu.RLock()
	loc, ok := c.zones[name]
	c.mu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("invalid time zone, using fallback",
			"user", a.ID, "zone", name, "fallback", c.fallback.String())
		loc = c.fallback
	}

	c.mu.Lock()
	c.zones[name] = loc
	c.mu.Unlock()
	return loc
}

// Instant is the current instant without zone conversion.
func (c *Clock) Instant() time.Time { return c.now() }

// Now is the current instant in the account's zone.
func (c *Clock) Now(a domain.Account) time.Time {
	return c.now().In(c.Location(a))
}

// Today is the account's current calendar date.
func (c *Clock) Today(a domain.Account) domain.Date {
	return domain.DateOf(c.Now(a))
}

// IsLocked reports whether d has closed for the account: the local time is
// past d 23:59:59. Exempt accounts are never locked.
func (c *Clock) IsLocked(d domain.Date, a domain.Account) bool {
	if a.Exempt {
		return false
	}
	loc := c.Location(a)
	cutoff := time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, loc)
	return c.now().In(loc).After(cutoff)
}

// LocalDate returns the calendar date of t in the account's zone.
func (c *Clock) LocalDate(t time.Time, a domain.Account) domain.Date {
	return domain.DateOf(t.In(c.Location(a)))
}
