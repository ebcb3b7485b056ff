package simulation

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Clock is the simulated day counter. Day 0 is the start date; the clock
// only ever moves forward, one day at a time. All dates are UTC calendar
// days.
type Clock struct {
	start time.Time
	today int
}

// NewClock anchors day 0 at the UTC midnight of the given start time.
func NewClock(start time.Time) *Clock {
	s := start.UTC()
	return &Clock{start: time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Today() int { return c.today }

// Advance moves the clock forward one day.
func (c *Clock) Advance() { c.today++ }

// DateForDay returns the ISO calendar date of a day index.
func (c *Clock) DateForDay(day int) string {
	return c.start.AddDate(0, 0, day).Format(dateLayout)
}

func (c *Clock) StartDateISO() string { return c.start.Format(dateLayout) }

func (c *Clock) TodayDateISO() string { return c.DateForDay(c.today) }

// DayIndexForDate maps an ISO date back to a day index. Dates before the
// start map to negative indices.
func (c *Clock) DayIndexForDate(dateISO string) (int, error) {
	t, err := time.Parse(dateLayout, dateISO)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", dateISO, err)
	}
	return int(t.Sub(c.start).Hours() / 24), nil
}

// TimeForDayHour returns the instant of a given hour on a given day.
func (c *Clock) TimeForDayHour(day, hour int) time.Time {
	return c.start.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
}
