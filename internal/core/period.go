package core

import (
	"fmt"
	"time"
)

// Period is a calendar month keyed as YYYY-MM. It is the unit for budget
// overrides and for all monthly aggregation.
type Period string

const periodLayout = "2006-01"

// CurrentPeriod returns the canonical key for the month containing now.
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// PeriodOf canonicalizes an arbitrary date into its month key.
func PeriodOf(t time.Time) Period {
	return Period(t.Format(periodLayout))
}

// ParsePeriod validates a YYYY-MM string coming in from a request boundary.
// Keys produced by CurrentPeriod/PeriodOf are canonical by construction and
// never need re-parsing.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// Bounds returns the first and last calendar day of the period, inclusive.
// Month length is handled by the time package: day 0 of the next month is
// the last day of this one.
func (p Period) Bounds() (first, last Date) {
	t, err := time.Parse(periodLayout, string(p))
	if err != nil {
		// A malformed key is a programmer error; canonical keys always parse.
		panic(fmt.Sprintf("core: malformed period %q", p))
	}
	first = NewDate(t.Year(), int(t.Month()), 1)
	last = NewDate(t.Year(), int(t.Month())+1, 0)
	return first, last
}

// Contains reports whether the given date falls inside the period.
func (p Period) Contains(d Date) bool {
	return PeriodOf(d.Time) == p
}

// RecentPeriods returns the last n months, newest first, starting with the
// current one. Used to populate the budget month picker.
func RecentPeriods(n int) []Period {
	now := time.Now()
	periods := make([]Period, 0, n)
	for i := 0; i < n; i++ {
		periods = append(periods, PeriodOf(time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)))
	}
	return periods
}
