package models

import (
	"strings"
	"time"
)

// All is the selector sentinel meaning "no filtering".
const All = "all"

// FilterMonths are the months the datasets cover, in calendar order
var FilterMonths = []string{"january", "february", "march", "april", "may", "june"}

// MonthSelector selects a single month (1-based) or all months when zero
type MonthSelector int

// DaySelector selects a single weekday or all days when All is true
type DaySelector struct {
	Weekday time.Weekday
	All     bool
}

// AllDays is the day selector that matches every trip
var AllDays = DaySelector{All: true}

// ParseMonth parses "all" or a month name from FilterMonths, case-insensitively.
func ParseMonth(s string) (MonthSelector, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == All {
		return 0, nil
	}
	for i, m := range FilterMonths {
		if m == name {
			return MonthSelector(i + 1), nil
		}
	}
	return 0, &InvalidMonthError{Month: s}
}

// IsAll reports whether the selector matches every month
func (m MonthSelector) IsAll() bool {
	return m == 0
}

// Matches reports whether month (1-12) passes the selector
func (m MonthSelector) Matches(month int) bool {
	return m.IsAll() || int(m) == month
}

func (m MonthSelector) String() string {
	if m.IsAll() {
		return All
	}
	return FilterMonths[m-1]
}

// ParseDay parses "all" or a weekday name, case-insensitively.
func ParseDay(s string) (DaySelector, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == All {
		return AllDays, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return DaySelector{Weekday: d}, nil
		}
	}
	return DaySelector{}, &InvalidDayError{Day: s}
}

// Matches reports whether the weekday name passes the selector. Names are
// compared in their capitalized form, e.g. "Monday".
func (d DaySelector) Matches(dayOfWeek string) bool {
	return d.All || d.Weekday.String() == dayOfWeek
}

func (d DaySelector) String() string {
	if d.All {
		return All
	}
	return strings.ToLower(d.Weekday.String())
}

// TripFilter represents the month/day narrowing applied to a city's trips
type TripFilter struct {
	City  string        `json:"city"`
	Month MonthSelector `json:"month"`
	Day   DaySelector   `json:"day"`
}

// Matches reports whether the trip passes both selectors. Derived columns
// must already be filled.
func (f TripFilter) Matches(t *Trip) bool {
	return f.Month.Matches(t.Month) && f.Day.Matches(t.DayOfWeek)
}

func (m MonthSelector) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (d DaySelector) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
