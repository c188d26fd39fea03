package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
)

// Period selects rows by the prefix of their ISO date: a calendar month
// ("YYYY-MM"), a year ("YYYY"), or everything when empty.
type Period struct {
	prefix string
}

// AllTime is the unbounded period.
func AllTime() Period {
	return Period{}
}

// MonthPeriod parses a "YYYY-MM" filter. An empty string yields AllTime.
func MonthPeriod(month string) (Period, error) {
	if month == "" {
		return AllTime(), nil
	}
	if !monthPattern.MatchString(month) {
		return Period{}, &ValidationError{Field: "month", Reason: fmt.Sprintf("expected YYYY-MM, got %q", month)}
	}
	return Period{prefix: month}, nil
}

// YearPeriod selects every date of the given year.
func YearPeriod(year int) (Period, error) {
	raw := fmt.Sprintf("%04d", year)
	if year < 0 || !yearPattern.MatchString(raw) {
		return Period{}, &ValidationError{Field: "year", Reason: "expected a four digit year"}
	}
	return Period{prefix: raw}, nil
}

// MustMonth builds a month period from a year and month number.
func MustMonth(year, month int) Period {
	p, err := MonthPeriod(fmt.Sprintf("%04d-%02d", year, month))
	if err != nil {
		panic(err)
	}
	return p
}

func (p Period) IsAllTime() bool {
	return p.prefix == ""
}

// IsYear reports whether p covers a whole year.
func (p Period) IsYear() bool {
	return len(p.prefix) == 4
}

// Key is the raw prefix ("", "YYYY" or "YYYY-MM").
func (p Period) Key() string {
	return p.prefix
}

// Len is the number of leading date characters compared by Contains.
func (p Period) Len() int {
	return len(p.prefix)
}

// Contains reports whether an ISO date falls in p. The comparison is an exact
// match on the leading characters; no calendar or timezone logic applies.
func (p Period) Contains(date string) bool {
	if p.prefix == "" {
		return true
	}
	if len(date) < len(p.prefix) {
		return false
	}
	return date[:len(p.prefix)] == p.prefix
}

func (p Period) String() string {
	if p.prefix == "" {
		return "all"
	}
	return p.prefix
}

// MonthKey returns the "YYYY-MM" bucket of an ISO date, or "" when the date is
// too short to carry one.
func MonthKey(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

// ParseMonthNumber accepts "3" or "03" and returns 3.
func ParseMonthNumber(raw string) (int, error) {
	m, err := strconv.Atoi(raw)
	if err != nil || m < 1 || m > 12 {
		return 0, &ValidationError{Field: "month", Reason: fmt.Sprintf("expected 1-12, got %q", raw)}
	}
	return m, nil
}
