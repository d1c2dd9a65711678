package core

import (
	"fmt"
	"regexp"
	"time"
)

// Month is a month in a specific year.
type Month time.Time

var monthKeyPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`)

// NewMonth returns the Month for year and month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.Local))
}

// MonthOf returns the Month in which t occurs in t's location.
func MonthOf(t time.Time) Month {
	year, month, _ := t.Date()
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, t.Location()))
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	if !monthKeyPattern.MatchString(s) {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	t, err := time.ParseInLocation("2006-01", s, time.Local)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

// String returns the month key formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

// Year returns the calendar year.
func (m Month) Year() int {
	return time.Time(m).Year()
}

// Month returns the calendar month.
func (m Month) Month() time.Month {
	return time.Time(m).Month()
}

// AddMonths shifts the month by offset calendar months in either direction.
func (m Month) AddMonths(offset int) Month {
	return Month(time.Time(m).AddDate(0, offset, 0))
}

// Equal reports whether both values name the same calendar month.
func (m Month) Equal(n Month) bool {
	return m.Year() == n.Year() && m.Month() == n.Month()
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return time.Time(m).IsZero()
}

// Time returns the first instant of the month.
func (m Month) Time() time.Time {
	return time.Time(m)
}
