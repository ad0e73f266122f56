package shared

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate indicates a date or timestamp string that does not match
// the wire formats.
var ErrInvalidDate = errors.New("invalid date")

// Wire formats for calendar dates and timestamps. Both sides of the API
// exchange host-local time with no zone offset.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// FormatDate renders t as a local calendar date.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// FormatDateTime renders t as a local timestamp.
func FormatDateTime(t time.Time) string {
	return t.Local().Format(DateTimeLayout)
}

// ParseDate parses a YYYY-MM-DD string in local time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseDateTime parses a YYYY-MM-DD HH:mm:ss string in local time.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DayStart truncates t to local midnight.
func DayStart(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// DayEnd returns the last instant of t's local day.
func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24*time.Hour - time.Nanosecond)
}

// DateRange is an inclusive calendar-date interval.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange builds an inclusive range covering whole local days.
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: DayStart(from), To: DayEnd(to)}
}

// SingleDay returns a range covering one local day.
func SingleDay(day time.Time) DateRange {
	return NewDateRange(day, day)
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	local := t.Local()
	return !local.Before(r.From) && !local.After(r.To)
}
