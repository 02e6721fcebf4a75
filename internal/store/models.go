package store

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Storage keys.
const (
	EntriesKey      = "timetracker"
	InitialHoursKey = "timetracker_initial_hours"
)

// DateLayout is the only accepted entry date format.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate     = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidValue    = errors.New("minutes must be a positive number")
	ErrInvalidHours    = errors.New("initial hours must be a non-negative number")
	ErrIndexOutOfRange = errors.New("entry index out of range")
	ErrEntryChanged    = errors.New("entry was changed by another edit")
)

// Entry is one logged observation: minutes spent on a calendar day.
type Entry struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Note  string  `json:"note,omitempty"`
}

// Validate checks the date format and that the value is a positive finite number.
func (e Entry) Validate() error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) || e.Value <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidValue, e.Value)
	}
	return nil
}

// ParseDate parses a zero-padded YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
