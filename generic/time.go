package generic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar date without a time component
// =============================================================================

// DateLayout is the wire and storage format for dates.
const DateLayout = "2006-01-02"

// Date is a calendar day. Leave requests and periods never carry a time of day,
// so Date normalizes to midnight UTC on construction.
type Date struct {
	t time.Time
}

// NewDate builds a date. Out-of-range values normalize like time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time component of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts "YYYY-MM-DD" and also RFC3339 timestamps, keeping only the day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Comparison
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) IsZero() bool       { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) String() string { return d.t.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysBetweenInclusive counts calendar days in [from, to], weekends included.
// Returns 0 when to is before from.
func DaysBetweenInclusive(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.t.Sub(from.t).Hours()/24) + 1
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}
