package generic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PERIOD KEY - The ledger's accounting unit
// =============================================================================

// PeriodKey identifies one calendar month. Periods form a total order and
// the previous period of January is December of the prior year.
//
// Examples:
//   - 2025-01: Jan 1 - Jan 31 2025, previous 2024-12
//   - 2024-02: Feb 1 - Feb 29 2024 (leap year)
type PeriodKey struct {
	Year  int
	Month time.Month
}

// NewPeriodKey builds a period, normalizing an out-of-range month.
func NewPeriodKey(year int, month time.Month) PeriodKey {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return PeriodKey{Year: t.Year(), Month: t.Month()}
}

// ParsePeriodKey parses the "YYYY-MM" month key.
func ParsePeriodKey(s string) (PeriodKey, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return PeriodKey{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return PeriodKey{Year: t.Year(), Month: t.Month()}, nil
}

// Start is the first day of the month.
func (p PeriodKey) Start() Date { return NewDate(p.Year, p.Month, 1) }

// End is the last day of the month.
func (p PeriodKey) End() Date { return NewDate(p.Year, p.Month+1, 1).AddDays(-1) }

// Prev returns the month before p, rolling the year.
func (p PeriodKey) Prev() PeriodKey { return NewPeriodKey(p.Year, p.Month-1) }

// Next returns the month after p, rolling the year.
func (p PeriodKey) Next() PeriodKey { return NewPeriodKey(p.Year, p.Month+1) }

// Contains reports whether d falls inside the month.
func (p PeriodKey) Contains(d Date) bool {
	return !d.Before(p.Start()) && !d.After(p.End())
}

func (p PeriodKey) IsZero() bool { return p.Year == 0 && p.Month == 0 }

// String returns the "YYYY-MM" month key used in storage.
func (p PeriodKey) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p PeriodKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PeriodKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriodKey(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
