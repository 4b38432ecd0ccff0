/*
Package generic provides the domain-agnostic building blocks of the leave ledger.

PURPOSE:
  This package contains the calendar, amount and storage primitives that the
  ledger is built on. It knows nothing about employees, leave types or
  policies; the timeoff package layers those semantics on top.

KEY CONCEPTS IN THIS FILE (types.go):
  - Day amounts: decimal.Decimal values rounded to two places
  - Round2: the single rounding rule used by every ledger formula
  - ParseDays: lenient parsing for HR-entered values (invalid input -> 0)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so 0.1 + 0.2 really is 0.3
  2. One rounding rule: every persisted amount goes through Round2
  3. Never NaN: free-form input is coerced to zero, never propagated

USAGE:
  used := generic.Round2(days.Mul(decimal.NewFromInt(3)).Div(decimal.NewFromInt(10)))
  closing := generic.Round2(opening.Add(allocated).Sub(used))

SEE ALSO:
  - time.go: Calendar dates
  - period.go: Monthly accounting periods
  - store.go: Raw tagged record persistence
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY AMOUNTS
// =============================================================================

// HalfDay is the flat amount a single-date half-day request consumes.
var HalfDay = decimal.New(5, -1)

// Days builds a day amount from a float literal. Intended for constants and tests.
func Days(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseDays parses a user-entered day amount. Blank or non-numeric input
// yields zero rather than an error.
func ParseDays(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Sum adds all amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
