/*
usage.go - Days consumed per employee

PURPOSE:
  Turns a list of leave requests into "days used". There are two distinct
  questions and they must not be mixed up:

  1. TOTAL USAGE for a leave type (quota-left displays, request validation)
     Sum of Days over the employee's requests of that type whose status
     is in the caller's ConsumptionPolicy.

  2. PERIOD USAGE for the carry-forward ledger
     The share of a request that falls inside one calendar month.

CONSUMPTION POLICY:
  Which statuses count as "used" is an explicit argument. Call sites pick:
    - Balance summary:     ConsumeApproved
    - Request validation:  ConsumeApprovedAndPending (pending requests hold days)
    - Period ledger:       Approved only, Work From Home excluded

PRORATION:
  A request overlapping a month contributes
      Round2(Days * overlapDays / spanDays)
  where both day counts are calendar days, weekends included. A 10-day
  request from Apr 28 to May 7 is 3/10 April and 7/10 May.

  A half-day request on a single date contributes a flat 0.5 to the month
  containing it and is never split.
*/
package timeoff

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
)

// =============================================================================
// CONSUMPTION POLICY
// =============================================================================

// ConsumptionPolicy is the set of statuses treated as consumed.
type ConsumptionPolicy struct {
	Name     string
	Statuses []Status
}

var (
	// ConsumeApproved counts only approved requests.
	ConsumeApproved = ConsumptionPolicy{Name: "approved", Statuses: []Status{StatusApproved}}

	// ConsumeApprovedAndPending also holds days for requests awaiting approval.
	ConsumeApprovedAndPending = ConsumptionPolicy{Name: "approved+pending", Statuses: []Status{StatusApproved, StatusPending}}
)

// Counts reports whether a status is consumed under this policy.
func (p ConsumptionPolicy) Counts(s Status) bool {
	for _, st := range p.Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// =============================================================================
// TOTAL USAGE
// =============================================================================

// TotalUsage sums Days for the employee's requests of leaveType (case-insensitive)
// that count under policy.
func TotalUsage(emp identity.Identity, leaveType string, requests []LeaveRequest, policy ConsumptionPolicy) decimal.Decimal {
	want := strings.TrimSpace(leaveType)
	total := decimal.Zero
	for _, r := range requests {
		if !policy.Counts(r.Status) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(r.LeaveType), want) {
			continue
		}
		if !identity.MatchIdentity(emp, r.Employee) {
			continue
		}
		total = total.Add(r.Days)
	}
	return total
}

// =============================================================================
// PERIOD USAGE
// =============================================================================

// PeriodUsage attributes the part of a request that falls inside period.
// It ignores status; callers filter first.
func PeriodUsage(r LeaveRequest, period generic.PeriodKey) decimal.Decimal {
	if !r.Overlaps(period) {
		return decimal.Zero
	}

	span := r.SpanDays()
	if r.IsHalfDay && span == 1 {
		return generic.HalfDay
	}

	start, end := r.span()
	overlap := generic.DaysBetweenInclusive(
		generic.MaxDate(start, period.Start()),
		generic.MinDate(end, period.End()),
	)
	share := r.Days.Mul(decimal.NewFromInt(int64(overlap))).Div(decimal.NewFromInt(int64(span)))
	return generic.Round2(share)
}

// countsForLedger is the ledger's filter: approved and not an excluded category.
func countsForLedger(r LeaveRequest, excluded []string) bool {
	if r.Status != StatusApproved {
		return false
	}
	for _, c := range excluded {
		if r.HasCategory(c) {
			return false
		}
	}
	return true
}

// LedgerUsage sums PeriodUsage over the employee's approved, non-excluded requests.
func LedgerUsage(emp identity.Identity, requests []LeaveRequest, period generic.PeriodKey, excluded []string) decimal.Decimal {
	var shares []decimal.Decimal
	for _, r := range requests {
		if !countsForLedger(r, excluded) {
			continue
		}
		if !identity.MatchIdentity(emp, r.Employee) {
			continue
		}
		shares = append(shares, PeriodUsage(r, period))
	}
	return generic.Sum(shares...)
}
