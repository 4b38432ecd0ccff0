// Package timeoff implements the leave-balance ledger: quotas, usage
// aggregation, the monthly carry-forward ledger and its persistence.
package timeoff

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is a directory record plus the metadata the ledger needs.
type Employee struct {
	identity.Identity
	Department string `json:"department,omitempty"`
	PolicyCode string `json:"policy_code,omitempty"` // empty = default policy
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// ParseStatus is lenient about case and surrounding whitespace.
// Unknown values map to Pending so they never count as consumed under the
// Approved-only policy.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved":
		return StatusApproved
	case "rejected":
		return StatusRejected
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusPending
	}
}

// CategoryWorkFromHome marks requests that are not leave at all.
const CategoryWorkFromHome = "Work From Home"

// LeaveRequest is one request as supplied by the leave-request source,
// already denormalized with the requester's identity.
type LeaveRequest struct {
	ID        string            `json:"id"`
	Employee  identity.Identity `json:"employee"`
	LeaveType string            `json:"leave_type"`
	Start     generic.Date      `json:"start_date"`
	End       generic.Date      `json:"end_date"`
	Days      decimal.Decimal   `json:"days"`
	IsHalfDay bool              `json:"is_half_day"`
	Status    Status            `json:"status"`
	Category  string            `json:"category,omitempty"`
}

// Overlaps reports whether the request touches any day of the period.
func (r LeaveRequest) Overlaps(p generic.PeriodKey) bool {
	start, end := r.span()
	return !end.Before(p.Start()) && !start.After(p.End())
}

// span returns the request's [start, end], treating an inverted range as
// the start day alone.
func (r LeaveRequest) span() (generic.Date, generic.Date) {
	if r.End.IsZero() || r.End.Before(r.Start) {
		return r.Start, r.Start
	}
	return r.Start, r.End
}

// SpanDays is the inclusive calendar length of the request, at least 1.
func (r LeaveRequest) SpanDays() int {
	start, end := r.span()
	return generic.DaysBetweenInclusive(start, end)
}

// HasCategory compares the request category case-insensitively.
func (r LeaveRequest) HasCategory(category string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Category), strings.TrimSpace(category))
}
