package timeoff

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
)

// =============================================================================
// BALANCE SUMMARY - Quota left per leave type
// =============================================================================

// TypeBalance is what a quota-left display shows for one leave type.
type TypeBalance struct {
	LeaveType   string          `json:"leave_type"`
	Entitlement decimal.Decimal `json:"entitlement"`
	Used        decimal.Decimal `json:"used"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// Summarize reports entitlement, approved usage and remaining days for every
// type in the catalog. Pending requests are not subtracted here.
func Summarize(emp identity.Identity, catalog QuotaCatalog, requests []LeaveRequest) []TypeBalance {
	types := catalog.Types()
	out := make([]TypeBalance, 0, len(types))
	for _, lt := range types {
		entitlement, _ := catalog.Get(lt)
		used := TotalUsage(emp, lt, requests, ConsumeApproved)
		out = append(out, TypeBalance{
			LeaveType:   lt,
			Entitlement: entitlement,
			Used:        used,
			Remaining:   generic.Round2(entitlement.Sub(used)),
		})
	}
	return out
}

// =============================================================================
// REQUEST VALIDATION - Can a new request be filed?
// =============================================================================

// QuotaExceededError details a request that does not fit its entitlement.
type QuotaExceededError struct {
	EmployeeID  string
	LeaveType   string
	Entitlement decimal.Decimal
	Used        decimal.Decimal
	Requested   decimal.Decimal
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: entitlement %s, used %s, requested %s",
		e.LeaveType, e.Entitlement.String(), e.Used.String(), e.Requested.String())
}

func (e *QuotaExceededError) Unwrap() error { return generic.ErrQuotaExceeded }

// ValidateRequest checks a new request against the catalog. Pending requests
// already hold their days, so usage here is Approved + Pending.
func ValidateRequest(req LeaveRequest, catalog QuotaCatalog, existing []LeaveRequest) error {
	if !req.End.IsZero() && req.End.Before(req.Start) {
		return generic.ErrInvalidRange
	}
	entitlement, ok := catalog.Lookup(req.LeaveType)
	if !ok {
		return fmt.Errorf("%w: %q", generic.ErrUnknownLeaveType, req.LeaveType)
	}

	others := make([]LeaveRequest, 0, len(existing))
	for _, r := range existing {
		if req.ID != "" && r.ID == req.ID {
			continue
		}
		others = append(others, r)
	}

	used := TotalUsage(req.Employee, req.LeaveType, others, ConsumeApprovedAndPending)
	if used.Add(req.Days).GreaterThan(entitlement) {
		return &QuotaExceededError{
			EmployeeID:  req.Employee.ID,
			LeaveType:   req.LeaveType,
			Entitlement: entitlement,
			Used:        used,
			Requested:   req.Days,
		}
	}
	return nil
}
