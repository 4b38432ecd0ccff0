/*
ledger.go - Monthly carry-forward ledger

PURPOSE:
  For one month and a list of employees, computes each employee's
  opening balance, allocation, usage and closing balance. The closing
  balance of month P becomes the opening balance of month P+1 once HR
  saves a snapshot for P.

ALGORITHM (per employee, in name order):
  1. policy    = employee override or the default policy code
  2. opening   = snapshot(employee, P-1, policy).Closing, or 0 if none
  3. allocated = monthly accrual for the policy
  4. used      = sum of prorated approved usage inside P
                 (Work From Home and other excluded categories skipped)
  5. closing   = Round2(opening + allocated - used)
     carry     = closing

CRITICAL INVARIANTS:
  1. BALANCE IDENTITY: closing == Round2(opening + allocated - used)
  2. CHAINING: opening(P) == closing(P-1) when a snapshot exists, else 0
  3. PURE: same inputs, same rows. Byte for byte.
  4. NO FLOOR: closing may go negative unless FloorAtZero is configured

LIFECYCLE:
  Rows are computed whenever a month is viewed and are not persisted.
  Only "Recalculate & Save" (service.go) writes snapshots.

EXAMPLE:
  E001, accrual 1.5, no prior snapshot, approved 2-day leave in the month:
    opening 0, allocated 1.5, used 2, closing -0.5, carry -0.5

SEE ALSO:
  - usage.go: Proration
  - override.go: Manual edits before save
  - repository.go: Snapshot persistence
*/
package timeoff

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
)

// =============================================================================
// LEDGER ROW
// =============================================================================

// LedgerRow is one employee's accounting for one period under one policy.
type LedgerRow struct {
	EmployeeID       string            `json:"employeeId"`
	EmployeeName     string            `json:"employeeName"`
	Department       string            `json:"department"`
	PolicyCode       string            `json:"policyCode"`
	Period           generic.PeriodKey `json:"monthKey"`
	Opening          decimal.Decimal   `json:"opening"`
	Allocated        decimal.Decimal   `json:"allocated"`
	Used             decimal.Decimal   `json:"used"`
	Closing          decimal.Decimal   `json:"closing"`
	CarryForward     decimal.Decimal   `json:"carryForward"`
	IsManualOverride bool              `json:"isManualOverride"`
}

// Key returns the snapshot identity of the row.
func (r LedgerRow) Key() SnapshotKey {
	return SnapshotKey{EmployeeID: r.EmployeeID, Period: r.Period, PolicyCode: r.PolicyCode}
}

// Balanced reports whether the row satisfies the balance identity.
func (r LedgerRow) Balanced() bool {
	want := generic.Round2(r.Opening.Add(r.Allocated).Sub(r.Used))
	return r.Closing.Equal(want) && r.CarryForward.Equal(r.Closing)
}

// =============================================================================
// SNAPSHOT INDEX - Prior-period lookup
// =============================================================================

// SnapshotKey identifies a persisted row.
type SnapshotKey struct {
	EmployeeID string
	Period     generic.PeriodKey
	PolicyCode string
}

// String is the storage key "employee|YYYY-MM|policy". Employee IDs are
// compacted so " E001" and "e001" share a key.
func (k SnapshotKey) String() string {
	return identity.Compact(k.EmployeeID) + "|" + k.Period.String() + "|" + strings.TrimSpace(k.PolicyCode)
}

// SnapshotIndex looks up saved rows by key.
type SnapshotIndex struct {
	rows map[string]LedgerRow
}

// NewSnapshotIndex indexes rows; a later row replaces an earlier one with the same key.
func NewSnapshotIndex(rows []LedgerRow) SnapshotIndex {
	idx := SnapshotIndex{rows: make(map[string]LedgerRow, len(rows))}
	for _, r := range rows {
		idx.rows[r.Key().String()] = r
	}
	return idx
}

// Find returns the saved row for the key, if any.
func (i SnapshotIndex) Find(employeeID string, period generic.PeriodKey, policyCode string) (LedgerRow, bool) {
	r, ok := i.rows[SnapshotKey{EmployeeID: employeeID, Period: period, PolicyCode: policyCode}.String()]
	return r, ok
}

func (i SnapshotIndex) Len() int { return len(i.rows) }

// =============================================================================
// COMPUTE
// =============================================================================

// LedgerInput is everything one computation reads. Nothing else is consulted.
type LedgerInput struct {
	Period    generic.PeriodKey
	Employees []Employee
	Requests  []LeaveRequest
	Config    LedgerConfig
	Prior     SnapshotIndex
}

// ComputeLedger produces one row per employee, sorted by name.
func ComputeLedger(in LedgerInput) []LedgerRow {
	employees := SortEmployees(in.Employees)
	prev := in.Period.Prev()

	rows := make([]LedgerRow, 0, len(employees))
	for _, emp := range employees {
		policy := in.Config.PolicyFor(emp)

		opening := decimal.Zero
		if snap, ok := in.Prior.Find(emp.ID, prev, policy); ok {
			opening = snap.Closing
		}

		allocated := in.Config.AccrualFor(policy)
		used := LedgerUsage(emp.Identity, in.Requests, in.Period, in.Config.ExcludedCategories)

		closing := generic.Round2(opening.Add(allocated).Sub(used))
		if in.Config.FloorAtZero && closing.IsNegative() {
			closing = decimal.Zero
		}

		rows = append(rows, LedgerRow{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			Department:   emp.Department,
			PolicyCode:   policy,
			Period:       in.Period,
			Opening:      opening,
			Allocated:    allocated,
			Used:         used,
			Closing:      closing,
			CarryForward: closing,
		})
	}
	return rows
}

// SortEmployees returns a copy ordered by name (case-insensitive), then ID.
func SortEmployees(in []Employee) []Employee {
	out := append([]Employee(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := identity.NormalizeName(out[i].Name), identity.NormalizeName(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
