package timeoff_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func ledgerInput(period generic.PeriodKey, employees []timeoff.Employee, requests []timeoff.LeaveRequest, prior ...timeoff.LedgerRow) timeoff.LedgerInput {
	return timeoff.LedgerInput{
		Period:    period,
		Employees: employees,
		Requests:  requests,
		Config:    timeoff.DefaultLedgerConfig(),
		Prior:     timeoff.NewSnapshotIndex(prior),
	}
}

func savedRow(id string, period generic.PeriodKey, policy string, closing float64) timeoff.LedgerRow {
	return timeoff.LedgerRow{
		EmployeeID:   id,
		PolicyCode:   policy,
		Period:       period,
		Closing:      d(closing),
		CarryForward: d(closing),
	}
}

// =============================================================================
// BALANCE IDENTITY
// =============================================================================

func TestComputeLedger_FirstMonthGoesNegative(t *testing.T) {
	// GIVEN: E001 with no prior snapshot, accrual 1.5, a 2-day approved leave in January
	in := ledgerInput(jan2025,
		[]timeoff.Employee{emp("E001", "Asha Rao")},
		[]timeoff.LeaveRequest{
			approved("E001", "Casual Leave", date(2025, time.January, 13), date(2025, time.January, 14), 2),
		})

	// WHEN: Computing January
	rows := timeoff.ComputeLedger(in)

	// THEN: opening 0, allocated 1.5, used 2, closing and carry -0.5
	require.Len(t, rows, 1)
	r := rows[0]
	assert.True(t, r.Opening.IsZero())
	assert.True(t, r.Allocated.Equal(d(1.5)))
	assert.True(t, r.Used.Equal(d(2)))
	assert.True(t, r.Closing.Equal(d(-0.5)), "no floor at zero")
	assert.True(t, r.CarryForward.Equal(r.Closing))
	assert.Equal(t, timeoff.DefaultPolicyCode, r.PolicyCode)
	assert.Equal(t, "Engineering", r.Department)
	assert.False(t, r.IsManualOverride)
	assert.True(t, r.Balanced())
}

func TestComputeLedger_ChainsFromPriorSnapshot(t *testing.T) {
	// GIVEN: A saved January snapshot closing at 4.25
	prior := savedRow("E001", jan2025, timeoff.DefaultPolicyCode, 4.25)

	// WHEN: Computing February with no usage
	rows := timeoff.ComputeLedger(ledgerInput(feb2025, []timeoff.Employee{emp("E001", "Asha Rao")}, nil, prior))

	// THEN: February opens where January closed
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Opening.Equal(d(4.25)))
	assert.True(t, rows[0].Closing.Equal(d(5.75)))
}

func TestComputeLedger_SnapshotFromOtherPolicyIsIgnored(t *testing.T) {
	prior := savedRow("E001", jan2025, "SENIOR", 10)

	rows := timeoff.ComputeLedger(ledgerInput(feb2025, []timeoff.Employee{emp("E001", "Asha Rao")}, nil, prior))

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Opening.IsZero())
}

func TestComputeLedger_SnapshotTwoMonthsBackIsIgnored(t *testing.T) {
	// GIVEN: Only a January snapshot exists; March reads February
	prior := savedRow("E001", jan2025, timeoff.DefaultPolicyCode, 10)
	mar := feb2025.Next()

	rows := timeoff.ComputeLedger(ledgerInput(mar, []timeoff.Employee{emp("E001", "Asha Rao")}, nil, prior))

	assert.True(t, rows[0].Opening.IsZero())
}

func TestComputeLedger_ExcludesNonApprovedAndWorkFromHome(t *testing.T) {
	pending := approved("E001", "Casual Leave", date(2025, time.January, 6), date(2025, time.January, 6), 1)
	pending.Status = timeoff.StatusPending
	cancelled := approved("E001", "Casual Leave", date(2025, time.January, 7), date(2025, time.January, 7), 1)
	cancelled.Status = timeoff.StatusCancelled
	wfh := approved("E001", "Casual Leave", date(2025, time.January, 8), date(2025, time.January, 8), 1)
	wfh.Category = timeoff.CategoryWorkFromHome
	counted := approved("E001", "Casual Leave", date(2025, time.January, 9), date(2025, time.January, 9), 1)

	rows := timeoff.ComputeLedger(ledgerInput(jan2025,
		[]timeoff.Employee{emp("E001", "Asha Rao")},
		[]timeoff.LeaveRequest{pending, cancelled, wfh, counted}))

	assert.True(t, rows[0].Used.Equal(d(1)))
}

func TestComputeLedger_EmployeeWithoutRequestsGetsAccrualOnly(t *testing.T) {
	rows := timeoff.ComputeLedger(ledgerInput(jan2025, []timeoff.Employee{emp("E009", "Nobody")}, nil))

	assert.True(t, rows[0].Used.IsZero())
	assert.True(t, rows[0].Closing.Equal(d(1.5)))
}

func TestComputeLedger_NoEmployeesNoRows(t *testing.T) {
	assert.Empty(t, timeoff.ComputeLedger(ledgerInput(jan2025, nil, nil)))
}

// =============================================================================
// ORDERING & DETERMINISM
// =============================================================================

func TestComputeLedger_SortedByName(t *testing.T) {
	rows := timeoff.ComputeLedger(ledgerInput(jan2025, []timeoff.Employee{
		emp("E003", "Zed Kim"),
		emp("E001", "asha rao"),
		emp("E002", "Bilal Shah"),
	}, nil))

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"E001", "E002", "E003"},
		[]string{rows[0].EmployeeID, rows[1].EmployeeID, rows[2].EmployeeID})
}

func TestComputeLedger_IsDeterministic(t *testing.T) {
	// GIVEN: The same inputs
	in := ledgerInput(may2025,
		[]timeoff.Employee{emp("E002", "Bilal Shah"), emp("E001", "Asha Rao")},
		[]timeoff.LeaveRequest{
			approved("E001", "Casual Leave", date(2025, time.April, 28), date(2025, time.May, 7), 10),
			approved("E002", "Sick Leave", date(2025, time.May, 30), date(2025, time.June, 2), 4),
		},
		savedRow("E001", apr2025, timeoff.DefaultPolicyCode, 3.5))

	// WHEN: Computing twice
	a, err := json.Marshal(timeoff.ComputeLedger(in))
	require.NoError(t, err)
	b, err := json.Marshal(timeoff.ComputeLedger(in))
	require.NoError(t, err)

	// THEN: Byte-identical output
	assert.Equal(t, string(a), string(b))
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestComputeLedger_PolicyAccrualOverride(t *testing.T) {
	in := ledgerInput(jan2025, []timeoff.Employee{
		{Identity: emp("E001", "Asha Rao").Identity, PolicyCode: "SENIOR"},
		emp("E002", "Bilal Shah"),
	}, nil)
	in.Config.PolicyAccruals = map[string]decimal.Decimal{"SENIOR": d(2)}

	rows := timeoff.ComputeLedger(in)

	assert.Equal(t, "SENIOR", rows[0].PolicyCode)
	assert.True(t, rows[0].Allocated.Equal(d(2)))
	assert.True(t, rows[1].Allocated.Equal(d(1.5)))
}

func TestComputeLedger_FloorAtZeroIsOptIn(t *testing.T) {
	in := ledgerInput(jan2025,
		[]timeoff.Employee{emp("E001", "Asha Rao")},
		[]timeoff.LeaveRequest{
			approved("E001", "Casual Leave", date(2025, time.January, 13), date(2025, time.January, 15), 3),
		})
	in.Config.FloorAtZero = true

	rows := timeoff.ComputeLedger(in)

	assert.True(t, rows[0].Closing.IsZero())
	assert.True(t, rows[0].CarryForward.IsZero())
}

// =============================================================================
// MANUAL OVERRIDE
// =============================================================================

func TestOverrideSheet_KeepsEditsVerbatim(t *testing.T) {
	rows := timeoff.ComputeLedger(ledgerInput(jan2025, []timeoff.Employee{emp("E001", "Asha Rao")}, nil))
	sheet := timeoff.NewOverrideSheet(rows)

	// WHEN: HR types a closing that breaks the balance formula
	require.NoError(t, sheet.SetAmount("e001", timeoff.FieldClosing, "9.99"))
	require.NoError(t, sheet.SetAmount("E001", timeoff.FieldUsed, "abc"))

	out := sheet.Finalize()

	// THEN: Values stay as typed and the row is flagged
	require.Len(t, out, 1)
	assert.True(t, out[0].Closing.Equal(d(9.99)))
	assert.True(t, out[0].Used.IsZero(), "non-numeric input becomes 0")
	assert.True(t, out[0].IsManualOverride)
	assert.False(t, out[0].Balanced())
}

func TestOverrideSheet_ResetAndUnknownEmployee(t *testing.T) {
	rows := timeoff.ComputeLedger(ledgerInput(jan2025, []timeoff.Employee{emp("E001", "Asha Rao")}, nil))
	sheet := timeoff.NewOverrideSheet(rows)

	require.NoError(t, sheet.SetValue("E001", timeoff.FieldOpening, d(7)))
	sheet.Reset()
	assert.True(t, sheet.Rows()[0].Opening.IsZero())

	assert.Error(t, sheet.SetAmount("E404", timeoff.FieldClosing, "1"))

	_, err := timeoff.ParseField("bonus")
	assert.Error(t, err)
}

func TestOverrideSheet_PrefersExactID(t *testing.T) {
	// GIVEN: Two employees whose IDs share the number 1
	rows := timeoff.ComputeLedger(ledgerInput(jan2025, []timeoff.Employee{
		emp("E1", "Asha Rao"),
		emp("M1", "Bilal Shah"),
	}, nil))
	sheet := timeoff.NewOverrideSheet(rows)

	// WHEN: HR edits M1, which sorts second
	require.NoError(t, sheet.SetAmount("m1", timeoff.FieldClosing, "4"))

	// THEN: Only M1's row changes
	out := sheet.Rows()
	require.Len(t, out, 2)
	assert.Equal(t, "M1", out[1].EmployeeID)
	assert.True(t, out[1].Closing.Equal(d(4)))
	assert.False(t, out[0].Closing.Equal(d(4)))
}
