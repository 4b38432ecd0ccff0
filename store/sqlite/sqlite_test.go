package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
	"github.com/warp/leave-ledger/store/sqlite"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func employee(id, name string) timeoff.Employee {
	return timeoff.Employee{Identity: identity.Identity{ID: id, Name: name}, Department: "Ops"}
}

// =============================================================================
// RECORDS
// =============================================================================

func TestRecords_UpsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// GIVEN: The same key written twice
	rec := generic.RawRecord{Tag: generic.TagSnapshot, Key: "e001|2025-01|DEFAULT", Payload: []byte(`{"closing":"1"}`)}
	require.NoError(t, store.Upsert(ctx, rec))
	rec.Payload = []byte(`{"closing":"2"}`)
	require.NoError(t, store.Upsert(ctx, rec))

	// THEN: One row, latest payload
	n, err := store.CountRecords(ctx, generic.TagSnapshot)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs, err := store.ListAll(ctx, generic.TagSnapshot)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.JSONEq(t, `{"closing":"2"}`, string(recs[0].Payload))
}

func TestRecords_ListAllFiltersByTag(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, generic.RawRecord{Tag: generic.TagConfig, Key: "ledger", Payload: []byte(`{}`)}))
	require.NoError(t, store.Upsert(ctx, generic.RawRecord{Tag: generic.TagQuota, Key: "catalog", Payload: []byte(`{}`)}))
	require.NoError(t, store.Upsert(ctx, generic.RawRecord{Tag: generic.TagSnapshot, Key: "b", Payload: []byte(`{}`)}))
	require.NoError(t, store.Upsert(ctx, generic.RawRecord{Tag: generic.TagSnapshot, Key: "a", Payload: []byte(`{}`)}))

	recs, err := store.ListAll(ctx, generic.TagConfig, generic.TagSnapshot)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, generic.TagConfig, recs[0].Tag)
	assert.Equal(t, "a", recs[1].Key)
	assert.Equal(t, "b", recs[2].Key)

	none, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// =============================================================================
// EMPLOYEES & REQUESTS
// =============================================================================

func TestEmployees_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	senior := employee("E002", "Bilal Shah")
	senior.PolicyCode = "SENIOR"
	require.NoError(t, store.ImportEmployees(ctx, []timeoff.Employee{employee("E001", "Asha Rao"), senior}))

	got, err := store.GetEmployee(ctx, "E002")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SENIOR", got.PolicyCode)
	assert.Equal(t, "Ops", got.Department)

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.DeleteEmployee(ctx, "E001"))
	missing, err := store.GetEmployee(ctx, "E001")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEmployees_ImportIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.ImportEmployees(ctx, []timeoff.Employee{employee("E001", "Asha Rao"), employee("", "No ID")})
	require.Error(t, err)

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLeaveRequests_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// GIVEN: A half-day request saved without an ID
	id, err := store.SaveLeaveRequest(ctx, timeoff.LeaveRequest{
		Employee:  identity.Identity{ID: "E001", Name: "Asha Rao"},
		LeaveType: "Casual Leave",
		Start:     generic.NewDate(2025, time.January, 15),
		End:       generic.NewDate(2025, time.January, 15),
		Days:      decimal.RequireFromString("0.5"),
		IsHalfDay: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// WHEN: It is approved
	require.NoError(t, store.SetRequestStatus(ctx, id, timeoff.StatusApproved))

	// THEN: Every field survives
	got, err := store.GetLeaveRequest(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "E001", got.Employee.ID)
	assert.Equal(t, timeoff.StatusApproved, got.Status)
	assert.True(t, got.IsHalfDay)
	assert.True(t, got.Days.Equal(generic.HalfDay))
	assert.Equal(t, "2025-01-15", got.Start.String())

	err = store.SetRequestStatus(ctx, "missing", timeoff.StatusRejected)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// END TO END
// =============================================================================

func TestService_OnSQLite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// GIVEN: E001 with a 2-day approved leave in January
	require.NoError(t, store.SaveEmployee(ctx, employee("E001", "Asha Rao")))
	_, err := store.SaveLeaveRequest(ctx, timeoff.LeaveRequest{
		Employee:  identity.Identity{ID: "E001"},
		LeaveType: "Casual Leave",
		Start:     generic.NewDate(2025, time.January, 13),
		End:       generic.NewDate(2025, time.January, 14),
		Days:      decimal.NewFromInt(2),
		Status:    timeoff.StatusApproved,
	})
	require.NoError(t, err)

	svc := timeoff.NewService(timeoff.NewRepository(store), store, store, nil)
	jan := generic.NewPeriodKey(2025, time.January)

	// WHEN: Saving January twice
	for i := 0; i < 2; i++ {
		report, err := svc.RecalculateAndSave(ctx, jan, timeoff.SaveOptions{})
		require.NoError(t, err)
		require.True(t, report.OK())
	}

	// THEN: One snapshot, closing -0.5, carried into February
	n, err := store.CountRecords(ctx, generic.TagSnapshot)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	feb, err := svc.Preview(ctx, jan.Next())
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.True(t, feb[0].Opening.Equal(decimal.RequireFromString("-0.5")))
}
