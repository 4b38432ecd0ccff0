package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
	"github.com/warp/leave-ledger/timeoff"
)

func TestLeaveRequests_CorruptRowIsAnError(t *testing.T) {
	ctx := context.Background()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.SaveLeaveRequest(ctx, timeoff.LeaveRequest{
		ID:        "R1",
		Employee:  identity.Identity{ID: "E001"},
		LeaveType: "Casual Leave",
		Start:     generic.NewDate(2025, time.January, 13),
		End:       generic.NewDate(2025, time.January, 14),
		Days:      decimal.NewFromInt(2),
		Status:    timeoff.StatusApproved,
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		column string
		value  string
	}{
		{"days", "days", "two"},
		{"start date", "start_date", "13/01/2025"},
		{"end date", "end_date", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN: One column overwritten with garbage
			_, err := store.db.ExecContext(ctx, "UPDATE leave_requests SET "+tt.column+" = ? WHERE id = 'R1'", tt.value)
			require.NoError(t, err)
			t.Cleanup(func() {
				store.db.ExecContext(ctx, `UPDATE leave_requests
					SET days = '2', start_date = '2025-01-13', end_date = '2025-01-14' WHERE id = 'R1'`)
			})

			// WHEN: Reading requests
			_, err = store.ListLeaveRequests(ctx)

			// THEN: The read fails instead of counting zero days
			assert.Error(t, err)

			// THEN: A ledger save refuses to run on it
			svc := timeoff.NewService(timeoff.NewRepository(store), store, store, nil)
			_, err = svc.RecalculateAndSave(ctx, generic.NewPeriodKey(2025, time.January), timeoff.SaveOptions{})
			assert.ErrorIs(t, err, generic.ErrStoreRead)
		})
	}
}
