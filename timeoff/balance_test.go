package timeoff_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
	"github.com/warp/leave-ledger/timeoff"
)

func TestSummarize_CountsApprovedOnly(t *testing.T) {
	// GIVEN: 3 approved and 2 pending casual days
	pending := approved("E001", "Casual Leave", date(2025, time.March, 3), date(2025, time.March, 4), 2)
	pending.Status = timeoff.StatusPending
	requests := []timeoff.LeaveRequest{
		approved("E001", "Casual Leave", date(2025, time.January, 6), date(2025, time.January, 8), 3),
		pending,
	}

	// WHEN: Summarizing quota left
	got := timeoff.Summarize(identity.Identity{ID: "E001"}, newCatalog(t), requests)

	// THEN: One entry per catalog type, pending not subtracted
	require.Len(t, got, 2)
	assert.Equal(t, "Casual Leave", got[0].LeaveType)
	assert.True(t, got[0].Used.Equal(d(3)))
	assert.True(t, got[0].Remaining.Equal(d(9)))
	assert.Equal(t, "Sick Leave", got[1].LeaveType)
	assert.True(t, got[1].Remaining.Equal(d(8)))
}

func TestValidateRequest_PendingHoldsDays(t *testing.T) {
	// GIVEN: 8 sick days, 5 approved and 2 pending
	pending := approved("E001", "Sick Leave", date(2025, time.March, 3), date(2025, time.March, 4), 2)
	pending.Status = timeoff.StatusPending
	existing := []timeoff.LeaveRequest{
		approved("E001", "Sick Leave", date(2025, time.January, 6), date(2025, time.January, 10), 5),
		pending,
	}
	cat := newCatalog(t)

	// WHEN: Asking for one more day, it fits exactly
	one := approved("E001", "Sick Leave", date(2025, time.April, 1), date(2025, time.April, 1), 1)
	one.ID = "new-1"
	assert.NoError(t, timeoff.ValidateRequest(one, cat, existing))

	// WHEN: Asking for two, it does not
	two := approved("E001", "Sick Leave", date(2025, time.April, 1), date(2025, time.April, 2), 2)
	two.ID = "new-2"
	err := timeoff.ValidateRequest(two, cat, existing)
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrQuotaExceeded)

	var qe *timeoff.QuotaExceededError
	require.True(t, errors.As(err, &qe))
	assert.True(t, qe.Used.Equal(d(7)))
	assert.True(t, qe.Entitlement.Equal(d(8)))
}

func TestValidateRequest_IgnoresItsOwnEarlierVersion(t *testing.T) {
	// GIVEN: The request being edited is already in the list
	req := approved("E001", "Sick Leave", date(2025, time.January, 6), date(2025, time.January, 13), 8)
	req.Status = timeoff.StatusPending

	assert.NoError(t, timeoff.ValidateRequest(req, newCatalog(t), []timeoff.LeaveRequest{req}))
}

func TestValidateRequest_InputErrors(t *testing.T) {
	cat := newCatalog(t)

	unknown := approved("E001", "Sabbatical", date(2025, time.January, 6), date(2025, time.January, 6), 1)
	assert.ErrorIs(t, timeoff.ValidateRequest(unknown, cat, nil), generic.ErrUnknownLeaveType)

	inverted := approved("E001", "Sick Leave", date(2025, time.January, 6), date(2025, time.January, 2), 1)
	assert.ErrorIs(t, timeoff.ValidateRequest(inverted, cat, nil), generic.ErrInvalidRange)

	lower := approved("E001", "sick leave", date(2025, time.January, 6), date(2025, time.January, 6), 1)
	assert.NoError(t, timeoff.ValidateRequest(lower, cat, nil))
}
