package timeoff_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

func newCatalog(t *testing.T) timeoff.QuotaCatalog {
	cat, err := timeoff.NewQuotaCatalog(map[string]decimal.Decimal{
		"Casual Leave": d(12),
		"Sick Leave":   d(8),
	})
	require.NoError(t, err)
	return cat
}

func TestQuotaCatalog_EditsDoNotMutateReceiver(t *testing.T) {
	// GIVEN: A catalog shared by a running computation
	cat := newCatalog(t)

	// WHEN: HR edits it
	next, err := cat.Set("Casual Leave", d(15))
	require.NoError(t, err)
	next = next.Remove("Sick Leave")

	// THEN: The original is untouched
	v, _ := cat.Get("Casual Leave")
	assert.True(t, v.Equal(d(12)))
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, 1, next.Len())
}

func TestQuotaCatalog_RenameKeepsValue(t *testing.T) {
	cat := newCatalog(t)

	next, err := cat.Rename("Casual Leave", "Casual")
	require.NoError(t, err)

	_, ok := next.Get("Casual Leave")
	assert.False(t, ok)
	v, ok := next.Get("Casual")
	require.True(t, ok)
	assert.True(t, v.Equal(d(12)))
	assert.Equal(t, []string{"Casual", "Sick Leave"}, next.Types())
}

func TestQuotaCatalog_RenameErrors(t *testing.T) {
	cat := newCatalog(t)

	_, err := cat.Rename("Casual Leave", "Sick Leave")
	assert.ErrorIs(t, err, generic.ErrQuotaExists)

	_, err = cat.Rename("Maternity", "Parental")
	assert.ErrorIs(t, err, generic.ErrQuotaNotFound)

	_, err = cat.Rename("Casual Leave", "  ")
	assert.ErrorIs(t, err, generic.ErrInvalidQuotaName)

	same, err := cat.Rename("Casual Leave", "Casual Leave")
	require.NoError(t, err)
	assert.True(t, same.Equal(cat))
}

func TestQuotaCatalog_RejectsInvalidEntries(t *testing.T) {
	_, err := timeoff.NewQuotaCatalog(map[string]decimal.Decimal{"Casual": d(-1)})
	assert.ErrorIs(t, err, generic.ErrNegativeQuota)

	_, err = newCatalog(t).Set("", d(1))
	assert.ErrorIs(t, err, generic.ErrInvalidQuotaName)
}

func TestQuotaCatalog_LookupFallsBackToCaseInsensitive(t *testing.T) {
	cat := newCatalog(t)

	v, ok := cat.Lookup("casual leave")
	require.True(t, ok)
	assert.True(t, v.Equal(d(12)))

	_, ok = cat.Get("casual leave")
	assert.False(t, ok, "Get is exact")

	_, ok = cat.Lookup("Unpaid")
	assert.False(t, ok)
}
