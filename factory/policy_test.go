package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

const seniorPolicy = `{
	"monthly_accrual": 1.5,
	"policies": [{"code": "SENIOR", "monthly_accrual": 2}],
	"quotas": [
		{"leave_type": "Casual Leave", "days": 12},
		{"leave_type": "Sick Leave", "days": 8}
	]
}`

func TestParsePolicy_Defaults(t *testing.T) {
	// GIVEN: A document without policy code or excluded categories
	f := NewPolicyFactory()

	// WHEN: Parsing it
	cfg, quotas, err := f.ParsePolicy(seniorPolicy)

	// THEN: Defaults fill the gaps
	require.NoError(t, err)
	assert.Equal(t, timeoff.DefaultPolicyCode, cfg.DefaultPolicyCode)
	assert.Equal(t, []string{timeoff.CategoryWorkFromHome}, cfg.ExcludedCategories)
	assert.True(t, cfg.MonthlyAccrual.Equal(generic.Days(1.5)))
	assert.True(t, cfg.AccrualFor("SENIOR").Equal(generic.Days(2)))
	assert.True(t, cfg.AccrualFor("DEFAULT").Equal(generic.Days(1.5)))

	assert.Equal(t, []string{"Casual Leave", "Sick Leave"}, quotas.Types())
	casual, _ := quotas.Get("Casual Leave")
	assert.True(t, casual.Equal(generic.Days(12)))
}

func TestParsePolicy_RoundTrip(t *testing.T) {
	f := NewPolicyFactory()
	cfg, quotas, err := f.ParsePolicy(seniorPolicy)
	require.NoError(t, err)

	cfg2, quotas2, err := f.FromJSON(f.ToJSON(cfg, quotas))
	require.NoError(t, err)
	assert.True(t, cfg.Equal(cfg2))
	assert.True(t, quotas.Equal(quotas2))
}

func TestParsePolicy_Rejects(t *testing.T) {
	f := NewPolicyFactory()
	cases := map[string]string{
		"malformed":           `{"monthly_accrual": `,
		"negative accrual":    `{"monthly_accrual": -1, "quotas": []}`,
		"negative quota":      `{"monthly_accrual": 1, "quotas": [{"leave_type": "Casual Leave", "days": -2}]}`,
		"blank leave type":    `{"monthly_accrual": 1, "quotas": [{"leave_type": "", "days": 2}]}`,
		"duplicate type":      `{"monthly_accrual": 1, "quotas": [{"leave_type": "Sick", "days": 2}, {"leave_type": " Sick ", "days": 3}]}`,
		"duplicate policy":    `{"monthly_accrual": 1, "policies": [{"code": "A", "monthly_accrual": 1}, {"code": "A", "monthly_accrual": 2}], "quotas": []}`,
		"policy without code": `{"monthly_accrual": 1, "policies": [{"monthly_accrual": 1}], "quotas": []}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.ParsePolicy(doc)
			assert.Error(t, err)
		})
	}
}

func TestParsePolicy_DuplicateTypeIsConflict(t *testing.T) {
	_, _, err := NewPolicyFactory().ParsePolicy(`{"quotas": [{"leave_type": "Sick", "days": 2}, {"leave_type": "Sick", "days": 3}]}`)
	assert.True(t, generic.IsConflict(err))
}
