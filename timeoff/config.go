package timeoff

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPolicyCode is used for employees without a policy override.
const DefaultPolicyCode = "DEFAULT"

// LedgerConfig holds the accrual settings HR maintains for the ledger.
type LedgerConfig struct {
	// MonthlyAccrual is allocated to every employee each period.
	MonthlyAccrual decimal.Decimal `json:"monthlyAccrual"`

	// PolicyAccruals overrides MonthlyAccrual per policy code.
	PolicyAccruals map[string]decimal.Decimal `json:"policyAccruals,omitempty"`

	// DefaultPolicyCode applies when an employee has no code of their own.
	DefaultPolicyCode string `json:"defaultPolicyCode,omitempty"`

	// ExcludedCategories are request categories that are not leave.
	ExcludedCategories []string `json:"excludedCategories"`

	// FloorAtZero clamps negative closing balances to zero. Off by default:
	// overdrawn employees carry a negative balance forward.
	FloorAtZero bool `json:"floorAtZero,omitempty"`
}

// DefaultLedgerConfig returns the out-of-the-box settings.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		MonthlyAccrual:     decimal.NewFromFloat(1.5),
		DefaultPolicyCode:  DefaultPolicyCode,
		ExcludedCategories: []string{CategoryWorkFromHome},
	}
}

// PolicyFor resolves the employee's policy code.
func (c LedgerConfig) PolicyFor(emp Employee) string {
	if code := strings.TrimSpace(emp.PolicyCode); code != "" {
		return code
	}
	if code := strings.TrimSpace(c.DefaultPolicyCode); code != "" {
		return code
	}
	return DefaultPolicyCode
}

// AccrualFor returns the monthly allocation for a policy code.
func (c LedgerConfig) AccrualFor(policyCode string) decimal.Decimal {
	if v, ok := c.PolicyAccruals[policyCode]; ok {
		return v
	}
	return c.MonthlyAccrual
}

// Equal compares every setting.
func (c LedgerConfig) Equal(o LedgerConfig) bool {
	if !c.MonthlyAccrual.Equal(o.MonthlyAccrual) ||
		c.DefaultPolicyCode != o.DefaultPolicyCode ||
		c.FloorAtZero != o.FloorAtZero ||
		len(c.PolicyAccruals) != len(o.PolicyAccruals) ||
		len(c.ExcludedCategories) != len(o.ExcludedCategories) {
		return false
	}
	for k, v := range c.PolicyAccruals {
		if ov, ok := o.PolicyAccruals[k]; !ok || !ov.Equal(v) {
			return false
		}
	}
	for i := range c.ExcludedCategories {
		if c.ExcludedCategories[i] != o.ExcludedCategories[i] {
			return false
		}
	}
	return true
}
