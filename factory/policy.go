/*
Package factory provides JSON to Go leave-policy conversion.

PURPOSE:
  Converts a JSON policy document into the ledger settings and quota
  catalog the engine runs on. HR can keep the whole leave policy in one
  file, import it in one call, and export it back unchanged.

JSON SCHEMA:
  {
    "default_policy_code": "DEFAULT",
    "monthly_accrual": 1.5,
    "policies": [
      {"code": "SENIOR", "monthly_accrual": 2}
    ],
    "quotas": [
      {"leave_type": "Casual Leave", "days": 12},
      {"leave_type": "Sick Leave", "days": 8}
    ],
    "excluded_categories": ["Work From Home"],
    "floor_at_zero": false
  }

KEY FEATURES:
  - Validates structure (validator tags) before building anything
  - Sets sensible defaults (policy code, WFH exclusion)
  - Rejects duplicate policy codes and duplicate leave types
  - Round-trips: ToJSON(FromJSON(doc)) describes the same policy

USAGE:
  factory := NewPolicyFactory()
  cfg, quotas, err := factory.ParsePolicy(jsonString)

SEE ALSO:
  - timeoff/config.go: LedgerConfig
  - timeoff/quota.go: QuotaCatalog
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a leave policy.
type PolicyJSON struct {
	DefaultPolicyCode  string        `json:"default_policy_code,omitempty"`
	MonthlyAccrual     float64       `json:"monthly_accrual" validate:"gte=0"`
	Policies           []AccrualJSON `json:"policies,omitempty" validate:"dive"`
	Quotas             []QuotaJSON   `json:"quotas" validate:"dive"`
	ExcludedCategories []string      `json:"excluded_categories"`
	FloorAtZero        bool          `json:"floor_at_zero,omitempty"`
}

// AccrualJSON overrides the monthly accrual for one policy code.
type AccrualJSON struct {
	Code           string  `json:"code" validate:"required"`
	MonthlyAccrual float64 `json:"monthly_accrual" validate:"gte=0"`
}

// QuotaJSON is one leave type's yearly entitlement.
type QuotaJSON struct {
	LeaveType string  `json:"leave_type" validate:"required"`
	Days      float64 `json:"days" validate:"gte=0"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct {
	validate *validator.Validate
}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{validate: validator.New()}
}

// ParsePolicy parses a JSON string into ledger settings and a quota catalog.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (timeoff.LedgerConfig, timeoff.QuotaCatalog, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return timeoff.LedgerConfig{}, timeoff.QuotaCatalog{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PolicyJSON to ledger settings and a quota catalog.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (timeoff.LedgerConfig, timeoff.QuotaCatalog, error) {
	if err := f.validate.Struct(pj); err != nil {
		return timeoff.LedgerConfig{}, timeoff.QuotaCatalog{}, fmt.Errorf("invalid policy: %w", err)
	}

	cfg := timeoff.LedgerConfig{
		MonthlyAccrual:     days(pj.MonthlyAccrual),
		DefaultPolicyCode:  strings.TrimSpace(pj.DefaultPolicyCode),
		ExcludedCategories: pj.ExcludedCategories,
		FloorAtZero:        pj.FloorAtZero,
	}
	if cfg.DefaultPolicyCode == "" {
		cfg.DefaultPolicyCode = timeoff.DefaultPolicyCode
	}
	if cfg.ExcludedCategories == nil {
		cfg.ExcludedCategories = []string{timeoff.CategoryWorkFromHome}
	}

	if len(pj.Policies) > 0 {
		cfg.PolicyAccruals = make(map[string]decimal.Decimal, len(pj.Policies))
		for _, p := range pj.Policies {
			code := strings.TrimSpace(p.Code)
			if _, dup := cfg.PolicyAccruals[code]; dup {
				return timeoff.LedgerConfig{}, timeoff.QuotaCatalog{}, fmt.Errorf("duplicate policy code %q", code)
			}
			cfg.PolicyAccruals[code] = days(p.MonthlyAccrual)
		}
	}

	entries := make(map[string]decimal.Decimal, len(pj.Quotas))
	for _, q := range pj.Quotas {
		name := strings.TrimSpace(q.LeaveType)
		if _, dup := entries[name]; dup {
			return timeoff.LedgerConfig{}, timeoff.QuotaCatalog{}, fmt.Errorf("%w: %q", generic.ErrQuotaExists, name)
		}
		entries[name] = days(q.Days)
	}
	quotas, err := timeoff.NewQuotaCatalog(entries)
	if err != nil {
		return timeoff.LedgerConfig{}, timeoff.QuotaCatalog{}, err
	}

	return cfg, quotas, nil
}

// ToJSON is the inverse of FromJSON. Policies and quotas are sorted by name.
func (f *PolicyFactory) ToJSON(cfg timeoff.LedgerConfig, quotas timeoff.QuotaCatalog) PolicyJSON {
	pj := PolicyJSON{
		DefaultPolicyCode:  cfg.DefaultPolicyCode,
		MonthlyAccrual:     cfg.MonthlyAccrual.InexactFloat64(),
		ExcludedCategories: cfg.ExcludedCategories,
		FloorAtZero:        cfg.FloorAtZero,
		Quotas:             []QuotaJSON{},
	}

	codes := make([]string, 0, len(cfg.PolicyAccruals))
	for code := range cfg.PolicyAccruals {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		pj.Policies = append(pj.Policies, AccrualJSON{
			Code:           code,
			MonthlyAccrual: cfg.PolicyAccruals[code].InexactFloat64(),
		})
	}

	for _, lt := range quotas.Types() {
		d, _ := quotas.Get(lt)
		pj.Quotas = append(pj.Quotas, QuotaJSON{LeaveType: lt, Days: d.InexactFloat64()})
	}
	return pj
}

// days converts a JSON number to a two-decimal amount.
func days(v float64) decimal.Decimal {
	return generic.Round2(generic.Days(v))
}
