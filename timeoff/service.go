/*
service.go - Ledger orchestration: read, compute, save

PURPOSE:
  Glues the pure ledger to its collaborators: the employee directory, the
  leave-request source and the record store. Everything that can block
  happens here; ComputeLedger itself never does I/O.

RECALCULATE & SAVE:
  1. Read config, quotas and snapshots in one fetch (LoadScope)
     -> a failed read aborts: nothing is computed or saved
  2. Upsert the monthly accrual config if it changed
  3. Compute rows for the period
  4. Upsert one snapshot per employee, sequentially, in name order

FAILURE MODEL:
  Each snapshot upsert is atomic on its own; the batch is not. A failure
  on employee N leaves employees 1..N-1 saved. The loop keeps going and
  the SaveReport lists exactly which employees failed so HR can retry
  that subset (RetryFailed). There is no rollback and no locking: two
  concurrent saves of the same month are last-write-wins per row.

MANUAL MODE:
  SaveManual persists OverrideSheet output verbatim, flagged as manual.
*/
package timeoff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// EmployeeSource supplies the master employee list.
type EmployeeSource interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// RequestSource supplies leave requests, denormalized with employee identity.
type RequestSource interface {
	ListLeaveRequests(ctx context.Context) ([]LeaveRequest, error)
}

// =============================================================================
// SAVE REPORT
// =============================================================================

// RowFailure records one snapshot that could not be written.
// Row is the exact row that was attempted, so a retry writes the same values.
type RowFailure struct {
	EmployeeID string    `json:"employee_id"`
	PolicyCode string    `json:"policy_code"`
	Row        LedgerRow `json:"-"`
	Err        error     `json:"-"`
}

func (f RowFailure) Error() string {
	return fmt.Sprintf("save %s/%s: %v", f.EmployeeID, f.PolicyCode, f.Err)
}

func (f RowFailure) Unwrap() error { return f.Err }

// SaveReport says which rows of a save made it to the store.
type SaveReport struct {
	Period      generic.PeriodKey `json:"period"`
	Saved       []string          `json:"saved"`
	Failed      []RowFailure      `json:"failed"`
	ConfigSaved bool              `json:"config_saved"`

	// Superseded lists snapshot keys of the same month left under a policy
	// code that a manual edit moved away from. The store has no delete.
	Superseded []string `json:"superseded,omitempty"`
}

// OK reports whether every row was saved.
func (r *SaveReport) OK() bool { return len(r.Failed) == 0 }

// Err joins every row failure, or returns nil.
func (r *SaveReport) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// FailedIDs lists the employee IDs that need a retry.
func (r *SaveReport) FailedIDs() []string {
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.EmployeeID
	}
	return ids
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	Repo      *Repository
	Employees EmployeeSource
	Requests  RequestSource
	Logger    *zap.Logger
}

func NewService(repo *Repository, employees EmployeeSource, requests RequestSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Repo: repo, Employees: employees, Requests: requests, Logger: logger}
}

// SaveOptions carries HR's edits submitted with a save.
type SaveOptions struct {
	// MonthlyAccrual, when set, replaces the stored default accrual.
	MonthlyAccrual *decimal.Decimal
}

// inputs gathers everything a computation needs. Reads happen before compute.
func (s *Service) inputs(ctx context.Context, period generic.PeriodKey) (LedgerInput, Scope, error) {
	scope, err := s.Repo.LoadScope(ctx)
	if err != nil {
		return LedgerInput{}, Scope{}, err
	}
	employees, err := s.Employees.ListEmployees(ctx)
	if err != nil {
		return LedgerInput{}, Scope{}, generic.ReadError("list employees", err)
	}
	requests, err := s.Requests.ListLeaveRequests(ctx)
	if err != nil {
		return LedgerInput{}, Scope{}, generic.ReadError("list leave requests", err)
	}
	return LedgerInput{
		Period:    period,
		Employees: employees,
		Requests:  requests,
		Config:    scope.Config,
		Prior:     scope.Prior(period),
	}, scope, nil
}

// Preview computes the period's rows without saving anything.
func (s *Service) Preview(ctx context.Context, period generic.PeriodKey) ([]LedgerRow, error) {
	in, _, err := s.inputs(ctx, period)
	if err != nil {
		return nil, err
	}
	return ComputeLedger(in), nil
}

// Saved returns the snapshots already persisted for the period.
func (s *Service) Saved(ctx context.Context, period generic.PeriodKey) ([]LedgerRow, error) {
	return s.Repo.ListForPeriod(ctx, period)
}

// RecalculateAndSave recomputes the period and upserts one snapshot per employee.
// The returned error is non-nil only when nothing was attempted; per-row
// failures are reported in the SaveReport.
func (s *Service) RecalculateAndSave(ctx context.Context, period generic.PeriodKey, opts SaveOptions) (*SaveReport, error) {
	in, scope, err := s.inputs(ctx, period)
	if err != nil {
		s.Logger.Error("ledger inputs unavailable, not saving",
			zap.String("period", period.String()), zap.Error(err))
		return nil, err
	}

	report := &SaveReport{Period: period}

	if opts.MonthlyAccrual != nil && (!scope.HasConfig || !scope.Config.MonthlyAccrual.Equal(*opts.MonthlyAccrual)) {
		cfg := scope.Config
		cfg.MonthlyAccrual = *opts.MonthlyAccrual
		if err := s.Repo.SaveConfig(ctx, cfg); err != nil {
			s.Logger.Error("monthly accrual not saved", zap.Error(err))
			return nil, err
		}
		in.Config = cfg
		report.ConfigSaved = true
		s.Logger.Info("monthly accrual updated",
			zap.String("from", scope.Config.MonthlyAccrual.String()),
			zap.String("to", cfg.MonthlyAccrual.String()))
	}

	rows := ComputeLedger(in)
	s.saveRows(ctx, rows, report)
	return report, nil
}

// SaveManual persists HR-edited rows verbatim.
func (s *Service) SaveManual(ctx context.Context, period generic.PeriodKey, rows []LedgerRow) (*SaveReport, error) {
	report := &SaveReport{Period: period}
	manual := make([]LedgerRow, len(rows))
	for i, r := range rows {
		if r.Period != period {
			return nil, fmt.Errorf("%w: row for %s is in %s, not %s",
				generic.ErrInvalidPeriod, r.EmployeeID, r.Period, period)
		}
		r.IsManualOverride = true
		manual[i] = r
	}

	existing, err := s.Repo.ListForPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	s.saveRows(ctx, manual, report)
	report.Superseded = supersededKeys(existing, manual, report)
	return report, nil
}

// supersededKeys finds saved rows whose employee was just written under a
// different policy code.
func supersededKeys(existing, written []LedgerRow, report *SaveReport) []string {
	failed := make(map[string]bool, len(report.Failed))
	for _, f := range report.Failed {
		failed[f.Row.Key().String()] = true
	}
	var keys []string
	for _, w := range written {
		if failed[w.Key().String()] {
			continue
		}
		for _, old := range existing {
			if identity.Compact(old.EmployeeID) == identity.Compact(w.EmployeeID) &&
				strings.TrimSpace(old.PolicyCode) != strings.TrimSpace(w.PolicyCode) {
				keys = append(keys, old.Key().String())
			}
		}
	}
	return keys
}

// RetryFailed re-writes the rows that failed in a previous report, exactly
// as they were attempted. Manual edits stay manual.
func (s *Service) RetryFailed(ctx context.Context, previous *SaveReport) *SaveReport {
	report := &SaveReport{Period: previous.Period}
	retry := make([]LedgerRow, len(previous.Failed))
	for i, f := range previous.Failed {
		retry[i] = f.Row
	}
	s.saveRows(ctx, retry, report)
	return report
}

func (s *Service) saveRows(ctx context.Context, rows []LedgerRow, report *SaveReport) {
	for _, row := range rows {
		if err := s.Repo.Put(ctx, row); err != nil {
			report.Failed = append(report.Failed, RowFailure{
				EmployeeID: row.EmployeeID,
				PolicyCode: row.PolicyCode,
				Row:        row,
				Err:        err,
			})
			s.Logger.Warn("snapshot not saved",
				zap.String("employee_id", row.EmployeeID),
				zap.String("period", row.Period.String()),
				zap.Error(err))
			continue
		}
		report.Saved = append(report.Saved, row.EmployeeID)
	}
	s.Logger.Info("ledger saved",
		zap.String("period", report.Period.String()),
		zap.Int("saved", len(report.Saved)),
		zap.Int("failed", len(report.Failed)))
}

// =============================================================================
// QUOTAS & BALANCES
// =============================================================================

// Quotas returns the stored catalog.
func (s *Service) Quotas(ctx context.Context) (QuotaCatalog, error) {
	scope, err := s.Repo.LoadScope(ctx)
	if err != nil {
		return QuotaCatalog{}, err
	}
	return scope.Quotas, nil
}

// UpdateQuotas applies edit to the stored catalog and persists the result.
func (s *Service) UpdateQuotas(ctx context.Context, edit func(QuotaCatalog) (QuotaCatalog, error)) (QuotaCatalog, error) {
	current, err := s.Quotas(ctx)
	if err != nil {
		return QuotaCatalog{}, err
	}
	next, err := edit(current)
	if err != nil {
		return current, err
	}
	if next.Equal(current) {
		return current, nil
	}
	if err := s.Repo.SaveQuotas(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// Config returns the stored ledger settings (defaults if never saved).
func (s *Service) Config(ctx context.Context) (LedgerConfig, error) {
	scope, err := s.Repo.LoadScope(ctx)
	if err != nil {
		return LedgerConfig{}, err
	}
	return scope.Config, nil
}

// SaveConfig persists ledger settings.
func (s *Service) SaveConfig(ctx context.Context, cfg LedgerConfig) error {
	return s.Repo.SaveConfig(ctx, cfg)
}

// Bootstrap seeds settings and quotas on first start. Stored values win:
// config is written only if none was saved, quotas only if the stored
// catalog is empty.
func (s *Service) Bootstrap(ctx context.Context, cfg LedgerConfig, quotas QuotaCatalog) error {
	scope, err := s.Repo.LoadScope(ctx)
	if err != nil {
		return err
	}
	if !scope.HasConfig {
		if err := s.Repo.SaveConfig(ctx, cfg); err != nil {
			return err
		}
		s.Logger.Info("ledger config seeded", zap.String("monthly_accrual", cfg.MonthlyAccrual.String()))
	}
	if scope.Quotas.Len() == 0 && quotas.Len() > 0 {
		if err := s.Repo.SaveQuotas(ctx, quotas); err != nil {
			return err
		}
		s.Logger.Info("quota catalog seeded", zap.Strings("leave_types", quotas.Types()))
	}
	return nil
}

// ImportPolicy replaces settings and the whole quota catalog. Config is
// written first; a quota failure leaves the new config in place.
func (s *Service) ImportPolicy(ctx context.Context, cfg LedgerConfig, quotas QuotaCatalog) error {
	if err := s.Repo.SaveConfig(ctx, cfg); err != nil {
		return err
	}
	if _, err := s.UpdateQuotas(ctx, func(QuotaCatalog) (QuotaCatalog, error) { return quotas, nil }); err != nil {
		return err
	}
	s.Logger.Info("policy imported",
		zap.String("monthly_accrual", cfg.MonthlyAccrual.String()),
		zap.Strings("leave_types", quotas.Types()))
	return nil
}

// BalanceSummary reports quota left per leave type. Approved requests only.
func (s *Service) BalanceSummary(ctx context.Context, who identity.Identity) ([]TypeBalance, error) {
	catalog, err := s.Quotas(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.Requests.ListLeaveRequests(ctx)
	if err != nil {
		return nil, generic.ReadError("list leave requests", err)
	}
	return Summarize(who, catalog, requests), nil
}

// ValidateRequest checks a new request against its quota. Approved and
// pending requests both count.
func (s *Service) ValidateRequest(ctx context.Context, req LeaveRequest) error {
	catalog, err := s.Quotas(ctx)
	if err != nil {
		return err
	}
	requests, err := s.Requests.ListLeaveRequests(ctx)
	if err != nil {
		return generic.ReadError("list leave requests", err)
	}
	return ValidateRequest(req, catalog, requests)
}
