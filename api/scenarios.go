/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built data sets that populate the database with realistic
	employees, quotas and leave requests. Each scenario shows one behavior
	of the carry-forward ledger.

AVAILABLE SCENARIOS:

	first-month:       One employee overdraws in the first month (closing -0.5)
	cross-month:       A 10-day leave split 3/7 across April and May, with
	                   April already saved so May opens from its snapshot
	mixed-identities:  IDs that differ in case, spacing and zero-padding,
	                   plus Work From Home, pending and rejected requests
	policy-accruals:   Two policy codes with different monthly accruals

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Import employees
 3. Save quotas and ledger config
 4. File leave requests
 5. Optionally save earlier months

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "first-month"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Ledger endpoints to inspect the loaded data
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "first-month",
		Name:        "First Month",
		Description: "No prior snapshot, accrual 1.5, a 2-day leave: closing goes to -0.5",
		Period:      "2025-01",
	},
	{
		ID:          "cross-month",
		Name:        "Cross-Month Leave",
		Description: "10 days from Apr 28 to May 7 prorated 3/7; April saved, May chains from it",
		Period:      "2025-05",
	},
	{
		ID:          "mixed-identities",
		Name:        "Mixed Identities",
		Description: "Requests filed under differently formatted IDs, with WFH, pending and rejected entries",
		Period:      "2025-03",
	},
	{
		ID:          "policy-accruals",
		Name:        "Policy Accruals",
		Description: "Standard staff accrue 1.5 a month, SENIOR staff accrue 2",
		Period:      "2025-02",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.LoadScenarioByID(r.Context(), req.ScenarioID); err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.fail(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(); err != nil {
		h.fail(w, "Failed to reset database", generic.WriteError("reset", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset() error {
	if err := h.Store.Reset(); err != nil {
		return err
	}
	h.mu.Lock()
	h.lastReports = make(map[generic.PeriodKey]*timeoff.SaveReport)
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

// LoadScenarioByID resets the database and loads one scenario.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	loaders := map[string]func(context.Context) error{
		"first-month":      h.loadFirstMonthScenario,
		"cross-month":      h.loadCrossMonthScenario,
		"mixed-identities": h.loadMixedIdentitiesScenario,
		"policy-accruals":  h.loadPolicyAccrualsScenario,
	}
	load, ok := loaders[id]
	if !ok {
		return fmt.Errorf("%w: scenario %q", generic.ErrNotFound, id)
	}

	if err := h.reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := load(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	h.Logger.Info("scenario loaded", zap.String("scenario", id))
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFirstMonthScenario(ctx context.Context) error {
	if err := h.seed(ctx, timeoff.DefaultLedgerConfig(), []timeoff.Employee{
		staff("E001", "Asha Rao", "Engineering", ""),
	}); err != nil {
		return err
	}
	return h.fileRequests(ctx,
		leave("E001", "Casual Leave", day(2025, time.January, 13), day(2025, time.January, 14), "2", timeoff.StatusApproved),
	)
}

func (h *Handler) loadCrossMonthScenario(ctx context.Context) error {
	if err := h.seed(ctx, timeoff.DefaultLedgerConfig(), []timeoff.Employee{
		staff("E001", "Asha Rao", "Engineering", ""),
		staff("E002", "Bilal Shah", "Finance", ""),
	}); err != nil {
		return err
	}

	halfDay := leave("E002", "Sick Leave", day(2025, time.May, 20), day(2025, time.May, 20), "1", timeoff.StatusApproved)
	halfDay.IsHalfDay = true

	if err := h.fileRequests(ctx,
		leave("E001", "Casual Leave", day(2025, time.April, 28), day(2025, time.May, 7), "10", timeoff.StatusApproved),
		halfDay,
	); err != nil {
		return err
	}

	report, err := h.Service.RecalculateAndSave(ctx, generic.NewPeriodKey(2025, time.April), timeoff.SaveOptions{})
	if err != nil {
		return err
	}
	return report.Err()
}

func (h *Handler) loadMixedIdentitiesScenario(ctx context.Context) error {
	if err := h.seed(ctx, timeoff.DefaultLedgerConfig(), []timeoff.Employee{
		staff("E004", "Dana Cruz", "Support", ""),
		staff("E005", "Eli Moreau", "Support", ""),
	}); err != nil {
		return err
	}

	wfh := leave(" e 004 ", "Casual Leave", day(2025, time.March, 3), day(2025, time.March, 4), "2", timeoff.StatusApproved)
	wfh.Category = timeoff.CategoryWorkFromHome

	byName := leave("", "Sick Leave", day(2025, time.March, 10), day(2025, time.March, 10), "1", timeoff.StatusApproved)
	byName.Employee = identity.Identity{Name: "eli  moreau"}

	return h.fileRequests(ctx,
		leave("e4", "Casual Leave", day(2025, time.March, 12), day(2025, time.March, 13), "2", timeoff.StatusApproved),
		wfh,
		leave("E0004", "Casual Leave", day(2025, time.March, 20), day(2025, time.March, 20), "1", timeoff.StatusPending),
		leave("E005", "Casual Leave", day(2025, time.March, 24), day(2025, time.March, 25), "2", timeoff.StatusRejected),
		byName,
	)
}

func (h *Handler) loadPolicyAccrualsScenario(ctx context.Context) error {
	cfg := timeoff.DefaultLedgerConfig()
	cfg.PolicyAccruals = map[string]decimal.Decimal{"SENIOR": decimal.NewFromInt(2)}

	if err := h.seed(ctx, cfg, []timeoff.Employee{
		staff("E006", "Farah Ali", "Engineering", "SENIOR"),
		staff("E007", "Gus Lind", "Engineering", ""),
	}); err != nil {
		return err
	}
	return h.fileRequests(ctx,
		leave("E006", "Casual Leave", day(2025, time.February, 10), day(2025, time.February, 12), "3", timeoff.StatusApproved),
		leave("E007", "Casual Leave", day(2025, time.February, 17), day(2025, time.February, 17), "1", timeoff.StatusApproved),
	)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) seed(ctx context.Context, cfg timeoff.LedgerConfig, employees []timeoff.Employee) error {
	if err := h.Store.ImportEmployees(ctx, employees); err != nil {
		return fmt.Errorf("import employees: %w", err)
	}
	quotas, err := timeoff.NewQuotaCatalog(map[string]decimal.Decimal{
		"Casual Leave": decimal.NewFromInt(12),
		"Sick Leave":   decimal.NewFromInt(8),
	})
	if err != nil {
		return err
	}
	return h.Service.Bootstrap(ctx, cfg, quotas)
}

func (h *Handler) fileRequests(ctx context.Context, reqs ...timeoff.LeaveRequest) error {
	for _, r := range reqs {
		if _, err := h.Store.SaveLeaveRequest(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func staff(id, name, dept, policy string) timeoff.Employee {
	return timeoff.Employee{
		Identity:   identity.Identity{ID: id, Name: name},
		Department: dept,
		PolicyCode: policy,
	}
}

func leave(empID, leaveType string, start, end generic.Date, days string, status timeoff.Status) timeoff.LeaveRequest {
	return timeoff.LeaveRequest{
		Employee:  identity.Identity{ID: empID},
		LeaveType: leaveType,
		Start:     start,
		End:       end,
		Days:      generic.ParseDays(days),
		Status:    status,
	}
}

func day(y int, m time.Month, d int) generic.Date { return generic.NewDate(y, m, d) }
