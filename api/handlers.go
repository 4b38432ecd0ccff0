/*
handlers.go - HTTP API handlers for the leave ledger

PURPOSE:
  Exposes the ledger service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to timeoff.Service.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Create or update employee
    GET    /api/employees/{id}            Get employee details
    DELETE /api/employees/{id}            Remove employee
    GET    /api/employees/{id}/balance    Quota left per leave type

  Leave requests:
    GET    /api/requests                  List (?employee_id=, ?status=)
    POST   /api/requests                  File a request (quota checked)
    POST   /api/requests/validate         Dry-run quota check
    POST   /api/requests/{id}/status      Approve / reject / cancel

  Quotas:
    GET    /api/quotas                    Catalog
    PUT    /api/quotas/{leaveType}        Set entitlement
    POST   /api/quotas/rename             Rename a leave type
    DELETE /api/quotas/{leaveType}        Remove a leave type

  Policy document:
    GET    /api/policy                    Settings and quotas as one JSON document
    PUT    /api/policy                    Import a policy document

  Ledger:
    GET    /api/ledger/config             Stored settings
    PUT    /api/ledger/config             Replace settings
    GET    /api/ledger/{period}           Computed and saved rows (YYYY-MM)
    POST   /api/ledger/{period}/save      Recalculate & Save
    POST   /api/ledger/{period}/manual    Save with manual edits
    POST   /api/ledger/{period}/retry     Retry rows that failed last save

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (leave type exists, quota exceeded)
  - 502: Record store unavailable (nothing was saved)
  - 500: Internal errors
  A save where some rows failed returns 207 with the SaveReport.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/warp/leave-ledger/factory"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
	"github.com/warp/leave-ledger/store/sqlite"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	Service       *timeoff.Service
	PolicyFactory *factory.PolicyFactory
	Logger        *zap.Logger

	mu sync.Mutex
	// Last save report per period, for retrying failed rows
	lastReports map[generic.PeriodKey]*timeoff.SaveReport
	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler backed by store.
func NewHandler(store *sqlite.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:         store,
		Service:       timeoff.NewService(timeoff.NewRepository(store), store, store, logger),
		PolicyFactory: factory.NewPolicyFactory(),
		Logger:        logger,
		lastReports:   make(map[generic.PeriodKey]*timeoff.SaveReport),
	}
}

var validate = validator.New()

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, "Failed to list employees", generic.ReadError("list employees", err))
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee, resolved leniently by ID.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok, err := h.resolveEmployee(r, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to load employees", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp := req.toEmployee()
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.fail(w, "Failed to save employee", generic.WriteError("save employee", err))
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee. Saved snapshots are kept.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete employee", generic.WriteError("delete employee", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns entitlement, approved usage and remaining days per leave type.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	emp, ok, err := h.resolveEmployee(r, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to load employees", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	balances, err := h.Service.BalanceSummary(r.Context(), emp.Identity)
	if err != nil {
		h.fail(w, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employee": toEmployeeDTO(emp),
		"balances": toBalanceDTOs(balances),
	})
}

// resolveEmployee finds an employee by an ID that may differ in case,
// whitespace or zero-padding from the stored one.
func (h *Handler) resolveEmployee(r *http.Request, id string) (timeoff.Employee, bool, error) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		return timeoff.Employee{}, false, generic.ReadError("list employees", err)
	}
	emp, ok := findEmployee(employees, identity.Identity{ID: id})
	return emp, ok, nil
}

func findEmployee(employees []timeoff.Employee, ref identity.Identity) (timeoff.Employee, bool) {
	ids := make([]identity.Identity, len(employees))
	for i, e := range employees {
		ids[i] = e.Identity
	}
	match, ok := identity.NewDirectory(ids).Resolve(ref)
	if !ok {
		return timeoff.Employee{}, false
	}
	for _, e := range employees {
		if e.Identity == match {
			return e, true
		}
	}
	return timeoff.Employee{}, false
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// ListLeaveRequests returns requests, optionally filtered by employee and status.
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListLeaveRequests(r.Context())
	if err != nil {
		h.fail(w, "Failed to list requests", generic.ReadError("list leave requests", err))
		return
	}

	empID := r.URL.Query().Get("employee_id")
	status := r.URL.Query().Get("status")

	dtos := []LeaveRequestDTO{}
	for _, req := range requests {
		if empID != "" && !identity.Match(req.Employee.ID, empID) {
			continue
		}
		if status != "" && req.Status != timeoff.ParseStatus(status) {
			continue
		}
		dtos = append(dtos, toLeaveRequestDTO(req))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeaveRequest files a request after checking it against its quota.
func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseLeaveRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if req.Status == timeoff.StatusPending || req.Status == timeoff.StatusApproved {
		if err := h.Service.ValidateRequest(ctx, req); err != nil {
			h.fail(w, "Request does not fit quota", err)
			return
		}
	}

	id, err := h.Store.SaveLeaveRequest(ctx, req)
	if err != nil {
		h.fail(w, "Failed to save request", generic.WriteError("save leave request", err))
		return
	}
	req.ID = id

	h.Logger.Info("leave request filed",
		zap.String("request_id", id),
		zap.String("employee_id", req.Employee.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("days", req.Days.String()))
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(req))
}

// ValidateLeaveRequest runs the quota check without saving.
func (h *Handler) ValidateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseLeaveRequest(w, r)
	if !ok {
		return
	}
	if err := h.Service.ValidateRequest(r.Context(), req); err != nil {
		h.fail(w, "Request does not fit quota", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) parseLeaveRequest(w http.ResponseWriter, r *http.Request) (timeoff.LeaveRequest, bool) {
	var body CreateLeaveRequestRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return timeoff.LeaveRequest{}, false
	}
	req, err := body.toLeaveRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dates", err)
		return timeoff.LeaveRequest{}, false
	}

	// Denormalize the requester from the directory when it is known.
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, "Failed to load employees", generic.ReadError("list employees", err))
		return timeoff.LeaveRequest{}, false
	}
	if emp, found := findEmployee(employees, req.Employee); found {
		req.Employee = emp.Identity
	}
	return req, true
}

// SetRequestStatus approves, rejects or cancels a request.
func (h *Handler) SetRequestStatus(w http.ResponseWriter, r *http.Request) {
	var body SetStatusRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Store.SetRequestStatus(r.Context(), id, timeoff.Status(body.Status)); err != nil {
		h.fail(w, "Failed to update request", err)
		return
	}

	req, err := h.Store.GetLeaveRequest(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to reload request", generic.ReadError("get leave request", err))
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "Request not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

// =============================================================================
// QUOTA HANDLERS
// =============================================================================

// ListQuotas returns the catalog in name order.
func (h *Handler) ListQuotas(w http.ResponseWriter, r *http.Request) {
	cat, err := h.Service.Quotas(r.Context())
	if err != nil {
		h.fail(w, "Failed to load quotas", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotaDTOs(cat))
}

// SetQuota adds or replaces one entitlement.
func (h *Handler) SetQuota(w http.ResponseWriter, r *http.Request) {
	var body SetQuotaRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	leaveType := pathParam(r, "leaveType")
	cat, err := h.Service.UpdateQuotas(r.Context(), func(c timeoff.QuotaCatalog) (timeoff.QuotaCatalog, error) {
		return c.Set(leaveType, generic.ParseDays(body.Days))
	})
	if err != nil {
		h.fail(w, "Failed to set quota", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotaDTOs(cat))
}

// RenameQuota renames a leave type, keeping its entitlement.
func (h *Handler) RenameQuota(w http.ResponseWriter, r *http.Request) {
	var body RenameQuotaRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cat, err := h.Service.UpdateQuotas(r.Context(), func(c timeoff.QuotaCatalog) (timeoff.QuotaCatalog, error) {
		return c.Rename(body.From, body.To)
	})
	if err != nil {
		h.fail(w, "Failed to rename quota", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotaDTOs(cat))
}

// DeleteQuota removes a leave type. Requests filed under it are untouched.
func (h *Handler) DeleteQuota(w http.ResponseWriter, r *http.Request) {
	leaveType := pathParam(r, "leaveType")
	cat, err := h.Service.UpdateQuotas(r.Context(), func(c timeoff.QuotaCatalog) (timeoff.QuotaCatalog, error) {
		if _, ok := c.Get(leaveType); !ok {
			return c, fmt.Errorf("%w: %q", generic.ErrQuotaNotFound, leaveType)
		}
		return c.Remove(leaveType), nil
	})
	if err != nil {
		h.fail(w, "Failed to delete quota", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotaDTOs(cat))
}

// =============================================================================
// POLICY DOCUMENT HANDLERS
// =============================================================================

// GetPolicy exports ledger settings and quotas as one document.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.Config(r.Context())
	if err != nil {
		h.fail(w, "Failed to load ledger config", err)
		return
	}
	quotas, err := h.Service.Quotas(r.Context())
	if err != nil {
		h.fail(w, "Failed to load quotas", err)
		return
	}
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(cfg, quotas))
}

// ImportPolicy replaces ledger settings and the whole quota catalog.
func (h *Handler) ImportPolicy(w http.ResponseWriter, r *http.Request) {
	var doc factory.PolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cfg, quotas, err := h.PolicyFactory.FromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy", err)
		return
	}
	if err := h.Service.ImportPolicy(r.Context(), cfg, quotas); err != nil {
		h.fail(w, "Failed to import policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(cfg, quotas))
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GetLedgerConfig returns the stored settings (defaults if never saved).
func (h *Handler) GetLedgerConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.Config(r.Context())
	if err != nil {
		h.fail(w, "Failed to load ledger config", err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerConfigDTO(cfg))
}

// UpdateLedgerConfig replaces the stored settings.
func (h *Handler) UpdateLedgerConfig(w http.ResponseWriter, r *http.Request) {
	var body LedgerConfigDTO
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg := body.toLedgerConfig()
	if cfg.DefaultPolicyCode == "" {
		cfg.DefaultPolicyCode = timeoff.DefaultPolicyCode
	}
	if err := h.Service.SaveConfig(r.Context(), cfg); err != nil {
		h.fail(w, "Failed to save ledger config", err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerConfigDTO(cfg))
}

// GetLedger returns freshly computed rows next to the saved snapshots.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(w, r)
	if !ok {
		return
	}

	computed, err := h.Service.Preview(r.Context(), period)
	if err != nil {
		h.fail(w, "Failed to compute ledger", err)
		return
	}
	saved, err := h.Service.Saved(r.Context(), period)
	if err != nil {
		h.fail(w, "Failed to load saved ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, LedgerResponse{
		Period:   period.String(),
		Computed: toLedgerRowDTOs(computed),
		Saved:    toLedgerRowDTOs(saved),
	})
}

// SaveLedger recalculates the period and upserts every employee's snapshot.
func (h *Handler) SaveLedger(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(w, r)
	if !ok {
		return
	}

	var body SaveLedgerRequest
	if err := decodeBody(r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	report, err := h.Service.RecalculateAndSave(r.Context(), period, body.options())
	if err != nil {
		h.fail(w, "Ledger not saved", err)
		return
	}
	h.writeReport(w, report)
}

// SaveManualLedger applies HR's edits to the computed rows and saves them verbatim.
func (h *Handler) SaveManualLedger(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(w, r)
	if !ok {
		return
	}

	var body ManualSaveRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	rows, err := h.Service.Preview(ctx, period)
	if err != nil {
		h.fail(w, "Ledger not saved", err)
		return
	}

	sheet := timeoff.NewOverrideSheet(rows)
	for _, edit := range body.Edits {
		if err := applyEdit(sheet, edit); err != nil {
			writeError(w, statusFor(err), "Invalid edit", err)
			return
		}
	}

	report, err := h.Service.SaveManual(ctx, period, sheet.Finalize())
	if err != nil {
		h.fail(w, "Ledger not saved", err)
		return
	}
	h.writeReport(w, report)
}

func applyEdit(sheet *timeoff.OverrideSheet, edit CellEdit) error {
	if edit.Field == "policyCode" {
		return sheet.SetPolicyCode(edit.EmployeeID, edit.Value)
	}
	field, err := timeoff.ParseField(edit.Field)
	if err != nil {
		return err
	}
	return sheet.SetAmount(edit.EmployeeID, field, edit.Value)
}

// RetryLedger re-writes the rows that failed in the last save of the period,
// with the values that were attempted.
func (h *Handler) RetryLedger(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	previous := h.lastReports[period]
	h.mu.Unlock()
	if previous == nil || previous.OK() {
		writeError(w, http.StatusNotFound, "Nothing to retry for "+period.String(), nil)
		return
	}

	h.writeReport(w, h.Service.RetryFailed(r.Context(), previous))
}

func (h *Handler) writeReport(w http.ResponseWriter, report *timeoff.SaveReport) {
	h.mu.Lock()
	h.lastReports[report.Period] = report
	h.mu.Unlock()

	status := http.StatusOK
	if !report.OK() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, toSaveReportDTO(report))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps a domain error to its HTTP status and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	case generic.IsStoreError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func periodParam(w http.ResponseWriter, r *http.Request) (generic.PeriodKey, bool) {
	period, err := generic.ParsePeriodKey(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period, expected YYYY-MM", err)
		return generic.PeriodKey{}, false
	}
	return period, true
}
