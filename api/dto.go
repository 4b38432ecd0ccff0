/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger's domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employees:  EmployeeDTO, CreateEmployeeRequest
  Requests:   LeaveRequestDTO, CreateLeaveRequestRequest, SetStatusRequest
  Quotas:     QuotaDTO, SetQuotaRequest, RenameQuotaRequest
  Ledger:     LedgerRowDTO, LedgerResponse, SaveLedgerRequest,
              ManualSaveRequest, SaveReportDTO
  Scenarios:  ScenarioDTO, LoadScenarioRequest

AMOUNTS:
  Day amounts travel as decimal strings ("1.5", "-0.50") so clients never
  see float rounding.

VALIDATION:
  Request bodies carry validator/v10 struct tags, checked by decodeBody.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	PolicyCode string `json:"policy_code,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department"`
	PolicyCode string `json:"policy_code"`
}

func toEmployeeDTO(e timeoff.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		PolicyCode: e.PolicyCode,
	}
}

func (r CreateEmployeeRequest) toEmployee() timeoff.Employee {
	return timeoff.Employee{
		Identity:   identity.Identity{ID: r.ID, Name: r.Name, Email: r.Email},
		Department: r.Department,
		PolicyCode: r.PolicyCode,
	}
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id,omitempty"`
	EmployeeName  string `json:"employee_name,omitempty"`
	EmployeeEmail string `json:"employee_email,omitempty"`
	LeaveType     string `json:"leave_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
	Days          string `json:"days"`
	IsHalfDay     bool   `json:"is_half_day"`
	Status        string `json:"status"`
	Category      string `json:"category,omitempty"`
}

// CreateLeaveRequestRequest files (or validates) a leave request.
// At least one of employee id, email or name identifies the requester.
type CreateLeaveRequestRequest struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id" validate:"required_without_all=EmployeeEmail EmployeeName"`
	EmployeeName  string `json:"employee_name"`
	EmployeeEmail string `json:"employee_email" validate:"omitempty,email"`
	LeaveType     string `json:"leave_type" validate:"required"`
	StartDate     string `json:"start_date" validate:"required"`
	EndDate       string `json:"end_date"`
	Days          string `json:"days" validate:"required,numeric"`
	IsHalfDay     bool   `json:"is_half_day"`
	Status        string `json:"status"`
	Category      string `json:"category"`
}

// SetStatusRequest moves a request to a new status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Approved Rejected Cancelled"`
}

func toLeaveRequestDTO(r timeoff.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:            r.ID,
		EmployeeID:    r.Employee.ID,
		EmployeeName:  r.Employee.Name,
		EmployeeEmail: r.Employee.Email,
		LeaveType:     r.LeaveType,
		StartDate:     r.Start.String(),
		Days:          r.Days.String(),
		IsHalfDay:     r.IsHalfDay,
		Status:        string(r.Status),
		Category:      r.Category,
	}
	if !r.End.IsZero() {
		dto.EndDate = r.End.String()
	}
	return dto
}

func (r CreateLeaveRequestRequest) toLeaveRequest() (timeoff.LeaveRequest, error) {
	start, err := generic.ParseDate(r.StartDate)
	if err != nil {
		return timeoff.LeaveRequest{}, err
	}
	end := start
	if r.EndDate != "" {
		if end, err = generic.ParseDate(r.EndDate); err != nil {
			return timeoff.LeaveRequest{}, err
		}
	}
	return timeoff.LeaveRequest{
		ID:        r.ID,
		Employee:  identity.Identity{ID: r.EmployeeID, Name: r.EmployeeName, Email: r.EmployeeEmail},
		LeaveType: r.LeaveType,
		Start:     start,
		End:       end,
		Days:      generic.ParseDays(r.Days),
		IsHalfDay: r.IsHalfDay,
		Status:    timeoff.ParseStatus(r.Status),
		Category:  r.Category,
	}, nil
}

// =============================================================================
// QUOTAS & BALANCES
// =============================================================================

// QuotaDTO is one catalog entry.
type QuotaDTO struct {
	LeaveType string `json:"leave_type"`
	Days      string `json:"days"`
}

// SetQuotaRequest sets the entitlement of one leave type.
type SetQuotaRequest struct {
	Days string `json:"days" validate:"required,numeric"`
}

// RenameQuotaRequest renames a leave type, keeping its entitlement.
type RenameQuotaRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

func toQuotaDTOs(c timeoff.QuotaCatalog) []QuotaDTO {
	types := c.Types()
	dtos := make([]QuotaDTO, len(types))
	for i, lt := range types {
		days, _ := c.Get(lt)
		dtos[i] = QuotaDTO{LeaveType: lt, Days: days.String()}
	}
	return dtos
}

// BalanceDTO is quota left for one leave type.
type BalanceDTO struct {
	LeaveType   string `json:"leave_type"`
	Entitlement string `json:"entitlement"`
	Used        string `json:"used"`
	Remaining   string `json:"remaining"`
}

func toBalanceDTOs(bs []timeoff.TypeBalance) []BalanceDTO {
	dtos := make([]BalanceDTO, len(bs))
	for i, b := range bs {
		dtos[i] = BalanceDTO{
			LeaveType:   b.LeaveType,
			Entitlement: b.Entitlement.String(),
			Used:        b.Used.String(),
			Remaining:   b.Remaining.StringFixed(2),
		}
	}
	return dtos
}

// =============================================================================
// LEDGER
// =============================================================================

// LedgerRowDTO is one ledger row. Amounts are fixed to two places.
type LedgerRowDTO struct {
	EmployeeID       string `json:"employee_id"`
	EmployeeName     string `json:"employee_name"`
	Department       string `json:"department,omitempty"`
	PolicyCode       string `json:"policy_code"`
	Period           string `json:"period"`
	Opening          string `json:"opening"`
	Allocated        string `json:"allocated"`
	Used             string `json:"used"`
	Closing          string `json:"closing"`
	CarryForward     string `json:"carry_forward"`
	IsManualOverride bool   `json:"is_manual_override"`
}

func toLedgerRowDTOs(rows []timeoff.LedgerRow) []LedgerRowDTO {
	dtos := make([]LedgerRowDTO, len(rows))
	for i, r := range rows {
		dtos[i] = LedgerRowDTO{
			EmployeeID:       r.EmployeeID,
			EmployeeName:     r.EmployeeName,
			Department:       r.Department,
			PolicyCode:       r.PolicyCode,
			Period:           r.Period.String(),
			Opening:          r.Opening.StringFixed(2),
			Allocated:        r.Allocated.StringFixed(2),
			Used:             r.Used.StringFixed(2),
			Closing:          r.Closing.StringFixed(2),
			CarryForward:     r.CarryForward.StringFixed(2),
			IsManualOverride: r.IsManualOverride,
		}
	}
	return dtos
}

// LedgerResponse shows computed rows next to what is already saved.
type LedgerResponse struct {
	Period   string         `json:"period"`
	Computed []LedgerRowDTO `json:"computed"`
	Saved    []LedgerRowDTO `json:"saved"`
}

// SaveLedgerRequest is the body of "Recalculate & Save".
type SaveLedgerRequest struct {
	MonthlyAccrual *string `json:"monthly_accrual,omitempty" validate:"omitempty,numeric"`
}

func (r SaveLedgerRequest) options() timeoff.SaveOptions {
	if r.MonthlyAccrual == nil {
		return timeoff.SaveOptions{}
	}
	v := generic.ParseDays(*r.MonthlyAccrual)
	return timeoff.SaveOptions{MonthlyAccrual: &v}
}

// CellEdit is one manual change to a computed row.
type CellEdit struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Field      string `json:"field" validate:"required"`
	Value      string `json:"value"`
}

// ManualSaveRequest saves computed rows with HR's edits applied verbatim.
type ManualSaveRequest struct {
	Edits []CellEdit `json:"edits" validate:"dive"`
}

// LedgerConfigDTO exposes the stored ledger settings.
type LedgerConfigDTO struct {
	MonthlyAccrual     string            `json:"monthly_accrual" validate:"required,numeric"`
	DefaultPolicyCode  string            `json:"default_policy_code"`
	PolicyAccruals     map[string]string `json:"policy_accruals,omitempty" validate:"dive,numeric"`
	ExcludedCategories []string          `json:"excluded_categories"`
	FloorAtZero        bool              `json:"floor_at_zero"`
}

func toLedgerConfigDTO(c timeoff.LedgerConfig) LedgerConfigDTO {
	dto := LedgerConfigDTO{
		MonthlyAccrual:     c.MonthlyAccrual.String(),
		DefaultPolicyCode:  c.DefaultPolicyCode,
		ExcludedCategories: c.ExcludedCategories,
		FloorAtZero:        c.FloorAtZero,
	}
	if len(c.PolicyAccruals) > 0 {
		dto.PolicyAccruals = make(map[string]string, len(c.PolicyAccruals))
		for k, v := range c.PolicyAccruals {
			dto.PolicyAccruals[k] = v.String()
		}
	}
	return dto
}

func (d LedgerConfigDTO) toLedgerConfig() timeoff.LedgerConfig {
	c := timeoff.LedgerConfig{
		MonthlyAccrual:     generic.ParseDays(d.MonthlyAccrual),
		DefaultPolicyCode:  d.DefaultPolicyCode,
		ExcludedCategories: d.ExcludedCategories,
		FloorAtZero:        d.FloorAtZero,
	}
	if len(d.PolicyAccruals) > 0 {
		c.PolicyAccruals = make(map[string]decimal.Decimal, len(d.PolicyAccruals))
		for k, v := range d.PolicyAccruals {
			c.PolicyAccruals[k] = generic.ParseDays(v)
		}
	}
	return c
}

// RowFailureDTO is one employee whose snapshot was not written.
type RowFailureDTO struct {
	EmployeeID string `json:"employee_id"`
	PolicyCode string `json:"policy_code"`
	Error      string `json:"error"`
}

// SaveReportDTO reports which rows of a save were written.
type SaveReportDTO struct {
	Period      string          `json:"period"`
	Saved       []string        `json:"saved"`
	Failed      []RowFailureDTO `json:"failed"`
	ConfigSaved bool            `json:"config_saved"`
	Superseded  []string        `json:"superseded,omitempty"`
}

func toSaveReportDTO(r *timeoff.SaveReport) SaveReportDTO {
	dto := SaveReportDTO{
		Period:      r.Period.String(),
		Saved:       append([]string{}, r.Saved...),
		Failed:      make([]RowFailureDTO, len(r.Failed)),
		ConfigSaved: r.ConfigSaved,
		Superseded:  r.Superseded,
	}
	for i, f := range r.Failed {
		dto.Failed[i] = RowFailureDTO{EmployeeID: f.EmployeeID, PolicyCode: f.PolicyCode, Error: f.Err.Error()}
	}
	return dto
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Period      string `json:"period"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
