package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// EMPLOYEE STORE (timeoff.EmployeeSource interface)
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp timeoff.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveEmployee(ctx, s.db, emp)
}

// ImportEmployees saves a batch of employees in one database transaction.
func (s *Store) ImportEmployees(ctx context.Context, emps []timeoff.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, emp := range emps {
		if err := saveEmployee(ctx, tx, emp); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func saveEmployee(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, emp timeoff.Employee) error {
	if emp.ID == "" {
		return fmt.Errorf("employee %q has no id", emp.Name)
	}

	query := `
		INSERT INTO employees (id, name, email, department, policy_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			department = excluded.department,
			policy_code = excluded.policy_code,
			updated_at = excluded.updated_at
	`

	ts := now()
	_, err := db.ExecContext(ctx, query,
		emp.ID, emp.Name, nullString(emp.Email), nullString(emp.Department),
		nullString(emp.PolicyCode), ts, ts,
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*timeoff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp timeoff.Employee
	var email, dept, policy sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, department, policy_code FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &email, &dept, &policy)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	emp.Email, emp.Department, emp.PolicyCode = email.String, dept.String, policy.String
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]timeoff.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, department, policy_code FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []timeoff.Employee
	for rows.Next() {
		var emp timeoff.Employee
		var email, dept, policy sql.NullString
		if err := rows.Scan(&emp.ID, &emp.Name, &email, &dept, &policy); err != nil {
			return nil, err
		}
		emp.Email, emp.Department, emp.PolicyCode = email.String, dept.String, policy.String
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee. Their requests are kept.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	return err
}

// =============================================================================
// LEAVE REQUEST STORE (timeoff.RequestSource interface)
// =============================================================================

// SaveLeaveRequest inserts or updates a request. A blank ID is assigned a UUID,
// which is returned.
func (s *Store) SaveLeaveRequest(ctx context.Context, r timeoff.LeaveRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = timeoff.StatusPending
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, employee_name, employee_email,
			leave_type, start_date, end_date, days, is_half_day, status, category,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			employee_name = excluded.employee_name,
			employee_email = excluded.employee_email,
			leave_type = excluded.leave_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			days = excluded.days,
			is_half_day = excluded.is_half_day,
			status = excluded.status,
			category = excluded.category,
			updated_at = excluded.updated_at
	`

	var end sql.NullString
	if !r.End.IsZero() {
		end = nullString(r.End.String())
	}

	ts := now()
	_, err := s.db.ExecContext(ctx, query,
		r.ID, nullString(r.Employee.ID), nullString(r.Employee.Name), nullString(r.Employee.Email),
		r.LeaveType, r.Start.String(), end, r.Days.String(), r.IsHalfDay,
		string(r.Status), nullString(r.Category), ts, ts,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save leave request: %w", err)
	}
	return r.ID, nil
}

// SetRequestStatus moves a request to a new status.
func (s *Store) SetRequestStatus(ctx context.Context, id string, status timeoff.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE leave_requests SET status = ?, updated_at = ? WHERE id = ?",
		string(status), now(), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: leave request %s", generic.ErrNotFound, id)
	}
	return nil
}

const selectRequests = `
	SELECT id, employee_id, employee_name, employee_email, leave_type,
		start_date, end_date, days, is_half_day, status, category
	FROM leave_requests
`

// GetLeaveRequest retrieves a request by ID.
func (s *Store) GetLeaveRequest(ctx context.Context, id string) (*timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reqs, err := s.queryRequests(ctx, selectRequests+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

// ListLeaveRequests returns every request ordered by start date.
func (s *Store) ListLeaveRequests(ctx context.Context) ([]timeoff.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx, selectRequests+" ORDER BY start_date, id")
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]timeoff.LeaveRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []timeoff.LeaveRequest
	for rows.Next() {
		var r timeoff.LeaveRequest
		var empID, empName, empEmail, endDate, category sql.NullString
		var startDate, days, status string
		if err := rows.Scan(
			&r.ID, &empID, &empName, &empEmail, &r.LeaveType,
			&startDate, &endDate, &days, &r.IsHalfDay, &status, &category,
		); err != nil {
			return nil, err
		}

		r.Employee = identity.Identity{ID: empID.String, Name: empName.String, Email: empEmail.String}
		if r.Start, err = generic.ParseDate(startDate); err != nil {
			return nil, fmt.Errorf("request %s start_date: %w", r.ID, err)
		}
		if endDate.Valid && endDate.String != "" {
			if r.End, err = generic.ParseDate(endDate.String); err != nil {
				return nil, fmt.Errorf("request %s end_date: %w", r.ID, err)
			}
		}
		if r.Days, err = decimal.NewFromString(days); err != nil {
			return nil, fmt.Errorf("request %s days %q: %w", r.ID, days, err)
		}
		r.Status = timeoff.ParseStatus(status)
		r.Category = category.String

		requests = append(requests, r)
	}

	return requests, rows.Err()
}
