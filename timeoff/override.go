package timeoff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/identity"
)

// =============================================================================
// MANUAL OVERRIDE - HR edits rows before saving
// =============================================================================

// Field names an editable numeric column.
type Field string

const (
	FieldOpening      Field = "opening"
	FieldAllocated    Field = "allocated"
	FieldUsed         Field = "used"
	FieldClosing      Field = "closing"
	FieldCarryForward Field = "carryForward"
)

// ParseField maps a column name to a Field.
func ParseField(raw string) (Field, error) {
	switch f := Field(strings.TrimSpace(raw)); f {
	case FieldOpening, FieldAllocated, FieldUsed, FieldClosing, FieldCarryForward:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", generic.ErrInvalidField, raw)
}

// OverrideSheet is an editable copy of computed rows. Edited values are kept
// verbatim and never re-derived from the balance formula.
type OverrideSheet struct {
	computed []LedgerRow
	edited   []LedgerRow
}

// NewOverrideSheet starts editing from the computed rows.
func NewOverrideSheet(computed []LedgerRow) *OverrideSheet {
	s := &OverrideSheet{computed: append([]LedgerRow(nil), computed...)}
	s.Reset()
	return s
}

// Reset discards every edit.
func (s *OverrideSheet) Reset() {
	s.edited = append([]LedgerRow(nil), s.computed...)
}

// Rows returns the current (possibly edited) rows.
func (s *OverrideSheet) Rows() []LedgerRow {
	return append([]LedgerRow(nil), s.edited...)
}

// find prefers an exact ID so "M1" never lands on "E1".
func (s *OverrideSheet) find(employeeID string) (*LedgerRow, error) {
	for i := range s.edited {
		if identity.Exact(s.edited[i].EmployeeID, employeeID) {
			return &s.edited[i], nil
		}
	}
	for i := range s.edited {
		if identity.Match(s.edited[i].EmployeeID, employeeID) {
			return &s.edited[i], nil
		}
	}
	return nil, fmt.Errorf("%w: employee %q not in ledger", generic.ErrNotFound, employeeID)
}

// SetAmount overwrites one numeric field. Non-numeric input becomes 0.
func (s *OverrideSheet) SetAmount(employeeID string, field Field, raw string) error {
	row, err := s.find(employeeID)
	if err != nil {
		return err
	}
	return setField(row, field, generic.ParseDays(raw))
}

// SetValue overwrites one numeric field with an already parsed amount.
func (s *OverrideSheet) SetValue(employeeID string, field Field, v decimal.Decimal) error {
	row, err := s.find(employeeID)
	if err != nil {
		return err
	}
	return setField(row, field, v)
}

func setField(row *LedgerRow, field Field, v decimal.Decimal) error {
	switch field {
	case FieldOpening:
		row.Opening = v
	case FieldAllocated:
		row.Allocated = v
	case FieldUsed:
		row.Used = v
	case FieldClosing:
		row.Closing = v
	case FieldCarryForward:
		row.CarryForward = v
	default:
		return fmt.Errorf("%w: %q", generic.ErrInvalidField, field)
	}
	return nil
}

// SetPolicyCode overwrites the row's policy code.
func (s *OverrideSheet) SetPolicyCode(employeeID, code string) error {
	row, err := s.find(employeeID)
	if err != nil {
		return err
	}
	row.PolicyCode = strings.TrimSpace(code)
	return nil
}

// Finalize returns the rows to persist, each marked as a manual override.
func (s *OverrideSheet) Finalize() []LedgerRow {
	rows := s.Rows()
	for i := range rows {
		rows[i].IsManualOverride = true
	}
	return rows
}
