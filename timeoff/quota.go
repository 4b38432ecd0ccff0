/*
quota.go - Leave-type entitlement catalog

PURPOSE:
  Maps a leave-type name ("Casual Leave", "Sick Leave") to its annual
  entitlement in days. HR adds, renames and removes types; historical
  requests keep whatever type name they were filed under.

IMMUTABILITY:
  QuotaCatalog is a value. Set, Rename and Remove return a new catalog and
  never touch the receiver, so a computation holding a catalog is never
  affected by an edit happening elsewhere.

LOOKUP:
  Get is an exact, case-sensitive key match.
  Lookup tries Get first, then a case-insensitive scan. When several keys
  match case-insensitively, the lexicographically smallest one wins so the
  result never depends on map order.

EXAMPLE:
  cat, _ := timeoff.NewQuotaCatalog(map[string]decimal.Decimal{"Casual": generic.Days(12)})
  cat, err := cat.Rename("Casual", "Casual Leave") // value 12 preserved
*/
package timeoff

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
)

// QuotaCatalog is an immutable leave-type -> annual days mapping.
type QuotaCatalog struct {
	entries map[string]decimal.Decimal
}

// NewQuotaCatalog validates and copies the given entries.
func NewQuotaCatalog(entries map[string]decimal.Decimal) (QuotaCatalog, error) {
	c := QuotaCatalog{entries: make(map[string]decimal.Decimal, len(entries))}
	for name, days := range entries {
		if err := validateQuota(name, days); err != nil {
			return QuotaCatalog{}, err
		}
		c.entries[name] = days
	}
	return c, nil
}

func validateQuota(name string, days decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return generic.ErrInvalidQuotaName
	}
	if days.IsNegative() {
		return generic.ErrNegativeQuota
	}
	return nil
}

func (c QuotaCatalog) clone() QuotaCatalog {
	next := QuotaCatalog{entries: make(map[string]decimal.Decimal, len(c.entries)+1)}
	for k, v := range c.entries {
		next.entries[k] = v
	}
	return next
}

// Get returns the entitlement stored under exactly this name.
func (c QuotaCatalog) Get(leaveType string) (decimal.Decimal, bool) {
	d, ok := c.entries[leaveType]
	return d, ok
}

// Lookup is Get with a case-insensitive fallback.
func (c QuotaCatalog) Lookup(leaveType string) (decimal.Decimal, bool) {
	if d, ok := c.Get(leaveType); ok {
		return d, true
	}
	want := strings.TrimSpace(leaveType)
	for _, name := range c.Types() {
		if strings.EqualFold(strings.TrimSpace(name), want) {
			return c.entries[name], true
		}
	}
	return decimal.Zero, false
}

// Set adds or replaces an entitlement.
func (c QuotaCatalog) Set(leaveType string, days decimal.Decimal) (QuotaCatalog, error) {
	if err := validateQuota(leaveType, days); err != nil {
		return c, err
	}
	next := c.clone()
	next.entries[leaveType] = days
	return next, nil
}

// Rename moves an entitlement to a new name, keeping its value.
// Fails if newName is already taken.
func (c QuotaCatalog) Rename(oldName, newName string) (QuotaCatalog, error) {
	days, ok := c.entries[oldName]
	if !ok {
		return c, generic.ErrQuotaNotFound
	}
	if oldName == newName {
		return c, nil
	}
	if strings.TrimSpace(newName) == "" {
		return c, generic.ErrInvalidQuotaName
	}
	if _, exists := c.entries[newName]; exists {
		return c, generic.ErrQuotaExists
	}
	next := c.clone()
	delete(next.entries, oldName)
	next.entries[newName] = days
	return next, nil
}

// Remove drops a leave type. Removing a missing type is a no-op.
func (c QuotaCatalog) Remove(leaveType string) QuotaCatalog {
	if _, ok := c.entries[leaveType]; !ok {
		return c
	}
	next := c.clone()
	delete(next.entries, leaveType)
	return next
}

// Types returns leave-type names in sorted order.
func (c QuotaCatalog) Types() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns a copy of the mapping.
func (c QuotaCatalog) Entries() map[string]decimal.Decimal {
	return c.clone().entries
}

func (c QuotaCatalog) Len() int { return len(c.entries) }

// Equal compares two catalogs key by key.
func (c QuotaCatalog) Equal(o QuotaCatalog) bool {
	if len(c.entries) != len(o.entries) {
		return false
	}
	for k, v := range c.entries {
		ov, ok := o.entries[k]
		if !ok || !ov.Equal(v) {
			return false
		}
	}
	return true
}
