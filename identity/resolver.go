/*
Package identity decides whether two employee references denote the same person.

PURPOSE:
  Employee records arrive from a directory, a leave-request store, an
  attendance store and a payroll store. None of them shares a canonical
  key: one writes "E007", another "007", a third " e007 ". Every join in
  the ledger goes through this package so all views agree on who is who.

MATCHING RULES (Match):
  1. Compact both values: trim, lowercase, drop all whitespace.
     Equal non-empty compact forms match.
  2. Otherwise compare numeric forms: digits only, leading zeros stripped.
     Equal non-empty numeric forms match.
  3. Otherwise no match.

  "E007", "e007", "007", "7" and " E007 " all match each other.
  "E007" and "E008" do not.

WEAK SIGNALS (MatchIdentity):
  Email and full name are compared only when one side has no usable ID.
  Two records that both carry IDs are never joined by name.

FAILURE SEMANTICS:
  Nothing here returns an error. "No match" is a normal false.
*/
package identity

import (
	"strings"
	"unicode"
)

// =============================================================================
// NORMALIZATION
// =============================================================================

// Compact trims, lowercases and removes every whitespace rune.
func Compact(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Numeric keeps only ASCII digits and strips leading zeros. A value made only
// of zeros becomes "0"; a value with no digits at all has no numeric form ("").
func Numeric(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeName lowercases and collapses internal whitespace.
func NormalizeName(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// =============================================================================
// MATCHING
// =============================================================================

// Exact reports whether two raw IDs are equal after compaction. "E1" and
// "M1" match by number but are not exact.
func Exact(a, b string) bool {
	ca := Compact(a)
	return ca != "" && ca == Compact(b)
}

// Match reports whether two raw IDs refer to the same employee. Symmetric.
// Callers choosing among several candidates should prefer an Exact hit.
func Match(a, b string) bool {
	if Exact(a, b) {
		return true
	}
	na, nb := Numeric(a), Numeric(b)
	return na != "" && na == nb
}

// Identity is one source's view of an employee. No field is guaranteed.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// HasID reports whether the identity carries a usable ID.
func (i Identity) HasID() bool { return Compact(i.ID) != "" }

// MatchIdentity joins two identities. The ID decides whenever both sides have
// one; email and then name are consulted only when an ID is missing.
func MatchIdentity(a, b Identity) bool {
	if a.HasID() && b.HasID() {
		return Match(a.ID, b.ID)
	}
	if ea, eb := NormalizeEmail(a.Email), NormalizeEmail(b.Email); ea != "" && ea == eb {
		return true
	}
	na, nb := NormalizeName(a.Name), NormalizeName(b.Name)
	return na != "" && na == nb
}
