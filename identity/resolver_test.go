package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/leave-ledger/identity"
)

// =============================================================================
// NORMALIZATION
// =============================================================================

func TestCompact(t *testing.T) {
	assert.Equal(t, "e007", identity.Compact(" E007 "))
	assert.Equal(t, "e007", identity.Compact("E 0 0 7"))
	assert.Equal(t, "", identity.Compact(" \t "))
}

func TestNumeric(t *testing.T) {
	assert.Equal(t, "7", identity.Numeric("E007"))
	assert.Equal(t, "7", identity.Numeric("7"))
	assert.Equal(t, "0", identity.Numeric("E000"))
	assert.Equal(t, "", identity.Numeric("abc"), "no digits means no numeric form")
	assert.Equal(t, "1203", identity.Numeric("EMP-01-203"))
}

// =============================================================================
// MATCH
// =============================================================================

func TestMatch_ZeroPadTolerance(t *testing.T) {
	assert.True(t, identity.Match("E007", "e007"))
	assert.True(t, identity.Match("007", "7"))
	assert.True(t, identity.Match(" E007 ", "E007"))
	assert.True(t, identity.Match("E007", "7"))
	assert.False(t, identity.Match("E007", "E008"))
}

func TestMatch_EmptyNeverMatches(t *testing.T) {
	assert.False(t, identity.Match("", ""))
	assert.False(t, identity.Match("  ", ""))
	assert.False(t, identity.Match("abc", "xyz"), "letters-only IDs have no numeric form")
}

func TestMatch_DigitFreeIDsNeedExactEquality(t *testing.T) {
	// IDs without digits have no numeric form, so only compaction can join them
	assert.False(t, identity.Match("abc", "xyz"))
	assert.False(t, identity.Match("ADMIN", "guest"))
	assert.True(t, identity.Match("abc", " A B C "))
}

func TestExact(t *testing.T) {
	assert.True(t, identity.Exact(" E007", "e007"))
	assert.False(t, identity.Exact("E007", "7"), "numeric equality is not exact")
	assert.False(t, identity.Exact("", ""))
}

func TestMatch_Symmetric(t *testing.T) {
	ids := []string{"E007", "e007", "007", "7", " E007 ", "E008", "", "abc", "ABC", "0", "E000", "x 1"}
	for _, a := range ids {
		for _, b := range ids {
			assert.Equal(t, identity.Match(a, b), identity.Match(b, a), "match(%q,%q)", a, b)
		}
	}
}

// =============================================================================
// WEAK SIGNALS
// =============================================================================

func TestMatchIdentity_IDsDecideWhenBothPresent(t *testing.T) {
	// GIVEN: Two records with different IDs but the same name
	// THEN: They are different employees
	a := identity.Identity{ID: "E001", Name: "Asha Rao", Email: "asha@example.com"}
	b := identity.Identity{ID: "E002", Name: "Asha Rao", Email: "asha@example.com"}
	assert.False(t, identity.MatchIdentity(a, b))
}

func TestMatchIdentity_FallsBackToEmailThenName(t *testing.T) {
	dir := identity.Identity{ID: "E001", Name: "Asha  Rao", Email: "Asha@Example.com"}

	assert.True(t, identity.MatchIdentity(dir, identity.Identity{Email: " asha@example.com"}))
	assert.True(t, identity.MatchIdentity(dir, identity.Identity{Name: "asha rao"}))
	assert.False(t, identity.MatchIdentity(dir, identity.Identity{Name: "Ravi Rao"}))
	assert.False(t, identity.MatchIdentity(identity.Identity{}, identity.Identity{}))
}

// =============================================================================
// DIRECTORY
// =============================================================================

func TestDirectory_Resolve(t *testing.T) {
	dir := identity.NewDirectory([]identity.Identity{
		{ID: "E001", Name: "Asha Rao", Email: "asha@example.com"},
		{ID: "E007", Name: "Ravi Kumar"},
		{Name: "Contractor Lee", Email: "lee@example.com"},
	})

	got, ok := dir.Resolve(identity.Identity{ID: "7"})
	assert.True(t, ok)
	assert.Equal(t, "E007", got.ID)

	got, ok = dir.Resolve(identity.Identity{Email: "ASHA@example.com"})
	assert.True(t, ok)
	assert.Equal(t, "E001", got.ID)

	got, ok = dir.Resolve(identity.Identity{ID: "C-9", Email: "lee@example.com"})
	assert.True(t, ok)
	assert.Equal(t, "Contractor Lee", got.Name)

	_, ok = dir.Resolve(identity.Identity{ID: "E999", Name: "Asha Rao"})
	assert.False(t, ok, "an unmatched ID must not fall back to a name match against ID-bearing entries")
}

func TestDirectory_ResolvePrefersExactID(t *testing.T) {
	// GIVEN: E1 listed before M1, both numerically 1
	dir := identity.NewDirectory([]identity.Identity{
		{ID: "E1", Name: "Asha Rao"},
		{ID: "M1", Name: "Bilal Shah"},
	})

	// THEN: An exact reference reaches its own entry
	got, ok := dir.Resolve(identity.Identity{ID: "m1"})
	assert.True(t, ok)
	assert.Equal(t, "M1", got.ID)

	// THEN: A bare number still resolves to the first numeric hit
	got, ok = dir.Resolve(identity.Identity{ID: "001"})
	assert.True(t, ok)
	assert.Equal(t, "E1", got.ID)
}
