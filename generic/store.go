/*
store.go - Persistence interface for tagged ledger records

PURPOSE:
  Defines the boundary between the ledger and whatever holds its rows.
  The backing store is a single list of records; configuration rows and
  snapshot rows live side by side and are told apart by a tag.

KEY INTERFACES:
  RecordStore: list records by tag, upsert a record by (tag, key)

UPSERT CONTRACT:
  Writing a record whose (Tag, Key) already exists replaces its payload.
  It never creates a second row for the same key.

READ CONTRACT:
  ListAll fetches every requested tag in ONE read. Config and snapshot rows
  must be read together so a concurrent save cannot make them drift.

NO TRANSACTIONS:
  Upserts are atomic per record only. A bulk save that fails halfway leaves
  earlier records written; callers report which keys failed.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite "records" table
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - timeoff/repository.go: Typed repository hiding tags and payloads
*/
package generic

import "context"

// =============================================================================
// RECORD STORE - Tagged key/value rows
// =============================================================================

// RecordTag distinguishes row kinds sharing one store.
type RecordTag string

const (
	TagConfig   RecordTag = "config"   // Ledger settings (monthly accrual etc.)
	TagQuota    RecordTag = "quota"    // Leave-type entitlement catalog
	TagSnapshot RecordTag = "snapshot" // Persisted ledger rows
)

// RawRecord is one stored row. Payload is opaque JSON owned by the caller.
type RawRecord struct {
	Tag     RecordTag
	Key     string
	Payload []byte
}

// RecordStore is the persistence contract consumed by the ledger.
type RecordStore interface {
	// ListAll returns every record carrying one of the given tags.
	// An empty result is not an error.
	ListAll(ctx context.Context, tags ...RecordTag) ([]RawRecord, error)

	// Upsert inserts the record or replaces the payload stored under (Tag, Key).
	Upsert(ctx context.Context, rec RawRecord) error
}
