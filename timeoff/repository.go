/*
repository.go - Typed access to ledger records

PURPOSE:
  The backing RecordStore is one flat list where configuration rows and
  snapshot rows share space and are told apart by a tag. Repository is the
  only code that knows that layout; the ledger sees typed values.

ROW KINDS:
  config   key "ledger"   -> LedgerConfig JSON
  quota    key "catalog"  -> {"Casual Leave": "12", ...}
  snapshot key SnapshotKey -> flat LedgerRow JSON
                              (employeeId, employeeName, department,
                               policyCode, monthKey, opening, allocated,
                               used, closing, carryForward, isManualOverride)

READ SEMANTICS:
  LoadScope fetches all three kinds in one ListAll call. A missing config
  row yields defaults and a missing snapshot yields opening 0. A failed or
  undecodable read is an ErrStoreRead, never an empty result.
*/
package timeoff

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
)

const (
	configKey  = "ledger"
	catalogKey = "catalog"
)

// Repository maps ledger values onto tagged records.
type Repository struct {
	store generic.RecordStore
}

func NewRepository(store generic.RecordStore) *Repository {
	return &Repository{store: store}
}

// =============================================================================
// SCOPE - One consistent read
// =============================================================================

// Scope is the result of a single fetch of config, quotas and snapshots.
type Scope struct {
	Config    LedgerConfig
	HasConfig bool
	Quotas    QuotaCatalog
	Snapshots []LedgerRow
}

// Prior indexes the snapshots of the month before period.
func (s Scope) Prior(period generic.PeriodKey) SnapshotIndex {
	return NewSnapshotIndex(s.ForPeriod(period.Prev()))
}

// ForPeriod returns the saved rows of one month.
func (s Scope) ForPeriod(period generic.PeriodKey) []LedgerRow {
	var out []LedgerRow
	for _, r := range s.Snapshots {
		if r.Period == period {
			out = append(out, r)
		}
	}
	return out
}

// LoadScope reads every config, quota and snapshot record in one call.
func (r *Repository) LoadScope(ctx context.Context) (Scope, error) {
	recs, err := r.store.ListAll(ctx, generic.TagConfig, generic.TagQuota, generic.TagSnapshot)
	if err != nil {
		return Scope{}, generic.ReadError("list records", err)
	}

	scope := Scope{Config: DefaultLedgerConfig(), Quotas: QuotaCatalog{}}
	for _, rec := range recs {
		switch rec.Tag {
		case generic.TagConfig:
			if rec.Key != configKey {
				continue
			}
			cfg := DefaultLedgerConfig()
			if err := json.Unmarshal(rec.Payload, &cfg); err != nil {
				return Scope{}, generic.ReadError("decode config", err)
			}
			scope.Config, scope.HasConfig = cfg, true

		case generic.TagQuota:
			if rec.Key != catalogKey {
				continue
			}
			var entries map[string]decimal.Decimal
			if err := json.Unmarshal(rec.Payload, &entries); err != nil {
				return Scope{}, generic.ReadError("decode quotas", err)
			}
			cat, err := NewQuotaCatalog(entries)
			if err != nil {
				return Scope{}, generic.ReadError("decode quotas", err)
			}
			scope.Quotas = cat

		case generic.TagSnapshot:
			var row LedgerRow
			if err := json.Unmarshal(rec.Payload, &row); err != nil {
				return Scope{}, generic.ReadError(fmt.Sprintf("decode snapshot %s", rec.Key), err)
			}
			scope.Snapshots = append(scope.Snapshots, row)
		}
	}
	return scope, nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Get returns the saved row for the key, or nil when none was saved.
func (r *Repository) Get(ctx context.Context, employeeID string, period generic.PeriodKey, policyCode string) (*LedgerRow, error) {
	scope, err := r.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := NewSnapshotIndex(scope).Find(employeeID, period, policyCode)
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// ListForPeriod returns every saved row of a month.
func (r *Repository) ListForPeriod(ctx context.Context, period generic.PeriodKey) ([]LedgerRow, error) {
	rows, err := r.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	return Scope{Snapshots: rows}.ForPeriod(period), nil
}

func (r *Repository) loadSnapshots(ctx context.Context) ([]LedgerRow, error) {
	recs, err := r.store.ListAll(ctx, generic.TagSnapshot)
	if err != nil {
		return nil, generic.ReadError("list snapshots", err)
	}
	rows := make([]LedgerRow, 0, len(recs))
	for _, rec := range recs {
		var row LedgerRow
		if err := json.Unmarshal(rec.Payload, &row); err != nil {
			return nil, generic.ReadError(fmt.Sprintf("decode snapshot %s", rec.Key), err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Put upserts one snapshot under (employee, period, policy).
func (r *Repository) Put(ctx context.Context, row LedgerRow) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return generic.WriteError("encode snapshot", err)
	}
	rec := generic.RawRecord{Tag: generic.TagSnapshot, Key: row.Key().String(), Payload: payload}
	if err := r.store.Upsert(ctx, rec); err != nil {
		return generic.WriteError("upsert snapshot "+rec.Key, err)
	}
	return nil
}

// =============================================================================
// CONFIG & QUOTAS
// =============================================================================

// SaveConfig upserts the ledger settings.
func (r *Repository) SaveConfig(ctx context.Context, cfg LedgerConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return generic.WriteError("encode config", err)
	}
	if err := r.store.Upsert(ctx, generic.RawRecord{Tag: generic.TagConfig, Key: configKey, Payload: payload}); err != nil {
		return generic.WriteError("upsert config", err)
	}
	return nil
}

// SaveQuotas replaces the stored catalog with cat.
func (r *Repository) SaveQuotas(ctx context.Context, cat QuotaCatalog) error {
	payload, err := json.Marshal(cat.Entries())
	if err != nil {
		return generic.WriteError("encode quotas", err)
	}
	if err := r.store.Upsert(ctx, generic.RawRecord{Tag: generic.TagQuota, Key: catalogKey, Payload: payload}); err != nil {
		return generic.WriteError("upsert quotas", err)
	}
	return nil
}
