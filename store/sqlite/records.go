package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/leave-ledger/generic"
)

// =============================================================================
// RECORD STORE (generic.RecordStore interface)
// =============================================================================

// ListAll returns every record carrying one of tags, ordered by tag then key.
// All tags are fetched in a single query.
func (s *Store) ListAll(ctx context.Context, tags ...generic.RecordTag) ([]generic.RawRecord, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tags)), ",")
	args := make([]any, len(tags))
	for i, t := range tags {
		args[i] = string(t)
	}

	query := fmt.Sprintf(`
		SELECT tag, record_key, payload_json
		FROM records
		WHERE tag IN (%s)
		ORDER BY tag, record_key
	`, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var result []generic.RawRecord
	for rows.Next() {
		var rec generic.RawRecord
		var tag, payload string
		if err := rows.Scan(&tag, &rec.Key, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Tag = generic.RecordTag(tag)
		rec.Payload = []byte(payload)
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Upsert writes rec, replacing the payload of an existing (tag, key) row.
func (s *Store) Upsert(ctx context.Context, rec generic.RawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO records (id, tag, record_key, payload_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tag, record_key) DO UPDATE SET
			payload_json = excluded.payload_json,
			updated_at = excluded.updated_at
	`

	ts := now()
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(), string(rec.Tag), rec.Key, string(rec.Payload), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s/%s: %w", rec.Tag, rec.Key, err)
	}
	return nil
}

// CountRecords returns how many rows carry tag.
func (s *Store) CountRecords(ctx context.Context, tag generic.RecordTag) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE tag = ?", string(tag)).Scan(&n)
	return n, err
}
