// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leave-ledger/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[key][]byte
	writes  int
}

type key struct {
	Tag generic.RecordTag
	Key string
}

func NewMemory() *Memory {
	return &Memory{records: make(map[key][]byte)}
}

// ListAll returns records for the given tags ordered by tag then key.
func (m *Memory) ListAll(_ context.Context, tags ...generic.RecordTag) ([]generic.RawRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[generic.RecordTag]bool, len(tags))
	for _, t := range tags {
		wanted[t] = true
	}

	var result []generic.RawRecord
	for k, payload := range m.records {
		if !wanted[k.Tag] {
			continue
		}
		result = append(result, generic.RawRecord{
			Tag:     k.Tag,
			Key:     k.Key,
			Payload: append([]byte(nil), payload...),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Tag != result[j].Tag {
			return result[i].Tag < result[j].Tag
		}
		return result[i].Key < result[j].Key
	})
	return result, nil
}

// Upsert replaces the payload stored under (Tag, Key).
func (m *Memory) Upsert(_ context.Context, rec generic.RawRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[key{Tag: rec.Tag, Key: rec.Key}] = append([]byte(nil), rec.Payload...)
	m.writes++
	return nil
}

// Len returns the number of distinct records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Writes returns how many upserts have been applied.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
