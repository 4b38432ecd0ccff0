package timeoff_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/generic/store"
	"github.com/warp/leave-ledger/identity"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

var (
	jan2025 = generic.NewPeriodKey(2025, time.January)
	feb2025 = generic.NewPeriodKey(2025, time.February)
	apr2025 = generic.NewPeriodKey(2025, time.April)
	may2025 = generic.NewPeriodKey(2025, time.May)
)

func d(v float64) decimal.Decimal { return generic.Days(v) }

func date(y int, m time.Month, day int) generic.Date { return generic.NewDate(y, m, day) }

func emp(id, name string) timeoff.Employee {
	return timeoff.Employee{Identity: identity.Identity{ID: id, Name: name}, Department: "Engineering"}
}

func approved(empID, leaveType string, start, end generic.Date, days float64) timeoff.LeaveRequest {
	return timeoff.LeaveRequest{
		ID:        empID + "-" + start.String(),
		Employee:  identity.Identity{ID: empID},
		LeaveType: leaveType,
		Start:     start,
		End:       end,
		Days:      d(days),
		Status:    timeoff.StatusApproved,
	}
}

// staticSource serves fixed employees and requests.
type staticSource struct {
	employees []timeoff.Employee
	requests  []timeoff.LeaveRequest
	err       error
}

func (s *staticSource) ListEmployees(context.Context) ([]timeoff.Employee, error) {
	return s.employees, s.err
}

func (s *staticSource) ListLeaveRequests(context.Context) ([]timeoff.LeaveRequest, error) {
	return s.requests, s.err
}

// flakyStore wraps the memory store and fails on demand.
type flakyStore struct {
	*store.Memory

	mu       sync.Mutex
	failList bool
	failKeys []string // upserts whose key contains one of these fail
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: store.NewMemory()}
}

func (f *flakyStore) ListAll(ctx context.Context, tags ...generic.RecordTag) ([]generic.RawRecord, error) {
	f.mu.Lock()
	fail := f.failList
	f.mu.Unlock()
	if fail {
		return nil, errors.New("connection reset")
	}
	return f.Memory.ListAll(ctx, tags...)
}

func (f *flakyStore) Upsert(ctx context.Context, rec generic.RawRecord) error {
	f.mu.Lock()
	keys := f.failKeys
	f.mu.Unlock()
	for _, k := range keys {
		if strings.Contains(rec.Key, k) {
			return errors.New("write quota exhausted")
		}
	}
	return f.Memory.Upsert(ctx, rec)
}

func (f *flakyStore) setFailKeys(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKeys = keys
}

func (f *flakyStore) setFailList(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = v
}
