// Package store provides an in-memory timebank.Store for tests and
// development.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/turno/payroll-engine/timebank"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements timebank.TxStore with plain maps. WithTx serializes
// writers on the store mutex; operations validate before writing, so
// a failed transaction has nothing to roll back.
type Memory struct {
	mu        sync.RWMutex
	employees map[string]timebank.Employee
	shifts    map[string]timebank.Shift
	requests  map[string]timebank.Request
	entries   map[string][]timebank.LedgerEntry // employeeID -> append order
	balances  map[string]timebank.EmployeeBalance
	summaries map[string]timebank.AccumulatedSummary

	// requestOrder keeps ListRequests deterministic.
	requestOrder []string

	inTx bool
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[string]timebank.Employee),
		shifts:    make(map[string]timebank.Shift),
		requests:  make(map[string]timebank.Request),
		entries:   make(map[string][]timebank.LedgerEntry),
		balances:  make(map[string]timebank.EmployeeBalance),
		summaries: make(map[string]timebank.AccumulatedSummary),
	}
}

// WithTx serializes the function under the store lock. The nested view
// skips re-locking.
func (m *Memory) WithTx(_ context.Context, fn func(timebank.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &Memory{
		employees:    m.employees,
		shifts:       m.shifts,
		requests:     m.requests,
		entries:      m.entries,
		balances:     m.balances,
		summaries:    m.summaries,
		requestOrder: m.requestOrder,
		inTx:         true,
	}
	err := fn(tx)
	m.requestOrder = tx.requestOrder
	return err
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) rlock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) PutEmployee(_ context.Context, e timebank.Employee) error {
	defer m.lock()()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id string) (timebank.Employee, error) {
	defer m.rlock()()
	e, ok := m.employees[id]
	if !ok {
		return timebank.Employee{}, fmt.Errorf("employee %s: %w", id, timebank.ErrNotFound)
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]timebank.Employee, error) {
	defer m.rlock()()
	out := make([]timebank.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) PutShift(_ context.Context, s timebank.Shift) error {
	defer m.lock()()
	m.shifts[s.ID] = s
	return nil
}

func (m *Memory) GetShift(_ context.Context, id string) (timebank.Shift, error) {
	defer m.rlock()()
	s, ok := m.shifts[id]
	if !ok {
		return timebank.Shift{}, fmt.Errorf("shift %s: %w", id, timebank.ErrNotFound)
	}
	return s, nil
}

func (m *Memory) ListShifts(_ context.Context, employeeID string) ([]timebank.Shift, error) {
	defer m.rlock()()
	var out []timebank.Shift
	for _, s := range m.shifts {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) UpdateShiftCompensation(_ context.Context, shiftID string, state timebank.CompensationState, bankedMinutes int) error {
	defer m.lock()()
	s, ok := m.shifts[shiftID]
	if !ok {
		return fmt.Errorf("shift %s: %w", shiftID, timebank.ErrNotFound)
	}
	s.Compensation = state
	s.BankedMinutes = bankedMinutes
	m.shifts[shiftID] = s
	return nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) PutRequest(_ context.Context, r timebank.Request) error {
	defer m.lock()()
	if _, exists := m.requests[r.ID]; !exists {
		m.requestOrder = append(m.requestOrder, r.ID)
	}
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id string) (timebank.Request, error) {
	defer m.rlock()()
	r, ok := m.requests[id]
	if !ok {
		return timebank.Request{}, fmt.Errorf("request %s: %w", id, timebank.ErrNotFound)
	}
	return r, nil
}

func (m *Memory) ListRequests(_ context.Context, employeeID string, state timebank.RequestState) ([]timebank.Request, error) {
	defer m.rlock()()
	var out []timebank.Request
	for _, id := range m.requestOrder {
		r := m.requests[id]
		if r.EmployeeID != employeeID {
			continue
		}
		if state != "" && r.State != state {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) UpdateRequestState(_ context.Context, id string, state timebank.RequestState, resolvedBy string) error {
	defer m.lock()()
	r, ok := m.requests[id]
	if !ok {
		return fmt.Errorf("request %s: %w", id, timebank.ErrNotFound)
	}
	r.State = state
	r.ResolvedBy = resolvedBy
	m.requests[id] = r
	return nil
}

// =============================================================================
// LEDGER - append only
// =============================================================================

func (m *Memory) AppendEntry(_ context.Context, e timebank.LedgerEntry) error {
	defer m.lock()()
	m.entries[e.EmployeeID] = append(m.entries[e.EmployeeID], e)
	return nil
}

func (m *Memory) ListEntries(_ context.Context, employeeID string) ([]timebank.LedgerEntry, error) {
	defer m.rlock()()
	src := m.entries[employeeID]
	out := make([]timebank.LedgerEntry, len(src))
	copy(out, src)
	return out, nil
}

// =============================================================================
// PROJECTIONS
// =============================================================================

func (m *Memory) GetBalance(_ context.Context, employeeID string) (timebank.EmployeeBalance, error) {
	defer m.rlock()()
	b, ok := m.balances[employeeID]
	if !ok {
		return timebank.EmployeeBalance{EmployeeID: employeeID}, nil
	}
	return b, nil
}

func (m *Memory) PutBalance(_ context.Context, b timebank.EmployeeBalance) error {
	defer m.lock()()
	m.balances[b.EmployeeID] = b
	return nil
}

func (m *Memory) GetSummary(_ context.Context, employeeID string) (timebank.AccumulatedSummary, error) {
	defer m.rlock()()
	s, ok := m.summaries[employeeID]
	if !ok {
		return timebank.AccumulatedSummary{EmployeeID: employeeID}, nil
	}
	return s, nil
}

func (m *Memory) PutSummary(_ context.Context, s timebank.AccumulatedSummary) error {
	defer m.lock()()
	m.summaries[s.EmployeeID] = s
	return nil
}

var _ timebank.TxStore = (*Memory)(nil)
