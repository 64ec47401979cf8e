/*
store.go - Persistence interfaces for the time-bank

PURPOSE:
  Defines the boundary between the ledger logic and the database. The
  ledger table is append-only: AppendEntry is the only write, there is
  no update or delete, and corrections happen through AJUSTE entries.

ORDERING CONTRACT:
  ListEntries returns entries in append order (insertion sequence, not
  wall-clock timestamps). The resulting-balance chain invariant and the
  replay property are defined over this order; two entries written in
  the same millisecond must still come back in the order they were
  committed.

TRANSACTIONS:
  TxStore.WithTx runs a function against a transactional view. Every
  balance-mutating operation (approve, redeem, adjust) reads the
  balance, validates, writes the new balance and appends the entry
  inside one WithTx call, so concurrent mutations of the same employee
  serialize instead of lost-updating.

IMPLEMENTATIONS:
  - timebank/store: in-memory, for tests
  - store/sqlite:   production SQLite

SEE ALSO:
  - bank.go: the only caller of the mutating methods
*/
package timebank

import "context"

// Store persists employees, shifts, requests, ledger entries, balances
// and summaries. Ledger entries are append-only.
type Store interface {
	// Employees
	PutEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)

	// Shifts
	PutShift(ctx context.Context, s Shift) error
	GetShift(ctx context.Context, id string) (Shift, error)
	ListShifts(ctx context.Context, employeeID string) ([]Shift, error)
	// UpdateShiftCompensation moves the state machine and refreshes the
	// banked denormalization. It never touches the worked intervals,
	// breakdown or rate snapshot.
	UpdateShiftCompensation(ctx context.Context, shiftID string, state CompensationState, bankedMinutes int) error

	// Requests
	PutRequest(ctx context.Context, r Request) error
	GetRequest(ctx context.Context, id string) (Request, error)
	// ListRequests filters by state; empty state means all.
	ListRequests(ctx context.Context, employeeID string, state RequestState) ([]Request, error)
	UpdateRequestState(ctx context.Context, id string, state RequestState, resolvedBy string) error

	// Ledger (append-only; entries come back in append order)
	AppendEntry(ctx context.Context, e LedgerEntry) error
	ListEntries(ctx context.Context, employeeID string) ([]LedgerEntry, error)

	// Balance projection. GetBalance returns a zero balance, not an
	// error, for employees with no ledger activity yet.
	GetBalance(ctx context.Context, employeeID string) (EmployeeBalance, error)
	PutBalance(ctx context.Context, b EmployeeBalance) error

	// Accumulated summary projection. Same zero-value semantics.
	GetSummary(ctx context.Context, employeeID string) (AccumulatedSummary, error)
	PutSummary(ctx context.Context, s AccumulatedSummary) error
}

// TxStore extends Store with atomic multi-write transactions.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional view. fn returning an
	// error rolls the transaction back; nil commits. A commit-time
	// conflict surfaces as ErrConflict and is safe to retry.
	WithTx(ctx context.Context, fn func(Store) error) error
}
