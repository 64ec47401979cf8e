/*
errors.go - Centralized error types for the time-bank

PURPOSE:
  All ledger error types in one place. One sentinel per taxonomy entry,
  matched with errors.Is; structured errors carry the details and
  unwrap to their sentinel.

  The remaining taxonomy entry, ErrInvalidInterval, lives in the
  schedule package next to the interval types it guards.

RETRY SEMANTICS:
  Conflict is the only retryable failure: the operation is re-validated
  against fresh state on retry. InsufficientBalance, Forbidden,
  NotFound and DuplicateRequest are terminal and must reach the end
  user unchanged.

SEE ALSO:
  - bank.go: the operations returning these
*/
package timebank

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateRequest is returned when a shift already has a live
	// (solicitado or aprobado) accrual request.
	ErrDuplicateRequest = errors.New("duplicate accrual request")

	// ErrNotFound is returned for unknown shifts, employees or requests.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor lacks the required
	// relationship or role (not the shift owner, no management
	// capability over the area).
	ErrForbidden = errors.New("forbidden")

	// ErrInsufficientBalance is returned when a redemption exceeds the
	// available minutes.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConflict is returned when a concurrent mutation is detected on
	// commit. Safe to retry.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrLedgerInconsistent is returned by the consistency check when
	// an entry's stored balance does not equal the previous balance
	// plus its delta. Indicates a concurrency bug, never bad input.
	ErrLedgerInconsistent = errors.New("ledger inconsistent")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError details a balance shortage.
type InsufficientBalanceError struct {
	EmployeeID string
	Available  int
	Requested  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: available %d min, requested %d min",
		e.EmployeeID, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InconsistentLedgerError points at the first entry breaking the
// resulting-balance chain.
type InconsistentLedgerError struct {
	EmployeeID string
	EntryID    string
	Index      int
	Expected   int
	Got        int
}

func (e *InconsistentLedgerError) Error() string {
	return fmt.Sprintf("ledger inconsistent for %s at entry %d (%s): expected balance %d, stored %d",
		e.EmployeeID, e.Index, e.EntryID, e.Expected, e.Got)
}

func (e *InconsistentLedgerError) Unwrap() error { return ErrLedgerInconsistent }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable reports whether the operation might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsClientError reports whether the failure is due to invalid input or
// state, rather than a system fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInsufficientBalance)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
