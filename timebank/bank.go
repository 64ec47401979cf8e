/*
bank.go - Time-bank operations

PURPOSE:
  Bank is the stateful component over EmployeeBalance + the append-only
  ledger + the accumulated summary. Every balance-affecting operation
  appends exactly one entry whose ResultingBalance equals the previous
  balance plus that entry's delta.

OPERATIONS:
  RequestAccrual    record intent to bank a shift's minutes (no balance
                    change; funded on approval)
  ApproveRequest    fund an accrual / execute a redemption request
  RejectRequest     close a request; accrual shifts become re-requestable
  RequestRedemption reserve banked minutes pending approval
  Redeem            convert banked minutes into paid time off
  Adjust            manual admin correction
  ReconcileShift    roll a shift's uncompensated minutes into the
                    per-category summary
  GetBalance        read model: banked/pending/available + history

CONCURRENCY:
  Operations on the same employee serialize through a per-employee
  lock, and each mutation runs its read-validate-write inside one store
  transaction. Two concurrent approvals for the same employee therefore
  never read the same stale balance. Cross-employee operations proceed
  fully in parallel. There is no cancellation concept; operations are
  short synchronous transactions and a commit-time Conflict from the
  store is safe to retry.

SEE ALSO:
  - types.go:  data model and state machine
  - replay.go: consistency checking over what this file writes
*/
package timebank

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turno/payroll-engine/surcharge"
)

// Bank is the time-bank service. Safe for concurrent use.
type Bank struct {
	store TxStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBank creates a Bank over the given store.
func NewBank(store TxStore) *Bank {
	return &Bank{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockEmployee serializes balance mutations per employee. Returns the
// unlock function.
func (b *Bank) lockEmployee(employeeID string) func() {
	b.mu.Lock()
	l, ok := b.locks[employeeID]
	if !ok {
		l = &sync.Mutex{}
		b.locks[employeeID] = l
	}
	b.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// =============================================================================
// ACCRUAL REQUESTS
// =============================================================================

// RequestAccrual records the intent to bank minutes for a shift.
//
// Preconditions: the shift exists, the actor owns it, and its
// compensation state allows a new request (NINGUNO or RECHAZADO).
// The balance is untouched: the zero-delta SOLICITUD entry records
// intent, not funding.
func (b *Bank) RequestAccrual(ctx context.Context, shiftID string, minutes int, actor string) (LedgerEntry, error) {
	if minutes <= 0 {
		return LedgerEntry{}, fmt.Errorf("requested minutes must be positive, got %d", minutes)
	}
	shift, err := b.store.GetShift(ctx, shiftID)
	if err != nil {
		return LedgerEntry{}, err
	}
	if shift.EmployeeID != actor {
		return LedgerEntry{}, fmt.Errorf("%w: actor %s does not own shift %s", ErrForbidden, actor, shiftID)
	}
	if minutes > shift.Breakdown.Total() {
		return LedgerEntry{}, fmt.Errorf("requested %d min exceeds the shift's %d surcharged minutes",
			minutes, shift.Breakdown.Total())
	}

	unlock := b.lockEmployee(shift.EmployeeID)
	defer unlock()

	var entry LedgerEntry
	err = b.store.WithTx(ctx, func(s Store) error {
		fresh, err := s.GetShift(ctx, shiftID)
		if err != nil {
			return err
		}
		if !fresh.Compensation.CanRequest() {
			return fmt.Errorf("%w: shift %s is %s", ErrDuplicateRequest, shiftID, fresh.Compensation)
		}

		now := time.Now().UTC()
		req := Request{
			ID:         uuid.NewString(),
			EmployeeID: fresh.EmployeeID,
			Kind:       KindAcumulacion,
			ShiftID:    shiftID,
			Minutes:    minutes,
			State:      RequestPendiente,
			CreatedAt:  now,
		}
		if err := s.PutRequest(ctx, req); err != nil {
			return err
		}
		if err := s.UpdateShiftCompensation(ctx, shiftID, CompSolicitado, fresh.BankedMinutes); err != nil {
			return err
		}

		bal, err := s.GetBalance(ctx, fresh.EmployeeID)
		if err != nil {
			return err
		}
		entry = LedgerEntry{
			ID:               uuid.NewString(),
			EmployeeID:       fresh.EmployeeID,
			Timestamp:        now,
			Movement:         MovementSolicitud,
			MinutesDelta:     0,
			ResultingBalance: bal.BankedMinutes,
			ReferenceID:      req.ID,
			Note:             fmt.Sprintf("solicitud de acumulacion: %d min (jornada %s)", minutes, shiftID),
			Actor:            actor,
		}
		return s.AppendEntry(ctx, entry)
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

// ApproveRequest resolves a pending request. Accrual requests fund the
// balance; redemption requests consume it. The read-modify-write and
// the entry append run in one transaction keyed on the employee.
func (b *Bank) ApproveRequest(ctx context.Context, requestID, approverID string) (LedgerEntry, error) {
	req, err := b.store.GetRequest(ctx, requestID)
	if err != nil {
		return LedgerEntry{}, err
	}
	if err := b.checkApprover(ctx, approverID, req.EmployeeID); err != nil {
		return LedgerEntry{}, err
	}

	unlock := b.lockEmployee(req.EmployeeID)
	defer unlock()

	var entry LedgerEntry
	err = b.store.WithTx(ctx, func(s Store) error {
		fresh, err := s.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if fresh.State != RequestPendiente {
			return fmt.Errorf("%w: request %s already %s", ErrConflict, requestID, fresh.State)
		}

		bal, err := s.GetBalance(ctx, fresh.EmployeeID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()

		switch fresh.Kind {
		case KindAcumulacion:
			shift, err := s.GetShift(ctx, fresh.ShiftID)
			if err != nil {
				return err
			}
			newBalance := bal.BankedMinutes + fresh.Minutes
			entry = LedgerEntry{
				ID:               uuid.NewString(),
				EmployeeID:       fresh.EmployeeID,
				Timestamp:        now,
				Movement:         MovementAprobacion,
				MinutesDelta:     fresh.Minutes,
				ResultingBalance: newBalance,
				ReferenceID:      fresh.ID,
				Note:             fmt.Sprintf("aprobacion de %d min (jornada %s)", fresh.Minutes, fresh.ShiftID),
				Actor:            approverID,
			}
			if err := s.UpdateShiftCompensation(ctx, fresh.ShiftID, CompAprobado, shift.BankedMinutes+fresh.Minutes); err != nil {
				return err
			}
			bal.BankedMinutes = newBalance

		case KindRedencion:
			available, err := availableMinutes(ctx, s, fresh.EmployeeID, bal.BankedMinutes, fresh.ID)
			if err != nil {
				return err
			}
			if fresh.Minutes > available {
				return &InsufficientBalanceError{
					EmployeeID: fresh.EmployeeID,
					Available:  available,
					Requested:  fresh.Minutes,
				}
			}
			newBalance := bal.BankedMinutes - fresh.Minutes
			entry = LedgerEntry{
				ID:               uuid.NewString(),
				EmployeeID:       fresh.EmployeeID,
				Timestamp:        now,
				Movement:         MovementRedencion,
				MinutesDelta:     -fresh.Minutes,
				ResultingBalance: newBalance,
				ReferenceID:      fresh.ID,
				Note:             fmt.Sprintf("redencion aprobada: %d min", fresh.Minutes),
				Actor:            approverID,
			}
			bal.BankedMinutes = newBalance

		default:
			return fmt.Errorf("unknown request kind %q", fresh.Kind)
		}

		if err := s.UpdateRequestState(ctx, requestID, RequestAprobado, approverID); err != nil {
			return err
		}
		bal.EmployeeID = fresh.EmployeeID
		bal.UpdatedAt = now
		if err := s.PutBalance(ctx, bal); err != nil {
			return err
		}
		return s.AppendEntry(ctx, entry)
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

// RejectRequest closes a pending request without touching the balance.
// No ledger entry is written; rejection is visible only on the request
// and, for accruals, on the shift's compensation state, which returns
// to RECHAZADO and may be re-requested.
func (b *Bank) RejectRequest(ctx context.Context, requestID, approverID string) error {
	req, err := b.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := b.checkApprover(ctx, approverID, req.EmployeeID); err != nil {
		return err
	}

	unlock := b.lockEmployee(req.EmployeeID)
	defer unlock()

	return b.store.WithTx(ctx, func(s Store) error {
		fresh, err := s.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if fresh.State != RequestPendiente {
			return fmt.Errorf("%w: request %s already %s", ErrConflict, requestID, fresh.State)
		}
		if err := s.UpdateRequestState(ctx, requestID, RequestRechazado, approverID); err != nil {
			return err
		}
		if fresh.Kind == KindAcumulacion {
			shift, err := s.GetShift(ctx, fresh.ShiftID)
			if err != nil {
				return err
			}
			return s.UpdateShiftCompensation(ctx, fresh.ShiftID, CompRechazado, shift.BankedMinutes)
		}
		return nil
	})
}

// =============================================================================
// REDEMPTION
// =============================================================================

// RequestRedemption opens a pending redemption request, reserving the
// minutes against availability until a manager resolves it.
func (b *Bank) RequestRedemption(ctx context.Context, employeeID string, minutes int, actor string) (Request, error) {
	if minutes <= 0 {
		return Request{}, fmt.Errorf("requested minutes must be positive, got %d", minutes)
	}
	if _, err := b.store.GetEmployee(ctx, employeeID); err != nil {
		return Request{}, err
	}
	if actor != employeeID {
		return Request{}, fmt.Errorf("%w: redemption requests are filed by the employee", ErrForbidden)
	}

	unlock := b.lockEmployee(employeeID)
	defer unlock()

	var req Request
	err := b.store.WithTx(ctx, func(s Store) error {
		bal, err := s.GetBalance(ctx, employeeID)
		if err != nil {
			return err
		}
		available, err := availableMinutes(ctx, s, employeeID, bal.BankedMinutes, "")
		if err != nil {
			return err
		}
		if minutes > available {
			return &InsufficientBalanceError{EmployeeID: employeeID, Available: available, Requested: minutes}
		}
		req = Request{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			Kind:       KindRedencion,
			Minutes:    minutes,
			State:      RequestPendiente,
			CreatedAt:  time.Now().UTC(),
		}
		return s.PutRequest(ctx, req)
	})
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// Redeem immediately converts banked minutes into paid time off. The
// actor must be the employee or someone with management capability
// over them. Fails with InsufficientBalance when minutes exceed the
// available amount (banked minus pending redemption requests).
func (b *Bank) Redeem(ctx context.Context, employeeID string, minutes int, actor string) (LedgerEntry, error) {
	if minutes <= 0 {
		return LedgerEntry{}, fmt.Errorf("redeemed minutes must be positive, got %d", minutes)
	}
	employee, err := b.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return LedgerEntry{}, err
	}
	if actor != employeeID {
		approver, err := b.store.GetEmployee(ctx, actor)
		if err != nil {
			return LedgerEntry{}, err
		}
		if !approver.CanApprove(employee) {
			return LedgerEntry{}, fmt.Errorf("%w: %s cannot redeem for %s", ErrForbidden, actor, employeeID)
		}
	}

	unlock := b.lockEmployee(employeeID)
	defer unlock()

	var entry LedgerEntry
	err = b.store.WithTx(ctx, func(s Store) error {
		bal, err := s.GetBalance(ctx, employeeID)
		if err != nil {
			return err
		}
		available, err := availableMinutes(ctx, s, employeeID, bal.BankedMinutes, "")
		if err != nil {
			return err
		}
		if minutes > available {
			return &InsufficientBalanceError{EmployeeID: employeeID, Available: available, Requested: minutes}
		}

		now := time.Now().UTC()
		bal.EmployeeID = employeeID
		bal.BankedMinutes -= minutes
		bal.UpdatedAt = now
		entry = LedgerEntry{
			ID:               uuid.NewString(),
			EmployeeID:       employeeID,
			Timestamp:        now,
			Movement:         MovementRedencion,
			MinutesDelta:     -minutes,
			ResultingBalance: bal.BankedMinutes,
			Note:             fmt.Sprintf("redencion directa: %d min", minutes),
			Actor:            actor,
		}
		if err := s.PutBalance(ctx, bal); err != nil {
			return err
		}
		return s.AppendEntry(ctx, entry)
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

// Adjust applies a signed manual correction. Admin only; the balance
// may not go negative.
func (b *Bank) Adjust(ctx context.Context, employeeID string, delta int, note, actor string) (LedgerEntry, error) {
	if delta == 0 {
		return LedgerEntry{}, fmt.Errorf("adjustment delta must be non-zero")
	}
	if _, err := b.store.GetEmployee(ctx, employeeID); err != nil {
		return LedgerEntry{}, err
	}
	admin, err := b.store.GetEmployee(ctx, actor)
	if err != nil {
		return LedgerEntry{}, err
	}
	if admin.Role != RoleAdmin {
		return LedgerEntry{}, fmt.Errorf("%w: manual adjustments require the admin role", ErrForbidden)
	}

	unlock := b.lockEmployee(employeeID)
	defer unlock()

	var entry LedgerEntry
	err = b.store.WithTx(ctx, func(s Store) error {
		bal, err := s.GetBalance(ctx, employeeID)
		if err != nil {
			return err
		}
		newBalance := bal.BankedMinutes + delta
		if newBalance < 0 {
			return &InsufficientBalanceError{EmployeeID: employeeID, Available: bal.BankedMinutes, Requested: -delta}
		}
		now := time.Now().UTC()
		bal.EmployeeID = employeeID
		bal.BankedMinutes = newBalance
		bal.UpdatedAt = now
		entry = LedgerEntry{
			ID:               uuid.NewString(),
			EmployeeID:       employeeID,
			Timestamp:        now,
			Movement:         MovementAjuste,
			MinutesDelta:     delta,
			ResultingBalance: newBalance,
			Note:             note,
			Actor:            actor,
		}
		if err := s.PutBalance(ctx, bal); err != nil {
			return err
		}
		return s.AppendEntry(ctx, entry)
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// ReconcileShift rolls a shift's uncompensated minutes into the
// per-category accumulated summary: net = max(0, breakdown - banked)
// per category.
//
// Call once per shift after classification. The operation is idempotent
// only when alreadyBanked is the true cumulative banked breakdown at
// call time; calling twice with a stale alreadyBanked double-counts.
// That contract is the caller's to honor, it is not guarded here.
func (b *Bank) ReconcileShift(ctx context.Context, shiftID string, breakdown, alreadyBanked surcharge.Breakdown) error {
	shift, err := b.store.GetShift(ctx, shiftID)
	if err != nil {
		return err
	}
	net := breakdown.NetAgainst(alreadyBanked)

	unlock := b.lockEmployee(shift.EmployeeID)
	defer unlock()

	return b.store.WithTx(ctx, func(s Store) error {
		summary, err := s.GetSummary(ctx, shift.EmployeeID)
		if err != nil {
			return err
		}
		summary.EmployeeID = shift.EmployeeID
		summary.Totals = summary.Totals.Add(net)
		summary.UpdatedAt = time.Now().UTC()
		return s.PutSummary(ctx, summary)
	})
}

// =============================================================================
// READS
// =============================================================================

// GetBalance returns the reporting read model. PendingMinutes is
// recomputed on read as the live sum of outstanding redemption
// requests, never stored denormalized.
func (b *Bank) GetBalance(ctx context.Context, employeeID string) (BalanceView, error) {
	if _, err := b.store.GetEmployee(ctx, employeeID); err != nil {
		return BalanceView{}, err
	}
	bal, err := b.store.GetBalance(ctx, employeeID)
	if err != nil {
		return BalanceView{}, err
	}
	pending, err := pendingRedemptionMinutes(ctx, b.store, employeeID, "")
	if err != nil {
		return BalanceView{}, err
	}
	history, err := b.store.ListEntries(ctx, employeeID)
	if err != nil {
		return BalanceView{}, err
	}
	requests, err := b.store.ListRequests(ctx, employeeID, "")
	if err != nil {
		return BalanceView{}, err
	}
	return BalanceView{
		EmployeeID:       employeeID,
		BankedMinutes:    bal.BankedMinutes,
		PendingMinutes:   pending,
		AvailableMinutes: bal.BankedMinutes - pending,
		History:          history,
		Requests:         requests,
	}, nil
}

// Summary returns the per-category accumulated totals.
func (b *Bank) Summary(ctx context.Context, employeeID string) (AccumulatedSummary, error) {
	if _, err := b.store.GetEmployee(ctx, employeeID); err != nil {
		return AccumulatedSummary{}, err
	}
	return b.store.GetSummary(ctx, employeeID)
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

func (b *Bank) checkApprover(ctx context.Context, approverID, employeeID string) error {
	employee, err := b.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	approver, err := b.store.GetEmployee(ctx, approverID)
	if err != nil {
		return err
	}
	if !approver.CanApprove(employee) {
		return fmt.Errorf("%w: %s lacks management capability over %s", ErrForbidden, approverID, employeeID)
	}
	return nil
}

// availableMinutes is banked minus pending redemption reservations.
// exclude skips one request ID, used when approving that very request.
func availableMinutes(ctx context.Context, s Store, employeeID string, banked int, exclude string) (int, error) {
	pending, err := pendingRedemptionMinutes(ctx, s, employeeID, exclude)
	if err != nil {
		return 0, err
	}
	return banked - pending, nil
}

func pendingRedemptionMinutes(ctx context.Context, s Store, employeeID, exclude string) (int, error) {
	reqs, err := s.ListRequests(ctx, employeeID, RequestPendiente)
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, r := range reqs {
		if r.Kind == KindRedencion && r.ID != exclude {
			sum += r.Minutes
		}
	}
	return sum, nil
}
