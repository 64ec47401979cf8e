/*
Package timebank maintains the per-employee bank of compensable
minutes: an append-only ledger, a running balance, and per-category
accumulated totals for payroll reporting.

KEY CONCEPTS IN THIS FILE (types.go):
  - LedgerEntry:        immutable audit row; stores the balance that
                        resulted from it, making the ledger self-auditing
  - EmployeeBalance:    banked minutes projection, mutated only through
                        ledger operations
  - AccumulatedSummary: per-category uncompensated minutes
  - Shift:              one recorded work-day with its breakdown and a
                        compensation state machine
  - Request:            accrual or redemption request lifecycle

DESIGN PRINCIPLES:
  1. Append-only: ledger entries are never updated or deleted
  2. Self-auditing: entry[i].ResultingBalance ==
     entry[i-1].ResultingBalance + entry[i].MinutesDelta
  3. Replayable: the balance projection must always be derivable by
     replaying the ledger from zero
  4. Snapshots: a shift captures the hourly rate at registration; later
     rate changes never alter historical shifts

SEE ALSO:
  - bank.go:   the operations mutating this state
  - replay.go: replay and consistency checking
  - store.go:  persistence interfaces
*/
package timebank

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/surcharge"
)

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

// MovementType labels a ledger entry. Values are the persisted keys.
type MovementType string

const (
	// MovementSolicitud records accrual intent. Zero delta: balance
	// changes only on approval.
	MovementSolicitud MovementType = "SOLICITUD"
	// MovementAprobacion funds an approved accrual request.
	MovementAprobacion MovementType = "APROBACION"
	// MovementRedencion converts banked minutes into paid time off.
	MovementRedencion MovementType = "REDENCION"
	// MovementAjuste is a manual administrative correction.
	MovementAjuste MovementType = "AJUSTE"
)

// LedgerEntry is one immutable row of the audit trail.
type LedgerEntry struct {
	ID         string       `json:"id"`
	EmployeeID string       `json:"employee_id"`
	Timestamp  time.Time    `json:"timestamp"`
	Movement   MovementType `json:"movement"`

	// MinutesDelta is the signed balance change; zero for SOLICITUD.
	MinutesDelta int `json:"minutes_delta"`

	// ResultingBalance is the banked total immediately after this
	// entry. Each entry must equal the previous entry's balance plus
	// its own delta.
	ResultingBalance int `json:"resulting_balance"`

	// ReferenceID links back to the request or shift that caused the
	// movement.
	ReferenceID string `json:"reference_id"`
	Note        string `json:"note"`
	Actor       string `json:"actor"`
}

// =============================================================================
// BALANCE AND SUMMARY PROJECTIONS
// =============================================================================

// EmployeeBalance is the banked-minutes projection. Pending minutes
// are deliberately not stored here: they are recomputed on read from
// live requests.
type EmployeeBalance struct {
	EmployeeID    string    `json:"employee_id"`
	BankedMinutes int       `json:"banked_minutes"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AccumulatedSummary tracks per-category uncompensated minutes for
// payroll reporting. Updated by ReconcileShift only.
type AccumulatedSummary struct {
	EmployeeID string              `json:"employee_id"`
	Totals     surcharge.Breakdown `json:"totals"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// BalanceView is the read model exposed to reporting: stored banked
// total, live pending sum, derived availability, and full history.
type BalanceView struct {
	EmployeeID       string        `json:"employee_id"`
	BankedMinutes    int           `json:"saldo_total"`
	PendingMinutes   int           `json:"saldo_pendiente"`
	AvailableMinutes int           `json:"saldo_disponible"`
	History          []LedgerEntry `json:"historial"`
	Requests         []Request     `json:"solicitudes"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type Role string

const (
	RoleEmpleado    Role = "empleado"
	RoleCoordinador Role = "coordinador"
	RoleAdmin       Role = "admin"
)

type Employee struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Area schedule.Area `json:"area"`
	Role Role          `json:"role"`

	// HourlyRate is the current rate; shifts snapshot it at creation.
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CanApprove reports whether e has management capability over target:
// admins everywhere, coordinators within their own area. Nobody
// approves their own requests.
func (e Employee) CanApprove(target Employee) bool {
	if e.ID == target.ID {
		return false
	}
	switch e.Role {
	case RoleAdmin:
		return true
	case RoleCoordinador:
		return e.Area == target.Area
	}
	return false
}

// =============================================================================
// SHIFTS AND THEIR COMPENSATION STATE MACHINE
// =============================================================================

// CompensationState tracks the accrual-request lifecycle of a shift:
// NINGUNO -> SOLICITADO -> {APROBADO, RECHAZADO}; RECHAZADO may be
// re-requested; APROBADO is terminal.
type CompensationState string

const (
	CompNinguno    CompensationState = "NINGUNO"
	CompSolicitado CompensationState = "SOLICITADO"
	CompAprobado   CompensationState = "APROBADO"
	CompRechazado  CompensationState = "RECHAZADO"
)

// CanRequest reports whether a new accrual request may be opened.
func (s CompensationState) CanRequest() bool {
	return s == CompNinguno || s == CompRechazado
}

// CanTransition reports whether the state machine allows the move.
func (s CompensationState) CanTransition(to CompensationState) bool {
	switch s {
	case CompNinguno, CompRechazado:
		return to == CompSolicitado
	case CompSolicitado:
		return to == CompAprobado || to == CompRechazado
	}
	return false
}

// Shift is one employee's recorded work-day. Immutable after creation
// except for the compensation state and the banked denormalization.
type Shift struct {
	ID         string              `json:"id"`
	EmployeeID string              `json:"employee_id"`
	Date       time.Time           `json:"date"`
	Area       schedule.Area       `json:"area"`
	Holiday    bool                `json:"holiday"`
	Worked     []schedule.Interval `json:"worked"`

	Breakdown     surcharge.Breakdown `json:"breakdown"`
	MissedMinutes int                 `json:"missed_minutes"`

	// HourlyRate is the pay-rate snapshot captured at registration.
	HourlyRate decimal.Decimal `json:"hourly_rate"`

	Compensation CompensationState `json:"compensation"`

	// BankedMinutes mirrors the total approved for this shift. The
	// ledger is the source of truth; this column exists for the shift
	// list screens and is validated by the consistency check, never
	// trusted by it.
	BankedMinutes int `json:"banked_minutes"`

	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type RequestKind string

const (
	KindAcumulacion RequestKind = "ACUMULACION"
	KindRedencion   RequestKind = "REDENCION"
)

type RequestState string

const (
	RequestPendiente RequestState = "PENDIENTE"
	RequestAprobado  RequestState = "APROBADO"
	RequestRechazado RequestState = "RECHAZADO"
)

// Request is one accrual or redemption request. Accrual requests
// reference the shift they bank; redemption requests reserve balance
// until resolved.
type Request struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employee_id"`
	Kind       RequestKind `json:"kind"`

	// ShiftID is set for accrual requests only.
	ShiftID string `json:"shift_id,omitempty"`

	Minutes int          `json:"minutes"`
	State   RequestState `json:"state"`
	Note    string       `json:"note"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
