/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract,
  allowing field renaming and version evolution without breaking
  clients.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: Schedule config JSON shapes
*/
package api

import (
	"github.com/turno/payroll-engine/surcharge"
	"github.com/turno/payroll-engine/timebank"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Area       string `json:"area"`
	Role       string `json:"role"`
	HourlyRate string `json:"hourly_rate"`
	CreatedAt  string `json:"created_at"`
}

// CreateEmployeeRequest is the body for POST /api/employees.
type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Area       string `json:"area"`
	Role       string `json:"role"`
	HourlyRate string `json:"hourly_rate"`
}

// =============================================================================
// SHIFTS
// =============================================================================

// WorkedIntervalJSON is one worked interval in clock notation.
type WorkedIntervalJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RegisterShiftRequest is the body for POST /api/shifts. Worked
// intervals and the optional arrival use HH:MM clock strings;
// "24:00" is accepted as an end bound.
type RegisterShiftRequest struct {
	EmployeeID string               `json:"employee_id"`
	Date       string               `json:"date"` // YYYY-MM-DD
	Holiday    bool                 `json:"holiday"`
	Worked     []WorkedIntervalJSON `json:"worked"`
	Arrival    string               `json:"arrival,omitempty"`
}

// ShiftDTO represents a registered shift in API responses.
type ShiftDTO struct {
	ID            string               `json:"id"`
	EmployeeID    string               `json:"employee_id"`
	Date          string               `json:"date"`
	Area          string               `json:"area"`
	Holiday       bool                 `json:"holiday"`
	Worked        []WorkedIntervalJSON `json:"worked"`
	Breakdown     surcharge.Breakdown  `json:"breakdown"`
	TotalMinutes  int                  `json:"total_surcharge_minutes"`
	MissedMinutes int                  `json:"missed_minutes"`
	Compensation  string               `json:"compensation"`
	BankedMinutes int                  `json:"banked_minutes"`
	Value         string               `json:"surcharge_value"`
}

// =============================================================================
// TIME BANK
// =============================================================================

// AccrualRequestBody is the body for POST /api/shifts/{id}/requests.
type AccrualRequestBody struct {
	Minutes int    `json:"minutes"`
	ActorID string `json:"actor_id"`
}

// ResolveRequestBody is the body for approve/reject endpoints.
type ResolveRequestBody struct {
	ActorID string `json:"actor_id"`
}

// RedemptionRequestBody covers both deferred redemption requests and
// immediate redemptions.
type RedemptionRequestBody struct {
	Minutes int    `json:"minutes"`
	ActorID string `json:"actor_id"`
	Note    string `json:"note,omitempty"`
}

// AdjustmentRequest is the body for POST /api/admin/adjustments.
type AdjustmentRequest struct {
	EmployeeID string `json:"employee_id"`
	Delta      int    `json:"delta"`
	Note       string `json:"note"`
	ActorID    string `json:"actor_id"`
}

// EntryDTO represents one ledger movement in API responses.
type EntryDTO struct {
	ID               string `json:"id"`
	Timestamp        string `json:"timestamp"`
	Movement         string `json:"movement"`
	MinutesDelta     int    `json:"minutes_delta"`
	ResultingBalance int    `json:"resulting_balance"`
	ReferenceID      string `json:"reference_id,omitempty"`
	Note             string `json:"note,omitempty"`
	Actor            string `json:"actor,omitempty"`
}

// RequestDTO represents one accrual/redemption request.
type RequestDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Kind       string `json:"kind"`
	ShiftID    string `json:"shift_id,omitempty"`
	Minutes    int    `json:"minutes"`
	State      string `json:"state"`
	CreatedAt  string `json:"created_at"`
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// BalanceDTO is the bag-of-hours view: stored total, live pending
// reservation, derived availability, full history and open requests.
type BalanceDTO struct {
	EmployeeID       string       `json:"employee_id"`
	BankedMinutes    int          `json:"saldo_total"`
	PendingMinutes   int          `json:"saldo_pendiente"`
	AvailableMinutes int          `json:"saldo_disponible"`
	History          []EntryDTO   `json:"historial"`
	Requests         []RequestDTO `json:"solicitudes"`
}

// SummaryDTO is the accumulated per-category view with valuation at
// the employee's current rate.
type SummaryDTO struct {
	EmployeeID   string              `json:"employee_id"`
	Totals       surcharge.Breakdown `json:"totals"`
	TotalMinutes int                 `json:"total_minutes"`
	Values       map[string]string   `json:"values"`
	TotalValue   string              `json:"total_value"`
}

// =============================================================================
// ADMIN / CONFIG
// =============================================================================

// NightWindowRequest is the body for PUT /api/admin/night-window.
type NightWindowRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ConsistencyDTO reports the outcome of a ledger audit.
type ConsistencyDTO struct {
	EmployeeID string `json:"employee_id"`
	Consistent bool   `json:"consistent"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEntryDTOs(entries []timebank.LedgerEntry) []EntryDTO {
	out := make([]EntryDTO, len(entries))
	for i, e := range entries {
		out[i] = toEntryDTO(e)
	}
	return out
}

func toEntryDTO(e timebank.LedgerEntry) EntryDTO {
	return EntryDTO{
		ID:               e.ID,
		Timestamp:        e.Timestamp.Format(timestampLayout),
		Movement:         string(e.Movement),
		MinutesDelta:     e.MinutesDelta,
		ResultingBalance: e.ResultingBalance,
		ReferenceID:      e.ReferenceID,
		Note:             e.Note,
		Actor:            e.Actor,
	}
}

func toRequestDTOs(reqs []timebank.Request) []RequestDTO {
	out := make([]RequestDTO, len(reqs))
	for i, r := range reqs {
		out[i] = toRequestDTO(r)
	}
	return out
}

func toRequestDTO(r timebank.Request) RequestDTO {
	return RequestDTO{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Kind:       string(r.Kind),
		ShiftID:    r.ShiftID,
		Minutes:    r.Minutes,
		State:      string(r.State),
		CreatedAt:  r.CreatedAt.Format(timestampLayout),
		ResolvedBy: r.ResolvedBy,
	}
}
