/*
handlers.go - HTTP API handlers for the payroll surcharge engine

PURPOSE:
  Exposes shift registration, surcharge classification and the
  time-bank via REST. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                     List all employees
    POST   /api/employees                     Create employee
    GET    /api/employees/{id}                Get employee details
    GET    /api/employees/{id}/shifts         Shift history
    GET    /api/employees/{id}/bolsa          Bag-of-hours view
    GET    /api/employees/{id}/resumen        Accumulated summary + valuation
    GET    /api/employees/{id}/statement.pdf  PDF statement
    GET    /api/employees/{id}/consistency    Ledger audit
    POST   /api/employees/{id}/redemptions    Request deferred redemption
    POST   /api/employees/{id}/redeem         Immediate redemption

  Shifts:
    POST   /api/shifts                        Register + classify a shift
    GET    /api/shifts/{id}                   Get shift details
    POST   /api/shifts/{id}/requests          Request accrual to the bank

  Requests:
    POST   /api/requests/{id}/approve         Approve pending request
    POST   /api/requests/{id}/reject          Reject pending request

  Admin:
    POST   /api/admin/adjustments             Manual balance adjustment
    PUT    /api/admin/schedules/{area}        Update an area's schedule
    PUT    /api/admin/night-window            Update the night window

ERROR HANDLING:
  The domain error taxonomy maps onto HTTP status codes:
  - 400: invalid intervals, malformed bodies
  - 403: actor lacks capability (wrong area, self-approval)
  - 404: unknown employee/shift/request
  - 409: duplicate request, stale/concurrent resolution
  - 422: insufficient balance
  - 500: everything else

SECURITY NOTE:
  Actor identity arrives in the request body (actor_id). There is no
  authentication layer; an API gateway is expected in front.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - timebank/bank.go: The domain operations behind each endpoint
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/turno/payroll-engine/factory"
	"github.com/turno/payroll-engine/report"
	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/surcharge"
	"github.com/turno/payroll-engine/timebank"
)

const timestampLayout = time.RFC3339

// ConfigStore persists schedule configuration so the registry can be
// rebuilt on startup. The in-memory store used in tests does not
// implement it; a nil ConfigStore keeps config changes registry-only.
type ConfigStore interface {
	PutAreaSchedule(ctx context.Context, area schedule.Area, configJSON []byte) error
	PutNightWindow(ctx context.Context, nw schedule.NightWindow) error
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    timebank.TxStore
	Bank     *timebank.Bank
	Registry *schedule.Registry
	Config   ConfigStore // optional
}

// NewHandler creates a new handler.
func NewHandler(store timebank.TxStore, bank *timebank.Bank, registry *schedule.Registry) *Handler {
	return &Handler{Store: store, Bank: bank, Registry: registry}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	area := schedule.Area(req.Area)
	if _, ok := h.Registry.Schedule(area); !ok {
		writeError(w, http.StatusBadRequest, "Unknown area: "+req.Area, nil)
		return
	}
	role := timebank.Role(req.Role)
	switch role {
	case timebank.RoleEmpleado, timebank.RoleCoordinador, timebank.RoleAdmin:
	default:
		writeError(w, http.StatusBadRequest, "Unknown role: "+req.Role, nil)
		return
	}
	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil || rate.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid hourly_rate", err)
		return
	}

	emp := timebank.Employee{
		ID:         req.ID,
		Name:       req.Name,
		Area:       area,
		Role:       role,
		HourlyRate: rate,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.PutEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// RegisterShift classifies a worked day against the employee's area
// schedule, snapshots the rate, persists the shift, and folds the net
// surcharges into the accumulated summary.
func (h *Handler) RegisterShift(w http.ResponseWriter, r *http.Request) {
	var req RegisterShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	emp, err := h.Store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	worked := make([]schedule.Interval, 0, len(req.Worked))
	for _, wj := range req.Worked {
		iv, err := schedule.ParseInterval(wj.Start, wj.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid worked interval", err)
			return
		}
		worked = append(worked, iv)
	}

	sched, ok := h.Registry.Schedule(emp.Area)
	if !ok {
		writeError(w, http.StatusInternalServerError, "No schedule configured for area "+string(emp.Area), nil)
		return
	}
	nw := h.Registry.NightWindow()

	breakdown, err := surcharge.Classify(worked, sched, nw, req.Holiday)
	if err != nil {
		writeDomainError(w, "Failed to classify shift", err)
		return
	}

	missed := 0
	if req.Arrival != "" {
		arrival, err := schedule.ParseClock(req.Arrival)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid arrival time", err)
			return
		}
		missed, err = surcharge.MissedMinutes(sched, arrival)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to compute lateness", err)
			return
		}
	}

	shift := timebank.Shift{
		ID:            uuid.NewString(),
		EmployeeID:    emp.ID,
		Date:          date,
		Area:          emp.Area,
		Holiday:       req.Holiday,
		Worked:        worked,
		Breakdown:     breakdown,
		MissedMinutes: missed,
		HourlyRate:    emp.HourlyRate,
		Compensation:  timebank.CompNinguno,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Store.PutShift(ctx, shift); err != nil {
		writeDomainError(w, "Failed to save shift", err)
		return
	}
	if err := h.Bank.ReconcileShift(ctx, shift.ID, breakdown, surcharge.Breakdown{}); err != nil {
		writeDomainError(w, "Failed to update summary", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toShiftDTO(shift))
}

// GetShift returns a single shift.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Store.GetShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get shift", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toShiftDTO(shift))
}

// ListShifts returns all shifts for an employee.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Store.ListShifts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to list shifts", err)
		return
	}
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = h.toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TIME BANK HANDLERS
// =============================================================================

// RequestAccrual opens an accrual request for a shift's surcharged
// minutes.
func (h *Handler) RequestAccrual(w http.ResponseWriter, r *http.Request) {
	var body AccrualRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := h.Bank.RequestAccrual(r.Context(), chi.URLParam(r, "id"), body.Minutes, body.ActorID)
	if err != nil {
		writeDomainError(w, "Failed to request accrual", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// ApproveRequest approves a pending accrual or redemption request.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var body ResolveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := h.Bank.ApproveRequest(r.Context(), chi.URLParam(r, "id"), body.ActorID)
	if err != nil {
		writeDomainError(w, "Failed to approve request", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// RejectRequest rejects a pending request. No ledger entry results;
// a rejected shift may be re-requested.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var body ResolveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Bank.RejectRequest(r.Context(), chi.URLParam(r, "id"), body.ActorID); err != nil {
		writeDomainError(w, "Failed to reject request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestRedemption opens a deferred redemption request that reserves
// available balance until resolved.
func (h *Handler) RequestRedemption(w http.ResponseWriter, r *http.Request) {
	var body RedemptionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req, err := h.Bank.RequestRedemption(r.Context(), chi.URLParam(r, "id"), body.Minutes, body.ActorID)
	if err != nil {
		writeDomainError(w, "Failed to request redemption", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// Redeem immediately converts banked minutes into paid time off.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var body RedemptionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := h.Bank.Redeem(r.Context(), chi.URLParam(r, "id"), body.Minutes, body.ActorID)
	if err != nil {
		writeDomainError(w, "Failed to redeem", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// GetBalance returns the bag-of-hours view for an employee.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	view, err := h.Bank.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{
		EmployeeID:       view.EmployeeID,
		BankedMinutes:    view.BankedMinutes,
		PendingMinutes:   view.PendingMinutes,
		AvailableMinutes: view.AvailableMinutes,
		History:          toEntryDTOs(view.History),
		Requests:         toRequestDTOs(view.Requests),
	})
}

// GetSummary returns the accumulated per-category minutes with their
// valuation at the employee's current rate.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	sum, err := h.Bank.Summary(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get summary", err)
		return
	}

	values := make(map[string]string)
	for c, v := range surcharge.ValuateByCategory(sum.Totals, emp.HourlyRate) {
		values[string(c)] = v.StringFixed(2)
	}
	writeJSON(w, http.StatusOK, SummaryDTO{
		EmployeeID:   id,
		Totals:       sum.Totals,
		TotalMinutes: sum.Totals.Total(),
		Values:       values,
		TotalValue:   surcharge.Valuate(sum.Totals, emp.HourlyRate).StringFixed(2),
	})
}

// Statement streams the PDF statement for an employee.
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	st, err := report.BuildStatement(r.Context(), h.Store, h.Bank, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to build statement", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="estado-banco-horas.pdf"`)
	if err := st.Render(w); err != nil {
		// Headers are gone; nothing useful left to send.
		return
	}
}

// CheckConsistency audits the employee's ledger chain and projection.
func (h *Handler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Bank.CheckConsistency(r.Context(), id)

	dto := ConsistencyDTO{EmployeeID: id, Consistent: err == nil}
	if err != nil {
		var inc *timebank.InconsistentLedgerError
		if !errors.As(err, &inc) {
			writeDomainError(w, "Failed to audit ledger", err)
			return
		}
		dto.Detail = inc.Error()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CreateAdjustment applies a manual balance correction.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := h.Bank.Adjust(r.Context(), req.EmployeeID, req.Delta, req.Note, req.ActorID)
	if err != nil {
		writeDomainError(w, "Failed to adjust balance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// UpdateSchedule replaces an area's base schedule.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	area, ds, err := factory.ParseSchedule(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule config", err)
		return
	}
	if urlArea := schedule.Area(chi.URLParam(r, "area")); urlArea != area {
		writeError(w, http.StatusBadRequest, "Area in URL and body disagree", nil)
		return
	}
	if err := h.Registry.Update(area, ds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}
	if h.Config != nil {
		if err := h.Config.PutAreaSchedule(r.Context(), area, raw); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to persist schedule", err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateNightWindow replaces the global night window and re-enriches
// every area schedule.
func (h *Handler) UpdateNightWindow(w http.ResponseWriter, r *http.Request) {
	var req NightWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	nw, err := schedule.NewNightWindow(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid night window", err)
		return
	}
	h.Registry.SetNightWindow(nw)
	if h.Config != nil {
		if err := h.Config.PutNightWindow(r.Context(), nw); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to persist night window", err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func toEmployeeDTO(e timebank.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		Area:       string(e.Area),
		Role:       string(e.Role),
		HourlyRate: e.HourlyRate.String(),
		CreatedAt:  e.CreatedAt.Format(timestampLayout),
	}
}

func (h *Handler) toShiftDTO(s timebank.Shift) ShiftDTO {
	worked := make([]WorkedIntervalJSON, len(s.Worked))
	for i, iv := range s.Worked {
		worked[i] = WorkedIntervalJSON{
			Start: schedule.FormatClock(iv.Start),
			End:   schedule.FormatClock(iv.End),
		}
	}
	return ShiftDTO{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		Date:          s.Date.Format("2006-01-02"),
		Area:          string(s.Area),
		Holiday:       s.Holiday,
		Worked:        worked,
		Breakdown:     s.Breakdown,
		TotalMinutes:  s.Breakdown.Total(),
		MissedMinutes: s.MissedMinutes,
		Compensation:  string(s.Compensation),
		BankedMinutes: s.BankedMinutes,
		Value:         surcharge.Valuate(s.Breakdown, s.HourlyRate).StringFixed(2),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the domain error taxonomy to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case timebank.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, timebank.ErrForbidden):
		writeError(w, http.StatusForbidden, message, err)
	case errors.Is(err, timebank.ErrDuplicateRequest), errors.Is(err, timebank.ErrConflict):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, timebank.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, schedule.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
