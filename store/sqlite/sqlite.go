/*
Package sqlite provides the SQLite-backed implementation of the
timebank storage interfaces.

PURPOSE:
  Implements timebank.Store and timebank.TxStore using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

APPEND-ONLY ENFORCEMENT:
  The ledger_entries table is append-only: this package issues no
  UPDATE or DELETE against it. Corrections happen through AJUSTE
  entries written by the domain layer.

ORDERING:
  ledger_entries carries a monotonically increasing seq column and
  ListEntries orders by it. The resulting-balance chain is defined
  over append order; wall-clock timestamps can tie within the same
  millisecond, so they are never used for ordering.

KEY TABLES:
  employees:       employee records with current hourly rate
  shifts:          registered work-days, breakdown and rate snapshot
  requests:        accrual/redemption request lifecycle
  ledger_entries:  immutable audit trail (append-only)
  balances:        banked-minutes projection per employee
  summaries:       accumulated per-category minutes per employee
  area_schedules:  per-area base schedule config (JSON)
  night_window:    the single global night window row

CONCURRENCY:
  Opened in WAL (Write-Ahead Logging) mode; a sync.RWMutex serializes
  writers in-process. WithTx wraps a database transaction; a
  busy/locked failure surfaces as timebank.ErrConflict, which callers
  may retry.

USAGE:
  store, err := sqlite.New("./data/turno.db")  // or ":memory:"
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  bank := timebank.NewBank(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - timebank/store.go: interface contracts
  - timebank/store:    in-memory implementation used in tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/timebank"
)

// dbtx abstracts *sql.DB and *sql.Tx so the same query code serves
// both the plain store and a transactional view.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements timebank.TxStore over SQLite.
type Store struct {
	db *sql.DB
	q  dbtx

	// nil inside a transactional view; WithTx already holds the lock.
	mu *sync.RWMutex
}

var _ timebank.TxStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time, and a ":memory:" database
	// exists per connection. A single pooled connection covers both.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, q: db, mu: &sync.RWMutex{}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		area TEXT NOT NULL,
		role TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		area TEXT NOT NULL,
		holiday BOOLEAN NOT NULL DEFAULT FALSE,
		worked_json TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		missed_minutes INTEGER NOT NULL DEFAULT 0,
		hourly_rate TEXT NOT NULL,
		compensation TEXT NOT NULL DEFAULT 'NINGUNO',
		banked_minutes INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_shifts_employee_date
		ON shifts(employee_id, date);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		shift_id TEXT,
		minutes INTEGER NOT NULL,
		state TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL,
		resolved_by TEXT,
		resolved_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_requests_employee_state
		ON requests(employee_id, state);

	-- Append-only audit trail. seq defines replay order; no UPDATE or
	-- DELETE is ever issued against this table.
	CREATE TABLE IF NOT EXISTS ledger_entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		employee_id TEXT NOT NULL,
		ts TEXT NOT NULL,
		movement TEXT NOT NULL,
		minutes_delta INTEGER NOT NULL,
		resulting_balance INTEGER NOT NULL,
		reference_id TEXT,
		note TEXT,
		actor TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entries_employee
		ON ledger_entries(employee_id, seq);

	CREATE TABLE IF NOT EXISTS balances (
		employee_id TEXT PRIMARY KEY,
		banked_minutes INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS summaries (
		employee_id TEXT PRIMARY KEY,
		totals_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS area_schedules (
		area TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS night_window (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		start_min INTEGER NOT NULL,
		end_min INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schemaSQL)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx runs fn against a transactional view of the store. The
// transaction rolls back when fn returns an error and commits
// otherwise. Busy/locked failures map to timebank.ErrConflict.
func (s *Store) WithTx(ctx context.Context, fn func(timebank.Store) error) error {
	if s.mu == nil {
		// Already inside a transaction; run in the enclosing one.
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapSQLiteErr(err)
	}
	view := &Store{db: s.db, q: tx}
	if err := fn(view); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapSQLiteErr(err)
	}
	return nil
}

func (s *Store) rlock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) wlock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// mapSQLiteErr converts driver-level contention into the retryable
// conflict error from the taxonomy.
func mapSQLiteErr(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		if serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %v", timebank.ErrConflict, err)
		}
	}
	if strings.Contains(err.Error(), "database is locked") {
		return fmt.Errorf("%w: %v", timebank.ErrConflict, err)
	}
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) PutEmployee(ctx context.Context, e timebank.Employee) error {
	defer s.wlock()()
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO employees (id, name, area, role, hourly_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			area = excluded.area,
			role = excluded.role,
			hourly_rate = excluded.hourly_rate
	`, e.ID, e.Name, string(e.Area), string(e.Role), e.HourlyRate.String(),
		createdAt.Format(time.RFC3339Nano))
	return mapNonNil(err)
}

func (s *Store) GetEmployee(ctx context.Context, id string) (timebank.Employee, error) {
	defer s.rlock()()
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, area, role, hourly_rate, created_at
		FROM employees WHERE id = ?
	`, id)

	var (
		e       timebank.Employee
		area    string
		role    string
		rate    string
		created string
	)
	err := row.Scan(&e.ID, &e.Name, &area, &role, &rate, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return timebank.Employee{}, fmt.Errorf("employee %s: %w", id, timebank.ErrNotFound)
	}
	if err != nil {
		return timebank.Employee{}, err
	}
	e.Area = schedule.Area(area)
	e.Role = timebank.Role(role)
	if e.HourlyRate, err = decimal.NewFromString(rate); err != nil {
		return timebank.Employee{}, fmt.Errorf("employee %s hourly rate: %w", id, err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]timebank.Employee, error) {
	defer s.rlock()()
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, area, role, hourly_rate, created_at
		FROM employees ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timebank.Employee
	for rows.Next() {
		var (
			e       timebank.Employee
			area    string
			role    string
			rate    string
			created string
		)
		if err := rows.Scan(&e.ID, &e.Name, &area, &role, &rate, &created); err != nil {
			return nil, err
		}
		e.Area = schedule.Area(area)
		e.Role = timebank.Role(role)
		if e.HourlyRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("employee %s hourly rate: %w", e.ID, err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// SHIFTS
// =============================================================================

func (s *Store) PutShift(ctx context.Context, sh timebank.Shift) error {
	defer s.wlock()()
	workedJSON, err := json.Marshal(sh.Worked)
	if err != nil {
		return err
	}
	breakdownJSON, err := json.Marshal(sh.Breakdown)
	if err != nil {
		return err
	}
	createdAt := sh.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO shifts
			(id, employee_id, date, area, holiday, worked_json, breakdown_json,
			 missed_minutes, hourly_rate, compensation, banked_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			compensation = excluded.compensation,
			banked_minutes = excluded.banked_minutes
	`, sh.ID, sh.EmployeeID, sh.Date.Format("2006-01-02"), string(sh.Area), sh.Holiday,
		string(workedJSON), string(breakdownJSON), sh.MissedMinutes,
		sh.HourlyRate.String(), string(sh.Compensation), sh.BankedMinutes,
		createdAt.Format(time.RFC3339Nano))
	return mapNonNil(err)
}

func (s *Store) GetShift(ctx context.Context, id string) (timebank.Shift, error) {
	defer s.rlock()()
	row := s.q.QueryRowContext(ctx, `
		SELECT id, employee_id, date, area, holiday, worked_json, breakdown_json,
		       missed_minutes, hourly_rate, compensation, banked_minutes, created_at
		FROM shifts WHERE id = ?
	`, id)
	sh, err := scanShift(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return timebank.Shift{}, fmt.Errorf("shift %s: %w", id, timebank.ErrNotFound)
	}
	return sh, err
}

func (s *Store) ListShifts(ctx context.Context, employeeID string) ([]timebank.Shift, error) {
	defer s.rlock()()
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, employee_id, date, area, holiday, worked_json, breakdown_json,
		       missed_minutes, hourly_rate, compensation, banked_minutes, created_at
		FROM shifts WHERE employee_id = ? ORDER BY date, id
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timebank.Shift
	for rows.Next() {
		sh, err := scanShift(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func scanShift(scan func(dest ...any) error) (timebank.Shift, error) {
	var (
		sh            timebank.Shift
		date          string
		area          string
		workedJSON    string
		breakdownJSON string
		rate          string
		comp          string
		created       string
	)
	err := scan(&sh.ID, &sh.EmployeeID, &date, &area, &sh.Holiday, &workedJSON,
		&breakdownJSON, &sh.MissedMinutes, &rate, &comp, &sh.BankedMinutes, &created)
	if err != nil {
		return timebank.Shift{}, err
	}
	sh.Date, _ = time.Parse("2006-01-02", date)
	sh.Area = schedule.Area(area)
	sh.Compensation = timebank.CompensationState(comp)
	if sh.HourlyRate, err = decimal.NewFromString(rate); err != nil {
		return timebank.Shift{}, fmt.Errorf("shift %s hourly rate: %w", sh.ID, err)
	}
	sh.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if err := json.Unmarshal([]byte(workedJSON), &sh.Worked); err != nil {
		return timebank.Shift{}, fmt.Errorf("shift %s worked intervals: %w", sh.ID, err)
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &sh.Breakdown); err != nil {
		return timebank.Shift{}, fmt.Errorf("shift %s breakdown: %w", sh.ID, err)
	}
	return sh, nil
}

func (s *Store) UpdateShiftCompensation(ctx context.Context, shiftID string, state timebank.CompensationState, bankedMinutes int) error {
	defer s.wlock()()
	res, err := s.q.ExecContext(ctx, `
		UPDATE shifts SET compensation = ?, banked_minutes = ? WHERE id = ?
	`, string(state), bankedMinutes, shiftID)
	if err != nil {
		return mapSQLiteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("shift %s: %w", shiftID, timebank.ErrNotFound)
	}
	return nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) PutRequest(ctx context.Context, r timebank.Request) error {
	defer s.wlock()()
	var resolvedAt any
	if r.ResolvedAt != nil {
		resolvedAt = r.ResolvedAt.Format(time.RFC3339Nano)
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO requests
			(id, employee_id, kind, shift_id, minutes, state, note,
			 created_at, resolved_by, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.EmployeeID, string(r.Kind), nullString(r.ShiftID), r.Minutes,
		string(r.State), r.Note, r.CreatedAt.Format(time.RFC3339Nano),
		nullString(r.ResolvedBy), resolvedAt)
	return mapNonNil(err)
}

func (s *Store) GetRequest(ctx context.Context, id string) (timebank.Request, error) {
	defer s.rlock()()
	row := s.q.QueryRowContext(ctx, `
		SELECT id, employee_id, kind, shift_id, minutes, state, note,
		       created_at, resolved_by, resolved_at
		FROM requests WHERE id = ?
	`, id)
	r, err := scanRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return timebank.Request{}, fmt.Errorf("request %s: %w", id, timebank.ErrNotFound)
	}
	return r, err
}

func (s *Store) ListRequests(ctx context.Context, employeeID string, state timebank.RequestState) ([]timebank.Request, error) {
	defer s.rlock()()
	query := `
		SELECT id, employee_id, kind, shift_id, minutes, state, note,
		       created_at, resolved_by, resolved_at
		FROM requests WHERE employee_id = ?`
	args := []any{employeeID}
	if state != "" {
		query += ` AND state = ?`
		args = append(args, string(state))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timebank.Request
	for rows.Next() {
		r, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRequest(scan func(dest ...any) error) (timebank.Request, error) {
	var (
		r          timebank.Request
		kind       string
		shiftID    sql.NullString
		state      string
		note       sql.NullString
		created    string
		resolvedBy sql.NullString
		resolvedAt sql.NullString
	)
	err := scan(&r.ID, &r.EmployeeID, &kind, &shiftID, &r.Minutes, &state, &note,
		&created, &resolvedBy, &resolvedAt)
	if err != nil {
		return timebank.Request{}, err
	}
	r.Kind = timebank.RequestKind(kind)
	r.ShiftID = shiftID.String
	r.State = timebank.RequestState(state)
	r.Note = note.String
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	r.ResolvedBy = resolvedBy.String
	if resolvedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, resolvedAt.String); err == nil {
			r.ResolvedAt = &t
		}
	}
	return r, nil
}

func (s *Store) UpdateRequestState(ctx context.Context, id string, state timebank.RequestState, resolvedBy string) error {
	defer s.wlock()()
	res, err := s.q.ExecContext(ctx, `
		UPDATE requests SET state = ?, resolved_by = ?, resolved_at = ? WHERE id = ?
	`, string(state), nullString(resolvedBy), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return mapSQLiteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("request %s: %w", id, timebank.ErrNotFound)
	}
	return nil
}

// =============================================================================
// LEDGER (append-only)
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e timebank.LedgerEntry) error {
	defer s.wlock()()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO ledger_entries
			(id, employee_id, ts, movement, minutes_delta, resulting_balance,
			 reference_id, note, actor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.EmployeeID, e.Timestamp.Format(time.RFC3339Nano), string(e.Movement),
		e.MinutesDelta, e.ResultingBalance, nullString(e.ReferenceID), e.Note, e.Actor)
	return mapNonNil(err)
}

func (s *Store) ListEntries(ctx context.Context, employeeID string) ([]timebank.LedgerEntry, error) {
	defer s.rlock()()
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, employee_id, ts, movement, minutes_delta, resulting_balance,
		       reference_id, note, actor
		FROM ledger_entries WHERE employee_id = ? ORDER BY seq
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timebank.LedgerEntry
	for rows.Next() {
		var (
			e        timebank.LedgerEntry
			ts       string
			movement string
			ref      sql.NullString
			note     sql.NullString
			actor    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &ts, &movement, &e.MinutesDelta,
			&e.ResultingBalance, &ref, &note, &actor); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		e.Movement = timebank.MovementType(movement)
		e.ReferenceID = ref.String
		e.Note = note.String
		e.Actor = actor.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// PROJECTIONS
// =============================================================================

func (s *Store) GetBalance(ctx context.Context, employeeID string) (timebank.EmployeeBalance, error) {
	defer s.rlock()()
	row := s.q.QueryRowContext(ctx, `
		SELECT banked_minutes, updated_at FROM balances WHERE employee_id = ?
	`, employeeID)

	var (
		b       timebank.EmployeeBalance
		updated string
	)
	err := row.Scan(&b.BankedMinutes, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		// No entries yet means zero balance, not an error.
		return timebank.EmployeeBalance{EmployeeID: employeeID}, nil
	}
	if err != nil {
		return timebank.EmployeeBalance{}, err
	}
	b.EmployeeID = employeeID
	b.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return b, nil
}

func (s *Store) PutBalance(ctx context.Context, b timebank.EmployeeBalance) error {
	defer s.wlock()()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO balances (employee_id, banked_minutes, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			banked_minutes = excluded.banked_minutes,
			updated_at = excluded.updated_at
	`, b.EmployeeID, b.BankedMinutes, b.UpdatedAt.Format(time.RFC3339Nano))
	return mapNonNil(err)
}

func (s *Store) GetSummary(ctx context.Context, employeeID string) (timebank.AccumulatedSummary, error) {
	defer s.rlock()()
	row := s.q.QueryRowContext(ctx, `
		SELECT totals_json, updated_at FROM summaries WHERE employee_id = ?
	`, employeeID)

	var totalsJSON, updated string
	err := row.Scan(&totalsJSON, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return timebank.AccumulatedSummary{EmployeeID: employeeID}, nil
	}
	if err != nil {
		return timebank.AccumulatedSummary{}, err
	}
	sum := timebank.AccumulatedSummary{EmployeeID: employeeID}
	if err := json.Unmarshal([]byte(totalsJSON), &sum.Totals); err != nil {
		return timebank.AccumulatedSummary{}, fmt.Errorf("summary for %s: %w", employeeID, err)
	}
	sum.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return sum, nil
}

func (s *Store) PutSummary(ctx context.Context, sum timebank.AccumulatedSummary) error {
	defer s.wlock()()
	totalsJSON, err := json.Marshal(sum.Totals)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO summaries (employee_id, totals_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			totals_json = excluded.totals_json,
			updated_at = excluded.updated_at
	`, sum.EmployeeID, string(totalsJSON), sum.UpdatedAt.Format(time.RFC3339Nano))
	return mapNonNil(err)
}

// =============================================================================
// SCHEDULE CONFIG
// =============================================================================

// PutAreaSchedule stores one area's schedule configuration JSON so the
// in-memory registry can be rebuilt on startup.
func (s *Store) PutAreaSchedule(ctx context.Context, area schedule.Area, configJSON []byte) error {
	defer s.wlock()()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO area_schedules (area, config_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(area) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, string(area), string(configJSON), time.Now().UTC().Format(time.RFC3339Nano))
	return mapNonNil(err)
}

// ListAreaSchedules returns the raw stored configuration per area.
func (s *Store) ListAreaSchedules(ctx context.Context) (map[schedule.Area][]byte, error) {
	defer s.rlock()()
	rows, err := s.q.QueryContext(ctx, `SELECT area, config_json FROM area_schedules`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[schedule.Area][]byte)
	for rows.Next() {
		var area, cfg string
		if err := rows.Scan(&area, &cfg); err != nil {
			return nil, err
		}
		out[schedule.Area(area)] = []byte(cfg)
	}
	return out, rows.Err()
}

// PutNightWindow stores the single global night window row.
func (s *Store) PutNightWindow(ctx context.Context, nw schedule.NightWindow) error {
	defer s.wlock()()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO night_window (id, start_min, end_min, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_min = excluded.start_min,
			end_min = excluded.end_min,
			updated_at = excluded.updated_at
	`, nw.Start, nw.End, time.Now().UTC().Format(time.RFC3339Nano))
	return mapNonNil(err)
}

// GetNightWindow returns the stored window; ok is false when none has
// been configured yet.
func (s *Store) GetNightWindow(ctx context.Context) (nw schedule.NightWindow, ok bool, err error) {
	defer s.rlock()()
	row := s.q.QueryRowContext(ctx, `SELECT start_min, end_min FROM night_window WHERE id = 1`)
	err = row.Scan(&nw.Start, &nw.End)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.NightWindow{}, false, nil
	}
	if err != nil {
		return schedule.NightWindow{}, false, err
	}
	return nw, true, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func mapNonNil(err error) error {
	if err == nil {
		return nil
	}
	return mapSQLiteErr(err)
}
