package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/surcharge"
	"github.com/turno/payroll-engine/timebank"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmployeeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// GIVEN an employee
	e := timebank.Employee{
		ID:         "emp-ana",
		Name:       "Ana",
		Area:       schedule.AreaProduccion,
		Role:       timebank.RoleEmpleado,
		HourlyRate: decimal.RequireFromString("6000"),
	}
	require.NoError(t, s.PutEmployee(ctx, e))

	// WHEN reading it back
	got, err := s.GetEmployee(ctx, "emp-ana")
	require.NoError(t, err)

	// THEN everything survives, including the decimal rate
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, schedule.AreaProduccion, got.Area)
	assert.Equal(t, timebank.RoleEmpleado, got.Role)
	assert.True(t, got.HourlyRate.Equal(e.HourlyRate))
}

func TestGetEmployee_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetEmployee(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, timebank.IsNotFound(err))
}

func TestShiftRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// GIVEN a shift with worked intervals and a breakdown
	sh := timebank.Shift{
		ID:         "shift-1",
		EmployeeID: "emp-ana",
		Date:       time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Area:       schedule.AreaProduccion,
		Holiday:    true,
		Worked: []schedule.Interval{
			{Start: 8 * 60, End: 12 * 60},
			{Start: 13 * 60, End: 17 * 60},
		},
		Breakdown:     surcharge.Breakdown{ExtraDiurna: 120, RecargoNocturno: 60},
		MissedMinutes: 15,
		HourlyRate:    decimal.RequireFromString("6333.33"),
		Compensation:  timebank.CompNinguno,
	}
	require.NoError(t, s.PutShift(ctx, sh))

	// WHEN reading it back
	got, err := s.GetShift(ctx, "shift-1")
	require.NoError(t, err)

	// THEN intervals, breakdown and the rate snapshot survive the JSON columns
	assert.Equal(t, sh.Worked, got.Worked)
	assert.Equal(t, sh.Breakdown, got.Breakdown)
	assert.Equal(t, 15, got.MissedMinutes)
	assert.True(t, got.Holiday)
	assert.True(t, got.HourlyRate.Equal(sh.HourlyRate))
	assert.Equal(t, timebank.CompNinguno, got.Compensation)
	assert.Equal(t, sh.Date, got.Date)
}

func TestUpdateShiftCompensation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sh := timebank.Shift{
		ID:           "shift-1",
		EmployeeID:   "emp-ana",
		Date:         time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Area:         schedule.AreaProduccion,
		Worked:       []schedule.Interval{{Start: 480, End: 720}},
		HourlyRate:   decimal.RequireFromString("6000"),
		Compensation: timebank.CompNinguno,
	}
	require.NoError(t, s.PutShift(ctx, sh))

	// WHEN moving the state machine
	require.NoError(t, s.UpdateShiftCompensation(ctx, "shift-1", timebank.CompAprobado, 120))

	// THEN only compensation and the banked denormalization change
	got, err := s.GetShift(ctx, "shift-1")
	require.NoError(t, err)
	assert.Equal(t, timebank.CompAprobado, got.Compensation)
	assert.Equal(t, 120, got.BankedMinutes)
	assert.Equal(t, sh.Worked, got.Worked)

	// AND updating an unknown shift is NotFound
	err = s.UpdateShiftCompensation(ctx, "ghost", timebank.CompAprobado, 0)
	assert.True(t, timebank.IsNotFound(err))
}

func TestRequestLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := timebank.Request{
		ID:         "req-1",
		EmployeeID: "emp-ana",
		Kind:       timebank.KindAcumulacion,
		ShiftID:    "shift-1",
		Minutes:    120,
		State:      timebank.RequestPendiente,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.PutRequest(ctx, r))

	// WHEN resolving it
	require.NoError(t, s.UpdateRequestState(ctx, "req-1", timebank.RequestAprobado, "emp-carlos"))

	got, err := s.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, timebank.RequestAprobado, got.State)
	assert.Equal(t, "emp-carlos", got.ResolvedBy)
	require.NotNil(t, got.ResolvedAt)

	// AND the state filter only returns matching requests
	pending, err := s.ListRequests(ctx, "emp-ana", timebank.RequestPendiente)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := s.ListRequests(ctx, "emp-ana", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListEntries_AppendOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// GIVEN three entries written with the same timestamp
	ts := time.Now().UTC()
	for i, id := range []string{"e-first", "e-second", "e-third"} {
		require.NoError(t, s.AppendEntry(ctx, timebank.LedgerEntry{
			ID:               id,
			EmployeeID:       "emp-ana",
			Timestamp:        ts,
			Movement:         timebank.MovementAprobacion,
			MinutesDelta:     10,
			ResultingBalance: 10 * (i + 1),
		}))
	}

	// WHEN listing
	entries, err := s.ListEntries(ctx, "emp-ana")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// THEN insertion order is preserved even with tied timestamps
	assert.Equal(t, "e-first", entries[0].ID)
	assert.Equal(t, "e-second", entries[1].ID)
	assert.Equal(t, "e-third", entries[2].ID)
}

func TestBalanceAndSummary_ZeroValueSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// GIVEN no activity for an employee
	b, err := s.GetBalance(ctx, "emp-new")
	require.NoError(t, err)
	assert.Equal(t, 0, b.BankedMinutes)
	assert.Equal(t, "emp-new", b.EmployeeID)

	sum, err := s.GetSummary(ctx, "emp-new")
	require.NoError(t, err)
	assert.True(t, sum.Totals.IsZero())

	// WHEN projections are written and overwritten
	require.NoError(t, s.PutBalance(ctx, timebank.EmployeeBalance{
		EmployeeID: "emp-new", BankedMinutes: 90, UpdatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.PutBalance(ctx, timebank.EmployeeBalance{
		EmployeeID: "emp-new", BankedMinutes: 150, UpdatedAt: time.Now().UTC(),
	}))

	b, err = s.GetBalance(ctx, "emp-new")
	require.NoError(t, err)
	assert.Equal(t, 150, b.BankedMinutes)

	require.NoError(t, s.PutSummary(ctx, timebank.AccumulatedSummary{
		EmployeeID: "emp-new",
		Totals:     surcharge.Breakdown{ExtraDiurna: 120, RecargoNocturnoFestivo: 30},
		UpdatedAt:  time.Now().UTC(),
	}))
	sum, err = s.GetSummary(ctx, "emp-new")
	require.NoError(t, err)
	assert.Equal(t, 120, sum.Totals.ExtraDiurna)
	assert.Equal(t, 30, sum.Totals.RecargoNocturnoFestivo)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")

	// WHEN the transaction function fails after a write
	err := s.WithTx(ctx, func(tx timebank.Store) error {
		if err := tx.PutBalance(ctx, timebank.EmployeeBalance{
			EmployeeID: "emp-ana", BankedMinutes: 500, UpdatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// THEN nothing was committed
	b, err := s.GetBalance(ctx, "emp-ana")
	require.NoError(t, err)
	assert.Equal(t, 0, b.BankedMinutes)
}

func TestWithTx_CommitsAtomically(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx timebank.Store) error {
		if err := tx.PutBalance(ctx, timebank.EmployeeBalance{
			EmployeeID: "emp-ana", BankedMinutes: 120, UpdatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return tx.AppendEntry(ctx, timebank.LedgerEntry{
			ID:               uuid.NewString(),
			EmployeeID:       "emp-ana",
			Timestamp:        time.Now().UTC(),
			Movement:         timebank.MovementAprobacion,
			MinutesDelta:     120,
			ResultingBalance: 120,
		})
	})
	require.NoError(t, err)

	b, err := s.GetBalance(ctx, "emp-ana")
	require.NoError(t, err)
	assert.Equal(t, 120, b.BankedMinutes)

	entries, err := s.ListEntries(ctx, "emp-ana")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestScheduleConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Night window starts unset
	_, ok, err := s.GetNightWindow(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	nw, err := schedule.NewNightWindow("21:00", "06:00")
	require.NoError(t, err)
	require.NoError(t, s.PutNightWindow(ctx, nw))

	got, ok, err := s.GetNightWindow(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, nw, got)

	// Area schedules round-trip as raw JSON
	cfg := []byte(`{"area":"produccion","subs":{"manana":{"enabled":true,"start":"08:00","end":"12:00"}}}`)
	require.NoError(t, s.PutAreaSchedule(ctx, schedule.AreaProduccion, cfg))

	all, err := s.ListAreaSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.JSONEq(t, string(cfg), string(all[schedule.AreaProduccion]))
}

// End-to-end: the bank running on SQLite instead of the in-memory store.
func TestBankOverSQLite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bank := timebank.NewBank(s)

	require.NoError(t, s.PutEmployee(ctx, timebank.Employee{
		ID: "emp-ana", Name: "Ana", Area: schedule.AreaProduccion,
		Role: timebank.RoleEmpleado, HourlyRate: decimal.RequireFromString("6000"),
	}))
	require.NoError(t, s.PutEmployee(ctx, timebank.Employee{
		ID: "emp-carlos", Name: "Carlos", Area: schedule.AreaProduccion,
		Role: timebank.RoleCoordinador, HourlyRate: decimal.RequireFromString("8000"),
	}))
	require.NoError(t, s.PutShift(ctx, timebank.Shift{
		ID: "shift-1", EmployeeID: "emp-ana",
		Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Area: schedule.AreaProduccion,
		Worked: []schedule.Interval{{Start: 480, End: 1140}},
		Breakdown:    surcharge.Breakdown{ExtraDiurna: 120},
		HourlyRate:   decimal.RequireFromString("6000"),
		Compensation: timebank.CompNinguno,
	}))

	// WHEN requesting accrual and approving it
	intent, err := bank.RequestAccrual(ctx, "shift-1", 120, "emp-ana")
	require.NoError(t, err)
	_, err = bank.ApproveRequest(ctx, intent.ReferenceID, "emp-carlos")
	require.NoError(t, err)

	// THEN the balance, the shift and the ledger all agree
	view, err := bank.GetBalance(ctx, "emp-ana")
	require.NoError(t, err)
	assert.Equal(t, 120, view.BankedMinutes)
	assert.Equal(t, 120, view.AvailableMinutes)

	sh, err := s.GetShift(ctx, "shift-1")
	require.NoError(t, err)
	assert.Equal(t, timebank.CompAprobado, sh.Compensation)
	assert.Equal(t, 120, sh.BankedMinutes)

	// AND redeeming part of it leaves a consistent chain
	_, err = bank.Redeem(ctx, "emp-ana", 45, "emp-ana")
	require.NoError(t, err)

	require.NoError(t, bank.CheckConsistency(ctx, "emp-ana"))

	entries, err := s.ListEntries(ctx, "emp-ana")
	require.NoError(t, err)
	assert.Equal(t, 75, timebank.Replay(entries))
}
