package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/surcharge"
	"github.com/turno/payroll-engine/timebank"
	memstore "github.com/turno/payroll-engine/timebank/store"
)

func buildFixture(t *testing.T) (*memstore.Memory, *timebank.Bank) {
	t.Helper()
	ctx := context.Background()
	s := memstore.NewMemory()
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
		Breakdown:    surcharge.Breakdown{ExtraDiurna: 120, RecargoNocturno: 30},
		HourlyRate:   decimal.RequireFromString("6000"),
		Compensation: timebank.CompNinguno,
	}))
	return s, bank
}

func TestBuildStatement(t *testing.T) {
	ctx := context.Background()
	s, bank := buildFixture(t)

	// GIVEN an approved accrual and an accumulated summary
	intent, err := bank.RequestAccrual(ctx, "shift-1", 150, "emp-ana")
	require.NoError(t, err)
	_, err = bank.ApproveRequest(ctx, intent.ReferenceID, "emp-carlos")
	require.NoError(t, err)
	require.NoError(t, bank.ReconcileShift(ctx, "shift-1",
		surcharge.Breakdown{ExtraDiurna: 120, RecargoNocturno: 30}, surcharge.Breakdown{}))

	// WHEN building the statement
	st, err := BuildStatement(ctx, s, bank, "emp-ana")
	require.NoError(t, err)

	// THEN it reflects the balance view and the summary
	assert.Equal(t, "Ana", st.Employee.Name)
	assert.Equal(t, 150, st.Balance.BankedMinutes)
	assert.Equal(t, 120, st.Summary.Totals.ExtraDiurna)
	assert.Equal(t, 30, st.Summary.Totals.RecargoNocturno)
	assert.NotEmpty(t, st.Balance.History)
	assert.False(t, st.GeneratedAt.IsZero())
}

func TestBuildStatement_UnknownEmployee(t *testing.T) {
	s, bank := buildFixture(t)

	_, err := BuildStatement(context.Background(), s, bank, "ghost")
	require.Error(t, err)
	assert.True(t, timebank.IsNotFound(err))
}

func TestRender_ProducesPDF(t *testing.T) {
	ctx := context.Background()
	s, bank := buildFixture(t)

	intent, err := bank.RequestAccrual(ctx, "shift-1", 150, "emp-ana")
	require.NoError(t, err)
	_, err = bank.ApproveRequest(ctx, intent.ReferenceID, "emp-carlos")
	require.NoError(t, err)

	st, err := BuildStatement(ctx, s, bank, "emp-ana")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.Render(&buf))

	// A PDF, not an error page: header magic plus some real content.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestRender_EmptyHistory(t *testing.T) {
	ctx := context.Background()
	s, bank := buildFixture(t)

	// No ledger activity at all still renders.
	st, err := BuildStatement(ctx, s, bank, "emp-ana")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.Render(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
