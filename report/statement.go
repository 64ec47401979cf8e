/*
Package report renders time-bank statements as PDF documents.

PURPOSE:
  Produces a per-employee statement: current balances, the accumulated
  surcharge summary with its monetary valuation at the employee's
  current rate, and the most recent ledger movements.

USAGE:
  st, err := report.BuildStatement(ctx, store, bank, employeeID)
  if err != nil { ... }
  err = st.Render(w)  // e.g. the HTTP response writer

SEE ALSO:
  - surcharge/valuation.go: the factors behind the valuation column
  - timebank/bank.go:       the balance view the statement reads
*/
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/turno/payroll-engine/surcharge"
	"github.com/turno/payroll-engine/timebank"
)

// maxHistoryLines bounds the movement table so the statement stays on
// a couple of pages for long-tenured employees.
const maxHistoryLines = 20

// Statement carries everything Render needs, fully resolved so the
// rendering stage does no I/O.
type Statement struct {
	Employee    timebank.Employee
	Balance     timebank.BalanceView
	Summary     timebank.AccumulatedSummary
	GeneratedAt time.Time
}

// BuildStatement assembles a statement for one employee.
func BuildStatement(ctx context.Context, store timebank.Store, bank *timebank.Bank, employeeID string) (Statement, error) {
	emp, err := store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Statement{}, err
	}
	view, err := bank.GetBalance(ctx, employeeID)
	if err != nil {
		return Statement{}, err
	}
	sum, err := bank.Summary(ctx, employeeID)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Employee:    emp,
		Balance:     view,
		Summary:     sum,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// Render writes the statement PDF to w.
func (st Statement) Render(w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Estado de banco de horas")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Empleado: %s (%s)", st.Employee.Name, st.Employee.ID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Area: %s    Rol: %s", st.Employee.Area, st.Employee.Role))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generado: %s", st.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Saldos")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Saldo total: %s", formatMinutes(st.Balance.BankedMinutes)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Pendiente de redencion: %s", formatMinutes(st.Balance.PendingMinutes)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Disponible: %s", formatMinutes(st.Balance.AvailableMinutes)))
	pdf.Ln(10)

	st.renderSummary(pdf)
	st.renderHistory(pdf)

	return pdf.Output(w)
}

func (st Statement) renderSummary(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Acumulado por categoria")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(70, 7, "Categoria")
	pdf.Cell(30, 7, "Minutos")
	pdf.Cell(25, 7, "Factor")
	pdf.Cell(40, 7, "Valor")
	pdf.Ln(7)

	values := surcharge.ValuateByCategory(st.Summary.Totals, st.Employee.HourlyRate)
	pdf.SetFont("Helvetica", "", 10)
	for _, c := range surcharge.Categories() {
		minutes := st.Summary.Totals.Of(c)
		if minutes == 0 {
			continue
		}
		pdf.Cell(70, 6, string(c))
		pdf.Cell(30, 6, fmt.Sprintf("%d", minutes))
		pdf.Cell(25, 6, surcharge.Factor(c).String())
		pdf.Cell(40, 6, values[c].StringFixed(2))
		pdf.Ln(6)
	}
	if st.Summary.Totals.IsZero() {
		pdf.Cell(0, 6, "Sin recargos acumulados")
		pdf.Ln(6)
	} else {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(70, 6, "Total")
		pdf.Cell(30, 6, fmt.Sprintf("%d", st.Summary.Totals.Total()))
		pdf.Cell(25, 6, "")
		pdf.Cell(40, 6, surcharge.Valuate(st.Summary.Totals, st.Employee.HourlyRate).StringFixed(2))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

func (st Statement) renderHistory(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Movimientos recientes")
	pdf.Ln(8)

	history := st.Balance.History
	if len(history) > maxHistoryLines {
		history = history[len(history)-maxHistoryLines:]
	}
	if len(history) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, "Sin movimientos")
		pdf.Ln(6)
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(35, 7, "Fecha")
	pdf.Cell(35, 7, "Movimiento")
	pdf.Cell(25, 7, "Delta")
	pdf.Cell(25, 7, "Saldo")
	pdf.Cell(0, 7, "Actor")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	// Newest last, matching the ledger's append order.
	for _, e := range history {
		pdf.Cell(35, 6, e.Timestamp.Format("2006-01-02 15:04"))
		pdf.Cell(35, 6, string(e.Movement))
		pdf.Cell(25, 6, formatDelta(e.MinutesDelta))
		pdf.Cell(25, 6, fmt.Sprintf("%d", e.ResultingBalance))
		pdf.Cell(0, 6, e.Actor)
		pdf.Ln(6)
	}
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%d min (%d h %02d min)", m, m/60, m%60)
}

func formatDelta(d int) string {
	if d > 0 {
		return fmt.Sprintf("+%d", d)
	}
	return fmt.Sprintf("%d", d)
}
