/*
valuation.go - Monetary valuation of a breakdown

PURPOSE:
  Converts a categorized minute breakdown into money using the hourly
  pay rate snapshot captured when the shift was registered. Rate changes
  after registration must never retroactively alter a shift's value,
  which is why the snapshot travels with the shift, not the employee.

FACTORS:
  Each category pays a multiple of the ordinary hourly rate. Overtime
  categories replace the base hour (extra diurna pays 1.25x the hour);
  recargo categories pay the surcharge on top of an already-paid
  ordinary hour (recargo nocturno adds 0.35x).

PRECISION:
  Uses decimal.Decimal end to end. Float arithmetic on money drifts;
  payroll rows must add up to the cent.
*/
package surcharge

import (
	"github.com/shopspring/decimal"
)

var factors = map[Category]decimal.Decimal{
	ExtraDiurna:            decimal.RequireFromString("1.25"),
	ExtraNocturna:          decimal.RequireFromString("1.75"),
	ExtraDiurnaFestivo:     decimal.RequireFromString("2.00"),
	ExtraNocturnaFestivo:   decimal.RequireFromString("2.50"),
	RecargoNocturno:        decimal.RequireFromString("0.35"),
	RecargoNocturnoFestivo: decimal.RequireFromString("1.10"),
	DominicalFestivo:       decimal.RequireFromString("0.75"),
}

var sixty = decimal.NewFromInt(60)

// Factor returns the pay multiplier for a category.
func Factor(c Category) decimal.Decimal {
	return factors[c]
}

// Valuate prices a breakdown at the given hourly rate, rounded to two
// decimal places.
func Valuate(b Breakdown, hourlyRate decimal.Decimal) decimal.Decimal {
	perMinute := hourlyRate.Div(sixty)
	total := decimal.Zero
	for _, c := range Categories() {
		minutes := b.Of(c)
		if minutes == 0 {
			continue
		}
		total = total.Add(perMinute.Mul(decimal.NewFromInt(int64(minutes))).Mul(factors[c]))
	}
	return total.Round(2)
}

// ValuateByCategory prices each category independently, rounded per
// line so the lines match what a payroll report prints.
func ValuateByCategory(b Breakdown, hourlyRate decimal.Decimal) map[Category]decimal.Decimal {
	perMinute := hourlyRate.Div(sixty)
	out := make(map[Category]decimal.Decimal, len(factors))
	for _, c := range Categories() {
		minutes := b.Of(c)
		out[c] = perMinute.Mul(decimal.NewFromInt(int64(minutes))).Mul(factors[c]).Round(2)
	}
	return out
}
