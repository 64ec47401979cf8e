/*
Package surcharge classifies worked time into overtime and surcharge
categories.

PURPOSE:
  Colombian-style payroll distinguishes seven paid categories beyond
  ordinary hours, along three independent axes:

    - contractual axis: inside the base schedule (regular) vs outside
      it (overtime / hora extra)
    - night axis: inside vs outside the configured night window
    - holiday axis: the shift's dominical/festivo flag

  Each worked minute lands in exactly one category (or in none, for
  regular day work on an ordinary day):

    regular  + day   + holiday      -> dominical_festivo
    regular  + night + non-holiday  -> recargo_nocturno
    regular  + night + holiday      -> recargo_nocturno_festivo
    overtime + day   + non-holiday  -> extra_diurna
    overtime + night + non-holiday  -> extra_nocturna
    overtime + day   + holiday      -> extra_diurna_festivo
    overtime + night + holiday      -> extra_nocturna_festivo
    regular  + day   + non-holiday  -> ordinary pay, no category

KEY CONCEPTS IN THIS FILE (breakdown.go):
  - Category:  one of the seven fixed category keys
  - Breakdown: minutes per category, all seven keys always present

DESIGN PRINCIPLES:
  1. Purity: classification is a function of its inputs, no state
  2. Closed form: interval intersection, never minute-by-minute loops
  3. Fixed shape: a Breakdown always carries all seven categories,
     zeros included, so downstream consumers never branch on shape

SEE ALSO:
  - classify.go:  the classifier and lateness calculation
  - valuation.go: decimal pay valuation of a breakdown
  - timebank:     the ledger consuming breakdowns
*/
package surcharge

// Category is one of the seven fixed surcharge/overtime categories.
// The values are the wire keys used in persisted rows and API payloads.
type Category string

const (
	ExtraDiurna            Category = "extra_diurna"
	ExtraNocturna          Category = "extra_nocturna"
	ExtraDiurnaFestivo     Category = "extra_diurna_festivo"
	ExtraNocturnaFestivo   Category = "extra_nocturna_festivo"
	RecargoNocturno        Category = "recargo_nocturno"
	RecargoNocturnoFestivo Category = "recargo_nocturno_festivo"
	DominicalFestivo       Category = "dominical_festivo"
)

// Categories returns the seven categories in their canonical order.
func Categories() []Category {
	return []Category{
		ExtraDiurna,
		ExtraNocturna,
		ExtraDiurnaFestivo,
		ExtraNocturnaFestivo,
		RecargoNocturno,
		RecargoNocturnoFestivo,
		DominicalFestivo,
	}
}

// =============================================================================
// BREAKDOWN - minutes per category, all seven keys always present
// =============================================================================

// Breakdown maps each category to non-negative worked minutes. The
// zero value is a valid, empty breakdown.
type Breakdown struct {
	ExtraDiurna            int `json:"extra_diurna"`
	ExtraNocturna          int `json:"extra_nocturna"`
	ExtraDiurnaFestivo     int `json:"extra_diurna_festivo"`
	ExtraNocturnaFestivo   int `json:"extra_nocturna_festivo"`
	RecargoNocturno        int `json:"recargo_nocturno"`
	RecargoNocturnoFestivo int `json:"recargo_nocturno_festivo"`
	DominicalFestivo       int `json:"dominical_festivo"`
}

// Of returns the minutes recorded for a category.
func (b Breakdown) Of(c Category) int {
	switch c {
	case ExtraDiurna:
		return b.ExtraDiurna
	case ExtraNocturna:
		return b.ExtraNocturna
	case ExtraDiurnaFestivo:
		return b.ExtraDiurnaFestivo
	case ExtraNocturnaFestivo:
		return b.ExtraNocturnaFestivo
	case RecargoNocturno:
		return b.RecargoNocturno
	case RecargoNocturnoFestivo:
		return b.RecargoNocturnoFestivo
	case DominicalFestivo:
		return b.DominicalFestivo
	}
	return 0
}

// add accumulates minutes into a category.
func (b *Breakdown) add(c Category, minutes int) {
	switch c {
	case ExtraDiurna:
		b.ExtraDiurna += minutes
	case ExtraNocturna:
		b.ExtraNocturna += minutes
	case ExtraDiurnaFestivo:
		b.ExtraDiurnaFestivo += minutes
	case ExtraNocturnaFestivo:
		b.ExtraNocturnaFestivo += minutes
	case RecargoNocturno:
		b.RecargoNocturno += minutes
	case RecargoNocturnoFestivo:
		b.RecargoNocturnoFestivo += minutes
	case DominicalFestivo:
		b.DominicalFestivo += minutes
	}
}

// Total returns the sum over all categories.
func (b Breakdown) Total() int {
	total := 0
	for _, c := range Categories() {
		total += b.Of(c)
	}
	return total
}

// Add returns the category-wise sum of two breakdowns.
func (b Breakdown) Add(other Breakdown) Breakdown {
	var out Breakdown
	for _, c := range Categories() {
		out.add(c, b.Of(c)+other.Of(c))
	}
	return out
}

// NetAgainst returns max(0, b - banked) per category: the minutes not
// yet compensated through the time-bank.
func (b Breakdown) NetAgainst(banked Breakdown) Breakdown {
	var out Breakdown
	for _, c := range Categories() {
		net := b.Of(c) - banked.Of(c)
		if net < 0 {
			net = 0
		}
		out.add(c, net)
	}
	return out
}

// IsZero reports whether every category is zero.
func (b Breakdown) IsZero() bool { return b == Breakdown{} }
