/*
classify.go - Worked-interval classification and lateness

PURPOSE:
  Partitions the worked interval(s) of one shift into the seven
  surcharge/overtime categories by closed-form interval intersection.
  The classifier is pure: same inputs, same breakdown, no I/O.

ALGORITHM:
  1. Resolve the enabled contractual sub-intervals (sorted, validated
     non-overlapping).
  2. For each worked interval, intersect with the contractual union to
     get the regular segments; subtract it to get the overtime segments.
  3. Split each segment along the night window (wraparound-aware) and
     attribute the night and day portions to the category selected by
     the (overtime, night, holiday) triple.

  A fully-disabled or empty schedule makes every worked minute
  overtime. Regular day minutes on a non-holiday carry no surcharge and
  appear in no category.

LATENESS:
  MissedMinutes computes a deduction candidate for a late arrival as
  the intersection of each contractual sub-interval with the range
  [firstContractualStart, arrival). A naive arrival-minus-start
  difference would also count the unpaid gap between sub-intervals
  (the lunch break), which is not missed work.

SEE ALSO:
  - breakdown.go: category selection table
  - schedule:     interval arithmetic this is built on
*/
package surcharge

import (
	"github.com/turno/payroll-engine/schedule"
)

// Classify partitions worked minutes into the seven categories.
//
// worked intervals must be valid and mutually non-overlapping;
// violations are rejected with schedule.ErrInvalidInterval before any
// arithmetic happens. Safe for concurrent use.
func Classify(worked []schedule.Interval, sched schedule.DaySchedule, nw schedule.NightWindow, holiday bool) (Breakdown, error) {
	if err := validateWorked(worked); err != nil {
		return Breakdown{}, err
	}
	contract, err := sched.EnabledIntervals()
	if err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	for _, iv := range worked {
		// Regular portion: inside the contractual union.
		for _, c := range contract {
			if seg, ok := iv.Intersect(c); ok {
				tallySegment(&b, seg, nw, holiday, false)
			}
		}
		// Overtime portion: whatever the contractual union leaves over.
		for _, seg := range iv.Subtract(contract) {
			tallySegment(&b, seg, nw, holiday, true)
		}
	}
	return b, nil
}

// tallySegment splits one homogeneous segment along the night axis and
// accumulates both halves.
func tallySegment(b *Breakdown, seg schedule.Interval, nw schedule.NightWindow, holiday, overtime bool) {
	night := nw.NightMinutes(seg)
	day := seg.Minutes() - night
	if night > 0 {
		b.add(pick(overtime, true, holiday), night)
	}
	if day > 0 {
		if c := pick(overtime, false, holiday); c != "" {
			b.add(c, day)
		}
	}
}

// pick selects the category for an (overtime, night, holiday) triple.
// The empty category means ordinary pay (regular, day, non-holiday).
func pick(overtime, night, holiday bool) Category {
	switch {
	case overtime && night && holiday:
		return ExtraNocturnaFestivo
	case overtime && night:
		return ExtraNocturna
	case overtime && holiday:
		return ExtraDiurnaFestivo
	case overtime:
		return ExtraDiurna
	case night && holiday:
		return RecargoNocturnoFestivo
	case night:
		return RecargoNocturno
	case holiday:
		return DominicalFestivo
	}
	return ""
}

// MissedMinutes returns the contractual minutes missed by arriving at
// the given clock minute, summed per sub-interval over
// [firstContractualStart, arrival). Reported separately from the
// breakdown; it is a deduction candidate, not a category.
func MissedMinutes(sched schedule.DaySchedule, arrival int) (int, error) {
	if arrival < 0 || arrival > schedule.MinutesPerDay {
		return 0, &schedule.InvalidIntervalError{Reason: "arrival outside the day"}
	}
	contract, err := sched.EnabledIntervals()
	if err != nil {
		return 0, err
	}
	if len(contract) == 0 {
		return 0, nil
	}
	first := contract[0].Start
	if arrival <= first {
		return 0, nil
	}
	missedRange := schedule.Interval{Start: first, End: arrival}
	missed := 0
	for _, c := range contract {
		missed += c.Overlap(missedRange)
	}
	return missed, nil
}

func validateWorked(worked []schedule.Interval) error {
	for i, iv := range worked {
		if err := iv.Validate(); err != nil {
			return err
		}
		for _, prev := range worked[:i] {
			if iv.Overlap(prev) > 0 {
				return &schedule.InvalidIntervalError{
					Reason: "worked intervals " + prev.String() + " and " + iv.String() + " overlap",
				}
			}
		}
	}
	return nil
}

// TotalWorked sums the lengths of the worked intervals.
func TotalWorked(worked []schedule.Interval) int {
	total := 0
	for _, iv := range worked {
		total += iv.Minutes()
	}
	return total
}
