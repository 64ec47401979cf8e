/*
Package schedule models contractual work schedules as wall-clock intervals.

PURPOSE:
  Everything in this package is expressed in minutes since midnight
  (0..1440). The package converts between the "HH:MM" representation used
  by configuration and the integer minutes the classifier computes with,
  and provides the interval arithmetic (overlap, subtraction) that the
  surcharge classifier is built on.

KEY CONCEPTS:
  - Clock minutes: int in [0, 1440], where 1440 == "24:00" (end of day)
  - Interval:      half-open [Start, End) range within one day
  - NightWindow:   the configured night-surcharge window, which is the
                   only interval allowed to wrap past midnight
  - DaySchedule:   named sub-intervals (manana/tarde/noche) forming the
                   contractual base hours for one area

SEE ALSO:
  - interval.go: Interval and NightWindow arithmetic
  - schedule.go: DaySchedule, enrichment cache, area registry
  - surcharge:   the classifier consuming these types
*/
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the exclusive upper bound for clock minutes ("24:00").
const MinutesPerDay = 24 * 60

// ParseClock converts "HH:MM" to minutes since midnight.
// "24:00" is accepted as the end-of-day boundary (1440).
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, &InvalidIntervalError{Reason: fmt.Sprintf("malformed clock value %q", s)}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, &InvalidIntervalError{Reason: fmt.Sprintf("malformed hour in %q", s)}
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &InvalidIntervalError{Reason: fmt.Sprintf("malformed minute in %q", s)}
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, &InvalidIntervalError{Reason: fmt.Sprintf("clock value %q out of range", s)}
	}
	total := h*60 + m
	if total > MinutesPerDay {
		return 0, &InvalidIntervalError{Reason: fmt.Sprintf("clock value %q past end of day", s)}
	}
	return total, nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MustClock is ParseClock for static configuration and tests.
// Panics on malformed input.
func MustClock(s string) int {
	m, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return m
}
