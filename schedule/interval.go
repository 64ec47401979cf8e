/*
interval.go - Interval and night-window arithmetic

PURPOSE:
  Defines the half-open [Start, End) interval the classifier integrates
  over, and the NightWindow, the only range in the system allowed to
  wrap past midnight (e.g. 21:00-06:00).

INVARIANTS:
  - Interval: 0 <= Start < End <= 1440. Inverted or out-of-range
    intervals are rejected with InvalidIntervalError before any
    classification happens.
  - NightWindow: Start != End; End < Start means the window spans
    midnight and is treated as the union [Start, 1440) + [0, End).

SEE ALSO:
  - surcharge/classify.go: consumer of Overlap/Subtract
*/
package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidInterval is the sentinel for malformed or inverted time
// ranges. Match with errors.Is; details travel in InvalidIntervalError.
var ErrInvalidInterval = errors.New("invalid interval")

// InvalidIntervalError carries the reason a range was rejected.
type InvalidIntervalError struct {
	Reason string
}

func (e *InvalidIntervalError) Error() string { return "invalid interval: " + e.Reason }
func (e *InvalidIntervalError) Unwrap() error { return ErrInvalidInterval }

// =============================================================================
// INTERVAL - half-open [Start, End) minute range within one day
// =============================================================================

type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewInterval builds a validated interval from clock minutes.
func NewInterval(start, end int) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

/// ParseInterval builds a validated interval from "HH:MM" bounds.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// Validate rejects inverted, empty, or out-of-day ranges.
func (iv Interval) Validate() error {
	if iv.Start < 0 || iv.End > MinutesPerDay || iv.Start >= iv.End {
		return &InvalidIntervalError{
			Reason: fmt.Sprintf("[%s, %s)", FormatClock(iv.Start), FormatClock(iv.End)),
		}
	}
	return nil
}

// Minutes returns the length of the interval.
func (iv Interval) Minutes() int { return iv.End - iv.Start }

// Overlap returns the number of minutes shared with other.
func (iv Interval) Overlap(other Interval) int {
	lo := max(iv.Start, other.Start)
	hi := min(iv.End, other.End)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Intersect returns the shared range, if any.
func (iv Interval) Intersect(other Interval) (Interval, bool) {
	lo := max(iv.Start, other.Start)
	hi := min(iv.End, other.End)
	if hi <= lo {
		return Interval{}, false
	}
	return Interval{Start: lo, End: hi}, true
}

// Subtract removes every range in others from iv and returns the
// leftover segments in ascending order. others need not be sorted but
// must not extend past the day.
func (iv Interval) Subtract(others []Interval) []Interval {
	segs := []Interval{iv}
	for _, o := range others {
		var next []Interval
		for _, s := range segs {
			if o.End <= s.Start || o.Start >= s.End {
				next = append(next, s)
				continue
			}
			if s.Start < o.Start {
				next = append(next, Interval{Start: s.Start, End: o.Start})
			}
			if o.End < s.End {
				next = append(next, Interval{Start: o.End, End: s.End})
			}
		}
		segs = next
	}
	return segs
}

func (iv Interval) String() string {
	return FormatClock(iv.Start) + "-" + FormatClock(iv.End)
}

// =============================================================================
// NIGHT WINDOW - globally configured, may wrap past midnight
// =============================================================================

type NightWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewNightWindow builds a validated window from "HH:MM" bounds.
// End < Start is legal and means the window spans midnight.
func NewNightWindow(start, end string) (NightWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return NightWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return NightWindow{}, err
	}
	if s == e {
		return NightWindow{}, &InvalidIntervalError{Reason: "night window start equals end"}
	}
	if s == MinutesPerDay {
		s = 0
	}
	if e == MinutesPerDay {
		e = 0
	}
	return NightWindow{Start: s, End: e}, nil
}

// Wraps reports whether the window spans midnight.
func (nw NightWindow) Wraps() bool { return nw.End <= nw.Start }

// Segments returns the window as one or two non-wrapping intervals.
func (nw NightWindow) Segments() []Interval {
	if !nw.Wraps() {
		return []Interval{{Start: nw.Start, End: nw.End}}
	}
	segs := make([]Interval, 0, 2)
	if nw.Start < MinutesPerDay {
		segs = append(segs, Interval{Start: nw.Start, End: MinutesPerDay})
	}
	if nw.End > 0 {
		segs = append(segs, Interval{Start: 0, End: nw.End})
	}
	return segs
}

// Contains reports whether a clock minute falls inside the window,
// using wraparound comparison when the window spans midnight.
func (nw NightWindow) Contains(minute int) bool {
	if nw.Wraps() {
		return minute >= nw.Start || minute < nw.End
	}
	return minute >= nw.Start && minute < nw.End
}

// NightMinutes returns how many minutes of iv fall inside the window.
func (nw NightWindow) NightMinutes(iv Interval) int {
	total := 0
	for _, seg := range nw.Segments() {
		total += iv.Overlap(seg)
	}
	return total
}

func (nw NightWindow) String() string {
	return FormatClock(nw.Start) + "-" + FormatClock(nw.End)
}
