/*
schedule.go - Day schedules, night/day enrichment, area registry

PURPOSE:
  A DaySchedule is the contractual base hours for one area on one
  day-type: an ordered set of named sub-intervals (manana, tarde,
  noche), each of which can be disabled. The classifier compares worked
  time against the enabled sub-intervals; anything outside their union
  is overtime.

ENRICHMENT CACHE:
  When an administrator updates a schedule (or the global night window
  changes), Enrich precomputes per sub-interval how many of its minutes
  fall inside the night window. This is a cache for reporting and admin
  screens, not a second source of truth: classification always resolves
  the night window directly. The Registry re-enriches every schedule
  whenever the window changes, so the cache can never outlive the
  parameters it was derived from.

INVARIANT:
  Enabled sub-intervals within one schedule must not overlap each other.
  EnabledIntervals enforces this and the classifier relies on it.

SEE ALSO:
  - interval.go:          Interval/NightWindow arithmetic
  - surcharge/classify.go: the consumer
  - factory/schedule.go:  JSON configuration parsing
*/
package schedule

import (
	"fmt"
	"sort"
	"sync"
)

// =============================================================================
// SUB-INTERVALS AND DAY SCHEDULES
// =============================================================================

// Canonical sub-interval names. Schedules may use others; these are the
// ones area configuration ships with.
const (
	SubManana = "manana"
	SubTarde  = "tarde"
	SubNoche  = "noche"
)

// SubInterval is one named block of contractual hours.
type SubInterval struct {
	Name    string   `json:"name"`
	Enabled bool     `json:"enabled"`
	Span    Interval `json:"span"`

	// Enrichment cache, derived by Enrich. Zero until enriched.
	NightMinutes int `json:"night_minutes"`
	DayMinutes   int `json:"day_minutes"`
}

// DaySchedule is the contractual base hours for one area/day-type.
type DaySchedule struct {
	Subs []SubInterval `json:"subs"`

	// Enriched reports whether the night/day cache is current.
	Enriched bool `json:"enriched"`
}

// NewDaySchedule builds a schedule and validates every sub-interval.
func NewDaySchedule(subs ...SubInterval) (DaySchedule, error) {
	ds := DaySchedule{Subs: subs}
	if _, err := ds.EnabledIntervals(); err != nil {
		return DaySchedule{}, err
	}
	return ds, nil
}

// EnabledIntervals returns the enabled sub-intervals sorted by start
// time, validating each range and the mutual non-overlap invariant.
func (ds DaySchedule) EnabledIntervals() ([]Interval, error) {
	var ivs []Interval
	for _, sub := range ds.Subs {
		if !sub.Enabled {
			continue
		}
		if err := sub.Span.Validate(); err != nil {
			return nil, fmt.Errorf("sub-interval %q: %w", sub.Name, err)
		}
		ivs = append(ivs, sub.Span)
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
	for i := 1; i < len(ivs); i++ {
		if ivs[i].Start < ivs[i-1].End {
			return nil, &InvalidIntervalError{
				Reason: fmt.Sprintf("sub-intervals %s and %s overlap", ivs[i-1], ivs[i]),
			}
		}
	}
	return ivs, nil
}

// FirstStart returns the earliest enabled contractual start.
// ok is false when every sub-interval is disabled.
func (ds DaySchedule) FirstStart() (start int, ok bool) {
	ivs, err := ds.EnabledIntervals()
	if err != nil || len(ivs) == 0 {
		return 0, false
	}
	return ivs[0].Start, true
}

// ContractedMinutes is the total length of enabled sub-intervals.
func (ds DaySchedule) ContractedMinutes() int {
	total := 0
	for _, sub := range ds.Subs {
		if sub.Enabled {
			total += sub.Span.Minutes()
		}
	}
	return total
}

// Enrich recomputes the per-sub-interval night/day split against the
// given window. Disabled sub-intervals are enriched too so admin
// screens can preview the effect of enabling them.
func (ds *DaySchedule) Enrich(nw NightWindow) {
	for i := range ds.Subs {
		sub := &ds.Subs[i]
		if sub.Span.Validate() != nil {
			sub.NightMinutes, sub.DayMinutes = 0, 0
			continue
		}
		sub.NightMinutes = nw.NightMinutes(sub.Span)
		sub.DayMinutes = sub.Span.Minutes() - sub.NightMinutes
	}
	ds.Enriched = true
}

// =============================================================================
// AREAS
// =============================================================================

// Area identifies one operational area; each area carries its own base
// schedule. The set is fixed by configuration, not user-extensible.
type Area string

const (
	AreaProduccion     Area = "produccion"
	AreaAdministracion Area = "administracion"
	AreaLogistica      Area = "logistica"
	AreaVigilancia     Area = "vigilancia"
)

// KnownAreas lists every configured area identifier.
func KnownAreas() []Area {
	return []Area{AreaProduccion, AreaAdministracion, AreaLogistica, AreaVigilancia}
}

// =============================================================================
// REGISTRY - per-area schedules + the global night window
// =============================================================================

// Registry holds the current area schedules and the single global
// night window. It is the explicit configuration handle the classifier
// reads from; there is no implicit default window anywhere else.
// Safe for concurrent readers; updates re-derive the enrichment cache.
type Registry struct {
	mu        sync.RWMutex
	schedules map[Area]DaySchedule
	night     NightWindow
}

// NewRegistry creates a registry with the given night window and no
// schedules configured yet.
func NewRegistry(night NightWindow) *Registry {
	return &Registry{
		schedules: make(map[Area]DaySchedule),
		night:     night,
	}
}

// NightWindow returns the current global night window.
func (r *Registry) NightWindow() NightWindow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.night
}

// Schedule returns the schedule for an area.
func (r *Registry) Schedule(area Area) (DaySchedule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.schedules[area]
	return ds, ok
}

// Update validates and stores a schedule for an area, enriching it
// against the current night window.
func (r *Registry) Update(area Area, ds DaySchedule) error {
	if _, err := ds.EnabledIntervals(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ds.Enrich(r.night)
	r.schedules[area] = ds
	return nil
}

// SetNightWindow replaces the global window and re-enriches every
// stored schedule, invalidating the previous cache in one step.
func (r *Registry) SetNightWindow(nw NightWindow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.night = nw
	for area, ds := range r.schedules {
		ds.Enrich(nw)
		r.schedules[area] = ds
	}
}

// Areas returns the configured areas in stable order.
func (r *Registry) Areas() []Area {
	r.mu.RLock()
	defer r.mu.RUnlock()
	areas := make([]Area, 0, len(r.schedules))
	for a := range r.schedules {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i] < areas[j] })
	return areas
}
