/*
Package factory provides JSON to Go schedule-configuration conversion.

PURPOSE:
  Converts JSON configuration into schedule.DaySchedule and
  schedule.NightWindow values, and normalizes historical breakdown
  payloads into the canonical seven-field Breakdown. Administrators
  configure area schedules as JSON; the factory turns them into the
  validated Go structs the classifier works with.

JSON SCHEMA (area schedule):
  {
    "area": "produccion",
    "subs": {
      "manana": {"enabled": true, "start": "08:00", "end": "12:00"},
      "tarde":  {"enabled": true, "start": "13:45", "end": "17:00"},
      "noche":  {"enabled": false, "start": "22:00", "end": "24:00"}
    }
  }

LEGACY BREAKDOWNS:
  Persisted rows historically carried the breakdown under one of
  several keys ("breakdown", "flatBreakdown", "breakdown_legacy"),
  sometimes with partial category sets. NormalizeBreakdown is the
  one-time migration step: it accepts any of the shapes and returns
  the canonical structure with all seven categories present. New code
  writes only the canonical shape.

SEE ALSO:
  - schedule:  the target types
  - surcharge: the canonical Breakdown
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/surcharge"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of one area's base schedule.
type ScheduleJSON struct {
	Area string                      `json:"area"`
	Subs map[string]SubIntervalJSON `json:"subs"`
}

// SubIntervalJSON is one named contractual block.
type SubIntervalJSON struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// NightWindowJSON is the global night-window configuration.
type NightWindowJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ParseSchedule converts a JSON document into a validated DaySchedule
// keyed by area.
func ParseSchedule(raw []byte) (schedule.Area, schedule.DaySchedule, error) {
	var doc ScheduleJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", schedule.DaySchedule{}, fmt.Errorf("malformed schedule config: %w", err)
	}
	if doc.Area == "" {
		return "", schedule.DaySchedule{}, fmt.Errorf("schedule config missing area")
	}
	ds, err := BuildSchedule(doc.Subs)
	if err != nil {
		return "", schedule.DaySchedule{}, err
	}
	return schedule.Area(doc.Area), ds, nil
}

// BuildSchedule converts the sub-interval map into a validated
// DaySchedule. Names come back in deterministic (sorted) order.
func BuildSchedule(subs map[string]SubIntervalJSON) (schedule.DaySchedule, error) {
	names := make([]string, 0, len(subs))
	for name := range subs {
		names = append(names, name)
	}
	sort.Strings(names)

	built := make([]schedule.SubInterval, 0, len(subs))
	for _, name := range names {
		cfg := subs[name]
		span, err := schedule.ParseInterval(cfg.Start, cfg.End)
		if err != nil {
			return schedule.DaySchedule{}, fmt.Errorf("sub-interval %q: %w", name, err)
		}
		built = append(built, schedule.SubInterval{
			Name:    name,
			Enabled: cfg.Enabled,
			Span:    span,
		})
	}
	return schedule.NewDaySchedule(built...)
}

// ParseNightWindow converts the night-window config document.
func ParseNightWindow(raw []byte) (schedule.NightWindow, error) {
	var doc NightWindowJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return schedule.NightWindow{}, fmt.Errorf("malformed night window config: %w", err)
	}
	return schedule.NewNightWindow(doc.Start, doc.End)
}

// =============================================================================
// LEGACY BREAKDOWN NORMALIZATION
// =============================================================================

// legacy key variants, checked in order; the first present wins.
var legacyBreakdownKeys = []string{"breakdown", "flatBreakdown", "breakdown_legacy"}

// NormalizeBreakdown accepts a persisted row in any historical shape
// and returns the canonical Breakdown. Three shapes occur in old data:
//
//  1. the canonical shape itself: {"extra_diurna": 60, ...}
//  2. nested under a variant key: {"flatBreakdown": {...}}
//  3. nested with partial categories (absent means zero)
//
// Unknown category keys are ignored rather than rejected; old rows
// carry retired keys.
func NormalizeBreakdown(raw []byte) (surcharge.Breakdown, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return surcharge.Breakdown{}, fmt.Errorf("malformed breakdown payload: %w", err)
	}

	payload := raw
	for _, key := range legacyBreakdownKeys {
		if nested, ok := doc[key]; ok {
			payload = nested
			break
		}
	}

	var fields map[string]int
	if err := json.Unmarshal(payload, &fields); err != nil {
		return surcharge.Breakdown{}, fmt.Errorf("malformed breakdown payload: %w", err)
	}
	for key, v := range fields {
		if v < 0 {
			return surcharge.Breakdown{}, fmt.Errorf("breakdown category %q is negative", key)
		}
	}
	return surcharge.Breakdown{
		ExtraDiurna:            fields[string(surcharge.ExtraDiurna)],
		ExtraNocturna:          fields[string(surcharge.ExtraNocturna)],
		ExtraDiurnaFestivo:     fields[string(surcharge.ExtraDiurnaFestivo)],
		ExtraNocturnaFestivo:   fields[string(surcharge.ExtraNocturnaFestivo)],
		RecargoNocturno:        fields[string(surcharge.RecargoNocturno)],
		RecargoNocturnoFestivo: fields[string(surcharge.RecargoNocturnoFestivo)],
		DominicalFestivo:       fields[string(surcharge.DominicalFestivo)],
	}, nil
}
