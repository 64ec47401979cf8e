package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turno/payroll-engine/factory"
	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/surcharge"
)

func TestParseSchedule(t *testing.T) {
	raw := []byte(`{
		"area": "produccion",
		"subs": {
			"manana": {"enabled": true, "start": "08:00", "end": "12:00"},
			"tarde":  {"enabled": true, "start": "13:45", "end": "17:00"},
			"noche":  {"enabled": false, "start": "22:00", "end": "24:00"}
		}
	}`)

	area, ds, err := factory.ParseSchedule(raw)

	require.NoError(t, err)
	assert.Equal(t, schedule.AreaProduccion, area)
	ivs, err := ds.EnabledIntervals()
	require.NoError(t, err)
	require.Len(t, ivs, 2)
	assert.Equal(t, schedule.MustClock("08:00"), ivs[0].Start)
	assert.Equal(t, schedule.MustClock("13:45"), ivs[1].Start)
}

func TestParseSchedule_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing area":     `{"subs": {"manana": {"enabled": true, "start": "08:00", "end": "12:00"}}}`,
		"inverted range":   `{"area": "produccion", "subs": {"manana": {"enabled": true, "start": "12:00", "end": "08:00"}}}`,
		"overlapping subs": `{"area": "produccion", "subs": {"a": {"enabled": true, "start": "08:00", "end": "12:00"}, "b": {"enabled": true, "start": "11:00", "end": "14:00"}}}`,
		"malformed json":   `{"area": `,
	}
	for name, raw := range cases {
		_, _, err := factory.ParseSchedule([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestParseNightWindow(t *testing.T) {
	nw, err := factory.ParseNightWindow([]byte(`{"start": "21:00", "end": "06:00"}`))
	require.NoError(t, err)
	assert.True(t, nw.Wraps())
	assert.Equal(t, schedule.MustClock("21:00"), nw.Start)
}

// =============================================================================
// LEGACY BREAKDOWN NORMALIZATION
// =============================================================================

func TestNormalizeBreakdown_Canonical(t *testing.T) {
	raw := []byte(`{
		"extra_diurna": 60, "extra_nocturna": 0, "extra_diurna_festivo": 0,
		"extra_nocturna_festivo": 0, "recargo_nocturno": 30,
		"recargo_nocturno_festivo": 0, "dominical_festivo": 0
	}`)

	b, err := factory.NormalizeBreakdown(raw)

	require.NoError(t, err)
	assert.Equal(t, surcharge.Breakdown{ExtraDiurna: 60, RecargoNocturno: 30}, b)
}

func TestNormalizeBreakdown_LegacyVariants(t *testing.T) {
	// Historical rows nest the categories under one of three keys and
	// may omit zero categories entirely.
	variants := []string{
		`{"breakdown": {"extra_diurna": 45}}`,
		`{"flatBreakdown": {"extra_diurna": 45}}`,
		`{"breakdown_legacy": {"extra_diurna": 45}}`,
	}
	for _, raw := range variants {
		b, err := factory.NormalizeBreakdown([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, 45, b.ExtraDiurna, raw)
		assert.Zero(t, b.RecargoNocturno, "absent categories normalize to zero")
	}
}

func TestNormalizeBreakdown_IgnoresRetiredKeys(t *testing.T) {
	b, err := factory.NormalizeBreakdown([]byte(`{"breakdown": {"extra_diurna": 10, "recargo_antiguo": 99}}`))
	require.NoError(t, err)
	assert.Equal(t, 10, b.ExtraDiurna)
	assert.Equal(t, 10, b.Total())
}

func TestNormalizeBreakdown_RejectsNegative(t *testing.T) {
	_, err := factory.NormalizeBreakdown([]byte(`{"extra_diurna": -5}`))
	assert.Error(t, err)
}
