package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turno/payroll-engine/schedule"
)

// =============================================================================
// CLOCK PARSING
// =============================================================================

func TestParseClock_Valid(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"06:00": 360,
		"13:45": 825,
		"21:00": 1260,
		"23:59": 1439,
		"24:00": 1440,
	}
	for in, want := range cases {
		got, err := schedule.ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseClock_Invalid(t *testing.T) {
	for _, in := range []string{"", "8", "25:00", "12:60", "ab:cd", "12:3:4", "-1:00", "24:01"} {
		_, err := schedule.ParseClock(in)
		assert.ErrorIs(t, err, schedule.ErrInvalidInterval, in)
	}
}

func TestFormatClock_RoundTrip(t *testing.T) {
	for _, m := range []int{0, 1, 59, 60, 825, 1439} {
		parsed, err := schedule.ParseClock(schedule.FormatClock(m))
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

// =============================================================================
// INTERVAL ARITHMETIC
// =============================================================================

func TestInterval_Validate(t *testing.T) {
	// GIVEN: inverted, empty, and out-of-day ranges
	// THEN: all are rejected with ErrInvalidInterval
	bad := []schedule.Interval{
		{Start: 600, End: 600},
		{Start: 700, End: 600},
		{Start: -10, End: 60},
		{Start: 100, End: 1500},
	}
	for _, iv := range bad {
		assert.ErrorIs(t, iv.Validate(), schedule.ErrInvalidInterval, iv.String())
	}

	ok, err := schedule.NewInterval(480, 720)
	require.NoError(t, err)
	assert.Equal(t, 240, ok.Minutes())
}

func TestInterval_Overlap(t *testing.T) {
	a := schedule.Interval{Start: 480, End: 720} // 08:00-12:00
	assert.Equal(t, 240, a.Overlap(schedule.Interval{Start: 0, End: 1440}))
	assert.Equal(t, 60, a.Overlap(schedule.Interval{Start: 660, End: 800}))
	assert.Equal(t, 0, a.Overlap(schedule.Interval{Start: 720, End: 800}), "half-open: boundary does not overlap")
}

func TestInterval_Subtract(t *testing.T) {
	// GIVEN: a worked range 07:00-18:00 and contractual blocks
	//        08:00-12:00 and 13:45-17:00
	// THEN: the leftovers are 07:00-08:00, 12:00-13:45 and 17:00-18:00
	worked := schedule.Interval{Start: 420, End: 1080}
	contract := []schedule.Interval{
		{Start: 480, End: 720},
		{Start: 825, End: 1020},
	}

	left := worked.Subtract(contract)

	require.Len(t, left, 3)
	assert.Equal(t, schedule.Interval{Start: 420, End: 480}, left[0])
	assert.Equal(t, schedule.Interval{Start: 720, End: 825}, left[1])
	assert.Equal(t, schedule.Interval{Start: 1020, End: 1080}, left[2])
}

func TestInterval_Subtract_FullyCovered(t *testing.T) {
	worked := schedule.Interval{Start: 480, End: 720}
	left := worked.Subtract([]schedule.Interval{{Start: 400, End: 800}})
	assert.Empty(t, left)
}

// =============================================================================
// NIGHT WINDOW
// =============================================================================

func TestNightWindow_Wraparound(t *testing.T) {
	// GIVEN: the 21:00-06:00 window spanning midnight
	nw, err := schedule.NewNightWindow("21:00", "06:00")
	require.NoError(t, err)
	assert.True(t, nw.Wraps())

	// THEN: minutes on both sides of midnight match
	assert.True(t, nw.Contains(schedule.MustClock("22:00")))
	assert.True(t, nw.Contains(schedule.MustClock("05:59")))
	assert.True(t, nw.Contains(0))
	assert.False(t, nw.Contains(schedule.MustClock("06:00")))
	assert.False(t, nw.Contains(schedule.MustClock("12:00")))
	assert.False(t, nw.Contains(schedule.MustClock("20:59")))

	segs := nw.Segments()
	require.Len(t, segs, 2)
	assert.Equal(t, schedule.Interval{Start: 1260, End: 1440}, segs[0])
	assert.Equal(t, schedule.Interval{Start: 0, End: 360}, segs[1])
}

func TestNightWindow_NonWrapping(t *testing.T) {
	nw, err := schedule.NewNightWindow("18:00", "22:00")
	require.NoError(t, err)
	assert.False(t, nw.Wraps())
	assert.Equal(t, 120, nw.NightMinutes(schedule.Interval{Start: 1200, End: 1440}))
}

func TestNightWindow_DegenerateRejected(t *testing.T) {
	_, err := schedule.NewNightWindow("21:00", "21:00")
	assert.ErrorIs(t, err, schedule.ErrInvalidInterval)
}

// =============================================================================
// DAY SCHEDULES
// =============================================================================

func standardSchedule(t *testing.T) schedule.DaySchedule {
	t.Helper()
	ds, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: schedule.SubManana, Enabled: true, Span: schedule.Interval{Start: 480, End: 720}},
		schedule.SubInterval{Name: schedule.SubTarde, Enabled: true, Span: schedule.Interval{Start: 825, End: 1020}},
		schedule.SubInterval{Name: schedule.SubNoche, Enabled: false, Span: schedule.Interval{Start: 1320, End: 1440}},
	)
	require.NoError(t, err)
	return ds
}

func TestDaySchedule_EnabledIntervals_SortedAndFiltered(t *testing.T) {
	ds := standardSchedule(t)

	ivs, err := ds.EnabledIntervals()

	require.NoError(t, err)
	require.Len(t, ivs, 2, "disabled noche block is excluded")
	assert.Equal(t, 480, ivs[0].Start)
	assert.Equal(t, 825, ivs[1].Start)
	assert.Equal(t, 435, ds.ContractedMinutes())
}

func TestDaySchedule_OverlappingSubsRejected(t *testing.T) {
	_, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: "a", Enabled: true, Span: schedule.Interval{Start: 480, End: 800}},
		schedule.SubInterval{Name: "b", Enabled: true, Span: schedule.Interval{Start: 700, End: 900}},
	)
	assert.ErrorIs(t, err, schedule.ErrInvalidInterval)
}

func TestDaySchedule_OverlapAllowedWhenDisabled(t *testing.T) {
	// Disabled blocks do not participate in the non-overlap invariant.
	_, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: "a", Enabled: true, Span: schedule.Interval{Start: 480, End: 800}},
		schedule.SubInterval{Name: "b", Enabled: false, Span: schedule.Interval{Start: 700, End: 900}},
	)
	assert.NoError(t, err)
}

// =============================================================================
// ENRICHMENT CACHE
// =============================================================================

func TestEnrich_SplitsNightAndDay(t *testing.T) {
	// GIVEN: a surveillance block 20:00-24:00 and window 21:00-06:00
	ds, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: schedule.SubNoche, Enabled: true, Span: schedule.Interval{Start: 1200, End: 1440}},
	)
	require.NoError(t, err)
	nw, _ := schedule.NewNightWindow("21:00", "06:00")

	ds.Enrich(nw)

	// THEN: 21:00-24:00 is night, 20:00-21:00 is day
	require.True(t, ds.Enriched)
	assert.Equal(t, 180, ds.Subs[0].NightMinutes)
	assert.Equal(t, 60, ds.Subs[0].DayMinutes)
}

func TestRegistry_SetNightWindow_ReEnriches(t *testing.T) {
	// GIVEN: a registry enriched against 21:00-06:00
	nw1, _ := schedule.NewNightWindow("21:00", "06:00")
	reg := schedule.NewRegistry(nw1)
	ds, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: schedule.SubNoche, Enabled: true, Span: schedule.Interval{Start: 1200, End: 1440}},
	)
	require.NoError(t, err)
	require.NoError(t, reg.Update(schedule.AreaVigilancia, ds))

	got, ok := reg.Schedule(schedule.AreaVigilancia)
	require.True(t, ok)
	assert.Equal(t, 180, got.Subs[0].NightMinutes)

	// WHEN: the window moves to 22:00-06:00
	nw2, _ := schedule.NewNightWindow("22:00", "06:00")
	reg.SetNightWindow(nw2)

	// THEN: the cached split is re-derived, not left stale
	got, ok = reg.Schedule(schedule.AreaVigilancia)
	require.True(t, ok)
	assert.Equal(t, 120, got.Subs[0].NightMinutes)
	assert.Equal(t, 120, got.Subs[0].DayMinutes)
}
