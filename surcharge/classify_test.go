package surcharge_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/surcharge"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// officeSchedule: 08:00-12:00 + 13:45-17:00, the split office day.
func officeSchedule(t *testing.T) schedule.DaySchedule {
	t.Helper()
	ds, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: schedule.SubManana, Enabled: true, Span: iv(t, "08:00", "12:00")},
		schedule.SubInterval{Name: schedule.SubTarde, Enabled: true, Span: iv(t, "13:45", "17:00")},
	)
	require.NoError(t, err)
	return ds
}

// emptySchedule: every block disabled, as for an on-call-only area.
func emptySchedule(t *testing.T) schedule.DaySchedule {
	t.Helper()
	ds, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: schedule.SubManana, Enabled: false, Span: iv(t, "08:00", "12:00")},
	)
	require.NoError(t, err)
	return ds
}

func nightWindow(t *testing.T) schedule.NightWindow {
	t.Helper()
	nw, err := schedule.NewNightWindow("21:00", "06:00")
	require.NoError(t, err)
	return nw
}

func iv(t *testing.T, start, end string) schedule.Interval {
	t.Helper()
	out, err := schedule.ParseInterval(start, end)
	require.NoError(t, err)
	return out
}

// =============================================================================
// CATEGORY SELECTION
// =============================================================================

func TestClassify_OrdinaryDay_NoCategories(t *testing.T) {
	// GIVEN: working exactly the contracted hours on an ordinary day
	// THEN: nothing is surcharged
	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "08:00", "12:00"), iv(t, "13:45", "17:00")},
		officeSchedule(t), nightWindow(t), false,
	)
	require.NoError(t, err)
	assert.True(t, b.IsZero())
}

func TestClassify_DayOvertime(t *testing.T) {
	// GIVEN: staying 17:00-19:00 past the contracted afternoon
	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "13:45", "19:00")},
		officeSchedule(t), nightWindow(t), false,
	)
	require.NoError(t, err)
	assert.Equal(t, 120, b.ExtraDiurna)
	assert.Equal(t, 120, b.Total(), "only day overtime accrues")
}

func TestClassify_NightWraparound_FullyNight(t *testing.T) {
	// GIVEN: window 21:00-06:00 and worked 22:00-23:00
	// THEN: the whole hour is night overtime (no contracted block there)
	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "22:00", "23:00")},
		officeSchedule(t), nightWindow(t), false,
	)
	require.NoError(t, err)
	assert.Equal(t, 60, b.ExtraNocturna)
	assert.Equal(t, 60, b.Total())
}

func TestClassify_NightWraparound_SplitAtWindowEnd(t *testing.T) {
	// GIVEN: worked 05:00-07:00 against window 21:00-06:00
	// THEN: 05:00-06:00 is night, 06:00-07:00 is day (all overtime here)
	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "05:00", "07:00")},
		officeSchedule(t), nightWindow(t), false,
	)
	require.NoError(t, err)
	assert.Equal(t, 60, b.ExtraNocturna)
	assert.Equal(t, 60, b.ExtraDiurna)
}

func TestClassify_HolidayRegularHours(t *testing.T) {
	// GIVEN: the contracted morning worked on a festivo
	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "08:00", "12:00")},
		officeSchedule(t), nightWindow(t), true,
	)
	require.NoError(t, err)
	assert.Equal(t, 240, b.DominicalFestivo)
	assert.Equal(t, 240, b.Total())
}

func TestClassify_HolidayNightOvertime(t *testing.T) {
	// GIVEN: a festivo shift running 20:00-23:00, all outside contract
	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "20:00", "23:00")},
		officeSchedule(t), nightWindow(t), true,
	)
	require.NoError(t, err)
	assert.Equal(t, 60, b.ExtraDiurnaFestivo, "20:00-21:00 is festivo day overtime")
	assert.Equal(t, 120, b.ExtraNocturnaFestivo, "21:00-23:00 is festivo night overtime")
}

func TestClassify_RegularNightHours(t *testing.T) {
	// GIVEN: a schedule whose contracted block reaches into the night
	ds, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: schedule.SubNoche, Enabled: true, Span: iv(t, "18:00", "23:00")},
	)
	require.NoError(t, err)

	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "18:00", "23:00")},
		ds, nightWindow(t), false,
	)
	require.NoError(t, err)

	// 21:00-23:00 is regular night work: recargo, not overtime.
	assert.Equal(t, 120, b.RecargoNocturno)
	assert.Zero(t, b.ExtraNocturna)
	assert.Equal(t, 120, b.Total(), "18:00-21:00 regular day minutes carry no category")
}

func TestClassify_RegularNightOnHoliday(t *testing.T) {
	ds, err := schedule.NewDaySchedule(
		schedule.SubInterval{Name: schedule.SubNoche, Enabled: true, Span: iv(t, "21:00", "24:00")},
	)
	require.NoError(t, err)

	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "21:00", "24:00")},
		ds, nightWindow(t), true,
	)
	require.NoError(t, err)
	assert.Equal(t, 180, b.RecargoNocturnoFestivo)
}

func TestClassify_DisabledSchedule_AllOvertime(t *testing.T) {
	// GIVEN: an area with no enabled contractual hours
	// THEN: every worked minute is overtime
	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "08:00", "12:00")},
		emptySchedule(t), nightWindow(t), false,
	)
	require.NoError(t, err)
	assert.Equal(t, 240, b.ExtraDiurna)
}

func TestClassify_SingleCategoryWindow(t *testing.T) {
	// Worked interval entirely inside a single category window yields
	// exactly one non-zero entry.
	b, err := surcharge.Classify(
		[]schedule.Interval{iv(t, "22:00", "23:30")},
		emptySchedule(t), nightWindow(t), false,
	)
	require.NoError(t, err)
	assert.Equal(t, 90, b.ExtraNocturna)
	assert.Equal(t, 90, b.Total())
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestClassify_SumNeverExceedsWorked(t *testing.T) {
	// Sweep a spread of worked intervals and flags; the breakdown total
	// must never exceed the worked minutes.
	ds := officeSchedule(t)
	nw := nightWindow(t)
	cases := [][]schedule.Interval{
		{iv(t, "00:00", "24:00")},
		{iv(t, "06:00", "14:00"), iv(t, "18:00", "23:00")},
		{iv(t, "08:00", "08:01")},
		{iv(t, "20:59", "21:01")},
	}
	for _, worked := range cases {
		for _, holiday := range []bool{false, true} {
			b, err := surcharge.Classify(worked, ds, nw, holiday)
			require.NoError(t, err)
			assert.LessOrEqual(t, b.Total(), surcharge.TotalWorked(worked))
		}
	}
}

func TestClassify_HolidayAccountsForEveryMinute(t *testing.T) {
	// On a festivo every minute is surcharged one way or another, so
	// the total must equal the worked minutes exactly.
	worked := []schedule.Interval{iv(t, "06:00", "14:00"), iv(t, "18:00", "23:00")}
	b, err := surcharge.Classify(worked, officeSchedule(t), nightWindow(t), true)
	require.NoError(t, err)
	assert.Equal(t, surcharge.TotalWorked(worked), b.Total())
}

func TestClassify_RejectsInvalidInput(t *testing.T) {
	ds := officeSchedule(t)
	nw := nightWindow(t)

	_, err := surcharge.Classify([]schedule.Interval{{Start: 700, End: 600}}, ds, nw, false)
	assert.ErrorIs(t, err, schedule.ErrInvalidInterval, "inverted interval")

	_, err = surcharge.Classify(
		[]schedule.Interval{{Start: 480, End: 720}, {Start: 700, End: 800}},
		ds, nw, false,
	)
	assert.ErrorIs(t, err, schedule.ErrInvalidInterval, "overlapping worked intervals")
}

// =============================================================================
// LATENESS
// =============================================================================

func TestMissedMinutes_SkipsUnpaidGap(t *testing.T) {
	// GIVEN: contract 08:00-12:00 + 13:45-17:00 and arrival at 14:30
	// THEN: missed = 240 (whole morning) + 45 (13:45-14:30) = 285,
	//       not the naive 14:30-08:00 = 390 which counts the lunch gap
	missed, err := surcharge.MissedMinutes(officeSchedule(t), schedule.MustClock("14:30"))
	require.NoError(t, err)
	assert.Equal(t, 285, missed)
}

func TestMissedMinutes_OnTimeOrEarly(t *testing.T) {
	ds := officeSchedule(t)
	for _, arrival := range []string{"07:00", "08:00"} {
		missed, err := surcharge.MissedMinutes(ds, schedule.MustClock(arrival))
		require.NoError(t, err)
		assert.Zero(t, missed, arrival)
	}
}

func TestMissedMinutes_MidMorning(t *testing.T) {
	missed, err := surcharge.MissedMinutes(officeSchedule(t), schedule.MustClock("09:15"))
	require.NoError(t, err)
	assert.Equal(t, 75, missed)
}

func TestMissedMinutes_EmptySchedule(t *testing.T) {
	missed, err := surcharge.MissedMinutes(emptySchedule(t), schedule.MustClock("10:00"))
	require.NoError(t, err)
	assert.Zero(t, missed)
}

// =============================================================================
// VALUATION
// =============================================================================

func TestValuate_AppliesFactors(t *testing.T) {
	// GIVEN: one hour of extra diurna and one of recargo nocturno at
	//        a 6000/hour rate
	b := surcharge.Breakdown{ExtraDiurna: 60, RecargoNocturno: 60}
	rate := decimal.NewFromInt(6000)

	got := surcharge.Valuate(b, rate)

	// 6000*1.25 + 6000*0.35 = 7500 + 2100
	assert.True(t, got.Equal(decimal.NewFromInt(9600)), got.String())
}

func TestValuate_RoundsToCents(t *testing.T) {
	b := surcharge.Breakdown{ExtraNocturna: 7}
	rate := decimal.RequireFromString("6333.33")

	got := surcharge.Valuate(b, rate)

	// 6333.33/60*7*1.75 = 1293.054875 -> 1293.05
	assert.Equal(t, int32(-2), got.Exponent())
	assert.True(t, got.Equal(decimal.RequireFromString("1293.05")), got.String())
}

func TestValuateByCategory_AllKeysPresent(t *testing.T) {
	lines := surcharge.ValuateByCategory(surcharge.Breakdown{}, decimal.NewFromInt(6000))
	assert.Len(t, lines, 7)
	for c, v := range lines {
		assert.True(t, v.IsZero(), string(c))
	}
}
