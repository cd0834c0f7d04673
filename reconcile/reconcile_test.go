package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tangled.org/beats/clock"
	"tangled.org/beats/timesheet"
)

func testEngine() *Engine {
	return New(Config{
		WorkDay:      clock.Offset{Hours: 8},
		LunchAt:      "11:30",
		LunchMinutes: 60,
		Tolerance:    10,
	})
}

func punches(times ...string) timesheet.PunchSet {
	p := make(timesheet.PunchSet, len(times))
	for i, t := range times {
		p[i] = clock.Parse(t)
	}
	return p
}

func lines(preds []Prediction) []string {
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = p.String()
	}
	return out
}

func TestSuggestEndTimeOnOvertime(t *testing.T) {
	got := testEngine().Reconcile(punches("07:30", "11:30", "12:30", "16:41"), ModeFull)
	require.Len(t, got, 1)
	assert.Equal(t, KindCorrection, got[0].Kind)
	assert.Contains(t, got[0].Line, "07:30 11:30 12:30 *16:30*")
}

func TestSuggestEndTimeOnUndertime(t *testing.T) {
	got := testEngine().Reconcile(punches("07:30", "11:30", "12:30", "16:19"), ModeFull)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Line, "07:30 11:30 12:30 *16:30*")
}

func TestSuggestEndTimeOnMiss(t *testing.T) {
	got := testEngine().Reconcile(punches("07:30", "11:30", "12:30"), ModeFull)
	assert.Contains(t, lines(got), "07:30 11:30 12:30 *16:30*")
}

func TestSuggestStartTimeOnMiss(t *testing.T) {
	got := testEngine().Reconcile(punches("11:30", "12:30", "16:30"), ModeFull)
	require.Len(t, got, 2)
	assert.Equal(t, KindEntry, got[1].Kind)
	assert.Equal(t, "*07:30* 11:30 12:30 16:30", got[1].Line)
}

func TestWithinToleranceHasNoCorrection(t *testing.T) {
	tests := []struct {
		name string
		exit string
	}{
		{name: "exact", exit: "16:30"},
		{name: "upper edge", exit: "16:40"},
		{name: "lower edge", exit: "16:20"},
		{name: "a bit late", exit: "16:35"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testEngine().Reconcile(punches("07:30", "11:30", "12:30", tt.exit), ModeFull)
			assert.Empty(t, got)
		})
	}
}

func TestCorrectionTrimsExcess(t *testing.T) {
	e := testEngine()
	for _, exit := range []string{"17:16", "17:40", "18:30"} {
		p := punches("08:00", "12:15", "13:20", exit)
		worked := Worked(p)
		excess := worked.Sub(clock.Offset{Hours: 8})

		got := e.Reconcile(p, ModeToday)
		require.Len(t, got, 1, exit)
		assert.Equal(t, p[3].Sub(excess), got[0].At, exit)
	}
}

func TestTodayModeCases(t *testing.T) {
	e := testEngine()

	assert.Empty(t, e.Reconcile(punches(), ModeToday))
	assert.Empty(t, e.Reconcile(punches("07:30"), ModeToday))

	lunch := e.Reconcile(punches("07:30", "11:40"), ModeToday)
	require.Len(t, lunch, 1)
	assert.Equal(t, KindReturn, lunch[0].Kind)
	assert.Equal(t, "12:40", lunch[0].At.String())
	assert.Equal(t, "You can come back from lunch at 12:40 (±10)", lunch[0].Line)

	leave := e.Reconcile(punches("07:30", "11:30", "12:30"), ModeToday)
	require.Len(t, leave, 1)
	assert.Equal(t, "You can leave at 16:30 (±10)", leave[0].Line)

	assert.Empty(t, e.Reconcile(punches("07:30", "11:30", "12:30", "16:30", "17:00"), ModeToday))
}

func TestFullModeIgnoresShortDays(t *testing.T) {
	e := testEngine()
	assert.Empty(t, e.Reconcile(punches("07:30"), ModeFull))
	assert.Empty(t, e.Reconcile(punches("07:30", "11:30"), ModeFull))
}

func TestInvalidPunchesAreAbsent(t *testing.T) {
	p := timesheet.PunchSet{clock.Parse("07:30"), clock.Parse("bogus"), clock.Parse("11:30"), clock.Parse("12:30")}
	got := testEngine().Reconcile(p, ModeToday)
	require.Len(t, got, 1)
	assert.Equal(t, KindExit, got[0].Kind)
	assert.Equal(t, "16:30", got[0].At.String())
}

func TestExitPredictionIgnoresLunchReturnOffset(t *testing.T) {
	e := testEngine()
	for _, back := range []string{"12:00", "12:47", "13:15"} {
		p := punches("07:45", "11:50", back)
		got := e.Reconcile(p, ModeToday)
		require.Len(t, got, 1)

		remaining := clock.Offset{Hours: 8}.Sub(clock.Diff(p[1], p[0]))
		assert.Equal(t, p[2].Add(remaining), got[0].At, back)
	}
}

func TestPredictionsAreInverses(t *testing.T) {
	exact := New(Config{WorkDay: clock.Offset{Hours: 8}, Tolerance: 0})
	days := [][]string{
		{"07:30", "11:30", "12:30"},
		{"08:10", "12:05", "13:02"},
		{"09:00", "12:45", "14:15"},
		{"06:55", "10:20", "13:00"},
	}

	for _, d := range days {
		p := punches(d...)
		got := exact.Reconcile(p, ModeFull)
		require.Len(t, got, 2)

		withExit := append(append(timesheet.PunchSet{}, p...), got[0].At)
		assert.Equal(t, 8*60, Worked(withExit).TotalMinutes(), d)
		assert.Empty(t, exact.Reconcile(withExit, ModeFull), d)

		withEntry := append(timesheet.PunchSet{got[1].At}, p...)
		assert.Equal(t, 8*60, Worked(withEntry).TotalMinutes(), d)
		assert.Empty(t, exact.Reconcile(withEntry, ModeFull), d)
	}
}

func TestWorkedNeedsFourPunches(t *testing.T) {
	assert.Equal(t, clock.Offset{}, Worked(punches("07:30", "11:30")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "correction", KindCorrection.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
