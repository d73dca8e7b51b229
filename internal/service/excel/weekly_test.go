package excel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbsdash/internal/model"
	"wbsdash/internal/service/excel"
	"wbsdash/internal/workbook"
)

func pointAt(t *testing.T, points []model.WeeklyPoint, week time.Time) model.WeeklyPoint {
	t.Helper()
	for _, p := range points {
		if p.WeekDate.Equal(week) {
			return p
		}
	}
	t.Fatalf("week %s not in series", week.Format("2006-01-02"))
	return model.WeeklyPoint{}
}

func TestWeeklyProgressRemainingCarry(t *testing.T) {
	wb := threeTableWorkbook([]any{10, 30, 50, 80}, []any{20, 45}, []any{20, 30, 40})
	res := newEngine(t).BuildWeeklyProgress(wb, " A-1 ", date(2025, 2, 3), nil)
	info := res.Info

	assert.Equal(t, model.StatusOK, info.Status)
	assert.Equal(t, "A-1", info.ActivityID)
	assert.Equal(t, "2025-02-03", info.TargetWeek)
	assert.Equal(t, "2025-01-27", info.PlannedStartWeek)
	assert.Equal(t, "2025-02-17", info.PlannedEndWeek)
	assert.Equal(t, "2025-02-17", info.AvailableEndWeek)
	assert.Equal(t, 2, info.WeeksBefore)
	assert.Equal(t, 2, info.WeeksAfter)
	require.NotNil(t, info.BudgetedUnits)
	assert.Equal(t, 100.0, *info.BudgetedUnits)
	assert.Len(t, info.Tables, 3)
	assert.Empty(t, info.SourceErrors)

	require.Len(t, res.Points, 5)
	first := res.Points[0]
	assert.Equal(t, date(2025, 1, 20), first.WeekDate)
	assert.True(t, first.IsBaseline)
	assert.Equal(t, "2025-W04", first.Week)
	assert.Equal(t, "20-Jan-25", first.WeekLabel)
	require.NotNil(t, first.Planned)
	assert.Equal(t, 0.0, *first.Planned)
	assert.Equal(t, 0.0, *first.PlannedCum)
	assert.Nil(t, first.Actual)

	cur := pointAt(t, res.Points, date(2025, 2, 3))
	assert.True(t, cur.IsCurrent)
	require.NotNil(t, cur.ActualCum)
	assert.InDelta(t, 45.0, *cur.ActualCum, 1e-9, "current week reads Cum Actual Units")
	assert.InDelta(t, 25.0, *cur.Actual, 1e-9)
	assert.InDelta(t, 45.0, *cur.ActualCumActual, 1e-9)
	assert.InDelta(t, 45.0, *cur.ActualCumUnits, 1e-9)
	assert.Nil(t, cur.ForecastCumUnits)
	assert.Equal(t, "Actual!E2", cur.ActualWeekCell.String())

	next := pointAt(t, res.Points, date(2025, 2, 10))
	require.NotNil(t, next.ActualCum)
	assert.InDelta(t, 50.0, *next.ActualCum, 1e-9, "current-week Remaining is carried into the next week")
	assert.InDelta(t, 5.0, *next.Actual, 1e-9)
	assert.Nil(t, next.ActualCumActual)
	assert.Nil(t, next.ActualCumUnits)
	assert.InDelta(t, 50.0, *next.ForecastCumUnits, 1e-9)
	assert.Equal(t, "Remaining!E2", next.ForecastWeekCell.String())
	assert.Contains(t, next.ActualCumTip, "Cum Remaining Early Units")
	assert.Contains(t, next.ActualCumTip, "Remaining!D2")

	last := pointAt(t, res.Points, date(2025, 2, 17))
	assert.Nil(t, last.Actual)
	assert.Equal(t, "?", last.ActualDisplay)
	assert.Contains(t, last.ActualTip, "week value decreased vs previous week")
	assert.Contains(t, info.Errors, "actual 2025-02-17: week value decreased vs previous week")
}

func TestWeeklyProgressPlannedSeries(t *testing.T) {
	wb := threeTableWorkbook([]any{10, 30, 50, 80}, []any{20, 45}, []any{20, 30, 40})
	res := newEngine(t).BuildWeeklyProgress(wb, "A-1", date(2025, 2, 3), nil)

	wantPlanned := []float64{0, 10, 20, 20, 30}
	wantCum := []float64{0, 10, 30, 50, 80}
	sum := 0.0
	for i, p := range res.Points {
		require.NotNil(t, p.Planned, p.Week)
		require.NotNil(t, p.PlannedCum, p.Week)
		assert.InDelta(t, wantPlanned[i], *p.Planned, 1e-9, p.Week)
		assert.InDelta(t, wantCum[i], *p.PlannedCum, 1e-9, p.Week)
		assert.GreaterOrEqual(t, *p.Planned, 0.0)

		sum += *p.Planned
		assert.InDelta(t, *p.PlannedCum, sum, 1e-6, "planned deltas add up to the cumulative curve")
	}

	p := pointAt(t, res.Points, date(2025, 1, 27))
	assert.Equal(t, "10.00%", p.PlannedDisplay)
	assert.Equal(t, "Planned cum % = Cum Budgeted Units (2025-01-27) / Budgeted Units | Cells: Budgeted!D2, Budgeted!B2", p.PlannedCumTip)
}

func TestWeeklyPlannedCumMatchesSchedule(t *testing.T) {
	wb := threeTableWorkbook([]any{10, 30, 50, 80}, []any{20, 45}, []any{20, 30, 40})
	e := newEngine(t)
	today := date(2025, 2, 5)

	lookup := e.BuildScheduleLookup(wb, today, nil)
	res := e.BuildWeeklyProgress(wb, "A-1", today, nil)

	entry, ok := lookup.Get("A-1")
	require.True(t, ok)
	require.NotNil(t, entry.Value)
	cur := pointAt(t, res.Points, date(2025, 2, 3))
	require.NotNil(t, cur.PlannedCum)
	assert.InDelta(t, *entry.Value, *cur.PlannedCum, 1e-9)
}

func TestWeeklyProgressNegativePlannedDelta(t *testing.T) {
	wb := workbook.New(assignmentSheet("Budgeted", excel.MarkerCumBudgeted,
		[]time.Time{date(2025, 1, 6), date(2025, 1, 13), date(2025, 1, 20)},
		map[string][]any{"A-1": {100, 10, 8, 20}}, "A-1"))

	res := newEngine(t).BuildWeeklyProgress(wb, "A-1", date(2025, 2, 3), nil)
	require.Len(t, res.Points, 4)

	w1 := pointAt(t, res.Points, date(2025, 1, 13))
	w2 := pointAt(t, res.Points, date(2025, 1, 20))
	w3 := pointAt(t, res.Points, date(2025, 1, 27))

	assert.InDelta(t, 10.0, *w1.Planned, 1e-9)
	assert.Nil(t, w2.Planned)
	assert.Equal(t, "?", w2.PlannedDisplay)
	assert.Contains(t, w2.PlannedTip, "week value decreased vs previous week")
	require.NotNil(t, w2.PlannedCum)
	assert.InDelta(t, 8.0, *w2.PlannedCum, 1e-9)
	require.NotNil(t, w3.Planned)
	assert.InDelta(t, 12.0, *w3.Planned, 1e-9)
	assert.Contains(t, res.Info.Errors, "planned 2025-01-20: week value decreased vs previous week")

	assert.Equal(t, model.StatusOK, res.Info.Status)
	assert.Contains(t, res.Info.SourceErrors, model.SourceActualPast)
	assert.Contains(t, res.Info.SourceErrors, model.SourceActualFuture)
	assert.Contains(t, w1.ActualTip, "Actual unavailable")
}

func TestWeeklyProgressOutsideBaselineRange(t *testing.T) {
	wb := threeTableWorkbook([]any{10, 30, 50, 80}, []any{20, 45}, []any{20, 30, 40, 60})
	// Remaining 多一周：2025-02-24 超出计划周范围
	wb.Sheets[3] = assignmentSheet("Remaining", excel.MarkerCumRemaining,
		[]time.Time{date(2025, 2, 3), date(2025, 2, 10), date(2025, 2, 17), date(2025, 2, 24)},
		map[string][]any{"A-1": {100, 20, 30, 55, 90}}, "A-1")

	res := newEngine(t).BuildWeeklyProgress(wb, "A-1", date(2025, 2, 3), nil)
	p := pointAt(t, res.Points, date(2025, 2, 24))

	require.NotNil(t, p.Planned)
	assert.Equal(t, 0.0, *p.Planned)
	assert.Equal(t, "outside baseline date range", p.PlannedTip)
	require.NotNil(t, p.PlannedCum)
	assert.InDelta(t, 80.0, *p.PlannedCum, 1e-9)
	require.NotNil(t, p.ActualCum)
	assert.InDelta(t, 90.0, *p.ActualCum, 1e-9)
	assert.Equal(t, "2025-02-24", res.Info.AvailableEndWeek)
}

func TestWeeklyProgressRemainingMisaligned(t *testing.T) {
	wb := threeTableWorkbook([]any{10, 30, 50, 80}, []any{20, 45}, []any{20, 30, 40})
	wb.Sheets[3] = assignmentSheet("Remaining", excel.MarkerCumRemaining,
		[]time.Time{date(2025, 2, 10), date(2025, 2, 17)},
		map[string][]any{"A-1": {100, 60, 70}}, "A-1")

	res := newEngine(t).BuildWeeklyProgress(wb, "A-1", date(2025, 2, 3), nil)
	assert.Contains(t, res.Info.Errors, "Remaining table does not start at the current week (first week 2025-02-10, current week 2025-02-03)")

	p := pointAt(t, res.Points, date(2025, 2, 10))
	assert.InDelta(t, 60.0, *p.ActualCum, 1e-9)
}

func TestWeeklyProgressActivityNotFound(t *testing.T) {
	wb := threeTableWorkbook([]any{10, 30, 50, 80}, []any{20, 45}, []any{20, 30, 40})
	res := newEngine(t).BuildWeeklyProgress(wb, "Z-9", date(2025, 2, 3), nil)

	assert.Equal(t, model.StatusActivityNotFound, res.Info.Status)
	assert.Len(t, res.Info.SourceErrors, 3)
	require.NotEmpty(t, res.Points)
	for _, p := range res.Points {
		if p.IsBaseline {
			continue
		}
		assert.Nil(t, p.PlannedCum, p.Week)
		assert.Nil(t, p.ActualCum, p.Week)
		assert.Equal(t, "?", p.ActualCumDisplay, p.Week)
		assert.Contains(t, p.ActualTip, "not found", p.Week)
	}
}

func TestWeeklyProgressMissingTable(t *testing.T) {
	res := newEngine(t).BuildWeeklyProgress(workbook.New(workbook.NewSheet("S", nil)), "A-1", date(2025, 2, 3), nil)
	assert.Equal(t, model.StatusMissingTable, res.Info.Status)
	assert.Empty(t, res.Points)
}
