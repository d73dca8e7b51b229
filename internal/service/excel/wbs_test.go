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

func TestExtractAllWBSSingleLeaf(t *testing.T) {
	e := newEngine(t)
	wb := scenarioOneWorkbook()
	lookup := e.BuildScheduleLookup(wb, date(2025, 2, 3), nil)

	res := e.ExtractAllWBS(wb, &lookup, nil)
	assert.Equal(t, model.StatusOK, res.Status)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, "Summary", res.Tables[0].Sheet)
	assert.Equal(t, "A1:G2", res.Tables[0].Range)

	root := res.Tables[0].WBS
	require.NotNil(t, root)
	assert.Equal(t, 1, root.Level)
	assert.Equal(t, "A-1 - Foundation", root.Label)
	assert.Empty(t, root.Children)

	m := root.Metrics
	assert.Equal(t, "10-Feb-25", m.PlannedFinishDisplay)
	assert.Equal(t, "12-Feb-25", m.ForecastFinishDisplay)
	assert.Equal(t, "Planned finish = BL Project Finish | Cells: Summary!C2", m.PlannedFinishTip)
	require.NotNil(t, m.Schedule)
	assert.InDelta(t, 70.0, *m.Schedule, 1e-9)
	require.NotNil(t, m.Earned)
	assert.InDelta(t, 75.0, *m.Earned, 1e-9)
	assert.Equal(t, "75.00%", m.EarnedDisplay)
	assert.Equal(t, "+5.00%", m.VarianceDisplay)
	assert.Equal(t, "Variance % = Earned % - Schedule % | Cells: Summary!E2, Assignments!E2, Assignments!B2", m.VarianceTip)
	assert.Equal(t, "+5.00%", m.ImpactDisplay, "root impact equals its own variance")
	assert.Equal(t, "2d", m.SlipDisplay)
	require.NotNil(t, m.Slip)
	assert.Equal(t, 2, *m.Slip)
}

func TestExtractAllWBSHierarchy(t *testing.T) {
	res := newEngine(t).ExtractAllWBS(hierarchyWorkbook(), nil, nil)
	require.Len(t, res.Tables, 1)

	root := res.Tables[0].WBS
	require.NotNil(t, root)
	assert.Equal(t, "P1", root.ActivityID)
	assert.Equal(t, 1, root.Level)
	require.Len(t, root.Children, 2)

	p11 := root.Children[0]
	assert.Equal(t, "P1.1", p11.ActivityID)
	assert.Equal(t, 2, p11.Level)
	require.Len(t, p11.Children, 1)
	assert.Equal(t, "P1.1.a", p11.Children[0].ActivityID)
	assert.Equal(t, 3, p11.Children[0].Level)

	p12 := root.Children[1]
	assert.Equal(t, "P1.2", p12.ActivityID)
	assert.Equal(t, 2, p12.Level)
	assert.Empty(t, p12.Children)

	// 没有资源分配表时进度缺失
	assert.Equal(t, model.StatusMissingTable, res.Schedule.Status)
	assert.Equal(t, "?", p12.Metrics.ScheduleDisplay)
	assert.Equal(t, "?", p12.Metrics.VarianceDisplay)
	assert.Equal(t, "?", p12.Metrics.ImpactDisplay)
	assert.Equal(t, "20.00%", p12.Metrics.EarnedDisplay)
	assert.Same(t, p11.Children[0], root.Find("P1.1.a"))
}

func TestBuildTreeImpactUsesRootBudget(t *testing.T) {
	wb := hierarchyWorkbook()
	wb.Sheets = append(wb.Sheets, assignmentSheet("RA", excel.MarkerCumBudgeted, []time.Time{date(2025, 1, 27)},
		map[string][]any{
			"P1":     {1000, 400},
			"P1.1":   {300, 250},
			"P1.1.a": {100, 100},
			"P1.2":   {700, 210},
		}, "P1", "P1.1", "P1.1.a", "P1.2"))

	res := newEngine(t).ExtractAllWBS(wb, nil, nil)
	require.Len(t, res.Tables, 1)
	assert.Empty(t, res.Schedule.Errors)

	p12 := res.Tables[0].WBS.Find("P1.2")
	require.NotNil(t, p12)
	m := p12.Metrics
	// schedule 30%, earned 20% => variance -10%, impact = 700/1000 * -10
	assert.InDelta(t, 30.0, *m.Schedule, 1e-9)
	assert.InDelta(t, -10.0, *m.Variance, 1e-9)
	require.NotNil(t, m.Impact)
	assert.InDelta(t, -7.0, *m.Impact, 1e-9)
	assert.Equal(t, "-7.00%", m.ImpactDisplay)
	assert.Contains(t, m.ImpactTip, "RA!B5")
	assert.Contains(t, m.ImpactTip, "RA!B2")
}

func TestBuildTreeSecondTopLevelAttachesToRoot(t *testing.T) {
	rows := []model.ActivityRow{
		{ActivityID: "A", DisplayLabel: "A", Indent: 0},
		{ActivityID: "A.1", DisplayLabel: "A.1", Indent: 2},
		{ActivityID: "B", DisplayLabel: "B", Indent: 0},
	}
	root := excel.BuildTree(rows, nil)
	require.NotNil(t, root)
	assert.Equal(t, "A", root.ActivityID)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "B", root.Children[1].ActivityID)
	assert.Equal(t, 1, root.Children[1].Level)
	assert.Equal(t, "Schedule unavailable: no schedule lookup", root.Metrics.ScheduleTip)

	assert.Nil(t, excel.BuildTree(nil, nil))
}

func TestExtractAllWBSNoSummary(t *testing.T) {
	wb := workbook.New(assignmentSheet("RA", excel.MarkerCumBudgeted, []time.Time{date(2025, 1, 27)},
		map[string][]any{"A-1": {100, 70}}, "A-1"))
	res := newEngine(t).ExtractAllWBS(wb, nil, nil)
	assert.Equal(t, model.StatusMissingTable, res.Status)
	assert.Empty(t, res.Tables)
}
