package excel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbsdash/internal/model"
	"wbsdash/internal/workbook"
)

func hierarchyWorkbook() *workbook.Workbook {
	return workbook.New(workbook.NewSheet("WBS", [][]any{
		summaryHeader,
		{"P1", "Project", date(2025, 6, 30), date(2025, 7, 2), 0.5, 2, 1000},
		{"  P1.1", "Design", date(2025, 3, 31), date(2025, 3, 31), 0.9, 0, 300},
		{"    P1.1.a", "Drawings", date(2025, 2, 28), date(2025, 3, 3), 1, 3, 100},
		{"  P1.2", "Build", date(2025, 6, 30), date(2025, 7, 2), 0.2, 2, 700},
	}))
}

func TestPreviewRowsLevels(t *testing.T) {
	rows := newEngine(t).BuildPreviewRows(hierarchyWorkbook(), model.TableTypeActivitySummary, false, nil)
	require.Len(t, rows, 4)

	assert.Equal(t, []int{0, 2, 4, 2}, []int{rows[0].Indent, rows[1].Indent, rows[2].Indent, rows[3].Indent})
	assert.Equal(t, []int{0, 1, 2, 1}, []int{rows[0].Level, rows[1].Level, rows[2].Level, rows[3].Level})

	// level(r) = |{d ∈ indents : d <= indent(r)}| - 1
	indents := map[int]struct{}{}
	for _, r := range rows {
		indents[r.Indent] = struct{}{}
	}
	for _, r := range rows {
		n := 0
		for d := range indents {
			if d <= r.Indent {
				n++
			}
		}
		assert.Equal(t, n-1, r.Level, r.ActivityID)
	}

	r := rows[1]
	assert.Equal(t, "  P1.1", r.RawActivityID)
	assert.Equal(t, "P1.1", r.ActivityID)
	assert.Equal(t, "P1.1 - Design", r.DisplayLabel)
	assert.Equal(t, "WBS", r.Sheet)
	assert.Equal(t, "A1:G5", r.Range)
	assert.Equal(t, "31-Mar-25", r.BLProjectFinish)
	assert.InDelta(t, 90.0, *r.UnitsComplete, 1e-9)
	assert.InDelta(t, 300.0, *r.BudgetedUnits, 1e-9)
	assert.Equal(t, 0, *r.VarianceDays)
	assert.Equal(t, "WBS!E3", r.CellRefs.UnitsComplete.String())
	assert.Equal(t, "WBS!C3", r.CellRefs.BLProjectFinish.String())
	assert.Equal(t, "WBS!D3", r.CellRefs.Finish.String())
	assert.Equal(t, "WBS!F3", r.CellRefs.VarianceDays.String())
}

func TestPreviewRowsPercentFormats(t *testing.T) {
	wb := workbook.New(workbook.NewSheet("Summary", [][]any{
		{"Activity ID", "Activity Name", "Finish", "Units % Complete"},
		{"A-1", nil, date(2025, 2, 12), "75.5%"},
		{"A-2", nil, date(2025, 2, 12), 0.755},
		{"A-3", nil, date(2025, 2, 12), 75.5},
		{"A-4", nil, date(2025, 2, 12), " 75,5 %"},
		{"   ", nil, nil, "blank id rows are skipped"},
	}))

	rows := newEngine(t).BuildPreviewRows(wb, model.TableTypeActivitySummary, false, nil)
	require.Len(t, rows, 4)
	for _, r := range rows {
		require.NotNil(t, r.UnitsComplete, r.ActivityID)
		assert.InDelta(t, 75.5, *r.UnitsComplete, 1e-9, r.ActivityID)
		assert.Equal(t, r.ActivityID, r.DisplayLabel)
	}
}

func TestPreviewRowsTableSelection(t *testing.T) {
	small := workbook.NewSheet("First", [][]any{
		{"Activity ID", "Activity Name", "Finish"},
		{"S-1", "Only", date(2025, 1, 1)},
	})
	wb := hierarchyWorkbook()
	wb.Sheets = append([]*workbook.Sheet{small}, wb.Sheets...)
	e := newEngine(t)

	rows := e.BuildPreviewRows(wb, model.TableTypeActivitySummary, false, nil)
	require.Len(t, rows, 4, "largest table by default")

	rows = e.BuildPreviewRows(wb, model.TableTypeActivitySummary, true, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "S-1", rows[0].ActivityID)

	res := e.Preview(workbook.New(), model.TableTypeActivitySummary, false, nil)
	assert.Equal(t, model.StatusMissingTable, res.Status)
	assert.Empty(t, res.Rows)
}

func TestPreviewRowsExplicitMapping(t *testing.T) {
	wb := workbook.New(workbook.NewSheet("Summary", [][]any{
		{"Activity ID", "Activity Name", "Finish", "Progress"},
		{"A-1", "Foundation", date(2025, 2, 12), 0.4},
	}))
	mapping := model.ColumnMapping{
		model.TableTypeActivitySummary: {model.FieldUnitsComplete: "Progress"},
	}

	rows := newEngine(t).BuildPreviewRows(wb, model.TableTypeActivitySummary, false, mapping)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].UnitsComplete)
	assert.InDelta(t, 40.0, *rows[0].UnitsComplete, 1e-9)
	assert.Equal(t, "Summary!D2", rows[0].CellRefs.UnitsComplete.String())
}
