package excel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbsdash/internal/model"
	"wbsdash/internal/service/excel"
	"wbsdash/internal/workbook"
)

func TestDetectTablesWithOffsetsAndBorders(t *testing.T) {
	sheet := workbook.NewSheet("Plan 2025", [][]any{
		{"Project progress report"},
		{},
		{nil, "Activity ID", "Activity Name", "Finish", "BL Project Finish", nil, "notes"},
		{nil, "A-1", "Foundation", date(2025, 2, 12), date(2025, 2, 10)},
		{nil, "A-2", "Walls", date(2025, 3, 1), date(2025, 3, 1)},
		{},
		{"Activity ID", "Budgeted Units", "Spreadsheet Field", date(2025, 1, 20), date(2025, 1, 27)},
		{"A-1", 100, "Cum Budgeted Units", 40, 70},
	})

	tables := newEngine(t).DetectTables(workbook.New(sheet))
	require.Len(t, tables, 2)

	s := tables[0]
	assert.Equal(t, model.TableTypeActivitySummary, s.Type)
	assert.Equal(t, "Plan 2025", s.Sheet)
	assert.Equal(t, model.Range{R1: 3, C1: 2, R2: 5, C2: 5}, s.Range)
	assert.Equal(t, "B3:E5", s.RangeA1)
	assert.Equal(t, 2, s.RowCount())
	assert.Contains(t, s.MissingFields, model.FieldUnitsComplete)

	ra := tables[1]
	assert.Equal(t, model.TableTypeResourceAssignments, ra.Type)
	assert.Equal(t, model.Range{R1: 7, C1: 1, R2: 8, C2: 5}, ra.Range)
	assert.Equal(t, 2, ra.DateColumnCount)
}

func TestDetectTablesSideBySideOnOneHeaderRow(t *testing.T) {
	sheet := workbook.NewSheet("Plan", [][]any{
		{"Activity ID", "Activity Name", "Finish", "BL Project Finish", nil,
			"Activity ID", "Budgeted Units", "Spreadsheet Field", date(2025, 1, 20), date(2025, 1, 27)},
		{"A-1", "Foundation", date(2025, 2, 12), date(2025, 2, 10), nil,
			"A-1", 100, "Cum Budgeted Units", 40, 70},
		{"A-2", "Walls", date(2025, 3, 1), date(2025, 3, 1)},
	})

	tables := newEngine(t).DetectTables(workbook.New(sheet))
	require.Len(t, tables, 2)
	assert.Equal(t, model.TableTypeActivitySummary, tables[0].Type)
	assert.Equal(t, "A1:D3", tables[0].RangeA1)
	assert.Equal(t, model.TableTypeResourceAssignments, tables[1].Type)
	assert.Equal(t, "F1:J2", tables[1].RangeA1)
	assert.Equal(t, 2, tables[1].DateColumnCount)
}

func TestDetectTablesEscalatesScanLimit(t *testing.T) {
	rows := make([][]any, 0, 260)
	rows = append(rows, []any{"filler"})
	for i := 0; i < 249; i++ {
		rows = append(rows, []any{})
	}
	rows = append(rows, summaryHeader, []any{"A-1", "Foundation", date(2025, 2, 10), date(2025, 2, 12), 0.75, 2, 100})

	opts := excel.DefaultOptions()
	opts.ScanLimits = []excel.ScanLimit{{Rows: 200, Cols: 80}}
	tables := excel.NewEngine(opts).DetectTables(workbook.New(workbook.NewSheet("Deep", rows)))

	require.Len(t, tables, 1)
	assert.Equal(t, 251, tables[0].HeaderRow)
}

func TestDetectTablesNone(t *testing.T) {
	tables := newEngine(t).DetectTables(workbook.New(workbook.NewSheet("Empty", [][]any{{"nothing", "here"}})))
	assert.Empty(t, tables)
	assert.NotNil(t, tables)
}
