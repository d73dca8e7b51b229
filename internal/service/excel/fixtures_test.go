package excel_test

import (
	"testing"
	"time"

	"wbsdash/internal/service/excel"
	"wbsdash/internal/workbook"
)

var summaryHeader = []any{
	"Activity ID",
	"Activity Name",
	"BL Project Finish",
	"Finish",
	"Units % Complete",
	"Variance - BL Project Finish Date",
	"Budgeted Labor Units",
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newEngine(t *testing.T) *excel.Engine {
	t.Helper()
	opts := excel.DefaultOptions()
	opts.Now = func() time.Time { return date(2025, 2, 3) }
	return excel.NewEngine(opts)
}

// assignmentSheet 单个标记的资源分配表：表头 + 每个作业一行
func assignmentSheet(title, marker string, weeks []time.Time, rows map[string][]any, order ...string) *workbook.Sheet {
	header := []any{"Activity ID", "Budgeted Units", "Spreadsheet Field"}
	for _, w := range weeks {
		header = append(header, w)
	}
	data := [][]any{header}
	for _, id := range order {
		vals := rows[id]
		line := []any{id, vals[0], marker}
		line = append(line, vals[1:]...)
		data = append(data, line)
	}
	return workbook.NewSheet(title, data)
}

// scenarioOneWorkbook 单个叶子作业，数据完整
func scenarioOneWorkbook() *workbook.Workbook {
	summary := workbook.NewSheet("Summary", [][]any{
		summaryHeader,
		{"A-1", "Foundation", date(2025, 2, 10), date(2025, 2, 12), 0.75, 2, 100},
	})
	assign := assignmentSheet("Assignments", excel.MarkerCumBudgeted,
		[]time.Time{date(2025, 1, 20), date(2025, 1, 27)},
		map[string][]any{"A-1": {100, 40, 70}}, "A-1")
	return workbook.New(summary, assign)
}

// threeTableWorkbook 计划/实际/剩余三张表
func threeTableWorkbook(planned, actual, remaining []any) *workbook.Workbook {
	summary := workbook.NewSheet("Summary", [][]any{
		summaryHeader,
		{"A-1", "Foundation", date(2025, 2, 24), date(2025, 2, 24), 0.45, 0, 100},
	})
	plannedSheet := assignmentSheet("Budgeted", excel.MarkerCumBudgeted,
		[]time.Time{date(2025, 1, 20), date(2025, 1, 27), date(2025, 2, 3), date(2025, 2, 10)},
		map[string][]any{"A-1": append([]any{100}, planned...)}, "A-1")
	actualSheet := assignmentSheet("Actual", excel.MarkerCumActual,
		[]time.Time{date(2025, 1, 27), date(2025, 2, 3)},
		map[string][]any{"A-1": append([]any{100}, actual...)}, "A-1")
	remainingSheet := assignmentSheet("Remaining", excel.MarkerCumRemaining,
		[]time.Time{date(2025, 2, 3), date(2025, 2, 10), date(2025, 2, 17)},
		map[string][]any{"A-1": append([]any{100}, remaining...)}, "A-1")
	return workbook.New(summary, plannedSheet, actualSheet, remainingSheet)
}
