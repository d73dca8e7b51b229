package exporter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"wbsdash/internal/model"
)

// 单元格中缺失值的显示
const missingCell = "?"

// maxSheetName Excel sheet 名长度上限
const maxSheetName = 31

// Exporter WBS 报告导出器：生成新的工作簿，不回写源文件
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// Report 导出内容
type Report struct {
	Source string
	Today  string
	WBS    model.WBSExtraction
	Weekly []model.WeeklyProgress
}

type styles struct {
	header  int
	percent int
}

// Export 导出报告：概要 + 每棵 WBS 树一个 sheet + 每个作业的周进度
func (e *Exporter) Export(r Report, progress func(ProgressEvent)) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 0, StageSummary)
	if err := writeSummary(f, r, st); err != nil {
		_ = f.Close()
		return nil, err
	}

	names := newSheetNames("Summary")
	total := len(r.WBS.Tables) + len(r.Weekly)
	done := 0
	for i, t := range r.WBS.Tables {
		want := "WBS"
		if len(r.WBS.Tables) > 1 {
			want = fmt.Sprintf("WBS %d", i+1)
		}
		name := names.next(want)
		if err := writeTree(f, name, t, st); err != nil {
			_ = f.Close()
			return nil, err
		}
		done++
		reportProgress(progress, done*100/max(total, 1), StageWBS)
	}

	for _, w := range r.Weekly {
		name := names.next("Weekly " + w.Info.ActivityID)
		if err := writeWeekly(f, name, w, st); err != nil {
			_ = f.Close()
			return nil, err
		}
		done++
		reportProgress(progress, done*100/max(total, 1), StageWeekly)
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, StageDone)
	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return st, err
	}
	// 内置格式 10: 0.00%
	st.percent, err = f.NewStyle(&excelize.Style{NumFmt: 10})
	return st, err
}

func writeSummary(f *excelize.File, r Report, st styles) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Item", "Value"},
		{"Source", r.Source},
		{"Report date", r.Today},
		{"Target week", r.WBS.Schedule.TargetWeek},
		{"Week column", r.WBS.Schedule.WeekColumn},
		{"Schedule status", string(r.WBS.Schedule.Status)},
		{"WBS status", string(r.WBS.Status)},
		{"WBS tables", len(r.WBS.Tables)},
	}
	for _, msg := range r.WBS.Errors {
		rows = append(rows, []any{"Warning", msg})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, st.header); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 18); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "B", 80)
}

var treeHeaders = []any{
	"Level", "Activity ID", "Activity", "Planned Finish", "Forecast Finish",
	"Schedule %", "Earned %", "Variance %", "Impact %", "Slip (d)",
	"Schedule source", "Variance source", "Impact source",
}

// writeTree 按先序遍历写出 WBS 树，活动名按层级缩进
func writeTree(f *excelize.File, sheet string, t model.WBSResult, st styles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeRows(f, sheet, [][]any{treeHeaders}); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, st.header); err != nil {
		return err
	}

	row := 2
	var walkErr error
	t.WBS.Walk(func(n *model.WBSNode) {
		if walkErr != nil {
			return
		}
		m := n.Metrics
		values := []any{
			n.Level, n.ActivityID, n.Label, m.PlannedFinishDisplay, m.ForecastFinishDisplay,
			percentCell(m.Schedule), percentCell(m.Earned), percentCell(m.Variance), percentCell(m.Impact),
			intCell(m.Slip),
			m.ScheduleTip, m.VarianceTip, m.ImpactTip,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if walkErr = f.SetSheetRow(sheet, cell, &values); walkErr != nil {
			return
		}
		indent, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Indent: n.Level - 1}})
		if err != nil {
			walkErr = err
			return
		}
		labelCell, _ := excelize.CoordinatesToCellName(3, row)
		if walkErr = f.SetCellStyle(sheet, labelCell, labelCell, indent); walkErr != nil {
			return
		}
		from, _ := excelize.CoordinatesToCellName(6, row)
		to, _ := excelize.CoordinatesToCellName(9, row)
		walkErr = f.SetCellStyle(sheet, from, to, st.percent)
		row++
	})
	if walkErr != nil {
		return walkErr
	}

	if err := f.SetColWidth(sheet, "B", "C", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "D", "J", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "K", "M", 60); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

var weeklyHeaders = []any{
	"Week", "Week start", "Planned %", "Planned cum %", "Actual %", "Actual cum %",
	"Budgeted Units", "Actual cum units", "Forecast cum units", "Current week",
}

func writeWeekly(f *excelize.File, sheet string, w model.WeeklyProgress, st styles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{weeklyHeaders}
	for _, p := range w.Points {
		rows = append(rows, []any{
			p.Week, p.WeekLabel,
			percentCell(p.Planned), percentCell(p.PlannedCum), percentCell(p.Actual), percentCell(p.ActualCum),
			floatCell(p.BudgetedUnits), floatCell(p.ActualCumUnits), floatCell(p.ForecastCumUnits),
			p.IsCurrent,
		})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, st.header); err != nil {
		return err
	}
	if len(w.Points) > 0 {
		to, _ := excelize.CoordinatesToCellName(6, len(w.Points)+1)
		if err := f.SetCellStyle(sheet, "C2", to, st.percent); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "J", 16)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// percentCell 百分数转为 Excel 比例值，缺失显示 "?"
func percentCell(v *float64) any {
	if v == nil {
		return missingCell
	}
	return *v / 100
}

func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return missingCell
	}
	return *v
}

// sheetNames 生成合法且不重复的 sheet 名
type sheetNames map[string]bool

func newSheetNames(taken ...string) sheetNames {
	s := make(sheetNames)
	for _, n := range taken {
		s[strings.ToLower(n)] = true
	}
	return s
}

func (s sheetNames) next(want string) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(want))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for i := 2; s[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	s[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
