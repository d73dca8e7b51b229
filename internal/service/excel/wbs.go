package excel

import (
	"fmt"

	"wbsdash/internal/cellref"
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
)

type wbsItem struct {
	node *model.WBSNode
	row  model.ActivityRow
}

// extractAllWBS 为每张作业汇总表构建 WBS 树
func (s *session) extractAllWBS(lookup *model.ScheduleLookup) model.WBSExtraction {
	out := model.WBSExtraction{Status: model.StatusOK, Tables: []model.WBSResult{}, Errors: []string{}}
	if lookup != nil {
		out.Schedule = lookup.Info
		out.Errors = append(out.Errors, lookup.Info.Errors...)
	}

	summaries := s.tablesOf(model.TableTypeActivitySummary)
	if len(summaries) == 0 {
		out.Status = model.StatusMissingTable
		out.Errors = append(out.Errors, "no Activity Summary table found")
		return out
	}

	for _, desc := range summaries {
		f := s.frame(desc)
		if missing := missingFields(f, model.FieldActivityID); len(missing) > 0 {
			out.Status = model.StatusMissingColumns
			out.Errors = append(out.Errors, fmt.Sprintf("missing columns in %s!%s: %v", desc.Sheet, desc.RangeA1, missing))
			continue
		}
		rows := rowsFromFrame(f)
		if len(rows) == 0 {
			continue
		}
		out.Tables = append(out.Tables, model.WBSResult{
			Sheet: desc.Sheet,
			Range: desc.RangeA1,
			WBS:   BuildTree(rows, lookup),
		})
	}
	return out
}

// BuildTree 按缩进层级把预览行组装为树并计算节点指标。
// 栈空且已有根节点时，新节点挂到根节点下
func BuildTree(rows []model.ActivityRow, lookup *model.ScheduleLookup) *model.WBSNode {
	if len(rows) == 0 {
		return nil
	}
	levels := IndentLevels(rows)

	var root *model.WBSNode
	stack := make([]*model.WBSNode, 0)
	items := make([]wbsItem, 0, len(rows))

	for _, r := range rows {
		node := &model.WBSNode{
			ActivityID: r.ActivityID,
			Label:      r.DisplayLabel,
			Level:      levels[r.Indent] + 1,
			Children:   []*model.WBSNode{},
		}
		items = append(items, wbsItem{node: node, row: r})

		for len(stack) > 0 && stack[len(stack)-1].Level >= node.Level {
			stack = stack[:len(stack)-1]
		}
		switch {
		case len(stack) > 0:
			top := stack[len(stack)-1]
			top.Children = append(top.Children, node)
		case root == nil:
			root = node
		default:
			root.Children = append(root.Children, node)
		}
		stack = append(stack, node)
	}

	rootBudget, rootBudgetCell := activityBudget(items[0].row, lookup)
	for _, it := range items {
		it.node.Metrics = nodeMetrics(it.row, lookup, rootBudget, rootBudgetCell)
	}
	return root
}

// activityBudget 优先取资源分配表的预算，其次汇总表的 Budgeted Labor Units
func activityBudget(r model.ActivityRow, lookup *model.ScheduleLookup) (*float64, *cellref.CellRef) {
	if e, ok := lookup.Get(r.ActivityID); ok && e.BudgetedUnits != nil {
		return e.BudgetedUnits, e.BudgetCell
	}
	return r.BudgetedUnits, r.CellRefs.BudgetedUnits
}

func nodeMetrics(r model.ActivityRow, lookup *model.ScheduleLookup, rootBudget *float64, rootBudgetCell *cellref.CellRef) model.NodeMetrics {
	m := model.NodeMetrics{}
	refs := r.CellRefs

	m.PlannedFinish = r.BLProjectFinish
	m.PlannedFinishDisplay, m.PlannedFinishTip = dateMetric(r.BLProjectFinish, "Planned finish = BL Project Finish", refs.BLProjectFinish)
	m.ForecastFinish = r.Finish
	m.ForecastFinishDisplay, m.ForecastFinishTip = dateMetric(r.Finish, "Forecast finish = Finish", refs.Finish)

	if r.UnitsComplete != nil {
		m.Earned = r.UnitsComplete
		m.EarnedDisplay = parser.FormatPercent(*r.UnitsComplete)
		m.EarnedTip = cellref.Annotate("Earned % = Units % Complete", refs.UnitsComplete)
	} else {
		m.EarnedDisplay = missingDisplay
		m.EarnedTip = cellref.Annotate("Earned unavailable: Units % Complete is empty", refs.UnitsComplete)
	}

	entry, hasEntry := lookup.Get(r.ActivityID)
	switch {
	case hasEntry:
		m.Schedule = entry.Value
		m.ScheduleDisplay = entry.Display
		m.ScheduleTip = entry.Tip
	case lookup == nil:
		m.ScheduleDisplay = missingDisplay
		m.ScheduleTip = "Schedule unavailable: no schedule lookup"
	default:
		m.ScheduleDisplay = missingDisplay
		m.ScheduleTip = fmt.Sprintf("Schedule unavailable: activity %s not found in Resource Assignments", r.ActivityID)
	}

	if m.Earned != nil && m.Schedule != nil {
		v := *m.Earned - *m.Schedule
		m.Variance = &v
		m.VarianceDisplay = parser.FormatSignedPercent(v)
		m.VarianceTip = cellref.Annotate("Variance % = Earned % - Schedule %", refs.UnitsComplete, entry.WeekCell, entry.BudgetCell)
	} else {
		m.VarianceDisplay = missingDisplay
		m.VarianceTip = cellref.Annotate("Variance unavailable: Earned % or Schedule % missing", refs.UnitsComplete, entry.WeekCell)
	}

	budget, budgetCell := activityBudget(r, lookup)
	switch {
	case m.Variance == nil:
		m.ImpactDisplay = missingDisplay
		m.ImpactTip = "Impact unavailable: Variance % missing"
	case budget == nil || *budget == 0 || rootBudget == nil || *rootBudget == 0:
		m.ImpactDisplay = missingDisplay
		m.ImpactTip = cellref.Annotate("Impact unavailable: activity or root Budgeted Units missing or 0", budgetCell, rootBudgetCell)
	default:
		v := *budget / *rootBudget * *m.Variance
		m.Impact = &v
		m.ImpactDisplay = parser.FormatSignedPercent(v)
		m.ImpactTip = cellref.Annotate("Impact % = (Budgeted Units / root Budgeted Units) × Variance %",
			budgetCell, rootBudgetCell, refs.UnitsComplete, entry.WeekCell)
	}

	if r.VarianceDays != nil {
		m.Slip = r.VarianceDays
		m.SlipDisplay = parser.FormatDays(*r.VarianceDays)
		m.SlipTip = cellref.Annotate("Slip = Variance - BL Project Finish Date", refs.VarianceDays)
	} else {
		m.SlipDisplay = missingDisplay
		m.SlipTip = cellref.Annotate("Slip unavailable: Variance - BL Project Finish Date is empty", refs.VarianceDays)
	}
	return m
}

func dateMetric(v, formula string, ref *cellref.CellRef) (string, string) {
	if v == "" {
		return missingDisplay, cellref.Annotate("Unavailable: date cell is empty or not a date", ref)
	}
	return v, cellref.Annotate(formula, ref)
}
