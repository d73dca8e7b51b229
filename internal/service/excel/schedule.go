package excel

import (
	"fmt"
	"time"

	"wbsdash/internal/cellref"
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
)

// PlannedWeekShift Cum Budgeted Units 的周表头比其汇报周早一周，对齐前统一后移 7 天
const PlannedWeekShift = 7 * 24 * time.Hour

// 缺失值的显示文本
const missingDisplay = "?"

// plannedWeekOf 计划表头日期对应的汇报周（周一）
func plannedWeekOf(header time.Time) time.Time {
	return parser.MondayOf(header.Add(PlannedWeekShift))
}

func (s *session) scheduleLookup(today time.Time) model.ScheduleLookup {
	target := parser.MondayOf(today)
	out := model.ScheduleLookup{
		Entries: make(map[string]model.ScheduleEntry),
		Info: model.ScheduleInfo{
			Status:     model.StatusOK,
			TargetWeek: parser.FormatISODate(target),
			Errors:     []string{},
		},
	}
	info := &out.Info

	a, warn, err := s.selectAssignment(MarkerCumBudgeted, true)
	if err != nil {
		info.Status = model.StatusMissingTable
		info.Errors = append(info.Errors, err.Error())
		return out
	}
	if warn != "" {
		info.Errors = append(info.Errors, warn)
	}
	desc := a.Table
	info.Table = &desc

	if missing := missingFields(a.mappedFrame, model.FieldActivityID, model.FieldBudgetedUnits); len(missing) > 0 {
		info.Status = model.StatusMissingColumns
		info.MissingFields = missing
		info.Errors = append(info.Errors, fmt.Sprintf("missing columns in %s!%s: %v", desc.Sheet, desc.RangeA1, missing))
		return out
	}

	week, found := findPlannedWeek(a.weeks, target)
	if found {
		info.WeekColumn = week.Label
	} else {
		info.Status = model.StatusWeekNotFound
		info.Errors = append(info.Errors, fmt.Sprintf("no Cum Budgeted Units column for week %s (header date + 7 days)", info.TargetWeek))
	}

	for i := range a.Rows {
		if !a.rowMatches(i) {
			continue
		}
		id := a.Text(i, model.FieldActivityID)
		if id == "" {
			continue
		}
		if _, dup := out.Entries[id]; dup {
			continue
		}

		entry := model.ScheduleEntry{Display: missingDisplay}
		entry.BudgetCell = a.RefOf(i, model.FieldBudgetedUnits)
		budget, hasBudget := parser.AsFloat(a.Value(i, model.FieldBudgetedUnits))
		if hasBudget {
			entry.BudgetedUnits = &budget
		}

		if !found {
			entry.Tip = cellref.Annotate(
				fmt.Sprintf("Schedule unavailable: no week column for %s in Cum Budgeted Units", info.TargetWeek),
				entry.BudgetCell)
			out.Entries[id] = entry
			continue
		}

		entry.WeekCell = a.Ref(i, week.Index).Ptr()
		weekVal, hasWeek := parser.AsFloat(a.Rows[i][week.Index])
		switch {
		case !hasBudget || budget == 0:
			entry.Tip = cellref.Annotate("Schedule unavailable: Budgeted Units missing or 0", entry.BudgetCell, entry.WeekCell)
		case !hasWeek:
			entry.Tip = cellref.Annotate("Schedule unavailable: week cell is empty", entry.BudgetCell, entry.WeekCell)
		default:
			v := weekVal / budget * 100
			entry.Value = &v
			entry.Display = parser.FormatPercent(v)
			entry.Tip = cellref.Annotate(
				fmt.Sprintf("Schedule %% = Units (%s) / Budgeted Units", info.TargetWeek),
				entry.WeekCell, entry.BudgetCell)
		}
		out.Entries[id] = entry
	}

	if cmp, ok := s.compareIDs(a); ok && !cmp.Matches() {
		info.Errors = append(info.Errors, parityWarning(cmp))
	}
	return out
}

// findPlannedWeek 第一个后移 7 天后落在目标周的日期列
func findPlannedWeek(weeks []WeekColumn, target time.Time) (WeekColumn, bool) {
	for _, w := range weeks {
		if plannedWeekOf(w.Date).Equal(target) {
			return w, true
		}
	}
	return WeekColumn{}, false
}
