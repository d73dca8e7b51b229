package model

import "wbsdash/internal/cellref"

// ScheduleEntry 单个作业的本周计划进度
type ScheduleEntry struct {
	Value         *float64         `json:"value"`
	Display       string           `json:"display"`
	Tip           string           `json:"tip"`
	BudgetedUnits *float64         `json:"budgetedUnits"`
	BudgetCell    *cellref.CellRef `json:"budgetCell"`
	WeekCell      *cellref.CellRef `json:"weekCell"`
}

// ScheduleInfo 计划进度查找表的诊断信息
type ScheduleInfo struct {
	Status        Status           `json:"status"`
	TargetWeek    string           `json:"targetWeek"` // ISO 日期
	WeekColumn    string           `json:"weekColumn"`
	Table         *TableDescriptor `json:"table"`
	MissingFields []string         `json:"missingFields,omitempty"`
	Errors        []string         `json:"errors"`
}

// ScheduleLookup 作业 ID -> 计划进度
type ScheduleLookup struct {
	Entries map[string]ScheduleEntry `json:"entries"`
	Info    ScheduleInfo             `json:"info"`
}

// Get 按去空格后的作业 ID 查找
func (l *ScheduleLookup) Get(activityID string) (ScheduleEntry, bool) {
	if l == nil || l.Entries == nil {
		return ScheduleEntry{}, false
	}
	e, ok := l.Entries[activityID]
	return e, ok
}
