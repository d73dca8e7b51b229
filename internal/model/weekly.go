package model

import (
	"time"

	"wbsdash/internal/cellref"
)

// WeeklySource 周序列的数据来源
type WeeklySource string

const (
	SourcePlanned      WeeklySource = "planned"       // Cum Budgeted Units
	SourceActualPast   WeeklySource = "actual_past"   // Cum Actual Units
	SourceActualFuture WeeklySource = "actual_future" // Cum Remaining Early Units
)

// WeeklySources 固定的来源顺序
var WeeklySources = []WeeklySource{SourcePlanned, SourceActualPast, SourceActualFuture}

// WeeklyPoint 周序列中的一个点
type WeeklyPoint struct {
	Week      string    `json:"week"`      // ISO 周，如 2025-W06
	WeekDate  time.Time `json:"weekDate"`  // 该周周一
	WeekLabel string    `json:"weekLabel"` // dd-Mon-yy

	Planned           *float64 `json:"planned"`
	PlannedDisplay    string   `json:"plannedDisplay"`
	PlannedTip        string   `json:"plannedTip"`
	PlannedCum        *float64 `json:"plannedCum"`
	PlannedCumDisplay string   `json:"plannedCumDisplay"`
	PlannedCumTip     string   `json:"plannedCumTip"`

	Actual           *float64 `json:"actual"`
	ActualDisplay    string   `json:"actualDisplay"`
	ActualTip        string   `json:"actualTip"`
	ActualCum        *float64 `json:"actualCum"`
	ActualCumDisplay string   `json:"actualCumDisplay"`
	ActualCumTip     string   `json:"actualCumTip"`
	ActualCumActual  *float64 `json:"actualCumActual"` // 仅本周及以前

	BudgetedUnits     *float64         `json:"budgetedUnits"`
	BudgetedUnitsCell *cellref.CellRef `json:"budgetedUnitsCell"`
	ActualCumUnits    *float64         `json:"actualCumUnits"` // 仅本周及以前
	ActualWeekCell    *cellref.CellRef `json:"actualWeekCell"`
	ForecastCumUnits  *float64         `json:"forecastCumUnits"` // 仅本周以后
	ForecastWeekCell  *cellref.CellRef `json:"forecastWeekCell"`

	IsBaseline bool `json:"isBaseline"`
	IsCurrent  bool `json:"isCurrent"`
}

// WeeklyInfo 周序列诊断信息
type WeeklyInfo struct {
	Status           Status                            `json:"status"`
	ActivityID       string                            `json:"activityId"`
	TargetWeek       string                            `json:"targetWeek"`
	PlannedStartWeek string                            `json:"plannedStartWeek"`
	PlannedEndWeek   string                            `json:"plannedEndWeek"`
	AvailableEndWeek string                            `json:"availableEndWeek"`
	WeeksBefore      int                               `json:"weeksBefore"`
	WeeksAfter       int                               `json:"weeksAfter"`
	BudgetedUnits    *float64                          `json:"budgetedUnits"`
	Tables           map[WeeklySource]*TableDescriptor `json:"tables"`
	SourceErrors     map[WeeklySource]string           `json:"sourceErrors"`
	MissingFields    []string                          `json:"missingFields,omitempty"`
	Errors           []string                          `json:"errors"`
}

// WeeklyProgress 单个作业的周进度序列
type WeeklyProgress struct {
	Points []WeeklyPoint `json:"points"`
	Info   WeeklyInfo    `json:"info"`
}
