package model

import "wbsdash/internal/cellref"

// ActivityCellRefs 预览行中各指标的来源单元格
type ActivityCellRefs struct {
	ActivityID      *cellref.CellRef `json:"activityIdCell,omitempty"`
	UnitsComplete   *cellref.CellRef `json:"unitsCompleteCell,omitempty"`
	BLProjectFinish *cellref.CellRef `json:"blProjectFinishCell,omitempty"`
	Finish          *cellref.CellRef `json:"finishCell,omitempty"`
	VarianceDays    *cellref.CellRef `json:"varianceDaysCell,omitempty"`
	BudgetedUnits   *cellref.CellRef `json:"budgetedUnitsCell,omitempty"`
}

// ActivityRow 作业汇总表的一行（按文档顺序）
type ActivityRow struct {
	Sheet           string           `json:"sheet"`
	Range           string           `json:"range"`
	RawActivityID   string           `json:"rawActivityId"` // 含前导空格
	ActivityID      string           `json:"activityId"`    // 去空格后用于关联
	ActivityName    string           `json:"activityName"`
	DisplayLabel    string           `json:"displayLabel"`
	Indent          int              `json:"indent"` // 前导空格数
	Level           int              `json:"level"`  // 0-based
	ActivityStatus  string           `json:"activityStatus"`
	BudgetedUnits   *float64         `json:"budgetedUnits"`
	UnitsComplete   *float64         `json:"unitsComplete"` // 已换算为百分数
	BLProjectFinish string           `json:"blProjectFinish"`
	Finish          string           `json:"finish"`
	VarianceDays    *int             `json:"varianceDays"`
	CellRefs        ActivityCellRefs `json:"cellRefs"`
}
