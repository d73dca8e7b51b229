package model

// Status 计算结果状态
type Status string

const (
	StatusOK               Status = "ok"
	StatusMissingTable     Status = "missing_table"
	StatusMissingColumns   Status = "missing_columns"
	StatusWeekNotFound     Status = "week_not_found"
	StatusActivityNotFound Status = "activity_not_found"
)
