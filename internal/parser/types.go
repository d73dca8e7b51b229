package parser

import "wbsdash/internal/model"

// HeaderGroup 表头分组：一个规范字段及其可接受的同义词
type HeaderGroup struct {
	Field    string
	Synonyms []string
}

// summaryGroups 作业汇总表表头分组（同义词按优先级排列）
var summaryGroups = []HeaderGroup{
	{Field: model.FieldActivityID, Synonyms: []string{"Activity ID", "Task ID", "ID Activité", "Code"}},
	{Field: model.FieldActivityName, Synonyms: []string{"Activity Name", "Task Name", "Nom de l'activité", "Libellé"}},
	{Field: model.FieldActivityStatus, Synonyms: []string{"Activity Status", "Status", "Statut"}},
	{Field: model.FieldBLProjectFinish, Synonyms: []string{"BL Project Finish", "Planned Finish", "Baseline Finish", "BL Finish"}},
	{Field: model.FieldFinish, Synonyms: []string{"Finish", "Forecast Finish", "Fin"}},
	{Field: model.FieldUnitsComplete, Synonyms: []string{"Units % Complete", "Earned %", "Percent Complete", "% Complete", "Avancement"}},
	{Field: model.FieldVarianceBLFinish, Synonyms: []string{"Variance - BL Project Finish Date", "Variance - BL Finish", "Glissement", "Slip"}},
	{Field: model.FieldBudgetedLaborUnits, Synonyms: []string{"Budgeted Labor Units", "Budgeted Units", "Budget"}},
}

// assignmentGroups 资源分配表表头分组
var assignmentGroups = []HeaderGroup{
	{Field: model.FieldActivityID, Synonyms: []string{"Activity ID", "Task ID", "ID Activité"}},
	{Field: model.FieldStart, Synonyms: []string{"Start", "Début"}},
	{Field: model.FieldFinish, Synonyms: []string{"Finish", "Fin"}},
	{Field: model.FieldBudgetedUnits, Synonyms: []string{"Budgeted Units", "Budgeted Labor Units"}},
	{Field: model.FieldSpreadsheetField, Synonyms: []string{"Spreadsheet Field", "Field"}},
}

// Groups 某类表格的表头分组；未知类型返回 nil
func Groups(t model.TableType) []HeaderGroup {
	switch t {
	case model.TableTypeActivitySummary:
		return summaryGroups
	case model.TableTypeResourceAssignments:
		return assignmentGroups
	default:
		return nil
	}
}

// HeaderMatch 表头行识别结果
type HeaderMatch struct {
	Type          model.TableType `json:"type"`
	Confidence    float64         `json:"confidence"`    // 命中分组数 / 分组总数
	Columns       map[string]int  `json:"columns"`       // 规范字段 -> 列号
	MissingFields []string        `json:"missingFields"` // 未命中的规范字段
	DateColumns   []int           `json:"dateColumns"`   // 表头为日期的列号
}

// Has 是否命中某个规范字段
func (m HeaderMatch) Has(field string) bool {
	_, ok := m.Columns[field]
	return ok
}
