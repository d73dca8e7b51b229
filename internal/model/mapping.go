package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// 规范字段名
const (
	FieldActivityID         = "Activity ID"
	FieldActivityName       = "Activity Name"
	FieldActivityStatus     = "Activity Status"
	FieldBLProjectFinish    = "BL Project Finish"
	FieldFinish             = "Finish"
	FieldUnitsComplete      = "Units % Complete"
	FieldVarianceBLFinish   = "Variance - BL Project Finish Date"
	FieldBudgetedLaborUnits = "Budgeted Labor Units"

	FieldStart            = "Start"
	FieldBudgetedUnits    = "Budgeted Units"
	FieldSpreadsheetField = "Spreadsheet Field"
)

// CanonicalFields 各表格类型的规范字段（顺序即建议映射的优先顺序）
var CanonicalFields = map[TableType][]string{
	TableTypeActivitySummary: {
		FieldActivityID,
		FieldActivityName,
		FieldActivityStatus,
		FieldBLProjectFinish,
		FieldFinish,
		FieldUnitsComplete,
		FieldVarianceBLFinish,
		FieldBudgetedLaborUnits,
	},
	TableTypeResourceAssignments: {
		FieldActivityID,
		FieldStart,
		FieldFinish,
		FieldBudgetedUnits,
		FieldSpreadsheetField,
	},
}

// ColumnMapping 用户提供的列映射：表格类型 -> 规范字段 -> 实际表头
type ColumnMapping map[TableType]map[string]string

// For 取某类表格的子映射，不存在返回 nil
func (m ColumnMapping) For(t TableType) map[string]string {
	if m == nil {
		return nil
	}
	return m[t]
}

// Digest 映射内容摘要，用于缓存键
func (m ColumnMapping) Digest() string {
	type pair struct {
		Table     TableType `json:"t"`
		Canonical string    `json:"c"`
		Actual    string    `json:"a"`
	}
	pairs := make([]pair, 0)
	for t, sub := range m {
		for c, a := range sub {
			pairs = append(pairs, pair{Table: t, Canonical: c, Actual: a})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Table != pairs[j].Table {
			return pairs[i].Table < pairs[j].Table
		}
		return pairs[i].Canonical < pairs[j].Canonical
	})
	b, _ := json.Marshal(pairs)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// ResolvedMapping 某个表格最终生效的列映射
type ResolvedMapping struct {
	Fields   map[string]string `json:"fields"`   // 规范字段 -> 实际表头
	Sources  map[string]string `json:"sources"`  // 规范字段 -> explicit/suggested
	Unmapped []string          `json:"unmapped"` // 无法解析的规范字段
}
