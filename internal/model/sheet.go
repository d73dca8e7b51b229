package model

import "wbsdash/internal/cellref"

// TableType 表格类型（按表头签名识别）
type TableType string

const (
	TableTypeUnknown             TableType = "unknown"
	TableTypeActivitySummary     TableType = "activity_summary"     // 作业汇总表
	TableTypeResourceAssignments TableType = "resource_assignments" // 资源分配表（周累计）
)

// TableTypes 所有可识别的表格类型
var TableTypes = []TableType{TableTypeActivitySummary, TableTypeResourceAssignments}

// Range 表格区域，含表头行，1-based 闭区间
type Range struct {
	R1 int `json:"r1"`
	C1 int `json:"c1"`
	R2 int `json:"r2"`
	C2 int `json:"c2"`
}

// String A1:B2 形式
func (r Range) String() string {
	return cellref.RangeString(r.R1, r.C1, r.R2, r.C2)
}

// TableDescriptor 检测到的候选表格
type TableDescriptor struct {
	Sheet           string    `json:"sheet"`
	Range           Range     `json:"range"`
	RangeA1         string    `json:"rangeA1"`
	HeaderRow       int       `json:"headerRow"`
	Type            TableType `json:"type"`
	MissingFields   []string  `json:"missingFields"`
	DateColumnCount int       `json:"dateColumnCount"` // 周日期列数量
}

// RowCount 数据行数（不含表头）
func (d TableDescriptor) RowCount() int {
	n := d.Range.R2 - d.HeaderRow
	if n < 0 {
		return 0
	}
	return n
}

// TableMeta 用于还原绝对单元格引用
type TableMeta struct {
	Sheet        string `json:"sheet"`
	DataRowStart int    `json:"dataRowStart"` // 第一条数据行的行号
	DataColStart int    `json:"dataColStart"` // 第一列的列号
}

// Ref 数据区 (rowIdx, colIdx)（0-based）对应的绝对引用
func (m TableMeta) Ref(rowIdx, colIdx int) cellref.CellRef {
	return cellref.New(m.Sheet, m.DataRowStart+rowIdx, m.DataColStart+colIdx)
}
