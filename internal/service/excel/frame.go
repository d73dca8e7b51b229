package excel

import (
	"strconv"
	"strings"
	"time"

	"wbsdash/internal/cellref"
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
	"wbsdash/internal/workbook"
)

// WeekColumn 表头为日期的列
type WeekColumn struct {
	Index int       // 列在帧内的下标
	Label string    // 列标签
	Date  time.Time // 表头日期
}

// TableFrame 检测到的表格的内存视图
type TableFrame struct {
	Table   model.TableDescriptor
	Meta    model.TableMeta
	Headers []workbook.Value   // 原始表头单元格
	Columns []string           // 当前列标签（已去重，可能已按映射重命名）
	Rows    [][]workbook.Value // 数据行，不含表头

	source []string // 去重后的原始列标签，重命名总是基于它
	index  map[string]int
}

// NewFrame 从 sheet 读取表格区域
func NewFrame(sheet *workbook.Sheet, desc model.TableDescriptor) *TableFrame {
	rng := desc.Range
	headers := sheet.IterRows(desc.HeaderRow, desc.HeaderRow, rng.C1, rng.C2)
	rows := sheet.IterRows(desc.HeaderRow+1, rng.R2, rng.C1, rng.C2)

	f := &TableFrame{
		Table: desc,
		Meta: model.TableMeta{
			Sheet:        desc.Sheet,
			DataRowStart: desc.HeaderRow + 1,
			DataColStart: rng.C1,
		},
		Rows: rows,
	}
	if len(headers) > 0 {
		f.Headers = headers[0]
	}
	f.source = dedupeLabels(f.Headers, rng.C1)
	f.setColumns(append([]string(nil), f.source...))
	return f
}

// dedupeLabels 生成列标签；重复标签追加 .1、.2，空表头用列字母
func dedupeLabels(headers []workbook.Value, firstCol int) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		label := parser.HeaderLabel(h)
		if label == "" {
			label = "Unnamed: " + cellref.ColumnLetters(firstCol+i)
		}
		if n, ok := seen[label]; ok {
			seen[label] = n + 1
			label = label + "." + strconv.Itoa(n+1)
		} else {
			seen[label] = 0
		}
		out[i] = label
	}
	return out
}

func (f *TableFrame) setColumns(cols []string) {
	f.Columns = cols
	f.index = make(map[string]int, len(cols))
	for i, c := range cols {
		if _, ok := f.index[c]; !ok {
			f.index[c] = i
		}
	}
}

// SourceColumns 原始列标签
func (f *TableFrame) SourceColumns() []string {
	return append([]string(nil), f.source...)
}

// Rename 按 规范字段 -> 实际表头 映射重命名列，返回新帧。
// 总是从原始列标签出发，重复应用同一映射结果不变
func (f *TableFrame) Rename(mapping map[string]string) *TableFrame {
	byActual := make(map[string]string, len(mapping))
	for canonical, actual := range mapping {
		byActual[actual] = canonical
	}
	targets := make(map[string]bool, len(mapping))
	for canonical, actual := range mapping {
		if containsString(f.source, actual) {
			targets[canonical] = true
		}
	}

	cols := make([]string, len(f.source))
	for i, label := range f.source {
		if canonical, ok := byActual[label]; ok {
			cols[i] = canonical
			continue
		}
		// 原本就叫规范名但未被映射的列让位
		if targets[label] {
			cols[i] = label + ".orig"
			continue
		}
		cols[i] = label
	}

	out := *f
	out.setColumns(cols)
	return &out
}

func containsString(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

// ColumnIndex 列下标，不存在返回 -1
func (f *TableFrame) ColumnIndex(name string) int {
	if i, ok := f.index[name]; ok {
		return i
	}
	return -1
}

// Has 是否存在列
func (f *TableFrame) Has(name string) bool {
	return f.ColumnIndex(name) >= 0
}

// Value 取第 rowIdx 行某列的值；列不存在返回空值
func (f *TableFrame) Value(rowIdx int, column string) workbook.Value {
	col := f.ColumnIndex(column)
	if col < 0 || rowIdx < 0 || rowIdx >= len(f.Rows) || col >= len(f.Rows[rowIdx]) {
		return workbook.Empty()
	}
	return f.Rows[rowIdx][col]
}

// Text 去首尾空白的文本值
func (f *TableFrame) Text(rowIdx int, column string) string {
	return strings.TrimSpace(f.Value(rowIdx, column).String())
}

// Ref 数据区 (rowIdx, colIdx) 的绝对引用
func (f *TableFrame) Ref(rowIdx, colIdx int) cellref.CellRef {
	return f.Meta.Ref(rowIdx, colIdx)
}

// RefOf 某行某列的引用；列不存在返回 nil
func (f *TableFrame) RefOf(rowIdx int, column string) *cellref.CellRef {
	col := f.ColumnIndex(column)
	if col < 0 {
		return nil
	}
	return f.Ref(rowIdx, col).Ptr()
}

// WeekColumns 表头可解析为日期的列，按列顺序
func (f *TableFrame) WeekColumns() []WeekColumn {
	out := make([]WeekColumn, 0)
	for i, h := range f.Headers {
		d, ok := parser.ParseHeaderDate(h)
		if !ok {
			continue
		}
		out = append(out, WeekColumn{Index: i, Label: f.Columns[i], Date: d})
	}
	return out
}
