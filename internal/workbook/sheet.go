package workbook

import "strings"

// Sheet 已完全载入内存的工作表，行列对外为 1-based
type Sheet struct {
	title  string
	cells  [][]Value
	maxRow int
	maxCol int
}

// NewSheet 由二维数据创建工作表；rows[0] 对应第 1 行
func NewSheet(title string, rows [][]any) *Sheet {
	cells := make([][]Value, len(rows))
	for i, row := range rows {
		cells[i] = make([]Value, len(row))
		for j, v := range row {
			cells[i][j] = Of(v)
		}
	}
	return newSheetFromValues(title, cells)
}

func newSheetFromValues(title string, cells [][]Value) *Sheet {
	s := &Sheet{title: title, cells: cells}
	for i, row := range cells {
		last := 0
		for j, v := range row {
			if !v.IsEmpty() {
				last = j + 1
			}
		}
		if last > 0 {
			s.maxRow = i + 1
		}
		if last > s.maxCol {
			s.maxCol = last
		}
	}
	return s
}

// Title sheet 名
func (s *Sheet) Title() string {
	return s.title
}

// MaxRow 最后一个非空行号
func (s *Sheet) MaxRow() int {
	return s.maxRow
}

// MaxColumn 最后一个非空列号
func (s *Sheet) MaxColumn() int {
	return s.maxCol
}

// Cell 读取单元格；越界返回空值
func (s *Sheet) Cell(row, col int) Value {
	if row < 1 || col < 1 || row > len(s.cells) {
		return Empty()
	}
	r := s.cells[row-1]
	if col > len(r) {
		return Empty()
	}
	return r[col-1]
}

// IterRows 按行返回 [r1..r2]×[c1..c2] 区域，越界部分补空值
func (s *Sheet) IterRows(r1, r2, c1, c2 int) [][]Value {
	if r1 < 1 {
		r1 = 1
	}
	if c1 < 1 {
		c1 = 1
	}
	if r2 < r1 || c2 < c1 {
		return [][]Value{}
	}
	out := make([][]Value, 0, r2-r1+1)
	for r := r1; r <= r2; r++ {
		row := make([]Value, c2-c1+1)
		for c := c1; c <= c2; c++ {
			row[c-c1] = s.Cell(r, c)
		}
		out = append(out, row)
	}
	return out
}

// RowIsBlank 判断 [c1..c2] 范围内整行是否为空
func (s *Sheet) RowIsBlank(row, c1, c2 int) bool {
	for c := c1; c <= c2; c++ {
		if !s.Cell(row, c).IsBlank() {
			return false
		}
	}
	return true
}

// Workbook 按文件顺序排列的工作表集合
type Workbook struct {
	Path   string
	Sheets []*Sheet
}

// New 由内存工作表创建工作簿
func New(sheets ...*Sheet) *Workbook {
	return &Workbook{Sheets: sheets}
}

// Sheet 按名称查找（忽略首尾空白与大小写）
func (wb *Workbook) Sheet(name string) *Sheet {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range wb.Sheets {
		if strings.ToLower(strings.TrimSpace(s.title)) == want {
			return s
		}
	}
	return nil
}

// SheetNames 工作表名列表
func (wb *Workbook) SheetNames() []string {
	out := make([]string, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		out = append(out, s.title)
	}
	return out
}
