package cellref

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

var plainSheetRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// CellRef 单元格引用（行列均为 1-based）
type CellRef struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
}

// New 创建单元格引用
func New(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// Ptr 返回引用指针，便于放入可选字段
func (r CellRef) Ptr() *CellRef {
	return &r
}

// Address 不含 sheet 的 A1 地址
func (r CellRef) Address() string {
	name, err := excelize.CoordinatesToCellName(r.Col, r.Row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", r.Row, r.Col)
	}
	return name
}

// String 输出 sheet!A1 形式
func (r CellRef) String() string {
	return QuoteSheet(r.Sheet) + "!" + r.Address()
}

// MarshalText 序列化为 sheet!A1 文本
func (r CellRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText 解析 sheet!A1 文本
func (r *CellRef) UnmarshalText(text []byte) error {
	ref, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// Parse 解析 sheet!A1 或 'sheet name'!A1 形式的引用
func Parse(s string) (CellRef, error) {
	i := strings.LastIndex(s, "!")
	if i <= 0 {
		return CellRef{}, fmt.Errorf("invalid cell reference %q", s)
	}
	sheet, addr := s[:i], s[i+1:]
	if strings.HasPrefix(sheet, "'") {
		if len(sheet) < 2 || !strings.HasSuffix(sheet, "'") {
			return CellRef{}, fmt.Errorf("invalid cell reference %q", s)
		}
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	col, row, err := excelize.CellNameToCoordinates(addr)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return New(sheet, row, col), nil
}

// QuoteSheet sheet 名包含 [A-Za-z0-9_] 以外字符时加单引号，内部单引号加倍
func QuoteSheet(sheet string) string {
	if plainSheetRe.MatchString(sheet) {
		return sheet
	}
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// ColumnLetters 列号转字母（1 -> A, 27 -> AA）
func ColumnLetters(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return name
}

// RangeString 区域引用，形如 A1:D10
func RangeString(r1, c1, r2, c2 int) string {
	return New("", r1, c1).Address() + ":" + New("", r2, c2).Address()
}

// Annotate 在提示文本后追加输入单元格引用；nil 引用被忽略
func Annotate(tip string, refs ...*CellRef) string {
	parts := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		s := ref.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return tip
	}
	return tip + " | Cells: " + strings.Join(parts, ", ")
}
