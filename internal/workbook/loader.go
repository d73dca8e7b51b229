package workbook

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var supportedExts = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
	".xltx": {},
	".xltm": {},
}

// Load 打开并完整读取工作簿；sheets 为允许加载的 sheet 名，均不匹配时加载全部
func Load(path string, sheets []string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ReadError{Path: path, Err: ErrFileNotFound}
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	if _, ok := supportedExts[strings.ToLower(filepath.Ext(path))]; !ok {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)}
	}
	defer f.Close()

	wb, err := FromFile(f, sheets)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	wb.Path = path
	return wb, nil
}

// LoadReader 从 io.Reader 读取工作簿
func LoadReader(r io.Reader, sheets []string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ReadError{Err: fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)}
	}
	defer f.Close()

	wb, err := FromFile(f, sheets)
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	return wb, nil
}

// FromFile 把已打开的 excelize 文件物化为内存工作簿（只读）
func FromFile(f *excelize.File, sheets []string) (*Workbook, error) {
	if f == nil {
		return nil, errors.New("workbook is nil")
	}

	names := selectSheets(f.GetSheetList(), sheets)
	wb := &Workbook{Sheets: make([]*Sheet, 0, len(names))}
	styles := newDateStyleCache(f)

	for _, name := range names {
		s, err := readSheet(f, name, styles)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, s)
	}
	return wb, nil
}

func selectSheets(all []string, allow []string) []string {
	if len(allow) == 0 {
		return all
	}
	want := make(map[string]struct{}, len(allow))
	for _, n := range allow {
		want[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	out := make([]string, 0, len(allow))
	for _, n := range all {
		if _, ok := want[strings.ToLower(strings.TrimSpace(n))]; ok {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}

func readSheet(f *excelize.File, name string, styles *dateStyleCache) (*Sheet, error) {
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	formatted, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}

	cells := make([][]Value, len(raw))
	for i, row := range raw {
		cells[i] = make([]Value, len(row))
		for j, s := range row {
			shown := ""
			if i < len(formatted) && j < len(formatted[i]) {
				shown = formatted[i][j]
			}
			cells[i][j] = convertCell(f, name, i+1, j+1, s, shown, styles)
		}
	}
	return newSheetFromValues(name, cells), nil
}

// convertCell 文本单元格保持原样（"1.10"、"0010" 不转数值），数值单元格再判断日期格式
func convertCell(f *excelize.File, sheet string, row, col int, raw, shown string, styles *dateStyleCache) Value {
	if raw == "" {
		return Empty()
	}
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil || storedAsText(f, sheet, row, col) {
		return Text(raw)
	}
	// 数值单元格显示值与原值不同才可能是日期格式
	if shown != "" && shown != raw && styles.isDateCell(sheet, row, col) {
		if t, err := excelize.ExcelDateToTime(num, false); err == nil {
			return Time(t)
		}
	}
	return Number(num)
}

// storedAsText 单元格以字符串形式保存：共享字符串、内联字符串或字符串公式结果
func storedAsText(f *excelize.File, sheet string, row, col int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	t, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false
	}
	switch t {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return true
	}
	return false
}
