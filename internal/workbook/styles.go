package workbook

import (
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// 内置数字格式中属于日期/时间的编号
var builtinDateFormats = map[int]struct{}{
	14: {}, 15: {}, 16: {}, 17: {}, 18: {}, 19: {}, 20: {}, 21: {}, 22: {},
	27: {}, 28: {}, 29: {}, 30: {}, 31: {}, 32: {}, 33: {}, 34: {}, 35: {}, 36: {},
	45: {}, 46: {}, 47: {},
	50: {}, 51: {}, 52: {}, 53: {}, 54: {}, 55: {}, 56: {}, 57: {}, 58: {},
}

var (
	quotedFmtRe  = regexp.MustCompile(`"[^"]*"`)
	bracketFmtRe = regexp.MustCompile(`\[[^\]]*\]`)
)

type dateStyleCache struct {
	f    *excelize.File
	byID map[int]bool
}

func newDateStyleCache(f *excelize.File) *dateStyleCache {
	return &dateStyleCache{f: f, byID: make(map[int]bool)}
}

func (c *dateStyleCache) isDateCell(sheet string, row, col int) bool {
	if c == nil || c.f == nil {
		return false
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	id, err := c.f.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	if v, ok := c.byID[id]; ok {
		return v
	}
	isDate := false
	if st, err := c.f.GetStyle(id); err == nil && st != nil {
		if _, ok := builtinDateFormats[st.NumFmt]; ok {
			isDate = true
		} else if st.CustomNumFmt != nil {
			isDate = isDateFormatCode(*st.CustomNumFmt)
		}
	}
	c.byID[id] = isDate
	return isDate
}

// isDateFormatCode 自定义格式去掉引号文本和方括号段后含 y/d 即视为日期
func isDateFormatCode(code string) bool {
	code = quotedFmtRe.ReplaceAllString(code, "")
	code = bracketFmtRe.ReplaceAllString(code, "")
	code = strings.ToLower(code)
	return strings.ContainsAny(code, "yd")
}
