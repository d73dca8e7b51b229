package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"wbsdash/internal/workbook"
)

var nonAlnumRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// NormalizeHeader 规范化表头：小写，% 替换为 percent，非字母数字折叠为单个空格
func NormalizeHeader(h string) string {
	s := strings.ToLower(h)
	s = strings.ReplaceAll(s, "%", " percent ")
	s = stripAccents(s)
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripAccents 去掉组合附加符号（activité -> activite）
func stripAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HeaderLabel 表头单元格的列标签；日期表头统一为 YYYY-MM-DD
func HeaderLabel(v workbook.Value) string {
	if d, ok := ParseHeaderDate(v); ok {
		return d.Format(isoDateLayout)
	}
	return strings.TrimSpace(v.String())
}

// LeadingSpaces 统计前导空格数（制表符、全角空格不计）
func LeadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

// ContainsFold 忽略大小写的子串判断
func ContainsFold(text, sub string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(sub))
}
