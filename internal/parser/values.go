package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"wbsdash/internal/workbook"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "02-Jan-06"

	// 表头日期序列号的合理范围（1954-10 ~ 2119-01）
	minHeaderSerial = 20000
	maxHeaderSerial = 80000
)

// 可接受的日期文本格式
var dateLayouts = []string{
	isoDateLayout,
	"2006-01-02 15:04:05",
	"02-Jan-06",
	"2-Jan-06",
	"02/01/2006",
	"02/01/06",
	"2/1/2006",
}

var numberReplacer = strings.NewReplacer(
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"\t", "",
	"%", "",
	"€", "",
	"$", "",
	"£", "",
	"¥", "",
)

// cleanNumberText 去掉空白、百分号和货币符号；只有逗号时逗号视为小数点，否则视为千分位
func cleanNumberText(s string) string {
	s = numberReplacer.Replace(strings.TrimSpace(s))
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	return s
}

// AsFloat 单元格转数值；日期与无法解析的文本返回 false
func AsFloat(v workbook.Value) (float64, bool) {
	switch v.Kind {
	case workbook.KindNumber:
		return v.Num, true
	case workbook.KindText:
		s := cleanNumberText(v.Text)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ParsePercent 解析百分比：绝对值不超过 1 视为小数并乘以 100，否则视为已是百分数
func ParsePercent(v workbook.Value) (float64, bool) {
	f, ok := AsFloat(v)
	if !ok {
		return 0, false
	}
	if math.Abs(f) <= 1 {
		return f * 100, true
	}
	return f, true
}

// ParseDays 解析天数（如 2、"2d"、"-3 days"），四舍五入为整数
func ParseDays(v workbook.Value) (int, bool) {
	if v.Kind == workbook.KindText {
		s := strings.ToLower(strings.TrimSpace(v.Text))
		for _, suffix := range []string{"days", "day", "jours", "jour", "d", "j"} {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
				break
			}
		}
		v = workbook.Text(s)
	}
	f, ok := AsFloat(v)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

// ParseDate 解析日期：时间值、Excel 序列号（1899-12-30 起算）或可接受格式的文本
func ParseDate(v workbook.Value) (time.Time, bool) {
	switch v.Kind {
	case workbook.KindTime:
		return dateOnly(v.Time), true
	case workbook.KindNumber:
		return serialToDate(v.Num)
	case workbook.KindText:
		return ParseDateText(v.Text)
	default:
		return time.Time{}, false
	}
}

// ParseDateText 按可接受格式解析日期文本
func ParseDateText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// ParseHeaderDate 判断表头是否为周日期列；数值只接受合理范围内的序列号
func ParseHeaderDate(v workbook.Value) (time.Time, bool) {
	if v.Kind == workbook.KindNumber && (v.Num < minHeaderSerial || v.Num > maxHeaderSerial) {
		return time.Time{}, false
	}
	return ParseDate(v)
}

func serialToDate(serial float64) (time.Time, bool) {
	if serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return dateOnly(t), true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate 输出 dd-Mon-yy
func FormatDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

// FormatISODate 输出 YYYY-MM-DD
func FormatISODate(t time.Time) string {
	return t.Format(isoDateLayout)
}

// MondayOf 所在 ISO 周的周一
func MondayOf(t time.Time) time.Time {
	d := dateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// ISOWeekLabel 形如 2025-W06
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// FormatPercent 两位小数百分比
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatSignedPercent 带符号的两位小数百分比
func FormatSignedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatDays 天数显示，如 2d
func FormatDays(d int) string {
	return fmt.Sprintf("%dd", d)
}

// FormatNumber 数值的紧凑显示
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
