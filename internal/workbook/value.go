package workbook

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind 单元格值类型
type Kind int

const (
	KindEmpty  Kind = iota // 空
	KindNumber             // 数值（含 Excel 日期序列号）
	KindText               // 文本
	KindTime               // 日期时间
)

// Value 单元格原始值，只有一种类型有效
type Value struct {
	Kind Kind
	Num  float64
	Text string
	Time time.Time
}

// Empty 空值
func Empty() Value {
	return Value{}
}

// Number 数值；NaN/Inf 视为空
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Kind: KindNumber, Num: f}
}

// Text 文本
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Time 日期时间
func Time(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{Kind: KindTime, Time: t}
}

// Of 把常见 Go 值转换为 Value，用于内存工作簿
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Empty()
	case Value:
		return x
	case string:
		return Text(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case bool:
		if x {
			return Number(1)
		}
		return Number(0)
	case time.Time:
		return Time(x)
	case *time.Time:
		if x == nil {
			return Empty()
		}
		return Time(*x)
	default:
		return Empty()
	}
}

// IsEmpty 是否为空单元格
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// IsBlank 空单元格或纯空白文本
func (v Value) IsBlank() bool {
	if v.Kind == KindEmpty {
		return true
	}
	return v.Kind == KindText && strings.TrimSpace(v.Text) == ""
}

// String 文本表示；空值返回 ""
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Text
	case KindTime:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// MarshalJSON 按原始类型输出
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
	case KindText, KindTime:
		return []byte(strconv.Quote(v.String())), nil
	default:
		return []byte("null"), nil
	}
}
