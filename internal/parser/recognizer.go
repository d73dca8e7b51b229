package parser

import (
	"wbsdash/internal/model"
	"wbsdash/internal/workbook"
)

// 作业汇总表至少命中的分组数
const minSummaryGroups = 3

// HeaderRecognizer 表头行类型识别器
type HeaderRecognizer struct {
	synonyms map[model.TableType]map[string]string // 规范化同义词 -> 规范字段
}

// NewHeaderRecognizer 创建识别器
func NewHeaderRecognizer() *HeaderRecognizer {
	r := &HeaderRecognizer{synonyms: make(map[model.TableType]map[string]string)}
	for _, t := range model.TableTypes {
		idx := make(map[string]string)
		for _, g := range Groups(t) {
			for _, syn := range g.Synonyms {
				key := NormalizeHeader(syn)
				if _, ok := idx[key]; !ok {
					idx[key] = g.Field
				}
			}
		}
		r.synonyms[t] = idx
	}
	return r
}

// Recognize 识别表头行；cells[0] 对应第 1 列。无法识别时 Type 为 unknown
func (r *HeaderRecognizer) Recognize(cells []workbook.Value) HeaderMatch {
	// 资源分配表签名更严格，优先判定
	if m := r.match(model.TableTypeResourceAssignments, cells); r.isAssignments(m) {
		return m
	}
	if m := r.match(model.TableTypeActivitySummary, cells); r.isSummary(m, cells) {
		return m
	}
	return HeaderMatch{Type: model.TableTypeUnknown}
}

func (r *HeaderRecognizer) match(t model.TableType, cells []workbook.Value) HeaderMatch {
	m := HeaderMatch{Type: t, Columns: make(map[string]int)}
	idx := r.synonyms[t]
	for i, v := range cells {
		if v.IsBlank() {
			continue
		}
		col := i + 1
		if _, ok := ParseHeaderDate(v); ok {
			m.DateColumns = append(m.DateColumns, col)
			continue
		}
		field, ok := idx[NormalizeHeader(v.String())]
		if !ok {
			continue
		}
		if _, taken := m.Columns[field]; !taken {
			m.Columns[field] = col
		}
	}

	groups := Groups(t)
	for _, g := range groups {
		if !m.Has(g.Field) {
			m.MissingFields = append(m.MissingFields, g.Field)
		}
	}
	if len(groups) > 0 {
		m.Confidence = float64(len(m.Columns)) / float64(len(groups))
	}
	return m
}

func (r *HeaderRecognizer) isAssignments(m HeaderMatch) bool {
	return m.Has(model.FieldActivityID) &&
		m.Has(model.FieldBudgetedUnits) &&
		m.Has(model.FieldSpreadsheetField) &&
		len(m.DateColumns) > 0
}

func (r *HeaderRecognizer) isSummary(m HeaderMatch, cells []workbook.Value) bool {
	if len(m.Columns) < minSummaryGroups || !m.Has(model.FieldActivityID) {
		return false
	}
	if !m.Has(model.FieldFinish) && !m.Has(model.FieldBLProjectFinish) {
		return false
	}
	// 带 Spreadsheet Field 列的行属于资源分配表（即使缺少日期列）
	ra := r.synonyms[model.TableTypeResourceAssignments]
	for _, v := range cells {
		if ra[NormalizeHeader(v.String())] == model.FieldSpreadsheetField {
			return false
		}
	}
	return true
}
