package parser

import (
	"strings"

	"wbsdash/internal/model"
)

const (
	MappingSourceExplicit  = "explicit"
	MappingSourceSuggested = "suggested"
)

// FieldMapper 把实际表头映射到规范字段
type FieldMapper struct{}

// NewFieldMapper 创建字段映射器
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{}
}

// Suggest 按同义词为每个规范字段建议一个实际表头；同一表头只分配一次
func (m *FieldMapper) Suggest(headers []string, t model.TableType) map[string]string {
	out := make(map[string]string)
	used := make(map[int]bool)
	normalized := normalizeAll(headers)

	for _, g := range Groups(t) {
		if idx := findSynonym(g, normalized, used); idx >= 0 {
			out[g.Field] = headers[idx]
			used[idx] = true
		}
	}
	return out
}

// Resolve 合并用户映射与建议映射：显式映射 > 建议映射 > 未映射。
// 显式映射指向不存在的表头时回落到建议
func (m *FieldMapper) Resolve(headers []string, t model.TableType, explicit map[string]string) model.ResolvedMapping {
	res := model.ResolvedMapping{
		Fields:  make(map[string]string),
		Sources: make(map[string]string),
	}
	used := make(map[int]bool)
	normalized := normalizeAll(headers)
	groups := Groups(t)

	for _, g := range groups {
		want, ok := explicit[g.Field]
		if !ok || strings.TrimSpace(want) == "" {
			continue
		}
		if idx := findHeader(want, headers, normalized, used); idx >= 0 {
			res.Fields[g.Field] = headers[idx]
			res.Sources[g.Field] = MappingSourceExplicit
			used[idx] = true
		}
	}

	for _, g := range groups {
		if _, done := res.Fields[g.Field]; done {
			continue
		}
		if idx := findSynonym(g, normalized, used); idx >= 0 {
			res.Fields[g.Field] = headers[idx]
			res.Sources[g.Field] = MappingSourceSuggested
			used[idx] = true
			continue
		}
		res.Unmapped = append(res.Unmapped, g.Field)
	}
	return res
}

// SuggestMapping 包级便捷函数
func SuggestMapping(headers []string, t model.TableType) map[string]string {
	return NewFieldMapper().Suggest(headers, t)
}

func normalizeAll(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// findSynonym 按同义词优先级查找第一个未占用的表头
func findSynonym(g HeaderGroup, normalized []string, used map[int]bool) int {
	for _, syn := range g.Synonyms {
		key := NormalizeHeader(syn)
		for i, h := range normalized {
			if !used[i] && h != "" && h == key {
				return i
			}
		}
	}
	return -1
}

// findHeader 先精确匹配，再按规范化形式匹配
func findHeader(want string, headers, normalized []string, used map[int]bool) int {
	for i, h := range headers {
		if !used[i] && h == want {
			return i
		}
	}
	key := NormalizeHeader(want)
	if key == "" {
		return -1
	}
	for i, h := range normalized {
		if !used[i] && h == key {
			return i
		}
	}
	return -1
}
