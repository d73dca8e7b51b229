package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"wbsdash/internal/model"
)

// LoadMappingFile 读取列映射文件（YAML；JSON 作为 YAML 子集同样可读）。
// path 为空时返回 nil 映射
func LoadMappingFile(path string) (model.ColumnMapping, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return ParseMapping(data)
}

// ParseMapping 解析并校验列映射
func ParseMapping(data []byte) (model.ColumnMapping, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}

	out := make(model.ColumnMapping, len(raw))
	for key, sub := range raw {
		t := model.TableType(strings.TrimSpace(key))
		known, ok := model.CanonicalFields[t]
		if !ok {
			return nil, fmt.Errorf("parse mapping: unknown table type %q", key)
		}
		if unknown := unknownFields(sub, known); len(unknown) > 0 {
			return nil, fmt.Errorf("parse mapping: unknown %s fields: %s", t, strings.Join(unknown, ", "))
		}
		fields := make(map[string]string, len(sub))
		for canonical, actual := range sub {
			if strings.TrimSpace(actual) == "" {
				continue
			}
			fields[canonical] = actual
		}
		out[t] = fields
	}
	return out, nil
}

func unknownFields(sub map[string]string, known []string) []string {
	allowed := make(map[string]bool, len(known))
	for _, f := range known {
		allowed[f] = true
	}
	out := make([]string, 0)
	for f := range sub {
		if !allowed[f] {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// SaveMappingFile 以 YAML 写出列映射
func SaveMappingFile(path string, mapping model.ColumnMapping) error {
	raw := make(map[string]map[string]string, len(mapping))
	for t, sub := range mapping {
		raw[string(t)] = sub
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
