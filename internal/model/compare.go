package model

// ActivityIDComparison 汇总表与资源分配表的作业 ID 对比
type ActivityIDComparison struct {
	SummaryUnique int      `json:"summaryUnique"`
	AssignUnique  int      `json:"assignUnique"`
	SummaryOnly   []string `json:"summaryOnly"`
	AssignOnly    []string `json:"assignOnly"`
}

// Matches 两侧 ID 集合是否一致
func (c ActivityIDComparison) Matches() bool {
	return len(c.SummaryOnly) == 0 && len(c.AssignOnly) == 0
}
