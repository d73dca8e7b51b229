package model

// NodeMetrics WBS 节点指标；缺失值 display 为 "?"
type NodeMetrics struct {
	PlannedFinish        string `json:"plannedFinish"`
	PlannedFinishDisplay string `json:"plannedFinishDisplay"`
	PlannedFinishTip     string `json:"plannedFinishTip"`

	ForecastFinish        string `json:"forecastFinish"`
	ForecastFinishDisplay string `json:"forecastFinishDisplay"`
	ForecastFinishTip     string `json:"forecastFinishTip"`

	Schedule        *float64 `json:"schedule"`
	ScheduleDisplay string   `json:"scheduleDisplay"`
	ScheduleTip     string   `json:"scheduleTip"`

	Earned        *float64 `json:"earned"`
	EarnedDisplay string   `json:"earnedDisplay"`
	EarnedTip     string   `json:"earnedTip"`

	Variance        *float64 `json:"variance"`
	VarianceDisplay string   `json:"varianceDisplay"`
	VarianceTip     string   `json:"varianceTip"`

	Impact        *float64 `json:"impact"`
	ImpactDisplay string   `json:"impactDisplay"`
	ImpactTip     string   `json:"impactTip"`

	Slip        *int   `json:"slip"` // 天
	SlipDisplay string `json:"slipDisplay"`
	SlipTip     string `json:"slipTip"`
}

// WBSNode WBS 树节点，根节点 Level 为 1
type WBSNode struct {
	ActivityID string      `json:"activityId"`
	Label      string      `json:"label"`
	Level      int         `json:"level"`
	Metrics    NodeMetrics `json:"metrics"`
	Children   []*WBSNode  `json:"children"`
}

// Walk 深度优先遍历
func (n *WBSNode) Walk(fn func(node *WBSNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find 按作业 ID 查找节点
func (n *WBSNode) Find(activityID string) *WBSNode {
	var found *WBSNode
	n.Walk(func(node *WBSNode) {
		if found == nil && node.ActivityID == activityID {
			found = node
		}
	})
	return found
}

// WBSResult 单个作业汇总表的 WBS 树
type WBSResult struct {
	Sheet string   `json:"sheet"`
	Range string   `json:"range"`
	WBS   *WBSNode `json:"wbs"`
}

// WBSExtraction 全工作簿 WBS 提取结果
type WBSExtraction struct {
	Status   Status       `json:"status"`
	Tables   []WBSResult  `json:"tables"`
	Schedule ScheduleInfo `json:"schedule"`
	Errors   []string     `json:"errors"`
}
