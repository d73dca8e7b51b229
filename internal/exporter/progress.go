package exporter

// ProgressEvent 导出进度事件（用于 UI / CLI 展示）
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// 导出阶段
const (
	StageSummary = "summary"
	StageWBS     = "wbs"
	StageWeekly  = "weekly"
	StageDone    = "done"
)

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	percent = max(0, min(100, percent))
	progress(ProgressEvent{
		Percent: percent,
		Stage:   stage,
	})
}
