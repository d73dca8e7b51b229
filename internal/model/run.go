package model

import "time"

// Operation 引擎操作名，用于缓存键与运行日志
type Operation string

const (
	OpDetectTables   Operation = "tables"
	OpTableHeaders   Operation = "headers"
	OpCompareIDs     Operation = "compare"
	OpScheduleLookup Operation = "schedule"
	OpPreviewRows    Operation = "preview"
	OpWeeklyProgress Operation = "weekly"
	OpExtractWBS     Operation = "wbs"
	OpExportReport   Operation = "export"
)

// 分析运行状态
const (
	RunStatusProcessing = "processing"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
	RunStatusCached     = "cached"
)

// FileIdentity 工作簿文件身份，决定缓存是否有效
type FileIdentity struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"modTime"`
	Size    int64     `json:"size"`
}

// AnalysisRun 一次分析调用的记录
type AnalysisRun struct {
	ID           string     `json:"id"`
	FilePath     string     `json:"filePath"`
	FileSize     int64      `json:"fileSize"`
	Operation    Operation  `json:"operation"`
	Status       string     `json:"status"`
	ResultStatus Status     `json:"resultStatus,omitempty"`
	WarningCount int        `json:"warningCount"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
