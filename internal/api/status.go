package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wbsdash/internal/model"
	"wbsdash/internal/parser"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Workbooks     int    `json:"workbooks"`        // 工作簿数量
	MappingDigest string `json:"mappingDigest"`    // 默认映射摘要
	MappingLoaded bool   `json:"mappingLoaded"`    // 是否加载了映射文件
	StartedAt     string `json:"startedAt"`        // 服务启动时间
	LastRunAt     string `json:"lastRunAt"`        // 最近一次分析时间
	LastRunStatus string `json:"lastRunStatus"`    // 最近一次分析状态
	LastRunOp     string `json:"lastRunOperation"` // 最近一次分析操作
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	files, err := h.workbookFiles()
	if err != nil {
		files = nil
	}
	resp := StatusResponse{
		Workbooks:     len(files),
		MappingDigest: h.mapping.Digest(),
		MappingLoaded: len(h.mapping) > 0,
		StartedAt:     h.started.Format(time.RFC3339),
	}
	if runs, err := h.coord.Runs(1); err == nil && len(runs) > 0 {
		resp.LastRunAt = runs[0].StartedAt.Format(time.RFC3339)
		resp.LastRunStatus = runs[0].Status
		resp.LastRunOp = string(runs[0].Operation)
	}
	c.JSON(http.StatusOK, resp)
}

// ListWorkbooks 工作簿目录下的文件
// GET /api/workbooks
func (h *Handler) ListWorkbooks(c *gin.Context) {
	files, err := h.workbookFiles()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// ListRuns 最近的分析记录
// GET /api/runs?limit=
func (h *Handler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	runs, err := h.coord.Runs(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// SuggestMappingRequest 映射建议请求
type SuggestMappingRequest struct {
	Headers []string        `json:"headers" binding:"required"`
	Type    model.TableType `json:"type"`
}

// SuggestMapping 按同义词建议映射
// POST /api/mapping/suggest
func (h *Handler) SuggestMapping(c *gin.Context) {
	var req SuggestMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = model.TableTypeActivitySummary
	}
	if _, ok := model.CanonicalFields[req.Type]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table type: " + string(req.Type)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":    req.Type,
		"mapping": parser.SuggestMapping(req.Headers, req.Type),
	})
}
