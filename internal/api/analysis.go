package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTables 检测表格
// GET /api/tables?file=
func (h *Handler) GetTables(c *gin.Context) {
	h.serve(c, h.coord.Tables)
}

// GetHeaders 表头与生效映射
// GET /api/headers?file=&type=
func (h *Handler) GetHeaders(c *gin.Context) {
	h.serve(c, h.coord.Headers)
}

// Compare 作业 ID 对比
// GET /api/compare?file=
func (h *Handler) Compare(c *gin.Context) {
	h.serve(c, h.coord.Compare)
}

// GetSchedule 本周计划进度
// GET /api/schedule?file=&today=
func (h *Handler) GetSchedule(c *gin.Context) {
	h.serve(c, h.coord.Schedule)
}

// GetPreview 预览行
// GET /api/preview?file=&type=&preferFirst=
func (h *Handler) GetPreview(c *gin.Context) {
	h.serve(c, h.coord.Preview)
}

// GetWeekly 单个作业的周进度
// GET /api/weekly?file=&activity=&today=
func (h *Handler) GetWeekly(c *gin.Context) {
	if c.Query("activity") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activity is required"})
		return
	}
	h.serve(c, h.coord.Weekly)
}

// GetWBS WBS 树
// GET /api/wbs?file=&today=
func (h *Handler) GetWBS(c *gin.Context) {
	h.serve(c, h.coord.WBS)
}

// Report 完整报告 (SSE 流式响应)
// GET /api/report?file=&today=
func (h *Handler) Report(c *gin.Context) {
	req, err := h.requestFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for event := range h.coord.Report(req) {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
