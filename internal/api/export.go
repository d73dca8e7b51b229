package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Export 导出 WBS 报告工作簿
// GET /api/export?file=&today=&activity=A-1&activity=A-2
func (h *Handler) Export(c *gin.Context) {
	req, err := h.requestFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}
	activities := make([]string, 0)
	for _, a := range c.QueryArray("activity") {
		if a = strings.TrimSpace(a); a != "" {
			activities = append(activities, a)
		}
	}

	file, err := h.coord.Export(req, activities, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	defer func() { _ = file.Close() }()

	// 设置响应头
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFilename(req.Path)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	// 写入文件
	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入文件失败"})
		return
	}
}

// exportFilename plan.xlsx -> plan-wbs.xlsx
func exportFilename(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return base + "-wbs.xlsx"
}
