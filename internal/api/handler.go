package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wbsdash/internal/importer"
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
	"wbsdash/internal/workbook"
)

// WorkbookDir 数据目录下存放工作簿的子目录
const WorkbookDir = "workbooks"

// Handler 分析 API 处理器
type Handler struct {
	coord   *importer.Coordinator
	dataDir string
	mapping model.ColumnMapping
	started time.Time
}

// NewHandler 创建处理器；mapping 为所有请求默认使用的列映射
func NewHandler(coord *importer.Coordinator, dataDir string, mapping model.ColumnMapping) *Handler {
	return &Handler{
		coord:   coord,
		dataDir: dataDir,
		mapping: mapping,
		started: time.Now(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/workbooks", h.ListWorkbooks)
	router.GET("/runs", h.ListRuns)

	// 引擎操作
	router.GET("/tables", h.GetTables)
	router.GET("/headers", h.GetHeaders)
	router.GET("/compare", h.Compare)
	router.GET("/schedule", h.GetSchedule)
	router.GET("/preview", h.GetPreview)
	router.GET("/weekly", h.GetWeekly)
	router.GET("/wbs", h.GetWBS)
	router.GET("/report", h.Report)
	router.GET("/export", h.Export)

	// 列映射
	router.POST("/mapping/suggest", h.SuggestMapping)
}

// requestFrom 解析公共查询参数：file, today, type, preferFirst, activity
func (h *Handler) requestFrom(c *gin.Context) (importer.Request, error) {
	req := importer.Request{Mapping: h.mapping}

	path, err := h.resolveFile(c.Query("file"))
	if err != nil {
		return req, err
	}
	req.Path = path

	if v := strings.TrimSpace(c.Query("today")); v != "" {
		d, ok := parser.ParseDateText(v)
		if !ok {
			return req, badRequest("invalid today: " + v)
		}
		req.Today = d
	}
	if v := c.Query("type"); v != "" {
		t := model.TableType(v)
		if _, ok := model.CanonicalFields[t]; !ok {
			return req, badRequest("invalid table type: " + v)
		}
		req.TableType = t
	}
	if v := c.Query("preferFirst"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, badRequest("invalid preferFirst: " + v)
		}
		req.PreferFirst = b
	}
	req.ActivityID = strings.TrimSpace(c.Query("activity"))
	return req, nil
}

// resolveFile 把相对文件名限制在工作簿目录内
func (h *Handler) resolveFile(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", badRequest("file is required")
	}
	if filepath.IsAbs(name) {
		return "", badRequest("file must be relative to the workbook directory")
	}
	root := filepath.Join(h.dataDir, WorkbookDir)
	path := filepath.Join(root, filepath.Clean(name))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", badRequest("file escapes the workbook directory")
	}
	return path, nil
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

// writeError 参数错误 400，工作簿读取失败 422，其余 500
func writeError(c *gin.Context, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case workbook.IsReadError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// serve 通用的 解析参数 -> 协调器 -> JSON 响应
func (h *Handler) serve(c *gin.Context, run func(importer.Request) (*importer.Response, error)) {
	req, err := h.requestFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := run(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// workbookFiles 工作簿目录下的 Excel 文件（相对路径）
func (h *Handler) workbookFiles() ([]string, error) {
	root := filepath.Join(h.dataDir, WorkbookDir)
	out := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm", ".xltx", ".xltm":
			rel, _ := filepath.Rel(root, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out, err
}
