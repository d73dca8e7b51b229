package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"wbsdash/internal/config"
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
	"wbsdash/internal/service/excel"
	"wbsdash/internal/store"
	"wbsdash/internal/workbook"
)

// Coordinator 分析协调器：文件身份 -> 缓存 -> 加载工作簿 -> 引擎计算 -> 运行日志
type Coordinator struct {
	engine *excel.Engine
	store  *store.Store // 为 nil 时不缓存也不记录
	sheets []string
	now    func() time.Time
}

// Options 协调器选项
type Options struct {
	Sheets []string         // 允许加载的 sheet
	Now    func() time.Time // 未提供 today 时使用
}

// NewCoordinator 创建分析协调器
func NewCoordinator(engine *excel.Engine, st *store.Store, opts Options) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		engine: engine,
		store:  st,
		sheets: opts.Sheets,
		now:    opts.Now,
	}
}

// EngineOptions 由配置生成引擎参数；配置的扫描上限作为第一级，更大的默认级别依次追加
func EngineOptions(cfg config.EngineConfig) excel.Options {
	opts := excel.DefaultOptions()
	if cfg.ScanMaxRows > 0 && cfg.ScanMaxCols > 0 {
		first := excel.ScanLimit{Rows: cfg.ScanMaxRows, Cols: cfg.ScanMaxCols}
		limits := []excel.ScanLimit{first}
		for _, l := range excel.DefaultScanLimits {
			if l.Rows > first.Rows || l.Cols > first.Cols {
				limits = append(limits, l)
			}
		}
		opts.ScanLimits = limits
	}
	if cfg.HardMaxRows > 0 {
		opts.HardMax.Rows = cfg.HardMaxRows
	}
	if cfg.HardMaxCols > 0 {
		opts.HardMax.Cols = cfg.HardMaxCols
	}
	return opts
}

// Request 一次分析请求
type Request struct {
	Path        string
	Today       time.Time
	Mapping     model.ColumnMapping
	TableType   model.TableType
	PreferFirst bool
	ActivityID  string
}

// Response 分析结果（JSON 序列化后的载荷）
type Response struct {
	RunID     string          `json:"runId"`
	Operation model.Operation `json:"operation"`
	Cached    bool            `json:"cached"`
	Today     string          `json:"today"`
	Data      json.RawMessage `json:"data"`
}

// outcome 引擎计算结果及其状态摘要
type outcome struct {
	data     any
	status   model.Status
	warnings int
}

// Identify 读取文件身份；文件不存在时返回 workbook.ReadError
func Identify(path string) (model.FileIdentity, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fi, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.FileIdentity{}, &workbook.ReadError{Path: path, Err: workbook.ErrFileNotFound}
		}
		return model.FileIdentity{}, &workbook.ReadError{Path: path, Err: err}
	}
	return model.FileIdentity{Path: abs, ModTime: fi.ModTime(), Size: fi.Size()}, nil
}

// Tables 检测表格
func (c *Coordinator) Tables(req Request) (*Response, error) {
	return c.run(model.OpDetectTables, req, nil, func(wb *workbook.Workbook, _ time.Time) outcome {
		tables := c.engine.DetectTables(wb)
		status := model.StatusOK
		if len(tables) == 0 {
			status = model.StatusMissingTable
		}
		return outcome{data: tables, status: status}
	})
}

// Headers 某类表格的表头与生效映射
func (c *Coordinator) Headers(req Request) (*Response, error) {
	t := tableTypeOr(req.TableType, model.TableTypeActivitySummary)
	return c.run(model.OpTableHeaders, req, []string{string(t)}, func(wb *workbook.Workbook, _ time.Time) outcome {
		h := c.engine.GetTableHeaders(wb, t, req.Mapping)
		if h == nil {
			return outcome{data: nil, status: model.StatusMissingTable}
		}
		return outcome{data: h, status: model.StatusOK, warnings: len(h.Mapping.Unmapped)}
	})
}

// Compare 对比作业 ID
func (c *Coordinator) Compare(req Request) (*Response, error) {
	return c.run(model.OpCompareIDs, req, nil, func(wb *workbook.Workbook, _ time.Time) outcome {
		cmp := c.engine.CompareActivityIDs(wb, req.Mapping)
		warnings := 0
		if !cmp.Matches() {
			warnings = 1
		}
		return outcome{data: cmp, status: model.StatusOK, warnings: warnings}
	})
}

// Schedule 本周计划进度
func (c *Coordinator) Schedule(req Request) (*Response, error) {
	return c.run(model.OpScheduleLookup, req, nil, func(wb *workbook.Workbook, today time.Time) outcome {
		l := c.engine.BuildScheduleLookup(wb, today, req.Mapping)
		return outcome{data: l, status: l.Info.Status, warnings: len(l.Info.Errors)}
	})
}

// Preview 汇总表预览行
func (c *Coordinator) Preview(req Request) (*Response, error) {
	t := tableTypeOr(req.TableType, model.TableTypeActivitySummary)
	params := []string{string(t), fmt.Sprint(req.PreferFirst)}
	return c.run(model.OpPreviewRows, req, params, func(wb *workbook.Workbook, _ time.Time) outcome {
		p := c.engine.Preview(wb, t, req.PreferFirst, req.Mapping)
		return outcome{data: p, status: p.Status, warnings: len(p.Errors)}
	})
}

// Weekly 单个作业的周进度
func (c *Coordinator) Weekly(req Request) (*Response, error) {
	if req.ActivityID == "" {
		return nil, errors.New("activity id is required")
	}
	return c.run(model.OpWeeklyProgress, req, []string{req.ActivityID}, func(wb *workbook.Workbook, today time.Time) outcome {
		p := c.engine.BuildWeeklyProgress(wb, req.ActivityID, today, req.Mapping)
		return outcome{data: p, status: p.Info.Status, warnings: len(p.Info.Errors)}
	})
}

// WBS 全部汇总表的 WBS 树
func (c *Coordinator) WBS(req Request) (*Response, error) {
	return c.run(model.OpExtractWBS, req, nil, func(wb *workbook.Workbook, today time.Time) outcome {
		l := c.engine.BuildScheduleLookup(wb, today, req.Mapping)
		res := c.engine.ExtractAllWBS(wb, &l, req.Mapping)
		return outcome{data: res, status: res.Status, warnings: len(res.Errors)}
	})
}

// Runs 最近的分析记录
func (c *Coordinator) Runs(limit int) ([]model.AnalysisRun, error) {
	if c.store == nil {
		return []model.AnalysisRun{}, nil
	}
	return c.store.ListRuns(limit)
}

func (c *Coordinator) run(op model.Operation, req Request, params []string, compute func(*workbook.Workbook, time.Time) outcome) (*Response, error) {
	id, err := Identify(req.Path)
	if err != nil {
		return nil, err
	}
	today := req.Today
	if today.IsZero() {
		today = c.now()
	}
	resp := &Response{Operation: op, Today: parser.FormatISODate(today)}
	key := store.CacheKey{
		File:          id,
		MappingDigest: req.Mapping.Digest(),
		Today:         resp.Today,
		Operation:     op,
		Params:        params,
	}

	if c.store != nil {
		payload, ok, err := c.store.GetCached(key)
		if err != nil {
			log.Printf("读取缓存失败: %v", err)
		}
		if ok {
			resp.Cached = true
			resp.Data = payload
			resp.RunID = c.logCached(op, id)
			return resp, nil
		}
	}

	resp.RunID = uuid.NewString()
	c.beginRun(resp.RunID, op, id)

	wb, err := workbook.Load(id.Path, c.sheets)
	if err != nil {
		c.finishRun(resp.RunID, model.RunStatusFailed, outcome{}, err.Error())
		return nil, err
	}

	out := compute(wb, today)
	data, err := json.Marshal(out.data)
	if err != nil {
		c.finishRun(resp.RunID, model.RunStatusFailed, out, err.Error())
		return nil, fmt.Errorf("encode %s result: %w", op, err)
	}
	resp.Data = data

	if c.store != nil {
		if err := c.store.PutCached(key, data); err != nil {
			log.Printf("写入缓存失败: %v", err)
		}
	}
	c.finishRun(resp.RunID, model.RunStatusSuccess, out, "")
	return resp, nil
}

func (c *Coordinator) beginRun(runID string, op model.Operation, id model.FileIdentity) {
	if c.store == nil {
		return
	}
	err := c.store.CreateRun(model.AnalysisRun{
		ID:        runID,
		FilePath:  id.Path,
		FileSize:  id.Size,
		Operation: op,
		StartedAt: c.now(),
	})
	if err != nil {
		log.Printf("记录分析失败: %v", err)
	}
}

func (c *Coordinator) finishRun(runID, status string, out outcome, message string) {
	if c.store == nil {
		return
	}
	if err := c.store.FinishRun(runID, status, out.status, out.warnings, message); err != nil {
		log.Printf("更新分析记录失败: %v", err)
	}
}

// logCached 缓存命中也记录一次运行
func (c *Coordinator) logCached(op model.Operation, id model.FileIdentity) string {
	runID := uuid.NewString()
	err := c.store.CreateRun(model.AnalysisRun{
		ID:        runID,
		FilePath:  id.Path,
		FileSize:  id.Size,
		Operation: op,
		Status:    model.RunStatusCached,
		StartedAt: c.now(),
	})
	if err != nil {
		log.Printf("记录分析失败: %v", err)
		return runID
	}
	if err := c.store.FinishRun(runID, model.RunStatusCached, "", 0, ""); err != nil {
		log.Printf("更新分析记录失败: %v", err)
	}
	return runID
}

func tableTypeOr(t, fallback model.TableType) model.TableType {
	if t == "" {
		return fallback
	}
	return t
}
