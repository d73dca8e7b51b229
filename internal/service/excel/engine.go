package excel

import (
	"time"

	"wbsdash/internal/model"
	"wbsdash/internal/parser"
	"wbsdash/internal/workbook"
)

// Options 引擎参数
type Options struct {
	ScanLimits []ScanLimit
	HardMax    ScanLimit
	Now        func() time.Time // 未提供 today 时使用
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		ScanLimits: DefaultScanLimits,
		HardMax:    DefaultHardMax,
		Now:        time.Now,
	}
}

// Engine 工作簿分析引擎。无内部可变状态，可被并发调用；
// 同一个 Workbook 在被读取期间不得修改
type Engine struct {
	opts     Options
	detector *Detector
	mapper   *parser.FieldMapper
}

// NewEngine 创建引擎
func NewEngine(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		opts:     opts,
		detector: NewDetector(opts.ScanLimits, opts.HardMax),
		mapper:   parser.NewFieldMapper(),
	}
}

// TableHeaders 某类表格的表头
type TableHeaders struct {
	Table   model.TableDescriptor `json:"table"`
	Headers []string              `json:"headers"` // 原始列标签（已去重）
	Columns []string              `json:"columns"` // 应用映射后的列标签
	Meta    model.TableMeta       `json:"meta"`
	Mapping model.ResolvedMapping `json:"mapping"`
}

func (e *Engine) today(today time.Time) time.Time {
	if today.IsZero() {
		return e.opts.Now()
	}
	return today
}

// DetectTables 检测所有候选表格
func (e *Engine) DetectTables(wb *workbook.Workbook) []model.TableDescriptor {
	return e.detector.Detect(wb)
}

// GetTableHeaders 取某类型中数据行最多的表格的表头；不存在返回 nil
func (e *Engine) GetTableHeaders(wb *workbook.Workbook, t model.TableType, mapping model.ColumnMapping) *TableHeaders {
	s := newSession(e, wb, mapping)
	desc, ok := s.pick(t, false)
	if !ok {
		return nil
	}
	f := s.frame(desc)
	return &TableHeaders{
		Table:   desc,
		Headers: f.SourceColumns(),
		Columns: append([]string(nil), f.Columns...),
		Meta:    f.Meta,
		Mapping: f.Mapping,
	}
}

// SuggestMapping 按同义词建议 规范字段 -> 实际表头
func (e *Engine) SuggestMapping(headers []string, t model.TableType) map[string]string {
	return e.mapper.Suggest(headers, t)
}

// ResolveMapping 某类型表格最终生效的映射；表格不存在返回 false
func (e *Engine) ResolveMapping(wb *workbook.Workbook, t model.TableType, mapping model.ColumnMapping) (model.ResolvedMapping, bool) {
	h := e.GetTableHeaders(wb, t, mapping)
	if h == nil {
		return model.ResolvedMapping{}, false
	}
	return h.Mapping, true
}

// CompareActivityIDs 对比汇总表与计划资源分配表的作业 ID
func (e *Engine) CompareActivityIDs(wb *workbook.Workbook, mapping model.ColumnMapping) model.ActivityIDComparison {
	s := newSession(e, wb, mapping)
	empty := model.ActivityIDComparison{SummaryOnly: []string{}, AssignOnly: []string{}}
	a, _, err := s.selectAssignment(MarkerCumBudgeted, true)
	if err != nil {
		return empty
	}
	cmp, ok := s.compareIDs(a)
	if !ok {
		return empty
	}
	return cmp
}

// BuildScheduleLookup 计算每个作业本周的计划进度；today 为零值时取当前时间
func (e *Engine) BuildScheduleLookup(wb *workbook.Workbook, today time.Time, mapping model.ColumnMapping) model.ScheduleLookup {
	return newSession(e, wb, mapping).scheduleLookup(e.today(today))
}

// BuildPreviewRows 汇总表的扁平行列表（含层级）
func (e *Engine) BuildPreviewRows(wb *workbook.Workbook, t model.TableType, preferFirst bool, mapping model.ColumnMapping) []model.ActivityRow {
	return e.Preview(wb, t, preferFirst, mapping).Rows
}

// Preview 同 BuildPreviewRows，附带表格与状态信息
func (e *Engine) Preview(wb *workbook.Workbook, t model.TableType, preferFirst bool, mapping model.ColumnMapping) PreviewResult {
	return newSession(e, wb, mapping).previewRows(t, preferFirst)
}

// BuildWeeklyProgress 单个作业的周进度序列
func (e *Engine) BuildWeeklyProgress(wb *workbook.Workbook, activityID string, today time.Time, mapping model.ColumnMapping) model.WeeklyProgress {
	return newSession(e, wb, mapping).weeklyProgress(activityID, e.today(today))
}

// ExtractAllWBS 为每张汇总表构建 WBS 树；lookup 为 nil 时按当前日期计算
func (e *Engine) ExtractAllWBS(wb *workbook.Workbook, lookup *model.ScheduleLookup, mapping model.ColumnMapping) model.WBSExtraction {
	s := newSession(e, wb, mapping)
	if lookup == nil {
		l := s.scheduleLookup(e.today(time.Time{}))
		lookup = &l
	}
	return s.extractAllWBS(lookup)
}
