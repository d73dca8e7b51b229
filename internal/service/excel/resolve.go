package excel

import (
	"fmt"
	"sort"

	"wbsdash/internal/model"
	"wbsdash/internal/parser"
	"wbsdash/internal/workbook"
)

// Spreadsheet Field 标记，区分三张周累计表
const (
	MarkerCumBudgeted  = "Cum Budgeted Units"
	MarkerCumActual    = "Cum Actual Units"
	MarkerCumRemaining = "Cum Remaining Early Units"
)

// session 一次调用内共享的检测结果与表格帧，调用结束即丢弃
type session struct {
	wb      *workbook.Workbook
	tables  []model.TableDescriptor
	mapping model.ColumnMapping
	mapper  *parser.FieldMapper
	frames  map[string]*mappedFrame
}

// mappedFrame 按生效映射重命名后的表格帧
type mappedFrame struct {
	*TableFrame
	Mapping model.ResolvedMapping
}

func newSession(e *Engine, wb *workbook.Workbook, mapping model.ColumnMapping) *session {
	return &session{
		wb:      wb,
		tables:  e.detector.Detect(wb),
		mapping: mapping,
		mapper:  e.mapper,
		frames:  make(map[string]*mappedFrame),
	}
}

// tablesOf 某类型的表格，保持检测顺序
func (s *session) tablesOf(t model.TableType) []model.TableDescriptor {
	out := make([]model.TableDescriptor, 0)
	for _, d := range s.tables {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// pick 选择表格：preferFirst 取第一张，否则取数据行最多的（并列取靠前的）
func (s *session) pick(t model.TableType, preferFirst bool) (model.TableDescriptor, bool) {
	cands := s.tablesOf(t)
	if len(cands) == 0 {
		return model.TableDescriptor{}, false
	}
	if preferFirst {
		return cands[0], true
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].RowCount() > cands[j].RowCount()
	})
	return cands[0], true
}

// frame 读取表格并应用映射（显式 > 建议 > 未映射）
func (s *session) frame(desc model.TableDescriptor) *mappedFrame {
	key := desc.Sheet + "!" + desc.RangeA1
	if f, ok := s.frames[key]; ok {
		return f
	}
	sheet := s.wb.Sheet(desc.Sheet)
	if sheet == nil {
		sheet = workbook.NewSheet(desc.Sheet, nil)
	}
	raw := NewFrame(sheet, desc)
	resolved := s.mapper.Resolve(raw.SourceColumns(), desc.Type, s.mapping.For(desc.Type))
	f := &mappedFrame{TableFrame: raw.Rename(resolved.Fields), Mapping: resolved}
	s.frames[key] = f
	return f
}

// missingFields 必需字段中未能映射的部分
func missingFields(f *mappedFrame, required ...string) []string {
	out := make([]string, 0)
	for _, field := range required {
		if !f.Has(field) {
			out = append(out, field)
		}
	}
	return out
}

// assignmentTable 带 Spreadsheet Field 标记信息的资源分配表
type assignmentTable struct {
	*mappedFrame
	marker    string
	hasMarker bool     // 表内存在带该标记的行
	fields    []string // 逐行 Spreadsheet Field（空单元格继承上一行，对应合并单元格）
	weeks     []WeekColumn
}

func (s *session) assignment(desc model.TableDescriptor, marker string) *assignmentTable {
	f := s.frame(desc)
	a := &assignmentTable{
		mappedFrame: f,
		marker:      marker,
		fields:      make([]string, len(f.Rows)),
		weeks:       f.WeekColumns(),
	}
	last := ""
	for i := range f.Rows {
		if v := f.Text(i, model.FieldSpreadsheetField); v != "" {
			last = v
		}
		a.fields[i] = last
		if parser.ContainsFold(last, marker) {
			a.hasMarker = true
		}
	}
	return a
}

// selectAssignment 选择第一张含 marker 行的资源分配表；
// fallback 时退回数据行最多的表并返回警告
func (s *session) selectAssignment(marker string, fallback bool) (*assignmentTable, string, error) {
	cands := s.tablesOf(model.TableTypeResourceAssignments)
	if len(cands) == 0 {
		return nil, "", fmt.Errorf("no Resource Assignments table found")
	}
	for _, d := range cands {
		if a := s.assignment(d, marker); a.hasMarker {
			return a, "", nil
		}
	}
	if !fallback {
		return nil, "", fmt.Errorf("no Resource Assignments table has a %q row", marker)
	}
	d, _ := s.pick(model.TableTypeResourceAssignments, false)
	warn := fmt.Sprintf("no Resource Assignments table has a %q row; using largest table %s!%s", marker, d.Sheet, d.RangeA1)
	return s.assignment(d, marker), warn, nil
}

// rowMatches 表内有标记行时只接受标记行
func (a *assignmentTable) rowMatches(i int) bool {
	if !a.hasMarker {
		return true
	}
	return parser.ContainsFold(a.fields[i], a.marker)
}

// rowFor 作业 ID 第一次出现的行
func (a *assignmentTable) rowFor(activityID string) (int, bool) {
	if activityID == "" {
		return -1, false
	}
	for i := range a.Rows {
		if a.rowMatches(i) && a.Text(i, model.FieldActivityID) == activityID {
			return i, true
		}
	}
	return -1, false
}

// activityIDs 去重后的作业 ID，保持文档顺序
func (a *assignmentTable) activityIDs() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for i := range a.Rows {
		if !a.rowMatches(i) {
			continue
		}
		id := a.Text(i, model.FieldActivityID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
