package excel

import (
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
	"wbsdash/internal/workbook"
)

// ScanLimit 表头扫描的行列上限
type ScanLimit struct {
	Rows int `json:"rows" toml:"rows"`
	Cols int `json:"cols" toml:"cols"`
}

// 默认的逐级扫描上限；前一级找不到任何表格才进入下一级
var DefaultScanLimits = []ScanLimit{
	{Rows: 200, Cols: 80},
	{Rows: 8000, Cols: 600},
}

// DefaultHardMax xlsx 的最大行列数
var DefaultHardMax = ScanLimit{Rows: 1048576, Cols: 16384}

// Detector 在工作簿中查找作业汇总表与资源分配表，不依赖 sheet 命名
type Detector struct {
	limits     []ScanLimit
	hardMax    ScanLimit
	recognizer *parser.HeaderRecognizer
}

// NewDetector 创建检测器；limits 为空时使用默认值
func NewDetector(limits []ScanLimit, hardMax ScanLimit) *Detector {
	if len(limits) == 0 {
		limits = DefaultScanLimits
	}
	if hardMax.Rows <= 0 || hardMax.Cols <= 0 {
		hardMax = DefaultHardMax
	}
	return &Detector{
		limits:     limits,
		hardMax:    hardMax,
		recognizer: parser.NewHeaderRecognizer(),
	}
}

// Detect 按 (sheet, 行) 顺序返回候选表格
func (d *Detector) Detect(wb *workbook.Workbook) []model.TableDescriptor {
	if wb == nil {
		return []model.TableDescriptor{}
	}
	levels := append(append([]ScanLimit{}, d.limits...), d.hardMax)
	for _, limit := range levels {
		limit = d.clamp(limit)
		tables := make([]model.TableDescriptor, 0)
		for _, sheet := range wb.Sheets {
			tables = append(tables, d.scanSheet(sheet, limit)...)
		}
		if len(tables) > 0 {
			return tables
		}
	}
	return []model.TableDescriptor{}
}

func (d *Detector) clamp(l ScanLimit) ScanLimit {
	if l.Rows <= 0 || l.Rows > d.hardMax.Rows {
		l.Rows = d.hardMax.Rows
	}
	if l.Cols <= 0 || l.Cols > d.hardMax.Cols {
		l.Cols = d.hardMax.Cols
	}
	return l
}

func (d *Detector) scanSheet(sheet *workbook.Sheet, limit ScanLimit) []model.TableDescriptor {
	maxRow := min(sheet.MaxRow(), limit.Rows)
	maxCol := min(sheet.MaxColumn(), limit.Cols)
	bodyMax := min(sheet.MaxRow(), d.hardMax.Rows)

	out := make([]model.TableDescriptor, 0)
	for r := 1; r <= maxRow; r++ {
		if sheet.RowIsBlank(r, 1, maxCol) {
			continue
		}
		cells := sheet.IterRows(r, r, 1, maxCol)[0]
		end := r
		for {
			desc, ok := d.headerAt(sheet, r, cells, bodyMax)
			if !ok {
				break
			}
			out = append(out, desc)
			end = max(end, desc.Range.R2)
			// 同一表头行右侧可能还有表格
			cells = blankThrough(cells, desc.Range.C2)
		}
		r = end
	}
	return out
}

// blankThrough 复制一行并清空前 col 列
func blankThrough(cells []workbook.Value, col int) []workbook.Value {
	out := make([]workbook.Value, len(cells))
	copy(out, cells)
	for i := 0; i < col && i < len(out); i++ {
		out[i] = workbook.Empty()
	}
	return out
}

// headerAt 判断第 r 行是否为表头；是则确定列跨度并向下延伸到第一个空行
func (d *Detector) headerAt(sheet *workbook.Sheet, r int, cells []workbook.Value, bodyMax int) (model.TableDescriptor, bool) {
	m := d.recognizer.Recognize(cells)
	if m.Type == model.TableTypeUnknown {
		return model.TableDescriptor{}, false
	}

	// Activity ID 所在的连续非空列段
	idCol := m.Columns[model.FieldActivityID]
	c1, c2 := idCol, idCol
	for c1 > 1 && !cells[c1-2].IsBlank() {
		c1--
	}
	for c2 < len(cells) && !cells[c2].IsBlank() {
		c2++
	}

	span := d.recognizer.Recognize(cells[c1-1 : c2])
	if span.Type == model.TableTypeUnknown {
		return model.TableDescriptor{}, false
	}

	r2 := r
	for next := r + 1; next <= bodyMax && !sheet.RowIsBlank(next, c1, c2); next++ {
		r2 = next
	}

	rng := model.Range{R1: r, C1: c1, R2: r2, C2: c2}
	missing := span.MissingFields
	if missing == nil {
		missing = []string{}
	}
	return model.TableDescriptor{
		Sheet:           sheet.Title(),
		Range:           rng,
		RangeA1:         rng.String(),
		HeaderRow:       r,
		Type:            span.Type,
		MissingFields:   missing,
		DateColumnCount: len(span.DateColumns),
	}, true
}
