package excel

import (
	"sort"

	"wbsdash/internal/model"
	"wbsdash/internal/parser"
)

// PreviewResult 预览行及其来源表格
type PreviewResult struct {
	Rows          []model.ActivityRow    `json:"rows"`
	Table         *model.TableDescriptor `json:"table"`
	Status        model.Status           `json:"status"`
	MissingFields []string               `json:"missingFields,omitempty"`
	Errors        []string               `json:"errors"`
}

func (s *session) previewRows(t model.TableType, preferFirst bool) PreviewResult {
	res := PreviewResult{Rows: []model.ActivityRow{}, Status: model.StatusOK, Errors: []string{}}
	desc, ok := s.pick(t, preferFirst)
	if !ok {
		res.Status = model.StatusMissingTable
		res.Errors = append(res.Errors, "no "+string(t)+" table found")
		return res
	}
	res.Table = &desc
	res.Rows = rowsFromFrame(s.frame(desc))
	if len(res.Rows) == 0 && !s.frame(desc).Has(model.FieldActivityID) {
		res.Status = model.StatusMissingColumns
		res.MissingFields = []string{model.FieldActivityID}
	}
	return res
}

// rowsFromFrame 按文档顺序提取 Activity ID 非空的行，并按缩进计算层级
func rowsFromFrame(f *mappedFrame) []model.ActivityRow {
	rows := make([]model.ActivityRow, 0, len(f.Rows))
	if !f.Has(model.FieldActivityID) {
		return rows
	}

	budgetField := model.FieldBudgetedLaborUnits
	if f.Table.Type == model.TableTypeResourceAssignments {
		budgetField = model.FieldBudgetedUnits
	}

	for i := range f.Rows {
		raw := f.Value(i, model.FieldActivityID).String()
		id := f.Text(i, model.FieldActivityID)
		if id == "" {
			continue
		}

		row := model.ActivityRow{
			Sheet:          f.Table.Sheet,
			Range:          f.Table.RangeA1,
			RawActivityID:  raw,
			ActivityID:     id,
			ActivityName:   f.Text(i, model.FieldActivityName),
			Indent:         parser.LeadingSpaces(raw),
			ActivityStatus: f.Text(i, model.FieldActivityStatus),
			CellRefs: model.ActivityCellRefs{
				ActivityID:      f.RefOf(i, model.FieldActivityID),
				UnitsComplete:   f.RefOf(i, model.FieldUnitsComplete),
				BLProjectFinish: f.RefOf(i, model.FieldBLProjectFinish),
				Finish:          f.RefOf(i, model.FieldFinish),
				VarianceDays:    f.RefOf(i, model.FieldVarianceBLFinish),
				BudgetedUnits:   f.RefOf(i, budgetField),
			},
		}
		row.DisplayLabel = id
		if row.ActivityName != "" {
			row.DisplayLabel = id + " - " + row.ActivityName
		}
		if v, ok := parser.AsFloat(f.Value(i, budgetField)); ok {
			row.BudgetedUnits = &v
		}
		if v, ok := parser.ParsePercent(f.Value(i, model.FieldUnitsComplete)); ok {
			row.UnitsComplete = &v
		}
		if d, ok := parser.ParseDate(f.Value(i, model.FieldBLProjectFinish)); ok {
			row.BLProjectFinish = parser.FormatDate(d)
		}
		if d, ok := parser.ParseDate(f.Value(i, model.FieldFinish)); ok {
			row.Finish = parser.FormatDate(d)
		}
		if v, ok := parser.ParseDays(f.Value(i, model.FieldVarianceBLFinish)); ok {
			row.VarianceDays = &v
		}
		rows = append(rows, row)
	}

	levels := IndentLevels(rows)
	for i := range rows {
		rows[i].Level = levels[rows[i].Indent]
	}
	return rows
}

// IndentLevels 把出现过的缩进值按升序映射为连续的 0-based 层级
func IndentLevels(rows []model.ActivityRow) map[int]int {
	set := make(map[int]struct{})
	for _, r := range rows {
		set[r.Indent] = struct{}{}
	}
	indents := make([]int, 0, len(set))
	for d := range set {
		indents = append(indents, d)
	}
	sort.Ints(indents)

	out := make(map[int]int, len(indents))
	for i, d := range indents {
		out[d] = i
	}
	return out
}
