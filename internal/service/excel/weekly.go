package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"wbsdash/internal/cellref"
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
)

var sourceMarkers = map[model.WeeklySource]string{
	model.SourcePlanned:      MarkerCumBudgeted,
	model.SourceActualPast:   MarkerCumActual,
	model.SourceActualFuture: MarkerCumRemaining,
}

type weekCell struct {
	value *float64
	ref   *cellref.CellRef
	carry *cellref.CellRef // 并入本周的当前周 Remaining 单元格
}

// weeklySource 一张周累计表中某个作业的按周序列
type weeklySource struct {
	src    model.WeeklySource
	marker string
	table  *assignmentTable
	row    int
	found  bool
	series map[time.Time]weekCell
	weeks  []time.Time // 升序
}

func (ws *weeklySource) last() time.Time {
	return ws.weeks[len(ws.weeks)-1]
}

// loadWeeklySource 定位来源表与作业行；表存在但作业缺失时仍返回周列
func (s *session) loadWeeklySource(src model.WeeklySource, activityID string) (*weeklySource, string, error) {
	marker := sourceMarkers[src]
	a, warn, err := s.selectAssignment(marker, src == model.SourcePlanned)
	if err != nil {
		return nil, "", err
	}

	ws := &weeklySource{src: src, marker: marker, table: a, row: -1, series: make(map[time.Time]weekCell)}
	if missing := missingFields(a.mappedFrame, model.FieldActivityID); len(missing) > 0 {
		err = fmt.Errorf("missing columns in %s!%s: %v", a.Table.Sheet, a.Table.RangeA1, missing)
	} else if row, ok := a.rowFor(activityID); ok {
		ws.row, ws.found = row, true
	} else {
		err = fmt.Errorf("activity %q not found in %s table %s!%s", activityID, marker, a.Table.Sheet, a.Table.RangeA1)
	}

	for _, col := range a.weeks {
		wk := parser.MondayOf(col.Date)
		if src == model.SourcePlanned {
			wk = plannedWeekOf(col.Date)
		}
		if _, dup := ws.series[wk]; dup {
			continue
		}
		cell := weekCell{}
		if ws.found {
			cell.ref = a.Ref(ws.row, col.Index).Ptr()
			if v, ok := parser.AsFloat(a.Rows[ws.row][col.Index]); ok {
				cell.value = &v
			}
		}
		ws.series[wk] = cell
		ws.weeks = append(ws.weeks, wk)
	}
	sort.Slice(ws.weeks, func(i, j int) bool { return ws.weeks[i].Before(ws.weeks[j]) })
	return ws, warn, err
}

// budget 作业预算：优先计划表，其次实际表、剩余表
func (s *session) weeklyBudget(sources map[model.WeeklySource]*weeklySource) (*float64, *cellref.CellRef) {
	for _, src := range model.WeeklySources {
		ws := sources[src]
		if ws == nil || !ws.found || !ws.table.Has(model.FieldBudgetedUnits) {
			continue
		}
		ref := ws.table.RefOf(ws.row, model.FieldBudgetedUnits)
		if v, ok := parser.AsFloat(ws.table.Value(ws.row, model.FieldBudgetedUnits)); ok && v != 0 {
			return &v, ref
		}
	}
	return nil, nil
}

func (s *session) weeklyProgress(activityID string, today time.Time) model.WeeklyProgress {
	id := strings.TrimSpace(activityID)
	target := parser.MondayOf(today)
	info := model.WeeklyInfo{
		Status:       model.StatusOK,
		ActivityID:   id,
		TargetWeek:   parser.FormatISODate(target),
		Tables:       make(map[model.WeeklySource]*model.TableDescriptor),
		SourceErrors: make(map[model.WeeklySource]string),
		Errors:       []string{},
	}
	out := model.WeeklyProgress{Points: []model.WeeklyPoint{}}

	if len(s.tablesOf(model.TableTypeResourceAssignments)) == 0 {
		info.Status = model.StatusMissingTable
		info.Errors = append(info.Errors, "no Resource Assignments table found")
		out.Info = info
		return out
	}

	sources := make(map[model.WeeklySource]*weeklySource)
	anyFound := false
	for _, src := range model.WeeklySources {
		ws, warn, err := s.loadWeeklySource(src, id)
		if warn != "" {
			info.Errors = append(info.Errors, warn)
		}
		if ws != nil {
			desc := ws.table.Table
			info.Tables[src] = &desc
			sources[src] = ws
			anyFound = anyFound || ws.found
		}
		if err != nil {
			info.SourceErrors[src] = err.Error()
			info.Errors = append(info.Errors, fmt.Sprintf("%s: %v", src, err))
		}
	}

	switch {
	case len(sources) == 0:
		info.Status = model.StatusMissingTable
	case sources[model.SourcePlanned] != nil && !sources[model.SourcePlanned].table.Has(model.FieldActivityID):
		info.Status = model.StatusMissingColumns
		info.MissingFields = []string{model.FieldActivityID}
	case !anyFound:
		info.Status = model.StatusActivityNotFound
	}

	budget, budgetCell := s.weeklyBudget(sources)
	info.BudgetedUnits = budget
	if budget == nil && anyFound {
		info.Errors = append(info.Errors, fmt.Sprintf("Budgeted Units missing or 0 for activity %q", id))
	}

	b := &weeklyBuilder{
		target:     target,
		sources:    sources,
		budget:     budget,
		budgetCell: budgetCell,
		info:       &info,
	}
	out.Points = b.build()
	out.Info = info
	return out
}

type weeklyBuilder struct {
	target     time.Time
	sources    map[model.WeeklySource]*weeklySource
	budget     *float64
	budgetCell *cellref.CellRef
	info       *model.WeeklyInfo

	weeks    []time.Time
	baseline time.Time
	future   map[time.Time]weekCell // 含当前周结转
}

func (b *weeklyBuilder) build() []model.WeeklyPoint {
	b.collectWeeks()
	if len(b.weeks) == 0 {
		return []model.WeeklyPoint{}
	}
	b.carryRemaining()

	points := make([]model.WeeklyPoint, len(b.weeks))
	for i, w := range b.weeks {
		points[i] = model.WeeklyPoint{
			Week:              parser.ISOWeekLabel(w),
			WeekDate:          w,
			WeekLabel:         parser.FormatDate(w),
			BudgetedUnits:     b.budget,
			BudgetedUnitsCell: b.budgetCell,
			IsBaseline:        !b.baseline.IsZero() && w.Equal(b.baseline),
			IsCurrent:         w.Equal(b.target),
		}
		if w.Before(b.target) {
			b.info.WeeksBefore++
		} else if w.After(b.target) {
			b.info.WeeksAfter++
		}
	}
	b.fillPlanned(points)
	b.fillActual(points)
	return points
}

// collectWeeks 三张表的周并集，加上基线周（首个计划周前一周）
func (b *weeklyBuilder) collectWeeks() {
	set := make(map[time.Time]struct{})
	for _, ws := range b.sources {
		for _, w := range ws.weeks {
			set[w] = struct{}{}
		}
	}
	if p := b.sources[model.SourcePlanned]; p != nil && len(p.weeks) > 0 {
		b.baseline = p.weeks[0].Add(-PlannedWeekShift)
		set[b.baseline] = struct{}{}
		b.info.PlannedStartWeek = parser.FormatISODate(p.weeks[0])
		b.info.PlannedEndWeek = parser.FormatISODate(p.last())
	}
	for w := range set {
		b.weeks = append(b.weeks, w)
	}
	sort.Slice(b.weeks, func(i, j int) bool { return b.weeks[i].Before(b.weeks[j]) })
	if len(b.weeks) > 0 {
		b.info.AvailableEndWeek = parser.FormatISODate(b.weeks[len(b.weeks)-1])
	}
}

// carryRemaining Remaining 表首周等于当前周时，把该值并入下一周；当前周本身读 Actual
func (b *weeklyBuilder) carryRemaining() {
	f := b.sources[model.SourceActualFuture]
	if f == nil {
		return
	}
	b.future = make(map[time.Time]weekCell, len(f.series))
	for w, c := range f.series {
		b.future[w] = c
	}
	if !f.found || len(f.weeks) == 0 {
		return
	}

	first := f.weeks[0]
	if !first.Equal(b.target) {
		b.info.Errors = append(b.info.Errors, fmt.Sprintf("Remaining table does not start at the current week (first week %s, current week %s)",
			parser.FormatISODate(first), parser.FormatISODate(b.target)))
		return
	}
	cur := f.series[first]
	if cur.value == nil || len(f.weeks) < 2 {
		return
	}
	next := f.weeks[1]
	nc := f.series[next]
	if nc.value == nil {
		b.info.Errors = append(b.info.Errors, fmt.Sprintf("Remaining carry skipped: week %s is empty", parser.FormatISODate(next)))
		return
	}
	sum := *nc.value + *cur.value
	b.future[next] = weekCell{value: &sum, ref: nc.ref, carry: cur.ref}
}

func (b *weeklyBuilder) fillPlanned(points []model.WeeklyPoint) {
	p := b.sources[model.SourcePlanned]
	if p == nil || len(p.weeks) == 0 {
		reason := "no Cum Budgeted Units table"
		if msg, ok := b.info.SourceErrors[model.SourcePlanned]; ok {
			reason = msg
		}
		for i := range points {
			setUnavailable(&points[i].PlannedDisplay, &points[i].PlannedTip, "Planned unavailable: "+reason)
			setUnavailable(&points[i].PlannedCumDisplay, &points[i].PlannedCumTip, "Planned unavailable: "+reason)
		}
		return
	}

	first, last := p.weeks[0], p.last()
	prev := 0.0
	var prevRef *cellref.CellRef
	var lastCum *float64
	zero := 0.0

	for i := range points {
		pt := &points[i]
		w := pt.WeekDate
		switch {
		case w.Equal(b.baseline):
			setValue(&pt.Planned, &pt.PlannedDisplay, &pt.PlannedTip, zero, "Baseline week (first planned week - 7 days): planned progress starts at 0")
			setValue(&pt.PlannedCum, &pt.PlannedCumDisplay, &pt.PlannedCumTip, zero, "Baseline week (first planned week - 7 days): planned progress starts at 0")
			continue
		case w.Before(first):
			setValue(&pt.Planned, &pt.PlannedDisplay, &pt.PlannedTip, zero, "outside baseline date range")
			setValue(&pt.PlannedCum, &pt.PlannedCumDisplay, &pt.PlannedCumTip, zero, "outside baseline date range")
			continue
		case w.After(last):
			setValue(&pt.Planned, &pt.PlannedDisplay, &pt.PlannedTip, zero, "outside baseline date range")
			if lastCum != nil {
				setValue(&pt.PlannedCum, &pt.PlannedCumDisplay, &pt.PlannedCumTip, *lastCum,
					"outside baseline date range: cumulative held at last planned week")
			} else {
				setUnavailable(&pt.PlannedCumDisplay, &pt.PlannedCumTip, "outside baseline date range")
			}
			continue
		}

		cell, ok := p.series[w]
		switch {
		case !p.found:
			msg := "Planned unavailable: activity not found in " + MarkerCumBudgeted + " table"
			setUnavailable(&pt.PlannedDisplay, &pt.PlannedTip, msg)
			setUnavailable(&pt.PlannedCumDisplay, &pt.PlannedCumTip, msg)
		case !ok || cell.value == nil:
			msg := cellref.Annotate("Planned unavailable: week cell is empty", cell.ref)
			setUnavailable(&pt.PlannedDisplay, &pt.PlannedTip, msg)
			setUnavailable(&pt.PlannedCumDisplay, &pt.PlannedCumTip, msg)
		case b.budget == nil:
			msg := cellref.Annotate("Planned unavailable: Budgeted Units missing or 0", cell.ref, b.budgetCell)
			setUnavailable(&pt.PlannedDisplay, &pt.PlannedTip, msg)
			setUnavailable(&pt.PlannedCumDisplay, &pt.PlannedCumTip, msg)
			prev, prevRef = *cell.value, cell.ref
		default:
			val := *cell.value
			cum := val / *b.budget * 100
			lastCum = &cum
			setValue(&pt.PlannedCum, &pt.PlannedCumDisplay, &pt.PlannedCumTip, cum, cellref.Annotate(
				fmt.Sprintf("Planned cum %% = Cum Budgeted Units (%s) / Budgeted Units", parser.FormatISODate(w)),
				cell.ref, b.budgetCell))

			delta := val - prev
			if delta < 0 {
				setUnavailable(&pt.PlannedDisplay, &pt.PlannedTip,
					cellref.Annotate("week value decreased vs previous week", cell.ref, prevRef))
				b.info.Errors = append(b.info.Errors, fmt.Sprintf("planned %s: week value decreased vs previous week", parser.FormatISODate(w)))
			} else {
				setValue(&pt.Planned, &pt.PlannedDisplay, &pt.PlannedTip, delta / *b.budget * 100, cellref.Annotate(
					fmt.Sprintf("Planned %% = (Cum Budgeted Units (%s) - previous week) / Budgeted Units", parser.FormatISODate(w)),
					cell.ref, prevRef, b.budgetCell))
			}
			prev, prevRef = val, cell.ref
		}
	}
}

func (b *weeklyBuilder) fillActual(points []model.WeeklyPoint) {
	past := b.sources[model.SourceActualPast]
	future := b.sources[model.SourceActualFuture]
	prev := 0.0
	var prevRef *cellref.CellRef

	for i := range points {
		pt := &points[i]
		w := pt.WeekDate
		isPast := !w.After(b.target)

		ws, series, src := past, map[time.Time]weekCell(nil), model.SourceActualPast
		if past != nil {
			series = past.series
		}
		if !isPast {
			ws, series, src = future, b.future, model.SourceActualFuture
		}

		cell, ok := series[w]
		if ok && isPast {
			pt.ActualWeekCell = cell.ref
		} else if ok {
			pt.ForecastWeekCell = cell.ref
		}

		var reason string
		switch {
		case ws == nil:
			reason = "Actual unavailable: " + b.info.SourceErrors[src]
		case !ws.found:
			reason = "Actual unavailable: activity not found in " + ws.marker + " table"
		case !ok && len(ws.weeks) > 0 && w.After(ws.last()):
			reason = "Actual unavailable: no data beyond last " + ws.marker + " week"
		case !ok:
			reason = fmt.Sprintf("Actual unavailable: no %s column for week %s", ws.marker, parser.FormatISODate(w))
		case cell.value == nil:
			reason = cellref.Annotate("Actual unavailable: week cell is empty", cell.ref)
		case b.budget == nil:
			reason = cellref.Annotate("Actual unavailable: Budgeted Units missing or 0", cell.ref, b.budgetCell)
		}
		if reason != "" {
			setUnavailable(&pt.ActualDisplay, &pt.ActualTip, reason)
			setUnavailable(&pt.ActualCumDisplay, &pt.ActualCumTip, reason)
			if pt.IsCurrent && past != nil && past.found {
				b.info.Errors = append(b.info.Errors, "current week actual unavailable: "+reason)
			}
			if ws != nil && ws.found && cell.value != nil {
				prev, prevRef = *cell.value, cell.ref
			}
			continue
		}

		val := *cell.value
		cum := val / *b.budget * 100
		formula := fmt.Sprintf("Actual cum %% = %s (%s) / Budgeted Units", ws.marker, parser.FormatISODate(w))
		if cell.carry != nil {
			formula += " (includes current-week Remaining carry)"
		}
		setValue(&pt.ActualCum, &pt.ActualCumDisplay, &pt.ActualCumTip, cum,
			cellref.Annotate(formula, cell.ref, cell.carry, b.budgetCell))

		if isPast {
			pt.ActualCumActual = &cum
			units := val
			pt.ActualCumUnits = &units
		} else {
			units := val
			pt.ForecastCumUnits = &units
		}

		delta := val - prev
		if delta < 0 {
			setUnavailable(&pt.ActualDisplay, &pt.ActualTip,
				cellref.Annotate("week value decreased vs previous week", cell.ref, prevRef))
			b.info.Errors = append(b.info.Errors, fmt.Sprintf("actual %s: week value decreased vs previous week", parser.FormatISODate(w)))
		} else {
			setValue(&pt.Actual, &pt.ActualDisplay, &pt.ActualTip, delta / *b.budget * 100, cellref.Annotate(
				fmt.Sprintf("Actual %% = (%s (%s) - previous week) / Budgeted Units", ws.marker, parser.FormatISODate(w)),
				cell.ref, cell.carry, prevRef, b.budgetCell))
		}
		prev, prevRef = val, cell.ref
	}
}

func setValue(dst **float64, display, tip *string, v float64, msg string) {
	val := v
	*dst = &val
	*display = parser.FormatPercent(v)
	*tip = msg
}

func setUnavailable(display, tip *string, msg string) {
	*display = missingDisplay
	*tip = msg
}
