package importer

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"wbsdash/internal/exporter"
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
	"wbsdash/internal/workbook"
)

// Export 生成 WBS 报告工作簿：WBS 树 + 指定作业的周进度。结果不缓存，但记录运行
func (c *Coordinator) Export(req Request, activityIDs []string, progress func(exporter.ProgressEvent)) (*excelize.File, error) {
	id, err := Identify(req.Path)
	if err != nil {
		return nil, err
	}
	today := req.Today
	if today.IsZero() {
		today = c.now()
	}

	runID := uuid.NewString()
	c.beginRun(runID, model.OpExportReport, id)

	wb, err := workbook.Load(id.Path, c.sheets)
	if err != nil {
		c.finishRun(runID, model.RunStatusFailed, outcome{}, err.Error())
		return nil, err
	}

	lookup := c.engine.BuildScheduleLookup(wb, today, req.Mapping)
	report := exporter.Report{
		Source: filepath.Base(id.Path),
		Today:  parser.FormatISODate(today),
		WBS:    c.engine.ExtractAllWBS(wb, &lookup, req.Mapping),
		Weekly: make([]model.WeeklyProgress, 0, len(activityIDs)),
	}
	warnings := len(report.WBS.Errors)
	for _, a := range activityIDs {
		w := c.engine.BuildWeeklyProgress(wb, a, today, req.Mapping)
		warnings += len(w.Info.Errors)
		report.Weekly = append(report.Weekly, w)
	}

	out := outcome{status: report.WBS.Status, warnings: warnings}
	f, err := exporter.NewExporter().Export(report, progress)
	if err != nil {
		c.finishRun(runID, model.RunStatusFailed, out, err.Error())
		return nil, fmt.Errorf("export report: %w", err)
	}
	c.finishRun(runID, model.RunStatusSuccess, out, "")
	return f, nil
}
