package importer

import (
	"fmt"
	"path/filepath"
	"time"

	"wbsdash/internal/model"
	"wbsdash/internal/workbook"
)

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/info/table/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// Report 完整报告：检测表格 -> 本周进度 -> WBS 树，逐步推送进度事件。
// 通道在完成或出错后关闭
func (c *Coordinator) Report(req Request) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 16)

	go func() {
		defer close(progressChan)
		c.doReport(req, progressChan)
	}()

	return progressChan
}

func (c *Coordinator) doReport(req Request, progressChan chan<- ProgressEvent) {
	send := func(typ, msg string, data interface{}) {
		progressChan <- ProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: c.now()}
	}

	send("start", "开始分析工作簿", map[string]string{"filename": filepath.Base(req.Path)})

	id, err := Identify(req.Path)
	if err != nil {
		send("error", fmt.Sprintf("打开文件失败: %v", err), nil)
		return
	}
	wb, err := workbook.Load(id.Path, c.sheets)
	if err != nil {
		send("error", fmt.Sprintf("读取工作簿失败: %v", err), nil)
		return
	}
	today := req.Today
	if today.IsZero() {
		today = c.now()
	}

	tables := c.engine.DetectTables(wb)
	send("info", fmt.Sprintf("发现 %d 个表格", len(tables)), map[string]interface{}{
		"sheets": len(wb.Sheets),
		"tables": len(tables),
	})
	for _, t := range tables {
		send("table", fmt.Sprintf("%s!%s (%s)", t.Sheet, t.RangeA1, t.Type), t)
	}

	lookup := c.engine.BuildScheduleLookup(wb, today, req.Mapping)
	send("info", fmt.Sprintf("本周进度: %s", lookup.Info.Status), lookup.Info)

	res := c.engine.ExtractAllWBS(wb, &lookup, req.Mapping)
	if res.Status != model.StatusOK {
		send("info", fmt.Sprintf("WBS: %s", res.Status), res.Errors)
	}
	send("done", fmt.Sprintf("完成，共 %d 棵 WBS 树", len(res.Tables)), res)
}
