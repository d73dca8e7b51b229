package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wbsdash/internal/api"
	"wbsdash/internal/config"
	"wbsdash/internal/model"
	"wbsdash/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	_ = f.SetSheetName("Sheet1", "Summary")
	summary := [][]any{
		{"Activity ID", "Activity Name", "BL Project Finish", "Finish", "Units % Complete", "Variance - BL Project Finish Date", "Budgeted Labor Units"},
		{"A-1", "Foundation", "10-Feb-25", "12-Feb-25", 0.75, 2, 100},
	}
	for i := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Summary", cell, &summary[i]))
	}
	_, err := f.NewSheet("Assignments")
	require.NoError(t, err)
	ra := [][]any{
		{"Activity ID", "Budgeted Units", "Spreadsheet Field", "2025-01-20", "2025-01-27"},
		{"A-1", 100, "Cum Budgeted Units", 40, 70},
	}
	for i := range ra {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Assignments", cell, &ra[i]))
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dataDir := t.TempDir()
	writeWorkbook(t, filepath.Join(dataDir, api.WorkbookDir, "plan.xlsx"))

	st, err := store.New(filepath.Join(dataDir, DBFileName))
	require.NoError(t, err)

	s := New(config.DefaultConfig(), st, dataDir, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestWBSEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/wbs?file=plan.xlsx&today=2025-02-03", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		Cached bool                `json:"cached"`
		Today  string              `json:"today"`
		Data   model.WBSExtraction `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Cached)
	assert.Equal(t, "2025-02-03", resp.Today)
	require.Len(t, resp.Data.Tables, 1)
	root := resp.Data.Tables[0].WBS
	assert.Equal(t, "A-1 - Foundation", root.Label)
	assert.Equal(t, "70.00%", root.Metrics.ScheduleDisplay)
	assert.Equal(t, "2d", root.Metrics.SlipDisplay)

	w = do(t, s, http.MethodGet, "/api/wbs?file=plan.xlsx&today=2025-02-03", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)

	w = do(t, s, http.MethodGet, "/api/runs?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var runs struct {
		Runs []model.AnalysisRun `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	assert.Len(t, runs.Runs, 2)
}

func TestEngineEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/api/tables?file=plan.xlsx",
		"/api/headers?file=plan.xlsx&type=resource_assignments",
		"/api/compare?file=plan.xlsx",
		"/api/schedule?file=plan.xlsx&today=03-Feb-25",
		"/api/preview?file=plan.xlsx&preferFirst=true",
		"/api/weekly?file=plan.xlsx&activity=A-1&today=2025-02-03",
	} {
		w := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, w.Code, target+": "+w.Body.String())
	}

	w := do(t, s, http.MethodGet, "/api/weekly?file=plan.xlsx&activity=A-1&today=2025-02-03", "")
	var weekly struct {
		Data model.WeeklyProgress `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &weekly))
	require.Len(t, weekly.Data.Points, 3)
	cur := weekly.Data.Points[2]
	assert.True(t, cur.IsCurrent)
	assert.Equal(t, "70.00%", cur.PlannedCumDisplay)
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		target string
		code   int
	}{
		{"/api/tables", http.StatusBadRequest},
		{"/api/tables?file=../secret.xlsx", http.StatusBadRequest},
		{"/api/tables?file=/etc/passwd", http.StatusBadRequest},
		{"/api/schedule?file=plan.xlsx&today=someday", http.StatusBadRequest},
		{"/api/preview?file=plan.xlsx&type=timesheet", http.StatusBadRequest},
		{"/api/weekly?file=plan.xlsx", http.StatusBadRequest},
		{"/api/runs?limit=x", http.StatusBadRequest},
		{"/api/tables?file=missing.xlsx", http.StatusUnprocessableEntity},
		{"/api/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := do(t, s, http.MethodGet, tc.target, "")
		assert.Equal(t, tc.code, w.Code, tc.target)
		assert.Contains(t, w.Body.String(), `"error"`, tc.target)
	}
}

func TestStatusAndWorkbooks(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/workbooks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"files":["plan.xlsx"]}`, w.Body.String())

	do(t, s, http.MethodGet, "/api/tables?file=plan.xlsx", "")
	w = do(t, s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status api.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 1, status.Workbooks)
	assert.False(t, status.MappingLoaded)
	assert.Equal(t, model.RunStatusSuccess, status.LastRunStatus)
	assert.Equal(t, string(model.OpDetectTables), status.LastRunOp)
}

func TestSuggestMappingEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/mapping/suggest",
		`{"headers":["Task ID","Budget","Statut"],"type":"activity_summary"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Mapping map[string]string `json:"mapping"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{
		model.FieldActivityID:         "Task ID",
		model.FieldActivityStatus:     "Statut",
		model.FieldBudgetedLaborUnits: "Budget",
	}, resp.Mapping)

	w = do(t, s, http.MethodPost, "/api/mapping/suggest", `{"type":"activity_summary"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportStream(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/report?file=plan.xlsx&today=2025-02-03", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "data: "))
	assert.Contains(t, body, `"type":"start"`)
	assert.Contains(t, body, `"type":"done"`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodOptions, "/api/tables", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/export?file=plan.xlsx&today=2025-02-03&activity=A-1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="plan-wbs.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	assert.Equal(t, []string{"Summary", "WBS", "Weekly A-1"}, f.GetSheetList())
	v, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", v)

	w = do(t, s, http.MethodGet, "/api/export?file=missing.xlsx", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
