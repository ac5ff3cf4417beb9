package v3

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"warrantyboard/internal/importer"
	"warrantyboard/internal/model"
	"warrantyboard/internal/service/dashboard"
	memstore "warrantyboard/internal/service/store"
	"warrantyboard/internal/store"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testSettings() dashboard.Settings {
	return dashboard.Settings{
		Dimension: "store",
		Marker:    &model.MarkerFilter{Token: "FUTURE", CaseSensitive: true, Exclude: true},
		Sort:      &model.SortSpec{Field: model.FieldValueConversion, Desc: true},
		Targets:   model.DefaultTargets(),
	}
}

func seedRecords() map[string][]model.Record {
	return map[string][]model.Record{
		"Jan": {
			{Category: "Ceiling Fan", BDM: "Ravi", RBM: "Kumar", Store: "Anna Nagar", Staff: "Arun", TotalSoldAmount: 1000, WarrantyAmount: 100, TotalUnitCount: 10, WarrantyUnitCount: 2},
			{Category: "Refrigerator", BDM: "Ravi", RBM: "Kumar", Store: "T Nagar FUTURE", Staff: "Chitra", TotalSoldAmount: 50000, WarrantyAmount: 2500, TotalUnitCount: 2, WarrantyUnitCount: 1},
			{Category: "Party Speaker", BDM: "Meena", RBM: "Lakshmi", Store: "Velachery", Staff: "Deepa", TotalSoldAmount: 2000, WarrantyAmount: 200, TotalUnitCount: 4, WarrantyUnitCount: 1},
		},
		"Feb": {
			{Category: "Table Fan", BDM: "Ravi", RBM: "Kumar", Store: "Anna Nagar", Staff: "Arun", TotalSoldAmount: 2000, WarrantyAmount: 400, TotalUnitCount: 8, WarrantyUnitCount: 4},
		},
	}
}

func newTestRouter(t *testing.T, sheets SheetsSource) (*gin.Engine, *Handler, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "warrantyboard.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	seed := seedRecords()
	for _, name := range []string{"Jan", "Feb"} {
		if err := st.ReplacePeriod(ctx, name, importer.SourceExcel, "seed", seed[name]); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	h := NewHandler(Options{
		Store:         st,
		Sheets:        sheets,
		SpreadsheetID: "sheet-id",
		Settings:      testSettings(),
		Log:           quietLogger(),
	})
	t.Cleanup(h.Close)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r, h, st
}

func doRequest(r http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
	}
}

// sseEvents 解析 SSE 响应中的 data 行
func sseEvents(t *testing.T, body string) []importer.ProgressEvent {
	t.Helper()
	var out []importer.ProgressEvent
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt importer.ProgressEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt); err != nil {
			t.Fatalf("bad event %q: %v", line, err)
		}
		out = append(out, evt)
	}
	return out
}

func TestGetStatusAndPeriods(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/status", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
	var status StatusResponse
	decode(t, w, &status)
	if !status.Initialized || status.PeriodCount != 2 || status.RecordCount != 4 || status.SheetsEnabled {
		t.Fatalf("unexpected status: %+v", status)
	}

	w = doRequest(r, http.MethodGet, "/api/periods", nil, "")
	var periods periodsResponse
	decode(t, w, &periods)
	if len(periods.Items) != 2 || periods.Items[0].Name != "Jan" || periods.Source != "local" {
		t.Fatalf("unexpected periods: %+v", periods)
	}

	w = doRequest(r, http.MethodGet, "/api/periods?source=sheets", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("sheets source without config should be 400, got %d", w.Code)
	}
}

func TestDeletePeriod(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := doRequest(r, http.MethodDelete, "/api/periods/Feb", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(r, http.MethodDelete, "/api/periods/Feb", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete should be 404, got %d", w.Code)
	}
}

func TestGetFilterOptions(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/filters", nil, "")
	var out map[string][]string
	decode(t, w, &out)
	if got := out["bdm"]; len(got) != 2 || got[0] != "Meena" || got[1] != "Ravi" {
		t.Fatalf("unexpected bdm options: %v", got)
	}
}

func TestGetMetrics(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/metrics?periods=ALL", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d body=%s", w.Code, w.Body.String())
	}
	var resp metricsResponse
	decode(t, w, &resp)

	// 默认排除 FUTURE 门店，按价值转化率降序
	if len(resp.Rows) != 2 {
		t.Fatalf("want 2 rows, got %+v", resp.Rows)
	}
	if resp.Rows[0].Label != "Anna Nagar" || resp.Rows[1].Label != "Velachery" {
		t.Fatalf("unexpected order: %s, %s", resp.Rows[0].Label, resp.Rows[1].Label)
	}
	if !floatEquals(resp.Total.SumSold, 5000) || !resp.Total.IsTotal {
		t.Errorf("unexpected total: %+v", resp.Total.MetricRow)
	}
	if got := resp.Total.Display[model.FieldSumSold]; got != "5.0K" {
		t.Errorf("total sold display want=5.0K got=%q", got)
	}
	if got := resp.Rows[0].Display[model.FieldValueConversion]; got != "16.67%" {
		t.Errorf("value conversion display want=16.67%% got=%q", got)
	}
}

func TestGetMetricsQueryOverrides(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	// 空 marker 关闭默认筛选；区间筛选只作用于数据行
	w := doRequest(r, http.MethodGet, "/api/metrics?periods=Jan&marker=&rangeField=sumSold&min=1500&sort=sumSold&order=asc", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d body=%s", w.Code, w.Body.String())
	}
	var resp metricsResponse
	decode(t, w, &resp)
	if len(resp.Rows) != 2 || resp.Rows[0].Label != "Velachery" || resp.Rows[1].Label != "T Nagar FUTURE" {
		t.Fatalf("unexpected rows: %+v", resp.Rows)
	}
	if !floatEquals(resp.Total.SumSold, 53000) {
		t.Errorf("total should be unaffected by range, got %v", resp.Total.SumSold)
	}

	w = doRequest(r, http.MethodGet, "/api/metrics?periods=Jan&rangeField=sumSold&min=1e9", nil, "")
	decode(t, w, &resp)
	if !resp.EmptyAfterFilter || len(resp.Rows) != 0 {
		t.Fatalf("expected empty-after-filter, got %+v", resp)
	}
}

func TestGetMetricsBadRequests(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"unknown dimension", "/api/metrics?dimension=region", http.StatusBadRequest},
		{"unknown taxonomy", "/api/metrics?taxonomy=kitchen", http.StatusBadRequest},
		{"bad sort field", "/api/metrics?sort=margin", http.StatusBadRequest},
		{"bad order", "/api/metrics?sort=sumSold&order=up", http.StatusBadRequest},
		{"min without field", "/api/metrics?min=10", http.StatusBadRequest},
		{"bad number", "/api/metrics?rangeField=sumSold&max=abc", http.StatusBadRequest},
		{"no periods", "/api/metrics?periods=Dec", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, tt.target, nil, "")
			if w.Code != tt.code {
				t.Fatalf("want %d got %d body=%s", tt.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetComparison(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/compare?periods=Jan,Feb", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("compare: %d body=%s", w.Code, w.Body.String())
	}
	var cmp model.Comparison
	decode(t, w, &cmp)
	if len(cmp.Rows) != 1 || cmp.Rows[0].Label != "Anna Nagar" {
		t.Fatalf("unexpected rows: %+v", cmp.Rows)
	}
	if !floatEquals(cmp.Rows[0].DeltaValueConversion, 10) {
		t.Errorf("delta want=10 got=%v", cmp.Rows[0].DeltaValueConversion)
	}

	if w := doRequest(r, http.MethodGet, "/api/compare?periods=Jan", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("single period should be 400, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/compare?a=Jan&b=Dec", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("missing period should be 404, got %d", w.Code)
	}
}

func TestGetPivot(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/pivot?periods=ALL&metric=sumSold", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("pivot: %d body=%s", w.Code, w.Body.String())
	}
	var pv model.PivotTable
	decode(t, w, &pv)
	if len(pv.Periods) != 2 || len(pv.Rows) != 2 {
		t.Fatalf("unexpected pivot: %+v", pv)
	}
	// Velachery 在 Feb 缺失
	if cell := pv.Rows[1].Cells[1]; cell.Present || cell.Value != 0 || cell.Text != "" {
		t.Errorf("absent cell should be zero and not present: %+v", cell)
	}
	if pv.Total.Cells[0].Text != "3.0 K" {
		t.Errorf("Jan total text want=3.0 K got=%q", pv.Total.Cells[0].Text)
	}
}

func TestUpdateConfig(t *testing.T) {
	r, h, st := newTestRouter(t, nil)

	body := `{"targets":{"valueConversion":12,"countConversion":5,"avgWarrantyPrice":0},"marker":{"token":"","caseSensitive":false}}`
	w := doRequest(r, http.MethodPatch, "/api/config", strings.NewReader(body), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d body=%s", w.Code, w.Body.String())
	}

	got, err := st.GetTargets(model.Targets{})
	if err != nil || got.ValueConversion != 12 || got.CountConversion != 5 {
		t.Fatalf("targets not persisted: %+v err=%v", got, err)
	}
	if m := h.local.Settings().Marker; m == nil || m.Token != "" {
		t.Fatalf("marker not applied: %+v", m)
	}

	// 关闭标记后 FUTURE 门店重新出现
	w = doRequest(r, http.MethodGet, "/api/metrics?periods=Jan", nil, "")
	var resp metricsResponse
	decode(t, w, &resp)
	if len(resp.Rows) != 3 {
		t.Fatalf("want 3 rows after clearing marker, got %d", len(resp.Rows))
	}

	w = doRequest(r, http.MethodPatch, "/api/config", strings.NewReader(`{"targets":{"valueConversion":-1}}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative target should be 400, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/config", nil, "")
	var cfg ConfigResponse
	decode(t, w, &cfg)
	if cfg.Targets.ValueConversion != 12 || len(cfg.Dimensions) == 0 || len(cfg.Buckets) != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestExportAndDownload(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	w := doRequest(r, http.MethodPost, "/api/export?kind=pivot&periods=ALL&metric=sumWarranty", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d body=%s", w.Code, w.Body.String())
	}
	var resp exportResponse
	decode(t, w, &resp)
	if resp.Token == "" || !strings.HasPrefix(resp.DownloadURL, "/api/export/download/") {
		t.Fatalf("unexpected export response: %+v", resp)
	}

	w = doRequest(r, http.MethodGet, resp.DownloadURL, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("download: %d body=%s", w.Code, w.Body.String())
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open downloaded workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Pivot" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	// 链接只能使用一次
	if w := doRequest(r, http.MethodGet, resp.DownloadURL, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("second download should be 404, got %d", w.Code)
	}

	if w := doRequest(r, http.MethodPost, "/api/export?kind=chart", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind should be 400, got %d", w.Code)
	}
}

func TestImportStream(t *testing.T) {
	r, _, st := newTestRouter(t, nil)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Mar"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	rows := [][]any{
		{"Category", "BDM", "RBM", "Store", "Staff", "Total Sold Amount", "Warranty Amount", "Total Unit Count", "Warranty Unit Count"},
		{"Mixer", "Ravi", "Kumar", "Porur", "Arun", "₹1,500", "150", "3", "1"},
	}
	for i, row := range rows {
		vals := row
		if err := f.SetSheetRow("Mar", fmt.Sprintf("A%d", i+1), &vals); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var xlsx bytes.Buffer
	if err := f.Write(&xlsx); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	_ = f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "march.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(xlsx.Bytes()); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = mw.Close()

	w := doRequest(r, http.MethodPost, "/api/import", &body, mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Fatalf("import: %d body=%s", w.Code, w.Body.String())
	}
	events := sseEvents(t, w.Body.String())
	if len(events) == 0 || events[len(events)-1].Type != "done" {
		t.Fatalf("import should end with done: %+v", events)
	}

	records, err := st.LoadPeriod(context.Background(), "Mar")
	if err != nil || len(records) != 1 || !floatEquals(records[0].TotalSoldAmount, 1500) {
		t.Fatalf("unexpected imported records: %+v err=%v", records, err)
	}

	if w := doRequest(r, http.MethodPost, "/api/import", strings.NewReader(""), "text/plain"); w.Code != http.StatusBadRequest {
		t.Fatalf("non-multipart import should be 400, got %d", w.Code)
	}
}

// fakeSheets 内存版在线表格
type fakeSheets struct {
	*memstore.MemoryStore
	rows map[string][][]string
}

func (f *fakeSheets) SheetNames(ctx context.Context) ([]string, error) {
	return []string{"Apr"}, nil
}

func (f *fakeSheets) Rows(ctx context.Context, sheet string) ([][]string, error) {
	return f.rows[sheet], nil
}

func newFakeSheets() *fakeSheets {
	ms := memstore.NewMemoryStore()
	ms.SetPeriod("Apr", []model.Record{
		{Store: "Adyar", TotalSoldAmount: 800, WarrantyAmount: 80, TotalUnitCount: 2, WarrantyUnitCount: 1},
	})
	return &fakeSheets{
		MemoryStore: ms,
		rows: map[string][][]string{
			"Apr": {
				{"Category", "BDM", "RBM", "Store", "Staff", "Total Sold Amount", "Warranty Amount", "Total Unit Count", "Warranty Unit Count"},
				{"Iron", "Ravi", "Kumar", "Adyar", "Arun", "800", "80", "2", "1"},
			},
		},
	}
}

func TestSheetsSource(t *testing.T) {
	r, _, st := newTestRouter(t, newFakeSheets())

	w := doRequest(r, http.MethodGet, "/api/metrics?source=sheets&periods=ALL", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d body=%s", w.Code, w.Body.String())
	}
	var resp metricsResponse
	decode(t, w, &resp)
	if resp.Source != "sheets" || len(resp.Rows) != 1 || resp.Rows[0].Label != "Adyar" {
		t.Fatalf("unexpected live metrics: %+v", resp)
	}

	w = doRequest(r, http.MethodPost, "/api/sync/sheets", nil, "")
	events := sseEvents(t, w.Body.String())
	if len(events) == 0 || events[len(events)-1].Type != "done" {
		t.Fatalf("sync should end with done: %+v", events)
	}
	if ok, err := st.PeriodExists(context.Background(), "Apr"); err != nil || !ok {
		t.Fatalf("synced period missing: ok=%v err=%v", ok, err)
	}
}

func TestSyncSheetsDisabled(t *testing.T) {
	r, _, _ := newTestRouter(t, nil)

	if w := doRequest(r, http.MethodPost, "/api/sync/sheets", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("sync without sheets should be 400, got %d", w.Code)
	}
}
