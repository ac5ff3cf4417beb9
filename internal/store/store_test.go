package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"warrantyboard/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("New store failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestReplaceAndLoadPeriod(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	jan := []model.Record{
		{Category: "Ceiling Fan", BDM: "Ravi", RBM: "Kumar", Store: "Anna Nagar", Staff: "Arun", TotalSoldAmount: 1000, WarrantyAmount: 100, TotalUnitCount: 10, WarrantyUnitCount: 2},
		{Category: "Kettle", BDM: "Ravi", RBM: "Kumar", Store: "Anna Nagar", Staff: "Bala", TotalSoldAmount: 500, WarrantyAmount: 0, TotalUnitCount: 1, WarrantyUnitCount: 0},
	}
	if err := st.ReplacePeriod(ctx, "Jan", "excel", "b1", jan); err != nil {
		t.Fatalf("ReplacePeriod failed: %v", err)
	}
	if err := st.ReplacePeriod(ctx, "Feb", "sheets", "b2", jan[:1]); err != nil {
		t.Fatalf("ReplacePeriod failed: %v", err)
	}
	// 覆盖 Jan，顺序不变
	if err := st.ReplacePeriod(ctx, "Jan", "excel", "b3", jan[1:]); err != nil {
		t.Fatalf("ReplacePeriod failed: %v", err)
	}

	periods, err := st.ListPeriods(ctx)
	if err != nil {
		t.Fatalf("ListPeriods failed: %v", err)
	}
	if len(periods) != 2 || periods[0].Name != "Jan" || periods[1].Name != "Feb" {
		t.Fatalf("unexpected periods: %+v", periods)
	}
	if periods[0].RecordCount != 1 || periods[0].BatchID != "b3" {
		t.Fatalf("Jan should be replaced: %+v", periods[0])
	}
	if periods[1].Source != "sheets" {
		t.Fatalf("Feb source want=sheets got=%s", periods[1].Source)
	}

	records, err := st.LoadPeriod(ctx, "Jan")
	if err != nil {
		t.Fatalf("LoadPeriod failed: %v", err)
	}
	if len(records) != 1 || records[0].Staff != "Bala" || records[0].TotalSoldAmount != 500 {
		t.Fatalf("unexpected records: %+v", records)
	}

	stores, err := st.DistinctValues(ctx, "store")
	if err != nil || len(stores) != 1 || stores[0] != "Anna Nagar" {
		t.Fatalf("DistinctValues want=[Anna Nagar] got=%v err=%v", stores, err)
	}
	if _, err := st.DistinctValues(ctx, "id; DROP TABLE records"); err == nil {
		t.Fatalf("unsupported column should be rejected")
	}
}

func TestDeletePeriod(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	if err := st.ReplacePeriod(ctx, "Jan", "excel", "b1", []model.Record{{Store: "A"}}); err != nil {
		t.Fatalf("ReplacePeriod failed: %v", err)
	}
	if err := st.DeletePeriod(ctx, "Jan"); err != nil {
		t.Fatalf("DeletePeriod failed: %v", err)
	}
	if err := st.DeletePeriod(ctx, "Jan"); !errors.Is(err, model.ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}
	if _, err := st.LoadPeriod(ctx, "Jan"); !errors.Is(err, model.ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}

	var n int
	if err := st.DB().QueryRow("SELECT COUNT(1) FROM records").Scan(&n); err != nil || n != 0 {
		t.Fatalf("records should cascade delete, got n=%d err=%v", n, err)
	}
}

func TestTargetsConfig(t *testing.T) {
	st := newTestStore(t)

	fallback := model.DefaultTargets()
	got, err := st.GetTargets(fallback)
	if err != nil {
		t.Fatalf("GetTargets failed: %v", err)
	}
	if got != fallback {
		t.Fatalf("unset targets should use fallback: %+v", got)
	}

	want := model.Targets{ValueConversion: 5.5, CountConversion: 12, AvgWarrantyPrice: 450}
	if err := st.SetTargets(want); err != nil {
		t.Fatalf("SetTargets failed: %v", err)
	}
	got, err = st.GetTargets(fallback)
	if err != nil || got != want {
		t.Fatalf("targets want=%+v got=%+v err=%v", want, got, err)
	}

	if _, err := st.GetConfig("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestMarkerConfig(t *testing.T) {
	st := newTestStore(t)

	fallback := model.MarkerFilter{Token: "FUTURE", CaseSensitive: true, Exclude: true}
	got, err := st.GetMarker(fallback)
	if err != nil || got != fallback {
		t.Fatalf("unset marker should use fallback: %+v err=%v", got, err)
	}

	if err := st.SetMarker(model.MarkerFilter{Token: "outlet", CaseSensitive: false}); err != nil {
		t.Fatalf("SetMarker failed: %v", err)
	}
	got, err = st.GetMarker(fallback)
	if err != nil {
		t.Fatalf("GetMarker failed: %v", err)
	}
	// Exclude 不持久化，保留 fallback 的取值
	want := model.MarkerFilter{Token: "outlet", CaseSensitive: false, Exclude: true}
	if got != want {
		t.Fatalf("marker want=%+v got=%+v", want, got)
	}
}

func TestImportLog(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	id, err := st.CreateImportLog(ctx, "batch-1", "excel", "sales.xlsx")
	if err != nil {
		t.Fatalf("CreateImportLog failed: %v", err)
	}
	if err := st.InsertSheetMeta(ctx, SheetMeta{ImportLogID: id, SheetName: "Jan", Period: "Jan", Confidence: 1, Status: "imported", ColumnsJSON: BuildColumnsJSON([]string{"Store"})}); err != nil {
		t.Fatalf("InsertSheetMeta failed: %v", err)
	}
	if err := st.UpdateImportLog(ctx, id, 1, 10, 0, "success", ""); err != nil {
		t.Fatalf("UpdateImportLog failed: %v", err)
	}

	logs, err := st.ListImportLogs(ctx, 5)
	if err != nil {
		t.Fatalf("ListImportLogs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != "success" || logs[0].ImportedRows != 10 || logs[0].CompletedAt == nil {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	if n, err := st.CountSheetMeta(ctx, id); err != nil || n != 1 {
		t.Fatalf("CountSheetMeta want=1 got=%d err=%v", n, err)
	}
}
