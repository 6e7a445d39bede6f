package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Barczakson/inwentura-op-sub001/internal/config"
	"github.com/Barczakson/inwentura-op-sub001/internal/model"
	"github.com/Barczakson/inwentura-op-sub001/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// writeWorkbook builds a minimal inventory workbook: a title row, a blank
// row, Polish headers, then the given data rows.
func writeWorkbook(t *testing.T, sheet string, dataRows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		f.SetSheetName("Sheet1", sheet)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Inwentaryzacja 2026"}); err != nil {
		t.Fatalf("title row: %v", err)
	}
	headers := []interface{}{"L.p.", "Nr indeksu", "Nazwa towaru", "Ilość", "JMZ"}
	if err := f.SetSheetRow(sheet, "A3", &headers); err != nil {
		t.Fatalf("header row: %v", err)
	}
	for i, row := range dataRows {
		cell, _ := excelize.CoordinatesToCellName(1, 4+i)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("data row %d: %v", i, err)
		}
	}

	path := filepath.Join(t.TempDir(), "inwentura.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func drain(ch <-chan ProgressEvent) []ProgressEvent {
	var events []ProgressEvent
	for e := range ch {
		events = append(events, e)
	}
	return events
}

func lastEvent(events []ProgressEvent) ProgressEvent {
	return events[len(events)-1]
}

func TestImport_EndToEnd(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	path := writeWorkbook(t, "Magazyn", [][]interface{}{
		{1, "A001", "Śruba M6", 100, "szt"},
		{2, "A002", "Nakrętka M6", 250, "szt"},
		{3, "A001", "Śruba M6", 50, "szt"},
		{4, "B010", "Farba biała", "12,5", "l"},
	})

	if err := st.CreateFile("file-1", "inwentura.xlsx", 1); err != nil {
		t.Fatalf("create file: %v", err)
	}

	coordinator := NewCoordinator(st, config.ImportConfig{ChunkSize: 2, SampleRows: 5})
	events := drain(coordinator.Import(context.Background(), ImportOptions{
		FilePath: path,
		FileID:   "file-1",
		Filename: "inwentura.xlsx",
	}))

	final := lastEvent(events)
	if final.Type != "done" {
		t.Fatalf("final event: %+v", final)
	}
	report, ok := final.Data.(*ImportReport)
	if !ok {
		t.Fatalf("done event data: %T", final.Data)
	}
	if report.ImportedSheets != 1 || report.TotalRows != 4 ||
		report.ExtractedRows != 4 || report.RejectedRows != 0 {
		t.Fatalf("report: %+v", report)
	}

	// Duplicate key merged into one aggregate.
	aggregates, err := st.ListAggregates(store.AggregateQueryOptions{})
	if err != nil {
		t.Fatalf("list aggregates: %v", err)
	}
	if len(aggregates) != 3 {
		t.Fatalf("want 3 aggregates, got %d", len(aggregates))
	}
	var sruba *model.AggregateRecord
	for _, a := range aggregates {
		if a.Name == "Śruba M6" {
			sruba = a
		}
	}
	if sruba == nil || sruba.Quantity != 150 || sruba.Count != 2 {
		t.Fatalf("merged aggregate: %+v", sruba)
	}

	// Raw rows persisted with sheet row numbers (1-based; data starts at 4).
	itemRows, err := st.ListRowsByFile("file-1")
	if err != nil {
		t.Fatalf("list rows: %v", err)
	}
	if len(itemRows) != 4 || itemRows[0].RowNo != 4 || itemRows[3].RowNo != 7 {
		t.Fatalf("rows: %+v", itemRows)
	}

	// File record closed as completed.
	f, err := st.GetFile("file-1")
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if f.Status != model.UploadStatusCompleted || f.TotalRows != 4 {
		t.Fatalf("file record: %+v", f)
	}
}

func TestImport_RejectedRowReported(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	path := writeWorkbook(t, "Magazyn", [][]interface{}{
		{1, "A001", "Deska", 10, "szt"},
		{2, "A002", "Gwóźdź", "dużo", "szt"},
		{3, "A003", "Lina", 3, "m"},
	})

	if err := st.CreateFile("file-1", "inwentura.xlsx", 1); err != nil {
		t.Fatalf("create file: %v", err)
	}

	coordinator := NewCoordinator(st, config.ImportConfig{})
	events := drain(coordinator.Import(context.Background(), ImportOptions{
		FilePath: path,
		FileID:   "file-1",
		Filename: "inwentura.xlsx",
	}))

	final := lastEvent(events)
	if final.Type != "done" {
		t.Fatalf("a rejected row must not fail the import: %+v", final)
	}
	report := final.Data.(*ImportReport)
	if report.ExtractedRows != 2 || report.RejectedRows != 1 {
		t.Fatalf("report: %+v", report)
	}
	sheet := report.Sheets[0]
	if len(sheet.Rejections) != 1 || sheet.Rejections[0].RowNo != 5 {
		t.Fatalf("rejections: %+v", sheet.Rejections)
	}
}

func TestImport_UndetectableSheetSkipped(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	f := excelize.NewFile()
	headers := []interface{}{"Col1", "Col2", "Col3", "Col4"}
	if err := f.SetSheetRow("Sheet1", "A1", &headers); err != nil {
		t.Fatalf("header row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]interface{}{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("data row: %v", err)
	}
	path := filepath.Join(t.TempDir(), "unknown.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	if err := st.CreateFile("file-1", "unknown.xlsx", 1); err != nil {
		t.Fatalf("create file: %v", err)
	}

	coordinator := NewCoordinator(st, config.ImportConfig{})
	events := drain(coordinator.Import(context.Background(), ImportOptions{
		FilePath: path,
		FileID:   "file-1",
		Filename: "unknown.xlsx",
	}))

	final := lastEvent(events)
	if final.Type != "done" {
		t.Fatalf("undetectable columns skip the sheet, not the file: %+v", final)
	}
	report := final.Data.(*ImportReport)
	if report.SkippedSheets != 1 || report.ImportedSheets != 0 {
		t.Fatalf("report: %+v", report)
	}

	warned := false
	for _, e := range events {
		if e.Type == "warning" {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("skipped sheet must emit a warning event")
	}
}

func TestImport_ManualMappingOverride(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	// Headers detection cannot resolve, but the user supplies the mapping.
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Kolumna A", "Kolumna B", "Kolumna C"}); err != nil {
		t.Fatalf("header row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Deska", 10, "szt"}); err != nil {
		t.Fatalf("data row: %v", err)
	}
	path := filepath.Join(t.TempDir(), "manual.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	if err := st.CreateFile("file-1", "manual.xlsx", 1); err != nil {
		t.Fatalf("create file: %v", err)
	}

	var mapping model.ColumnMapping
	mapping.Set(model.FieldName, 0)
	mapping.Set(model.FieldQuantity, 1)
	mapping.Set(model.FieldUnit, 2)

	coordinator := NewCoordinator(st, config.ImportConfig{})
	events := drain(coordinator.Import(context.Background(), ImportOptions{
		FilePath: path,
		FileID:   "file-1",
		Filename: "manual.xlsx",
		Mapping:  &mapping,
	}))

	final := lastEvent(events)
	if final.Type != "done" {
		t.Fatalf("final event: %+v", final)
	}
	report := final.Data.(*ImportReport)
	if report.ImportedSheets != 1 || report.ExtractedRows != 1 {
		t.Fatalf("report: %+v", report)
	}
}

func TestImport_OpenFailureMarksFileFailed(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if err := st.CreateFile("file-1", "missing.xlsx", 1); err != nil {
		t.Fatalf("create file: %v", err)
	}

	coordinator := NewCoordinator(st, config.ImportConfig{})
	events := drain(coordinator.Import(context.Background(), ImportOptions{
		FilePath: filepath.Join(t.TempDir(), "missing.xlsx"),
		FileID:   "file-1",
		Filename: "missing.xlsx",
	}))

	final := lastEvent(events)
	if final.Type != "error" {
		t.Fatalf("final event: %+v", final)
	}

	f, err := st.GetFile("file-1")
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if f.Status != model.UploadStatusFailed || f.ErrorMessage == "" {
		t.Fatalf("file record: %+v", f)
	}
}

func TestPreview_DetectsWithoutIngesting(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	path := writeWorkbook(t, "Magazyn", [][]interface{}{
		{1, "A001", "Deska", 10, "szt"},
	})

	detections, err := Preview(path, 5)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("detections: %+v", detections)
	}
	d := detections[0]
	if d.HeaderRow != 2 || d.Result == nil {
		t.Fatalf("detection: %+v", d)
	}
	if idx := d.Result.Mapping.Index(model.FieldName); idx == nil || *idx != 2 {
		t.Fatalf("name column: %v", idx)
	}

	aggregates, err := st.ListAggregates(store.AggregateQueryOptions{})
	if err != nil {
		t.Fatalf("list aggregates: %v", err)
	}
	if len(aggregates) != 0 {
		t.Fatalf("preview must not write anything, got %d aggregates", len(aggregates))
	}
}
