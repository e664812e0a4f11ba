package sheet

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cdsmatch/internal/config"
	"cdsmatch/internal/model"
)

func writeTestWorkbook(t *testing.T, cfg config.SheetConfig, sap bool) string {
	t.Helper()
	f := excelize.NewFile()
	if _, err := f.NewSheet(cfg.SheetName); err != nil {
		t.Fatalf("new sheet: %v", err)
	}

	set := func(col string, row int, v any) {
		if err := f.SetCellValue(cfg.SheetName, col+itoa(row), v); err != nil {
			t.Fatalf("set %s%d: %v", col, row, err)
		}
	}
	layout := cfg.Columns
	if sap {
		layout = cfg.ColumnsSAP
		set(cfg.DetectCol, cfg.DetectRow, "SAP S/4HANA")
	}

	set(layout.Header.Module, cfg.HeaderRow, "MM")
	set(layout.Header.IfName, cfg.HeaderRow, "IF001")
	set(layout.Header.IfDesc, cfg.HeaderRow, "Purchase order interface")

	row := cfg.StartRow
	set(layout.Input.FieldName, row, "plant")
	set(layout.Input.FieldText, row, "Plant code")
	set(layout.Input.SampleValue, row, "1000")
	set(layout.Input.KeyFlag, row, model.KeyFlagMark)

	// Prior-run confirmed row: writer must leave it alone.
	row++
	set(layout.Input.FieldName, row, "company")
	set(layout.Input.Verify, row, model.VerifyConfirmed)

	// End marker and a blank row are skipped.
	set(layout.Input.FieldName, row+1, "e")
	row += 3
	set(layout.Input.FieldName, row, "vendor")
	set(layout.Input.FieldText, row, "Vendor number")

	path := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func itoa(n int) string { return strconv.Itoa(n) }

func TestFieldsExtraction(t *testing.T) {
	cfg := config.DefaultSheetConfig()
	path := writeTestWorkbook(t, cfg, false)

	wb, err := Open(path, cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()

	fields, err := wb.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("fields = %d, want 3 (end marker and blanks skipped)", len(fields))
	}

	first := fields[0]
	if first.RowIndex != cfg.StartRow {
		t.Errorf("row index = %d, want %d", first.RowIndex, cfg.StartRow)
	}
	if first.Module != "MM" || first.IfName != "IF001" {
		t.Errorf("header metadata not attached: %+v", first)
	}
	if first.FieldName != "plant" || first.FieldText != "Plant code" || first.SampleValue != "1000" {
		t.Errorf("first field = %+v", first)
	}
	if fields[1].Verify != model.VerifyConfirmed {
		t.Errorf("verify marker not read: %q", fields[1].Verify)
	}
}

func TestSAPLayoutDetection(t *testing.T) {
	cfg := config.DefaultSheetConfig()
	path := writeTestWorkbook(t, cfg, true)

	wb, err := Open(path, cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()

	fields, err := wb.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	// Field text lives in the shifted column under the SAP layout.
	if fields[0].FieldText != "Plant code" {
		t.Fatalf("field text = %q, SAP layout not applied", fields[0].FieldText)
	}
}

func TestWriteResultsSkipsConfirmedRows(t *testing.T) {
	cfg := config.DefaultSheetConfig()
	path := writeTestWorkbook(t, cfg, false)
	log := zap.NewNop().Sugar()

	wb, err := Open(path, cfg, log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()

	fields, err := wb.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}

	rows := make([]model.MatchedRow, len(fields))
	for i, f := range fields {
		rows[i] = model.MatchedRow{Field: f, Result: model.MatchResult{
			TableID: "I_SUPPLIER",
			FieldID: "SUPPLIER",
			Match:   model.MatchCDS,
		}}
	}
	if err := wb.WriteResults(rows); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.xlsx")
	if err := wb.SaveAs(out); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	check, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer check.Close()

	get := func(col string, row int) string {
		v, _ := check.GetCellValue(cfg.SheetName, col+itoa(row))
		return v
	}
	if got := get(cfg.Columns.Output.TableID, fields[0].RowIndex); got != "I_SUPPLIER" {
		t.Errorf("written table id = %q", got)
	}
	// The row confirmed in a prior run keeps its cells empty.
	if got := get(cfg.Columns.Output.TableID, fields[1].RowIndex); got != "" {
		t.Errorf("confirmed row overwritten with %q", got)
	}
}
