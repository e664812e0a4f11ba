// Package sheet reads interface-field rows from the definition workbook and
// writes match results back into the output columns.
package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"cdsmatch/internal/config"
	"cdsmatch/internal/model"
)

// Workbook wraps one open definition workbook.
type Workbook struct {
	file   *excelize.File
	cfg    config.SheetConfig
	layout config.ColumnLayout
	log    *zap.SugaredLogger
}

// Open loads the workbook and picks the column layout. The detection cell
// decides between the default and the SAP-format template.
func Open(path string, cfg config.SheetConfig, log *zap.SugaredLogger) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	idx, err := f.GetSheetIndex(cfg.SheetName)
	if err != nil || idx < 0 {
		f.Close()
		return nil, fmt.Errorf("sheet %q not found in workbook", cfg.SheetName)
	}

	wb := &Workbook{file: f, cfg: cfg, layout: cfg.Columns, log: log}
	detect, _ := f.GetCellValue(cfg.SheetName, cell(cfg.DetectCol, cfg.DetectRow))
	if strings.Contains(strings.ToUpper(detect), "SAP") {
		wb.layout = cfg.ColumnsSAP
		log.Debugw("SAP-format layout detected", "cell", cell(cfg.DetectCol, cfg.DetectRow))
	}
	return wb, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error { return w.file.Close() }

func cell(col string, row int) string {
	return col + strconv.Itoa(row)
}

func (w *Workbook) value(col string, row int) string {
	v, _ := w.file.GetCellValue(w.cfg.SheetName, cell(col, row))
	return v
}

// Fields extracts the input rows. Rows with an empty field name or the "e"
// end marker are skipped. The interface metadata from the header row is
// copied onto every field.
func (w *Workbook) Fields() ([]model.InputField, error) {
	module := w.value(w.layout.Header.Module, w.cfg.HeaderRow)
	ifName := w.value(w.layout.Header.IfName, w.cfg.HeaderRow)
	ifDesc := w.value(w.layout.Header.IfDesc, w.cfg.HeaderRow)

	rows, err := w.file.GetRows(w.cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	maxRow := len(rows)

	in := w.layout.Input
	var fields []model.InputField
	for row := w.cfg.StartRow; row <= maxRow; row++ {
		name := strings.TrimSpace(w.value(in.FieldName, row))
		if name == "" || name == "e" {
			continue
		}
		fields = append(fields, model.InputField{
			RowIndex:    row,
			Module:      module,
			IfName:      ifName,
			IfDesc:      ifDesc,
			FieldName:   name,
			KeyFlag:     w.value(in.KeyFlag, row),
			Obligatory:  w.value(in.Obligatory, row),
			DataType:    w.value(in.DataType, row),
			FieldID:     w.value(in.FieldID, row),
			LengthTotal: w.value(in.LengthTotal, row),
			LengthDec:   w.value(in.LengthDec, row),
			FieldText:   w.value(in.FieldText, row),
			SampleValue: w.value(in.SampleValue, row),
			Remark:      w.value(in.Remark, row),
			Verify:      w.value(in.Verify, row),
		})
	}
	w.log.Infow("fields extracted", "count", len(fields), "interface", ifName)
	return fields, nil
}

// WriteResults fills the output columns. Rows already confirmed in a prior
// run (verify marker other than empty or "-") are left alone.
func (w *Workbook) WriteResults(rows []model.MatchedRow) error {
	out := w.layout.Output
	written := 0
	for _, r := range rows {
		if r.Field.Verify != "" && r.Field.Verify != model.VerifyNotApplicable {
			continue
		}
		row := r.Field.RowIndex
		cells := []struct {
			col string
			val string
		}{
			{out.FieldDesc, r.Result.FieldDesc},
			{out.FieldID, r.Result.FieldID},
			{out.KeyFlag, r.Result.KeyFlag},
			{out.Obligatory, r.Result.Obligatory},
			{out.TableID, r.Result.TableID},
			{out.DataType, r.Result.DataType},
			{out.LengthTotal, r.Result.LengthTotal},
			{out.LengthDec, r.Result.LengthDec},
			{out.Notes, r.Result.Notes},
			{out.SampleValue, r.Result.SampleValue},
			{out.Match, r.Result.Match},
			{out.Verify, r.Result.Verify},
		}
		for _, c := range cells {
			if err := w.file.SetCellValue(w.cfg.SheetName, cell(c.col, row), c.val); err != nil {
				return fmt.Errorf("write cell %s%d: %w", c.col, row, err)
			}
		}
		written++
	}
	w.log.Infow("results written", "rows", written, "skipped", len(rows)-written)
	return nil
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	return w.file.SaveAs(path)
}
