package report

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

const sheetName = "Attendance"

var xlsxColumnWidths = []float64{20, 14, 18, 18, 16, 10}

// WriteXLSX puts the header block, the column titles, the records and the summary on one sheet.
func WriteXLSX(w io.Writer, h Header, res attendance.Result) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err = f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	setRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(sheetName, cell, &values)
	}
	toValues := func(ss []string) []interface{} {
		values := make([]interface{}, len(ss))
		for i, s := range ss {
			values[i] = s
		}
		return values
	}

	if err = setRow([]interface{}{h.Title}); err != nil {
		return err
	}
	if err = f.SetCellStyle(sheetName, "A1", "A1", bold); err != nil {
		return err
	}
	for _, line := range h.Filters() {
		if err = setRow([]interface{}{line}); err != nil {
			return err
		}
	}
	row++

	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(attendance.Columns), row)
	if err != nil {
		return err
	}
	if err = setRow(toValues(attendance.ColumnTitles())); err != nil {
		return err
	}
	if err = f.SetCellStyle(sheetName, first, last, bold); err != nil {
		return err
	}
	for _, r := range res.Records {
		if err = setRow(toValues(r.Values())); err != nil {
			return err
		}
	}
	row++

	for _, line := range res.Summary.Lines() {
		if err = setRow([]interface{}{line}); err != nil {
			return err
		}
	}

	for i, width := range xlsxColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err = f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// ExportXLSX writes res to path, or returns StatusNoData without creating a file.
func ExportXLSX(path string, h Header, res attendance.Result) (Status, error) {
	return export(path, res.IsEmpty(), func(w io.Writer) error { return WriteXLSX(w, h, res) })
}
