package report

import (
	"encoding/csv"
	"io"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

// WriteCSV writes the title row and one row per record, in table column order.
func WriteCSV(w io.Writer, res attendance.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(attendance.ColumnTitles()); err != nil {
		return err
	}
	for _, r := range res.Records {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes res to path, or returns StatusNoData without creating a file.
func ExportCSV(path string, res attendance.Result) (Status, error) {
	return export(path, res.IsEmpty(), func(w io.Writer) error { return WriteCSV(w, res) })
}
