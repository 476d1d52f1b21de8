package report

import (
	"encoding/csv"
	"io"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
)

// LogColumnTitles is the attendance log export order; it differs from the report columns.
var LogColumnTitles = []string{"Student ID", "Last Name", "First Name", "Year & Section", "Date Time", "Status"}

func logValues(ev school.Event) []string {
	dt := ""
	if !ev.RecordedAt.IsZero() {
		dt = ev.RecordedAt.Format(attendance.DateTimeLayout)
	}
	return []string{ev.StudentID, ev.LastName, ev.FirstName, ev.SectionName, dt, ev.Status}
}

// WriteLogCSV writes the attendance log, one row per check-in.
func WriteLogCSV(w io.Writer, events []school.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LogColumnTitles); err != nil {
		return err
	}
	for _, ev := range events {
		if err := cw.Write(logValues(ev)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportLogCSV writes events to path, or returns StatusNoData without creating a file.
func ExportLogCSV(path string, events []school.Event) (Status, error) {
	return export(path, len(events) == 0, func(w io.Writer) error { return WriteLogCSV(w, events) })
}
