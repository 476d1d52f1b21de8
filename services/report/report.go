// Package report renders attendance results as a terminal table, CSV, PDF and XLSX.
// Every renderer reads the same attendance.Result and never re-queries.
package report

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

// Status tells whether an export produced a file.
type Status int

const (
	StatusNoData Status = iota
	StatusWritten
)

func (s Status) String() string {
	if s == StatusWritten {
		return "written"
	}
	return "no data"
}

// Header is the report header block: the title and the active filters.
type Header struct {
	Title    string
	Criteria attendance.Criteria
}

func NewHeader(title string, criteria attendance.Criteria) Header {
	if title == "" {
		title = "Attendance Report"
	}
	return Header{Title: title, Criteria: criteria}
}

// Filters are the header lines under the title. Semester is only listed when set.
func (h Header) Filters() []string {
	lines := []string{
		"Section: " + h.Criteria.Section,
		"Academic Year: " + h.Criteria.AcademicYear,
	}
	if h.Criteria.Semester != "" {
		lines = append(lines, "Semester: "+h.Criteria.Semester)
	}
	return append(lines, "Date Range: "+h.Criteria.DateRange())
}

// export creates path only when there is something to write. A failed write removes the partial file.
func export(path string, empty bool, write func(w io.Writer) error) (Status, error) {
	if empty {
		return StatusNoData, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return StatusNoData, errors.Wrap(err, "creating export file")
	}
	if err = write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return StatusNoData, errors.Wrapf(err, "writing %s", path)
	}
	if err = f.Close(); err != nil {
		return StatusNoData, errors.Wrapf(err, "closing %s", path)
	}
	return StatusWritten, nil
}
