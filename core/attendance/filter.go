package attendance

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
)

var errInvertedRange = errors.New("start_date is after end_date")

// QueryFilter is the textual form of Criteria, as typed by the operator or sent as URL query params.
type QueryFilter struct {
	Section      string `json:"section" query:"section"`
	AcademicYear string `json:"academic_year" query:"academic_year"`
	Semester     string `json:"semester" query:"semester"`
	StartDate    string `json:"start_date" query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"end_date" query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func (qf *QueryFilter) Clean() {
	qf.Section = core.CleanString(qf.Section)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
	qf.Semester = core.CleanString(qf.Semester)
	qf.StartDate = core.CleanString(qf.StartDate)
	qf.EndDate = core.CleanString(qf.EndDate)
}

// Criteria validates the filter and builds the Criteria value.
// Values that match nothing are not errors. An inverted date range is only rejected when strictDates is set.
func (qf QueryFilter) Criteria(strictDates bool) (Criteria, error) {
	qf.Clean()
	if err := core.ValidateStruct(qf); err != nil {
		return Criteria{}, err
	}

	c := Criteria{
		Section:      qf.Section,
		AcademicYear: qf.AcademicYear,
		Semester:     qf.Semester,
	}
	var err error
	if c.StartDate, err = parseDate(qf.StartDate); err != nil {
		return Criteria{}, err
	}
	if c.EndDate, err = parseDate(qf.EndDate); err != nil {
		return Criteria{}, err
	}
	if strictDates && c.HasStart() && c.HasEnd() && c.StartDate.After(c.EndDate) {
		return Criteria{}, core.NewValidationError(errInvertedRange, core.FieldError{Field: "start_date", Error: errInvertedRange.Error()})
	}
	return c, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing date %q", s)
	}
	return t, nil
}
