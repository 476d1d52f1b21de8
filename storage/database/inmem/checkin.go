package inmemdb

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
)

// EntryFromCheckIn builds the mirror entry for a check-in the Record Store could not take.
// The student's names are unknown without the Record Store and stay empty.
func EntryFromCheckIn(ci school.CheckIn, section, academicYear string, at time.Time) Entry {
	return Entry{
		YearSection:  section,
		AcademicYear: academicYear,
		Semester:     ci.Semester,
		DateTime:     attendance.Wall(at).Format(attendance.DateTimeLayout),
		Status:       ci.Status,
		StudentID:    ci.StudentID,
	}
}

// Mirrorable reports whether a failed check-in belongs in the mirror: the Record Store failed, not the input.
func Mirrorable(err error) bool {
	if err == nil || core.IsValidationError(err) {
		return false
	}
	return errors.Cause(err) != school.ErrNotFound
}
