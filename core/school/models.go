package school

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

const (
	clockLayout = "15:04"
	endTimeText = "must be after start_time"
)

var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type Year struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"year_name" db:"year_name"`
}

type Section struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	SchoolYearID int    `json:"school_year_id" db:"school_year_id"`
	YearName     string `json:"academic_year" db:"year_name"`
}

type Student struct {
	ID                int         `json:"id" db:"id"`
	StudentID         string      `json:"student_id" db:"student_id"`
	LastName          string      `json:"last_name" db:"last_name"`
	FirstName         string      `json:"first_name" db:"first_name"`
	MiddleName        null.String `json:"middle_name" db:"middle_name"`
	SectionID         null.Int    `json:"section_id" db:"section_id"`
	SchoolYearID      null.Int    `json:"school_year_id" db:"school_year_id"`
	SectionName       null.String `json:"section" db:"section_name"`
	FingerprintDigest null.String `json:"-" db:"fingerprint_digest"`
}

func (s Student) HasFingerprint() bool {
	return s.FingerprintDigest.Valid && s.FingerprintDigest.String != ""
}

// Event is one attendance check-in.
type Event struct {
	ID           int         `json:"id" db:"id"`
	StudentID    string      `json:"student_id" db:"student_id"`
	LastName     string      `json:"last_name" db:"last_name"`
	FirstName    string      `json:"first_name" db:"first_name"`
	SectionID    int         `json:"section_id" db:"section_id"`
	SectionName  string      `json:"year_section" db:"section_name"`
	SchoolYearID int         `json:"school_year_id" db:"school_year_id"`
	RecordedAt   time.Time   `json:"datetime" db:"recorded_at"` // naive local wall time, labelled UTC
	Status       string      `json:"status" db:"status"`
	Semester     null.String `json:"semester" db:"semester"`
}

type Schedule struct {
	ID           int         `json:"id" db:"id"`
	Subject      string      `json:"subject" db:"subject"`
	Instructor   string      `json:"instructor" db:"instructor"`
	Day          string      `json:"day" db:"day"`
	StartTime    string      `json:"start_time" db:"start_time"`
	EndTime      string      `json:"end_time" db:"end_time"`
	Room         string      `json:"room" db:"room"`
	SectionID    int         `json:"section_id" db:"section_id"`
	Section      string      `json:"section" db:"section_name"`
	SchoolYearID int         `json:"school_year_id" db:"school_year_id"`
	AcademicYear string      `json:"academic_year" db:"year_name"`
	Semester     null.String `json:"semester" db:"semester"`
}

type NewYear struct {
	Name string `json:"year_name" validate:"required,schoolyear"`
}

func (ny *NewYear) Validate() error {
	ny.Name = core.CleanString(ny.Name)
	return core.ValidateStruct(ny)
}

type NewSection struct {
	Name         string `json:"name" validate:"required,notblank"`
	SchoolYearID int    `json:"school_year_id" validate:"required"`
}

func (ns *NewSection) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.ValidateStruct(ns)
}

type NewStudent struct {
	StudentID    string `json:"student_id" validate:"required,notblank"`
	LastName     string `json:"last_name" validate:"required,notblank"`
	FirstName    string `json:"first_name" validate:"required,notblank"`
	MiddleName   string `json:"middle_name"`
	SectionID    int    `json:"section_id" validate:"omitempty,min=1"`
	SchoolYearID int    `json:"school_year_id" validate:"omitempty,min=1"`
}

func (ns *NewStudent) Validate() error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.LastName = core.CleanString(ns.LastName)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.MiddleName = core.CleanString(ns.MiddleName)
	return core.ValidateStruct(ns)
}

// NewSchedule resolves Section by name within the academic year SchoolYearID.
type NewSchedule struct {
	Section      string `json:"section" validate:"required,notblank"`
	SchoolYearID int    `json:"school_year_id" validate:"required"`
	UpdateSchedule
}

func (ns *NewSchedule) Validate() error {
	ns.Section = core.CleanString(ns.Section)
	ns.clean()
	if err := core.ValidateStruct(ns); err != nil {
		return err
	}
	return ns.checkTimes()
}

type UpdateSchedule struct {
	Subject    string `json:"subject" validate:"required,notblank"`
	Instructor string `json:"instructor"`
	Day        string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime  string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime    string `json:"end_time" validate:"required,datetime=15:04"`
	Room       string `json:"room"`
	Semester   string `json:"semester"`
}

func (us *UpdateSchedule) Validate() error {
	us.clean()
	if err := core.ValidateStruct(us); err != nil {
		return err
	}
	return us.checkTimes()
}

// checkTimes relies on the zero padded HH:MM layout ordering lexically.
func (us UpdateSchedule) checkTimes() error {
	if us.EndTime <= us.StartTime {
		return core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: endTimeText})
	}
	return nil
}

func (us *UpdateSchedule) clean() {
	us.Subject = core.CleanString(us.Subject)
	us.Instructor = core.CleanString(us.Instructor)
	us.Day = core.CleanString(us.Day)
	us.StartTime = clock(us.StartTime)
	us.EndTime = clock(us.EndTime)
	us.Room = core.CleanString(us.Room)
	us.Semester = core.CleanString(us.Semester)
}

// CheckIn is a scanned or manually entered attendance event.
type CheckIn struct {
	StudentID string `json:"student_id" validate:"required,notblank"`
	Status    string `json:"status"`
	Semester  string `json:"semester"`
}

func (ci *CheckIn) Validate() error {
	ci.StudentID = core.CleanString(ci.StudentID)
	ci.Status = core.CleanString(ci.Status)
	if ci.Status == "" {
		ci.Status = attendance.StatusPresent
	}
	ci.Semester = core.CleanString(ci.Semester)
	return core.ValidateStruct(ci)
}

// clock zero pads valid HH:MM values.
func clock(s string) string {
	s = core.CleanString(s)
	if t, err := time.Parse(clockLayout, s); err == nil {
		return t.Format(clockLayout)
	}
	return s
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}
