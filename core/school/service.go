package school

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/blake2b"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

var (
	// errors
	ErrNotFound               = errors.New("not found")
	ErrYearExists             = errors.New("this academic year already exists")
	ErrSectionExists          = errors.New("this section already exists for the academic year")
	ErrStudentExists          = errors.New("a student with this ID already exists")
	ErrSectionNotFoundForYear = errors.New("section not found for this academic year")
	ErrNoSection              = errors.New("student is not assigned to a section")
	ErrEmptyTemplate          = errors.New("scanner returned an empty fingerprint template")
)

var nowFunc = time.Now // mockable

type (
	Repository interface {
		CreateYear(ctx context.Context, name string) (Year, error)
		// ListYears orders by name, newest first.
		ListYears(ctx context.Context) ([]Year, error)
		DeleteYear(ctx context.Context, id int) error

		CreateSection(ctx context.Context, ns NewSection) (Section, error)
		// ListSections lists every section when yearID is 0.
		ListSections(ctx context.Context, yearID int) ([]Section, error)
		DeleteSection(ctx context.Context, id int) error
		FindSectionID(ctx context.Context, name string, yearID int) (int, error)

		CreateStudent(ctx context.Context, st Student) (Student, error)
		// ListStudents lists every student when sectionID is 0.
		ListStudents(ctx context.Context, sectionID int) ([]Student, error)
		GetStudent(ctx context.Context, studentID string) (Student, error)
		SetFingerprint(ctx context.Context, studentID, digest string) error

		CreateEvent(ctx context.Context, ev Event) (Event, error)
		// ListEvents returns the attendance log, newest first, optionally for one section name.
		ListEvents(ctx context.Context, section string) ([]Event, error)

		CreateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		// ListSchedules orders by day and start time, optionally for one section name.
		ListSchedules(ctx context.Context, section string) ([]Schedule, error)
		UpdateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		DeleteSchedule(ctx context.Context, id int) error
	}

	// Scanner captures a raw fingerprint template.
	Scanner interface {
		Capture(ctx context.Context) ([]byte, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// asValidationError reports known conflicts against the offending field.
func asValidationError(err error, field string, known ...error) error {
	for _, k := range known {
		if errors.Cause(err) == k {
			return core.NewValidationError(k, core.FieldError{Field: field, Error: k.Error()})
		}
	}
	return err
}

func (svc *Service) CreateYear(ctx context.Context, ny NewYear) (Year, error) {
	if err := ny.Validate(); err != nil {
		return Year{}, err
	}
	yr, err := svc.repo.CreateYear(ctx, ny.Name)
	return yr, asValidationError(err, "year_name", ErrYearExists)
}

func (svc *Service) ListYears(ctx context.Context) ([]Year, error) {
	return svc.repo.ListYears(ctx)
}

func (svc *Service) DeleteYear(ctx context.Context, id int) error {
	return svc.repo.DeleteYear(ctx, id)
}

func (svc *Service) CreateSection(ctx context.Context, ns NewSection) (Section, error) {
	if err := ns.Validate(); err != nil {
		return Section{}, err
	}
	sec, err := svc.repo.CreateSection(ctx, ns)
	return sec, asValidationError(err, "name", ErrSectionExists)
}

func (svc *Service) ListSections(ctx context.Context, yearID int) ([]Section, error) {
	return svc.repo.ListSections(ctx, yearID)
}

func (svc *Service) DeleteSection(ctx context.Context, id int) error {
	return svc.repo.DeleteSection(ctx, id)
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	st := Student{
		StudentID:    ns.StudentID,
		LastName:     ns.LastName,
		FirstName:    ns.FirstName,
		MiddleName:   nullString(ns.MiddleName),
		SectionID:    null.NewInt(ns.SectionID, ns.SectionID > 0),
		SchoolYearID: null.NewInt(ns.SchoolYearID, ns.SchoolYearID > 0),
	}
	st, err := svc.repo.CreateStudent(ctx, st)
	return st, asValidationError(err, "student_id", ErrStudentExists)
}

func (svc *Service) ListStudents(ctx context.Context, sectionID int) ([]Student, error) {
	return svc.repo.ListStudents(ctx, sectionID)
}

func (svc *Service) GetStudent(ctx context.Context, studentID string) (Student, error) {
	return svc.repo.GetStudent(ctx, core.CleanString(studentID))
}

// RegisterFingerprint captures a template and stores its digest; the raw template is never persisted.
func (svc *Service) RegisterFingerprint(ctx context.Context, studentID string, scanner Scanner) (Student, error) {
	st, err := svc.GetStudent(ctx, studentID)
	if err != nil {
		return Student{}, err
	}
	tmpl, err := scanner.Capture(ctx)
	if err != nil {
		return Student{}, errors.Wrap(err, "capturing fingerprint")
	}
	if len(tmpl) == 0 {
		return Student{}, ErrEmptyTemplate
	}
	digest := FingerprintDigest(tmpl)
	if err := svc.repo.SetFingerprint(ctx, st.StudentID, digest); err != nil {
		return Student{}, err
	}
	st.FingerprintDigest = nullString(digest)
	return st, nil
}

func FingerprintDigest(tmpl []byte) string {
	sum := blake2b.Sum256(tmpl)
	return hex.EncodeToString(sum[:])
}

// CheckIn records an attendance event for a registered student in their current section.
func (svc *Service) CheckIn(ctx context.Context, ci CheckIn) (Event, error) {
	if err := ci.Validate(); err != nil {
		return Event{}, err
	}
	st, err := svc.repo.GetStudent(ctx, ci.StudentID)
	if err != nil {
		return Event{}, err
	}
	if !st.SectionID.Valid {
		return Event{}, core.NewValidationError(ErrNoSection, core.FieldError{Field: "student_id", Error: ErrNoSection.Error()})
	}
	ev := Event{
		StudentID:    st.StudentID,
		LastName:     st.LastName,
		FirstName:    st.FirstName,
		SectionID:    st.SectionID.Int,
		SectionName:  st.SectionName.String,
		SchoolYearID: st.SchoolYearID.Int,
		RecordedAt:   attendance.Wall(nowFunc()),
		Status:       ci.Status,
		Semester:     nullString(ci.Semester),
	}
	return svc.repo.CreateEvent(ctx, ev)
}

func (svc *Service) AttendanceLog(ctx context.Context, section string) ([]Event, error) {
	return svc.repo.ListEvents(ctx, core.CleanString(section))
}

func (svc *Service) CreateSchedule(ctx context.Context, ns NewSchedule) (Schedule, error) {
	if err := ns.Validate(); err != nil {
		return Schedule{}, err
	}
	secID, err := svc.repo.FindSectionID(ctx, ns.Section, ns.SchoolYearID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			err = ErrSectionNotFoundForYear
		}
		return Schedule{}, asValidationError(err, "section", ErrSectionNotFoundForYear)
	}
	sch := ns.UpdateSchedule.schedule()
	sch.SectionID = secID
	sch.Section = ns.Section
	sch.SchoolYearID = ns.SchoolYearID
	return svc.repo.CreateSchedule(ctx, sch)
}

func (svc *Service) ListSchedules(ctx context.Context, section string) ([]Schedule, error) {
	return svc.repo.ListSchedules(ctx, core.CleanString(section))
}

func (svc *Service) UpdateSchedule(ctx context.Context, id int, us UpdateSchedule) (Schedule, error) {
	if err := us.Validate(); err != nil {
		return Schedule{}, err
	}
	sch := us.schedule()
	sch.ID = id
	return svc.repo.UpdateSchedule(ctx, sch)
}

func (svc *Service) DeleteSchedule(ctx context.Context, id int) error {
	return svc.repo.DeleteSchedule(ctx, id)
}

func (us UpdateSchedule) schedule() Schedule {
	return Schedule{
		Subject:    us.Subject,
		Instructor: us.Instructor,
		Day:        us.Day,
		StartTime:  us.StartTime,
		EndTime:    us.EndTime,
		Room:       us.Room,
		Semester:   nullString(us.Semester),
	}
}
