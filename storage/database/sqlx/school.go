package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
)

const (
	studentSelect = `
SELECT st.id, st.student_id, st.last_name, st.first_name, st.middle_name,
       st.section_id, st.school_year_id, sec.name AS section_name, st.fingerprint_digest
FROM students st
LEFT JOIN sections sec ON st.section_id = sec.id`

	sectionSelect = `
SELECT sec.id, sec.name, sec.school_year_id, sy.year_name
FROM sections sec
JOIN school_years sy ON sec.school_year_id = sy.id`

	eventSelect = `
SELECT a.id, a.student_id, a.last_name, a.first_name, a.section_id, sec.name AS section_name,
       a.school_year_id, a.recorded_at, a.status, a.semester
FROM attendance a
JOIN sections sec ON a.section_id = sec.id`

	scheduleSelect = `
SELECT s.id, s.subject, s.instructor, s.day, s.start_time, s.end_time, s.room,
       s.section_id, sec.name AS section_name, s.school_year_id, sy.year_name, s.semester
FROM schedules s
JOIN sections sec ON s.section_id = sec.id
JOIN school_years sy ON s.school_year_id = sy.id`

	// Monday first, then by start time
	scheduleOrder = ` ORDER BY CASE s.day
    WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3 WHEN 'Thursday' THEN 4
    WHEN 'Friday' THEN 5 WHEN 'Saturday' THEN 6 ELSE 7 END, s.start_time, s.id`
)

type schoolRepository struct {
	db core.DBConnector
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db core.DBConnector) *schoolRepository {
	return &schoolRepository{db: db}
}

// Years

func (repo *schoolRepository) CreateYear(ctx context.Context, name string) (school.Year, error) {
	yr := school.Year{Name: name}
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) (err error) {
		yr.ID, err = insertReturningID(ctx, conn, "INSERT INTO school_years (year_name) VALUES (?)", name)
		return err
	})
	if isUniqueViolation(err) {
		return school.Year{}, school.ErrYearExists
	}
	if err != nil {
		return school.Year{}, errors.Wrap(err, "creating academic year")
	}
	return yr, nil
}

func (repo *schoolRepository) ListYears(ctx context.Context) ([]school.Year, error) {
	years := make([]school.Year, 0)
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &years, "SELECT id, year_name FROM school_years ORDER BY year_name DESC")
	})
	return years, errors.Wrap(err, "listing academic years")
}

func (repo *schoolRepository) DeleteYear(ctx context.Context, id int) error {
	return repo.deleteByID(ctx, "school_years", id)
}

// Sections

func (repo *schoolRepository) CreateSection(ctx context.Context, ns school.NewSection) (school.Section, error) {
	var sec school.Section
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		id, err := insertReturningID(ctx, conn, "INSERT INTO sections (name, school_year_id) VALUES (?, ?)", ns.Name, ns.SchoolYearID)
		if err != nil {
			return err
		}
		return conn.GetContext(ctx, &sec, conn.Rebind(sectionSelect+" WHERE sec.id = ?"), id)
	})
	if isUniqueViolation(err) {
		return school.Section{}, school.ErrSectionExists
	}
	if err != nil {
		return school.Section{}, errors.Wrap(err, "creating section")
	}
	return sec, nil
}

func (repo *schoolRepository) ListSections(ctx context.Context, yearID int) ([]school.Section, error) {
	query := sectionSelect
	var args []interface{}
	if yearID > 0 {
		query += " WHERE sec.school_year_id = ?"
		args = append(args, yearID)
	}
	query += " ORDER BY sy.year_name DESC, sec.name"

	sections := make([]school.Section, 0)
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &sections, conn.Rebind(query), args...)
	})
	return sections, errors.Wrap(err, "listing sections")
}

func (repo *schoolRepository) DeleteSection(ctx context.Context, id int) error {
	return repo.deleteByID(ctx, "sections", id)
}

func (repo *schoolRepository) FindSectionID(ctx context.Context, name string, yearID int) (int, error) {
	var id int
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &id, conn.Rebind("SELECT id FROM sections WHERE name = ? AND school_year_id = ?"), name, yearID)
	})
	return id, trapNoRowsErr(err)
}

// Students

func getStudent(ctx context.Context, conn core.DBExecutor, studentID string) (school.Student, error) {
	var st school.Student
	err := conn.GetContext(ctx, &st, conn.Rebind(studentSelect+" WHERE st.student_id = ?"), studentID)
	return st, trapNoRowsErr(err)
}

func (repo *schoolRepository) CreateStudent(ctx context.Context, st school.Student) (school.Student, error) {
	var created school.Student
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		_, err := insertReturningID(ctx, conn, `
INSERT INTO students (student_id, last_name, first_name, middle_name, section_id, school_year_id)
VALUES (?, ?, ?, ?, ?, ?)`, st.StudentID, st.LastName, st.FirstName, st.MiddleName, st.SectionID, st.SchoolYearID)
		if err != nil {
			return err
		}
		created, err = getStudent(ctx, conn, st.StudentID)
		return err
	})
	if isUniqueViolation(err) {
		return school.Student{}, school.ErrStudentExists
	}
	if err != nil {
		return school.Student{}, errors.Wrap(err, "creating student")
	}
	return created, nil
}

func (repo *schoolRepository) ListStudents(ctx context.Context, sectionID int) ([]school.Student, error) {
	query := studentSelect
	var args []interface{}
	if sectionID > 0 {
		query += " WHERE st.section_id = ?"
		args = append(args, sectionID)
	}
	query += " ORDER BY st.last_name, st.first_name"

	students := make([]school.Student, 0)
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &students, conn.Rebind(query), args...)
	})
	return students, errors.Wrap(err, "listing students")
}

func (repo *schoolRepository) GetStudent(ctx context.Context, studentID string) (school.Student, error) {
	var st school.Student
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) (err error) {
		st, err = getStudent(ctx, conn, studentID)
		return err
	})
	return st, err
}

func (repo *schoolRepository) SetFingerprint(ctx context.Context, studentID, digest string) error {
	return withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, conn.Rebind("UPDATE students SET fingerprint_digest = ? WHERE student_id = ?"), digest, studentID)
		if err != nil {
			return errors.Wrap(err, "registering fingerprint")
		}
		return checkAffected(res)
	})
}

// Attendance events

func (repo *schoolRepository) CreateEvent(ctx context.Context, ev school.Event) (school.Event, error) {
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) (err error) {
		ev.ID, err = insertReturningID(ctx, conn, `
INSERT INTO attendance (student_id, last_name, first_name, section_id, school_year_id, recorded_at, status, semester)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.StudentID, ev.LastName, ev.FirstName, ev.SectionID, ev.SchoolYearID, ev.RecordedAt, ev.Status, ev.Semester)
		return err
	})
	if err != nil {
		return school.Event{}, errors.Wrap(err, "recording attendance")
	}
	return ev, nil
}

func (repo *schoolRepository) ListEvents(ctx context.Context, section string) ([]school.Event, error) {
	query := eventSelect
	var args []interface{}
	if section != "" {
		query += " WHERE sec.name = ?"
		args = append(args, section)
	}
	query += " ORDER BY a.recorded_at DESC, a.id DESC"

	events := make([]school.Event, 0)
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &events, conn.Rebind(query), args...)
	})
	return events, errors.Wrap(err, "listing attendance log")
}

// Schedules

func getSchedule(ctx context.Context, conn core.DBExecutor, id int) (school.Schedule, error) {
	var sch school.Schedule
	err := conn.GetContext(ctx, &sch, conn.Rebind(scheduleSelect+" WHERE s.id = ?"), id)
	return sch, trapNoRowsErr(err)
}

func (repo *schoolRepository) CreateSchedule(ctx context.Context, sch school.Schedule) (school.Schedule, error) {
	var created school.Schedule
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		id, err := insertReturningID(ctx, conn, `
INSERT INTO schedules (subject, instructor, day, start_time, end_time, room, section_id, school_year_id, semester)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sch.Subject, sch.Instructor, sch.Day, sch.StartTime, sch.EndTime, sch.Room, sch.SectionID, sch.SchoolYearID, sch.Semester)
		if err != nil {
			return err
		}
		created, err = getSchedule(ctx, conn, id)
		return err
	})
	if err != nil {
		return school.Schedule{}, errors.Wrap(err, "creating schedule")
	}
	return created, nil
}

func (repo *schoolRepository) ListSchedules(ctx context.Context, section string) ([]school.Schedule, error) {
	query := scheduleSelect
	var args []interface{}
	if section != "" {
		query += " WHERE sec.name = ?"
		args = append(args, section)
	}
	query += scheduleOrder

	schedules := make([]school.Schedule, 0)
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &schedules, conn.Rebind(query), args...)
	})
	return schedules, errors.Wrap(err, "listing schedules")
}

func (repo *schoolRepository) UpdateSchedule(ctx context.Context, sch school.Schedule) (school.Schedule, error) {
	var updated school.Schedule
	err := withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, conn.Rebind(`
UPDATE schedules
SET subject = ?, instructor = ?, day = ?, start_time = ?, end_time = ?, room = ?, semester = ?
WHERE id = ?`), sch.Subject, sch.Instructor, sch.Day, sch.StartTime, sch.EndTime, sch.Room, sch.Semester, sch.ID)
		if err != nil {
			return errors.Wrap(err, "updating schedule")
		}
		if err = checkAffected(res); err != nil {
			return err
		}
		updated, err = getSchedule(ctx, conn, sch.ID)
		return err
	})
	return updated, err
}

func (repo *schoolRepository) DeleteSchedule(ctx context.Context, id int) error {
	return repo.deleteByID(ctx, "schedules", id)
}

// deleteByID only receives table names from this file.
func (repo *schoolRepository) deleteByID(ctx context.Context, table string, id int) error {
	return withConn(ctx, repo.db, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, conn.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
		if err != nil {
			return errors.Wrapf(err, "deleting from %s", table)
		}
		return checkAffected(res)
	})
}
