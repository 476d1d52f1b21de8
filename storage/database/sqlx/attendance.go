package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

const attendanceQuery = `
SELECT a.recorded_at  AS recorded_at,
       a.student_id   AS student_id,
       a.last_name    AS last_name,
       a.first_name   AS first_name,
       sec.name       AS section_name,
       a.status       AS status
FROM attendance a
JOIN sections sec ON a.section_id = sec.id
JOIN school_years sy ON a.school_year_id = sy.id
WHERE 1=1`

const scheduleSemesterPredicate = ` AND EXISTS (
    SELECT 1 FROM schedules s
    WHERE s.section_id = a.section_id AND s.school_year_id = a.school_year_id AND s.semester = ?)`

var attendanceOrdering = []core.DBOrdering{
	{Field: "a.recorded_at"},
	{Field: "a.id"},
}

// AttendanceStore is the Record Store side of the report pipeline.
type AttendanceStore struct {
	db            core.DBConnector
	semesterScope string
}

var _ attendance.Source = (*AttendanceStore)(nil)

func NewAttendanceStore(db core.DBConnector, semesterScope string) *AttendanceStore {
	if semesterScope == "" {
		semesterScope = core.SemesterScopeEvent
	}
	return &AttendanceStore{db: db, semesterScope: semesterScope}
}

func (store *AttendanceStore) buildQuery(criteria attendance.Criteria) (string, []interface{}) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(attendanceQuery)

	if criteria.Section != "" {
		sb.WriteString(" AND sec.name = ?")
		args = append(args, criteria.Section)
	}
	if criteria.AcademicYear != "" {
		sb.WriteString(" AND sy.year_name = ?")
		args = append(args, criteria.AcademicYear)
	}
	if criteria.HasStart() {
		sb.WriteString(" AND a.recorded_at >= ?")
		args = append(args, criteria.RangeStart())
	}
	if criteria.HasEnd() {
		sb.WriteString(" AND a.recorded_at < ?")
		args = append(args, criteria.RangeEnd())
	}
	if criteria.Semester != "" {
		if store.semesterScope == core.SemesterScopeSchedule {
			sb.WriteString(scheduleSemesterPredicate)
		} else {
			// NULL semesters never match
			sb.WriteString(" AND a.semester = ?")
		}
		args = append(args, criteria.Semester)
	}

	orderBy := make([]string, 0, len(attendanceOrdering))
	for _, ord := range attendanceOrdering {
		orderBy = append(orderBy, ord.String())
	}
	sb.WriteString(" ORDER BY " + strings.Join(orderBy, ", "))
	return sb.String(), args
}

// Fetch returns the attendance events matching every set criteria field, newest first.
func (store *AttendanceStore) Fetch(ctx context.Context, criteria attendance.Criteria) ([]attendance.Row, error) {
	query, args := store.buildQuery(criteria)
	result := make([]attendance.Row, 0)

	err := withConn(ctx, store.db, func(conn *sqlx.Conn) error {
		rows, err := conn.QueryxContext(ctx, conn.Rebind(query), args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			row := make(map[string]interface{})
			if err := rows.MapScan(row); err != nil {
				return err
			}
			result = append(result, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	return result, nil
}

func (store *AttendanceStore) FilterOptions(ctx context.Context) (attendance.FilterOptions, error) {
	opts := attendance.FilterOptions{
		AcademicYears: make([]string, 0),
		Sections:      make([]string, 0),
	}
	err := withConn(ctx, store.db, func(conn *sqlx.Conn) error {
		if err := conn.SelectContext(ctx, &opts.AcademicYears, "SELECT year_name FROM school_years ORDER BY year_name DESC"); err != nil {
			return err
		}
		return conn.SelectContext(ctx, &opts.Sections, "SELECT DISTINCT name FROM sections ORDER BY name")
	})
	if err != nil {
		return attendance.FilterOptions{}, errors.Wrap(err, "listing filter options")
	}
	return opts, nil
}
