package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

var _ attendance.Source = (*DB)(nil)

func (e Entry) row() attendance.Row {
	return attendance.Row{
		"datetime":      e.DateTime,
		"student_id":    e.StudentID,
		"last":          e.Last,
		"first":         e.First,
		"year_section":  e.YearSection,
		"status":        e.Status,
		"academic_year": e.AcademicYear,
		"semester":      e.Semester,
	}
}

func (db *DB) hasScheduleInSemester(e Entry, semester string) bool {
	for _, s := range db.schedules {
		if s.YearSection == e.YearSection && s.AcademicYear == e.AcademicYear && s.Semester == semester {
			return true
		}
	}
	return false
}

func (db *DB) matches(e Entry, ts time.Time, c attendance.Criteria) bool {
	if c.Section != "" && e.YearSection != c.Section {
		return false
	}
	if c.AcademicYear != "" && e.AcademicYear != c.AcademicYear {
		return false
	}
	if c.Semester != "" {
		if db.semesterScope == core.SemesterScopeSchedule {
			if !db.hasScheduleInSemester(e, c.Semester) {
				return false
			}
		} else if e.Semester != c.Semester {
			return false
		}
	}
	return c.InRange(ts)
}

// Fetch applies the Record Store predicates in-process and returns matches newest first.
// An entry with a malformed datetime fails the whole fetch.
func (db *DB) Fetch(ctx context.Context, criteria attendance.Criteria) ([]attendance.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	type match struct {
		ts  time.Time
		row attendance.Row
	}
	matches := make([]match, 0)
	for _, e := range db.attendance {
		ts, err := attendance.ParseTimestamp(e.DateTime)
		if err != nil {
			return nil, errors.Wrapf(err, "fallback entry %s", e.ID)
		}
		if db.matches(e, ts, criteria) {
			matches = append(matches, match{ts: ts, row: e.row()})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ts.After(matches[j].ts) })

	rows := make([]attendance.Row, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, m.row)
	}
	return rows, nil
}

func (db *DB) FilterOptions(ctx context.Context) (attendance.FilterOptions, error) {
	if err := ctx.Err(); err != nil {
		return attendance.FilterOptions{}, err
	}
	return attendance.FilterOptions{AcademicYears: db.Years(), Sections: db.Sections()}, nil
}
