package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
	"github.com/Sissypen/CAS-CCS-Attendance-System/storage/database"
)

// Config returns a test configuration backed by a SQLite file in dir.
func Config(dir string) *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "CCS Attendance System",
		WorkDir:  dir,
		Database: core.DatabaseConfig{
			Engine: core.EngineSQLite,
			Path:   filepath.Join(dir, "cas_test.db"),
		},
		Report: core.ReportConfig{
			Title:         "Attendance Report",
			SemesterScope: core.SemesterScopeEvent,
		},
		Server: core.ServerConfig{Address: "127.0.0.1:0"},
	}
}

// PrepareDB opens and migrates a fresh database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := Config(t.TempDir())
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateYear(t *testing.T, repo school.Repository, name string) school.Year {
	t.Helper()
	yr, err := repo.CreateYear(context.Background(), name)
	if err != nil {
		t.Fatalf("createYear() failed: %v", err)
	}
	return yr
}

func CreateSection(t *testing.T, repo school.Repository, name string, yr school.Year) school.Section {
	t.Helper()
	sec, err := repo.CreateSection(context.Background(), school.NewSection{Name: name, SchoolYearID: yr.ID})
	if err != nil {
		t.Fatalf("createSection() failed: %v", err)
	}
	return sec
}

func CreateStudent(t *testing.T, repo school.Repository, studentID, last, first string, sec school.Section) school.Student {
	t.Helper()
	st, err := repo.CreateStudent(context.Background(), school.Student{
		StudentID:    studentID,
		LastName:     last,
		FirstName:    first,
		SectionID:    null.IntFrom(sec.ID),
		SchoolYearID: null.IntFrom(sec.SchoolYearID),
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return st
}

func CreateEvent(
	t *testing.T,
	repo school.Repository,
	st school.Student,
	status string,
	recordedAt time.Time,
	semester ...string,
) school.Event {
	t.Helper()
	ev := school.Event{
		StudentID:    st.StudentID,
		LastName:     st.LastName,
		FirstName:    st.FirstName,
		SectionID:    st.SectionID.Int,
		SectionName:  st.SectionName.String,
		SchoolYearID: st.SchoolYearID.Int,
		RecordedAt:   recordedAt,
		Status:       status,
	}
	if len(semester) > 0 {
		ev.Semester = null.StringFrom(semester[0])
	}
	ev, err := repo.CreateEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("createEvent() failed: %v", err)
	}
	return ev
}

// SeedScenario stores 3 BSIT 4A events of January 2024 for 2023-2024 (2 present, 1 absent)
// and 5 events that each miss one of those filters.
func SeedScenario(t *testing.T, repo school.Repository) {
	t.Helper()
	y23 := CreateYear(t, repo, "2023-2024")
	y24 := CreateYear(t, repo, "2024-2025")
	it4a := CreateSection(t, repo, "BSIT 4A", y23)
	cs1b := CreateSection(t, repo, "BSCS 1B", y23)
	it4aNext := CreateSection(t, repo, "BSIT 4A", y24)

	juan := CreateStudent(t, repo, "2020-0001", "Dela Cruz", "Juan", it4a)
	maria := CreateStudent(t, repo, "2020-0002", "Clara", "Maria", it4a)
	jose := CreateStudent(t, repo, "2021-0003", "Rizal", "Jose", cs1b)
	andres := CreateStudent(t, repo, "2024-0004", "Bonifacio", "Andres", it4aNext)

	at := func(day, hour int) time.Time { return time.Date(2024, time.January, day, hour, 0, 0, 0, time.UTC) }

	// matching
	CreateEvent(t, repo, juan, "Present", at(8, 8), "2nd Semester")
	CreateEvent(t, repo, maria, "present", at(15, 9), "2nd Semester")
	CreateEvent(t, repo, juan, "Absent", at(31, 23))

	// not matching
	CreateEvent(t, repo, juan, "Present", time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC))
	CreateEvent(t, repo, maria, "Present", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	CreateEvent(t, repo, jose, "Present", at(10, 8))
	CreateEvent(t, repo, andres, "Present", at(10, 8))
	CreateEvent(t, repo, andres, "Absent", at(11, 8))
}
