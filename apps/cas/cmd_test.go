package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/Sissypen/CAS-CCS-Attendance-System/apps/api/echo"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
	"github.com/Sissypen/CAS-CCS-Attendance-System/services/fingerprint"
	"github.com/Sissypen/CAS-CCS-Attendance-System/services/logger"
	inmemdb "github.com/Sissypen/CAS-CCS-Attendance-System/storage/database/inmem"
	sqlxrepos "github.com/Sissypen/CAS-CCS-Attendance-System/storage/database/sqlx"
	"github.com/Sissypen/CAS-CCS-Attendance-System/testutil"
)

var schoolRepo school.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	schoolRepo = sqlxrepos.NewSchoolRepository(db)
	testutil.SeedScenario(t, schoolRepo)

	conf := testutil.Config(t.TempDir())
	logger := logsvc.NewDiscardLogger()
	fallback := inmemdb.Open(conf.Report.SemesterScope)

	// start CLI
	var out bytes.Buffer
	return &commandLine{
		conf:      conf,
		db:        db,
		logger:    logger,
		engine:    attendance.NewEngine(sqlxrepos.NewAttendanceStore(db, conf.Report.SemesterScope), fallback, logger),
		schoolSvc: school.NewService(schoolRepo),
		fallback:  fallback,
		scanner:   fingerprint.NewSimulator("test"),
		out:       &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string // substring of the output
}

func runCliTests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"cas"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if errors.Cause(err) != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	runCliTests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown flag", args: []string{"report", "-lol"}, wantErr: errHelp},
		{name: "year: no subcommand", args: []string{"year"}, wantErr: errHelp, wantOut: "Usage: year add|list|delete"},
		{name: "schedule: unknown subcommand", args: []string{"schedule", "lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	gooseRunFunc = func(db *sqlx.DB, engine, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCliTests(t, cli, out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "rooms", "sql"}},
	})
}

func Test_commandLine_report(t *testing.T) {
	cli, out := setup(t)

	filters := []string{"-section", "BSIT 4A", "-year", "2023-2024", "-from", "2024-01-01", "-to", "2024-01-31"}
	runCliTests(t, cli, out, []cliTest{
		{name: "scenario", args: append([]string{"report"}, filters...), wantOut: "Total records: 3\nPresent: 2\nAbsent: 1"},
		{name: "no match", args: []string{"report", "-section", "BSN 2C"}, wantOut: noDataText},
		{name: "bad date", args: []string{"report", "-from", "2024/01/01"}, wantErr: nil, wantErrStr: "start_date: must be a date formatted as YYYY-MM-DD"},
	})
}

func Test_commandLine_export(t *testing.T) {
	cli, out := setup(t)
	dir := t.TempDir()
	filters := []string{"-section", "BSIT 4A", "-year", "2023-2024", "-from", "2024-01-01", "-to", "2024-01-31"}

	for _, format := range []string{"csv", "pdf", "xlsx"} {
		path := filepath.Join(dir, "report."+format)
		runCliTests(t, cli, out, []cliTest{
			{name: format, args: append([]string{"export", "-format", format, "-out", path}, filters...), wantOut: "Report exported to " + path},
		})
		info, err := os.Stat(path)
		if assert.NoError(t, err) {
			assert.NotZero(t, info.Size())
		}

		empty := filepath.Join(dir, "empty."+format)
		runCliTests(t, cli, out, []cliTest{
			{name: format + " no data", args: []string{"export", "-format", format, "-out", empty, "-section", "BSN 2C"}, wantOut: "No data to export."},
		})
		_, err = os.Stat(empty)
		assert.True(t, os.IsNotExist(err), "no file expected for no data, stat err = %v", err)
	}

	runCliTests(t, cli, out, []cliTest{
		{name: "unknown format", args: []string{"export", "-format", "docx"}, wantErr: errHelp},
	})

	t.Run("unwritable path", func(t *testing.T) {
		err := cli.run(append([]string{"cas", "export", "-out", filepath.Join(dir, "missing", "report.csv")}, filters...))
		assert.Error(t, err)
	})
}

func Test_commandLine_fallback(t *testing.T) {
	cli, out := setup(t)
	cli.fallback.Load(inmemdb.Seed{
		Attendance: []inmemdb.Entry{
			{YearSection: "BSIT 4A", AcademicYear: "2023-2024", DateTime: "2024-01-08 08:00:00", Status: "Present", StudentID: "2020-0001", Last: "Dela Cruz", First: "Juan"},
		},
	})
	cli.conf.Fallback.SeedFile = filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, cli.db.Close())

	runCliTests(t, cli, out, []cliTest{
		{name: "report", args: []string{"report", "-section", "BSIT 4A"}, wantOut: "Total records: 1"},
		{name: "checkin", args: []string{"checkin", "-student", "2020-0002", "-section", "BSIT 4A", "-year", "2023-2024"}, wantOut: "check-in kept offline for 2020-0002"},
		{name: "report after checkin", args: []string{"report", "-section", "BSIT 4A"}, wantOut: "Total records: 2"},
	})

	seed, err := inmemdb.LoadSeed(cli.conf.Fallback.SeedFile)
	require.NoError(t, err)
	assert.Len(t, seed.Attendance, 2)
}

func Test_commandLine_checkIn(t *testing.T) {
	cli, out := setup(t)

	nowFunc = func() time.Time { return time.Date(2024, time.March, 4, 7, 30, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	runCliTests(t, cli, out, []cliTest{
		{name: "no student", args: []string{"checkin"}, wantErr: nil, wantErrStr: "student_id: this field is required"},
		{name: "unknown student", args: []string{"checkin", "-student", "1999-0000"}, wantErr: school.ErrNotFound},
		{name: "checked in", args: []string{"checkin", "-student", "2021-0003"}, wantOut: "Checked in Jose Rizal (Present)"},
		{name: "log", args: []string{"log", "-section", "BSCS 1B"}, wantOut: "2021-0003"},
	})

	events, err := cli.schoolSvc.AttendanceLog(context.Background(), "BSCS 1B")
	require.NoError(t, err)
	assert.Len(t, events, 2)
	mirrored, err := cli.fallback.Fetch(context.Background(), attendance.Criteria{})
	require.NoError(t, err)
	assert.Empty(t, mirrored)
}

func Test_commandLine_log(t *testing.T) {
	cli, out := setup(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "log.csv")
	empty := filepath.Join(dir, "empty.csv")

	runCliTests(t, cli, out, []cliTest{
		{name: "print", args: []string{"log", "-section", "BSIT 4A"}, wantOut: "2020-0001"},
		{name: "unknown section", args: []string{"log", "-section", "BSN 2C"}, wantOut: noLogText},
		{name: "csv", args: []string{"log", "-section", "BSIT 4A", "-out", path}, wantOut: "Attendance log exported to " + path},
		{name: "csv no data", args: []string{"log", "-section", "BSN 2C", "-out", empty}, wantOut: "No data to export."},
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "Student ID,Last Name,First Name,Year & Section,Date Time,Status", lines[0])
	assert.Len(t, lines, 8)

	_, err = os.Stat(empty)
	assert.True(t, os.IsNotExist(err), "no file expected for no data, stat err = %v", err)
}

func Test_commandLine_school(t *testing.T) {
	cli, out := setup(t)

	runCliTests(t, cli, out, []cliTest{
		{name: "year add", args: []string{"year", "add", "-name", "2025-2026"}, wantOut: "Added academic year 2025-2026"},
		{name: "year add: invalid", args: []string{"year", "add", "-name", "2025-2027"}, wantErrStr: "year_name: must be a school year like 2023-2024"},
		{name: "year add: exists", args: []string{"year", "add", "-name", "2023-2024"}, wantErrStr: school.ErrYearExists.Error()},
		{name: "year list", args: []string{"year", "list"}, wantOut: "2025-2026"},
		{name: "year delete: no id", args: []string{"year", "delete"}, wantErr: errHelp},
		{name: "section add", args: []string{"section", "add", "-name", "BSIS 2A", "-year-id", "1"}, wantOut: "Added section BSIS 2A"},
		{name: "section list", args: []string{"section", "list", "-year-id", "1"}, wantOut: "BSIS 2A"},
		{name: "student add", args: []string{"student", "add", "-id", "2022-0005", "-last", "Luna", "-first", "Antonio", "-section-id", "1", "-year-id", "1"}, wantOut: "Added student Antonio Luna (2022-0005)"},
		{name: "student fingerprint", args: []string{"student", "fingerprint", "-id", "2022-0005"}, wantOut: "Fingerprint registered for Antonio Luna"},
		{name: "student fingerprint: unknown", args: []string{"student", "fingerprint", "-id", "1999-0000"}, wantErr: school.ErrNotFound},
		{name: "student list", args: []string{"student", "list", "-section-id", "1"}, wantOut: "Luna, Antonio"},
		{
			name:    "schedule add",
			args:    []string{"schedule", "add", "-section", "BSIT 4A", "-year-id", "1", "-subject", "Capstone", "-day", "Monday", "-start", "8:00", "-end", "10:00", "-semester", "2nd Semester"},
			wantOut: "Capstone",
		},
		{
			name:       "schedule add: unknown section",
			args:       []string{"schedule", "add", "-section", "BSN 2C", "-year-id", "1", "-subject", "Capstone", "-day", "Monday", "-start", "08:00", "-end", "10:00"},
			wantErrStr: school.ErrSectionNotFoundForYear.Error(),
		},
		{
			name:       "schedule update: end before start",
			args:       []string{"schedule", "update", "-id", "1", "-subject", "Capstone", "-day", "Monday", "-start", "10:00", "-end", "08:00"},
			wantErrStr: "end_time: must be after start_time",
		},
		{name: "schedule list", args: []string{"schedule", "list", "-section", "BSIT 4A"}, wantOut: "08:00-10:00"},
		{name: "schedule delete", args: []string{"schedule", "delete", "-id", "1"}},
	})

	schedules, err := cli.schoolSvc.ListSchedules(context.Background(), "BSIT 4A")
	require.NoError(t, err)
	assert.Empty(t, schedules)

	students, err := cli.schoolSvc.ListStudents(context.Background(), 1)
	require.NoError(t, err)
	for _, st := range students {
		if st.StudentID == "2022-0005" {
			assert.True(t, st.HasFingerprint())
		}
	}
}

type stubServer struct {
	echoapi.Server
	opts *echoapi.Options
}

func (s *stubServer) Start() error { return errors.New("address already in use") }

func Test_commandLine_serve(t *testing.T) {
	cli, out := setup(t)

	var srv *stubServer
	newServerFunc = func(opts *echoapi.Options) echoapi.Server {
		srv = &stubServer{opts: opts}
		return srv
	}
	defer func() { newServerFunc = echoapi.NewServer }()

	runCliTests(t, cli, out, []cliTest{
		{name: "start failure", args: []string{"serve", "-addr", "127.0.0.1:0"}, wantErrStr: "address already in use"},
	})
	if assert.NotNil(t, srv) {
		assert.Equal(t, "127.0.0.1:0", srv.opts.Address)
		assert.Same(t, cli.engine, srv.opts.Engine)
		assert.Equal(t, core.SemesterScopeEvent, srv.opts.Report.SemesterScope)
	}
	assert.False(t, strings.Contains(out.String(), "Usage"))
}
