package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
	inmemdb "github.com/Sissypen/CAS-CCS-Attendance-System/storage/database/inmem"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	db        *sqlx.DB
	logger    core.Logger
	engine    *attendance.Engine
	schoolSvc *school.Service
	fallback  *inmemdb.DB
	scanner   school.Scanner
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	cli.println("Usage:")
	cli.println("  migrate COMMAND [ARGS]                               - run a goose migration command (up, down, status, ...)")
	cli.println("  report [-section -year -semester -from -to]          - show the attendance report")
	cli.println("  export -format csv|pdf|xlsx -out PATH [filters]      - export the attendance report")
	cli.println("  log [-section -out]                                  - show the attendance log or export it as CSV")
	cli.println("  checkin -student ID [-status -semester]              - record a check-in")
	cli.println("  year add|list|delete                                 - manage academic years")
	cli.println("  section add|list|delete                              - manage sections")
	cli.println("  student add|list|fingerprint                         - manage students")
	cli.println("  schedule add|list|update|delete                      - manage class schedules")
	cli.println("  serve [-addr]                                        - start the local report API")
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

// newFlagSet returns a flag set that reports errors instead of exiting, with output on cli.out.
func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse turns -h and flag errors into errHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.println("Usage: migrate COMMAND [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])
	case "report":
		return cli.report(args[2:])
	case "export":
		return cli.export(args[2:])
	case "log":
		return cli.attendanceLog(args[2:])
	case "checkin":
		return cli.checkIn(args[2:])
	case "year":
		return cli.year(args[2:])
	case "section":
		return cli.section(args[2:])
	case "student":
		return cli.student(args[2:])
	case "schedule":
		return cli.schedule(args[2:])
	case "serve":
		return cli.serve(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
