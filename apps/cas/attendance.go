package main

import (
	"context"
	"time"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
	"github.com/Sissypen/CAS-CCS-Attendance-System/services/report"
	inmemdb "github.com/Sissypen/CAS-CCS-Attendance-System/storage/database/inmem"
)

var nowFunc = time.Now // mockable

const noLogText = "No attendance recorded yet."

func (cli *commandLine) attendanceLog(args []string) error {
	logCmd := cli.newFlagSet("log")
	section := logCmd.String("section", "", "Only show this year & section.")
	out := logCmd.String("out", "", "Write the log as CSV to this file instead of printing it.")
	if err := parse(logCmd, args); err != nil {
		return err
	}

	events, err := cli.schoolSvc.AttendanceLog(context.Background(), *section)
	if err != nil {
		return err
	}
	if *out != "" {
		status, err := report.ExportLogCSV(*out, events)
		if err != nil {
			return err
		}
		if status == report.StatusNoData {
			cli.println("No data to export. " + noLogText)
			return nil
		}
		cli.printf("Attendance log exported to %s\n", *out)
		return nil
	}
	if len(events) == 0 {
		cli.println(noLogText)
		return nil
	}
	for _, ev := range events {
		cli.printf("%s  %-12s %-20s %-12s %s\n",
			ev.RecordedAt.Format(attendance.DateTimeLayout), ev.StudentID, ev.LastName+", "+ev.FirstName, ev.SectionName, ev.Status)
	}
	return nil
}

// checkIn records a check-in. When the Record Store is unreachable it is kept in the Fallback Store instead.
func (cli *commandLine) checkIn(args []string) error {
	checkInCmd := cli.newFlagSet("checkin")
	var ci school.CheckIn
	checkInCmd.StringVar(&ci.StudentID, "student", "", "The student ID. Required.")
	checkInCmd.StringVar(&ci.Status, "status", attendance.StatusPresent, "Present or Absent.")
	checkInCmd.StringVar(&ci.Semester, "semester", "", "Semester, e.g. \"2nd Semester\".")
	section := checkInCmd.String("section", "", "Year & section, only kept if the check-in is mirrored.")
	year := checkInCmd.String("year", "", "Academic year, only kept if the check-in is mirrored.")
	if err := parse(checkInCmd, args); err != nil {
		return err
	}
	if err := ci.Validate(); err != nil {
		checkInCmd.Usage()
		return err
	}

	ev, err := cli.schoolSvc.CheckIn(context.Background(), ci)
	if err == nil {
		cli.printf("Checked in %s %s (%s) at %s\n", ev.FirstName, ev.LastName, ev.Status, ev.RecordedAt.Format(attendance.DateTimeLayout))
		return nil
	}
	if !inmemdb.Mirrorable(err) || cli.fallback == nil {
		return err
	}

	cli.logger.Warn("record store check-in failed, mirroring to fallback store", err, ci)
	entry := cli.fallback.Append(inmemdb.EntryFromCheckIn(ci, *section, *year, nowFunc()))[0]
	if seed := cli.conf.Fallback.SeedFile; seed != "" {
		if err = cli.fallback.SaveSeed(seed); err != nil {
			return err
		}
	}
	cli.printf("Record store unavailable; check-in kept offline for %s at %s\n", entry.StudentID, entry.DateTime)
	return nil
}
