package main

import (
	"context"
	"flag"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
)

func (cli *commandLine) subcommandUsage(cmd string, subs ...string) error {
	cli.printf("Usage: %s", cmd)
	for i, s := range subs {
		if i == 0 {
			cli.printf(" %s", s)
		} else {
			cli.printf("|%s", s)
		}
	}
	cli.println(" [FLAGS]")
	return errHelp
}

// idFlag registers the required -id flag.
func idFlag(fs *flag.FlagSet, what string) *int {
	return fs.Int("id", 0, "The "+what+" id. Required.")
}

func requireID(fs *flag.FlagSet, id int) error {
	if id <= 0 {
		fs.Usage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) year(args []string) error {
	if len(args) == 0 {
		return cli.subcommandUsage("year", "add", "list", "delete")
	}
	ctx := context.Background()
	fs := cli.newFlagSet("year " + args[0])

	switch args[0] {
	case "add":
		var ny school.NewYear
		fs.StringVar(&ny.Name, "name", "", "The academic year, e.g. 2023-2024. Required.")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		yr, err := cli.schoolSvc.CreateYear(ctx, ny)
		if err != nil {
			return err
		}
		cli.printf("Added academic year %s (id %d)\n", yr.Name, yr.ID)
		return nil
	case "list":
		years, err := cli.schoolSvc.ListYears(ctx)
		if err != nil {
			return err
		}
		for _, yr := range years {
			cli.printf("%4d  %s\n", yr.ID, yr.Name)
		}
		return nil
	case "delete":
		id := idFlag(fs, "academic year")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		if err := requireID(fs, *id); err != nil {
			return err
		}
		return cli.schoolSvc.DeleteYear(ctx, *id)
	default:
		return cli.subcommandUsage("year", "add", "list", "delete")
	}
}

func (cli *commandLine) section(args []string) error {
	if len(args) == 0 {
		return cli.subcommandUsage("section", "add", "list", "delete")
	}
	ctx := context.Background()
	fs := cli.newFlagSet("section " + args[0])

	switch args[0] {
	case "add":
		var ns school.NewSection
		fs.StringVar(&ns.Name, "name", "", "The year & section, e.g. \"BSIT 4A\". Required.")
		fs.IntVar(&ns.SchoolYearID, "year-id", 0, "The academic year id. Required.")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		sec, err := cli.schoolSvc.CreateSection(ctx, ns)
		if err != nil {
			return err
		}
		cli.printf("Added section %s (id %d)\n", sec.Name, sec.ID)
		return nil
	case "list":
		yearID := fs.Int("year-id", 0, "Only list the sections of this academic year.")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		sections, err := cli.schoolSvc.ListSections(ctx, *yearID)
		if err != nil {
			return err
		}
		for _, sec := range sections {
			cli.printf("%4d  %-16s %s\n", sec.ID, sec.Name, sec.YearName)
		}
		return nil
	case "delete":
		id := idFlag(fs, "section")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		if err := requireID(fs, *id); err != nil {
			return err
		}
		return cli.schoolSvc.DeleteSection(ctx, *id)
	default:
		return cli.subcommandUsage("section", "add", "list", "delete")
	}
}

func (cli *commandLine) student(args []string) error {
	if len(args) == 0 {
		return cli.subcommandUsage("student", "add", "list", "fingerprint")
	}
	ctx := context.Background()
	fs := cli.newFlagSet("student " + args[0])

	switch args[0] {
	case "add":
		var ns school.NewStudent
		fs.StringVar(&ns.StudentID, "id", "", "The student ID, e.g. 2020-0001. Required.")
		fs.StringVar(&ns.LastName, "last", "", "Last name. Required.")
		fs.StringVar(&ns.FirstName, "first", "", "First name. Required.")
		fs.StringVar(&ns.MiddleName, "middle", "", "Middle name.")
		fs.IntVar(&ns.SectionID, "section-id", 0, "The section id.")
		fs.IntVar(&ns.SchoolYearID, "year-id", 0, "The academic year id.")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		st, err := cli.schoolSvc.CreateStudent(ctx, ns)
		if err != nil {
			return err
		}
		cli.printf("Added student %s %s (%s)\n", st.FirstName, st.LastName, st.StudentID)
		return nil
	case "list":
		sectionID := fs.Int("section-id", 0, "Only list the students of this section.")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		students, err := cli.schoolSvc.ListStudents(ctx, *sectionID)
		if err != nil {
			return err
		}
		for _, st := range students {
			fingerprint := "no"
			if st.HasFingerprint() {
				fingerprint = "yes"
			}
			cli.printf("%-12s %-24s %-12s fingerprint: %s\n", st.StudentID, st.LastName+", "+st.FirstName, st.SectionName.String, fingerprint)
		}
		return nil
	case "fingerprint":
		studentID := fs.String("id", "", "The student ID. Required.")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		if *studentID == "" {
			fs.Usage()
			return errHelp
		}
		cli.println("Place the finger on the scanner...")
		st, err := cli.schoolSvc.RegisterFingerprint(ctx, *studentID, cli.scanner)
		if err != nil {
			return err
		}
		cli.printf("Fingerprint registered for %s %s\n", st.FirstName, st.LastName)
		return nil
	default:
		return cli.subcommandUsage("student", "add", "list", "fingerprint")
	}
}

func scheduleFlags(fs *flag.FlagSet, us *school.UpdateSchedule) {
	fs.StringVar(&us.Subject, "subject", "", "Subject. Required.")
	fs.StringVar(&us.Instructor, "instructor", "", "Instructor.")
	fs.StringVar(&us.Day, "day", "", "Day of the week, e.g. Monday. Required.")
	fs.StringVar(&us.StartTime, "start", "", "Start time, as HH:MM. Required.")
	fs.StringVar(&us.EndTime, "end", "", "End time, as HH:MM. Required.")
	fs.StringVar(&us.Room, "room", "", "Room.")
	fs.StringVar(&us.Semester, "semester", "", "Semester, e.g. \"2nd Semester\".")
}

func (cli *commandLine) printSchedule(sc school.Schedule) {
	cli.printf("%4d  %-10s %s-%s  %-20s %-16s %-10s %s %s\n",
		sc.ID, sc.Day, sc.StartTime, sc.EndTime, sc.Subject, sc.Instructor, sc.Room, sc.Section, sc.Semester.String)
}

func (cli *commandLine) schedule(args []string) error {
	if len(args) == 0 {
		return cli.subcommandUsage("schedule", "add", "list", "update", "delete")
	}
	ctx := context.Background()
	fs := cli.newFlagSet("schedule " + args[0])

	switch args[0] {
	case "add":
		var ns school.NewSchedule
		fs.StringVar(&ns.Section, "section", "", "The year & section. Required.")
		fs.IntVar(&ns.SchoolYearID, "year-id", 0, "The academic year id of the section. Required.")
		scheduleFlags(fs, &ns.UpdateSchedule)
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		sc, err := cli.schoolSvc.CreateSchedule(ctx, ns)
		if err != nil {
			return err
		}
		cli.printSchedule(sc)
		return nil
	case "list":
		section := fs.String("section", "", "Only list the schedules of this year & section.")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		schedules, err := cli.schoolSvc.ListSchedules(ctx, *section)
		if err != nil {
			return err
		}
		for _, sc := range schedules {
			cli.printSchedule(sc)
		}
		return nil
	case "update":
		id := idFlag(fs, "schedule")
		var us school.UpdateSchedule
		scheduleFlags(fs, &us)
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		if err := requireID(fs, *id); err != nil {
			return err
		}
		sc, err := cli.schoolSvc.UpdateSchedule(ctx, *id, us)
		if err != nil {
			return err
		}
		cli.printSchedule(sc)
		return nil
	case "delete":
		id := idFlag(fs, "schedule")
		if err := parse(fs, args[1:]); err != nil {
			return err
		}
		if err := requireID(fs, *id); err != nil {
			return err
		}
		return cli.schoolSvc.DeleteSchedule(ctx, *id)
	default:
		return cli.subcommandUsage("schedule", "add", "list", "update", "delete")
	}
}
