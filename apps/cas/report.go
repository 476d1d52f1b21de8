package main

import (
	"context"
	"flag"
	"os"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
	"github.com/Sissypen/CAS-CCS-Attendance-System/services/report"
)

const noDataText = "No attendance records match the selected filters."

type exportFunc func(path string, h report.Header, res attendance.Result) (report.Status, error)

var exporters = map[string]exportFunc{
	"csv": func(path string, _ report.Header, res attendance.Result) (report.Status, error) {
		return report.ExportCSV(path, res)
	},
	"pdf":  report.ExportPDF,
	"xlsx": report.ExportXLSX,
}

func filterFlags(fs *flag.FlagSet) *attendance.QueryFilter {
	var qf attendance.QueryFilter
	fs.StringVar(&qf.Section, "section", "", "Year & section, e.g. \"BSIT 4A\".")
	fs.StringVar(&qf.AcademicYear, "year", "", "Academic year, e.g. 2023-2024.")
	fs.StringVar(&qf.Semester, "semester", "", "Semester, e.g. \"2nd Semester\".")
	fs.StringVar(&qf.StartDate, "from", "", "First day, as YYYY-MM-DD.")
	fs.StringVar(&qf.EndDate, "to", "", "Last day (inclusive), as YYYY-MM-DD.")
	return &qf
}

func (cli *commandLine) runReport(qf *attendance.QueryFilter) (attendance.Result, error) {
	criteria, err := qf.Criteria(cli.conf.Report.StrictDates)
	if err != nil {
		return attendance.Result{}, err
	}
	return cli.engine.Run(context.Background(), criteria)
}

func (cli *commandLine) tableWidth() int {
	if f, ok := cli.out.(*os.File); ok {
		return report.TerminalWidth(f)
	}
	return 0
}

func (cli *commandLine) report(args []string) error {
	reportCmd := cli.newFlagSet("report")
	qf := filterFlags(reportCmd)
	if err := parse(reportCmd, args); err != nil {
		return err
	}

	res, err := cli.runReport(qf)
	if err != nil {
		return err
	}
	if res.IsEmpty() {
		cli.println(noDataText)
	}

	tv := report.NewTableView(cli.tableWidth())
	tv.Render(res)
	_, err = tv.WriteTo(cli.out)
	return err
}

func (cli *commandLine) export(args []string) error {
	exportCmd := cli.newFlagSet("export")
	format := exportCmd.String("format", "csv", "Output format: csv, pdf or xlsx.")
	out := exportCmd.String("out", "", "Output file. Defaults to attendance_report.<format>.")
	qf := filterFlags(exportCmd)
	if err := parse(exportCmd, args); err != nil {
		return err
	}

	exp, ok := exporters[*format]
	if !ok {
		exportCmd.Usage()
		return errHelp
	}
	path := *out
	if path == "" {
		path = "attendance_report." + *format
	}

	res, err := cli.runReport(qf)
	if err != nil {
		return err
	}
	status, err := exp(path, report.NewHeader(cli.conf.Report.Title, res.Criteria), res)
	if err != nil {
		return err
	}
	if status == report.StatusNoData {
		cli.println("No data to export. " + noDataText)
		return nil
	}
	cli.printf("Report exported to %s\n", path)
	return nil
}
