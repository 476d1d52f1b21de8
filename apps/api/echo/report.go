package echoapi

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
	"github.com/Sissypen/CAS-CCS-Attendance-System/services/report"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	downloadName = "attendance_report"
)

type reportAPI struct {
	opts *Options
}

func registerReportAPI(g *echo.Group, opts *Options) {
	api := reportAPI{opts: opts}

	g.GET("/filters", api.filters)
	g.GET("/reports/attendance", api.attendance)
	g.GET("/reports/attendance.csv", api.download(".csv", mimeCSV, func(w io.Writer, _ report.Header, res attendance.Result) error {
		return report.WriteCSV(w, res)
	}))
	g.GET("/reports/attendance.pdf", api.download(".pdf", mimePDF, report.WritePDF))
	g.GET("/reports/attendance.xlsx", api.download(".xlsx", mimeXLSX, report.WriteXLSX))
}

func (api reportAPI) filters(ctx echo.Context) error {
	opts, err := api.opts.Engine.FilterOptions(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api reportAPI) run(ctx echo.Context) (attendance.Result, error) {
	criteria, err := bindCriteria(ctx, api.opts.Report.StrictDates)
	if err != nil {
		return attendance.Result{}, err
	}
	return api.opts.Engine.Run(ctx.Request().Context(), criteria)
}

func (api reportAPI) attendance(ctx echo.Context) error {
	res, err := api.run(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

// download answers 204 No Content when nothing matches, mirroring the exporters' no-data status.
func (api reportAPI) download(ext, mime string, write func(io.Writer, report.Header, attendance.Result) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		res, err := api.run(ctx)
		if err != nil {
			return err
		}
		if res.IsEmpty() {
			return ctx.NoContent(http.StatusNoContent)
		}

		var buf bytes.Buffer
		if err = write(&buf, report.NewHeader(api.opts.Report.Title, res.Criteria), res); err != nil {
			return err
		}
		ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+downloadName+ext+`"`)
		return ctx.Blob(http.StatusOK, mime, buf.Bytes())
	}
}
