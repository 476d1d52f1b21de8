package echoapi

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
	"github.com/Sissypen/CAS-CCS-Attendance-System/services/report"
	inmemdb "github.com/Sissypen/CAS-CCS-Attendance-System/storage/database/inmem"
)

var nowFunc = time.Now // mockable

const logDownloadName = "attendance_log.csv"

type (
	attendanceAPI struct {
		opts *Options
	}

	checkInRequest struct {
		school.CheckIn
		// only kept when the check-in has to be mirrored
		Section      string `json:"section"`
		AcademicYear string `json:"academic_year"`
	}

	mirroredCheckIn struct {
		Mirrored bool          `json:"mirrored"`
		Entry    inmemdb.Entry `json:"entry"`
	}
)

func registerAttendanceAPI(g *echo.Group, opts *Options) {
	api := attendanceAPI{opts: opts}

	g.POST("/checkins", api.checkIn)
	g.GET("/attendance-log", api.log)
	g.GET("/attendance-log.csv", api.logCSV)
}

// checkIn answers 202 Accepted when the Record Store is down and the check-in went to the fallback mirror.
func (api attendanceAPI) checkIn(ctx echo.Context) error {
	var req checkInRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := req.CheckIn.Validate(); err != nil {
		return err
	}

	ev, err := api.opts.SchoolSvc.CheckIn(ctx.Request().Context(), req.CheckIn)
	if err == nil {
		return ctx.JSON(http.StatusCreated, ev)
	}
	if !inmemdb.Mirrorable(err) || api.opts.Fallback == nil {
		return err
	}

	api.opts.Logger.Warn("record store check-in failed, mirroring to fallback store", err, req.CheckIn)
	entries := api.opts.Fallback.Append(inmemdb.EntryFromCheckIn(req.CheckIn, req.Section, req.AcademicYear, nowFunc()))
	if api.opts.FallbackSeed != "" {
		if serr := api.opts.Fallback.SaveSeed(api.opts.FallbackSeed); serr != nil {
			api.opts.Logger.Error("saving fallback seed", serr)
		}
	}
	return ctx.JSON(http.StatusAccepted, mirroredCheckIn{Mirrored: true, Entry: entries[0]})
}

func (api attendanceAPI) log(ctx echo.Context) error {
	events, err := api.opts.SchoolSvc.AttendanceLog(ctx.Request().Context(), ctx.QueryParam("section"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, events)
}

// logCSV answers 204 No Content when the log is empty so no file is produced.
func (api attendanceAPI) logCSV(ctx echo.Context) error {
	events, err := api.opts.SchoolSvc.AttendanceLog(ctx.Request().Context(), ctx.QueryParam("section"))
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	var buf bytes.Buffer
	if err = report.WriteLogCSV(&buf, events); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+logDownloadName+`"`)
	return ctx.Blob(http.StatusOK, mimeCSV, buf.Bytes())
}
