package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

// bindCriteria reads the report filters from the query string.
func bindCriteria(ctx echo.Context, strictDates bool) (attendance.Criteria, error) {
	var qf attendance.QueryFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &qf); err != nil {
		return attendance.Criteria{}, err
	}
	return qf.Criteria(strictDates)
}
