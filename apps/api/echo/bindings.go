package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-dashboard/core/student"
)

var (
	searchParam = "search"
	courseParam = "course"
)

// bindQueryFilter reads the list criteria from the query string: `?search=..&course=..`.
func bindQueryFilter(ctx echo.Context) student.QueryFilter {
	var qf student.QueryFilter
	data := ctx.QueryParams()
	if len(data) == 0 {
		return qf
	}
	if val, ok := data[searchParam]; ok && len(val) > 0 {
		qf.Search = val[0]
	}
	if val, ok := data[courseParam]; ok && len(val) > 0 {
		qf.Course = student.Course(val[0])
	}
	return qf
}
