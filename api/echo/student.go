package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/report"
)

type studentApi struct {
	rptSvc *report.Service
}

func registerStudentAPI(g *echo.Group, rptSvc *report.Service) {
	api := studentApi{rptSvc: rptSvc}

	g.GET("/dashboard", api.dashboard)
	g.GET("/academic-info", api.academicInfo)
	g.GET("/courses/:courseId", api.courseDetail)
}

// Handlers

func (api *studentApi) dashboard(ctx echo.Context) error {
	period, err := bindPeriod(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reports, err := api.rptSvc.StudentDashboard(ctx.Request().Context(), claims.Subject, period)
	if err != nil {
		return errors.Wrap(err, "building student dashboard")
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *studentApi) academicInfo(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, report.CurrentAcademicInfo(time.Now()))
}

func (api *studentApi) courseDetail(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	detail, err := api.rptSvc.StudentCourseDetail(ctx.Request().Context(), claims.Subject, ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "building course detail")
	}
	return ctx.JSON(http.StatusOK, detail)
}
