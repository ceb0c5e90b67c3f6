package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/report"
	"github.com/trezcool/alama/core/user"
)

const errPeriodRequired = "academicYear and term are required"

type teacherApi struct {
	crsSvc *course.Service
	rptSvc *report.Service
	usrSvc *user.Service
}

func registerTeacherAPI(g *echo.Group, crsSvc *course.Service, rptSvc *report.Service, usrSvc *user.Service) {
	api := teacherApi{crsSvc: crsSvc, rptSvc: rptSvc, usrSvc: usrSvc}

	g.GET("/dashboard", api.dashboard)
	g.GET("/academic-info", api.academicInfo)
	g.GET("/students", api.queryStudents)

	g.POST("/courses", api.createCourse)
	g.GET("/courses/:level", api.coursesByLevel)
	g.DELETE("/courses/:courseId", api.deleteCourse)
	g.GET("/courses/:courseId/students", api.roster)
	g.POST("/courses/:courseId/students", api.enrollStudent)
	g.DELETE("/courses/:courseId/students/:studentId", api.unenrollStudent)
}

// Handlers

func (api *teacherApi) dashboard(ctx echo.Context) error {
	if _, err := bindPeriod(ctx); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	dashboard, err := api.rptSvc.TeacherDashboard(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "building teacher dashboard")
	}
	return ctx.JSON(http.StatusOK, dashboard)
}

func (api *teacherApi) academicInfo(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, report.CurrentAcademicInfo(time.Now()))
}

func (api *teacherApi) queryStudents(ctx echo.Context) error {
	students, err := api.usrSvc.QueryStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *teacherApi) createCourse(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	crs, err := api.crsSvc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *teacherApi) coursesByLevel(ctx echo.Context) error {
	level := ctx.Param("level")
	if !core.IsValidLevel(level) {
		return core.NewValidationError(nil, core.FieldError{Field: "level", Error: "invalid level"})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	courses, err := api.crsSvc.QueryByLevel(ctx.Request().Context(), claims.Subject, level)
	if err != nil {
		return errors.Wrap(err, "querying courses by level")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *teacherApi) deleteCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := api.crsSvc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("courseId")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted."})
}

func (api *teacherApi) roster(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	roster, err := api.rptSvc.CourseRoster(ctx.Request().Context(), claims.Subject, ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "building course roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *teacherApi) enrollStudent(ctx echo.Context) error {
	var data course.EnrollStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	courseID := ctx.Param("courseId")
	if err := api.crsSvc.AddStudent(ctx.Request().Context(), claims.Subject, courseID, data.StudentID); err != nil {
		return errors.Wrap(err, "enrolling student")
	}

	students, err := api.crsSvc.EnrolledStudents(ctx.Request().Context(), courseID)
	if err != nil {
		return errors.Wrap(err, "querying enrolled students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *teacherApi) unenrollStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	err = api.crsSvc.RemoveStudent(ctx.Request().Context(), claims.Subject, ctx.Param("courseId"), ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Student removed from course."})
}

// bindPeriod extracts the academicYear and term query params; both are
// required.
func bindPeriod(ctx echo.Context) (report.Period, error) {
	p := report.Period{
		AcademicYear: ctx.QueryParam("academicYear"),
		Term:         ctx.QueryParam("term"),
	}
	if p.AcademicYear == "" || p.Term == "" {
		return report.Period{}, core.NewValidationError(nil,
			core.FieldError{Field: "academicYear", Error: errPeriodRequired},
			core.FieldError{Field: "term", Error: errPeriodRequired},
		)
	}
	return p, nil
}
