package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/assessment"
)

type assessmentApi struct {
	svc *assessment.Service
}

func registerAssessmentAPI(g *echo.Group, svc *assessment.Service) {
	api := assessmentApi{svc: svc}

	g.POST("", api.create)
	g.GET("/course/:courseId", api.queryByCourse)
	g.GET("/:id/marks", api.retrieveMarks)
	g.PUT("/:id/marks", api.setMarks)
	g.PUT("/:id/marks/:studentId", api.updateMark)
	g.DELETE("/:id", api.destroy)
}

// Handlers

func (api *assessmentApi) create(ctx echo.Context) error {
	var data assessment.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	asmt, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating assessment")
	}
	return ctx.JSON(http.StatusCreated, asmt)
}

func (api *assessmentApi) queryByCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	assessments, err := api.svc.QueryByCourse(ctx.Request().Context(), claims.Subject, ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "querying assessments by course")
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *assessmentApi) retrieveMarks(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	asmt, err := api.svc.GetOwned(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assessment")
	}
	return ctx.JSON(http.StatusOK, asmt)
}

func (api *assessmentApi) setMarks(ctx echo.Context) error {
	var data assessment.SetMarks
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetMarks")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	asmt, err := api.svc.SetMarks(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "replacing marks")
	}
	return ctx.JSON(http.StatusOK, asmt)
}

func (api *assessmentApi) updateMark(ctx echo.Context) error {
	var data assessment.UpdateMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMark")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	assessmentID := ctx.Param("id")
	err = api.svc.UpdateMark(ctx.Request().Context(), claims.Subject, assessmentID, ctx.Param("studentId"), data)
	if err != nil {
		return errors.Wrap(err, "updating mark")
	}

	asmt, err := api.svc.GetOwned(ctx.Request().Context(), claims.Subject, assessmentID)
	if err != nil {
		return errors.Wrap(err, "getting assessment")
	}
	return ctx.JSON(http.StatusOK, asmt)
}

func (api *assessmentApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assessment")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Message: "Assessment deleted."})
}
