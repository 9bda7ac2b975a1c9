package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core/enrollment"
)

type enrollmentApi struct {
	sync enrollment.Synchronizer
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, sync enrollment.Synchronizer) {
	api := enrollmentApi{sync: sync}

	eg := g.Group("/enrollments", jwt, staffMiddleware())
	eg.GET("", api.query)
	eg.POST("/:studentId/auto", api.autoEnroll)
	eg.DELETE("/:studentId", api.destroyForStudent)
}

func (api *enrollmentApi) query(ctx echo.Context) error {
	filter := new(enrollment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []enrollment.Enrollment{})
	}

	enrs, err := api.sync.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

// autoEnroll enrolls the student in every active subject of their department
// and semester. Already-enrolled subjects are skipped.
func (api *enrollmentApi) autoEnroll(ctx echo.Context) error {
	enrs, err := api.sync.EnrollInSemesterSubjects(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		return err
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusCreated, enrs)
}

func (api *enrollmentApi) destroyForStudent(ctx echo.Context) error {
	if err := api.sync.RemoveStudentEnrollments(ctx.Request().Context(), ctx.Param("studentId")); err != nil {
		return errors.Wrap(err, "removing enrollments")
	}
	return ctx.NoContent(http.StatusNoContent)
}
