package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core/analytics"
	"github.com/academia-hub/academia/core/department"
	"github.com/academia-hub/academia/core/student"
)

type analyticsApi struct {
	svc     analytics.Service
	stdSvc  student.Service
	deptSvc department.Service
}

func registerAnalyticsAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc analytics.Service,
	stdSvc student.Service,
	deptSvc department.Service,
) {
	api := analyticsApi{
		svc:     svc,
		stdSvc:  stdSvc,
		deptSvc: deptSvc,
	}

	ag := g.Group("/analytics", jwt)
	ag.GET("/overview", api.overview, adminMiddleware())
	ag.GET("/department-overview", api.departmentOverview, hodMiddleware())
	ag.GET("/me/report", api.selfReport, studentMiddleware())
	ag.GET("/students/:id/report", api.studentReport)
}

func (api *analyticsApi) overview(ctx echo.Context) error {
	overview, err := api.svc.AdminOverview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building admin overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *analyticsApi) departmentOverview(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	overview, err := api.svc.HODOverview(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *analyticsApi) selfReport(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.stdSvc.Get(ctx.Request().Context(), student.GetFilter{UserID: claims.Subject})
	if err != nil {
		return err
	}

	report, err := api.svc.StudentReport(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, report)
}

// studentReport builds a student's report for any caller allowed to see it:
// admins, the department's HOD, a teacher handling one of the student's
// subjects, or the student themselves.
func (api *analyticsApi) studentReport(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.stdSvc.Get(ctx.Request().Context(), student.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}

	allowed, err := api.hasReportAccess(ctx, claims, std)
	if err != nil {
		return err
	}
	if !allowed {
		return errHttpForbidden
	}

	report, err := api.svc.StudentReport(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *analyticsApi) hasReportAccess(ctx echo.Context, claims Claims, std student.Student) (bool, error) {
	switch {
	case claims.IsAdmin:
		return true, nil
	case claims.IsHOD:
		dept, err := api.deptSvc.GetForHOD(ctx.Request().Context(), claims.Subject)
		if err != nil {
			if errors.Cause(err) == department.ErrHODUnassigned {
				return false, nil
			}
			return false, err
		}
		return std.DepartmentID == dept.ID, nil
	case claims.IsTeacher:
		return api.svc.TeacherHasAccess(ctx.Request().Context(), claims.Subject, std.ID)
	case claims.IsStudent:
		return std.UserID == claims.Subject, nil
	}
	return false, nil
}
