package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core/marks"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/teacher"
)

type marksApi struct {
	svc     marks.Service
	tchrSvc teacher.Service
	stdSvc  student.Service
}

func registerMarksAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc marks.Service,
	tchrSvc teacher.Service,
	stdSvc student.Service,
) {
	api := marksApi{
		svc:     svc,
		tchrSvc: tchrSvc,
		stdSvc:  stdSvc,
	}

	mg := g.Group("/marks", jwt)
	mg.POST("", api.recordExam, teacherMiddleware())
	mg.GET("", api.query, staffMiddleware())

	// student portal
	mg.GET("/me", api.querySelf, studentMiddleware())
	mg.GET("/me/average", api.selfAverage, studentMiddleware())
}

// recordExam stores a teacher's bulk marks submission for one of their
// subjects; resubmitting an exam replaces the previous scores.
func (api *marksApi) recordExam(ctx echo.Context) error {
	var data marks.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tchr, err := api.contextTeacher(ctx)
	if err != nil {
		return err
	}
	if !handlesSubject(tchr, data.SubjectID) {
		return errHttpForbidden
	}

	recs, err := api.svc.RecordExam(ctx.Request().Context(), data, tchr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, recs)
}

func (api *marksApi) query(ctx echo.Context) error {
	filter := new(marks.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []marks.Record{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	recs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying marks")
	}
	if recs == nil {
		recs = []marks.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *marksApi) querySelf(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}

	recs, err := api.svc.Query(ctx.Request().Context(), &marks.QueryFilter{StudentID: std.ID})
	if err != nil {
		return errors.Wrap(err, "querying marks")
	}
	if recs == nil {
		recs = []marks.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *marksApi) selfAverage(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}

	avg, err := api.svc.StudentAverage(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "averaging marks")
	}
	return ctx.JSON(http.StatusOK, avg)
}

func (api *marksApi) contextTeacher(ctx echo.Context) (teacher.Teacher, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting context claims")
	}
	return api.tchrSvc.Get(ctx.Request().Context(), teacher.GetFilter{UserID: claims.Subject})
}

func (api *marksApi) contextStudent(ctx echo.Context) (student.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting context claims")
	}
	return api.stdSvc.Get(ctx.Request().Context(), student.GetFilter{UserID: claims.Subject})
}
