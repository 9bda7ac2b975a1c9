package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/teacher"
)

type attendanceApi struct {
	svc     attendance.Service
	tchrSvc teacher.Service
	stdSvc  student.Service
}

func registerAttendanceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc attendance.Service,
	tchrSvc teacher.Service,
	stdSvc student.Service,
) {
	api := attendanceApi{
		svc:     svc,
		tchrSvc: tchrSvc,
		stdSvc:  stdSvc,
	}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.recordSession, teacherMiddleware())
	ag.GET("", api.query, staffMiddleware())

	// student portal
	ag.GET("/me", api.querySelf, studentMiddleware())
	ag.GET("/me/summary", api.selfSummary, studentMiddleware())
}

// recordSession stores a teacher's bulk attendance submission for one of
// their subjects. A session may only be submitted once per subject and date.
func (api *attendanceApi) recordSession(ctx echo.Context) error {
	var data attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
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

	recs, err := api.svc.RecordSession(ctx.Request().Context(), data, tchr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, recs)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Record{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	recs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) querySelf(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}

	recs, err := api.svc.Query(ctx.Request().Context(), &attendance.QueryFilter{StudentID: std.ID})
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) selfSummary(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}

	sum, err := api.svc.StudentSummary(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *attendanceApi) contextTeacher(ctx echo.Context) (teacher.Teacher, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting context claims")
	}
	return api.tchrSvc.Get(ctx.Request().Context(), teacher.GetFilter{UserID: claims.Subject})
}

func (api *attendanceApi) contextStudent(ctx echo.Context) (student.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting context claims")
	}
	return api.stdSvc.Get(ctx.Request().Context(), student.GetFilter{UserID: claims.Subject})
}

func handlesSubject(tchr teacher.Teacher, subjectID string) bool {
	for _, id := range tchr.SubjectsHandled {
		if id == subjectID {
			return true
		}
	}
	return false
}
