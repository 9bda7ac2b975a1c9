package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core/analytics"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	"github.com/academia-hub/academia/core/teacher"
)

type teacherApi struct {
	svc     teacher.Service
	subSvc  subject.Service
	stdSvc  student.Service
	anlSvc  analytics.Service
	enrSync enrollment.Synchronizer
}

// SubjectStudent is an enrolled student along with their analytics report,
// as shown on the teacher's subject roster.
type SubjectStudent struct {
	Student   student.Student  `json:"student"`
	Analytics analytics.Report `json:"analytics"`
}

func registerTeacherAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc teacher.Service,
	subSvc subject.Service,
	stdSvc student.Service,
	anlSvc analytics.Service,
	enrSync enrollment.Synchronizer,
) {
	api := teacherApi{
		svc:     svc,
		subSvc:  subSvc,
		stdSvc:  stdSvc,
		anlSvc:  anlSvc,
		enrSync: enrSync,
	}

	tg := g.Group("/teachers", jwt)
	tg.POST("", api.create, adminMiddleware())
	tg.GET("", api.query, staffMiddleware())

	// teacher portal
	tg.GET("/me", api.retrieveSelf, teacherMiddleware())
	tg.GET("/me/subjects", api.querySelfSubjects, teacherMiddleware())
	tg.GET("/me/subjects/:id/students", api.querySubjectStudents, teacherMiddleware())

	tg.GET("/:id", api.retrieve, staffMiddleware())
	tg.PUT("/:id", api.update, adminMiddleware())
	tg.DELETE("/:id", api.destroy, adminMiddleware())
}

// create onboards a teacher; their account credentials are emailed to them.
func (api *teacherApi) create(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tchr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tchr)
}

func (api *teacherApi) query(ctx echo.Context) error {
	filter := new(teacher.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []teacher.Teacher{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tchrs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if tchrs == nil {
		tchrs = []teacher.Teacher{}
	}
	return ctx.JSON(http.StatusOK, tchrs)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	tchr, err := api.svc.Get(ctx.Request().Context(), teacher.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tchr)
}

func (api *teacherApi) retrieveSelf(ctx echo.Context) error {
	tchr, err := api.contextTeacher(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tchr)
}

func (api *teacherApi) querySelfSubjects(ctx echo.Context) error {
	tchr, err := api.contextTeacher(ctx)
	if err != nil {
		return err
	}

	subs, err := api.subSvc.Query(ctx.Request().Context(), &subject.QueryFilter{AssignedTeacherID: tchr.ID})
	if err != nil {
		return errors.Wrap(err, "querying assigned subjects")
	}
	if subs == nil {
		subs = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

// querySubjectStudents lists the students enrolled in one of the teacher's
// subjects, each with their analytics report.
func (api *teacherApi) querySubjectStudents(ctx echo.Context) error {
	tchr, err := api.contextTeacher(ctx)
	if err != nil {
		return err
	}

	sub, err := api.subSvc.Get(ctx.Request().Context(), subject.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}
	if sub.AssignedTeacherID != tchr.ID {
		return errHttpForbidden
	}

	enrs, err := api.enrSync.Query(ctx.Request().Context(), &enrollment.QueryFilter{
		SubjectID: sub.ID,
		Status:    enrollment.StatusActive,
	})
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}

	students := make([]SubjectStudent, 0, len(enrs))
	for _, enr := range enrs {
		std, err := api.stdSvc.Get(ctx.Request().Context(), student.GetFilter{ID: enr.StudentID})
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				continue
			}
			return errors.Wrap(err, "finding enrolled student")
		}
		report, err := api.anlSvc.StudentReport(ctx.Request().Context(), std.ID)
		if err != nil {
			return errors.Wrap(err, "building student report")
		}
		students = append(students, SubjectStudent{Student: std, Analytics: report})
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *teacherApi) update(ctx echo.Context) error {
	tchr, err := api.svc.Get(ctx.Request().Context(), teacher.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}

	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(tchr); err != nil {
		return err
	}

	tchr, err = api.svc.Update(ctx.Request().Context(), tchr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, tchr)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// contextTeacher resolves the authenticated user's teacher profile.
func (api *teacherApi) contextTeacher(ctx echo.Context) (teacher.Teacher, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting context claims")
	}
	return api.svc.Get(ctx.Request().Context(), teacher.GetFilter{UserID: claims.Subject})
}
