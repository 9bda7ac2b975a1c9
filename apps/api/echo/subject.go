package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/subject"
)

type subjectApi struct {
	svc     subject.Service
	enrSync enrollment.Synchronizer
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc subject.Service, enrSync enrollment.Synchronizer) {
	api := subjectApi{svc: svc, enrSync: enrSync}

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, adminMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, adminMiddleware())
	sg.PUT("/:id/assign-teacher", api.assignTeacher, adminMiddleware())
	sg.GET("/:id/enrollment-count", api.enrollmentCount)
	sg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subjectApi) query(ctx echo.Context) error {
	filter := new(subject.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []subject.Subject{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	subs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subs == nil {
		subs = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	sub, err := api.svc.Get(ctx.Request().Context(), subject.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) update(ctx echo.Context) error {
	sub, err := api.svc.Get(ctx.Request().Context(), subject.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}

	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(sub, api.svc); err != nil {
		return err
	}

	sub, err = api.svc.Update(ctx.Request().Context(), sub.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) assignTeacher(ctx echo.Context) error {
	var data AssignTeacherRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignTeacherRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.AssignTeacher(ctx.Request().Context(), ctx.Param("id"), data.TeacherID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) enrollmentCount(ctx echo.Context) error {
	sub, err := api.svc.Get(ctx.Request().Context(), subject.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}
	count, err := api.enrSync.CountBySubject(ctx.Request().Context(), sub.ID)
	if err != nil {
		return errors.Wrap(err, "counting enrollments")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	// AssignTeacherRequest moves a subject to a teacher; an empty teacher ID
	// unassigns it.
	AssignTeacherRequest struct {
		TeacherID string `json:"teacher_id" validate:"omitempty,uuid4"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}
)

func (ar *AssignTeacherRequest) Validate() error {
	return core.Validate.Struct(ar)
}
