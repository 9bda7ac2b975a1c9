package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core/department"
)

type departmentApi struct {
	svc department.Service
}

func registerDepartmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc department.Service) {
	api := departmentApi{svc: svc}

	dg := g.Group("/departments", jwt)
	dg.GET("", api.query)
	dg.POST("", api.create, adminMiddleware())
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update, adminMiddleware())
	dg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *departmentApi) create(ctx echo.Context) error {
	var data department.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	dept, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dept)
}

func (api *departmentApi) query(ctx echo.Context) error {
	filter := new(department.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []department.Department{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	depts, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if depts == nil {
		depts = []department.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *departmentApi) retrieve(ctx echo.Context) error {
	dept, err := api.svc.Get(ctx.Request().Context(), department.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *departmentApi) update(ctx echo.Context) error {
	dept, err := api.svc.Get(ctx.Request().Context(), department.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return err
	}

	var data department.UpdateDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDepartment")
	}
	if err := data.Validate(dept, api.svc); err != nil {
		return err
	}

	dept, err = api.svc.Update(ctx.Request().Context(), dept.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *departmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting department")
	}
	return ctx.NoContent(http.StatusNoContent)
}
