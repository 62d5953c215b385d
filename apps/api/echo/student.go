package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sekolahku/core/student"
)

type studentApi struct {
	service student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc student.Service) {
	api := studentApi{service: svc}

	sg := g.Group("/students", jwt)
	sg.GET("", api.studentQuery)
	sg.POST("", api.studentCreate, staffMiddleware())
	sg.DELETE("", api.studentDestroyMultiple, staffMiddleware())
	sg.GET("/:id", api.studentRetrieve)
	sg.PUT("/:id", api.studentUpdate, staffMiddleware())
	sg.DELETE("/:id", api.studentDestroy, staffMiddleware())

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.attendanceQuery)
	ag.PUT("", api.attendanceUpsert, staffMiddleware())
}

func (api *studentApi) studentQuery(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}

	students, err := api.service.Query(ctx.Request().Context(), p, *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) studentCreate(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(student.NewStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.service); err != nil {
		return err
	}

	std, err := api.service.Create(ctx.Request().Context(), p, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) studentRetrieve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	std, err := api.service.GetByID(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) studentUpdate(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(student.UpdateStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	orig, err := api.service.GetByID(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := data.Validate(orig, api.service); err != nil {
		return err
	}

	std, err := api.service.Update(ctx.Request().Context(), p, orig.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) studentDestroy(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	if err := api.service.Delete(ctx.Request().Context(), p, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) studentDestroyMultiple(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(DestroyMultipleRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if data.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.service.Delete(ctx.Request().Context(), p, data.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) attendanceQuery(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	tallies, err := api.service.QueryAttendance(ctx.Request().Context(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tallies)
}

func (api *studentApi) attendanceUpsert(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(student.UpsertAttendance)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	tally, replaced, err := api.service.SaveAttendance(ctx.Request().Context(), p, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(upsertStatus(replaced), tally)
}
