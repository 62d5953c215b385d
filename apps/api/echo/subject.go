package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sekolahku/core/subject"
)

type subjectApi struct {
	service subject.Service
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc subject.Service) {
	api := subjectApi{service: svc}

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.subjectQuery)
	sg.POST("", api.subjectCreate, staffMiddleware())
	sg.DELETE("", api.subjectDestroyMultiple, staffMiddleware())
	sg.GET("/:id", api.subjectRetrieve)
	sg.PUT("/:id", api.subjectUpdate, staffMiddleware())
	sg.DELETE("/:id", api.subjectDestroy, staffMiddleware())
}

func (api *subjectApi) subjectQuery(ctx echo.Context) error {
	subjects, err := api.service.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) subjectCreate(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(subject.NewSubject)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.service); err != nil {
		return err
	}

	sub, err := api.service.Create(ctx.Request().Context(), p, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subjectApi) subjectRetrieve(ctx echo.Context) error {
	sub, err := api.service.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) subjectUpdate(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(subject.UpdateSubject)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	orig, err := api.service.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := data.Validate(orig, api.service); err != nil {
		return err
	}

	sub, err := api.service.Update(ctx.Request().Context(), p, orig.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) subjectDestroy(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	if err := api.service.Delete(ctx.Request().Context(), p, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *subjectApi) subjectDestroyMultiple(ctx echo.Context) error {
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
