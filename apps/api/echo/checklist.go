package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sekolahku/core/checklist"
	"sekolahku/core/user"
)

type checklistApi struct {
	service checklist.Service
}

func registerChecklistAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc checklist.Service) {
	api := checklistApi{service: svc}

	cg := g.Group("/checklist", jwt)
	cg.GET("", api.checklistCatalog)
	cg.GET("/state", api.checklistState, roleMiddleware(user.RoleParent))
	cg.POST("/check", api.checklistCheck, roleMiddleware(user.RoleParent))
	cg.GET("/recap", api.checklistRecap, adminMiddleware())
}

func (api *checklistApi) checklistCatalog(ctx echo.Context) error {
	items, err := api.service.Catalog(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *checklistApi) checklistState(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	summary, err := api.service.Summary(ctx.Request().Context(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *checklistApi) checklistCheck(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(checklist.SetChecked)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	summary, err := api.service.Check(ctx.Request().Context(), p, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *checklistApi) checklistRecap(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	recap, err := api.service.Recap(ctx.Request().Context(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, recap)
}
