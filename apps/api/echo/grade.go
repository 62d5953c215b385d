package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sekolahku/core/grade"
)

type gradeApi struct {
	service grade.Service
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc grade.Service) {
	api := gradeApi{service: svc}

	gg := g.Group("/grades", jwt)
	gg.GET("/midfinal", api.midFinalQuery)
	gg.PUT("/midfinal", api.midFinalUpsert, staffMiddleware())
	gg.GET("/daily", api.dailyQuery)
	gg.PUT("/daily", api.dailyUpsert, staffMiddleware())
	gg.GET("/categories", api.categoryQuery)
	gg.PUT("/categories/:id", api.categoryToggle, staffMiddleware())
	gg.GET("/summary", api.summaryQuery)
	gg.GET("/reports", api.reportQuery)
}

func (api *gradeApi) midFinalQuery(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	grades, err := api.service.QueryMidFinals(ctx.Request().Context(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) midFinalUpsert(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(grade.UpsertMidFinalGrade)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	saved, replaced, err := api.service.SaveMidFinal(ctx.Request().Context(), p, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(upsertStatus(replaced), saved)
}

func (api *gradeApi) dailyQuery(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	grades, err := api.service.QueryDailies(ctx.Request().Context(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) dailyUpsert(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(grade.UpsertDailyGrade)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	saved, replaced, err := api.service.SaveDaily(ctx.Request().Context(), p, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(upsertStatus(replaced), saved)
}

// upsertStatus distinguishes a fresh insert from a replaced row: 201 on
// create, 200 when an existing row for the same key was recovered.
func upsertStatus(replaced bool) int {
	if replaced {
		return http.StatusOK
	}
	return http.StatusCreated
}

func (api *gradeApi) categoryQuery(ctx echo.Context) error {
	categories, err := api.service.Categories(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, categories)
}

func (api *gradeApi) categoryToggle(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := new(CategoryToggleRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	cat, err := api.service.ToggleCategory(ctx.Request().Context(), p, ctx.Param("id"), data.Active)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *gradeApi) summaryQuery(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	summaries, err := api.service.Summaries(ctx.Request().Context(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *gradeApi) reportQuery(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	reports, err := api.service.Reports(ctx.Request().Context(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reports)
}

type CategoryToggleRequest struct {
	Active bool `json:"active"`
}
