package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core/planner"
)

type plannerApi struct {
	planner *planner.Planner
}

func registerPlannerAPI(g *echo.Group, p *planner.Planner) {
	api := plannerApi{planner: p}

	pg := g.Group("/planner")
	pg.GET("/selection", api.selection)
	pg.PUT("/selection", api.setSelection)
	pg.DELETE("/selection/edit", api.cancelEdit)
	pg.GET("/draft", api.draft)
	pg.GET("/status", api.status)
	pg.POST("/refresh", api.refresh)
}

// Handlers

func (api *plannerApi) selection(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.planner.Selection())
}

func (api *plannerApi) setSelection(ctx echo.Context) error {
	var data planner.Selection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to planner.Selection")
	}
	if err := api.planner.SetSelection(data); err != nil {
		return errors.Wrap(err, "setting selection")
	}
	return ctx.JSON(http.StatusOK, api.planner.Selection())
}

func (api *plannerApi) cancelEdit(ctx echo.Context) error {
	api.planner.CancelEdit()
	return ctx.JSON(http.StatusOK, api.planner.Selection())
}

// draft is the movement form pre-filled from the current selection.
func (api *plannerApi) draft(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.planner.Draft())
}

func (api *plannerApi) status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.planner.Status())
}

// refresh reloads every collection from storage. Failures are reported by status.
func (api *plannerApi) refresh(ctx echo.Context) error {
	_ = api.planner.Refresh(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, api.planner.Status())
}
