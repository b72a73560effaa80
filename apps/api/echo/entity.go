package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core/state"
)

// entityApi serves the CRUD endpoints of a cached collection.
// Reads are answered from the cache, writes go through it so that subscribers see them.
type entityApi[T any, F any] struct {
	store    *state.Store[T, F]
	notFound error
}

func registerEntityAPI[T any, F any](g *echo.Group, store *state.Store[T, F], notFound error) {
	api := entityApi[T, F]{store: store, notFound: notFound}

	g.GET("", api.query)
	g.POST("", api.create)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
}

// Handlers

func (api entityApi[T, F]) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Items())
}

func (api entityApi[T, F]) create(ctx echo.Context) error {
	var data F
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to "+api.store.Name()+" form")
	}

	item, err := api.store.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api entityApi[T, F]) retrieve(ctx echo.Context) error {
	item, ok := api.store.Get(ctx.Param("id"))
	if !ok {
		return api.notFound
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api entityApi[T, F]) update(ctx echo.Context) error {
	var data F
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to "+api.store.Name()+" form")
	}

	item, err := api.store.Edit(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api entityApi[T, F]) destroy(ctx echo.Context) error {
	if err := api.store.Remove(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting")
	}
	return ctx.NoContent(http.StatusNoContent)
}
