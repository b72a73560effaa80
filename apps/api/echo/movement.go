package echoapi

import (
	"bytes"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/export"
	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/planner"
)

type (
	// MovementResponse is returned by the create and update endpoints.
	// Warning is set when the movement overbooks its day.
	MovementResponse struct {
		Movement movement.Movement `json:"movement"`
		Warning  string            `json:"warning,omitempty"`
		Message  string            `json:"message"`
	}

	MailExportRequest struct {
		To     []string `json:"to"`
		Format string   `json:"format"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func (r MailExportRequest) addresses() ([]mail.Address, error) {
	addrs := make([]mail.Address, 0, len(r.To))
	for _, to := range r.To {
		addr, err := mail.ParseAddress(to)
		if err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "to", Error: "invalid email address: " + to})
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}

type movementApi struct {
	planner *planner.Planner
	svc     *movement.Service
	logger  core.Logger
}

func registerMovementAPI(g *echo.Group, p *planner.Planner, svc *movement.Service, logger core.Logger) {
	api := movementApi{
		planner: p,
		svc:     svc,
		logger:  logger,
	}

	mg := g.Group("/movements")
	mg.GET("", api.query)
	mg.POST("", api.create)
	mg.GET("/export", api.export)
	mg.POST("/export/mail", api.mailExport)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)

	cg := g.Group("/capacity")
	cg.GET("/week", api.week)
	cg.GET("/check", api.check)
}

// Handlers

// query lists every movement, newest first. ?day= reads the movements of one day from storage.
func (api *movementApi) query(ctx echo.Context) error {
	day := ctx.QueryParam("day")
	if day == "" {
		return ctx.JSON(http.StatusOK, api.planner.Movements.Items())
	}
	if !movement.IsDay(day) {
		return core.NewValidationError(nil, core.FieldError{Field: "day", Error: "day must be a weekday, Monday to Friday"})
	}

	movements, err := api.svc.ListByDay(ctx.Request().Context(), day)
	if err != nil {
		return errors.Wrap(err, "querying movements by day")
	}
	return ctx.JSON(http.StatusOK, movements)
}

func (api *movementApi) retrieve(ctx echo.Context) error {
	m, ok := api.planner.Movements.Get(ctx.Param("id"))
	if !ok {
		return movement.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *movementApi) create(ctx echo.Context) error {
	return api.submit(ctx, "", http.StatusCreated)
}

func (api *movementApi) update(ctx echo.Context) error {
	return api.submit(ctx, ctx.Param("id"), http.StatusOK)
}

func (api *movementApi) submit(ctx echo.Context, id string, code int) error {
	var data movement.Form
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to movement.Form")
	}

	res, err := api.planner.Submit(ctx.Request().Context(), id, data)
	if err != nil {
		return failed(api.logger, res.Toast.Message, err)
	}
	return ctx.JSON(code, MovementResponse{
		Movement: res.Movement,
		Warning:  res.Warning,
		Message:  res.Toast.Message,
	})
}

func (api *movementApi) destroy(ctx echo.Context) error {
	toast, err := api.planner.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return failed(api.logger, toast.Message, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *movementApi) export(ctx echo.Context) error {
	format, err := export.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "format", Error: err.Error()})
	}

	buf := new(bytes.Buffer)
	if toast, err := api.planner.Export(buf, format); err != nil {
		return failed(api.logger, toast.Message, err)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+api.planner.ExportFilename(format)+`"`)
	return ctx.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (api *movementApi) mailExport(ctx echo.Context) error {
	var data MailExportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MailExportRequest")
	}
	format, err := export.ParseFormat(data.Format)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "format", Error: err.Error()})
	}
	to, err := data.addresses()
	if err != nil {
		return err
	}

	toast, err := api.planner.MailExport(to, format)
	if err != nil {
		if errors.Cause(err) == planner.ErrNoMailService {
			return echo.NewHTTPError(http.StatusServiceUnavailable, toast.Message).SetInternal(err)
		}
		return failed(api.logger, toast.Message, err)
	}
	return ctx.JSON(http.StatusAccepted, MessageResponse{Message: toast.Message})
}

func (api *movementApi) week(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.planner.WeeklySummary())
}

// check runs the capacity check for ?day=&class_size= without saving anything.
// ?exclude= names the movement being edited.
func (api *movementApi) check(ctx echo.Context) error {
	day := ctx.QueryParam("day")
	if !movement.IsDay(day) {
		return core.NewValidationError(nil, core.FieldError{Field: "day", Error: "day must be a weekday, Monday to Friday"})
	}
	size, err := strconv.Atoi(ctx.QueryParam("class_size"))
	if err != nil || size <= 0 {
		return core.NewValidationError(err, core.FieldError{Field: "class_size", Error: "class_size must be a positive number"})
	}

	return ctx.JSON(http.StatusOK, api.planner.CheckCapacity(day, size, ctx.QueryParam("exclude")))
}
