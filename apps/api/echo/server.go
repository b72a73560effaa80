package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/bus"
	"github.com/campusmove/movplan/core/class"
	"github.com/campusmove/movplan/core/lecturer"
	"github.com/campusmove/movplan/core/planner"
	"github.com/campusmove/movplan/core/room"
)

type (
	Deps struct {
		Conf           *core.Config
		Logger         core.Logger
		Translator     ut.Translator
		Planner        *planner.Planner
		Services       planner.Services
		DisableReqLogs bool
	}

	Server struct {
		deps     *Deps
		app      *echo.Echo
		hub      *eventHub
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps *Deps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		hub:      newEventHub(deps.Logger),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	p := s.deps.Planner

	registerEntityAPI(v1.Group("/classes"), p.Classes, class.ErrNotFound)
	registerEntityAPI(v1.Group("/buses"), p.Buses, bus.ErrNotFound)
	registerEntityAPI(v1.Group("/lecturers"), p.Lecturers, lecturer.ErrNotFound)
	registerEntityAPI(v1.Group("/rooms"), p.Rooms, room.ErrNotFound)
	registerMovementAPI(v1, p, s.deps.Services.Movements, s.deps.Logger)
	registerPlannerAPI(v1, p)
	registerEventsAPI(v1, s.hub)

	s.hub.subscribe(p)
}

// Start serves until Shutdown or Close is called. Listener errors are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives SIGINT, SIGTERM and the shutdown requested by a fatal handler error.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	s.hub.close()
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
