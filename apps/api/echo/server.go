// Package echoapi serves the uniguide REST API.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/uniguide/apps/di"
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/editor"
	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/field"
	"github.com/trezcool/uniguide/core/framework"
	"github.com/trezcool/uniguide/core/institute"
	"github.com/trezcool/uniguide/core/news"
	"github.com/trezcool/uniguide/core/subject"
	"github.com/trezcool/uniguide/core/task"
	"github.com/trezcool/uniguide/core/user"
)

const appName = "uniguide"

type (
	ServerDeps struct {
		Conf      *core.Config
		Logger    core.Logger
		Container *di.Container
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwt      middleware.JWTConfig
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		jwt:      NewJWTConfig(deps.Conf),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !conf.Server.DisableRequestLogs {
		s.app.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${id} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Container.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	c := s.deps.Container
	api := s.app.Group("/api")
	api.GET("/health", health)

	jwt := middleware.JWTWithConfig(s.jwt)
	authed := []echo.MiddlewareFunc{jwt, actorMiddleware}

	registerAuthAPI(api, authed, s.jwt, conf, c.Users, c.Validate)
	registerPublicAPI(api, c.Events, c.Search)

	g := api.Group("", authed...)
	everyone := requireRoles(user.AllRoles...)
	admin := requireRoles(user.RoleAdmin)
	managers := requireRoles(user.RoleManager)
	writers := requireRoles(user.RoleManager, user.RoleEditor)

	registerResource(g, formResource[institute.Institute](c.Institutes, everyone, admin, func() form[institute.Institute] { return new(institute.Input) }))
	registerResource(g, formResource[subject.Subject](c.Subjects, everyone, managers, func() form[subject.Subject] { return new(subject.Input) }))
	registerResource(g, formResource[news.News](c.News, everyone, writers, func() form[news.News] { return new(news.Input) }))
	registerResource(g, formResource[event.Event](c.Events, everyone, managers, func() form[event.Event] { return new(event.Input) }))
	registerResource(g, formResource[task.Task](c.Tasks, everyone, managers, func() form[task.Task] { return new(task.Input) }))
	registerResource(g, formResource[field.MajorField](c.MajorFields, everyone, admin, func() form[field.MajorField] { return new(field.MajorInput) }))
	registerResource(g, formResource[field.SubField](c.SubFields, everyone, admin, func() form[field.SubField] { return new(field.SubInput) }))
	registerResource(g, formResource[framework.Framework](c.Frameworks, everyone, admin, func() form[framework.Framework] { return new(framework.Input) }))
	registerResource(g, resource[user.User]{
		svc:      c.Editors,
		read:     everyone,
		write:    admin,
		newInput: func() crud.Input[user.User] { return new(editor.Input) },
		newPatch: func() crud.Patch[user.User] { return new(editor.Patch) },
	})
}

// Start listens until the server is stopped; errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the application to shut down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+appName+" API!")
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, core.Envelope[any]{Success: true, Message: "ok"})
}

