package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"sekolahku/core"
	"sekolahku/core/checklist"
	"sekolahku/core/grade"
	"sekolahku/core/student"
	"sekolahku/core/subject"
	"sekolahku/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		UserSvc      user.Service
		StudentSvc   student.Service
		SubjectSvc   subject.Service
		GradeSvc     grade.Service
		ChecklistSvc checklist.Service

		Logger core.Logger
		// Shutdown signals the app to start its graceful shutdown.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Shutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc)
	registerSubjectAPI(v1, jwt, s.opts.SubjectSvc)
	registerGradeAPI(v1, jwt, s.opts.GradeSvc)
	registerChecklistAPI(v1, jwt, s.opts.ChecklistSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to SekolahKu API!")
}
