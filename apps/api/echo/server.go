package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/analytics"
	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/department"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/marks"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	"github.com/academia-hub/academia/core/teacher"
	"github.com/academia-hub/academia/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger  core.Logger
		UserSvc user.Service
		DeptSvc department.Service
		SubSvc  subject.Service
		TchrSvc teacher.Service
		StdSvc  student.Service
		EnrSync enrollment.Synchronizer
		AttSvc  attendance.Service
		MrkSvc  marks.Service
		AnlSvc  analytics.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	appJWTConfig.SigningKey = core.Conf.SecretKey

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerDepartmentAPI(v1, jwt, s.opts.DeptSvc)
	registerSubjectAPI(v1, jwt, s.opts.SubSvc, s.opts.EnrSync)
	registerTeacherAPI(v1, jwt, s.opts.TchrSvc, s.opts.SubSvc, s.opts.StdSvc, s.opts.AnlSvc, s.opts.EnrSync)
	registerStudentAPI(v1, jwt, s.opts.StdSvc, s.opts.EnrSync)
	registerEnrollmentAPI(v1, jwt, s.opts.EnrSync)
	registerAttendanceAPI(v1, jwt, s.opts.AttSvc, s.opts.TchrSvc, s.opts.StdSvc)
	registerMarksAPI(v1, jwt, s.opts.MrkSvc, s.opts.TchrSvc, s.opts.StdSvc)
	registerAnalyticsAPI(v1, jwt, s.opts.AnlSvc, s.opts.StdSvc, s.opts.DeptSvc)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.errors <- s.app.Start(s.opts.Address)
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// signalShutdown initiates a graceful shutdown from within a request handler.
func (s *server) signalShutdown() { s.shutdown <- syscall.SIGTERM }

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Academia API!")
}
