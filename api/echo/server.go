package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/assessment"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/report"
	"github.com/trezcool/alama/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger
		// Shutdown is called when an unrecoverable error is caught.
		Shutdown func()

		UserSvc       *user.Service
		CourseSvc     *course.Service
		AssessmentSvc *assessment.Service
		ReportSvc     *report.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Shutdown == nil {
		opts.Shutdown = func() {}
	}
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

	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(s.app.Group("/auth"), jwt, s.opts.UserSvc)
	registerTeacherAPI(s.app.Group("/teachers", jwt, teacherMiddleware()), s.opts.CourseSvc, s.opts.ReportSvc, s.opts.UserSvc)
	registerStudentAPI(s.app.Group("/students", jwt, studentMiddleware()), s.opts.ReportSvc)
	registerAssessmentAPI(s.app.Group("/assessments", jwt, teacherMiddleware()), s.opts.AssessmentSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
