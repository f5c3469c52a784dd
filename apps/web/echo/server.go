// Package echoweb is the server rendered dashboard: the admin pages editing courses and
// announcements, and the read-only summaries.
package echoweb

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/crud"
	"github.com/trezcool/masomo-dashboard/core/summary"
)

type (
	Options struct {
		Address        string
		AppName        string
		Build          string
		Debug          bool
		TestMode       bool
		DisableReqLogs bool
		SecureCookies  bool

		Courses       *course.Service
		Announcements *announcement.Service
		References    course.ReferenceRepository
		Summary       *summary.Service
		Auth          Authenticator
		Metrics       http.Handler // optional

		Validate   *validator.Validate
		Translator ut.Translator
		Logger     core.Logger
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

func NewServer(opts *Options) (Server, error) {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *server) setup() error {
	r, err := newRenderer()
	if err != nil {
		return errors.Wrap(err, "parsing templates")
	}

	s.app.HideBanner = true
	s.app.Renderer = r
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s)
	s.app.Debug = s.opts.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.loadSession)

	s.app.GET("/", home)
	s.app.GET("/healthz", s.health)
	if s.opts.Metrics != nil {
		s.app.GET("/metrics", echo.WrapHandler(s.opts.Metrics))
	}

	registerAuthPages(s)
	registerSummaryPages(s)
	registerCoursePages(s)
	registerAnnouncementPages(s)
	return nil
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

// deps returns the editor collaborators of one request.
func (s *server) deps(notifier core.Notifier, confirmer core.Confirmer) crud.Deps {
	return crud.Deps{
		Validate:   s.opts.Validate,
		Translator: s.opts.Translator,
		Notifier:   notifier,
		Confirmer:  confirmer,
		Logger:     s.opts.Logger,
	}
}

func home(ctx echo.Context) error {
	return ctx.Redirect(http.StatusSeeOther, "/admin")
}

func (s *server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "build": s.opts.Build})
}
