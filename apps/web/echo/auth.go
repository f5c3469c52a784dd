package echoweb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/storage/restapi"
	"github.com/trezcool/masomo-dashboard/storage/session"
)

const (
	tokenCookie = "masomo_token"
	sessionKey  = "session"
)

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, creds restapi.Credentials) (string, error)
}

type loginForm struct {
	Username string `json:"username" form:"username" validate:"notblank"`
	Password string `json:"password" form:"password" validate:"notblank"`
	Next     string `json:"-" form:"next"`
}

type loginPage struct {
	Username string
	Next     string
}

func registerAuthPages(s *server) {
	s.app.GET("/login", s.loginPage)
	s.app.POST("/login", s.login)
	s.app.POST("/logout", s.logout)
}

// loadSession reads the token cookie. A usable token is attached to the request context, so
// that the API calls of the request are authenticated.
func (s *server) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(tokenCookie)
		if err != nil || cookie.Value == "" {
			return next(ctx)
		}

		sess, err := session.Parse(cookie.Value)
		if err != nil {
			s.clearCookie(ctx, tokenCookie)
			return next(ctx)
		}
		ctx.Set(sessionKey, &sess)
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(restapi.WithToken(req.Context(), sess.Token)))
		return next(ctx)
	}
}

func requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if contextSession(ctx) == nil {
			return core.ErrLoginRequired
		}
		return next(ctx)
	}
}

func contextSession(ctx echo.Context) *core.Session {
	sess, _ := ctx.Get(sessionKey).(*core.Session)
	return sess
}

// loginRedirect forgets the token and sends the user to the login page, back to the current
// page once logged in.
func (s *server) loginRedirect(ctx echo.Context, f *flashes) error {
	s.clearCookie(ctx, tokenCookie)
	next := ctx.Request().URL.Path
	if ctx.Request().Method != http.MethodGet {
		next = parentPath(next)
	}
	return s.redirect(ctx, f, "/login?next="+url.QueryEscape(next))
}

// parentPath maps a form action to the page showing the form, eg. /admin/courses/42/delete to /admin/courses.
func parentPath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "/" + strings.Join(parts, "/")
}

// safeNext only allows redirections within the dashboard.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/admin"
	}
	return next
}

func (s *server) loginPage(ctx echo.Context) error {
	if contextSession(ctx) != nil {
		return s.redirect(ctx, nil, safeNext(ctx.QueryParam("next")))
	}
	return s.render(ctx, http.StatusOK, "login.html", "Log in", nil, loginPage{Next: ctx.QueryParam("next")})
}

func (s *server) login(ctx echo.Context) error {
	f := new(flashes)
	var form loginForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding credentials")
	}
	data := loginPage{Username: core.CleanString(form.Username, true /* lower */), Next: form.Next}

	form.Username = data.Username
	if err := s.opts.Validate.Struct(form); err != nil {
		err = core.TranslateValidationErrors(err, s.opts.Translator)
		vErr, ok := core.AsValidation(err)
		if !ok {
			return err
		}
		f.Notify(core.Notice{Level: core.NoticeError, Message: vErr.Error(), Fields: vErr.Fields})
		return s.render(ctx, http.StatusBadRequest, "login.html", "Log in", f, data)
	}

	token, err := s.opts.Auth.Login(ctx.Request().Context(), restapi.Credentials{
		Username: form.Username,
		Password: form.Password,
	})
	if errors.Cause(err) == restapi.ErrInvalidCredentials {
		f.Notify(core.Failure("Invalid username or password."))
		return s.render(ctx, http.StatusUnauthorized, "login.html", "Log in", f, data)
	}
	if err != nil {
		return errors.Wrap(err, "logging in")
	}

	sess, err := session.Parse(token)
	if err != nil {
		return errors.Wrap(err, "reading token")
	}
	var maxAge int
	if !sess.ExpiresAt.IsZero() {
		maxAge = int(sess.ExpiresAt.Sub(session.NowFunc()).Seconds())
	}
	s.setCookie(ctx, tokenCookie, token, maxAge)

	f.Notify(core.Success(fmt.Sprintf("Welcome back, %s.", displayName(sess))))
	return s.redirect(ctx, f, safeNext(form.Next))
}

func (s *server) logout(ctx echo.Context) error {
	s.clearCookie(ctx, tokenCookie)
	f := new(flashes)
	f.Notify(core.Info("You have been logged out."))
	return s.redirect(ctx, f, "/login")
}

func displayName(sess core.Session) string {
	if sess.Username != "" {
		return sess.Username
	}
	return sess.Email
}
