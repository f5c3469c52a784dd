package echoweb

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

var (
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

	msgUnavailable = "The school API could not be reached. Please try again later."
)

type errorPage struct {
	Code    int
	Message string
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// A missing or rejected token sends the user to the login page.
func newAppHTTPErrorHandler(s *server) echo.HTTPErrorHandler {
	logger := s.opts.Logger

	return func(err error, ctx echo.Context) {
		if core.IsLoginRequired(err) {
			if rErr := s.loginRedirect(ctx, nil); rErr != nil {
				ctx.Echo().Logger.Error(rErr)
			}
			return
		}

		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		case *core.RequestError:
			code = http.StatusBadGateway
			message = msgUnavailable
			logger.Warn(message, logArgs(ctx, err)...)
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)
			logger.Error(message, logArgs(ctx, errors.Wrap(err, message))...)
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = s.render(ctx, code, "error.html", http.StatusText(code), nil, errorPage{Code: code, Message: message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// logArgs appends the session of the logged in user, if any, to args.
func logArgs(ctx echo.Context, args ...interface{}) []interface{} {
	if sess := contextSession(ctx); sess != nil {
		args = append(args, *sess)
	}
	return args
}

// failureStatus maps the error of a failed submission to the status of the re-rendered form.
// ok is false for errors the form cannot show.
func failureStatus(err error) (code int, ok bool) {
	switch {
	case core.IsValidation(err):
		return http.StatusBadRequest, true
	case core.IsRequest(err):
		return http.StatusBadGateway, true
	}
	return 0, false
}
