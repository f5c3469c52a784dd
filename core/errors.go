package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrLoginRequired is returned when an authenticated call is attempted without a usable token.
var ErrLoginRequired = errors.New("login required")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError means a draft was rejected before any request was made.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	return err.Err.Error()
}

// FieldMap returns the field errors keyed by field name.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		m[f.Field] = f.Error
	}
	return m
}

// RequestError means a call to the backend failed, either on the network or with a non 2xx status.
// StatusCode is 0 when no response was received.
type RequestError struct {
	Op         string // eg. "POST /courses"
	StatusCode int
	Message    string // backend provided message, if any
	Err        error
}

func (err *RequestError) Error() string {
	switch {
	case err.Err != nil:
		return fmt.Sprintf("%s: %v", err.Op, err.Err)
	case err.Message != "":
		return fmt.Sprintf("%s: %d %s: %s", err.Op, err.StatusCode, http.StatusText(err.StatusCode), err.Message)
	default:
		return fmt.Sprintf("%s: %d %s", err.Op, err.StatusCode, http.StatusText(err.StatusCode))
	}
}

func (err *RequestError) Unwrap() error { return err.Err }

// IsValidation reports whether err was caused by a ValidationError.
func IsValidation(err error) bool {
	_, ok := validationCause(err)
	return ok
}

// AsValidation returns the ValidationError err was caused by, if any.
func AsValidation(err error) (*ValidationError, bool) {
	return validationCause(err)
}

func validationCause(err error) (*ValidationError, bool) {
	switch e := errors.Cause(err).(type) {
	case *ValidationError:
		return e, true
	case ValidationError:
		return &e, true
	}
	return nil, false
}

// IsRequest reports whether err was caused by a failed backend call.
func IsRequest(err error) bool {
	_, ok := errors.Cause(err).(*RequestError)
	return ok
}

// IsLoginRequired reports whether err was caused by a missing or expired token.
func IsLoginRequired(err error) bool {
	return errors.Cause(err) == ErrLoginRequired
}
