package core

import "time"

// Logger is implemented by the logging service.
// args may contain errors, map[string]interface{} extras and at most one Session identifying the user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Session identifies the person using the dashboard, as far as the bearer token tells.
type Session struct {
	UserID   string
	Username string
	Email    string
	Token    string

	ExpiresAt time.Time // zero when the token never expires
}
