package core

import "context"

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user facing notification (toast, flash message or terminal line).
type Notice struct {
	Level   NoticeLevel  `json:"level"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type (
	// Notifier surfaces notices to the user.
	Notifier interface {
		Notify(n Notice)
	}

	// Confirmer asks the user to confirm a destructive action.
	Confirmer interface {
		Confirm(ctx context.Context, prompt string) (bool, error)
	}
)

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// ConfirmFunc adapts a function to a Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Confirmed is a Confirmer that always agrees. Used when the user pre-confirmed (eg. `--yes`).
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

func Success(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func Info(msg string) Notice    { return Notice{Level: NoticeInfo, Message: msg} }
func Failure(msg string) Notice { return Notice{Level: NoticeError, Message: msg} }
