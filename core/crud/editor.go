package crud

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

// ErrNotFound is returned when editing a record the Store does not hold.
var ErrNotFound = errors.New("record not found")

// Deps are the collaborators shared by every editor of an app.
type Deps struct {
	Validate   Validator
	Translator ut.Translator
	Notifier   core.Notifier
	Confirmer  core.Confirmer
	Logger     core.Logger
}

type Options[R Record, D Draft] struct {
	Noun     string // singular, eg. "course"
	Backend  Backend[R, D]
	ToDraft  func(R) D
	NewDraft func() D
	Deps
}

// Editor is the record editor of one page: the collection, its form and its dispatcher.
type Editor[R Record, D Draft] struct {
	Store      *Store[R]
	Form       *Form[R, D]
	Dispatcher *Dispatcher[R, D]
}

func NewEditor[R Record, D Draft](opts Options[R, D]) *Editor[R, D] {
	store := NewStore[R](opts.Noun+"s", opts.Backend, opts.Notifier, opts.Logger)
	return &Editor[R, D]{
		Store: store,
		Form:  NewForm(opts.ToDraft, opts.NewDraft),
		Dispatcher: NewDispatcher(
			opts.Noun, opts.Backend, store, opts.Validate, opts.Translator,
			opts.Notifier, opts.Confirmer, opts.Logger,
		),
	}
}

// Mount loads the collection.
func (e *Editor[R, D]) Mount(ctx context.Context) error {
	return e.Store.Load(ctx)
}

// New opens the form for a new record.
func (e *Editor[R, D]) New() D {
	e.Form.Open(nil)
	return e.Form.Draft()
}

// Edit opens the form on the loaded record with the given id.
func (e *Editor[R, D]) Edit(id string) (D, error) {
	record, ok := e.Store.Find(id)
	if !ok {
		var zero D
		return zero, errors.Wrapf(ErrNotFound, "editing %s", id)
	}
	e.Form.Open(&record)
	return e.Form.Draft(), nil
}

func (e *Editor[R, D]) Submit(ctx context.Context) (R, error) {
	return e.Dispatcher.Submit(ctx, e.Form)
}

func (e *Editor[R, D]) Remove(ctx context.Context, id string) error {
	return e.Dispatcher.Remove(ctx, id)
}

// Cancel discards the draft.
func (e *Editor[R, D]) Cancel() {
	e.Form.Close()
}
