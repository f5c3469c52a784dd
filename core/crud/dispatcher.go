package crud

import (
	"context"
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

var (
	// ErrSubmitInProgress is returned when a form is submitted while a previous submission is in flight.
	ErrSubmitInProgress = errors.New("a submission is already in progress")

	// ErrNotConfirmed is returned when the user declined a deletion.
	ErrNotConfirmed = errors.New("deletion not confirmed")

	errFormClosed = errors.New("form is not open")
)

// Dispatcher sends the mutations of one collection to its backend and refreshes the Store
// after every successful one.
type Dispatcher[R Record, D Draft] struct {
	noun       string // singular, eg. "course"
	backend    Backend[R, D]
	store      *Store[R]
	validate   Validator
	translator ut.Translator
	notifier   core.Notifier
	confirmer  core.Confirmer
	logger     core.Logger
}

func NewDispatcher[R Record, D Draft](
	noun string,
	backend Backend[R, D],
	store *Store[R],
	validate Validator,
	translator ut.Translator,
	notifier core.Notifier,
	confirmer core.Confirmer,
	logger core.Logger,
) *Dispatcher[R, D] {
	return &Dispatcher[R, D]{
		noun:       noun,
		backend:    backend,
		store:      store,
		validate:   validate,
		translator: translator,
		notifier:   notifier,
		confirmer:  confirmer,
		logger:     logger,
	}
}

// Submit validates the form draft, then creates or updates the record depending on whether the
// form is editing one. On success the Store is reloaded once and the form closed; on failure the
// draft is left untouched for a retry.
func (d *Dispatcher[R, D]) Submit(ctx context.Context, form *Form[R, D]) (R, error) {
	var zero R

	if !form.IsOpen() {
		return zero, errFormClosed
	}
	if !form.beginSubmit() {
		return zero, ErrSubmitInProgress
	}
	defer form.endSubmit()

	draft := form.Draft()
	if err := draft.Validate(d.validate); err != nil {
		err = core.TranslateValidationErrors(err, d.translator)
		if vErr, ok := core.AsValidation(err); ok {
			d.notifier.Notify(core.Notice{Level: core.NoticeError, Message: vErr.Error(), Fields: vErr.Fields})
		}
		return zero, err
	}

	var (
		record R
		err    error
		action string
	)
	if id, editing := form.EditingID(); editing {
		action = "update"
		record, err = d.backend.Update(ctx, id, draft)
	} else {
		action = "create"
		record, err = d.backend.Create(ctx, draft)
	}
	if err != nil {
		d.fail(action, err)
		return zero, errors.Wrapf(err, "%sing %s", strings.TrimSuffix(action, "e"), d.noun)
	}

	d.reload(ctx)
	form.Close()
	d.notifier.Notify(core.Success(fmt.Sprintf("%s %sd.", capitalize(d.noun), action)))
	return record, nil
}

// Remove deletes the record with the given id once the user confirmed it.
func (d *Dispatcher[R, D]) Remove(ctx context.Context, id string) error {
	ok, err := d.confirmer.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete this %s?", d.noun))
	if err != nil {
		return errors.Wrap(err, "confirming deletion")
	}
	if !ok {
		return ErrNotConfirmed
	}

	if err := d.backend.Delete(ctx, id); err != nil {
		d.fail("delete", err)
		return errors.Wrapf(err, "deleting %s", d.noun)
	}

	d.reload(ctx)
	d.notifier.Notify(core.Success(fmt.Sprintf("%s deleted.", capitalize(d.noun))))
	return nil
}

// reload refreshes the Store. A failed reload is already surfaced by the Store and does not undo
// the mutation.
func (d *Dispatcher[R, D]) reload(ctx context.Context) {
	_ = d.store.Load(ctx)
}

func (d *Dispatcher[R, D]) fail(action string, err error) {
	if core.IsLoginRequired(err) {
		d.notifier.Notify(core.Failure("Your session has expired. Please log in again."))
		return
	}
	d.logger.Error(fmt.Sprintf("%s %s", action, d.noun), err)
	d.notifier.Notify(core.Failure(fmt.Sprintf("Failed to %s %s.", action, d.noun)))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
