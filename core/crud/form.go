package crud

import "sync"

// Draft is the editable mirror of a record. Validate cleans the draft and checks it.
type Draft interface {
	Validate(v Validator) error
}

// Validator is satisfied by *validator.Validate.
type Validator interface {
	Struct(s interface{}) error
}

// Form holds the draft of one record being created or edited.
// D is expected to be a pointer type so the draft can be edited in place.
type Form[R Record, D Draft] struct {
	toDraft  func(R) D // must normalise references to their ids
	newDraft func() D

	mu         sync.Mutex
	draft      D
	editingID  string
	open       bool
	submitting bool
}

func NewForm[R Record, D Draft](toDraft func(R) D, newDraft func() D) *Form[R, D] {
	return &Form[R, D]{
		toDraft:  toDraft,
		newDraft: newDraft,
		draft:    newDraft(),
	}
}

// Open starts editing record, or a new record when record is nil.
func (f *Form[R, D]) Open(record *R) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if record == nil {
		f.draft = f.newDraft()
		f.editingID = ""
	} else {
		f.draft = f.toDraft(*record)
		f.editingID = (*record).RecordID()
	}
	f.open = true
}

// Close discards the draft unconditionally.
func (f *Form[R, D]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft = f.newDraft()
	f.editingID = ""
	f.open = false
}

// Draft returns the current draft for in place editing.
func (f *Form[R, D]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// SetDraft replaces the draft, keeping the editing id.
func (f *Form[R, D]) SetDraft(d D) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = d
}

// EditingID returns the id of the record being edited; ok is false when creating.
func (f *Form[R, D]) EditingID() (id string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editingID, f.editingID != ""
}

func (f *Form[R, D]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Submitting reports whether a submission is in flight.
func (f *Form[R, D]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// beginSubmit moves the form from idle to submitting. It returns false if it already was.
func (f *Form[R, D]) beginSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return false
	}
	f.submitting = true
	return true
}

func (f *Form[R, D]) endSubmit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
}
