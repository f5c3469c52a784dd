package core

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

var errInvalidRef = errors.New("reference must be a string, an object or null")

// Ref is a foreign key as returned by the backend: either a bare identifier or a populated
// object carrying the identifier and a display name.
// The zero Ref references nothing.
type Ref struct {
	id       string
	name     string
	expanded bool
}

// NewRef returns a Ref holding a bare identifier.
func NewRef(id string) Ref {
	return Ref{id: id}
}

// ExpandedRef returns a populated Ref.
func ExpandedRef(id, name string) Ref {
	return Ref{id: id, name: name, expanded: true}
}

// ID returns the raw identifier, whichever representation was received.
func (r Ref) ID() string { return r.id }

// Name returns the display name of a populated Ref, or its identifier otherwise.
func (r Ref) Name() string {
	if r.name != "" {
		return r.name
	}
	return r.id
}

func (r Ref) IsExpanded() bool { return r.expanded }
func (r Ref) IsZero() bool     { return r.id == "" }

// Resolve returns the display name of r, looking bare identifiers up in names.
func (r Ref) Resolve(names map[string]string) string {
	if r.expanded && r.name != "" {
		return r.name
	}
	if name, ok := names[r.id]; ok {
		return name
	}
	return r.id
}

// populated is the shape of an expanded reference. Backends disagree on key names.
type populated struct {
	MongoID  string `json:"_id"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Title    string `json:"title"`
	Code     string `json:"code"`
}

func (p populated) ref() Ref {
	id := p.MongoID
	if id == "" {
		id = p.ID
	}
	name := p.Name
	for _, alt := range []string{p.FullName, p.Title, p.Code} {
		if name != "" {
			break
		}
		name = alt
	}
	return ExpandedRef(id, name)
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = Ref{}
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return errors.Wrap(err, "decoding reference id")
		}
		*r = NewRef(id)
	case data[0] == '{':
		var p populated
		if err := json.Unmarshal(data, &p); err != nil {
			return errors.Wrap(err, "decoding populated reference")
		}
		*r = p.ref()
	default:
		return errInvalidRef
	}
	return nil
}

// MarshalJSON always writes the bare identifier, or null for the zero Ref.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}
