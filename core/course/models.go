package course

import (
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/crud"
)

// Semesters
const (
	SemesterFirst  = "first"
	SemesterSecond = "second"
)

var Semesters = []string{SemesterFirst, SemesterSecond}

type Course struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Code        string      `json:"code"`
	CreditUnits int         `json:"creditUnits"`
	Description null.String `json:"description"`
	Lecturer    core.Ref    `json:"lecturer"`
	Department  core.Ref    `json:"department"`
	Level       core.Ref    `json:"level"`
	Semester    string      `json:"semester,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (c Course) RecordID() string { return c.ID }

type Lecturer struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Department core.Ref `json:"department"`
}

func (l Lecturer) RecordID() string { return l.ID }

type Department struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func (d Department) RecordID() string { return d.ID }

// Draft is the editable form of a Course. Every reference holds an identifier.
type Draft struct {
	Title       string `json:"title" yaml:"title" form:"title" validate:"notblank"`
	Code        string `json:"code" yaml:"code" form:"code" validate:"notblank"`
	CreditUnits string `json:"creditUnits" yaml:"creditUnits" form:"creditUnits" validate:"required,number,creditunits"`
	Description string `json:"description" yaml:"description" form:"description"`
	Lecturer    string `json:"lecturer" yaml:"lecturer" form:"lecturer" validate:"required"`
	Department  string `json:"department" yaml:"department" form:"department" validate:"required"`
	Level       string `json:"level" yaml:"level" form:"level" validate:"required,courselevel"`
	Semester    string `json:"semester" yaml:"semester" form:"semester" validate:"omitempty,oneof=first second"`
}

var _ crud.Draft = (*Draft)(nil)

func (d *Draft) Validate(v crud.Validator) error {
	d.Title = core.CleanString(d.Title)
	d.Code = core.CleanString(d.Code)
	d.CreditUnits = core.CleanString(d.CreditUnits)
	d.Description = core.CleanString(d.Description)
	d.Lecturer = core.CleanString(d.Lecturer)
	d.Department = core.CleanString(d.Department)
	d.Level = core.CleanString(d.Level)
	d.Semester = core.CleanString(d.Semester, true /* lower */)
	return v.Struct(d)
}

// Payload is what the backend expects on create and update.
type Payload struct {
	Title       string      `json:"title"`
	Code        string      `json:"code"`
	CreditUnits int         `json:"creditUnits"`
	Description null.String `json:"description"`
	Lecturer    string      `json:"lecturer"`
	Department  string      `json:"department"`
	Level       string      `json:"level"`
	Semester    null.String `json:"semester"`
}

// Payload converts a validated draft.
func (d Draft) Payload() (Payload, error) {
	units, err := parseCreditUnits(d.CreditUnits)
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		Title:       d.Title,
		Code:        d.Code,
		CreditUnits: units,
		Description: null.NewString(d.Description, d.Description != ""),
		Lecturer:    d.Lecturer,
		Department:  d.Department,
		Level:       d.Level,
		Semester:    null.NewString(d.Semester, d.Semester != ""),
	}, nil
}

// ToDraft maps a course to its draft, normalising every reference to its identifier.
func ToDraft(c Course) *Draft {
	return &Draft{
		Title:       c.Title,
		Code:        c.Code,
		CreditUnits: strconv.Itoa(c.CreditUnits),
		Description: c.Description.String,
		Lecturer:    c.Lecturer.ID(),
		Department:  c.Department.ID(),
		Level:       c.Level.ID(),
		Semester:    c.Semester,
	}
}

func NewDraft() *Draft {
	return new(Draft)
}

// QueryFilter narrows a course list. Empty fields match everything.
type QueryFilter struct {
	Level      string `query:"level"`
	Department string `query:"department"`
	Search     string `query:"search"`
}

// FormOptions are the selectable values of the course form.
type FormOptions struct {
	Lecturers   []Lecturer
	Departments []Department
	Levels      []string
	Semesters   []string
}

// Names returns the display name of every lecturer and department, keyed by id.
func (o FormOptions) Names() map[string]string {
	names := make(map[string]string, len(o.Lecturers)+len(o.Departments))
	for _, l := range o.Lecturers {
		names[l.ID] = l.Name
	}
	for _, d := range o.Departments {
		names[d.ID] = d.Name
	}
	return names
}
