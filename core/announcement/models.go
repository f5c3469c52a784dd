package announcement

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/crud"
)

// Audiences
const (
	AudienceAll       = "all"
	AudienceStudents  = "students"
	AudienceLecturers = "lecturers"
)

var Audiences = []string{AudienceAll, AudienceStudents, AudienceLecturers}

// DateLayout is the layout of Draft.ExpiresAt.
const DateLayout = "2006-01-02"

type Announcement struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Audience   string    `json:"audience"`
	Department core.Ref  `json:"department"`
	Author     core.Ref  `json:"author"`
	ExpiresAt  null.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (a Announcement) RecordID() string { return a.ID }

// Expired reports whether the announcement expired at now.
func (a Announcement) Expired(now time.Time) bool {
	return a.ExpiresAt.Valid && !a.ExpiresAt.Time.After(now)
}

// VisibleTo reports whether audience (students or lecturers) may see the announcement.
func (a Announcement) VisibleTo(audience string) bool {
	return a.Audience == AudienceAll || a.Audience == "" || a.Audience == audience
}

// Draft is the editable form of an Announcement. The author is set by the backend.
type Draft struct {
	Title      string `json:"title" yaml:"title" form:"title" validate:"notblank"`
	Content    string `json:"content" yaml:"content" form:"content" validate:"notblank"`
	Audience   string `json:"audience" yaml:"audience" form:"audience" validate:"required,oneof=all students lecturers"`
	Department string `json:"department" yaml:"department" form:"department"`
	ExpiresAt  string `json:"expiresAt" yaml:"expiresAt" form:"expiresAt" validate:"omitempty,datetime=2006-01-02"`
}

var _ crud.Draft = (*Draft)(nil)

func (d *Draft) Validate(v crud.Validator) error {
	d.Title = core.CleanString(d.Title)
	d.Content = core.CleanString(d.Content)
	d.Audience = core.CleanString(d.Audience, true /* lower */)
	d.Department = core.CleanString(d.Department)
	d.ExpiresAt = core.CleanString(d.ExpiresAt)
	return v.Struct(d)
}

// Payload is what the backend expects on create and update.
type Payload struct {
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Audience   string      `json:"audience"`
	Department null.String `json:"department"`
	ExpiresAt  null.Time   `json:"expiresAt"`
}

// Payload converts a validated draft. ExpiresAt is the end of the chosen day, UTC.
func (d Draft) Payload() Payload {
	p := Payload{
		Title:      d.Title,
		Content:    d.Content,
		Audience:   d.Audience,
		Department: null.NewString(d.Department, d.Department != ""),
	}
	if day, err := time.Parse(DateLayout, d.ExpiresAt); err == nil {
		p.ExpiresAt = null.TimeFrom(day.Add(24*time.Hour - time.Second))
	}
	return p
}

// ToDraft maps an announcement to its draft, normalising every reference to its identifier.
func ToDraft(a Announcement) *Draft {
	d := &Draft{
		Title:      a.Title,
		Content:    a.Content,
		Audience:   a.Audience,
		Department: a.Department.ID(),
	}
	if a.ExpiresAt.Valid {
		d.ExpiresAt = a.ExpiresAt.Time.UTC().Format(DateLayout)
	}
	return d
}

// NewDraft returns an empty draft addressed to everyone.
func NewDraft() *Draft {
	return &Draft{Audience: AudienceAll}
}
