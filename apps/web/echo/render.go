package echoweb

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-dashboard/core"
)

const layoutTemplate = "layout.html"

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"nullDate": func(t null.Time) string {
		if !t.Valid {
			return "never"
		}
		return t.Time.UTC().Format("02 Jan 2006")
	},
}

// renderer executes every page within the shared layout.
// Each page is parsed with its own copy of the layout, so pages may all define "content".
type renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer() (*renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		base := path.Base(name)
		if base == layoutTemplate {
			continue
		}
		tmpl, err := template.New(layoutTemplate).
			Funcs(funcMap).
			ParseFS(templateFS, path.Join("templates", layoutTemplate), name)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", base)
		}
		r.pages[base] = tmpl
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, layoutTemplate, data)
}

// page is what every template receives.
type page struct {
	AppName string
	Title   string
	Session *core.Session
	Notices []core.Notice
	Errors  map[string]string // field errors of the last rejected draft
	Data    interface{}
}

// render shows the flashes of the previous request followed by the notices of this one.
func (s *server) render(ctx echo.Context, code int, name, title string, f *flashes, data interface{}) error {
	p := page{
		AppName: s.opts.AppName,
		Title:   title,
		Session: contextSession(ctx),
		Notices: s.takeFlashes(ctx),
		Data:    data,
	}
	if f != nil {
		for _, n := range f.list() {
			if len(n.Fields) > 0 {
				p.Errors = make(map[string]string, len(n.Fields))
				for _, fe := range n.Fields {
					p.Errors[fe.Field] = fe.Error
				}
			}
			p.Notices = append(p.Notices, n)
		}
	}
	return ctx.Render(code, name, p)
}
