package echoweb

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/crud"
)

const coursesPath = "/admin/courses"

type (
	courseRow struct {
		ID          string
		Title       string
		Code        string
		CreditUnits int
		Lecturer    string
		Department  string
		Level       string
		Semester    string
	}

	coursesPage struct {
		Courses   []courseRow
		Draft     *course.Draft
		EditingID string
		Options   course.FormOptions
	}

	// confirmPage asks to confirm a deletion.
	confirmPage struct {
		Noun   string
		Name   string
		Action string
		Back   string
	}

	courseHandlers struct {
		*server
		svc *course.Service
	}
)

func registerCoursePages(s *server) {
	h := courseHandlers{server: s, svc: s.opts.Courses}

	g := s.app.Group(coursesPath)
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/:id", h.update)
	g.GET("/:id/delete", h.confirmRemove)
	g.POST("/:id/delete", h.remove)
}

// formConfirmer confirms deletions posted with confirm=yes.
func formConfirmer(ctx echo.Context) core.Confirmer {
	return core.ConfirmFunc(func(context.Context, string) (bool, error) {
		return ctx.FormValue("confirm") == "yes", nil
	})
}

func (h courseHandlers) editor(ctx echo.Context, f *flashes) *course.Editor {
	return h.svc.NewEditor(h.deps(f, formConfirmer(ctx)))
}

// list shows the courses with the creation form, or the edition form of ?edit=<id>.
func (h courseHandlers) list(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)
	_ = ed.Mount(ctx.Request().Context()) // failure is flashed; the page shows what it has

	if id := ctx.QueryParam("edit"); id != "" {
		if _, err := ed.Edit(id); err != nil {
			if ed.Store.Loaded() {
				return errHttpNotFound
			}
			ed.New()
		}
	} else {
		ed.New()
	}
	return h.renderPage(ctx, http.StatusOK, ed, f)
}

func (h courseHandlers) create(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)
	if err := ctx.Bind(ed.New()); err != nil {
		return errors.Wrap(err, "binding course")
	}
	return h.submit(ctx, ed, f)
}

func (h courseHandlers) update(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)

	draft := course.NewDraft()
	if err := ctx.Bind(draft); err != nil {
		return errors.Wrap(err, "binding course")
	}
	ed.Form.Open(&course.Course{ID: ctx.Param("id")})
	ed.Form.SetDraft(draft)
	return h.submit(ctx, ed, f)
}

// submit redirects to the list on success. Otherwise the form is shown again with the rejected
// draft.
func (h courseHandlers) submit(ctx echo.Context, ed *course.Editor, f *flashes) error {
	rctx := ctx.Request().Context()
	_, err := ed.Submit(rctx)
	if err == nil {
		return h.redirect(ctx, f, coursesPath)
	}
	if core.IsLoginRequired(err) {
		return h.loginRedirect(ctx, f)
	}
	code, ok := failureStatus(err)
	if !ok {
		return err
	}

	_ = ed.Mount(rctx)
	return h.renderPage(ctx, code, ed, f)
}

func (h courseHandlers) confirmRemove(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)
	if err := ed.Mount(ctx.Request().Context()); err != nil {
		return h.redirect(ctx, f, coursesPath)
	}

	id := ctx.Param("id")
	c, ok := ed.Store.Find(id)
	if !ok {
		return errHttpNotFound
	}
	return h.render(ctx, http.StatusOK, "confirm.html", "Delete course", f, confirmPage{
		Noun:   "course",
		Name:   c.Code + " " + c.Title,
		Action: coursesPath + "/" + id + "/delete",
		Back:   coursesPath,
	})
}

func (h courseHandlers) remove(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)

	err := ed.Remove(ctx.Request().Context(), ctx.Param("id"))
	switch {
	case errors.Cause(err) == crud.ErrNotConfirmed:
		f.Notify(core.Info("Deletion cancelled."))
	case core.IsLoginRequired(err):
		return h.loginRedirect(ctx, f)
	case err != nil && !core.IsRequest(err):
		return err
	}
	return h.redirect(ctx, f, coursesPath)
}

func (h courseHandlers) renderPage(ctx echo.Context, code int, ed *course.Editor, f *flashes) error {
	opts, err := h.svc.FormOptions(ctx.Request().Context())
	if err != nil {
		h.opts.Logger.Warn("loading course form options", logArgs(ctx, err)...)
		f.Notify(core.Failure("Failed to load lecturers and departments."))
	}

	data := coursesPage{
		Courses: courseRows(ed.Store.Records(), opts.Names()),
		Draft:   ed.Form.Draft(),
		Options: opts,
	}
	data.EditingID, _ = ed.Form.EditingID()

	title := "Courses"
	if data.EditingID != "" {
		title = "Edit course"
	}
	return h.render(ctx, code, "courses.html", title, f, data)
}

func courseRows(courses []course.Course, names map[string]string) []courseRow {
	rows := make([]courseRow, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, courseRow{
			ID:          c.ID,
			Title:       c.Title,
			Code:        c.Code,
			CreditUnits: c.CreditUnits,
			Lecturer:    c.Lecturer.Resolve(names),
			Department:  c.Department.Resolve(names),
			Level:       c.Level.Name(),
			Semester:    c.Semester,
		})
	}
	return rows
}
