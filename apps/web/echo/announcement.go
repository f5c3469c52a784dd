package echoweb

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/crud"
)

const announcementsPath = "/admin/announcements"

type (
	announcementRow struct {
		ID         string
		Title      string
		Content    string
		Audience   string
		Department string
		Author     string
		ExpiresAt  null.Time
		Expired    bool
	}

	announcementsPage struct {
		Announcements []announcementRow
		Draft         *announcement.Draft
		EditingID     string
		Audiences     []string
		Departments   []course.Department
	}

	announcementHandlers struct {
		*server
		svc *announcement.Service
	}
)

// registerAnnouncementPages registers the announcement pages. Mutations need the bearer token of
// a logged in user, so every page does.
func registerAnnouncementPages(s *server) {
	h := announcementHandlers{server: s, svc: s.opts.Announcements}

	g := s.app.Group(announcementsPath, requireLogin)
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/:id", h.update)
	g.GET("/:id/delete", h.confirmRemove)
	g.POST("/:id/delete", h.remove)
}

func (h announcementHandlers) editor(ctx echo.Context, f *flashes) *announcement.Editor {
	return h.svc.NewEditor(h.deps(f, formConfirmer(ctx)))
}

func (h announcementHandlers) list(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)
	_ = ed.Mount(ctx.Request().Context())

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

func (h announcementHandlers) create(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)
	if err := ctx.Bind(ed.New()); err != nil {
		return errors.Wrap(err, "binding announcement")
	}
	return h.submit(ctx, ed, f)
}

func (h announcementHandlers) update(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)

	draft := announcement.NewDraft()
	if err := ctx.Bind(draft); err != nil {
		return errors.Wrap(err, "binding announcement")
	}
	ed.Form.Open(&announcement.Announcement{ID: ctx.Param("id")})
	ed.Form.SetDraft(draft)
	return h.submit(ctx, ed, f)
}

func (h announcementHandlers) submit(ctx echo.Context, ed *announcement.Editor, f *flashes) error {
	rctx := ctx.Request().Context()
	_, err := ed.Submit(rctx)
	if err == nil {
		return h.redirect(ctx, f, announcementsPath)
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

func (h announcementHandlers) confirmRemove(ctx echo.Context) error {
	f := new(flashes)
	ed := h.editor(ctx, f)
	if err := ed.Mount(ctx.Request().Context()); err != nil {
		return h.redirect(ctx, f, announcementsPath)
	}

	id := ctx.Param("id")
	a, ok := ed.Store.Find(id)
	if !ok {
		return errHttpNotFound
	}
	return h.render(ctx, http.StatusOK, "confirm.html", "Delete announcement", f, confirmPage{
		Noun:   "announcement",
		Name:   a.Title,
		Action: announcementsPath + "/" + id + "/delete",
		Back:   announcementsPath,
	})
}

func (h announcementHandlers) remove(ctx echo.Context) error {
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
	return h.redirect(ctx, f, announcementsPath)
}

func (h announcementHandlers) renderPage(ctx echo.Context, code int, ed *announcement.Editor, f *flashes) error {
	departments, err := h.opts.References.ListDepartments(ctx.Request().Context())
	if err != nil {
		h.opts.Logger.Warn("loading departments", logArgs(ctx, err)...)
		f.Notify(core.Failure("Failed to load departments."))
	}
	sort.SliceStable(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })

	names := make(map[string]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}

	data := announcementsPage{
		Announcements: announcementRows(ed.Store.Records(), names),
		Draft:         ed.Form.Draft(),
		Audiences:     announcement.Audiences,
		Departments:   departments,
	}
	data.EditingID, _ = ed.Form.EditingID()

	title := "Announcements"
	if data.EditingID != "" {
		title = "Edit announcement"
	}
	return h.render(ctx, code, "announcements.html", title, f, data)
}

func announcementRows(anns []announcement.Announcement, names map[string]string) []announcementRow {
	now := nowFunc()
	rows := make([]announcementRow, 0, len(anns))
	for _, a := range anns {
		rows = append(rows, announcementRow{
			ID:         a.ID,
			Title:      a.Title,
			Content:    a.Content,
			Audience:   a.Audience,
			Department: a.Department.Resolve(names),
			Author:     a.Author.Name(),
			ExpiresAt:  a.ExpiresAt,
			Expired:    a.Expired(now),
		})
	}
	return rows
}
