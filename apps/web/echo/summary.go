package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/summary"
)

// nowFunc is mockable in tests.
var nowFunc = time.Now

type (
	adminPage struct {
		Stats  summary.Stats
		Recent []announcementRow
	}

	studentPage struct {
		Filter        course.QueryFilter
		Courses       []courseRow
		Announcements []announcementRow
		Departments   []course.Department
		Levels        []string
	}

	summaryHandlers struct {
		*server
		svc *summary.Service
	}
)

func registerSummaryPages(s *server) {
	h := summaryHandlers{server: s, svc: s.opts.Summary}
	s.app.GET("/admin", h.admin)
	s.app.GET("/student", h.student)
}

func (h summaryHandlers) admin(ctx echo.Context) error {
	f := new(flashes)
	code := http.StatusOK

	res, err := h.svc.Admin(ctx.Request().Context())
	if err != nil {
		if code = h.loadFailed(ctx, err, f); code == 0 {
			return err
		}
	}
	return h.render(ctx, code, "admin.html", "Dashboard", f, adminPage{
		Stats:  res.Stats,
		Recent: announcementRows(res.Recent, nil),
	})
}

// student shows the courses matching ?level=&department=&search= and the announcements for students.
func (h summaryHandlers) student(ctx echo.Context) error {
	f := new(flashes)
	code := http.StatusOK

	filter := course.QueryFilter{
		Level:      ctx.QueryParam("level"),
		Department: ctx.QueryParam("department"),
		Search:     ctx.QueryParam("search"),
	}

	res, err := h.svc.Student(ctx.Request().Context(), filter)
	if err != nil {
		if code = h.loadFailed(ctx, err, f); code == 0 {
			return err
		}
		res.Filter = filter
	}

	names := make(map[string]string, len(res.Departments))
	for _, d := range res.Departments {
		names[d.ID] = d.Name
	}
	return h.render(ctx, code, "student.html", "Student dashboard", f, studentPage{
		Filter:        res.Filter,
		Courses:       courseRows(res.Courses, names),
		Announcements: announcementRows(res.Announcements, names),
		Departments:   res.Departments,
		Levels:        res.Levels,
	})
}

// loadFailed notifies a failed summary and returns the status of the page, or 0 when the page
// cannot be shown.
func (h summaryHandlers) loadFailed(ctx echo.Context, err error, f *flashes) int {
	if !core.IsRequest(err) {
		return 0
	}
	h.opts.Logger.Warn("loading summary", logArgs(ctx, err)...)
	f.Notify(core.Failure("Failed to load the dashboard."))
	return http.StatusBadGateway
}
