package fakeapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/storage/session"
)

var (
	errNotFound             = echo.NewHTTPError(http.StatusNotFound, "not found")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
)

func errorHandler(err error, ctx echo.Context) {
	code := http.StatusInternalServerError
	message := err.Error()
	if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
		code = herr.Code
		if m, ok := herr.Message.(string); ok {
			message = m
		}
	}
	if !ctx.Response().Committed {
		_ = ctx.JSON(code, echo.Map{"message": message})
	}
}

func (api *API) respond(ctx echo.Context, code int, data interface{}) error {
	if api.opts.Envelope {
		return ctx.JSON(code, echo.Map{"data": data})
	}
	return ctx.JSON(code, data)
}

// ref renders a reference, populated when the API is configured so and the target exists.
func (api *API) ref(id, name string, found bool, nameKey string) interface{} {
	if id == "" {
		return nil
	}
	if !api.opts.Populate || !found {
		return id
	}
	return echo.Map{"_id": id, nameKey: name}
}

func (api *API) renderCourse(c *courseDoc) echo.Map {
	lecturer := api.db.lecturerByID(c.Lecturer)
	department := api.db.departmentByID(c.Department)

	var lecturerName, departmentName string
	if lecturer != nil {
		lecturerName = lecturer.Name
	}
	if department != nil {
		departmentName = department.Name
	}
	return echo.Map{
		"_id":         c.ID,
		"title":       c.Title,
		"code":        c.Code,
		"creditUnits": c.CreditUnits,
		"description": optional(c.Description),
		"lecturer":    api.ref(c.Lecturer, lecturerName, lecturer != nil, "name"),
		"department":  api.ref(c.Department, departmentName, department != nil, "name"),
		"level":       api.ref(c.Level, c.Level, true, "code"),
		"semester":    optional(c.Semester),
		"createdAt":   c.CreatedAt,
		"updatedAt":   c.UpdatedAt,
	}
}

func (api *API) renderAnnouncement(a *announcementDoc) echo.Map {
	var departmentName, authorName string
	var departmentFound, authorFound bool
	if a.Department.Valid {
		if d := api.db.departmentByID(a.Department.String); d != nil {
			departmentName, departmentFound = d.Name, true
		}
	}
	if u := api.db.userByID(a.Author); u != nil {
		authorName, authorFound = u.Name, true
	}

	out := echo.Map{
		"_id":        a.ID,
		"title":      a.Title,
		"content":    a.Content,
		"audience":   a.Audience,
		"department": api.ref(a.Department.String, departmentName, departmentFound, "name"),
		"author":     api.ref(a.Author, authorName, authorFound, "fullName"),
		"expiresAt":  nil,
		"createdAt":  a.CreatedAt,
	}
	if a.ExpiresAt.Valid {
		out["expiresAt"] = a.ExpiresAt.Time
	}
	return out
}

// Auth

func (api *API) login(ctx echo.Context) error {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.Bind(&creds); err != nil {
		return err
	}

	api.db.mu.RLock()
	u := api.db.userByUsernameOrEmail(creds.Username)
	api.db.mu.RUnlock()
	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(creds.Password)) != nil {
		return errAuthenticationFailed
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": api.IssueToken(u.ID, time.Hour)})
}

func contextUserID(ctx echo.Context) string {
	if token, ok := ctx.Get("user").(*jwt.Token); ok {
		if claims, ok := token.Claims.(*session.Claims); ok {
			return claims.Subject
		}
	}
	return ""
}

func (api *API) stats(ctx echo.Context) error {
	api.db.mu.RLock()
	defer api.db.mu.RUnlock()
	return api.respond(ctx, http.StatusOK, echo.Map{
		"totalUsers":         len(api.db.users),
		"totalDepartments":   len(api.db.departments),
		"totalCourses":       len(api.db.courses),
		"totalAnnouncements": len(api.db.announcements),
	})
}

// References

func (api *API) listLecturers(ctx echo.Context) error {
	api.db.mu.RLock()
	defer api.db.mu.RUnlock()
	out := make([]echo.Map, 0, len(api.db.lecturers))
	for _, l := range api.db.lecturers {
		out = append(out, echo.Map{"_id": l.ID, "name": l.Name, "email": l.Email, "department": l.Department})
	}
	return api.respond(ctx, http.StatusOK, out)
}

func (api *API) listDepartments(ctx echo.Context) error {
	api.db.mu.RLock()
	defer api.db.mu.RUnlock()
	out := make([]echo.Map, 0, len(api.db.departments))
	for _, d := range api.db.departments {
		out = append(out, echo.Map{"_id": d.ID, "name": d.Name, "code": d.Code})
	}
	return api.respond(ctx, http.StatusOK, out)
}

// Courses

func (api *API) listCourses(ctx echo.Context) error {
	api.db.mu.RLock()
	defer api.db.mu.RUnlock()
	out := make([]echo.Map, 0, len(api.db.courses))
	for _, c := range api.db.courses {
		out = append(out, api.renderCourse(c))
	}
	return api.respond(ctx, http.StatusOK, out)
}

func bindCourse(ctx echo.Context) (course.Payload, error) {
	var p course.Payload
	if err := ctx.Bind(&p); err != nil {
		return p, err
	}
	if p.Title == "" || p.Code == "" {
		return p, echo.NewHTTPError(http.StatusBadRequest, "title and code are required")
	}
	return p, nil
}

func (api *API) createCourse(ctx echo.Context) error {
	p, err := bindCourse(ctx)
	if err != nil {
		return err
	}

	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	c := courseFromPayload(newID(), p, time.Now().UTC())
	api.db.courses = append(api.db.courses, c)
	return api.respond(ctx, http.StatusCreated, api.renderCourse(c))
}

func (api *API) updateCourse(ctx echo.Context) error {
	p, err := bindCourse(ctx)
	if err != nil {
		return err
	}

	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	i := api.db.courseIndex(ctx.Param("id"))
	if i < 0 {
		return errNotFound
	}
	orig := api.db.courses[i]
	c := courseFromPayload(orig.ID, p, time.Now().UTC())
	c.CreatedAt = orig.CreatedAt
	api.db.courses[i] = c
	return api.respond(ctx, http.StatusOK, api.renderCourse(c))
}

func (api *API) deleteCourse(ctx echo.Context) error {
	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	i := api.db.courseIndex(ctx.Param("id"))
	if i < 0 {
		return errNotFound
	}
	api.db.courses = append(api.db.courses[:i], api.db.courses[i+1:]...)
	return ctx.NoContent(http.StatusNoContent)
}

// Announcements

func (api *API) listAnnouncements(ctx echo.Context) error {
	api.db.mu.RLock()
	defer api.db.mu.RUnlock()
	out := make([]echo.Map, 0, len(api.db.announcements))
	for _, a := range api.db.announcements {
		out = append(out, api.renderAnnouncement(a))
	}
	return api.respond(ctx, http.StatusOK, out)
}

func bindAnnouncement(ctx echo.Context) (announcement.Payload, error) {
	var p announcement.Payload
	if err := ctx.Bind(&p); err != nil {
		return p, err
	}
	if p.Title == "" || p.Content == "" {
		return p, echo.NewHTTPError(http.StatusBadRequest, "title and content are required")
	}
	return p, nil
}

func (api *API) createAnnouncement(ctx echo.Context) error {
	p, err := bindAnnouncement(ctx)
	if err != nil {
		return err
	}

	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	a := announcementFromPayload(newID(), contextUserID(ctx), p, time.Now().UTC())
	api.db.announcements = append(api.db.announcements, a)
	return api.respond(ctx, http.StatusCreated, api.renderAnnouncement(a))
}

func (api *API) updateAnnouncement(ctx echo.Context) error {
	p, err := bindAnnouncement(ctx)
	if err != nil {
		return err
	}

	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	i := api.db.announcementIndex(ctx.Param("id"))
	if i < 0 {
		return errNotFound
	}
	orig := api.db.announcements[i]
	a := announcementFromPayload(orig.ID, orig.Author, p, orig.CreatedAt)
	api.db.announcements[i] = a
	return api.respond(ctx, http.StatusOK, api.renderAnnouncement(a))
}

func (api *API) deleteAnnouncement(ctx echo.Context) error {
	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	i := api.db.announcementIndex(ctx.Param("id"))
	if i < 0 {
		return errNotFound
	}
	api.db.announcements = append(api.db.announcements[:i], api.db.announcements[i+1:]...)
	return ctx.NoContent(http.StatusNoContent)
}
