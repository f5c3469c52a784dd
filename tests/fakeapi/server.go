// Package fakeapi is an in-memory school API used by the tests of the dashboard.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/storage/session"
)

const defaultSecret = "fake-api-secret"

type (
	Options struct {
		Populate bool   // return references as populated objects
		Envelope bool   // wrap responses in {"data": ...}
		Secret   string // HS256 signing key
	}

	failure struct {
		status  int
		message string
	}

	// API is the fake backend. Every route counts its requests; any route can be made to fail.
	API struct {
		opts *Options
		app  *echo.Echo
		db   *db

		mu       sync.Mutex
		counts   map[string]int
		failures map[string]failure
		delay    time.Duration
	}
)

func New(opts *Options) *API {
	if opts == nil {
		opts = new(Options)
	}
	if opts.Secret == "" {
		opts.Secret = defaultSecret
	}
	api := &API{
		opts:     opts,
		app:      echo.New(),
		db:       new(db),
		counts:   make(map[string]int),
		failures: make(map[string]failure),
	}
	api.setup()
	return api
}

// NewServer starts the API on a local port for the duration of the test.
func NewServer(t *testing.T, opts *Options) (*API, *httptest.Server) {
	t.Helper()
	api := New(opts)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.app.ServeHTTP(w, r)
}

func (api *API) setup() {
	api.app.HideBanner = true
	api.app.HTTPErrorHandler = errorHandler
	api.app.Use(api.instrument)

	jwtAuth := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    []byte(api.opts.Secret),
		SigningMethod: middleware.AlgorithmHS256,
		Claims:        new(session.Claims),
	})

	api.app.POST("/auth/login", api.login)
	api.app.GET("/admin/stats", api.stats)
	api.app.GET("/lecturers", api.listLecturers)
	api.app.GET("/departments", api.listDepartments)

	api.app.GET("/courses", api.listCourses)
	api.app.POST("/courses", api.createCourse)
	api.app.PUT("/courses/:id", api.updateCourse)
	api.app.DELETE("/courses/:id", api.deleteCourse)

	api.app.GET("/announcements", api.listAnnouncements)
	api.app.POST("/announcements", api.createAnnouncement, jwtAuth)
	api.app.PUT("/announcements/:id", api.updateAnnouncement, jwtAuth)
	api.app.DELETE("/announcements/:id", api.deleteAnnouncement, jwtAuth)
}

func routeKey(method, route string) string {
	return method + " " + route
}

// instrument counts requests per route and serves injected failures.
func (api *API) instrument(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		key := routeKey(ctx.Request().Method, ctx.Path())

		api.mu.Lock()
		api.counts[key]++
		fail, failing := api.failures[key]
		delay := api.delay
		api.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if failing {
			return ctx.JSON(fail.status, echo.Map{"message": fail.message})
		}
		return next(ctx)
	}
}

// Count returns the number of requests received by route, eg. Count("POST", "/courses").
func (api *API) Count(method, route string) int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.counts[routeKey(method, route)]
}

// Total returns the number of requests received by all routes.
func (api *API) Total() int {
	api.mu.Lock()
	defer api.mu.Unlock()
	var n int
	for _, c := range api.counts {
		n += c
	}
	return n
}

// ResetCounts zeroes every counter.
func (api *API) ResetCounts() {
	api.mu.Lock()
	api.counts = make(map[string]int)
	api.mu.Unlock()
}

// Fail makes route answer status with message until Recover is called.
func (api *API) Fail(method, route string, status int, message string) {
	api.mu.Lock()
	api.failures[routeKey(method, route)] = failure{status: status, message: message}
	api.mu.Unlock()
}

func (api *API) Recover(method, route string) {
	api.mu.Lock()
	delete(api.failures, routeKey(method, route))
	api.mu.Unlock()
}

// Slow delays every response by d.
func (api *API) Slow(d time.Duration) {
	api.mu.Lock()
	api.delay = d
	api.mu.Unlock()
}

// Seeding

func (api *API) AddDepartment(name, code string) string {
	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	d := &departmentDoc{ID: newID(), Name: name, Code: code}
	api.db.departments = append(api.db.departments, d)
	return d.ID
}

func (api *API) AddLecturer(name, email, departmentID string) string {
	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	l := &lecturerDoc{ID: newID(), Name: name, Email: email, Department: departmentID}
	api.db.lecturers = append(api.db.lecturers, l)
	return l.ID
}

func (api *API) AddUser(name, username, email, password string) string {
	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	u := &userDoc{ID: newID(), Name: name, Username: username, Email: email, PasswordHash: hashPassword(password)}
	api.db.users = append(api.db.users, u)
	return u.ID
}

func (api *API) AddCourse(p course.Payload) string {
	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	now := time.Now().UTC()
	c := courseFromPayload(newID(), p, now)
	api.db.courses = append(api.db.courses, c)
	return c.ID
}

func (api *API) AddAnnouncement(authorID string, p announcement.Payload, createdAt time.Time) string {
	api.db.mu.Lock()
	defer api.db.mu.Unlock()
	a := announcementFromPayload(newID(), authorID, p, createdAt.UTC())
	api.db.announcements = append(api.db.announcements, a)
	return a.ID
}

// IssueToken signs a token for userID valid for ttl (negative for an expired token).
func (api *API) IssueToken(userID string, ttl time.Duration) string {
	api.db.mu.RLock()
	u := api.db.userByID(userID)
	api.db.mu.RUnlock()

	claims := session.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	if u != nil {
		claims.Username = u.Username
		claims.Email = u.Email
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(api.opts.Secret))
	if err != nil {
		panic(fmt.Sprintf("signing token: %v", err))
	}
	return token
}

// CourseTitles returns the stored course titles, in order.
func (api *API) CourseTitles() []string {
	api.db.mu.RLock()
	defer api.db.mu.RUnlock()
	titles := make([]string, 0, len(api.db.courses))
	for _, c := range api.db.courses {
		titles = append(titles, c.Title)
	}
	return titles
}

// AnnouncementAuthor returns the author id of an announcement.
func (api *API) AnnouncementAuthor(id string) string {
	api.db.mu.RLock()
	defer api.db.mu.RUnlock()
	if i := api.db.announcementIndex(id); i >= 0 {
		return api.db.announcements[i].Author
	}
	return ""
}

func courseFromPayload(id string, p course.Payload, now time.Time) *courseDoc {
	return &courseDoc{
		ID:          id,
		Title:       p.Title,
		Code:        p.Code,
		CreditUnits: p.CreditUnits,
		Description: p.Description,
		Lecturer:    p.Lecturer,
		Department:  p.Department,
		Level:       p.Level,
		Semester:    p.Semester,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func announcementFromPayload(id, authorID string, p announcement.Payload, now time.Time) *announcementDoc {
	return &announcementDoc{
		ID:         id,
		Title:      p.Title,
		Content:    p.Content,
		Audience:   p.Audience,
		Department: p.Department,
		Author:     authorID,
		ExpiresAt:  p.ExpiresAt,
		CreatedAt:  now,
	}
}

func optional(s null.String) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}
