package restapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/tests/fakeapi"
)

func newClient(t *testing.T, baseURL string, tokens TokenSource) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: baseURL + "/", Timeout: 2 * time.Second, Tokens: tokens})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Options{Timeout: time.Second})
	assert.Error(t, err)

	_, err = NewClient(Options{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestCourseRepository(t *testing.T) {
	for _, opts := range []*fakeapi.Options{{}, {Populate: true}, {Envelope: true}} {
		api, srv := fakeapi.NewServer(t, opts)
		deptID := api.AddDepartment("Computing", "CSC")
		lectID := api.AddLecturer("Dr. Ada Obi", "ada@masomo.test", deptID)

		repo := NewCourseRepository(newClient(t, srv.URL, nil))
		ctx := context.Background()

		created, err := repo.Create(ctx, &course.Draft{
			Title: "Algorithms", Code: "CSC201", CreditUnits: "3",
			Lecturer: lectID, Department: deptID, Level: "ND1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, lectID, created.Lecturer.ID())
		assert.Equal(t, opts.Populate, created.Lecturer.IsExpanded())
		if opts.Populate {
			assert.Equal(t, "Dr. Ada Obi", created.Lecturer.Name())
		}

		draft := course.ToDraft(created)
		draft.CreditUnits = "4"
		updated, err := repo.Update(ctx, created.ID, draft)
		require.NoError(t, err)
		assert.Equal(t, 4, updated.CreditUnits)

		courses, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "CSC201", courses[0].Code)

		lecturers, err := repo.ListLecturers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []course.Lecturer{{ID: lectID, Name: "Dr. Ada Obi", Email: "ada@masomo.test", Department: core.NewRef(deptID)}}, lecturers)

		departments, err := repo.ListDepartments(ctx)
		require.NoError(t, err)
		assert.Equal(t, []course.Department{{ID: deptID, Name: "Computing", Code: "CSC"}}, departments)

		require.NoError(t, repo.Delete(ctx, created.ID))
		courses, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, courses)
	}
}

func TestCourseRepository_Errors(t *testing.T) {
	api, srv := fakeapi.NewServer(t, nil)
	repo := NewCourseRepository(newClient(t, srv.URL, nil))
	ctx := context.Background()

	api.Fail(http.MethodGet, "/courses", http.StatusInternalServerError, "database unavailable")
	_, err := repo.List(ctx)
	require.Error(t, err)
	rErr, ok := err.(*core.RequestError)
	require.True(t, ok)
	assert.Equal(t, "GET /courses", rErr.Op)
	assert.Equal(t, http.StatusInternalServerError, rErr.StatusCode)
	assert.Equal(t, "database unavailable", rErr.Message)

	err = repo.Delete(ctx, "missing")
	assert.True(t, isStatus(err, http.StatusNotFound))

	// network failure
	srv.Close()
	_, err = repo.List(ctx)
	require.Error(t, err)
	rErr, ok = err.(*core.RequestError)
	require.True(t, ok)
	assert.Zero(t, rErr.StatusCode)
	assert.Error(t, rErr.Unwrap())
}

func TestAnnouncementRepository_Auth(t *testing.T) {
	api, srv := fakeapi.NewServer(t, &fakeapi.Options{Populate: true})
	userID := api.AddUser("Admin", "admin", "admin@masomo.test", "Pa$$w0rd!")
	ctx := context.Background()
	draft := &announcement.Draft{Title: "Exams", Content: "Exams start on Monday.", Audience: "students"}

	t.Run("no token", func(t *testing.T) {
		repo := NewAnnouncementRepository(newClient(t, srv.URL, nil))
		api.ResetCounts()

		_, err := repo.Create(ctx, draft)
		assert.True(t, core.IsLoginRequired(err))
		assert.Equal(t, 0, api.Total())

		// reads need no token
		_, err = repo.List(ctx)
		require.NoError(t, err)
	})

	t.Run("token source", func(t *testing.T) {
		token := api.IssueToken(userID, time.Hour)
		repo := NewAnnouncementRepository(newClient(t, srv.URL, TokenFunc(func() (string, error) { return token, nil })))

		created, err := repo.Create(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, userID, created.Author.ID())
		assert.Equal(t, "Admin", created.Author.Name())

		require.NoError(t, repo.Delete(ctx, created.ID))
	})

	t.Run("context token wins", func(t *testing.T) {
		repo := NewAnnouncementRepository(newClient(t, srv.URL, TokenFunc(func() (string, error) {
			return "", core.ErrLoginRequired
		})))

		created, err := repo.Create(WithToken(ctx, api.IssueToken(userID, time.Hour)), draft)
		require.NoError(t, err)
		assert.Equal(t, userID, api.AnnouncementAuthor(created.ID))
	})

	t.Run("rejected token", func(t *testing.T) {
		repo := NewAnnouncementRepository(newClient(t, srv.URL, nil))
		_, err := repo.Create(WithToken(ctx, api.IssueToken(userID, -time.Hour)), draft)
		assert.True(t, core.IsLoginRequired(err))
	})
}

func TestLoginAndStats(t *testing.T) {
	api, srv := fakeapi.NewServer(t, nil)
	api.AddUser("Admin", "admin", "admin@masomo.test", "Pa$$w0rd!")
	api.AddDepartment("Computing", "CSC")
	client := newClient(t, srv.URL, nil)
	ctx := context.Background()

	token, err := client.Login(ctx, Credentials{Username: "admin", Password: "Pa$$w0rd!"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = client.Login(ctx, Credentials{Username: "admin", Password: "wrong"})
	assert.Equal(t, ErrInvalidCredentials, err)

	stats, err := NewStatsRepository(client).GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalDepartments)
}

func TestMetrics(t *testing.T) {
	_, srv := fakeapi.NewServer(t, nil)
	reg := prometheus.NewRegistry()

	c1, err := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second, Registerer: reg})
	require.NoError(t, err)
	c2, err := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second, Registerer: reg})
	require.NoError(t, err)

	_, err = NewCourseRepository(c1).List(context.Background())
	require.NoError(t, err)
	_, err = NewCourseRepository(c2).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(c1.metrics.requests.WithLabelValues("GET", "/courses", "200")))
}
