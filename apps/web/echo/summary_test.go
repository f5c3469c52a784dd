package echoweb

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-dashboard/core/announcement"
)

func TestAdminPage(t *testing.T) {
	fx := setup(t)
	fx.addCourse("Algorithms", "CSC201", "ND1")
	start := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		fx.addAnnouncement(fmt.Sprintf("Notice %d", i), "all", start.Add(time.Duration(i)*time.Minute))
	}

	rec := fx.do(newRequest(http.MethodGet, "/admin", nil))
	checkCodeAndBody(t, httpTest{
		wantCode: http.StatusOK,
		wantBody: []string{"<th>Courses</th><td>1</td>", "<th>Announcements</th><td>7</td>", "Notice 6", "Notice 2"},
	}, rec)
	assert.NotContains(t, rec.Body.String(), "Notice 1")
	assert.Equal(t, 5, strings.Count(rec.Body.String(), "<li"))

	t.Run("stats failure", func(t *testing.T) {
		fx.api.Fail(http.MethodGet, "/admin/stats", http.StatusServiceUnavailable, "maintenance")
		defer fx.api.Recover(http.MethodGet, "/admin/stats")

		rec := fx.do(newRequest(http.MethodGet, "/admin", nil))
		checkCodeAndBody(t, httpTest{
			wantCode: http.StatusBadGateway,
			wantBody: []string{"Failed to load the dashboard."},
		}, rec)
	})
}

func TestStudentPage(t *testing.T) {
	fx := setup(t)
	fx.addCourse("Algorithms", "CSC201", "ND1")
	fx.addCourse("Databases", "CSC301", "ND2")

	now := time.Now()
	fx.addAnnouncement("For everyone", "all", now)
	fx.addAnnouncement("For students", "students", now)
	fx.addAnnouncement("For lecturers", "lecturers", now)
	fx.api.AddAnnouncement(fx.adminID, announcement.Payload{
		Title:     "Old news",
		Content:   "Expired.",
		Audience:  "students",
		ExpiresAt: null.TimeFrom(now.Add(-24 * time.Hour)),
	}, now.Add(-48*time.Hour))

	rec := fx.do(newRequest(http.MethodGet, "/student", nil))
	checkCodeAndBody(t, httpTest{
		wantCode: http.StatusOK,
		wantBody: []string{"Algorithms", "Databases", "Dr. Ada Obi", "For everyone", "For students"},
	}, rec)
	assert.NotContains(t, rec.Body.String(), "For lecturers")
	assert.NotContains(t, rec.Body.String(), "Old news")

	t.Run("filtered", func(t *testing.T) {
		rec := fx.do(newRequest(http.MethodGet, "/student?level=ND2&department="+fx.deptID, nil))
		checkCodeAndBody(t, httpTest{
			wantCode: http.StatusOK,
			wantBody: []string{"Databases", `<option value="ND2" selected>`, `<option value="` + fx.deptID + `" selected>`},
		}, rec)
		assert.NotContains(t, rec.Body.String(), "Algorithms")
	})

	t.Run("search", func(t *testing.T) {
		rec := fx.do(newRequest(http.MethodGet, "/student?search=csc2", nil))
		assert.Contains(t, rec.Body.String(), "Algorithms")
		assert.NotContains(t, rec.Body.String(), "Databases")
	})
}

func TestHealthMetricsAndErrors(t *testing.T) {
	fx := setup(t)

	rec := fx.do(newRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","build":"test"}`, rec.Body.String())

	fx.do(newRequest(http.MethodGet, "/admin/courses", nil))
	rec = fx.do(newRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `masomo_api_client_requests_total{method="GET",route="/courses",status="200"} 1`)

	rec = fx.do(newRequest(http.MethodGet, "/nowhere", nil))
	checkCodeAndBody(t, httpTest{wantCode: http.StatusNotFound, wantBody: []string{"Not Found"}}, rec)

	rec = fx.do(newRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}
