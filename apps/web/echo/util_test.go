package echoweb

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/summary"
	logsvc "github.com/trezcool/masomo-dashboard/services/logger"
	"github.com/trezcool/masomo-dashboard/storage/restapi"
	"github.com/trezcool/masomo-dashboard/tests"
	"github.com/trezcool/masomo-dashboard/tests/fakeapi"
)

const adminPassword = testutil.AdminPassword

var testLevels = []string{"ND1", "ND2"}

// fixture is a dashboard talking to a seeded fake API.
type fixture struct {
	srv  Server
	api  *fakeapi.API
	seed testutil.Seed

	adminID string
	deptID  string
	lectID  string
}

func setup(t *testing.T) *fixture {
	t.Helper()

	api, apiSrv := fakeapi.NewServer(t, &fakeapi.Options{Populate: true})
	reg := prometheus.NewRegistry()
	client, err := restapi.NewClient(restapi.Options{BaseURL: apiSrv.URL, Timeout: 2 * time.Second, Registerer: reg})
	require.NoError(t, err)

	courseRepo := restapi.NewCourseRepository(client)
	annRepo := restapi.NewAnnouncementRepository(client)

	validate, translator := core.NewValidator()
	course.InitValidators(validate, translator, testLevels)
	announcement.InitValidators(validate, translator)

	srv, err := NewServer(&Options{
		AppName:        "Masomo",
		Build:          "test",
		TestMode:       true,
		DisableReqLogs: true,
		Courses:        course.NewService(courseRepo, courseRepo, testLevels),
		Announcements:  announcement.NewService(annRepo),
		References:     courseRepo,
		Summary:        summary.NewService(restapi.NewStatsRepository(client), courseRepo, annRepo, courseRepo, testLevels),
		Auth:           client,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Validate:       validate,
		Translator:     translator,
		Logger:         logsvc.NewDiscardLogger(),
	})
	require.NoError(t, err)

	seed := testutil.Populate(api)
	return &fixture{srv: srv, api: api, seed: seed, adminID: seed.AdminID, deptID: seed.DepartmentID, lectID: seed.LecturerID}
}

func (fx *fixture) addCourse(title, code, level string) string {
	return testutil.CreateCourse(fx.api, fx.seed, title, code, level)
}

func (fx *fixture) addAnnouncement(title, audience string, createdAt time.Time) string {
	return testutil.CreateAnnouncement(fx.api, fx.seed, title, audience, createdAt)
}

// loginCookie returns the token cookie of the admin, valid for ttl.
func (fx *fixture) loginCookie(ttl time.Duration) *http.Cookie {
	return &http.Cookie{Name: tokenCookie, Value: fx.api.IssueToken(fx.adminID, ttl)}
}

func (fx *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	fx.srv.ServeHTTP(rec, req)
	return rec
}

type httpTest struct {
	name      string
	method    string
	path      string
	form      url.Values
	cookie    *http.Cookie
	wantCode  int
	wantBody  []string
	wantCalls int // requests to the mutation route of the API
}

func newRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	return req
}

func checkCodeAndBody(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	for _, want := range tt.wantBody {
		assert.Contains(t, rec.Body.String(), want)
	}
}

// flashMessages decodes the notices kept for the next page.
func flashMessages(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var msgs []string
	for _, c := range rec.Result().Cookies() {
		if c.Name != flashCookie || c.Value == "" {
			continue
		}
		data, err := base64.RawURLEncoding.DecodeString(c.Value)
		require.NoError(t, err)
		var notices []core.Notice
		require.NoError(t, json.Unmarshal(data, &notices))
		for _, n := range notices {
			msgs = append(msgs, n.Message)
		}
	}
	return msgs
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func courseForm(title, code, units, lecturer, department, level string) url.Values {
	return url.Values{
		"title":       {title},
		"code":        {code},
		"creditUnits": {units},
		"lecturer":    {lecturer},
		"department":  {department},
		"level":       {level},
		"semester":    {"first"},
	}
}
