package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/crud"
	logsvc "github.com/trezcool/masomo-dashboard/services/logger"
	"github.com/trezcool/masomo-dashboard/storage/restapi"
	"github.com/trezcool/masomo-dashboard/storage/session"
	"github.com/trezcool/masomo-dashboard/tests"
	"github.com/trezcool/masomo-dashboard/tests/fakeapi"
)

type fixture struct {
	cli    *commandLine
	api    *fakeapi.API
	tokens *session.FileStore
	out    *bytes.Buffer
	errOut *bytes.Buffer

	seed    testutil.Seed
	adminID string
	deptID  string
	lectID  string
}

func setup(t *testing.T) *fixture {
	t.Helper()

	api, apiSrv := fakeapi.NewServer(t, &fakeapi.Options{Populate: true})
	tokens := session.NewFileStore(filepath.Join(t.TempDir(), "masomo", "token"))
	client, err := restapi.NewClient(restapi.Options{BaseURL: apiSrv.URL, Timeout: 2 * time.Second, Tokens: tokens})
	require.NoError(t, err)

	courseRepo := restapi.NewCourseRepository(client)
	levels := []string{"ND1", "ND2"}
	validate, translator := core.NewValidator()
	course.InitValidators(validate, translator, levels)
	announcement.InitValidators(validate, translator)

	fx := &fixture{
		api:    api,
		tokens: tokens,
		out:    new(bytes.Buffer),
		errOut: new(bytes.Buffer),
	}
	fx.cli = &commandLine{
		out:           fx.out,
		errOut:        fx.errOut,
		courses:       course.NewService(courseRepo, courseRepo, levels),
		announcements: announcement.NewService(restapi.NewAnnouncementRepository(client)),
		stats:         restapi.NewStatsRepository(client),
		auth:          client,
		tokens:        tokens,
		validate:      validate,
		translator:    translator,
		logger:        logsvc.NewDiscardLogger(),
	}

	fx.seed = testutil.Populate(api)
	fx.adminID, fx.deptID, fx.lectID = fx.seed.AdminID, fx.seed.DepartmentID, fx.seed.LecturerID
	return fx
}

// run executes the command line with input as stdin.
func (fx *fixture) run(input string, args ...string) error {
	fx.out.Reset()
	fx.errOut.Reset()
	fx.cli.in = strings.NewReader(input)
	return fx.cli.run(context.Background(), append([]string{"--no-color"}, args...))
}

func (fx *fixture) addCourse(title, code, level string) string {
	return testutil.CreateCourse(fx.api, fx.seed, title, code, level)
}

func (fx *fixture) login(t *testing.T) {
	t.Helper()
	_, err := fx.tokens.Save(fx.api.IssueToken(fx.adminID, time.Hour))
	require.NoError(t, err)
}

func mockPassword(t *testing.T, pwd string) {
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // without program name
	input      string
	wantErr    error
	wantErrStr string
	wantOut    []string
	wantErrOut []string
}

func checkRun(t *testing.T, fx *fixture, tt cliTest) {
	t.Helper()
	err := fx.run(tt.input, tt.args...)
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, errors.Cause(err), "cli.run() error = %v", err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err, fx.errOut.String())
	}
	for _, want := range tt.wantOut {
		assert.Contains(t, fx.out.String(), want)
	}
	for _, want := range tt.wantErrOut {
		assert.Contains(t, fx.errOut.String(), want)
	}
}

func Test_commandLine_run(t *testing.T) {
	fx := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol"`},
		{name: "unknown output", args: []string{"stats", "-o", "xml"}, wantErrStr: `unknown output format "xml"`},
		{name: "missing id", args: []string{"courses", "edit"}, wantErrStr: "accepts 1 arg(s)"},
		{name: "stats", args: []string{"stats"}, wantOut: []string{"USERS", "COURSES"}},
		{name: "stats as yaml", args: []string{"stats", "-o", "yaml"}, wantOut: []string{"totalUsers: 1", "totalDepartments: 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkRun(t, fx, tt)
		})
	}
}

func Test_commandLine_courses(t *testing.T) {
	fx := setup(t)

	draftFile := filepath.Join(t.TempDir(), "course.yaml")
	require.NoError(t, os.WriteFile(draftFile, []byte(
		"title: Databases\ncode: CSC301\ncreditUnits: \"2\"\nlecturer: "+fx.lectID+"\ndepartment: "+fx.deptID+"\nlevel: ND2\n",
	), 0o600))

	create := []string{
		"courses", "create", "--title", "Algorithms", "--code", "CSC201", "--credit-units", "3",
		"--lecturer", fx.lectID, "--department", fx.deptID, "--level", "ND1",
	}

	tests := []cliTest{
		{
			name:       "create",
			args:       create,
			wantOut:    []string{"CSC201", "Algorithms", "Dr. Ada Obi", "Computing", "ND1"},
			wantErrOut: []string{"✔ Course created."},
		},
		{
			name:       "create invalid",
			args:       []string{"courses", "create", "--title", " ", "--code", "CSC999", "--level", "ND9"},
			wantErrStr: "please correct the highlighted fields",
			wantErrOut: []string{"this field cannot be blank", "level must be one of the configured levels"},
		},
		{
			name:       "create from file",
			args:       []string{"courses", "create", "-f", draftFile, "--semester", "second"},
			wantOut:    []string{"CSC301", "Databases", "second"},
			wantErrOut: []string{"✔ Course created."},
		},
		{name: "missing file", args: []string{"courses", "create", "-f", "nowhere.yaml"}, wantErrStr: "reading nowhere.yaml"},
		{name: "list", args: []string{"courses", "list"}, wantOut: []string{"CSC201", "CSC301"}},
		{name: "options", args: []string{"courses", "options"}, wantOut: []string{fx.lectID, "Dr. Ada Obi", "Computing", "ND2", "second"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkRun(t, fx, tt)
		})
	}
	assert.Equal(t, []string{"Algorithms", "Databases"}, fx.api.CourseTitles())
	assert.Equal(t, 2, fx.api.Count(http.MethodPost, "/courses"))

	t.Run("filtered", func(t *testing.T) {
		require.NoError(t, fx.run("", "courses", "list", "--level", "ND2"))
		assert.Contains(t, fx.out.String(), "CSC301")
		assert.NotContains(t, fx.out.String(), "CSC201")

		require.NoError(t, fx.run("", "courses", "ls", "-s", "algo"))
		assert.Contains(t, fx.out.String(), "CSC201")
		assert.NotContains(t, fx.out.String(), "CSC301")
	})

	t.Run("as json", func(t *testing.T) {
		require.NoError(t, fx.run("", "courses", "list", "-o", "json"))
		var courses []map[string]interface{}
		require.NoError(t, json.Unmarshal(fx.out.Bytes(), &courses))
		require.Len(t, courses, 2)
		assert.Equal(t, "CSC201", courses[0]["code"])
		assert.Equal(t, fx.lectID, courses[0]["lecturer"])
	})

	t.Run("as yaml", func(t *testing.T) {
		require.NoError(t, fx.run("", "courses", "list", "-o", "yaml"))
		assert.Contains(t, fx.out.String(), "code: CSC201")
		assert.Contains(t, fx.out.String(), "lecturer: "+fx.lectID)
	})
}

func Test_commandLine_courseEdit(t *testing.T) {
	fx := setup(t)
	id := fx.addCourse("Algorithms", "CSC201", "ND1")

	tests := []cliTest{
		{
			name:       "declined",
			args:       []string{"courses", "edit", id, "--title", "Advanced Algorithms"},
			input:      "n\n",
			wantErrOut: []string{"-title: Algorithms", "+title: Advanced Algorithms", "Apply these changes? [y/N]", "Edit cancelled."},
		},
		{
			name:       "nothing changed",
			args:       []string{"courses", "edit", id, "--title", "Algorithms"},
			wantErrOut: []string{"Nothing to change."},
		},
		{name: "unknown", args: []string{"courses", "edit", "missing", "--title", "Lol"}, wantErr: crud.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkRun(t, fx, tt)
			assert.Equal(t, 0, fx.api.Count(http.MethodPut, "/courses/:id"))
		})
	}

	t.Run("confirmed", func(t *testing.T) {
		checkRun(t, fx, cliTest{
			args:       []string{"courses", "edit", id, "--title", "Advanced Algorithms", "--level", "ND2"},
			input:      "y\n",
			wantOut:    []string{"Advanced Algorithms", "ND2"},
			wantErrOut: []string{"-level: ND1", "+level: ND2", "✔ Course updated."},
		})
		assert.Equal(t, 1, fx.api.Count(http.MethodPut, "/courses/:id"))
		assert.Equal(t, []string{"Advanced Algorithms"}, fx.api.CourseTitles())
	})

	t.Run("assumed yes", func(t *testing.T) {
		checkRun(t, fx, cliTest{
			args:       []string{"courses", "edit", id, "--code", "CSC401", "--yes"},
			wantErrOut: []string{"+code: CSC401", "✔ Course updated."},
		})
		assert.NotContains(t, fx.errOut.String(), "[y/N]")
		assert.Equal(t, 2, fx.api.Count(http.MethodPut, "/courses/:id"))
	})

	t.Run("backend failure", func(t *testing.T) {
		fx.api.Fail(http.MethodPut, "/courses/:id", http.StatusInternalServerError, "database unavailable")
		defer fx.api.Recover(http.MethodPut, "/courses/:id")

		err := fx.run("", "courses", "edit", id, "--title", "Lol", "-y")
		assert.True(t, core.IsRequest(err), "err = %v", err)
		assert.Contains(t, fx.errOut.String(), "✘ Failed to update course.")
	})
}

func Test_commandLine_courseDelete(t *testing.T) {
	fx := setup(t)
	id := fx.addCourse("Algorithms", "CSC201", "ND1")

	checkRun(t, fx, cliTest{
		args:       []string{"courses", "delete", id},
		input:      "no\n",
		wantErrOut: []string{"Are you sure you want to delete this course? [y/N]", "Deletion cancelled."},
	})
	assert.Equal(t, 0, fx.api.Count(http.MethodDelete, "/courses/:id"))

	checkRun(t, fx, cliTest{
		args:       []string{"courses", "rm", id},
		input:      "y\n",
		wantErrOut: []string{"✔ Course deleted."},
	})
	assert.Equal(t, 1, fx.api.Count(http.MethodDelete, "/courses/:id"))
	assert.Empty(t, fx.api.CourseTitles())
}

func Test_commandLine_login(t *testing.T) {
	fx := setup(t)

	tests := []struct {
		cliTest
		pwd string
	}{
		{cliTest: cliTest{name: "no username", args: []string{"login"}, wantErr: errHelp}, pwd: testutil.AdminPassword},
		{cliTest: cliTest{name: "no password", args: []string{"login", "-u", "admin"}, wantErr: errHelp}},
		{
			cliTest: cliTest{
				name:       "wrong password",
				args:       []string{"login", "-u", "admin"},
				wantErr:    restapi.ErrInvalidCredentials,
				wantErrOut: []string{"✘ Invalid username or password."},
			},
			pwd: "lol",
		},
		{
			cliTest: cliTest{
				name:       "by email",
				args:       []string{"login", "--username", " Admin@Masomo.test "},
				wantErrOut: []string{"Enter password:", "✔ Logged in as admin."},
			},
			pwd: testutil.AdminPassword,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			checkRun(t, fx, tt.cliTest)
		})
	}

	sess, err := fx.tokens.Session()
	require.NoError(t, err)
	assert.Equal(t, fx.adminID, sess.UserID)

	checkRun(t, fx, cliTest{args: []string{"whoami", "-o", "json"}, wantOut: []string{`"username": "admin"`, `"userId": "` + fx.adminID + `"`}})

	checkRun(t, fx, cliTest{args: []string{"logout"}, wantErrOut: []string{"✔ Logged out."}})
	_, err = fx.tokens.Session()
	assert.True(t, core.IsLoginRequired(err))

	checkRun(t, fx, cliTest{args: []string{"whoami"}, wantErr: core.ErrLoginRequired})
}

func Test_commandLine_announcements(t *testing.T) {
	fx := setup(t)

	publish := []string{
		"announcements", "create", "--title", "Exams", "--content", "Exams start on Monday.",
		"--audience", "students", "--expires-at", "2030-06-30",
	}

	t.Run("requires login", func(t *testing.T) {
		checkRun(t, fx, cliTest{
			args:       publish,
			wantErr:    core.ErrLoginRequired,
			wantErrOut: []string{"Your session has expired. Please log in again."},
		})
		assert.Equal(t, 0, fx.api.Count(http.MethodPost, "/announcements"))
	})

	t.Run("expired token", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Dir(fx.tokens.Path()), 0o700))
		require.NoError(t, os.WriteFile(fx.tokens.Path(), []byte(fx.api.IssueToken(fx.adminID, -time.Hour)), 0o600))

		checkRun(t, fx, cliTest{args: publish, wantErr: core.ErrLoginRequired})
		assert.Equal(t, 0, fx.api.Count(http.MethodPost, "/announcements"))
	})

	fx.login(t)

	tests := []cliTest{
		{
			name:       "publish",
			args:       publish,
			wantOut:    []string{"Exams", "students", "Admin", "2030-06-30"},
			wantErrOut: []string{"✔ Announcement created."},
		},
		{
			name:       "invalid",
			args:       []string{"announcements", "create", "--title", "Meeting", "--content", "Staff room.", "--audience", "parents"},
			wantErrStr: "please correct the highlighted fields",
			wantErrOut: []string{"audience is not a valid option"},
		},
		{
			name:       "for lecturers",
			args:       []string{"ann", "publish", "--title", "Meeting", "--content", "Staff room.", "--audience", "lecturers"},
			wantErrOut: []string{"✔ Announcement created."},
		},
		{name: "list", args: []string{"announcements", "list"}, wantOut: []string{"Exams", "Meeting", "never"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkRun(t, fx, tt)
		})
	}
	assert.Equal(t, 2, fx.api.Count(http.MethodPost, "/announcements"))

	t.Run("visible to students", func(t *testing.T) {
		require.NoError(t, fx.run("", "announcements", "list", "--audience", "students", "-o", "json"))
		var anns []announcement.Announcement
		require.NoError(t, json.Unmarshal(fx.out.Bytes(), &anns))
		require.Len(t, anns, 1)
		assert.Equal(t, "Exams", anns[0].Title)
		assert.Equal(t, fx.adminID, anns[0].Author.ID())
	})

	t.Run("edit and delete", func(t *testing.T) {
		require.NoError(t, fx.run("", "announcements", "list", "--audience", "students", "-o", "json"))
		var anns []announcement.Announcement
		require.NoError(t, json.Unmarshal(fx.out.Bytes(), &anns))
		require.Len(t, anns, 1)
		id := anns[0].ID

		checkRun(t, fx, cliTest{
			args:       []string{"announcements", "edit", id, "--expires-at", "", "--audience", "all"},
			input:      "yes\n",
			wantOut:    []string{"never"},
			wantErrOut: []string{"-expiresAt: ", "+audience: all", "✔ Announcement updated."},
		})
		assert.Equal(t, fx.adminID, fx.api.AnnouncementAuthor(id))

		checkRun(t, fx, cliTest{args: []string{"announcements", "delete", id, "-y"}, wantErrOut: []string{"✔ Announcement deleted."}})
		assert.Empty(t, fx.api.AnnouncementAuthor(id))
	})
}
