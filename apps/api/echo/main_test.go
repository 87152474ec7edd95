package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/masomo-dashboard/apps/api/echo"
	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	"github.com/trezcool/masomo-dashboard/core/student"
	"github.com/trezcool/masomo-dashboard/core/user"
	emailsvc "github.com/trezcool/masomo-dashboard/services/email"
	inmemdb "github.com/trezcool/masomo-dashboard/storage/database/inmem"
	testutil "github.com/trezcool/masomo-dashboard/tests"
)

const testPwd = "Tr0ub4dor&3"

var (
	conf    *core.Config
	app     Server
	usrRepo user.Repository
)

func TestMain(m *testing.M) {
	conf = core.NewTestConfig()

	// set up DB & repos
	db := inmemdb.Open(inmemdb.WithStudents(inmemdb.SeedStudents()...))
	usrRepo = inmemdb.NewUserRepository(db)

	// set up services
	validate := testutil.NewValidator()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	// set up server
	app = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testutil.NewLogger(),
		StudentSvc: student.NewService(inmemdb.NewStudentRepository(db), conf.Latency),
		UserSvc:    user.NewService(usrRepo, mailSvc, conf, validate),
		Validate:   validate,
		Translator: core.NewTranslator(),
	})

	os.Exit(m.Run())
}

// page is the decoded body of a rendered page or redirect.
type page struct {
	Path     string              `json:"path"`
	Redirect string              `json:"redirect"`
	Shell    dashboard.ShellView `json:"shell"`
	Notices  []dashboard.Notice  `json:"notices"`
	Token    string              `json:"token"`
	View     json.RawMessage     `json:"view"`
}

type httpTest struct {
	name         string
	method       string
	path         string
	body         interface{}
	token        string
	wantCode     int
	wantRedirect string
	wantNotices  []string
}

func newAuthRequest(method, path, token string, data ...interface{}) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 && data[0] != nil {
		_ = json.NewEncoder(&body).Encode(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func serve(t *testing.T, tt httpTest) (page, *httptest.ResponseRecorder) {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)

	var pg page
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pg), rec.Body.String())
	}
	return pg, rec
}

func checkPage(t *testing.T, tt httpTest, pg page, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	assert.Equal(t, tt.wantRedirect, rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, tt.wantRedirect, pg.Redirect)

	descs := make([]string, 0, len(pg.Notices))
	for _, n := range pg.Notices {
		descs = append(descs, n.Description)
	}
	if tt.wantNotices == nil {
		tt.wantNotices = []string{}
	}
	assert.Equal(t, tt.wantNotices, descs)
}

func decodeView(t *testing.T, pg page, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(pg.View, v), string(pg.View))
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

// signIn returns a token for a fresh account.
func signIn(t *testing.T, email string) string {
	t.Helper()
	testutil.CreateUser(t, usrRepo, email, testPwd, true)
	pg, rec := serve(t, httpTest{
		method: http.MethodPost,
		path:   "/login",
		body:   dashboard.Credentials{Email: email, Password: testPwd},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.NotEmpty(t, pg.Token)
	return pg.Token
}
