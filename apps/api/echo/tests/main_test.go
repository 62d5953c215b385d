package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	. "sekolahku/apps/api/echo"
	"sekolahku/core"
	"sekolahku/core/checklist"
	"sekolahku/core/grade"
	"sekolahku/core/student"
	"sekolahku/core/subject"
	"sekolahku/core/user"
	emailsvc "sekolahku/services/email"
	inmemdb "sekolahku/storage/database/inmem"
	testutil "sekolahku/tests"
)

var (
	app     Server
	usrRepo user.Repository
	stdRepo student.Repository
	subRepo subject.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	// raw error bodies would leak internals and make assertions flaky
	core.Conf.Debug = false
	core.Conf.TestMode = true

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		fmt.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}
	if err = inmemdb.Seed(db); err != nil {
		fmt.Printf("inmemdb.Seed(): %v", err)
		os.Exit(1)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	stdRepo = inmemdb.NewStudentRepository(db)
	subRepo = inmemdb.NewSubjectRepository(db)
	grdRepo := inmemdb.NewGradeRepository(db)
	chkRepo := inmemdb.NewChecklistRepository(db)

	// set up server
	app = NewServer(&Options{
		DisableReqLogs: true,
		UserSvc:        user.NewServiceMock(usrRepo, emailsvc.NewConsoleServiceMock()),
		StudentSvc:     student.NewService(stdRepo),
		SubjectSvc:     subject.NewService(subRepo),
		GradeSvc:       grade.NewService(grdRepo, stdRepo, subRepo, grade.DefaultScorePolicy),
		ChecklistSvc:   checklist.NewService(chkRepo),
		Logger:         testutil.NopLogger{},
		Shutdown:       func() {},
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getUser(t *testing.T, uname string) user.User {
	t.Helper()

	usr, err := usrRepo.GetUserByUsername(context.Background(), uname)
	if err != nil {
		t.Fatalf("getUser(%s): %v", uname, err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := GetPrincipalClaims(usr.Principal())
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarchallAs(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarchallAs(): %v; body: %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body: %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
