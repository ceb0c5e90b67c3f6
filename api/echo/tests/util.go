package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/alama/api/echo"
	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/assessment"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/report"
	"github.com/trezcool/alama/core/user"
	emailsvc "github.com/trezcool/alama/services/email"
	logsvc "github.com/trezcool/alama/services/logger"
	dummydb "github.com/trezcool/alama/storage/database/dummy"
)

var (
	errMissingToken = httpErr{Message: "missing or malformed jwt"}
	errForbidden    = httpErr{Message: "permission denied"}
	errNotFound     = httpErr{Message: "not found"}
)

type testEnv struct {
	server Server

	usrRepo  user.Repository
	crsRepo  course.Repository
	asmtRepo assessment.Repository

	usrSvc  *user.Service
	crsSvc  *course.Service
	asmtSvc *assessment.Service
	rptSvc  *report.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	core.Conf.Debug = false
	core.Conf.TestMode = true

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	asmtRepo := dummydb.NewAssessmentRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(usrRepo, mailSvc)
	crsSvc := course.NewService(crsRepo, usrRepo)
	asmtSvc := assessment.NewService(asmtRepo, crsRepo)
	rptSvc := report.NewService(crsRepo, asmtRepo, usrRepo)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)

	// set up server
	server := NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        usrSvc,
		CourseSvc:      crsSvc,
		AssessmentSvc:  asmtSvc,
		ReportSvc:      rptSvc,
	})

	return &testEnv{
		server:   server,
		usrRepo:  usrRepo,
		crsRepo:  crsRepo,
		asmtRepo: asmtRepo,
		usrSvc:   usrSvc,
		crsSvc:   crsSvc,
		asmtSvc:  asmtSvc,
		rptSvc:   rptSvc,
	}
}

// Fixtures

func (env *testEnv) createUser(t *testing.T, firstName, lastName, email, role, level, pwd string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
		Level:     level,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func (env *testEnv) createCourse(t *testing.T, name, level, teacherID string) course.Course {
	t.Helper()
	now := time.Now().UTC()
	crs, err := env.crsRepo.CreateCourse(context.Background(), course.Course{
		Name:      name,
		Level:     level,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func (env *testEnv) enroll(t *testing.T, courseID string, studentIDs ...string) {
	t.Helper()
	for _, id := range studentIDs {
		if err := env.crsRepo.AddStudent(context.Background(), courseID, id); err != nil {
			t.Fatalf("AddStudent() failed: %v", err)
		}
	}
}

func (env *testEnv) createAssessment(
	t *testing.T, crs course.Course, name, typ string, maxMarks float64,
	academicYear, term string, createdAt time.Time, marks ...assessment.Mark,
) assessment.Assessment {
	t.Helper()
	asmt, err := env.asmtRepo.CreateAssessment(context.Background(), assessment.Assessment{
		CourseID:     crs.ID,
		Name:         name,
		Type:         typ,
		MaxMarks:     maxMarks,
		AcademicYear: academicYear,
		Term:         term,
		Marks:        marks,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	})
	if err != nil {
		t.Fatalf("CreateAssessment() failed: %v", err)
	}
	return asmt
}

// HTTP helpers

type httpErr struct {
	Message string `json:"message"`
}

type fieldErrs struct {
	Message map[string]string `json:"message"`
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

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func mustUnmarshal(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
}

func fieldErrData(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	return marchallObj(t, fieldErrs{Message: fields})
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	t.Helper()
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
