package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/assessment"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/report"
	"github.com/trezcool/alama/core/user"
)

func Test_TeacherAPI_access(t *testing.T) {
	env := setup(t)

	student := env.createUser(t, "Ali", "Kali", "akali@test.cd", user.RoleStudent, core.Level3, "S3cretW0rd")

	tests := []httpTest{
		{
			name: "no token", method: http.MethodGet, path: "/teachers/dashboard",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "student token", method: http.MethodGet, path: "/teachers/dashboard", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_TeacherAPI_dashboard(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "John", "Doe", "jdoe@test.cd", user.RoleTeacher, "", "S3cretW0rd")
	s1 := env.createUser(t, "Ali", "Kali", "akali@test.cd", user.RoleStudent, core.Level3, "S3cretW0rd")
	s2 := env.createUser(t, "Bob", "Loba", "bloba@test.cd", user.RoleStudent, core.Level3, "S3cretW0rd")
	token := getToken(t, teacher)

	math3 := env.createCourse(t, "Mathematics", core.Level3, teacher.ID)
	bio3 := env.createCourse(t, "Biology", core.Level3, teacher.ID)
	chem4 := env.createCourse(t, "Chemistry", core.Level4, teacher.ID)
	env.enroll(t, math3.ID, s1.ID, s2.ID)
	env.enroll(t, bio3.ID, s1.ID) // s1 counted once across the level
	env.createAssessment(t, math3, "Quiz 1", assessment.TypeFormative, 20, "2025-2026", core.Term1, time.Now().UTC())

	t.Run("missing period params", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: fieldErrData(t, map[string]string{
				"academicYear": "academicYear and term are required",
				"term":         "academicYear and term are required",
			}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/teachers/dashboard?academicYear=2025-2026", token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("per-level summary", func(t *testing.T) {
		want := map[string]report.LevelSummary{
			core.Level3: {
				CourseCount:  2,
				StudentCount: 2,
				Courses: []report.CourseSummary{
					{ID: math3.ID, Name: "Mathematics", StudentCount: 2, AssessmentCount: 1},
					{ID: bio3.ID, Name: "Biology", StudentCount: 1, AssessmentCount: 0},
				},
			},
			core.Level4: {
				CourseCount:  1,
				StudentCount: 0,
				Courses:      []report.CourseSummary{{ID: chem4.ID, Name: "Chemistry", StudentCount: 0, AssessmentCount: 0}},
			},
			core.Level5: {Courses: []report.CourseSummary{}},
		}
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}
		req, rec := newAuthRequest(http.MethodGet, "/teachers/dashboard?academicYear=2025-2026&term=1st%20Term", token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("academic info", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, report.CurrentAcademicInfo(time.Now()))}
		req, rec := newAuthRequest(http.MethodGet, "/teachers/academic-info", token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("assignable students", func(t *testing.T) {
		// sorted by last name, first name
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, s1, s2)}
		req, rec := newAuthRequest(http.MethodGet, "/teachers/students", token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_TeacherAPI_courses(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "John", "Doe", "jdoe@test.cd", user.RoleTeacher, "", "S3cretW0rd")
	other := env.createUser(t, "Jane", "Poe", "jpoe@test.cd", user.RoleTeacher, "", "S3cretW0rd")
	s1 := env.createUser(t, "Ali", "Kali", "akali@test.cd", user.RoleStudent, core.Level3, "S3cretW0rd")
	token := getToken(t, teacher)
	otherToken := getToken(t, other)

	t.Run("create course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/teachers/courses", token,
			[]byte(`{"name":"Mathematics","level":"Level 3"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var crs course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crs))
		assert.NotEmpty(t, crs.ID)
		assert.Equal(t, teacher.ID, crs.TeacherID)
	})

	t.Run("create course: invalid level", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: fieldErrData(t, map[string]string{"level": "invalid level"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/teachers/courses", token,
			[]byte(`{"name":"Alchemy","level":"Level 9"}`))
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	crs := env.createCourse(t, "Biology", core.Level3, teacher.ID)

	t.Run("courses by level", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/teachers/courses/Level%204", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())

		var courses []course.Course
		req, rec = newAuthRequest(http.MethodGet, "/teachers/courses/Level%203", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
		require.Len(t, courses, 2) // Mathematics created above + Biology
	})

	t.Run("enroll student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/teachers/courses/"+crs.ID+"/students", token,
			[]byte(`{"studentId":"`+s1.ID+`"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var students []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
		require.Len(t, students, 1)
		assert.Equal(t, s1.ID, students[0].ID)
	})

	t.Run("enroll is idempotent", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/teachers/courses/"+crs.ID+"/students", token,
			[]byte(`{"studentId":"`+s1.ID+`"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var students []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
		require.Len(t, students, 1)
	})

	t.Run("enroll unknown student", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "student not found"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/teachers/courses/"+crs.ID+"/students", token,
			[]byte(`{"studentId":"nope"}`))
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("enroll a teacher", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "student not found"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/teachers/courses/"+crs.ID+"/students", token,
			[]byte(`{"studentId":"`+other.ID+`"}`))
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("other teacher cannot touch the course", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "not authorized to access this course"}),
		}
		req, rec := newAuthRequest(http.MethodDelete, "/teachers/courses/"+crs.ID, otherToken)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unenroll student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/teachers/courses/"+crs.ID+"/students/"+s1.ID, token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		roster, err := env.crsSvc.EnrolledStudents(context.Background(), crs.ID)
		require.NoError(t, err)
		assert.Empty(t, roster)
	})

	t.Run("delete course cascades", func(t *testing.T) {
		env.enroll(t, crs.ID, s1.ID)
		asmt := env.createAssessment(t, crs, "Quiz 1", assessment.TypeFormative, 20, "2025-2026", core.Term1,
			time.Now().UTC(), assessment.Mark{StudentID: s1.ID, Score: 15})

		req, rec := newAuthRequest(http.MethodDelete, "/teachers/courses/"+crs.ID, token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		_, err := env.crsRepo.GetCourseByID(context.Background(), crs.ID)
		assert.Equal(t, course.ErrNotFound, err)
		_, err = env.asmtRepo.GetAssessmentByID(context.Background(), asmt.ID)
		assert.Equal(t, assessment.ErrNotFound, err)
	})

	t.Run("unknown course", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}
		req, rec := newAuthRequest(http.MethodDelete, "/teachers/courses/nope", token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_TeacherAPI_roster(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "John", "Doe", "jdoe@test.cd", user.RoleTeacher, "", "S3cretW0rd")
	s1 := env.createUser(t, "Ali", "Kali", "akali@test.cd", user.RoleStudent, core.Level3, "S3cretW0rd")
	s2 := env.createUser(t, "Bob", "Loba", "bloba@test.cd", user.RoleStudent, core.Level3, "S3cretW0rd")
	s3 := env.createUser(t, "Cat", "Mata", "cmata@test.cd", user.RoleStudent, core.Level3, "S3cretW0rd")
	token := getToken(t, teacher)

	crs := env.createCourse(t, "Mathematics", core.Level3, teacher.ID)
	env.enroll(t, crs.ID, s1.ID, s2.ID, s3.ID)

	now := time.Now().UTC()
	env.createAssessment(t, crs, "Quiz 1", assessment.TypeFormative, 50, "2025-2026", core.Term1, now,
		assessment.Mark{StudentID: s1.ID, Score: 40},
		assessment.Mark{StudentID: s2.ID, Score: 45},
	)
	env.createAssessment(t, crs, "Exam 1", assessment.TypeSummative, 100, "2025-2026", core.Term1, now.Add(time.Minute),
		assessment.Mark{StudentID: s1.ID, Score: 60},
		assessment.Mark{StudentID: s2.ID, Score: 80},
	)

	// weighted averages: s1 = 100/150 = 66.67 (at risk), s2 = 125/150 = 83.33
	// (passing), s3 has no marks (failing).
	want := []report.RosterEntry{
		{Student: s1, Average: 66.67, Status: report.StatusAtRisk, Count: 2},
		{Student: s2, Average: 83.33, Status: report.StatusPassing, Count: 2},
		{Student: s3, Average: 0, Status: report.StatusFailing, Count: 0},
	}
	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}
	req, rec := newAuthRequest(http.MethodGet, "/teachers/courses/"+crs.ID+"/students", token)
	env.server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
