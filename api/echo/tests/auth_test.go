package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core/user"
	emailsvc "github.com/trezcool/alama/services/email"
)

func Test_AuthAPI_register(t *testing.T) {
	env := setup(t)

	env.createUser(t, "Jane", "Dupe", "taken@test.cd", user.RoleTeacher, "", "S3cretW0rd")

	path := "/auth/register"
	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			wantData: fieldErrData(t, map[string]string{
				"firstName":       "this field is required",
				"lastName":        "this field is required",
				"email":           "this field is required",
				"role":            "this field is required",
				"password":        "this field is required",
				"passwordConfirm": "this field is required",
			}),
		},
		{
			name: "duplicate email", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body: []byte(`{"firstName":"John","lastName":"Doe","email":"taken@test.cd","role":"teacher",` +
				`"password":"S3cretW0rd","passwordConfirm":"S3cretW0rd"}`),
			wantData: fieldErrData(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "student requires level", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body: []byte(`{"firstName":"John","lastName":"Doe","email":"jdoe@test.cd","role":"student",` +
				`"password":"S3cretW0rd","passwordConfirm":"S3cretW0rd"}`),
			wantData: fieldErrData(t, map[string]string{"level": "students must have a level"}),
		},
		{
			name: "teacher cannot have level", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body: []byte(`{"firstName":"John","lastName":"Doe","email":"jdoe@test.cd","role":"teacher","level":"Level 3",` +
				`"password":"S3cretW0rd","passwordConfirm":"S3cretW0rd"}`),
			wantData: fieldErrData(t, map[string]string{"level": "only students may have a level"}),
		},
		{
			name: "invalid role", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body: []byte(`{"firstName":"John","lastName":"Doe","email":"jdoe@test.cd","role":"principal",` +
				`"password":"S3cretW0rd","passwordConfirm":"S3cretW0rd"}`),
			wantData: fieldErrData(t, map[string]string{"role": "invalid role"}),
		},
		{
			name: "invalid level", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body: []byte(`{"firstName":"John","lastName":"Doe","email":"jdoe@test.cd","role":"student","level":"Level 9",` +
				`"password":"S3cretW0rd","passwordConfirm":"S3cretW0rd"}`),
			wantData: fieldErrData(t, map[string]string{"level": "invalid level"}),
		},
		{
			name: "password mismatch", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body: []byte(`{"firstName":"John","lastName":"Doe","email":"jdoe@test.cd","role":"teacher",` +
				`"password":"S3cretW0rd","passwordConfirm":"S3cretW0rdz"}`),
			wantData: fieldErrData(t, map[string]string{"passwordConfirm": "passwordConfirm must be equal to Password"}),
		},
		{
			name: "all numeric password", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body: []byte(`{"firstName":"John","lastName":"Doe","email":"jdoe@test.cd","role":"teacher",` +
				`"password":"1234567890","passwordConfirm":"1234567890"}`),
			wantData: fieldErrData(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "password similar to email", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body: []byte(`{"firstName":"John","lastName":"Doe","email":"jdoe@test.cd","role":"teacher",` +
				`"password":"jdoe@test.cd1","passwordConfirm":"jdoe@test.cd1"}`),
			wantData: fieldErrData(t, map[string]string{"password": "password cannot be similar to user attributes"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("register teacher ok", func(t *testing.T) {
		body := []byte(`{"firstName":"John","lastName":"Doe","email":"JDoe@test.cd","role":"teacher",` +
			`"password":"S3cretW0rd","passwordConfirm":"S3cretW0rd"}`)
		req, rec := newRequest(http.MethodPost, path, body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, "jdoe@test.cd", usr.Email) // cleaned & lowered
		assert.Equal(t, user.RoleTeacher, usr.Role)
		assert.Empty(t, usr.Level)
		assert.True(t, usr.IsActive)
	})

	t.Run("register student ok", func(t *testing.T) {
		body := []byte(`{"firstName":"Ali","lastName":"Kali","email":"akali@test.cd","role":"student","level":"Level 3",` +
			`"password":"S3cretW0rd","passwordConfirm":"S3cretW0rd"}`)
		req, rec := newRequest(http.MethodPost, path, body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.Equal(t, "Level 3", usr.Level)
	})
}

func Test_AuthAPI_login(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "John", "Doe", "jdoe@test.cd", user.RoleTeacher, "", "S3cretW0rd")
	deactivated := env.createUser(t, "Jane", "Gone", "jgone@test.cd", user.RoleTeacher, "", "S3cretW0rd")
	deactivated.IsActive = false
	if _, err := env.usrRepo.UpdateUser(context.Background(), deactivated); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}

	path := "/auth/login"
	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			wantData: fieldErrData(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body:     []byte(`{"email":"nobody@test.cd","password":"S3cretW0rd"}`),
			wantData: marchallObj(t, httpErr{Message: "authentication failed"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: path, wantCode: http.StatusBadRequest,
			body:     []byte(`{"email":"jdoe@test.cd","password":"nope"}`),
			wantData: marchallObj(t, httpErr{Message: "authentication failed"}),
		},
		{
			name: "deactivated account", method: http.MethodPost, path: path, wantCode: http.StatusForbidden,
			body:     []byte(`{"email":"jgone@test.cd","password":"S3cretW0rd"}`),
			wantData: marchallObj(t, httpErr{Message: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, []byte(`{"email":"JDoe@test.cd","password":"S3cretW0rd"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		// lastLogin is set
		refreshed, err := env.usrRepo.GetUserByID(context.Background(), usr.ID)
		require.NoError(t, err)
		assert.False(t, refreshed.LastLogin.IsZero())
	})
}

func Test_AuthAPI_me(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "John", "Doe", "jdoe@test.cd", user.RoleTeacher, "", "S3cretW0rd")

	tests := []httpTest{
		{
			name: "no token", method: http.MethodGet, path: "/auth/me",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "ok", method: http.MethodGet, path: "/auth/me", token: getToken(t, usr),
			wantCode: http.StatusOK, wantData: marchallObj(t, usr),
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

func Test_AuthAPI_passwordReset(t *testing.T) {
	env := setup(t)

	env.createUser(t, "John", "Doe", "jdoe@test.cd", user.RoleTeacher, "", "S3cretW0rd")

	successMsg := "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."

	t.Run("forgot-password: known email sends mail", func(t *testing.T) {
		sentBefore := len(emailsvc.SentMessages)
		req, rec := newRequest(http.MethodPost, "/auth/forgot-password", []byte(`{"email":"jdoe@test.cd"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marchallObj(t, httpErr{Message: successMsg}))
		require.NoError(t, err)
		assert.True(t, ok)
		require.Greater(t, len(emailsvc.SentMessages), sentBefore)
		last := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		assert.Equal(t, "Password Reset", last.Subject)
		assert.Contains(t, last.TextContent, "/password-reset/")
	})

	t.Run("forgot-password: unknown email does not leak", func(t *testing.T) {
		sentBefore := len(emailsvc.SentMessages)
		req, rec := newRequest(http.MethodPost, "/auth/forgot-password", []byte(`{"email":"nobody@test.cd"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, sentBefore, len(emailsvc.SentMessages))
	})

	tests := []httpTest{
		{
			name: "forgot-password: invalid email", method: http.MethodPost, path: "/auth/forgot-password",
			body: []byte(`{"email":"lol"}`), wantCode: http.StatusBadRequest,
			wantData: fieldErrData(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "reset-password: missing fields", method: http.MethodPost, path: "/auth/reset-password",
			wantCode: http.StatusBadRequest,
			wantData: fieldErrData(t, map[string]string{
				"token":           "this field is required",
				"uid":             "this field is required",
				"password":        "this field is required",
				"passwordConfirm": "this field is required",
			}),
		},
		{
			name: "reset-password: invalid uid", method: http.MethodPost, path: "/auth/reset-password",
			body: []byte(`{"token":"sometoken","uid":"%%%","password":"NewS3cret","passwordConfirm":"NewS3cret"}`),
			wantCode: http.StatusBadRequest,
			wantData: fieldErrData(t, map[string]string{"uid": "invalid token"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
