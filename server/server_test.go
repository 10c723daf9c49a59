package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/auth-service/auth"
	"github.com/jrsteele09/auth-service/email"
	"github.com/jrsteele09/auth-service/internal/config"
	"github.com/jrsteele09/auth-service/server"
	"github.com/jrsteele09/auth-service/token"
	"github.com/jrsteele09/auth-service/twofa"
	"github.com/jrsteele09/auth-service/users"
)

const (
	testEmail    = "jane.doe@example.com"
	testPassword = "Passw0rd!"
	testOrigin   = "http://localhost:8000"
)

type testFixture struct {
	codeRepo    *twofa.InMemoryCodeRepo
	emailClient *email.MockClient
	server      *server.Server
}

func setupTestFixture(t *testing.T, env map[string]string) *testFixture {
	t.Helper()

	t.Setenv("AUTH_RATELIMIT__ENABLED", "false")
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.New(config.WithEnvFile(""))
	require.NoError(t, err)

	hasher := users.NewArgon2idHasher(users.WithArgon2Params(64, 1, 1))
	rr := token.NewInMemoryRevokedTokenRepo()
	cr := twofa.NewInMemoryCodeRepo()
	ec := email.NewMockClient()

	signer, err := token.NewHMACSigner("server-test-secret")
	require.NoError(t, err)
	tm, err := token.New(signer, rr)
	require.NoError(t, err)

	svc, err := auth.NewService(auth.Repos{
		Users:         users.NewInMemoryUserRepo(hasher),
		RevokedTokens: rr,
		TwoFACodes:    cr,
	}, tm, ec, hasher)
	require.NoError(t, err)

	srv, err := server.New(cfg, svc)
	require.NoError(t, err)

	return &testFixture{codeRepo: cr, emailClient: ec, server: srv}
}

func (f *testFixture) post(t *testing.T, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec.Result()
}

func (f *testFixture) signup(t *testing.T, requires2FA bool) {
	t.Helper()
	body := `{"email":"` + testEmail + `","password":"` + testPassword + `","requires2FA":` + boolString(requires2FA) + `}`
	resp := f.post(t, server.RouteSignup, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (f *testFixture) login(t *testing.T) *http.Response {
	t.Helper()
	return f.post(t, server.RouteLogin, `{"email":"`+testEmail+`","password":"`+testPassword+`"}`)
}

func (f *testFixture) pendingCode(t *testing.T) (twofa.LoginAttemptID, twofa.Code) {
	t.Helper()
	e, err := users.ParseEmail(testEmail)
	require.NoError(t, err)
	id, code, err := f.codeRepo.GetCode(context.Background(), e)
	require.NoError(t, err)
	return id, code
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == token.DefaultCookieName {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", token.DefaultCookieName)
	return nil
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "created",
			body:       `{"email":"a@example.com","password":"Passw0rd!","requires2FA":false}`,
			wantStatus: http.StatusCreated,
			wantBody:   map[string]any{"message": "User created successfully!"},
		},
		{
			name:       "invalid email",
			body:       `{"email":"not-an-email","password":"Passw0rd!","requires2FA":false}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Invalid credentials"},
		},
		{
			name:       "insecure password",
			body:       `{"email":"a@example.com","password":"password","requires2FA":false}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Invalid credentials"},
		},
		{
			name:       "missing field",
			body:       `{"email":"a@example.com","password":"Passw0rd!"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]any{"error": "Unprocessable request"},
		},
		{
			name:       "wrong type",
			body:       `{"email":"a@example.com","password":"Passw0rd!","requires2FA":"yes"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]any{"error": "Unprocessable request"},
		},
		{
			name:       "not json",
			body:       `email=a@example.com`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]any{"error": "Unprocessable request"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, nil)
			resp := f.post(t, server.RouteSignup, tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			require.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			require.Equal(t, tt.wantBody, decodeBody(t, resp))
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.signup(t, false)

	resp := f.post(t, server.RouteSignup, `{"email":"`+testEmail+`","password":"Other1Pass!","requires2FA":true}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, map[string]any{"error": "User already exists"}, decodeBody(t, resp))
}

func TestConcurrentSignupOneWinner(t *testing.T) {
	f := setupTestFixture(t, nil)
	body := `{"email":"` + testEmail + `","password":"` + testPassword + `","requires2FA":false}`

	const n = 8
	statuses := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses <- f.post(t, server.RouteSignup, body).StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	counts := map[int]int{}
	for s := range statuses {
		counts[s]++
	}
	require.Equal(t, map[int]int{http.StatusCreated: 1, http.StatusConflict: n - 1}, counts)
}

func TestLoginWithout2FA(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.signup(t, false)

	resp := f.login(t)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, decodeBody(t, resp))

	c := sessionCookie(t, resp)
	require.NotEmpty(t, c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)

	verify := f.post(t, server.RouteVerifyToken, `{"token":"`+c.Value+`"}`)
	require.Equal(t, http.StatusOK, verify.StatusCode)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"wrong password", `{"email":"` + testEmail + `","password":"Wr0ngPass!"}`, http.StatusUnauthorized},
		{"unknown user", `{"email":"nobody@example.com","password":"` + testPassword + `"}`, http.StatusUnauthorized},
		{"invalid email", `{"email":"nobody","password":"` + testPassword + `"}`, http.StatusBadRequest},
		{"missing password", `{"email":"` + testEmail + `"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, nil)
			f.signup(t, false)

			resp := f.post(t, server.RouteLogin, tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			require.Empty(t, resp.Cookies())
		})
	}
}

func TestLoginWith2FA(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.signup(t, true)

	resp := f.login(t)
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	require.Empty(t, resp.Cookies())

	body := decodeBody(t, resp)
	require.Equal(t, "2FA required", body["message"])
	id, code := f.pendingCode(t)
	require.Equal(t, id.String(), body["loginAttemptId"])

	e, err := users.ParseEmail(testEmail)
	require.NoError(t, err)
	msg, ok := f.emailClient.Last(e)
	require.True(t, ok)
	require.Contains(t, msg.Content, code.String())

	verifyBody := `{"email":"` + testEmail + `","loginAttemptId":"` + id.String() + `","2FACode":"` + code.String() + `"}`
	verified := f.post(t, server.RouteVerify2FA, verifyBody)
	require.Equal(t, http.StatusOK, verified.StatusCode)
	require.NotEmpty(t, sessionCookie(t, verified).Value)

	// The challenge is single use.
	replay := f.post(t, server.RouteVerify2FA, verifyBody)
	require.Equal(t, http.StatusUnauthorized, replay.StatusCode)
}

func TestVerify2FAWrongCodeKeepsChallenge(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.signup(t, true)
	require.Equal(t, http.StatusPartialContent, f.login(t).StatusCode)
	id, code := f.pendingCode(t)

	wrong := "000000"
	if code.String() == wrong {
		wrong = "111111"
	}
	resp := f.post(t, server.RouteVerify2FA, `{"email":"`+testEmail+`","loginAttemptId":"`+id.String()+`","2FACode":"`+wrong+`"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, map[string]any{"error": "Authorization failure"}, decodeBody(t, resp))

	resp = f.post(t, server.RouteVerify2FA, `{"email":"`+testEmail+`","loginAttemptId":"`+id.String()+`","2FACode":"`+code.String()+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerify2FAMalformed(t *testing.T) {
	f := setupTestFixture(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"bad attempt id", `{"email":"` + testEmail + `","loginAttemptId":"nope","2FACode":"123456"}`, http.StatusBadRequest},
		{"bad code", `{"email":"` + testEmail + `","loginAttemptId":"` + twofa.NewLoginAttemptID().String() + `","2FACode":"12ab56"}`, http.StatusBadRequest},
		{"missing code", `{"email":"` + testEmail + `","loginAttemptId":"` + twofa.NewLoginAttemptID().String() + `"}`, http.StatusUnprocessableEntity},
		{"no pending challenge", `{"email":"` + testEmail + `","loginAttemptId":"` + twofa.NewLoginAttemptID().String() + `","2FACode":"123456"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.post(t, server.RouteVerify2FA, tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestLoginEmailFailureIsUnexpected(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.signup(t, true)
	f.emailClient.FailWith(errors.New("smtp down"))

	resp := f.login(t)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, map[string]any{"error": "Unexpected error"}, decodeBody(t, resp))
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.signup(t, false)
	c := sessionCookie(t, f.login(t))

	resp := f.post(t, server.RouteLogout, "", c)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := sessionCookie(t, resp)
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0)

	again := f.post(t, server.RouteLogout, "", c)
	require.Equal(t, http.StatusUnauthorized, again.StatusCode)
	require.Equal(t, map[string]any{"error": "Invalid token"}, decodeBody(t, again))

	verify := f.post(t, server.RouteVerifyToken, `{"token":"`+c.Value+`"}`)
	require.Equal(t, http.StatusUnauthorized, verify.StatusCode)
}

func TestLogoutFailures(t *testing.T) {
	f := setupTestFixture(t, nil)

	resp := f.post(t, server.RouteLogout, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, map[string]any{"error": "Missing token"}, decodeBody(t, resp))

	resp = f.post(t, server.RouteLogout, "", &http.Cookie{Name: token.DefaultCookieName, Value: "not.a.token"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyToken(t *testing.T) {
	f := setupTestFixture(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"garbage", `{"token":"abc.def.ghi"}`, http.StatusUnauthorized},
		{"empty", `{"token":""}`, http.StatusUnauthorized},
		{"missing", `{}`, http.StatusUnprocessableEntity},
		{"not json", `token`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.post(t, server.RouteVerifyToken, tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := setupTestFixture(t, nil)

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteLogin, nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.signup(t, false)

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteHealth, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteMetrics, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(out), `auth_operations_total{operation="signup",outcome="success"} 1`)
	require.Contains(t, string(out), `auth_http_requests_total{code="201",route="/signup"} 1`)
}

func TestRequestID(t *testing.T) {
	f := setupTestFixture(t, nil)
	first := f.post(t, server.RouteVerifyToken, `{}`)
	second := f.post(t, server.RouteVerifyToken, `{}`)

	require.Len(t, first.Header.Get("X-Request-Id"), 26)
	require.NotEqual(t, first.Header.Get("X-Request-Id"), second.Header.Get("X-Request-Id"))
}

func TestCors(t *testing.T) {
	f := setupTestFixture(t, nil)

	t.Run("preflight allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, server.RouteLogin, nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("preflight unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, server.RouteLogin, nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("actual request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, server.RouteVerifyToken, strings.NewReader(`{}`))
		req.Header.Set("Origin", testOrigin)
		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRateLimit(t *testing.T) {
	f := setupTestFixture(t, map[string]string{
		"AUTH_RATELIMIT__ENABLED": "true",
		"AUTH_RATELIMIT__RPS":     "1",
	})

	first := f.post(t, server.RouteVerifyToken, `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, first.StatusCode)

	second := f.post(t, server.RouteVerifyToken, `{}`)
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	require.Equal(t, map[string]any{"error": "Too many requests"}, decodeBody(t, second))

	// Operational routes are never limited.
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteHealth, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t, nil)
	h := server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, f.server.RecoverMiddleware)

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h(rec, httptest.NewRequest(http.MethodPost, server.RouteLogin, nil))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Unexpected error"}`, rec.Body.String())
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := server.New(nil, nil)
	require.Error(t, err)
}
