package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	authgate "github.com/mwhitlock/authgate"
	"github.com/mwhitlock/authgate/middleware"
)

type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *codeMailer) record(email, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
}

func (m *codeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.record(email, code)
	return nil
}

func (m *codeMailer) SendResetCode(_ context.Context, email, code string) error {
	m.record(email, code)
	return nil
}

func (m *codeMailer) last(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

func newTestServer(t *testing.T, mutate func(*authgate.Config)) (*httptest.Server, *codeMailer) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := authgate.DefaultConfig()
	cfg.Token.PrivateKey = []byte("unit-test-secret-32-bytes-long!!")
	if mutate != nil {
		mutate(&cfg)
	}

	mailer := &codeMailer{}
	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithRepository(authgate.NewMemoryRepository()).
		WithMailer(mailer).
		WithLogger(log.New(io.Discard, "", 0)).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	mux := http.NewServeMux()
	mux.Handle("/auth/", NewHandler(engine, Config{BasePath: "/auth"}))
	mux.Handle("/me", middleware.Authenticate(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, _ := middleware.AuthResultFromContext(r.Context())
		writeJSON(w, http.StatusOK, res)
	})))
	mux.Handle("/admin", middleware.Authenticate(engine)(middleware.RequireRoles("admin")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, mailer
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestRegisterLoginProtectedRoute(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter4242",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered struct {
		User authgate.PublicIdentity `json:"user"`
	}
	decodeBody(t, resp, &registered)
	require.NotEmpty(t, registered.User.ID)
	require.Equal(t, "user", registered.User.Role)
	require.False(t, registered.User.Verified)

	resp = postJSON(t, server.URL+"/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter4242",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login authgate.LoginResult
	decodeBody(t, resp, &login)
	require.NotEmpty(t, login.Token)
	require.Empty(t, login.SessionID)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)

	me, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer me.Body.Close()
	require.Equal(t, http.StatusOK, me.StatusCode)

	var auth authgate.AuthResult
	require.NoError(t, json.NewDecoder(me.Body).Decode(&auth))
	require.Equal(t, registered.User.ID, auth.IdentityID)
}

func TestRoleGatedRoute(t *testing.T) {
	server, _ := newTestServer(t, nil)

	login := func(email, password, role string) string {
		resp := postJSON(t, server.URL+"/auth/register", map[string]string{
			"email": email, "password": password, "role": role,
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = postJSON(t, server.URL+"/auth/login", map[string]string{
			"email": email, "password": password,
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result authgate.LoginResult
		decodeBody(t, resp, &result)
		return result.Token
	}

	adminToken := login("root@example.com", "hunter4242", "admin")
	userToken := login("alice@example.com", "hunter4242", "user")

	get := func(token string) int {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/admin", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusOK, get(adminToken))
	require.Equal(t, http.StatusForbidden, get(userToken))
	require.Equal(t, http.StatusUnauthorized, get(""))
}

func TestStatusCodeTable(t *testing.T) {
	server, _ := newTestServer(t, nil)

	register := postJSON(t, server.URL+"/auth/register", map[string]string{
		"email": "alice@example.com", "password": "hunter4242",
	}, nil)
	require.Equal(t, http.StatusCreated, register.StatusCode)

	tests := []struct {
		name string
		path string
		body map[string]string
		want int
	}{
		{
			"duplicate email conflicts",
			"/auth/register",
			map[string]string{"email": "alice@example.com", "password": "other9pass"},
			http.StatusConflict,
		},
		{
			"weak password rejected",
			"/auth/register",
			map[string]string{"email": "bob@example.com", "password": "a1"},
			http.StatusBadRequest,
		},
		{
			"wrong password unauthorized",
			"/auth/login",
			map[string]string{"email": "alice@example.com", "password": "wrong4242"},
			http.StatusUnauthorized,
		},
		{
			"unknown login unauthorized",
			"/auth/login",
			map[string]string{"email": "ghost@example.com", "password": "hunter4242"},
			http.StatusUnauthorized,
		},
		{
			"send code to unknown email not found",
			"/auth/send-verification-otp",
			map[string]string{"email": "ghost@example.com"},
			http.StatusNotFound,
		},
		{
			"wrong verification code invalid",
			"/auth/verify-email",
			map[string]string{"email": "alice@example.com", "otp": "000000"},
			http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+tc.path, tc.body, nil)
			require.Equal(t, tc.want, resp.StatusCode)

			var body errorBody
			decodeBody(t, resp, &body)
			require.NotEmpty(t, body.Error)
		})
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, err := http.Post(server.URL+"/auth/register", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyAndResetFlows(t *testing.T) {
	server, mailer := newTestServer(t, nil)

	resp := postJSON(t, server.URL+"/auth/register", map[string]string{
		"email": "alice@example.com", "password": "hunter4242",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, server.URL+"/auth/send-verification-otp", map[string]string{
		"email": "alice@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, server.URL+"/auth/verify-email", map[string]string{
		"email": "alice@example.com", "otp": mailer.last("alice@example.com"),
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, server.URL+"/auth/send-forgot-otp", map[string]string{
		"email": "alice@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, server.URL+"/auth/reset-password", map[string]string{
		"email": "alice@example.com", "otp": mailer.last("alice@example.com"), "newPassword": "newsecret99",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, server.URL+"/auth/login", map[string]string{
		"email": "alice@example.com", "password": "hunter4242",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, server.URL+"/auth/login", map[string]string{
		"email": "alice@example.com", "password": "newsecret99",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionModeSetsCookie(t *testing.T) {
	server, _ := newTestServer(t, func(cfg *authgate.Config) {
		cfg.Mode = authgate.ModeSession
	})

	resp := postJSON(t, server.URL+"/auth/register", map[string]string{
		"email": "alice@example.com", "password": "hunter4242",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, server.URL+"/auth/login", map[string]string{
		"email": "alice@example.com", "password": "hunter4242",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "authgate_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "expected session cookie")
	require.True(t, cookie.HttpOnly)
	require.NotEmpty(t, cookie.Value)

	// The cookie alone authenticates a protected route.
	req, err := http.NewRequest(http.MethodGet, server.URL+"/me", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	me, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer me.Body.Close()
	require.Equal(t, http.StatusOK, me.StatusCode)

	// Logout destroys the record and clears the cookie.
	resp = postJSON(t, server.URL+"/auth/logout", nil, map[string]string{
		"Cookie": cookie.String(),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	again, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer again.Body.Close()
	require.Equal(t, http.StatusUnauthorized, again.StatusCode)
}

func TestRateLimitReturns429(t *testing.T) {
	server, _ := newTestServer(t, func(cfg *authgate.Config) {
		cfg.RateLimit.Login = authgate.RouteLimit{Window: time.Minute, Max: 2}
	})

	body := map[string]string{"email": "ghost@example.com", "password": "hunter4242"}
	for i := 0; i < 2; i++ {
		resp := postJSON(t, server.URL+"/auth/login", body, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := postJSON(t, server.URL+"/auth/login", body, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
