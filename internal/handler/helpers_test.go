package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"go-account-service/internal/config"
	"go-account-service/internal/handler"
	"go-account-service/internal/middleware"
	"go-account-service/internal/model"
	"go-account-service/internal/repository"
	"go-account-service/internal/router"
	"go-account-service/internal/service"
)

type stubMailer struct {
	mu                sync.Mutex
	verificationCodes []string
	resetURLs         []string
}

func (m *stubMailer) SendVerification(_ context.Context, _ string, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verificationCodes = append(m.verificationCodes, code)
	return nil
}

func (m *stubMailer) SendWelcome(context.Context, string, string) error { return nil }

func (m *stubMailer) SendPasswordReset(_ context.Context, _ string, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetURLs = append(m.resetURLs, resetURL)
	return nil
}

func (m *stubMailer) SendPasswordResetSuccess(context.Context, string) error { return nil }

func (m *stubMailer) lastVerificationCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.verificationCodes)
	return m.verificationCodes[len(m.verificationCodes)-1]
}

func (m *stubMailer) lastResetURL(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.resetURLs)
	return m.resetURLs[len(m.resetURLs)-1]
}

type stubObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{objects: map[string][]byte{}}
}

func (s *stubObjectStore) Upload(_ context.Context, key string, _ string, body io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "http://objects.local/" + key, nil
}

func (s *stubObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type testServer struct {
	handler http.Handler
	users   *repository.MemoryUserStore
	redis   *miniredis.Miniredis
	mailer  *stubMailer
	objects *stubObjectStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	users := repository.NewMemoryUserStore()
	sessions := repository.NewSessionRegistry(redisClient, 168*time.Hour)

	tokens, err := service.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)

	m := &stubMailer{}
	objects := newStubObjectStore()

	authService := service.NewAuthService(users, sessions, tokens, m, "http://localhost:5173", 24*time.Hour, time.Hour)
	userService := service.NewUserService(users, sessions, objects, m)

	cookies := handler.CookieConfig{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 168 * time.Hour,
	}

	cfg := &config.Config{
		RequestTimeout: 10 * time.Second,
		CORSOrigins:    []string{"http://localhost:5173"},
	}

	h := router.New(cfg,
		middleware.NewAuthMiddleware(tokens),
		handler.NewAuthHandler(authService, cookies),
		handler.NewUserHandler(userService, cookies, 5*1024*1024),
	)

	return &testServer{handler: h, users: users, redis: mr, mailer: m, objects: objects}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func (ts *testServer) do(t *testing.T, method string, path string, body any, cookies ...*http.Cookie) (*http.Response, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	resp := rec.Result()
	var parsed apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func (ts *testServer) signUp(t *testing.T, email string, username string, password string) model.Profile {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/api/v1/users/signup", model.SignupRequest{
		FullName: "Test User",
		Username: username,
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var profile model.Profile
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	return profile
}

func (ts *testServer) signIn(t *testing.T, email string, password string) (model.Profile, []*http.Cookie) {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/api/v1/users/signin", model.SigninRequest{
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile model.Profile
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	return profile, resp.Cookies()
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not found", name)
	return nil
}
