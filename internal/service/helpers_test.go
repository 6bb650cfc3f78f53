package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
)

type fakeSessionStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{entries: map[string]string{}}
}

func (s *fakeSessionStore) Store(_ context.Context, userID string, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = refreshToken
	return nil
}

func (s *fakeSessionStore) Lookup(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.entries[userID]
	if !ok {
		return "", model.ErrTokenNotFound
	}
	return token, nil
}

func (s *fakeSessionStore) Revoke(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[userID]
	delete(s.entries, userID)
	return ok, nil
}

type fakeMailer struct {
	mu                sync.Mutex
	verificationCodes []string
	welcomeNames      []string
	resetURLs         []string
	resetSuccessTo    []string
	failVerification  bool
	failReset         bool
}

var errMailDown = errors.New("smtp: connection refused")

func (m *fakeMailer) SendVerification(_ context.Context, _ string, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failVerification {
		return errMailDown
	}
	m.verificationCodes = append(m.verificationCodes, code)
	return nil
}

func (m *fakeMailer) SendWelcome(_ context.Context, _ string, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomeNames = append(m.welcomeNames, name)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, _ string, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReset {
		return errMailDown
	}
	m.resetURLs = append(m.resetURLs, resetURL)
	return nil
}

func (m *fakeMailer) SendPasswordResetSuccess(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetSuccessTo = append(m.resetSuccessTo, email)
	return nil
}

func (m *fakeMailer) lastVerificationCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.verificationCodes)
	return m.verificationCodes[len(m.verificationCodes)-1]
}

func (m *fakeMailer) lastResetURL(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.resetURLs)
	return m.resetURLs[len(m.resetURLs)-1]
}

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	deleteErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (s *fakeObjectStore) Upload(_ context.Context, key string, _ string, body io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "http://objects.local/" + key, nil
}

func (s *fakeObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

type authTestKit struct {
	auth     *AuthService
	users    *repository.MemoryUserStore
	sessions *fakeSessionStore
	mailer   *fakeMailer
	tokens   *TokenService
}

func newAuthTestKit(t *testing.T) *authTestKit {
	t.Helper()

	tokens, err := NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)

	users := repository.NewMemoryUserStore()
	sessions := newFakeSessionStore()
	m := &fakeMailer{}

	auth := NewAuthService(users, sessions, tokens, m, "http://localhost:5173", 24*time.Hour, time.Hour)

	return &authTestKit{auth: auth, users: users, sessions: sessions, mailer: m, tokens: tokens}
}
