package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-account-service/internal/model"
)

// MemoryUserStore is an in-memory stand-in for UserRepository used by tests.
// It mirrors the SQL semantics, including atomic single-use code consumption.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[string]model.User{}}
}

func (s *MemoryUserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.ErrEmailTaken
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return model.ErrUsernameTaken
		}
	}

	s.users[u.ID] = u
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) ExistsByUsername(_ context.Context, username string, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID != excludeID && strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) ConsumeVerificationCode(_ context.Context, code string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.VerificationCode == nil || *u.VerificationCode != code {
			continue
		}
		if u.VerificationCodeExpiresAt == nil || !u.VerificationCodeExpiresAt.After(time.Now()) {
			continue
		}

		u.IsVerified = true
		u.VerificationCode = nil
		u.VerificationCodeExpiresAt = nil
		u.UpdatedAt = time.Now().UTC()
		s.users[id] = u
		return u, nil
	}
	return model.User{}, model.ErrCodeInvalidOrExpired
}

func (s *MemoryUserStore) SetResetCode(_ context.Context, userID string, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}

	u.ResetCode = &code
	u.ResetCodeExpiresAt = &expiresAt
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return nil
}

func (s *MemoryUserStore) ConsumeResetCode(_ context.Context, code string, passwordHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.ResetCode == nil || *u.ResetCode != code {
			continue
		}
		if u.ResetCodeExpiresAt == nil || !u.ResetCodeExpiresAt.After(time.Now()) {
			continue
		}

		u.PasswordHash = passwordHash
		u.ResetCode = nil
		u.ResetCodeExpiresAt = nil
		u.UpdatedAt = time.Now().UTC()
		s.users[id] = u
		return u, nil
	}
	return model.User{}, model.ErrCodeInvalidOrExpired
}

func (s *MemoryUserStore) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}

	u.LastLoginAt = &at
	s.users[userID] = u
	return nil
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, updated model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[updated.ID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}

	u.FullName = updated.FullName
	u.Username = updated.Username
	u.Email = updated.Email
	u.Phone = updated.Phone
	u.Address = updated.Address
	u.Gender = updated.Gender
	u.DateOfBirth = updated.DateOfBirth
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return nil
}

func (s *MemoryUserStore) UpdateAvatar(_ context.Context, userID string, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}

	u.AvatarURL = avatarURL
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// Seed inserts a user directly, bypassing uniqueness checks. Tests use it to
// arrange fixtures such as expired codes.
func (s *MemoryUserStore) Seed(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}
