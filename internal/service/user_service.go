package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-account-service/internal/model"
	"go-account-service/pkg/apierror"
)

// ObjectStore holds avatar images. Upload returns the public URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type UserService struct {
	users    UserStore
	sessions SessionStore
	objects  ObjectStore
	mailer   Mailer
}

func NewUserService(users UserStore, sessions SessionStore, objects ObjectStore, mailer Mailer) *UserService {
	return &UserService{users: users, sessions: sessions, objects: objects, mailer: mailer}
}

func (s *UserService) GetDetails(ctx context.Context, userID string) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err == model.ErrUserNotFound {
		return model.Profile{}, apierror.BadRequest("user not found")
	}
	if err != nil {
		return model.Profile{}, apierror.Dependency("could not look up user", err)
	}
	return user.Profile(), nil
}

func (s *UserService) UpdateDetails(ctx context.Context, userID string, req model.UpdateDetailsRequest) (model.Profile, error) {
	fullName := strings.TrimSpace(req.FullName)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)

	if fullName == "" || username == "" || email == "" {
		return model.Profile{}, apierror.BadRequest("full name, username and email are required")
	}

	current, err := s.users.FindByID(ctx, userID)
	if err == model.ErrUserNotFound {
		return model.Profile{}, apierror.NotFound("user not found")
	}
	if err != nil {
		return model.Profile{}, apierror.Dependency("could not look up user", err)
	}

	if !strings.EqualFold(username, current.Username) {
		taken, err := s.users.ExistsByUsername(ctx, username, userID)
		if err != nil {
			return model.Profile{}, apierror.Dependency("could not check username", err)
		}
		if taken {
			return model.Profile{}, apierror.BadRequest("username already taken")
		}
	}

	current.FullName = fullName
	current.Username = username
	current.Email = email
	current.Phone = strings.TrimSpace(req.Phone)
	current.Address = strings.TrimSpace(req.Address)
	current.Gender = strings.TrimSpace(req.Gender)
	current.DateOfBirth = strings.TrimSpace(req.DateOfBirth)

	updated, err := s.users.UpdateProfile(ctx, current)
	if err != nil {
		switch err {
		case model.ErrUserNotFound:
			return model.Profile{}, apierror.NotFound("user not found")
		case model.ErrEmailTaken:
			return model.Profile{}, apierror.BadRequest("user with this email already exists")
		case model.ErrUsernameTaken:
			return model.Profile{}, apierror.BadRequest("username already taken")
		}
		return model.Profile{}, apierror.Dependency("could not update user", err)
	}

	return updated.Profile(), nil
}

// UpdatePassword changes the password of an authenticated user. The current
// password must be presented and verified first.
func (s *UserService) UpdatePassword(ctx context.Context, userID string, currentPassword string, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apierror.BadRequest("current and new password are required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err == model.ErrUserNotFound {
		return apierror.BadRequest("user not found")
	}
	if err != nil {
		return apierror.Dependency("could not look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apierror.BadRequest("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return apierror.Dependency("could not update password", err)
	}

	if err := s.mailer.SendPasswordResetSuccess(ctx, user.Email); err != nil {
		slog.Warn("password change email failed", "user_id", user.ID, "error", err)
	}

	return nil
}

// UpdateAvatar normalizes the uploaded image, stores it under a per-user key
// and records the resulting URL.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, upload io.Reader) (string, error) {
	normalized, err := normalizeAvatar(upload, avatarMaxEdge)
	if err != nil {
		return "", apierror.BadRequest("uploaded file is not a supported image")
	}

	url, err := s.objects.Upload(ctx, avatarKey(userID), "image/jpeg", bytes.NewReader(normalized))
	if err != nil {
		return "", apierror.Dependency("could not upload avatar", err)
	}

	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		if err == model.ErrUserNotFound {
			return "", apierror.NotFound("user not found")
		}
		return "", apierror.Dependency("could not update avatar", err)
	}

	return url, nil
}

// DeleteAccount removes the avatar object, the user row and the session
// registry entry. A failed avatar delete does not block account deletion.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err == model.ErrUserNotFound {
		return apierror.NotFound("user not found")
	}
	if err != nil {
		return apierror.Dependency("could not look up user", err)
	}

	if user.AvatarURL != "" {
		if err := s.objects.Delete(ctx, avatarKey(userID)); err != nil {
			slog.Warn("avatar delete failed", "user_id", userID, "error", err)
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return apierror.Dependency("could not delete user", err)
	}

	if _, err := s.sessions.Revoke(ctx, userID); err != nil {
		slog.Warn("session revoke failed", "user_id", userID, "error", err)
	}

	return nil
}

func avatarKey(userID string) string {
	return "avatars/" + userID + ".jpg"
}
