package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-account-service/internal/model"
	"go-account-service/pkg/apierror"
)

const bcryptCost = 12

// UserStore is the narrow view of the credential store the services need.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string, excludeID string) (bool, error)
	ConsumeVerificationCode(ctx context.Context, code string) (model.User, error)
	SetResetCode(ctx context.Context, userID string, code string, expiresAt time.Time) error
	ConsumeResetCode(ctx context.Context, code string, passwordHash string) (model.User, error)
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdateProfile(ctx context.Context, u model.User) (model.User, error)
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	UpdateAvatar(ctx context.Context, userID string, avatarURL string) error
	Delete(ctx context.Context, id string) error
}

// SessionStore maps a user id to its single currently-valid refresh token.
type SessionStore interface {
	Store(ctx context.Context, userID string, refreshToken string) error
	Lookup(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, userID string) (bool, error)
}

// Mailer dispatches the transactional account emails.
type Mailer interface {
	SendVerification(ctx context.Context, email string, code string) error
	SendWelcome(ctx context.Context, email string, name string) error
	SendPasswordReset(ctx context.Context, email string, resetURL string) error
	SendPasswordResetSuccess(ctx context.Context, email string) error
}

type AuthService struct {
	users     UserStore
	sessions  SessionStore
	tokens    *TokenService
	mailer    Mailer
	clientURL string

	verificationCodeTTL time.Duration
	resetCodeTTL        time.Duration
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	tokens *TokenService,
	mailer Mailer,
	clientURL string,
	verificationCodeTTL time.Duration,
	resetCodeTTL time.Duration,
) *AuthService {
	if verificationCodeTTL <= 0 {
		verificationCodeTTL = 24 * time.Hour
	}
	if resetCodeTTL <= 0 {
		resetCodeTTL = time.Hour
	}

	return &AuthService{
		users:               users,
		sessions:            sessions,
		tokens:              tokens,
		mailer:              mailer,
		clientURL:           strings.TrimRight(clientURL, "/"),
		verificationCodeTTL: verificationCodeTTL,
		resetCodeTTL:        resetCodeTTL,
	}
}

// SignUp creates an unverified account and emails the verification code.
// The email dispatch is awaited; a failed send fails the signup.
func (s *AuthService) SignUp(ctx context.Context, req model.SignupRequest) (model.Profile, error) {
	fullName := strings.TrimSpace(req.FullName)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)
	password := req.Password

	if fullName == "" || username == "" || email == "" || password == "" {
		return model.Profile{}, apierror.BadRequest("all fields are required")
	}

	emailTaken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.Profile{}, apierror.Dependency("could not check email", err)
	}
	if emailTaken {
		return model.Profile{}, apierror.BadRequest("user with this email already exists")
	}

	usernameTaken, err := s.users.ExistsByUsername(ctx, username, "")
	if err != nil {
		return model.Profile{}, apierror.Dependency("could not check username", err)
	}
	if usernameTaken {
		return model.Profile{}, apierror.BadRequest("user with this username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return model.Profile{}, fmt.Errorf("generate verification code: %w", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.verificationCodeTTL)
	user := model.User{
		ID:                        uuid.NewString(),
		FullName:                  fullName,
		Username:                  username,
		Email:                     email,
		PasswordHash:              string(hash),
		Role:                      "user",
		VerificationCode:          &code,
		VerificationCodeExpiresAt: &expiresAt,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch err {
		case model.ErrEmailTaken:
			return model.Profile{}, apierror.BadRequest("user with this email already exists")
		case model.ErrUsernameTaken:
			return model.Profile{}, apierror.BadRequest("user with this username already exists")
		}
		return model.Profile{}, apierror.Dependency("could not create user", err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, code); err != nil {
		return model.Profile{}, apierror.Dependency("could not send verification email", err)
	}

	return user.Profile(), nil
}

// VerifyEmail consumes a verification code. The code is single-use: the store
// clears it in the same update that marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) (model.Profile, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Profile{}, apierror.BadRequest("verification code is required")
	}

	user, err := s.users.ConsumeVerificationCode(ctx, code)
	if err == model.ErrCodeInvalidOrExpired {
		return model.Profile{}, apierror.BadRequest("invalid or expired verification code")
	}
	if err != nil {
		return model.Profile{}, apierror.Dependency("could not verify email", err)
	}

	// The account is already verified; a failed welcome email is not worth
	// failing the request over.
	if err := s.mailer.SendWelcome(ctx, user.Email, user.FullName); err != nil {
		slog.Warn("welcome email failed", "user_id", user.ID, "error", err)
	}

	return user.Profile(), nil
}

// SignIn verifies credentials and establishes a session. Unknown email and
// wrong password fail with the same message so responses do not reveal which
// accounts exist.
func (s *AuthService) SignIn(ctx context.Context, email string, password string) (model.Profile, string, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err == model.ErrUserNotFound {
		return model.Profile{}, "", "", invalidCredentials()
	}
	if err != nil {
		return model.Profile{}, "", "", apierror.Dependency("could not look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.Profile{}, "", "", invalidCredentials()
	}

	accessToken, refreshToken, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return model.Profile{}, "", "", fmt.Errorf("issue token pair: %w", err)
	}

	if err := s.sessions.Store(ctx, user.ID, refreshToken); err != nil {
		return model.Profile{}, "", "", apierror.Dependency("could not store session", err)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("last login update failed", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	return user.Profile(), accessToken, refreshToken, nil
}

// Refresh mints a new access token against a presented refresh token. The
// registry value must match the presented token exactly; a stale token that
// was superseded by a later sign-in is rejected even though its signature is
// still valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apierror.Unauthorized("no refresh token provided")
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apierror.Unauthorized("invalid refresh token")
	}

	stored, err := s.sessions.Lookup(ctx, claims.UserID)
	if err == model.ErrTokenNotFound {
		return "", apierror.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return "", apierror.Dependency("could not look up session", err)
	}

	if stored != refreshToken {
		return "", apierror.Unauthorized("invalid refresh token")
	}

	accessToken, err := s.tokens.IssueAccess(claims.UserID, claims.Email)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	return accessToken, nil
}

// SignOut revokes the session for the presented refresh token. It is
// idempotent and fails open: a missing or garbage cookie still signs out.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return
	}

	if _, err := s.sessions.Revoke(ctx, claims.UserID); err != nil {
		slog.Warn("session revoke failed", "user_id", claims.UserID, "error", err)
	}
}

// ForgotPassword issues a fresh reset code, replacing any outstanding one,
// and emails a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err == model.ErrUserNotFound {
		return apierror.BadRequest("user not found")
	}
	if err != nil {
		return apierror.Dependency("could not look up user", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	if err := s.users.SetResetCode(ctx, user.ID, code, time.Now().UTC().Add(s.resetCodeTTL)); err != nil {
		return apierror.Dependency("could not store reset code", err)
	}

	resetURL := s.clientURL + "/reset-password/" + code
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		return apierror.Dependency("could not send reset email", err)
	}

	return nil
}

// ResetPassword consumes a reset code and installs the new password in the
// same update.
func (s *AuthService) ResetPassword(ctx context.Context, code string, password string) error {
	code = strings.TrimSpace(code)
	if code == "" || password == "" {
		return apierror.BadRequest("reset token and new password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.ConsumeResetCode(ctx, code, string(hash))
	if err == model.ErrCodeInvalidOrExpired {
		return apierror.BadRequest("invalid or expired reset token")
	}
	if err != nil {
		return apierror.Dependency("could not reset password", err)
	}

	if err := s.mailer.SendPasswordResetSuccess(ctx, user.Email); err != nil {
		slog.Warn("reset success email failed", "user_id", user.ID, "error", err)
	}

	return nil
}

func invalidCredentials() *apierror.APIError {
	return apierror.New("UNAUTHORIZED", "invalid credentials", "", http.StatusBadRequest)
}

// generateVerificationCode returns a 6-digit numeric code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// generateResetCode returns 20 random bytes hex-encoded. The code doubles as
// the lookup key, so it carries enough entropy to make collisions between
// outstanding codes a non-issue.
func generateResetCode() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
