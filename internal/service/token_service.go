package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-account-service/internal/model"
)

// TokenService mints and verifies the access/refresh token pair. Access and
// refresh tokens are signed with distinct secrets so compromise of one does
// not compromise the other. Access tokens are never persisted; validity is
// signature plus expiry alone.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration) (*TokenService, error) {
	if strings.TrimSpace(accessSecret) == "" {
		return nil, errors.New("access token secret is required")
	}
	if strings.TrimSpace(refreshSecret) == "" {
		return nil, errors.New("refresh token secret is required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) IssuePair(userID string, email string) (string, string, error) {
	accessToken, err := s.IssueAccess(userID, email)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := signToken(s.refreshSecret, userID, email, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func (s *TokenService) IssueAccess(userID string, email string) (string, error) {
	accessToken, err := signToken(s.accessSecret, userID, email, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return accessToken, nil
}

func (s *TokenService) VerifyAccess(tokenString string) (*model.TokenClaims, error) {
	return verifyToken(s.accessSecret, tokenString)
}

func (s *TokenService) VerifyRefresh(tokenString string) (*model.TokenClaims, error) {
	return verifyToken(s.refreshSecret, tokenString)
}

// The jti claim makes every issued token unique, so a re-login always
// supersedes the previous refresh token in the session registry.
func signToken(secret []byte, userID string, email string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

func verifyToken(secret []byte, tokenString string) (*model.TokenClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrTokenInvalid
		}
		return secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, model.ErrTokenExpired
	}
	if err != nil || !parsed.Valid {
		return nil, model.ErrTokenInvalid
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrTokenInvalid
	}

	claims := &model.TokenClaims{}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Email, _ = claimsMap["email"].(string)

	if claims.UserID == "" {
		return nil, model.ErrTokenInvalid
	}

	return claims, nil
}
