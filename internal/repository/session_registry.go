package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"go-account-service/internal/model"
)

const refreshTokenKeyPrefix = "refresh_token:"

// SessionRegistry holds the single currently-valid refresh token per user in
// Redis. Storing a new token for the same user overwrites the previous entry,
// which is the sole revocation mechanism for superseded refresh tokens.
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{client: client, ttl: ttl}
}

func (r *SessionRegistry) key(userID string) string {
	return refreshTokenKeyPrefix + userID
}

func (r *SessionRegistry) Store(ctx context.Context, userID string, refreshToken string) error {
	if err := r.client.Set(ctx, r.key(userID), refreshToken, r.ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (r *SessionRegistry) Lookup(ctx context.Context, userID string) (string, error) {
	value, err := r.client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup refresh token: %w", err)
	}
	return value, nil
}

// Revoke removes the entry and reports whether one existed.
func (r *SessionRegistry) Revoke(ctx context.Context, userID string) (bool, error) {
	removed, err := r.client.Del(ctx, r.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}
	return removed > 0, nil
}
