package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-account-service/internal/model"
)

const userColumns = `id, full_name, username, email, password_hash, phone, address,
	gender, dob, avatar_url, role, is_verified,
	verification_code, verification_code_expires_at,
	reset_code, reset_code_expires_at,
	last_login_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.PasswordHash,
		&u.Phone, &u.Address, &u.Gender, &u.DateOfBirth, &u.AvatarURL, &u.Role,
		&u.IsVerified, &u.VerificationCode, &u.VerificationCodeExpiresAt,
		&u.ResetCode, &u.ResetCodeExpiresAt, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, full_name, username, email, password_hash, role,
		                    verification_code, verification_code_expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.FullName, u.Username, u.Email, u.PasswordHash, u.Role,
		u.VerificationCode, u.VerificationCodeExpiresAt, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return model.ErrEmailTaken
			}
			return model.ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email)))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// ExistsByUsername reports whether another user already holds the username.
// excludeID may be empty to consider all users.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(username) = lower($1) AND id::text <> $2)`,
		strings.TrimSpace(username), excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

// ConsumeVerificationCode marks the matching user verified and clears the code
// in one statement, so a code can never be replayed.
func (r *UserRepository) ConsumeVerificationCode(ctx context.Context, code string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET is_verified = TRUE,
		     verification_code = NULL,
		     verification_code_expires_at = NULL,
		     updated_at = now()
		 WHERE verification_code = $1 AND verification_code_expires_at > now()
		 RETURNING `+userColumns, code))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrCodeInvalidOrExpired
	}
	if err != nil {
		return model.User{}, fmt.Errorf("consume verification code: %w", err)
	}
	return u, nil
}

// SetResetCode stores a fresh reset code, replacing any outstanding one.
func (r *UserRepository) SetResetCode(ctx context.Context, userID string, code string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET reset_code = $2, reset_code_expires_at = $3, updated_at = now() WHERE id = $1`,
		userID, code, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// ConsumeResetCode swaps in the new password hash and clears the reset code in
// one statement.
func (r *UserRepository) ConsumeResetCode(ctx context.Context, code string, passwordHash string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET password_hash = $2,
		     reset_code = NULL,
		     reset_code_expires_at = NULL,
		     updated_at = now()
		 WHERE reset_code = $1 AND reset_code_expires_at > now()
		 RETURNING `+userColumns, code, passwordHash))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrCodeInvalidOrExpired
	}
	if err != nil {
		return model.User{}, fmt.Errorf("consume reset code: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login_at = $2, updated_at = now() WHERE id = $1`,
		userID, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u model.User) (model.User, error) {
	updated, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET full_name = $2, username = $3, email = $4, phone = $5,
		     address = $6, gender = $7, dob = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		u.ID, u.FullName, u.Username, u.Email, u.Phone, u.Address, u.Gender, u.DateOfBirth))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return model.User{}, model.ErrEmailTaken
			}
			return model.User{}, model.ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID string, avatarURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $2, updated_at = now() WHERE id = $1`,
		userID, avatarURL)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
