package model

import "time"

type User struct {
	ID                        string     `json:"id"`
	FullName                  string     `json:"full_name"`
	Username                  string     `json:"username"`
	Email                     string     `json:"email"`
	PasswordHash              string     `json:"-"`
	Phone                     string     `json:"phone,omitempty"`
	Address                   string     `json:"address,omitempty"`
	Gender                    string     `json:"gender,omitempty"`
	DateOfBirth               string     `json:"dob,omitempty"`
	AvatarURL                 string     `json:"avatar_url,omitempty"`
	Role                      string     `json:"role"`
	IsVerified                bool       `json:"is_verified"`
	VerificationCode          *string    `json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`
	ResetCode                 *string    `json:"-"`
	ResetCodeExpiresAt        *time.Time `json:"-"`
	LastLoginAt               *time.Time `json:"last_login,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

// Profile is the user representation returned to clients. It never carries
// the password hash or any outstanding one-time codes.
type Profile struct {
	ID          string     `json:"id"`
	FullName    string     `json:"full_name"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	DateOfBirth string     `json:"dob,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Role        string     `json:"role"`
	IsVerified  bool       `json:"is_verified"`
	LastLoginAt *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		FullName:    u.FullName,
		Username:    u.Username,
		Email:       u.Email,
		Phone:       u.Phone,
		Address:     u.Address,
		Gender:      u.Gender,
		DateOfBirth: u.DateOfBirth,
		AvatarURL:   u.AvatarURL,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// TokenClaims are the verified claims of an access or refresh token.
type TokenClaims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
}
