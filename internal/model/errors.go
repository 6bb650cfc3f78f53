package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrTokenNotFound   = errors.New("token not found")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrTokenSuperseded = errors.New("token superseded")

	// One-time code errors
	ErrCodeInvalidOrExpired = errors.New("code invalid or expired")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
