package domain

import "errors"

var (
	// ErrUserExists is returned when the username or email is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	// ErrUnavailable wraps transient storage failures.
	ErrUnavailable = errors.New("service unavailable")
)
