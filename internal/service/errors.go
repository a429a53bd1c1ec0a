package service

import "errors"

// Service-level errors. Handlers map these onto HTTP statuses: validation
// errors to 400, credential problems to 401, missing users to 404.
var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired verification token")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrResendTooSoon      = errors.New("verification email was sent recently")
	ErrEmptyMessage       = errors.New("message must contain text or an image")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
)
