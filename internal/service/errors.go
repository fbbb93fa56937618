package service

import "errors"

// Common service errors.
var (
	// Registration errors
	ErrMissingFields     = errors.New("all fields are required")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrInvalidPassword   = errors.New("password must be at least 8 characters")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Profile errors
	ErrInvalidUsername = errors.New("invalid username: must be alphanumeric")
	ErrUserNotFound    = errors.New("user not found")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
