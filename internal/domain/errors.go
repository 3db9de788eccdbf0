package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a request fails validation.
	// It is wrapped with the specific failure.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyUsername is returned when a username is missing or blank.
	ErrEmptyUsername = errors.New("username cannot be empty")

	// ErrUsernameTooLong is returned when a username exceeds MaxUsernameLength characters.
	ErrUsernameTooLong = errors.New("username is too long")

	// ErrInvalidUsername is returned when a username is not valid UTF-8 or
	// contains a character that cannot appear in a URL path segment.
	ErrInvalidUsername = errors.New("invalid username")
)
