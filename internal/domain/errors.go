package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrTitleLength is returned when a task title is outside the configured bounds.
	ErrTitleLength = errors.New("title length out of range")

	// ErrNoResponsibles is returned when a task would end up without any
	// responsible user.
	ErrNoResponsibles = errors.New("task must have at least one responsible user")

	// ErrUnauthorized is returned when the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrForbidden is returned when an authenticated caller is not allowed to
	// perform an operation on a resource.
	ErrForbidden = errors.New("operation not permitted")
)
