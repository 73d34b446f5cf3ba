// Package common defines shared constants and sentinel errors used across
// client and server layers of the files manager. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exist")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Request validation errors.
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidOperation = errors.New("invalid operation")

	// File tree errors.
	ErrParentNotFound  = errors.New("parent not found")
	ErrParentNotFolder = errors.New("parent is not a folder")
	ErrStorage         = errors.New("storage error")

	// Background job errors.
	ErrMissingField  = errors.New("missing field")
	ErrFileNotFound  = errors.New("file not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrQueueClosed   = errors.New("queue closed")
	ErrInvalidKey    = errors.New("invalid content key")
	ErrNotConfigured = errors.New("backend not configured")
)
