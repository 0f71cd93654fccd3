// Package apperr defines the sentinel errors shared across the application.
//
// Services and repositories wrap these with context:
//
//	return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
//
// and the HTTP layer maps them to status codes with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound marks a missing Product, Order, Customer or OrderLine.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate marks a username or email collision at registration.
	ErrDuplicate = errors.New("duplicate key")

	// ErrInvalidCredentials marks a failed authentication attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation marks missing or malformed input, including an order
	// that asks for more stock than is on hand.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream marks an unavailable external collaborator.
	ErrUpstream = errors.New("upstream unavailable")
)
