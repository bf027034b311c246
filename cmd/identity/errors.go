package identity

import "errors"

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when a create collides with an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidInput is returned for malformed or missing user fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned when password verification fails.
	// It deliberately does not distinguish "no such user" from "wrong password".
	ErrInvalidCredentials = errors.New("invalid credentials")
)
