package identity

import (
	"context"
	"time"
)

// User is Quill's canonical security principal.
//
// PasswordHash is the argon2id-encoded credential and must never leave the
// server boundary; API layers map User into response models that omit it.
type User struct {
	ID            string
	Email         string
	Name          string
	EmailVerified bool

	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput describes a user registration request.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Now      time.Time
}

// Store abstracts user persistence.
type Store interface {
	// GetByID loads a user by primary key.
	GetByID(ctx context.Context, id string) (User, error)

	// GetByEmail loads a user by normalized email.
	GetByEmail(ctx context.Context, email string) (User, error)

	// Create registers a new user with a hashed password.
	Create(ctx context.Context, in CreateUserInput) (User, error)
}
