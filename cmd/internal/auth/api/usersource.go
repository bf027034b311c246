package authapi

import (
	"context"
	"errors"

	"quill/cmd/identity"
	"quill/cmd/internal/auth/session"
)

// userDirectory adapts an identity store to the session service's
// UserSource contract.
type userDirectory struct {
	users identity.Store
}

// NewUserSource wraps an identity store for use by session.NewService.
func NewUserSource(users identity.Store) session.UserSource {
	return userDirectory{users: users}
}

func (d userDirectory) UserForTokens(ctx context.Context, userID string) (session.UserForToken, error) {
	u, err := d.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return session.UserForToken{}, session.ErrUserNotFound
		}
		return session.UserForToken{}, err
	}
	return session.UserForToken{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
	}, nil
}
