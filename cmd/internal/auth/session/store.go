package session

import (
	"context"
	"time"
)

// Row mirrors the quill.sessions row used by the token subsystem.
//
// RefreshTokenHash and RefreshTokenExpiresAt are nil exactly when no
// refresh token has been issued for the session or it has been
// invalidated. Such a session is "logged out" for token purposes but
// remains a valid row for the fallback session strategy.
type Row struct {
	ID                    string
	UserID                string
	RefreshTokenHash      *string
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ExpiresAt             time.Time
}

// Store abstracts persistence for session token state.
//
// The token core mutates rows in place and never deletes them; physical
// cleanup is an external concern.
type Store interface {
	// Create inserts a new session row with no refresh token yet.
	Create(ctx context.Context, now time.Time, userID string, expiresAt time.Time) (sessionID string, err error)

	// GetByID loads a session row by primary key.
	GetByID(ctx context.Context, sessionID string) (Row, error)

	// GetByRefreshHash loads a session row by refresh token hash.
	GetByRefreshHash(ctx context.Context, refreshHash string) (Row, error)

	// SetRefreshToken unconditionally persists a new hash and expiry into
	// the session row. Used on initial issuance after primary authentication.
	SetRefreshToken(ctx context.Context, now time.Time, sessionID, refreshHash string, refreshExp time.Time) error

	// SwapRefreshToken replaces prevHash with refreshHash only if prevHash
	// is still the stored value, and reports whether the swap happened.
	// Of two racing rotations only one wins; the loser observes swapped=false.
	SwapRefreshToken(ctx context.Context, now time.Time, sessionID, prevHash, refreshHash string, refreshExp time.Time) (swapped bool, err error)

	// ClearRefreshToken nulls the hash and expiry for one session.
	// Idempotent: clearing an already-cleared row is a no-op.
	ClearRefreshToken(ctx context.Context, now time.Time, sessionID string) error

	// ClearRefreshTokensForUser nulls hash and expiry for every session of
	// a user. Idempotent.
	ClearRefreshTokensForUser(ctx context.Context, now time.Time, userID string) error
}
