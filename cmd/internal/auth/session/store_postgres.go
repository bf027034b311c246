package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements Store using PostgreSQL (quill.sessions).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts a new session row and returns its ULID.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID string, expiresAt time.Time) (string, error) {
	id := ulid.Make().String()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO quill.sessions (
			id, user_id, refresh_token_hash, refresh_token_expires_at,
			created_at, updated_at, expires_at
		) VALUES (
			$1, $2, NULL, NULL,
			$3, $3, $4
		)
	`, id, userID, now, expiresAt)
	if err != nil {
		return "", err
	}

	return id, nil
}

// GetByID loads a session row by ID.
func (s *PostgresStore) GetByID(ctx context.Context, sessionID string) (Row, error) {
	return s.getOne(ctx, `WHERE id = $1`, sessionID)
}

// GetByRefreshHash loads a session row by refresh token hash.
func (s *PostgresStore) GetByRefreshHash(ctx context.Context, refreshHash string) (Row, error) {
	return s.getOne(ctx, `WHERE refresh_token_hash = $1`, refreshHash)
}

func (s *PostgresStore) getOne(ctx context.Context, where string, arg any) (Row, error) {
	var row Row

	err := s.pool.QueryRow(ctx, `
		SELECT
			id, user_id, refresh_token_hash, refresh_token_expires_at,
			created_at, updated_at, expires_at
		FROM quill.sessions
		`+where, arg).Scan(
		&row.ID,
		&row.UserID,
		&row.RefreshTokenHash,
		&row.RefreshTokenExpiresAt,
		&row.CreatedAt,
		&row.UpdatedAt,
		&row.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, err
	}

	return row, nil
}

// SetRefreshToken unconditionally installs a new refresh token hash.
func (s *PostgresStore) SetRefreshToken(ctx context.Context, now time.Time, sessionID, refreshHash string, refreshExp time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE quill.sessions
		SET refresh_token_hash = $2,
		    refresh_token_expires_at = $3,
		    updated_at = $4
		WHERE id = $1
	`, sessionID, refreshHash, refreshExp, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// SwapRefreshToken performs a compare-and-swap on the stored hash so that
// of two racing rotations only one wins.
func (s *PostgresStore) SwapRefreshToken(ctx context.Context, now time.Time, sessionID, prevHash, refreshHash string, refreshExp time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE quill.sessions
		SET refresh_token_hash = $3,
		    refresh_token_expires_at = $4,
		    updated_at = $5
		WHERE id = $1 AND refresh_token_hash = $2
	`, sessionID, prevHash, refreshHash, refreshExp, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ClearRefreshToken nulls the refresh token fields for one session.
func (s *PostgresStore) ClearRefreshToken(ctx context.Context, now time.Time, sessionID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE quill.sessions
		SET refresh_token_hash = NULL,
		    refresh_token_expires_at = NULL,
		    updated_at = $2
		WHERE id = $1
	`, sessionID, now)
	return err
}

// ClearRefreshTokensForUser nulls the refresh token fields for every
// session owned by userID.
func (s *PostgresStore) ClearRefreshTokensForUser(ctx context.Context, now time.Time, userID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE quill.sessions
		SET refresh_token_hash = NULL,
		    refresh_token_expires_at = NULL,
		    updated_at = $2
		WHERE user_id = $1
	`, userID, now)
	return err
}
