package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-memory Store for tests and DB-less development mode.
//
// All mutations hold the mutex for their full duration, so SwapRefreshToken
// is atomic the same way the Postgres conditional UPDATE is.
type MemoryStore struct {
	mu     sync.Mutex
	rows   map[string]*Row
	byHash map[string]string // refresh hash -> session id
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:   make(map[string]*Row),
		byHash: make(map[string]string),
	}
}

// Create inserts a new session row and returns its ULID.
func (s *MemoryStore) Create(_ context.Context, now time.Time, userID string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	s.rows[id] = &Row{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
	}
	return id, nil
}

// Seed installs a fully specified row, for tests that need precise
// timestamps or pre-populated refresh state.
func (s *MemoryStore) Seed(row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := row
	s.rows[r.ID] = &r
	if r.RefreshTokenHash != nil {
		s.byHash[*r.RefreshTokenHash] = r.ID
	}
}

// GetByID loads a session row by primary key.
func (s *MemoryStore) GetByID(_ context.Context, sessionID string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[sessionID]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return *r, nil
}

// GetByRefreshHash loads a session row by refresh token hash.
func (s *MemoryStore) GetByRefreshHash(_ context.Context, refreshHash string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byHash[refreshHash]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return *s.rows[id], nil
}

// SetRefreshToken unconditionally installs a new refresh token hash.
func (s *MemoryStore) SetRefreshToken(_ context.Context, now time.Time, sessionID, refreshHash string, refreshExp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	s.replaceHashLocked(r, &refreshHash, &refreshExp, now)
	return nil
}

// SwapRefreshToken replaces prevHash only if it is still the stored value.
func (s *MemoryStore) SwapRefreshToken(_ context.Context, now time.Time, sessionID, prevHash, refreshHash string, refreshExp time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[sessionID]
	if !ok {
		return false, nil
	}
	if r.RefreshTokenHash == nil || *r.RefreshTokenHash != prevHash {
		return false, nil
	}

	s.replaceHashLocked(r, &refreshHash, &refreshExp, now)
	return true, nil
}

// ClearRefreshToken nulls the refresh token fields for one session.
func (s *MemoryStore) ClearRefreshToken(_ context.Context, now time.Time, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[sessionID]
	if !ok {
		return nil
	}

	s.replaceHashLocked(r, nil, nil, now)
	return nil
}

// ClearRefreshTokensForUser nulls the refresh token fields for every
// session owned by userID.
func (s *MemoryStore) ClearRefreshTokensForUser(_ context.Context, now time.Time, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rows {
		if r.UserID == userID {
			s.replaceHashLocked(r, nil, nil, now)
		}
	}
	return nil
}

func (s *MemoryStore) replaceHashLocked(r *Row, hash *string, exp *time.Time, now time.Time) {
	if r.RefreshTokenHash != nil {
		delete(s.byHash, *r.RefreshTokenHash)
	}
	r.RefreshTokenHash = hash
	r.RefreshTokenExpiresAt = exp
	r.UpdatedAt = now
	if hash != nil {
		s.byHash[*hash] = r.ID
	}
}
