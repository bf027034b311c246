package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubUsers map[string]UserForToken

func (s stubUsers) UserForTokens(_ context.Context, id string) (UserForToken, error) {
	u, ok := s[id]
	if !ok {
		return UserForToken{}, ErrUserNotFound
	}
	return u, nil
}

func newTestService(t *testing.T, store Store, users UserSource) *Service {
	t.Helper()
	cfg := testConfig()
	codec, err := NewHMACCodec(cfg)
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}
	return NewService(cfg, codec, store, users)
}

func TestService_BeginSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	sessionID, pair, err := svc.BeginSession(ctx, now, user)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if sessionID == "" {
		t.Fatalf("empty session id")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete token pair: %+v", pair)
	}

	claims, err := svc.VerifyAccessToken(pair.AccessToken, now)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.SessionID != sessionID || claims.UserID != user.ID {
		t.Fatalf("claims do not reference the session: %+v", claims)
	}

	row, err := store.GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.RefreshTokenHash == nil || *row.RefreshTokenHash != HashRefreshSecret(pair.RefreshToken) {
		t.Fatalf("stored hash does not match issued refresh token")
	}
	if row.RefreshTokenExpiresAt == nil || !row.RefreshTokenExpiresAt.Equal(pair.RefreshTokenExpiresAt) {
		t.Fatalf("stored refresh expiry mismatch")
	}
}

func TestService_Refresh_NoRotationKeepsRefreshToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	_, pair, err := svc.BeginSession(ctx, now, user)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	// Well below the rotation threshold.
	later := now.Add(1 * time.Hour)
	next, rotated, err := svc.RefreshTokens(ctx, later, pair.RefreshToken, false)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if rotated {
		t.Fatalf("rotated early")
	}
	if next.RefreshToken != pair.RefreshToken {
		t.Fatalf("refresh token changed without rotation")
	}
	if next.AccessToken == pair.AccessToken {
		t.Fatalf("access token not refreshed")
	}
	if !next.RefreshTokenExpiresAt.Equal(pair.RefreshTokenExpiresAt) {
		t.Fatalf("refresh expiry must not extend without rotation")
	}
}

func TestService_Refresh_RotatesPastThreshold(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	// Seed a session whose refresh token is 85% through its lifetime.
	plain, hash, err := NewRefreshSecret(32)
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	created := now.Add(-85 * time.Minute)
	rtExp := created.Add(100 * time.Minute)
	store.Seed(Row{
		ID:                    "01JD0SESS0000000000000000B",
		UserID:                user.ID,
		RefreshTokenHash:      &hash,
		RefreshTokenExpiresAt: &rtExp,
		CreatedAt:             created,
		UpdatedAt:             created,
		ExpiresAt:             now.Add(24 * time.Hour),
	})

	next, rotated, err := svc.RefreshTokens(ctx, now, plain, false)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if !rotated {
		t.Fatalf("expected rotation at 85%% elapsed")
	}
	if next.RefreshToken == plain {
		t.Fatalf("rotation returned the old refresh token")
	}

	row, err := store.GetByID(ctx, "01JD0SESS0000000000000000B")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.RefreshTokenHash == nil {
		t.Fatalf("rotated session lost its hash")
	}
	if VerifyRefreshSecretHash(plain, *row.RefreshTokenHash) {
		t.Fatalf("old refresh token still verifies after rotation")
	}
	if !VerifyRefreshSecretHash(next.RefreshToken, *row.RefreshTokenHash) {
		t.Fatalf("new refresh token does not verify")
	}
}

func TestService_Refresh_ForceRotate(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	_, pair, err := svc.BeginSession(ctx, now, user)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	next, rotated, err := svc.RefreshTokens(ctx, now.Add(time.Minute), pair.RefreshToken, true)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if !rotated || next.RefreshToken == pair.RefreshToken {
		t.Fatalf("force rotation did not replace the refresh token")
	}
}

func TestService_Refresh_ExpiredIsTerminal(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	plain, hash, err := NewRefreshSecret(32)
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	created := now.Add(-8 * 24 * time.Hour)
	rtExp := now.Add(-time.Hour)
	store.Seed(Row{
		ID:                    "01JD0SESS0000000000000000C",
		UserID:                user.ID,
		RefreshTokenHash:      &hash,
		RefreshTokenExpiresAt: &rtExp,
		CreatedAt:             created,
		UpdatedAt:             created,
		ExpiresAt:             now.Add(24 * time.Hour),
	})

	_, _, err = svc.RefreshTokens(ctx, now, plain, false)
	if !errors.Is(err, ErrRefreshExpired) {
		t.Fatalf("expected ErrRefreshExpired, got %v", err)
	}

	row, err := store.GetByID(ctx, "01JD0SESS0000000000000000C")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.RefreshTokenHash != nil || row.RefreshTokenExpiresAt != nil {
		t.Fatalf("expired refresh token not invalidated")
	}

	// A second attempt with the same token also fails; the hash is gone.
	_, _, err = svc.RefreshTokens(ctx, now, plain, false)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("second attempt: expected ErrRefreshInvalid, got %v", err)
	}
}

func TestService_Refresh_SessionExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	plain, hash, err := NewRefreshSecret(32)
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	created := now.Add(-time.Hour)
	rtExp := now.Add(6 * 24 * time.Hour)
	store.Seed(Row{
		ID:                    "01JD0SESS0000000000000000D",
		UserID:                user.ID,
		RefreshTokenHash:      &hash,
		RefreshTokenExpiresAt: &rtExp,
		CreatedAt:             created,
		UpdatedAt:             created,
		ExpiresAt:             now.Add(-time.Minute),
	})

	_, _, err = svc.RefreshTokens(ctx, now, plain, false)
	if !errors.Is(err, ErrRefreshExpired) {
		t.Fatalf("expected ErrRefreshExpired, got %v", err)
	}

	// Session expiry invalidates the refresh token the same way RT expiry does.
	row, _ := store.GetByID(ctx, "01JD0SESS0000000000000000D")
	if row.RefreshTokenHash != nil {
		t.Fatalf("refresh token left intact for an expired session")
	}
}

func TestService_Refresh_UnknownToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	svc := newTestService(t, NewMemoryStore(), stubUsers{})

	_, _, err := svc.RefreshTokens(ctx, now, "deadbeef", false)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestService_Refresh_OrphanedSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{}) // user directory is empty

	plain, hash, err := NewRefreshSecret(32)
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	rtExp := now.Add(6 * 24 * time.Hour)
	store.Seed(Row{
		ID:                    "01JD0SESS0000000000000000E",
		UserID:                "gone",
		RefreshTokenHash:      &hash,
		RefreshTokenExpiresAt: &rtExp,
		CreatedAt:             now.Add(-time.Hour),
		UpdatedAt:             now.Add(-time.Hour),
		ExpiresAt:             now.Add(24 * time.Hour),
	})

	_, _, err = svc.RefreshTokens(ctx, now, plain, false)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid for orphaned session, got %v", err)
	}
}

func TestService_Refresh_ConcurrentRotationLoses(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	plain, hash, err := NewRefreshSecret(32)
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	created := now.Add(-90 * time.Minute)
	rtExp := created.Add(100 * time.Minute)
	store.Seed(Row{
		ID:                    "01JD0SESS0000000000000000F",
		UserID:                user.ID,
		RefreshTokenHash:      &hash,
		RefreshTokenExpiresAt: &rtExp,
		CreatedAt:             created,
		UpdatedAt:             created,
		ExpiresAt:             now.Add(24 * time.Hour),
	})

	// First rotation wins.
	_, rotated, err := svc.RefreshTokens(ctx, now, plain, false)
	if err != nil || !rotated {
		t.Fatalf("first rotation: rotated=%v err=%v", rotated, err)
	}

	// The racer presenting the now-stale token must fail as invalid,
	// not corrupt the stored state.
	_, _, err = svc.RefreshTokens(ctx, now, plain, false)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("stale rotation: expected ErrRefreshInvalid, got %v", err)
	}
}

func TestService_AutoRefresh(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	if _, err := svc.AutoRefresh(ctx, now, ""); !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("empty token: expected ErrNoRefreshToken, got %v", err)
	}
	if _, err := svc.AutoRefresh(ctx, now, "   "); !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("blank token: expected ErrNoRefreshToken, got %v", err)
	}

	_, pair, err := svc.BeginSession(ctx, now, user)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	res, err := svc.AutoRefresh(ctx, now.Add(time.Minute), pair.RefreshToken)
	if err != nil {
		t.Fatalf("AutoRefresh: %v", err)
	}
	if res.Rotated {
		t.Fatalf("silent refresh rotated a fresh token")
	}
	if res.Pair.RefreshToken != pair.RefreshToken {
		t.Fatalf("silent refresh changed the refresh token")
	}
}

func TestService_Invalidate(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	sessionID, pair, err := svc.BeginSession(ctx, now, user)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	if err := svc.InvalidateSessionTokens(ctx, now, sessionID); err != nil {
		t.Fatalf("InvalidateSessionTokens: %v", err)
	}
	row, _ := store.GetByID(ctx, sessionID)
	if row.RefreshTokenHash != nil || row.RefreshTokenExpiresAt != nil {
		t.Fatalf("invalidate left refresh fields set")
	}

	// Idempotent: repeat calls and unknown ids are no-ops.
	if err := svc.InvalidateSessionTokens(ctx, now, sessionID); err != nil {
		t.Fatalf("repeat invalidate: %v", err)
	}
	if err := svc.InvalidateSessionTokens(ctx, now, "no-such-session"); err != nil {
		t.Fatalf("unknown session invalidate: %v", err)
	}

	// The invalidated refresh token no longer refreshes.
	if _, _, err := svc.RefreshTokens(ctx, now, pair.RefreshToken, false); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid after logout, got %v", err)
	}
}

func TestService_InvalidateAllUserSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	_, pair1, err := svc.BeginSession(ctx, now, user)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	_, pair2, err := svc.BeginSession(ctx, now, user)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	if err := svc.InvalidateAllUserSessions(ctx, now, user.ID); err != nil {
		t.Fatalf("InvalidateAllUserSessions: %v", err)
	}

	for _, rt := range []string{pair1.RefreshToken, pair2.RefreshToken} {
		if _, _, err := svc.RefreshTokens(ctx, now, rt, false); !errors.Is(err, ErrRefreshInvalid) {
			t.Fatalf("expected ErrRefreshInvalid after logout-everywhere, got %v", err)
		}
	}
}

func TestService_InvalidateByRefreshToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := testUser()

	store := NewMemoryStore()
	svc := newTestService(t, store, stubUsers{user.ID: user})

	sessionID, pair, err := svc.BeginSession(ctx, now, user)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	if err := svc.InvalidateByRefreshToken(ctx, now, pair.RefreshToken); err != nil {
		t.Fatalf("InvalidateByRefreshToken: %v", err)
	}
	row, _ := store.GetByID(ctx, sessionID)
	if row.RefreshTokenHash != nil {
		t.Fatalf("refresh token not cleared")
	}

	if err := svc.InvalidateByRefreshToken(ctx, now, "unknown"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid for unknown token, got %v", err)
	}
}
