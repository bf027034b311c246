package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

// UserSource provides the user fields embedded in access tokens.
//
// Implementations return ErrUserNotFound when the user no longer exists;
// any other error is treated as a store fault and propagated.
type UserSource interface {
	UserForTokens(ctx context.Context, userID string) (UserForToken, error)
}

// TokenPair is the transient result of issuing or refreshing tokens.
//
// RefreshToken is plaintext and is shown to the client exactly once; the
// server keeps only its hash and cannot recover the value afterwards.
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}

// Refreshed is the result of a successful AutoRefresh.
type Refreshed struct {
	Pair    TokenPair
	Rotated bool
}

// Service orchestrates token issuance, refresh, and invalidation over a
// session store and a user directory.
type Service struct {
	cfg    Config
	codec  Codec
	store  Store
	users  UserSource
	policy Policy
}

// NewService constructs a Service with the provided configuration, codec,
// store, and user source.
func NewService(cfg Config, codec Codec, store Store, users UserSource) *Service {
	return &Service{
		cfg:    cfg,
		codec:  codec,
		store:  store,
		users:  users,
		policy: Policy{Threshold: cfg.RotateAfter},
	}
}

// VerifyAccessToken verifies a stateless access token without any store
// lookup. Safe for unlimited parallelism.
func (s *Service) VerifyAccessToken(token string, now time.Time) (AccessClaims, error) {
	return s.codec.Verify(token, now)
}

// BeginSession creates a session row for a freshly authenticated user and
// issues its first token pair. This is the explicit post-authentication
// step every login flow (password, OAuth callback, OTP) calls once.
func (s *Service) BeginSession(ctx context.Context, now time.Time, user UserForToken) (sessionID string, pair TokenPair, err error) {
	sessionID, err = s.store.Create(ctx, now, user.ID, now.Add(s.cfg.RefreshTokenTTL))
	if err != nil {
		return "", TokenPair{}, err
	}

	pair, err = s.IssueTokenPair(ctx, now, user, sessionID)
	if err != nil {
		return "", TokenPair{}, err
	}
	return sessionID, pair, nil
}

// IssueTokenPair generates a fresh refresh token, persists its hash into
// the session row, and signs a new access token for the same session.
// Called once per successful primary authentication, never per request.
func (s *Service) IssueTokenPair(ctx context.Context, now time.Time, user UserForToken, sessionID string) (TokenPair, error) {
	plain, hash, err := NewRefreshSecret(s.cfg.RefreshTokenBytes)
	if err != nil {
		return TokenPair{}, err
	}
	refreshExp := now.Add(s.cfg.RefreshTokenTTL)

	if err := s.store.SetRefreshToken(ctx, now, sessionID, hash, refreshExp); err != nil {
		return TokenPair{}, err
	}

	accessToken, accessExp, err := s.codec.Sign(user, sessionID, now)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          plain,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

// RefreshTokens validates a presented refresh token and mints a new access
// token, rotating the refresh token when forced or past the rotation
// threshold.
//
// Failure contract: ErrRefreshInvalid for unknown/raced tokens and orphaned
// sessions, ErrRefreshExpired for tokens or sessions past expiry. Expired
// tokens are irreversibly invalidated (hash and expiry nulled) before the
// error is returned; a second attempt with the same token fails the same
// way with no further mutation.
func (s *Service) RefreshTokens(ctx context.Context, now time.Time, refreshToken string, forceRotate bool) (TokenPair, bool, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	// Sanity bounds to avoid hashing pathological inputs.
	if refreshToken == "" || len(refreshToken) > 4096 {
		return TokenPair{}, false, ErrRefreshInvalid
	}

	// Hash in memory; the plain token never reaches the store.
	hash := HashRefreshSecret(refreshToken)

	row, err := s.store.GetByRefreshHash(ctx, hash)
	if errors.Is(err, ErrSessionNotFound) {
		return TokenPair{}, false, ErrRefreshInvalid
	}
	if err != nil {
		return TokenPair{}, false, err
	}

	// Refresh token expiry is terminal: clear the stored hash so the
	// token can never be replayed, then fail.
	if row.RefreshTokenExpiresAt != nil && row.RefreshTokenExpiresAt.Before(now) {
		if err := s.store.ClearRefreshToken(ctx, now, row.ID); err != nil {
			return TokenPair{}, false, err
		}
		return TokenPair{}, false, ErrRefreshExpired
	}

	// Outer session expiry gets the same terminal handling, keeping both
	// expiry paths symmetric.
	if !row.ExpiresAt.After(now) {
		if err := s.store.ClearRefreshToken(ctx, now, row.ID); err != nil {
			return TokenPair{}, false, err
		}
		return TokenPair{}, false, ErrRefreshExpired
	}

	user, err := s.users.UserForTokens(ctx, row.UserID)
	if errors.Is(err, ErrUserNotFound) {
		// Orphaned session.
		return TokenPair{}, false, ErrRefreshInvalid
	}
	if err != nil {
		return TokenPair{}, false, err
	}

	rotate := forceRotate
	if !rotate && row.RefreshTokenExpiresAt != nil {
		rotate = s.policy.ShouldRotate(*row.RefreshTokenExpiresAt, row.CreatedAt, now)
	}

	if rotate {
		return s.rotate(ctx, now, user, row, hash)
	}

	// New access token only; the caller keeps the refresh token it
	// presented, since the plaintext is not re-derivable from the hash.
	accessToken, accessExp, err := s.codec.Sign(user, row.ID, now)
	if err != nil {
		return TokenPair{}, false, err
	}

	refreshExp := now.Add(s.cfg.RefreshTokenTTL)
	if row.RefreshTokenExpiresAt != nil {
		refreshExp = *row.RefreshTokenExpiresAt
	}

	return TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
	}, false, nil
}

func (s *Service) rotate(ctx context.Context, now time.Time, user UserForToken, row Row, prevHash string) (TokenPair, bool, error) {
	plain, hash, err := NewRefreshSecret(s.cfg.RefreshTokenBytes)
	if err != nil {
		return TokenPair{}, false, err
	}
	refreshExp := now.Add(s.cfg.RefreshTokenTTL)

	swapped, err := s.store.SwapRefreshToken(ctx, now, row.ID, prevHash, hash, refreshExp)
	if err != nil {
		return TokenPair{}, false, err
	}
	if !swapped {
		// A concurrent refresh rotated first; the presented token is stale.
		return TokenPair{}, false, ErrRefreshInvalid
	}

	accessToken, accessExp, err := s.codec.Sign(user, row.ID, now)
	if err != nil {
		return TokenPair{}, false, err
	}

	return TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          plain,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
	}, true, nil
}

// AutoRefresh wraps RefreshTokens for transparent use in request
// middleware. A missing token maps to ErrNoRefreshToken; rotation is never
// forced here, so most silent refreshes keep the caller's refresh token.
func (s *Service) AutoRefresh(ctx context.Context, now time.Time, refreshToken string) (Refreshed, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return Refreshed{}, ErrNoRefreshToken
	}

	pair, rotated, err := s.RefreshTokens(ctx, now, refreshToken, false)
	if err != nil {
		return Refreshed{}, err
	}
	return Refreshed{Pair: pair, Rotated: rotated}, nil
}

// InvalidateSessionTokens logs one session out of the token scheme.
// Idempotent; the session row itself remains for other purposes.
func (s *Service) InvalidateSessionTokens(ctx context.Context, now time.Time, sessionID string) error {
	return s.store.ClearRefreshToken(ctx, now, sessionID)
}

// InvalidateByRefreshToken invalidates the session matching a presented
// refresh token. Returns ErrRefreshInvalid when no session matches.
func (s *Service) InvalidateByRefreshToken(ctx context.Context, now time.Time, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" || len(refreshToken) > 4096 {
		return ErrRefreshInvalid
	}

	row, err := s.store.GetByRefreshHash(ctx, HashRefreshSecret(refreshToken))
	if errors.Is(err, ErrSessionNotFound) {
		return ErrRefreshInvalid
	}
	if err != nil {
		return err
	}
	return s.store.ClearRefreshToken(ctx, now, row.ID)
}

// InvalidateAllUserSessions force-logs a user out everywhere. Idempotent.
func (s *Service) InvalidateAllUserSessions(ctx context.Context, now time.Time, userID string) error {
	return s.store.ClearRefreshTokensForUser(ctx, now, userID)
}
