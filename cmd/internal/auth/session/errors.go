package session

import "errors"

var (
	// ErrTokenExpired is returned when an access token is structurally valid
	// and correctly signed but past its expiry. Cookie clients may recover
	// via refresh; bearer clients may not.
	ErrTokenExpired = errors.New("access token expired")

	// ErrTokenInvalid is returned when an access token fails signature or
	// claim (issuer/audience) validation. Never auto-recovered.
	ErrTokenInvalid = errors.New("access token invalid")

	// ErrTokenMalformed is returned when the input is not parseable as a
	// token at all. Client bug; never auto-recovered.
	ErrTokenMalformed = errors.New("access token malformed")

	// ErrNoRefreshToken is returned by AutoRefresh when no refresh token
	// was presented.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshInvalid is returned when a refresh token matches no session,
	// the owning user is gone, or a concurrent rotation already replaced it.
	ErrRefreshInvalid = errors.New("refresh token invalid")

	// ErrRefreshExpired is returned when the refresh token or its owning
	// session is past expiry. The stored hash is cleared; the token can
	// never be used again.
	ErrRefreshExpired = errors.New("refresh token expired")

	// ErrSessionNotFound is returned by stores when no session row matches.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUserNotFound is returned by a UserSource when the session's user
	// no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
