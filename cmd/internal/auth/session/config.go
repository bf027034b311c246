package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines all runtime configuration for the token subsystem.
//
// It controls access-token signing, refresh-token lifetime and entropy,
// clock skew tolerance, and the rotation threshold.
//
// This struct is intentionally explicit and environment-driven so that
// production deployments can tune security parameters without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of access tokens,
	// typically the API base URL.
	Issuer string

	// Audience is the value set in the "aud" claim of access tokens,
	// typically the website base URL.
	Audience string

	// JWTSecret is the HS256 signing key for access tokens.
	JWTSecret string

	// AccessTokenTTL defines the lifetime of signed access tokens.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL defines the lifetime of opaque refresh tokens.
	// Sessions created by the login flow expire together with their
	// refresh token.
	RefreshTokenTTL time.Duration

	// ClockSkew defines the allowed time skew during token validation.
	ClockSkew time.Duration

	// RefreshTokenBytes defines the number of random bytes used to
	// generate opaque refresh tokens (hex-encoded, so 32 bytes = 64 chars).
	RefreshTokenBytes int

	// RotateAfter is the elapsed-lifetime fraction past which a refresh
	// also rotates the refresh token.
	RotateAfter float64
}

// DefaultConfig returns a secure default configuration suitable for
// development. Production environments should override values via
// environment variables.
func DefaultConfig() Config {
	return Config{
		Issuer:            "quill",
		Audience:          "quill-web",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   7 * 24 * time.Hour,
		ClockSkew:         30 * time.Second,
		RefreshTokenBytes: 32,
		RotateAfter:       0.80,
	}
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Required:
//   - QUILL_AUTH_JWT_SECRET (>= 32 bytes)
//
// Optional (durations must be valid Go duration strings):
//   - QUILL_AUTH_ISSUER
//   - QUILL_AUTH_AUDIENCE
//   - QUILL_AUTH_ACCESS_TTL
//   - QUILL_AUTH_REFRESH_TTL
//   - QUILL_AUTH_CLOCK_SKEW
//   - QUILL_AUTH_REFRESH_TOKEN_BYTES
//   - QUILL_AUTH_ROTATE_AFTER (fraction in (0,1])
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("QUILL_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}
	if v := os.Getenv("QUILL_AUTH_AUDIENCE"); v != "" {
		cfg.Audience = v
	}

	if v := os.Getenv("QUILL_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("QUILL_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenTTL = d
	}

	if v := os.Getenv("QUILL_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	if v := os.Getenv("QUILL_AUTH_REFRESH_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenBytes = n
	}

	if v := os.Getenv("QUILL_AUTH_ROTATE_AFTER"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			return Config{}, ErrConfig
		}
		cfg.RotateAfter = f
	}

	cfg.JWTSecret = os.Getenv("QUILL_AUTH_JWT_SECRET")
	if len(cfg.JWTSecret) < 32 {
		return Config{}, ErrConfig
	}

	// Invariant: the access token must expire well before the refresh token.
	if cfg.AccessTokenTTL >= cfg.RefreshTokenTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
