package authapi

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries the HTTP-facing knobs of the auth surface. Everything
// token-related (TTLs, secrets, rotation) lives in session.Config; this
// struct only decides how tokens travel over the wire.
type Config struct {
	// AccessCookieName and RefreshCookieName are the cookie names used for
	// browser clients.
	AccessCookieName  string
	RefreshCookieName string

	// CookiePath scopes both cookies. Defaults to "/".
	CookiePath string

	// CookieDomain is left empty by default, which scopes cookies to the
	// serving host.
	CookieDomain string

	// CookieSecure marks both cookies Secure. Turn this on in any
	// deployment that terminates TLS.
	CookieSecure bool

	// MaxBodyBytes caps the size of request bodies accepted by the auth
	// endpoints.
	MaxBodyBytes int64
}

// DefaultConfig returns the settings used when no environment overrides are
// present. Cookies are not marked Secure by default so that local
// plain-HTTP development works out of the box.
func DefaultConfig() Config {
	return Config{
		AccessCookieName:  "access_token",
		RefreshCookieName: "refresh_token",
		CookiePath:        "/",
		CookieSecure:      false,
		MaxBodyBytes:      1 << 20,
	}
}

// LoadConfigFromEnv builds a Config from QUILL_AUTH_* variables, falling
// back to DefaultConfig for anything unset.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("QUILL_AUTH_ACCESS_COOKIE")); v != "" {
		cfg.AccessCookieName = v
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_AUTH_REFRESH_COOKIE")); v != "" {
		cfg.RefreshCookieName = v
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_AUTH_COOKIE_PATH")); v != "" {
		cfg.CookiePath = v
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_AUTH_COOKIE_DOMAIN")); v != "" {
		cfg.CookieDomain = v
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_AUTH_COOKIE_SECURE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("QUILL_AUTH_COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = b
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_AUTH_MAX_BODY_BYTES")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("QUILL_AUTH_MAX_BODY_BYTES: invalid value %q", v)
		}
		cfg.MaxBodyBytes = n
	}

	if cfg.AccessCookieName == cfg.RefreshCookieName {
		return Config{}, fmt.Errorf("access and refresh cookie names must differ")
	}
	return cfg, nil
}
