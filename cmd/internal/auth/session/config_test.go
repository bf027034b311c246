package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_RequiresSecret(t *testing.T) {
	t.Setenv("QUILL_AUTH_JWT_SECRET", "")

	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig without secret, got %v", err)
	}

	t.Setenv("QUILL_AUTH_JWT_SECRET", "too-short")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for short secret, got %v", err)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("QUILL_AUTH_JWT_SECRET", strings.Repeat("k", 32))
	t.Setenv("QUILL_AUTH_ISSUER", "https://api.example.com")
	t.Setenv("QUILL_AUTH_AUDIENCE", "https://example.com")
	t.Setenv("QUILL_AUTH_ACCESS_TTL", "5m")
	t.Setenv("QUILL_AUTH_REFRESH_TTL", "48h")
	t.Setenv("QUILL_AUTH_ROTATE_AFTER", "0.9")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Issuer != "https://api.example.com" || cfg.Audience != "https://example.com" {
		t.Fatalf("issuer/audience not applied: %+v", cfg)
	}
	if cfg.AccessTokenTTL != 5*time.Minute || cfg.RefreshTokenTTL != 48*time.Hour {
		t.Fatalf("TTLs not applied: %+v", cfg)
	}
	if cfg.RotateAfter != 0.9 {
		t.Fatalf("RotateAfter = %v", cfg.RotateAfter)
	}
}

func TestLoadConfigFromEnv_RejectsInvalid(t *testing.T) {
	t.Setenv("QUILL_AUTH_JWT_SECRET", strings.Repeat("k", 32))

	for key, bad := range map[string]string{
		"QUILL_AUTH_ACCESS_TTL":          "banana",
		"QUILL_AUTH_REFRESH_TTL":         "-1h",
		"QUILL_AUTH_ROTATE_AFTER":        "1.5",
		"QUILL_AUTH_REFRESH_TOKEN_BYTES": "4",
	} {
		t.Setenv(key, bad)
		if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
			t.Fatalf("%s=%q: expected ErrConfig, got %v", key, bad, err)
		}
		t.Setenv(key, "")
	}

	// Access TTL must stay below refresh TTL.
	t.Setenv("QUILL_AUTH_ACCESS_TTL", "48h")
	t.Setenv("QUILL_AUTH_REFRESH_TTL", "24h")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig when access TTL >= refresh TTL, got %v", err)
	}
}
