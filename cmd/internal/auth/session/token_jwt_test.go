package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWTSecret = strings.Repeat("s", 32)
	return cfg
}

func testUser() UserForToken {
	return UserForToken{
		ID:            "01JD0USER0000000000000000A",
		Email:         "reader@example.com",
		Name:          "Reader",
		EmailVerified: true,
	}
}

func TestHMACCodec_RoundTrip(t *testing.T) {
	codec, err := NewHMACCodec(testConfig())
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}

	now := time.Now().UTC()
	user := testUser()

	tok, exp, err := codec.Sign(user, "01JD0SESS0000000000000000A", now)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !exp.After(now) {
		t.Fatalf("expected exp after now")
	}

	claims, err := codec.Verify(tok, now.Add(1*time.Second))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("UserID = %q, want %q", claims.UserID, user.ID)
	}
	if claims.Email != user.Email || claims.Name != user.Name {
		t.Fatalf("identity claims do not round-trip: %+v", claims)
	}
	if !claims.EmailVerified {
		t.Fatalf("EmailVerified lost in round-trip")
	}
	if claims.SessionID != "01JD0SESS0000000000000000A" {
		t.Fatalf("SessionID = %q", claims.SessionID)
	}
	if !claims.ExpiresAt.Equal(exp.Truncate(time.Second)) {
		t.Fatalf("ExpiresAt = %v, want %v", claims.ExpiresAt, exp.Truncate(time.Second))
	}
}

func TestHMACCodec_Tampered(t *testing.T) {
	codec, err := NewHMACCodec(testConfig())
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}

	now := time.Now().UTC()
	tok, _, err := codec.Sign(testUser(), "sess", now)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Appending any byte must break verification.
	for _, suffix := range []string{"A", "=", "x"} {
		_, err := codec.Verify(tok+suffix, now)
		if err == nil {
			t.Fatalf("tampered token %q accepted", suffix)
		}
		if !errors.Is(err, ErrTokenInvalid) && !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("tampered token: got %v", err)
		}
	}
}

func TestHMACCodec_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.ClockSkew = 0
	codec, err := NewHMACCodec(cfg)
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}

	now := time.Now().UTC()
	tok, _, err := codec.Sign(testUser(), "sess", now)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	_, err = codec.Verify(tok, now.Add(cfg.AccessTokenTTL+time.Minute))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHMACCodec_WrongSecretIsInvalid(t *testing.T) {
	now := time.Now().UTC()

	codec, err := NewHMACCodec(testConfig())
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}
	tok, _, err := codec.Sign(testUser(), "sess", now)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	other := testConfig()
	other.JWTSecret = strings.Repeat("z", 32)
	codec2, err := NewHMACCodec(other)
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}

	_, err = codec2.Verify(tok, now)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACCodec_WrongAudienceIsInvalid(t *testing.T) {
	now := time.Now().UTC()

	cfg := testConfig()
	codec, err := NewHMACCodec(cfg)
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}
	tok, _, err := codec.Sign(testUser(), "sess", now)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	cfg.Audience = "someone-else"
	codec2, err := NewHMACCodec(cfg)
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}

	_, err = codec2.Verify(tok, now)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestHMACCodec_Malformed(t *testing.T) {
	codec, err := NewHMACCodec(testConfig())
	if err != nil {
		t.Fatalf("NewHMACCodec: %v", err)
	}

	now := time.Now().UTC()
	for _, bad := range []string{"", "not-a-token", "a.b", "%%%.%%%.%%%"} {
		_, err := codec.Verify(bad, now)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Verify(%q) = %v, want ErrTokenMalformed", bad, err)
		}
	}
}
