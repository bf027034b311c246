// Package identity password hashing (Argon2id).
//
// cmd/security/password is the single source of truth for Argon2id
// parameters, password policy, and strict PHC decoding; identity only
// exposes the two operations its callers need.
package identity

import (
	"errors"

	"quill/cmd/security/password"
)

// HashPassword returns a PHC-style Argon2id hash string using the
// environment-driven security/password configuration.
func HashPassword(plain string) (string, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return "", err
	}

	enc, err := cfg.Hash(plain)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooShort),
			errors.Is(err, password.ErrPasswordTooLong),
			errors.Is(err, password.ErrWeakPassword):
			return "", ErrInvalidInput
		default:
			return "", err
		}
	}
	return enc, nil
}

// VerifyPassword checks plain against an encoded Argon2id hash.
// Returns (false, nil) for a mismatch; errors are reserved for malformed
// hashes and configuration faults.
func VerifyPassword(plain, encoded string) (bool, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return false, err
	}

	ok, err := cfg.Verify(encoded, plain)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
