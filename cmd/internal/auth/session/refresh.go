package session

import (
	"crypto/rand"
	"encoding/hex"

	"quill/cmd/security/token"
)

// NewRefreshSecret returns a new opaque refresh secret and its storage hash.
//
// The plaintext is hex-encoded (32 bytes -> 64 chars) and is handed to the
// client exactly once; only the hash is ever persisted.
func NewRefreshSecret(nBytes int) (plain string, hashHex string, err error) {
	b := make([]byte, nBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}

	plain = hex.EncodeToString(b)
	hashHex = token.HashRefreshTokenHex(plain) // 64 hex chars

	return plain, hashHex, nil
}

// HashRefreshSecret returns the storage digest for a presented secret.
func HashRefreshSecret(plain string) string {
	return token.HashRefreshTokenHex(plain)
}

// VerifyRefreshSecretHash reports whether plain hashes to storedHex,
// in constant time.
func VerifyRefreshSecretHash(plain, storedHex string) bool {
	return token.VerifyRefreshTokenHex(plain, storedHex)
}
