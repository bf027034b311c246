package authapi

import (
	"context"

	"quill/cmd/internal/auth/session"
)

type ctxKey int

const claimsKey ctxKey = iota

func withClaims(ctx context.Context, claims session.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the access claims attached by the auth
// middleware. ok is false on requests that passed through OptionalAuth
// without credentials.
func ClaimsFromContext(ctx context.Context) (session.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(session.AccessClaims)
	return claims, ok
}
