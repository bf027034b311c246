package authapi

import (
	"net/http"

	"quill/cmd/internal/auth/session"
)

// FallbackAuthenticator is consulted by the middleware only after both the
// bearer and cookie strategies found no credentials at all. It lets a
// deployment accept some other credential (a service key, a signed
// internal header) without touching the token pipeline. Rejections from
// the primary strategies are final and never reach the fallback.
type FallbackAuthenticator interface {
	Authenticate(r *http.Request) (session.AccessClaims, bool)
}

// NoopFallback authenticates nothing. It is the default.
type NoopFallback struct{}

func (NoopFallback) Authenticate(*http.Request) (session.AccessClaims, bool) {
	return session.AccessClaims{}, false
}

// WithFallbackAuthenticator overrides the default no-op fallback.
func WithFallbackAuthenticator(fb FallbackAuthenticator) HandlerOption {
	return func(h *Handler) {
		if h == nil || fb == nil {
			return
		}
		h.fallback = fb
	}
}
