package authapi

import (
	"errors"
	"net/http"
	"time"

	"quill/cmd/internal/auth/session"
)

// RequireAuth verifies the request's access token and attaches its claims
// to the context. Cookie clients whose access token is missing or expired
// get one transparent refresh attempt; bearer clients are never refreshed
// and see an explicit token_expired so they can call the refresh endpoint
// themselves. Unauthenticated requests are rejected with 401.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.authenticate(w, r, true)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// OptionalAuth runs the same strategies as RequireAuth but never rejects:
// requests without valid credentials proceed anonymously and
// ClaimsFromContext reports ok=false for them.
func (h *Handler) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := h.authenticate(w, r, false); ok {
			r = r.WithContext(withClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the request to access claims. When required is
// true a failure writes the 401 response and returns ok=false; when false
// it stays silent so the request can proceed anonymously.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, required bool) (session.AccessClaims, bool) {
	now := time.Now().UTC()

	switch classifyClient(r) {
	case ClientBearer:
		return h.authenticateBearer(w, r, now, required)
	default:
		return h.authenticateWeb(w, r, now, required)
	}
}

func (h *Handler) authenticateBearer(w http.ResponseWriter, r *http.Request, now time.Time, required bool) (session.AccessClaims, bool) {
	token := bearerToken(r)
	if token == "" {
		if required {
			writeError(w, http.StatusUnauthorized, "invalid_token", "malformed Authorization header")
		}
		return session.AccessClaims{}, false
	}

	claims, err := h.sessions.VerifyAccessToken(token, now)
	if err == nil {
		return claims, true
	}
	if !required {
		return session.AccessClaims{}, false
	}
	// An expired bearer token is reported as such, even when a refresh
	// cookie happens to ride along: bearer clients refresh explicitly.
	if errors.Is(err, session.ErrTokenExpired) {
		writeError(w, http.StatusUnauthorized, "token_expired", "access token expired")
		return session.AccessClaims{}, false
	}
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid access token")
	return session.AccessClaims{}, false
}

func (h *Handler) authenticateWeb(w http.ResponseWriter, r *http.Request, now time.Time, required bool) (session.AccessClaims, bool) {
	token, hasAccess := h.accessTokenFromCookie(r)
	if hasAccess {
		claims, err := h.sessions.VerifyAccessToken(token, now)
		switch {
		case err == nil:
			return claims, true
		case errors.Is(err, session.ErrTokenExpired):
			// Fall through to the silent refresh path.
		default:
			if required {
				writeError(w, http.StatusUnauthorized, "invalid_token", "invalid access token")
			}
			return session.AccessClaims{}, false
		}
	}

	refreshToken, _ := h.refreshTokenFromCookie(r)
	refreshed, err := h.sessions.AutoRefresh(r.Context(), now, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrNoRefreshToken) {
			if claims, ok := h.fallback.Authenticate(r); ok {
				return claims, true
			}
			if required {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			}
			return session.AccessClaims{}, false
		}
		if errors.Is(err, session.ErrRefreshExpired) || errors.Is(err, session.ErrRefreshInvalid) {
			silentRefreshTotal.WithLabelValues("rejected").Inc()
			if required {
				writeError(w, http.StatusUnauthorized, "session_expired", "session expired, sign in again")
			}
			return session.AccessClaims{}, false
		}
		h.log.Error("auth.silent_refresh.fail", "err", err)
		silentRefreshTotal.WithLabelValues("error").Inc()
		if required {
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return session.AccessClaims{}, false
	}

	claims, err := h.sessions.VerifyAccessToken(refreshed.Pair.AccessToken, now)
	if err != nil {
		h.log.Error("auth.silent_refresh.verify.fail", "err", err)
		silentRefreshTotal.WithLabelValues("error").Inc()
		if required {
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return session.AccessClaims{}, false
	}

	silentRefreshTotal.WithLabelValues("ok").Inc()
	h.setAccessCookie(w, refreshed.Pair.AccessToken, refreshed.Pair.AccessTokenExpiresAt, now)
	if refreshed.Rotated {
		rotationTotal.Inc()
		h.setRefreshCookie(w, refreshed.Pair.RefreshToken, refreshed.Pair.RefreshTokenExpiresAt, now)
	}
	return claims, true
}
