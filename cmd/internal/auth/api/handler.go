package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quill/cmd/identity"
	"quill/cmd/internal/auth/session"
)

// Handler wires the token endpoints and auth middleware to the identity
// and session services.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	sessCfg  session.Config
	sessions *session.Service
	users    identity.Store
	fallback FallbackAuthenticator

	dummyHash string
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// NewHandler constructs the HTTP auth surface over an already-built session
// service and identity store.
func NewHandler(log *slog.Logger, cfg Config, sessCfg session.Config, sessions *session.Service, users identity.Store, opts ...HandlerOption) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if sessions == nil {
		return nil, errors.New("authapi: nil session service")
	}
	if users == nil {
		return nil, errors.New("authapi: nil identity store")
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		sessCfg:  sessCfg,
		sessions: sessions,
		users:    users,
		fallback: NoopFallback{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := identity.HashPassword("dummy-password-for-timing-only"); err == nil {
		h.dummyHash = hash
	}

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/token/refresh", h.handleRefresh)
	mux.HandleFunc("/auth/token/revoke", h.handleRevoke)
	mux.Handle("/auth/logout_all", h.RequireAuth(http.HandlerFunc(h.handleLogoutAll)))
	mux.Handle("/me", h.RequireAuth(http.HandlerFunc(h.handleMe)))
}

// SessionService exposes the underlying token service for other packages
// that need post-auth session creation.
func (h *Handler) SessionService() *session.Service {
	if h == nil {
		return nil
	}
	return h.sessions
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// Timing resistance: verify against a dummy hash when the user
			// is missing.
			if h.dummyHash != "" {
				_, _ = identity.VerifyPassword(req.Password, h.dummyHash)
			}
			loginTotal.WithLabelValues("invalid_credentials").Inc()
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		h.log.Error("auth.login.lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	okPw, err := identity.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		h.log.Error("auth.login.verify.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if !okPw {
		loginTotal.WithLabelValues("invalid_credentials").Inc()
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	tokenUser := session.UserForToken{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.EmailVerified,
	}
	_, pair, err := h.sessions.BeginSession(ctx, now, tokenUser)
	if err != nil {
		h.log.Error("auth.login.begin_session.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	loginTotal.WithLabelValues("ok").Inc()

	// Cookies for browser clients; the body also carries the full pair so
	// native clients can store it themselves.
	h.setAccessCookie(w, pair.AccessToken, pair.AccessTokenExpiresAt, now)
	h.setRefreshCookie(w, pair.RefreshToken, pair.RefreshTokenExpiresAt, now)

	writeJSON(w, http.StatusOK, loginResponse{
		User:   toUserResponse(user),
		Tokens: toTokenResponse(pair, true),
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}
	}

	refreshToken := strings.TrimSpace(req.RefreshToken)
	fromBody := refreshToken != ""
	if !fromBody {
		refreshToken, _ = h.refreshTokenFromCookie(r)
	}
	if refreshToken == "" {
		writeError(w, http.StatusBadRequest, "missing_refresh_token", "refreshToken is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	// Explicit refresh always rotates: the client asked for new
	// credentials, so it gets a one-time-use replacement.
	pair, rotated, err := h.sessions.RefreshTokens(ctx, now, refreshToken, true)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRefreshExpired), errors.Is(err, session.ErrRefreshInvalid):
			refreshTotal.WithLabelValues("rejected").Inc()
			h.clearSessionCookies(w)
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token", "invalid or expired refresh token")
		default:
			h.log.Error("auth.refresh.fail", "err", err)
			refreshTotal.WithLabelValues("error").Inc()
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	refreshTotal.WithLabelValues("ok").Inc()
	if rotated {
		rotationTotal.Inc()
	}

	h.setAccessCookie(w, pair.AccessToken, pair.AccessTokenExpiresAt, now)
	h.setRefreshCookie(w, pair.RefreshToken, pair.RefreshTokenExpiresAt, now)

	// Body-supplied tokens come back in the body; cookie clients only ever
	// see the new refresh token as a re-set cookie.
	writeJSON(w, http.StatusOK, toTokenResponse(pair, fromBody))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	if refreshToken, ok := h.refreshTokenFromCookie(r); ok {
		err := h.sessions.InvalidateByRefreshToken(ctx, now, refreshToken)
		if err != nil && !errors.Is(err, session.ErrRefreshInvalid) {
			h.log.Error("auth.revoke.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
			return
		}
	}

	revokeTotal.Inc()

	// Cookies are cleared no matter what the request carried, so a revoke
	// always leaves the browser signed out.
	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "signed out"})
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	if err := h.sessions.InvalidateAllUserSessions(ctx, now, claims.UserID); err != nil {
		h.log.Error("auth.logout_all.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "signed out everywhere"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		User:      toClaimsUser(claims),
		SessionID: claims.SessionID,
	})
}
