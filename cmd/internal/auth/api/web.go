package authapi

import (
	"net/http"
	"strings"
	"time"
)

// Cookie transport for browser clients. Both cookies are HttpOnly and
// SameSite=Lax; the access cookie expires with the access token, the
// refresh cookie with the refresh token.

func (h *Handler) setAccessCookie(w http.ResponseWriter, token string, exp, now time.Time) {
	h.setSessionCookie(w, h.cfg.AccessCookieName, token, exp, now)
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, exp, now time.Time) {
	h.setSessionCookie(w, h.cfg.RefreshCookieName, token, exp, now)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, name, value string, exp, now time.Time) {
	if h == nil || w == nil {
		return
	}
	maxAge := int(exp.Sub(now).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  exp,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies expires both cookies regardless of whether the request
// carried them.
func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	h.expireCookie(w, h.cfg.AccessCookieName)
	h.expireCookie(w, h.cfg.RefreshCookieName)
}

func (h *Handler) expireCookie(w http.ResponseWriter, name string) {
	if h == nil || w == nil || strings.TrimSpace(name) == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) accessTokenFromCookie(r *http.Request) (string, bool) {
	return h.cookieValue(r, h.cfg.AccessCookieName)
}

func (h *Handler) refreshTokenFromCookie(r *http.Request) (string, bool) {
	return h.cookieValue(r, h.cfg.RefreshCookieName)
}

func (h *Handler) cookieValue(r *http.Request, name string) (string, bool) {
	if h == nil || r == nil {
		return "", false
	}
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}
