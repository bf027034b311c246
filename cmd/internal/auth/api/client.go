package authapi

import (
	"net/http"
	"strings"
)

// ClientClass tells the middleware how a request transports its tokens.
// The class is decided once per request: any Authorization header, even a
// malformed one, makes the request a bearer client, and cookies are ignored
// from then on. Bearer clients never get silent refresh.
type ClientClass int

const (
	// ClientWeb carries tokens in cookies and is eligible for silent
	// refresh.
	ClientWeb ClientClass = iota

	// ClientBearer carries the access token in the Authorization header
	// and manages refresh itself via the refresh endpoint.
	ClientBearer
)

func (c ClientClass) String() string {
	switch c {
	case ClientBearer:
		return "bearer"
	default:
		return "web"
	}
}

func classifyClient(r *http.Request) ClientClass {
	if strings.TrimSpace(r.Header.Get("Authorization")) != "" {
		return ClientBearer
	}
	return ClientWeb
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
