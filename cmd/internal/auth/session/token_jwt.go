package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserForToken carries the user fields embedded in access tokens.
type UserForToken struct {
	ID            string
	Email         string
	Name          string
	EmailVerified bool
}

// AccessClaims is the verified identity envelope attached to requests.
type AccessClaims struct {
	UserID        string
	Email         string
	Name          string
	EmailVerified bool
	SessionID     string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Issuer        string
}

// Codec signs and verifies stateless access tokens.
//
// Verify returns exactly one of ErrTokenExpired, ErrTokenInvalid, or
// ErrTokenMalformed on failure. Callers branch on the distinction:
// expired triggers refresh attempts, the other two never do.
type Codec interface {
	Sign(user UserForToken, sessionID string, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

type jwtClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"emailVerified"`
	SessionID     string `json:"sessionId"`
	jwt.RegisteredClaims
}

type hmacCodec struct {
	issuer   string
	audience string
	ttl      time.Duration
	skew     time.Duration

	secret []byte
}

// NewHMACCodec builds a Codec signing HS256 JWTs with the configured secret.
//
// Issuer and audience are enforced during verification; clock skew is
// applied as parser leeway to tolerate minor clock differences.
func NewHMACCodec(cfg Config) (Codec, error) {
	if len(cfg.JWTSecret) < 32 || cfg.AccessTokenTTL <= 0 {
		return nil, ErrConfig
	}
	return &hmacCodec{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.AccessTokenTTL,
		skew:     cfg.ClockSkew,
		secret:   []byte(cfg.JWTSecret),
	}, nil
}

func (c *hmacCodec) Sign(user UserForToken, sessionID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.ttl)

	claims := jwtClaims{
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.EmailVerified,
		SessionID:     sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (c *hmacCodec) Verify(token string, now time.Time) (AccessClaims, error) {
	var claims jwtClaims

	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(c.skew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return AccessClaims{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return AccessClaims{}, ErrTokenExpired
		default:
			// Signature mismatch, issuer/audience mismatch, not-yet-valid.
			return AccessClaims{}, ErrTokenInvalid
		}
	}

	if claims.Subject == "" || claims.SessionID == "" {
		return AccessClaims{}, ErrTokenInvalid
	}

	out := AccessClaims{
		UserID:        claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
		SessionID:     claims.SessionID,
		Issuer:        claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
