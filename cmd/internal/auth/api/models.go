package authapi

import (
	"time"

	"quill/cmd/identity"
	"quill/cmd/internal/auth/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// tokenResponse carries an issued access token and, for non-cookie clients,
// the refresh token. When tokens travel as cookies the refresh fields are
// omitted from the body.
type tokenResponse struct {
	AccessToken           string     `json:"accessToken"`
	AccessTokenExpiresAt  time.Time  `json:"accessTokenExpiresAt"`
	RefreshToken          string     `json:"refreshToken,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refreshTokenExpiresAt,omitempty"`
}

type loginResponse struct {
	User   userResponse  `json:"user"`
	Tokens tokenResponse `json:"tokens"`
}

type meResponse struct {
	User      claimsUser `json:"user"`
	SessionID string     `json:"sessionId"`
}

// claimsUser is the user view reconstructed from access-token claims alone,
// without a database round trip.
type claimsUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"emailVerified"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func toClaimsUser(c session.AccessClaims) claimsUser {
	return claimsUser{
		ID:            c.UserID,
		Email:         c.Email,
		Name:          c.Name,
		EmailVerified: c.EmailVerified,
	}
}

func toTokenResponse(p session.TokenPair, includeRefresh bool) tokenResponse {
	resp := tokenResponse{
		AccessToken:          p.AccessToken,
		AccessTokenExpiresAt: p.AccessTokenExpiresAt,
	}
	if includeRefresh {
		resp.RefreshToken = p.RefreshToken
		exp := p.RefreshTokenExpiresAt
		resp.RefreshTokenExpiresAt = &exp
	}
	return resp
}
