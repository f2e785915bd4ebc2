package model

import "github.com/google/uuid"

// TokenClaims is the identity carried by every issued token.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

// TokenPair is a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SignInResult carries the outcome of a token-producing operation.
// ReSignIn signals failure through Authenticated instead of an error:
// a stale or forged refresh token is an expected condition, not a fault.
type SignInResult struct {
	Authenticated bool
	Tokens        TokenPair
}

// TokenManager generates and validates stateless access/refresh tokens.
// Validity is a pure function of signature and expiry; there is no
// server-side revocation list.
type TokenManager interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	GenerateRefreshToken(claims TokenClaims) (string, error)
	// Validate reports whether the token has an intact signature and has
	// not expired, regardless of type.
	Validate(token string) bool
	// Subject extracts the subject email from a refresh token.
	Subject(token string) (string, error)
	// ParseAccessToken validates an access token and returns its claims.
	// Refresh tokens are rejected so one cannot stand in for the other.
	ParseAccessToken(token string) (TokenClaims, error)
}
