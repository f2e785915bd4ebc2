package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/devhive/identity-server/internal/model"
)

// Claims represents JWT claims with token type, account ID and roles. The
// subject registered claim carries the account email.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	Roles     []string  `json:"roles"`
	TokenType string    `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC. Tokens are a pure
// function of the claims and the signing secret, so the manager is safe for
// unbounded concurrent use.
type JWT struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// NewJWT creates a new JWT token manager with the provided secret key and
// lifetimes.
func NewJWT(secretKey string, accessTTL, refreshTTL time.Duration) model.TokenManager {
	return &JWT{secretKey: secretKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(claims model.TokenClaims) (string, error) {
	tokenString, err := j.sign(claims, typeAccess, j.accessTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived refresh token.
func (j *JWT) GenerateRefreshToken(claims model.TokenClaims) (string, error) {
	tokenString, err := j.sign(claims, typeRefresh, j.refreshTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return tokenString, nil
}

func (j *JWT) sign(claims model.TokenClaims, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    claims.UserID,
		Roles:     claims.Roles,
		TokenType: tokenType,
	})

	return token.SignedString([]byte(j.secretKey))
}

// Validate reports whether the token carries an intact signature and has not
// expired.
func (j *JWT) Validate(tokenString string) bool {
	_, err := j.parse(tokenString)
	return err == nil
}

// Subject validates a refresh token and extracts the subject email.
func (j *JWT) Subject(tokenString string) (string, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return "", err
	}
	if claims.TokenType != typeRefresh {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.Subject, nil
}

// ParseAccessToken validates an access token and returns its identity
// claims. A refresh token presented here is rejected.
func (j *JWT) ParseAccessToken(tokenString string) (model.TokenClaims, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return model.TokenClaims{}, err
	}
	if claims.TokenType != typeAccess {
		return model.TokenClaims{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return model.TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Subject,
		Roles:  claims.Roles,
	}, nil
}

func (j *JWT) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}
	return claims, nil
}
