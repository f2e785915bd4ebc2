package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/devhive/identity-server/internal/logger"
	"github.com/devhive/identity-server/internal/model"
	"github.com/google/uuid"
)

// TokenService resolves token claims from bearer access tokens.
type TokenService interface {
	ParseAccessToken(token string) (model.TokenClaims, error)
}

// Authenticate validates bearer tokens and injects the user ID into context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle parses the Authorization header, validates the access token and
// passes the request on with the user ID set in context. Requests without a
// valid token are rejected with 401.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		userID, err := m.authenticateUser(tokenString)
		if err != nil {
			m.writeUnauthorized(w, err)
			return
		}

		ctx := m.contextManager.SetUserIDToContext(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Authenticate) authenticateUser(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, errMissingToken
	}

	claims, err := m.tokenService.ParseAccessToken(tokenString)
	if err != nil {
		return uuid.Nil, errInvalidToken
	}

	if claims.UserID == uuid.Nil {
		return uuid.Nil, errInvalidToken
	}

	return claims.UserID, nil
}

func (m *Authenticate) writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if encErr := json.NewEncoder(w).Encode(map[string]string{
		"code":    "AUTHENTICATION_ERROR",
		"message": err.Error(),
	}); encErr != nil {
		m.logger.Error("Authenticate middleware: failed to write response",
			"error", encErr.Error())
	}
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingToken authError = "missing authorization token"
	errInvalidToken authError = "invalid authorization token"
)
