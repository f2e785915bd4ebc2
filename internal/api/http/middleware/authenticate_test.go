package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/devhive/identity-server/internal/api/http/context"
	"github.com/devhive/identity-server/internal/model"
	"github.com/devhive/identity-server/internal/testutil"
)

// MockTokenService mocks the TokenService interface
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) ParseAccessToken(token string) (model.TokenClaims, error) {
	args := m.Called(token)
	return args.Get(0).(model.TokenClaims), args.Error(1)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tokenService := &MockTokenService{}
	ctxMgr := httpctx.NewManager()
	uid := uuid.New()
	tokenService.On("ParseAccessToken", "good-token").
		Return(model.TokenClaims{UserID: uid, Email: "dev@example.com"}, nil)

	m := NewAuthenticate(tokenService, ctxMgr, testutil.MakeNoopLogger())

	var gotUserID uuid.UUID
	handler := m.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := ctxMgr.GetUserIDFromContext(r.Context())
		require.True(t, ok)
		gotUserID = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uid, gotUserID)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	tokenService := &MockTokenService{}
	m := NewAuthenticate(tokenService, httpctx.NewManager(), testutil.MakeNoopLogger())

	handler := m.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTHENTICATION_ERROR")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	tokenService := &MockTokenService{}
	tokenService.On("ParseAccessToken", "bad-token").
		Return(model.TokenClaims{}, assert.AnError)

	m := NewAuthenticate(tokenService, httpctx.NewManager(), testutil.MakeNoopLogger())

	handler := m.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_NilUserID(t *testing.T) {
	tokenService := &MockTokenService{}
	tokenService.On("ParseAccessToken", "empty-subject").
		Return(model.TokenClaims{UserID: uuid.Nil}, nil)

	m := NewAuthenticate(tokenService, httpctx.NewManager(), testutil.MakeNoopLogger())

	handler := m.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a nil user ID")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer empty-subject")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
