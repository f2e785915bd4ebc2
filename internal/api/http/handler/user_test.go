package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/devhive/identity-server/internal/api/http/context"
	"github.com/devhive/identity-server/internal/apperrors"
	"github.com/devhive/identity-server/internal/model"
	"github.com/devhive/identity-server/internal/service"
	"github.com/devhive/identity-server/internal/testutil"
)

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) UserInfo(ctx context.Context, userID uuid.UUID) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserService) UpdateNickname(ctx context.Context, userID uuid.UUID, nickname string) (model.TokenPair, error) {
	args := m.Called(ctx, userID, nickname)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, description, skills string) (model.User, error) {
	args := m.Called(ctx, userID, description, skills)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserService) OAuthSignUp(ctx context.Context, userID uuid.UUID, params service.OAuthSignUpParams) (model.TokenPair, error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *MockUserService) UpdateUserid(ctx context.Context, userID uuid.UUID, newUserid string) (model.TokenPair, error) {
	args := m.Called(ctx, userID, newUserid)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *MockUserService) UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirmPassword string) (model.TokenPair, error) {
	args := m.Called(ctx, userID, oldPassword, newPassword, confirmPassword)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *MockUserService) UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) (model.TokenPair, error) {
	args := m.Called(ctx, userID, newEmail)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *MockUserService) FindUserPassword(ctx context.Context, userID uuid.UUID, resetToken, newPassword string) error {
	args := m.Called(ctx, userID, resetToken, newPassword)
	return args.Error(0)
}

func (m *MockUserService) QuitUser(ctx context.Context, userID uuid.UUID, password string) error {
	args := m.Called(ctx, userID, password)
	return args.Error(0)
}

func (m *MockUserService) UpdatePrivate(ctx context.Context, userID uuid.UUID, private bool) error {
	args := m.Called(ctx, userID, private)
	return args.Error(0)
}

func authedRequest(t *testing.T, userID uuid.UUID, method, target string, body any) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	ctx := httpctx.NewManager().SetUserIDToContext(req.Context(), userID)
	return req.WithContext(ctx)
}

func newUserHandler(svc *MockUserService) *User {
	return NewUser(svc, httpctx.NewManager(), testutil.MakeNoopLogger())
}

func TestUser_Info(t *testing.T) {
	userID := uuid.New()
	userid := "devhive"
	svc := &MockUserService{}
	svc.On("UserInfo", mock.Anything, userID).
		Return(model.User{ID: userID, Userid: &userid, Nickname: "Dev"}, nil)

	h := newUserHandler(svc)
	rec := httptest.NewRecorder()
	h.Info(rec, authedRequest(t, userID, http.MethodGet, "/api/users/me", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "devhive")
}

func TestUser_Info_Unauthenticated(t *testing.T) {
	svc := &MockUserService{}
	h := newUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	h.Info(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "UserInfo", mock.Anything, mock.Anything)
}

func TestUser_UpdateNickname(t *testing.T) {
	userID := uuid.New()

	t.Run("success returns new tokens", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("UpdateNickname", mock.Anything, userID, "NewName").
			Return(model.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil)

		h := newUserHandler(svc)
		rec := httptest.NewRecorder()
		h.UpdateNickname(rec, authedRequest(t, userID, http.MethodPatch, "/api/users/me/nickname", map[string]string{
			"nickname": "NewName",
		}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "access")
	})

	t.Run("taken maps to conflict", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("UpdateNickname", mock.Anything, userID, "Taken").
			Return(model.TokenPair{}, apperrors.NewErrNicknameTaken())

		h := newUserHandler(svc)
		rec := httptest.NewRecorder()
		h.UpdateNickname(rec, authedRequest(t, userID, http.MethodPatch, "/api/users/me/nickname", map[string]string{
			"nickname": "Taken",
		}))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestUser_UpdatePassword_ExternalAccount(t *testing.T) {
	userID := uuid.New()
	svc := &MockUserService{}
	svc.On("UpdatePassword", mock.Anything, userID, "old", "newpass-123", "newpass-123").
		Return(model.TokenPair{}, apperrors.NewErrExternallyRegistered())

	h := newUserHandler(svc)
	rec := httptest.NewRecorder()
	h.UpdatePassword(rec, authedRequest(t, userID, http.MethodPatch, "/api/users/me/password", map[string]string{
		"old_password":     "old",
		"new_password":     "newpass-123",
		"confirm_password": "newpass-123",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeValidation)
}

func TestUser_ResetPassword(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("FindUserPassword", mock.Anything, userID, "reset-token", "newpass-123").Return(nil)

		h := newUserHandler(svc)
		rec := httptest.NewRecorder()
		h.ResetPassword(rec, authedRequest(t, userID, http.MethodPost, "/api/users/me/password/reset", map[string]string{
			"reset_token":  "reset-token",
			"new_password": "newpass-123",
		}))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("spent token maps to unauthorized", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("FindUserPassword", mock.Anything, userID, "spent", "newpass-123").
			Return(apperrors.NewErrResetTokenNotAuthorized())

		h := newUserHandler(svc)
		rec := httptest.NewRecorder()
		h.ResetPassword(rec, authedRequest(t, userID, http.MethodPost, "/api/users/me/password/reset", map[string]string{
			"reset_token":  "spent",
			"new_password": "newpass-123",
		}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUser_Quit(t *testing.T) {
	userID := uuid.New()
	svc := &MockUserService{}
	svc.On("QuitUser", mock.Anything, userID, "supersecret").Return(nil)

	h := newUserHandler(svc)
	rec := httptest.NewRecorder()
	h.Quit(rec, authedRequest(t, userID, http.MethodPost, "/api/users/me/quit", map[string]string{
		"password": "supersecret",
	}))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestUser_UpdatePrivate(t *testing.T) {
	userID := uuid.New()
	svc := &MockUserService{}
	svc.On("UpdatePrivate", mock.Anything, userID, true).Return(nil)

	h := newUserHandler(svc)
	rec := httptest.NewRecorder()
	h.UpdatePrivate(rec, authedRequest(t, userID, http.MethodPatch, "/api/users/me/private", map[string]bool{
		"private": true,
	}))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
