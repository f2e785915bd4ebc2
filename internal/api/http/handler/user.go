package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/devhive/identity-server/internal/apperrors"
	"github.com/devhive/identity-server/internal/logger"
	"github.com/devhive/identity-server/internal/model"
	"github.com/devhive/identity-server/internal/service"
)

// UserService defines the authenticated account operations.
type UserService interface {
	UserInfo(ctx context.Context, userID uuid.UUID) (model.User, error)
	UpdateNickname(ctx context.Context, userID uuid.UUID, nickname string) (model.TokenPair, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, description, skills string) (model.User, error)
	OAuthSignUp(ctx context.Context, userID uuid.UUID, params service.OAuthSignUpParams) (model.TokenPair, error)
	UpdateUserid(ctx context.Context, userID uuid.UUID, newUserid string) (model.TokenPair, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirmPassword string) (model.TokenPair, error)
	UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) (model.TokenPair, error)
	FindUserPassword(ctx context.Context, userID uuid.UUID, resetToken, newPassword string) error
	QuitUser(ctx context.Context, userID uuid.UUID, password string) error
	UpdatePrivate(ctx context.Context, userID uuid.UUID, private bool) error
}

// User handles HTTP endpoints for account mutation and lookup. Every route
// requires an authenticated caller; the user ID comes from the request
// context set by the authentication middleware.
type User struct {
	userService    UserService
	contextManager model.ContextManager
	validate       *validator.Validate
	logger         *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{
		userService:    userService,
		contextManager: contextManager,
		validate:       validator.New(),
		logger:         logger,
	}
}

func (h *User) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, apperrors.CodeAuthentication, "missing authorization token")
		return uuid.Nil, false
	}
	return userID, true
}

// Info returns the caller's account.
func (h *User) Info(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.UserInfo(r.Context(), userID)
	if err != nil {
		h.logger.Error("User handler: info lookup failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updateNicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,min=2,max=32"`
}

// UpdateNickname changes the caller's nickname and reissues tokens.
func (h *User) UpdateNickname(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req updateNicknameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("User handler: processing nickname update",
		"user_id", userID)

	tokens, err := h.userService.UpdateNickname(r.Context(), userID, req.Nickname)
	if err != nil {
		h.logger.Error("User handler: nickname update failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: nickname update completed",
		"user_id", userID)

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

type updateProfileRequest struct {
	Description string `json:"description"`
	Skills      string `json:"skills"`
}

// UpdateProfile changes the caller's description and skills.
func (h *User) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Description, req.Skills)
	if err != nil {
		h.logger.Error("User handler: profile update failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type oauthSignUpRequest struct {
	Nickname       string `json:"nickname" validate:"required,min=2,max=32"`
	Skills         string `json:"skills"`
	Description    string `json:"description"`
	ProfileImageID string `json:"profile_image_id" validate:"omitempty,uuid"`
}

// OAuthSignUp completes an externally registered account with the profile
// fields the identity provider did not supply.
func (h *User) OAuthSignUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req oauthSignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("User handler: processing oauth sign-up completion",
		"user_id", userID)

	params := service.OAuthSignUpParams{
		Nickname:    req.Nickname,
		Skills:      req.Skills,
		Description: req.Description,
	}
	if req.ProfileImageID != "" {
		imageID, err := uuid.Parse(req.ProfileImageID)
		if err != nil {
			writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid profile image id")
			return
		}
		params.ProfileImageID = &imageID
	}

	tokens, err := h.userService.OAuthSignUp(r.Context(), userID, params)
	if err != nil {
		h.logger.Error("User handler: oauth sign-up completion failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: oauth sign-up completion done",
		"user_id", userID)

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

type updateUseridRequest struct {
	Userid string `json:"userid" validate:"required,min=4,max=32"`
}

// UpdateUserid changes the caller's login handle and reissues tokens.
func (h *User) UpdateUserid(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req updateUseridRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	tokens, err := h.userService.UpdateUserid(r.Context(), userID, req.Userid)
	if err != nil {
		h.logger.Error("User handler: userid update failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

type updatePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// UpdatePassword changes the caller's password after verifying the old one.
func (h *User) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("User handler: processing password update",
		"user_id", userID)

	tokens, err := h.userService.UpdatePassword(r.Context(), userID, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		h.logger.Error("User handler: password update failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: password update completed",
		"user_id", userID)

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

type updateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateEmail changes the caller's email address and reissues tokens.
func (h *User) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req updateEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	tokens, err := h.userService.UpdateEmail(r.Context(), userID, req.Email)
	if err != nil {
		h.logger.Error("User handler: email update failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

type resetPasswordRequest struct {
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword overwrites the caller's password after redeeming the
// single-use reset token issued by email.
func (h *User) ResetPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("User handler: processing password reset",
		"user_id", userID)

	if err := h.userService.FindUserPassword(r.Context(), userID, req.ResetToken, req.NewPassword); err != nil {
		h.logger.Error("User handler: password reset failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: password reset completed",
		"user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

type quitRequest struct {
	Password string `json:"password" validate:"required"`
}

// Quit irreversibly deactivates the caller's account.
func (h *User) Quit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req quitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("User handler: processing account deactivation",
		"user_id", userID)

	if err := h.userService.QuitUser(r.Context(), userID, req.Password); err != nil {
		h.logger.Error("User handler: account deactivation failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("User handler: account deactivation completed",
		"user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

type updatePrivateRequest struct {
	Private bool `json:"private"`
}

// UpdatePrivate flips the caller's privacy flag.
func (h *User) UpdatePrivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req updatePrivateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}

	if err := h.userService.UpdatePrivate(r.Context(), userID, req.Private); err != nil {
		h.logger.Error("User handler: privacy update failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
