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

// AuthService defines the unauthenticated identity operations.
type AuthService interface {
	SignUp(ctx context.Context, params service.SignUpParams) (model.User, error)
	SignIn(ctx context.Context, userid, password string) (model.TokenPair, error)
	ReSignIn(ctx context.Context, refreshToken string) (model.SignInResult, error)
	FindUserid(ctx context.Context, email string) error
	IssuePasswordReset(ctx context.Context, email string) error
	UseridDuplicated(ctx context.Context, userid string) (bool, error)
	NicknameDuplicated(ctx context.Context, nickname string) (bool, error)
	EmailDuplicated(ctx context.Context, email string) (bool, error)
	GetPrivateStatus(ctx context.Context, userid string) (bool, error)
}

// Auth handles HTTP endpoints for registration and session establishment.
type Auth struct {
	authService AuthService
	validate    *validator.Validate
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		validate:    validator.New(),
		logger:      logger,
	}
}

type signUpRequest struct {
	Userid         string `json:"userid" validate:"required,min=4,max=32"`
	Email          string `json:"email" validate:"required,email"`
	Nickname       string `json:"nickname" validate:"required,min=2,max=32"`
	Password       string `json:"password" validate:"required,min=8"`
	Skills         string `json:"skills"`
	Description    string `json:"description"`
	ProfileImageID string `json:"profile_image_id" validate:"omitempty,uuid"`
}

type userResponse struct {
	ID             string  `json:"id"`
	Userid         *string `json:"userid"`
	Email          *string `json:"email"`
	Nickname       string  `json:"nickname"`
	Skills         string  `json:"skills"`
	Description    string  `json:"description"`
	Roles          []string `json:"roles"`
	ProfileImageID *string `json:"profile_image_id,omitempty"`
	IsPrivate      bool    `json:"is_private"`
}

func toUserResponse(user model.User) userResponse {
	resp := userResponse{
		ID:          user.ID.String(),
		Userid:      user.Userid,
		Email:       user.Email,
		Nickname:    user.Nickname,
		Skills:      user.Skills,
		Description: user.Description,
		Roles:       user.Roles,
		IsPrivate:   user.IsPrivate,
	}
	if user.ProfileImageID != nil {
		id := user.ProfileImageID.String()
		resp.ProfileImageID = &id
	}
	return resp
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignUp registers a new account.
func (h *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("Auth handler: processing sign-up request",
		"userid", req.Userid)

	params := service.SignUpParams{
		Userid:      req.Userid,
		Email:       req.Email,
		Nickname:    req.Nickname,
		Password:    req.Password,
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

	user, err := h.authService.SignUp(r.Context(), params)
	if err != nil {
		h.logger.Error("Auth handler: sign-up failed",
			"userid", req.Userid,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: sign-up completed",
		"userid", req.Userid,
		"user_id", user.ID)

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type signInRequest struct {
	Userid   string `json:"userid" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignIn verifies credentials and returns a fresh token pair.
func (h *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("Auth handler: processing sign-in request",
		"userid", req.Userid)

	tokens, err := h.authService.SignIn(r.Context(), req.Userid, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: sign-in failed",
			"userid", req.Userid,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: sign-in completed",
		"userid", req.Userid)

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

type reSignInRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type reSignInResponse struct {
	Authenticated bool   `json:"authenticated"`
	AccessToken   string `json:"access_token,omitempty"`
	RefreshToken  string `json:"refresh_token,omitempty"`
}

// ReSignIn exchanges a refresh token for a new token pair. A stale or
// forged token yields an unauthenticated result, not an error status.
func (h *Auth) ReSignIn(w http.ResponseWriter, r *http.Request) {
	var req reSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}

	h.logger.Debug("Auth handler: processing re-sign-in request")

	result, err := h.authService.ReSignIn(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: re-sign-in failed",
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: re-sign-in completed",
		"authenticated", result.Authenticated)

	writeJSON(w, http.StatusOK, reSignInResponse{
		Authenticated: result.Authenticated,
		AccessToken:   result.Tokens.AccessToken,
		RefreshToken:  result.Tokens.RefreshToken,
	})
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// FindUserid emails the login handle registered under the given address.
func (h *Auth) FindUserid(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("Auth handler: processing find-userid request")

	if err := h.authService.FindUserid(r.Context(), req.Email); err != nil {
		h.logger.Error("Auth handler: find-userid failed",
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: find-userid completed")

	w.WriteHeader(http.StatusNoContent)
}

// IssuePasswordReset emails a single-use password reset link. The response
// does not reveal whether the address is registered.
func (h *Auth) IssuePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, err.Error())
		return
	}

	h.logger.Debug("Auth handler: processing password reset request")

	if err := h.authService.IssuePasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("Auth handler: password reset request failed",
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Info("Auth handler: password reset request completed")

	w.WriteHeader(http.StatusNoContent)
}

type duplicatedResponse struct {
	Duplicated bool `json:"duplicated"`
}

// UseridDuplicated reports whether a login handle is already taken.
func (h *Auth) UseridDuplicated(w http.ResponseWriter, r *http.Request) {
	h.probe(w, r, "userid", h.authService.UseridDuplicated)
}

// NicknameDuplicated reports whether a nickname is already taken.
func (h *Auth) NicknameDuplicated(w http.ResponseWriter, r *http.Request) {
	h.probe(w, r, "nickname", h.authService.NicknameDuplicated)
}

// EmailDuplicated reports whether an email address is already taken.
func (h *Auth) EmailDuplicated(w http.ResponseWriter, r *http.Request) {
	h.probe(w, r, "email", h.authService.EmailDuplicated)
}

func (h *Auth) probe(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	fn func(ctx context.Context, value string) (bool, error),
) {
	value := r.URL.Query().Get(param)
	if value == "" {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, param+" is required")
		return
	}

	duplicated, err := fn(r.Context(), value)
	if err != nil {
		h.logger.Error("Auth handler: duplication probe failed",
			"param", param,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, duplicatedResponse{Duplicated: duplicated})
}

type privateStatusResponse struct {
	Private bool `json:"private"`
}

// PrivateStatus reports the privacy flag of the account with the given
// login handle.
func (h *Auth) PrivateStatus(w http.ResponseWriter, r *http.Request) {
	userid := r.URL.Query().Get("userid")
	if userid == "" {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "userid is required")
		return
	}

	private, err := h.authService.GetPrivateStatus(r.Context(), userid)
	if err != nil {
		h.logger.Error("Auth handler: private status lookup failed",
			"userid", userid,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, privateStatusResponse{Private: private})
}
