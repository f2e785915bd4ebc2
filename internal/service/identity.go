package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devhive/identity-server/internal/apperrors"
	"github.com/devhive/identity-server/internal/logger"
	"github.com/devhive/identity-server/internal/model"
	"github.com/devhive/identity-server/internal/password"
)

// Identity orchestrates account registration, credential verification,
// token issuance and account mutation. Every self-service operation takes
// the caller's account ID resolved at the transport boundary; the service
// never re-derives the caller itself.
type Identity struct {
	userStore         model.UserStore
	documentStore     model.DocumentStore
	verificationStore model.VerificationTokenStore
	hasher            password.Hasher
	tokenManager      model.TokenManager
	mailer            model.Mailer
	resetURL          string
	logger            *logger.Logger
}

func NewIdentity(
	userStore model.UserStore,
	documentStore model.DocumentStore,
	verificationStore model.VerificationTokenStore,
	hasher password.Hasher,
	tokenManager model.TokenManager,
	mailer model.Mailer,
	resetURL string,
	logger *logger.Logger,
) *Identity {
	return &Identity{
		userStore:         userStore,
		documentStore:     documentStore,
		verificationStore: verificationStore,
		hasher:            hasher,
		tokenManager:      tokenManager,
		mailer:            mailer,
		resetURL:          resetURL,
		logger:            logger,
	}
}

// SignUpParams carries the fields of a direct registration.
type SignUpParams struct {
	Userid         string
	Email          string
	Nickname       string
	Password       string
	Skills         string
	Description    string
	ProfileImageID *uuid.UUID
}

// SignUp creates a new active account. Uniqueness of userid, email and
// nickname is enforced by the store's constrained insert, not by prior
// reads, so concurrent sign-ups with the same value cannot both succeed.
func (s *Identity) SignUp(ctx context.Context, params SignUpParams) (model.User, error) {
	s.logger.Debug("Identity service: starting sign-up",
		"userid", params.Userid)

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		Userid:       &params.Userid,
		Email:        &params.Email,
		Nickname:     params.Nickname,
		PasswordHash: hash,
		Skills:       params.Skills,
		Description:  params.Description,
		Roles:        []string{model.RoleUser},
		IsActive:     true,
		IsPrivate:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if params.ProfileImageID != nil {
		doc, err := s.documentStore.GetByID(ctx, *params.ProfileImageID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return model.User{}, fmt.Errorf("failed to get profile image: %w", err)
		}
		if err == nil {
			user = user.WithProfileImage(doc.ID)
		}
	}

	savedUser, err := s.userStore.Create(ctx, user)
	if err != nil {
		if field, ok := model.IsDuplicate(err); ok {
			s.logger.Info("Identity service: sign-up rejected, field already in use",
				"userid", params.Userid,
				"field", field)
			return model.User{}, duplicationError(field)
		}
		s.logger.Error("Identity service: failed to create user",
			"userid", params.Userid,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Identity service: sign-up completed",
		"userid", params.Userid)

	return savedUser, nil
}

// SignIn verifies the credential and issues a fresh token pair bound to the
// account's current email and roles. Deactivated accounts never sign in,
// even with a correct password.
func (s *Identity) SignIn(ctx context.Context, userid, plaintext string) (model.TokenPair, error) {
	s.logger.Debug("Identity service: starting sign-in",
		"userid", userid)

	user, err := s.userStore.GetByUserid(ctx, userid)
	if errors.Is(err, model.ErrNotFound) {
		return model.TokenPair{}, apperrors.NewErrUserNotFound()
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to get user by userid: %w", err)
	}

	ok, err := s.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return model.TokenPair{}, apperrors.NewErrWrongPassword()
	}

	if !user.IsActive {
		return model.TokenPair{}, apperrors.NewErrInactiveAccount()
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.logger.Info("Identity service: sign-in completed",
		"userid", userid)

	return pair, nil
}

// ReSignIn exchanges a refresh token for a new token pair. Unlike the other
// operations it reports failure through the result flag: a stale, forged or
// orphaned refresh token is an expected condition. Only infrastructure
// failures return an error.
func (s *Identity) ReSignIn(ctx context.Context, refreshToken string) (model.SignInResult, error) {
	if refreshToken == "" || !s.tokenManager.Validate(refreshToken) {
		return model.SignInResult{Authenticated: false}, nil
	}

	email, err := s.tokenManager.Subject(refreshToken)
	if err != nil {
		return model.SignInResult{Authenticated: false}, nil
	}

	user, err := s.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.SignInResult{Authenticated: false}, nil
	}
	if err != nil {
		return model.SignInResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return model.SignInResult{}, err
	}

	return model.SignInResult{Authenticated: true, Tokens: pair}, nil
}

// UpdateNickname changes the caller's nickname and re-issues both tokens.
func (s *Identity) UpdateNickname(ctx context.Context, userID uuid.UUID, nickname string) (model.TokenPair, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	savedUser, err := s.userStore.Save(ctx, user.WithNickname(nickname))
	if err != nil {
		if _, ok := model.IsDuplicate(err); ok {
			return model.TokenPair{}, apperrors.NewErrNicknameTaken()
		}
		return model.TokenPair{}, fmt.Errorf("failed to save user: %w", err)
	}

	return s.issueTokens(savedUser)
}

// UpdateProfile overwrites the caller's description and skills.
func (s *Identity) UpdateProfile(ctx context.Context, userID uuid.UUID, description, skills string) (model.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	savedUser, err := s.userStore.Save(ctx, user.WithProfile(description, skills))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return savedUser, nil
}

// OAuthSignUpParams carries the profile fields completing an account
// originated by an external identity provider.
type OAuthSignUpParams struct {
	Nickname       string
	Skills         string
	Description    string
	ProfileImageID *uuid.UUID
}

// OAuthSignUp completes the profile of the caller's provider-originated
// account and activates it. The identity fields were established by the
// provider handshake, so no duplicate checks run here.
func (s *Identity) OAuthSignUp(ctx context.Context, userID uuid.UUID, params OAuthSignUpParams) (model.TokenPair, error) {
	s.logger.Debug("Identity service: completing externally registered account",
		"user_id", userID)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	if params.ProfileImageID != nil {
		doc, err := s.documentStore.GetByID(ctx, *params.ProfileImageID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return model.TokenPair{}, fmt.Errorf("failed to get profile image: %w", err)
		}
		if err == nil {
			user = user.WithProfileImage(doc.ID)
		}
	}

	user = user.WithNickname(params.Nickname).
		WithProfile(params.Description, params.Skills).
		Activated()

	savedUser, err := s.userStore.Save(ctx, user)
	if err != nil {
		if _, ok := model.IsDuplicate(err); ok {
			return model.TokenPair{}, apperrors.NewErrNicknameTaken()
		}
		return model.TokenPair{}, fmt.Errorf("failed to save user: %w", err)
	}

	return s.issueTokens(savedUser)
}

// UpdateUserid changes the caller's login handle. Accounts owned by an
// external provider may not change it.
func (s *Identity) UpdateUserid(ctx context.Context, userID uuid.UUID, newUserid string) (model.TokenPair, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	if user.ExternallyRegistered() {
		return model.TokenPair{}, apperrors.NewErrExternallyRegistered()
	}

	savedUser, err := s.userStore.Save(ctx, user.WithUserid(newUserid))
	if err != nil {
		if _, ok := model.IsDuplicate(err); ok {
			return model.TokenPair{}, apperrors.NewErrUseridTaken()
		}
		return model.TokenPair{}, fmt.Errorf("failed to save user: %w", err)
	}

	return s.issueTokens(savedUser)
}

// UpdatePassword rotates the caller's credential after verifying the old
// one. Accounts owned by an external provider may not change it.
func (s *Identity) UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirmPassword string) (model.TokenPair, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	if user.ExternallyRegistered() {
		return model.TokenPair{}, apperrors.NewErrExternallyRegistered()
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return model.TokenPair{}, apperrors.NewErrWrongPassword()
	}

	if newPassword != confirmPassword {
		return model.TokenPair{}, apperrors.NewErrPasswordConfirmation()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	savedUser, err := s.userStore.Save(ctx, user.WithPasswordHash(hash))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to save user: %w", err)
	}

	return s.issueTokens(savedUser)
}

// UpdateEmail changes the caller's email. Accounts owned by an external
// provider may not change it.
func (s *Identity) UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) (model.TokenPair, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	if user.ExternallyRegistered() {
		return model.TokenPair{}, apperrors.NewErrExternallyRegistered()
	}

	savedUser, err := s.userStore.Save(ctx, user.WithEmail(newEmail))
	if err != nil {
		if _, ok := model.IsDuplicate(err); ok {
			return model.TokenPair{}, apperrors.NewErrEmailTaken()
		}
		return model.TokenPair{}, fmt.Errorf("failed to save user: %w", err)
	}

	return s.issueTokens(savedUser)
}

// FindUserid emails the login handle registered for the address.
func (s *Identity) FindUserid(ctx context.Context, email string) error {
	user, err := s.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrUnknownEmail()
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := s.mailer.SendUseridReminder(ctx, email, derefString(user.Userid)); err != nil {
		s.logger.Error("Identity service: failed to send userid reminder",
			"error", err.Error())
		return fmt.Errorf("failed to send userid reminder: %w", err)
	}

	return nil
}

// IssuePasswordReset stores a single-use reset authorization and emails the
// reset link. Unknown addresses report success so the endpoint cannot be
// used to enumerate accounts.
func (s *Identity) IssuePasswordReset(ctx context.Context, email string) error {
	user, err := s.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	err = s.verificationStore.Create(ctx, model.VerificationToken{
		Token:     token,
		Email:     derefString(user.Email),
		ExpiresAt: time.Now().Add(model.VerificationTokenTTL),
	})
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	resetLink := fmt.Sprintf("%s?token=%s", s.resetURL, token)
	if err := s.mailer.SendPasswordReset(ctx, derefString(user.Email), resetLink); err != nil {
		s.logger.Error("Identity service: failed to send password reset email",
			"error", err.Error())
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

// FindUserPassword overwrites the caller's password after redeeming the
// reset authorization token. The token is consumed: a second presentation
// fails even with an otherwise valid request.
func (s *Identity) FindUserPassword(ctx context.Context, userID uuid.UUID, resetToken, newPassword string) error {
	ok, err := s.verificationStore.Consume(ctx, resetToken)
	if err != nil {
		return fmt.Errorf("failed to consume verification token: %w", err)
	}
	if !ok {
		return apperrors.NewErrResetTokenNotAuthorized()
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.userStore.Save(ctx, user.WithPasswordHash(hash)); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// QuitUser irreversibly deactivates the caller's account: identity fields
// are cleared, the nickname is anonymized and the credential is replaced
// with a hash of a random value nobody knows. There is no resurrection path.
func (s *Identity) QuitUser(ctx context.Context, userID uuid.UUID, plaintext string) error {
	s.logger.Debug("Identity service: starting account deactivation",
		"user_id", userID)

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return apperrors.NewErrWrongPassword()
	}

	scrambled, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return fmt.Errorf("failed to scramble password: %w", err)
	}

	if _, err := s.userStore.Save(ctx, user.Deactivated(scrambled)); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("Identity service: account deactivated",
		"user_id", userID)

	return nil
}

// UpdatePrivate sets the caller's visibility flag.
func (s *Identity) UpdatePrivate(ctx context.Context, userID uuid.UUID, private bool) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.userStore.Save(ctx, user.WithPrivate(private)); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// GetPrivateStatus reports the visibility flag of the account with the
// given login handle.
func (s *Identity) GetPrivateStatus(ctx context.Context, userid string) (bool, error) {
	user, err := s.userStore.GetByUserid(ctx, userid)
	if errors.Is(err, model.ErrNotFound) {
		return false, apperrors.NewErrUserNotFound()
	}
	if err != nil {
		return false, fmt.Errorf("failed to get user by userid: %w", err)
	}

	return user.IsPrivate, nil
}

// UserInfo returns the caller's account for the public profile projection.
func (s *Identity) UserInfo(ctx context.Context, userID uuid.UUID) (model.User, error) {
	return s.getUser(ctx, userID)
}

// UseridDuplicated reports whether the login handle is already in use.
// The probes never fail on absence; they exist for live validation UX.
func (s *Identity) UseridDuplicated(ctx context.Context, userid string) (bool, error) {
	_, err := s.userStore.GetByUserid(ctx, userid)
	return probeResult(err)
}

// NicknameDuplicated reports whether the nickname is already in use.
func (s *Identity) NicknameDuplicated(ctx context.Context, nickname string) (bool, error) {
	_, err := s.userStore.GetByNickname(ctx, nickname)
	return probeResult(err)
}

// EmailDuplicated reports whether the email is already in use.
func (s *Identity) EmailDuplicated(ctx context.Context, email string) (bool, error) {
	_, err := s.userStore.GetByEmail(ctx, email)
	return probeResult(err)
}

func (s *Identity) getUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apperrors.NewErrUserNotFound()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (s *Identity) issueTokens(user model.User) (model.TokenPair, error) {
	claims := model.TokenClaims{
		UserID: user.ID,
		Email:  derefString(user.Email),
		Roles:  user.Roles,
	}

	access, err := s.tokenManager.GenerateAccessToken(claims)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.tokenManager.GenerateRefreshToken(claims)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func duplicationError(field string) error {
	switch field {
	case model.FieldEmail:
		return apperrors.NewErrEmailTaken()
	case model.FieldNickname:
		return apperrors.NewErrNicknameTaken()
	default:
		return apperrors.NewErrUseridTaken()
	}
}

func probeResult(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to probe field: %w", err)
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
