// Package apperrors defines the typed failures the identity flows can
// produce and the stable machine-readable codes they map to at the API
// boundary.
package apperrors

import (
	"fmt"
	"net/http"
)

// Stable error codes surfaced to clients.
const (
	CodeUserDuplication = "USER_DUPLICATION"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeAuthentication  = "AUTHENTICATION_ERROR"
	CodeValidation      = "VALIDATION_ERROR"
	CodeFileNotFound    = "FILE_NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// APIError is a domain failure with a stable code and a human message.
// Infrastructure failures are never wrapped into an APIError; they propagate
// as plain errors and surface as a generic internal failure.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewErrUseridTaken reports a sign-up collision on the login handle.
func NewErrUseridTaken() *APIError {
	return &APIError{Code: CodeUserDuplication, Message: "userid already in use", HTTPStatus: http.StatusConflict}
}

// NewErrEmailTaken reports a sign-up collision on the email address.
func NewErrEmailTaken() *APIError {
	return &APIError{Code: CodeUserDuplication, Message: "email already in use", HTTPStatus: http.StatusConflict}
}

// NewErrNicknameTaken reports a collision on the nickname.
func NewErrNicknameTaken() *APIError {
	return &APIError{Code: CodeUserDuplication, Message: "nickname already in use", HTTPStatus: http.StatusConflict}
}

// NewErrUserNotFound reports that no account matches the lookup.
func NewErrUserNotFound() *APIError {
	return &APIError{Code: CodeUserNotFound, Message: "user not found", HTTPStatus: http.StatusNotFound}
}

// NewErrWrongPassword reports a failed credential verification.
func NewErrWrongPassword() *APIError {
	return &APIError{Code: CodeAuthentication, Message: "password does not match", HTTPStatus: http.StatusUnauthorized}
}

// NewErrInvalidToken reports a missing, forged or expired bearer token.
func NewErrInvalidToken() *APIError {
	return &APIError{Code: CodeAuthentication, Message: "invalid or expired token", HTTPStatus: http.StatusUnauthorized}
}

// NewErrResetTokenNotAuthorized reports an unknown or spent password-reset
// authorization token.
func NewErrResetTokenNotAuthorized() *APIError {
	return &APIError{Code: CodeAuthentication, Message: "reset token is not authorized", HTTPStatus: http.StatusUnauthorized}
}

// NewErrInactiveAccount reports a sign-in attempt against a deactivated
// account.
func NewErrInactiveAccount() *APIError {
	return &APIError{Code: CodeValidation, Message: "account is deactivated", HTTPStatus: http.StatusBadRequest}
}

// NewErrExternallyRegistered reports a restricted-field edit on an account
// originated by a third-party identity provider.
func NewErrExternallyRegistered() *APIError {
	return &APIError{Code: CodeValidation, Message: "only directly registered accounts may change this field", HTTPStatus: http.StatusBadRequest}
}

// NewErrPasswordConfirmation reports a mismatch between the new password and
// its confirmation.
func NewErrPasswordConfirmation() *APIError {
	return &APIError{Code: CodeValidation, Message: "new password confirmation does not match", HTTPStatus: http.StatusBadRequest}
}

// NewErrUnknownEmail reports a userid-reminder request for an email that is
// not registered.
func NewErrUnknownEmail() *APIError {
	return &APIError{Code: CodeValidation, Message: "email is not registered", HTTPStatus: http.StatusBadRequest}
}

// NewErrInvalidImageFile reports an upload whose filename is not an allowed
// image type.
func NewErrInvalidImageFile() *APIError {
	return &APIError{Code: CodeValidation, Message: "file is not a supported image", HTTPStatus: http.StatusBadRequest}
}

// NewErrProfileImageNotFound reports that the account has no profile image.
func NewErrProfileImageNotFound() *APIError {
	return &APIError{Code: CodeFileNotFound, Message: "profile image does not exist", HTTPStatus: http.StatusNotFound}
}
